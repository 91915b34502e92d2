package transport

import (
	"context"

	"github.com/mkranz/labtrack/pkg/api"
)

// Filter narrows a list operation. Zero-value fields are not applied;
// provided fields combine with logical AND.
type Filter struct {
	Status     api.SampleStatus
	SampleType api.SampleType
}

// Matches reports whether the sample satisfies every provided filter field.
func (f Filter) Matches(s *api.Sample) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.SampleType != "" && s.SampleType != f.SampleType {
		return false
	}
	return true
}

// SampleStore handles persistence, retrieval, and deletion of sample
// records. Implementations must provide atomic single-record insert,
// update, and delete; the service layer adds no locking of its own.
type SampleStore interface {
	// Insert persists a new sample. Returns storage.ErrConflict if a
	// sample with the same ID already exists.
	Insert(ctx context.Context, sample *api.Sample) error

	// Get retrieves a sample by ID. Returns storage.ErrNotFound if no
	// sample with that ID exists.
	Get(ctx context.Context, id string) (*api.Sample, error)

	// List returns all samples matching the filter, in insertion order.
	List(ctx context.Context, filter Filter) ([]*api.Sample, error)

	// Update replaces the stored record for sample.SampleID. Returns
	// storage.ErrNotFound if no such sample exists.
	Update(ctx context.Context, sample *api.Sample) error

	// Delete removes a sample permanently. Returns storage.ErrNotFound
	// if no sample with that ID exists.
	Delete(ctx context.Context, id string) error

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases database connections and resources.
	Close() error
}

// Package samples implements the sample record service: it validates
// create and update requests, applies the record lifecycle against a
// SampleStore, and maps storage failures into the API error taxonomy.
package samples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkranz/labtrack/pkg/api"
	"github.com/mkranz/labtrack/pkg/observability"
	"github.com/mkranz/labtrack/pkg/storage"
	"github.com/mkranz/labtrack/pkg/transport"
)

// Service applies sample operations against a SampleStore, enforcing the
// field and enum constraints before anything reaches persistence.
type Service struct {
	store transport.SampleStore
}

// New creates a sample service backed by the given store.
func New(store transport.SampleStore) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("samples: store is required")
	}
	return &Service{store: store}, nil
}

// Create validates the request, assigns a fresh sample ID, and persists
// the record. The returned sample includes the generated ID.
func (s *Service) Create(ctx context.Context, req *api.CreateSampleRequest) (*api.Sample, error) {
	if apiErr := api.ValidateCreate(req); apiErr != nil {
		observability.SampleOperationsTotal.WithLabelValues("create", "validation_error").Inc()
		return nil, apiErr
	}

	// Enum membership was checked during validation.
	sampleType, _ := api.ParseSampleType(req.SampleType)
	status, _ := api.ParseSampleStatus(req.Status)

	sample := &api.Sample{
		SampleID:        api.NewSampleID(),
		SampleType:      sampleType,
		SubjectID:       req.SubjectID,
		CollectionDate:  *req.CollectionDate,
		Status:          status,
		StorageLocation: req.StorageLocation,
	}

	if err := s.store.Insert(ctx, sample); err != nil {
		observability.SampleOperationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("persisting sample: %w", err)
	}

	slog.Info("sample created",
		"sample_id", sample.SampleID,
		"sample_type", sample.SampleType,
		"subject_id", sample.SubjectID,
	)
	observability.SampleOperationsTotal.WithLabelValues("create", "ok").Inc()
	return sample, nil
}

// Get retrieves a sample by ID. An ID that is syntactically invalid for
// the store's key format is treated identically to an absent one: both
// yield a not-found error.
func (s *Service) Get(ctx context.Context, id string) (*api.Sample, error) {
	if !api.ValidateSampleID(id) {
		observability.SampleOperationsTotal.WithLabelValues("get", "not_found").Inc()
		return nil, api.NewNotFoundError("sample " + id + " not found")
	}

	sample, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.SampleOperationsTotal.WithLabelValues("get", "not_found").Inc()
			return nil, api.NewNotFoundError("sample " + id + " not found")
		}
		observability.SampleOperationsTotal.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("loading sample: %w", err)
	}

	observability.SampleOperationsTotal.WithLabelValues("get", "ok").Inc()
	return sample, nil
}

// List returns all samples matching the filter, in insertion order.
// Filter fields combine with logical AND; an empty filter returns all
// records.
func (s *Service) List(ctx context.Context, filter transport.Filter) ([]*api.Sample, error) {
	result, err := s.store.List(ctx, filter)
	if err != nil {
		observability.SampleOperationsTotal.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("listing samples: %w", err)
	}

	observability.SampleOperationsTotal.WithLabelValues("list", "ok").Inc()
	return result, nil
}

// ParseFilter builds a Filter from raw query values, rejecting values
// outside the enums before they reach the store.
func ParseFilter(status, sampleType string) (transport.Filter, *api.APIError) {
	var filter transport.Filter

	if status != "" {
		parsed, err := api.ParseSampleStatus(status)
		if err != nil {
			return transport.Filter{}, api.NewValidationError("status", err.Error())
		}
		filter.Status = parsed
	}

	if sampleType != "" {
		parsed, err := api.ParseSampleType(sampleType)
		if err != nil {
			return transport.Filter{}, api.NewValidationError("sample_type", err.Error())
		}
		filter.SampleType = parsed
	}

	return filter, nil
}

// Update applies a partial update: only the fields present in the request
// change, the rest keep their stored values. There is no ordering
// constraint on status transitions; any status may be set to any other.
func (s *Service) Update(ctx context.Context, id string, req *api.UpdateSampleRequest) (*api.Sample, error) {
	if !api.ValidateSampleID(id) {
		observability.SampleOperationsTotal.WithLabelValues("update", "not_found").Inc()
		return nil, api.NewNotFoundError("sample " + id + " not found")
	}

	if apiErr := api.ValidateUpdate(req); apiErr != nil {
		observability.SampleOperationsTotal.WithLabelValues("update", "validation_error").Inc()
		return nil, apiErr
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.SampleOperationsTotal.WithLabelValues("update", "not_found").Inc()
			return nil, api.NewNotFoundError("sample " + id + " not found")
		}
		observability.SampleOperationsTotal.WithLabelValues("update", "error").Inc()
		return nil, fmt.Errorf("loading sample: %w", err)
	}

	updated := applyUpdate(current, req)

	if err := s.store.Update(ctx, updated); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.SampleOperationsTotal.WithLabelValues("update", "not_found").Inc()
			return nil, api.NewNotFoundError("sample " + id + " not found")
		}
		observability.SampleOperationsTotal.WithLabelValues("update", "error").Inc()
		return nil, fmt.Errorf("persisting sample: %w", err)
	}

	slog.Info("sample updated", "sample_id", id)
	observability.SampleOperationsTotal.WithLabelValues("update", "ok").Inc()
	return updated, nil
}

// Delete removes a sample permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !api.ValidateSampleID(id) {
		observability.SampleOperationsTotal.WithLabelValues("delete", "not_found").Inc()
		return api.NewNotFoundError("sample " + id + " not found")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.SampleOperationsTotal.WithLabelValues("delete", "not_found").Inc()
			return api.NewNotFoundError("sample " + id + " not found")
		}
		observability.SampleOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("deleting sample: %w", err)
	}

	slog.Info("sample deleted", "sample_id", id)
	observability.SampleOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}

// applyUpdate merges the present request fields onto a copy of the stored
// record. Validation ran already, so present fields are known to be
// non-nil and within their enums.
func applyUpdate(current *api.Sample, req *api.UpdateSampleRequest) *api.Sample {
	updated := current.Clone()

	if req.Has("sample_type") {
		updated.SampleType = api.SampleType(*req.SampleType)
	}
	if req.Has("subject_id") {
		updated.SubjectID = *req.SubjectID
	}
	if req.Has("collection_date") {
		updated.CollectionDate = *req.CollectionDate
	}
	if req.Has("status") {
		updated.Status = api.SampleStatus(*req.Status)
	}
	if req.Has("storage_location") {
		updated.StorageLocation = *req.StorageLocation
	}

	return updated
}

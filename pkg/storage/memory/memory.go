// Package memory provides an in-memory implementation of transport.SampleStore
// for testing and lightweight deployments. Samples are stored in memory and
// lost when the process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/mkranz/labtrack/pkg/api"
	"github.com/mkranz/labtrack/pkg/storage"
	"github.com/mkranz/labtrack/pkg/transport"
)

// Store is an in-memory SampleStore. List results follow insertion order.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*api.Sample
	order   []string // insertion order of sample IDs
}

// Ensure Store implements transport.SampleStore at compile time.
var _ transport.SampleStore = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]*api.Sample),
	}
}

// Insert persists a new sample in memory.
func (s *Store) Insert(_ context.Context, sample *api.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[sample.SampleID]; exists {
		return storage.ErrConflict
	}

	s.entries[sample.SampleID] = sample.Clone()
	s.order = append(s.order, sample.SampleID)
	return nil
}

// Get retrieves a sample by ID. Returns storage.ErrNotFound if the sample
// does not exist.
func (s *Store) Get(_ context.Context, id string) (*api.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sample, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return sample.Clone(), nil
}

// List returns all samples matching the filter, in insertion order.
func (s *Store) List(_ context.Context, filter transport.Filter) ([]*api.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*api.Sample, 0, len(s.order))
	for _, id := range s.order {
		sample := s.entries[id]
		if filter.Matches(sample) {
			result = append(result, sample.Clone())
		}
	}
	return result, nil
}

// Update replaces the stored record. Returns storage.ErrNotFound if the
// sample does not exist. The sample keeps its original position in
// insertion order.
func (s *Store) Update(_ context.Context, sample *api.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[sample.SampleID]; !ok {
		return storage.ErrNotFound
	}

	s.entries[sample.SampleID] = sample.Clone()
	return nil
}

// Delete removes a sample permanently. Returns storage.ErrNotFound if the
// sample does not exist.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkranz/labtrack/pkg/api"
	"github.com/mkranz/labtrack/pkg/storage"
	"github.com/mkranz/labtrack/pkg/transport"
)

func makeSample(subjectID string, typ api.SampleType, status api.SampleStatus) *api.Sample {
	return &api.Sample{
		SampleID:        api.NewSampleID(),
		SampleType:      typ,
		SubjectID:       subjectID,
		CollectionDate:  api.NewDate(2026, time.January, 15),
		Status:          status,
		StorageLocation: "freezer-1",
	}
}

func TestInsertAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	sample := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	if err := store.Insert(ctx, sample); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.Get(ctx, sample.SampleID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *sample {
		t.Errorf("got %+v, want %+v", got, sample)
	}
}

func TestInsert_Conflict(t *testing.T) {
	store := New()
	ctx := context.Background()

	sample := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	if err := store.Insert(ctx, sample); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.Insert(ctx, sample); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second insert error = %v, want ErrConflict", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	store := New()

	_, err := store.Get(context.Background(), "smp_doesnotexist")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	sample := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	if err := store.Insert(ctx, sample); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, _ := store.Get(ctx, sample.SampleID)
	got.Status = api.SampleStatusArchived

	again, _ := store.Get(ctx, sample.SampleID)
	if again.Status != api.SampleStatusCollected {
		t.Error("mutating a returned sample changed the stored record")
	}
}

func TestList_InsertionOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		s := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, s.SampleID)
	}

	got, err := store.List(ctx, transport.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("list returned %d samples, want %d", len(got), len(ids))
	}
	for i, s := range got {
		if s.SampleID != ids[i] {
			t.Errorf("position %d: got %q, want %q (insertion order)", i, s.SampleID, ids[i])
		}
	}
}

func TestList_Filter(t *testing.T) {
	store := New()
	ctx := context.Background()

	bloodCollected := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	bloodArchived := makeSample("P002", api.SampleTypeBlood, api.SampleStatusArchived)
	salivaCollected := makeSample("P003", api.SampleTypeSaliva, api.SampleStatusCollected)

	for _, s := range []*api.Sample{bloodCollected, bloodArchived, salivaCollected} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	tests := []struct {
		name    string
		filter  transport.Filter
		wantIDs []string
	}{
		{"empty returns all", transport.Filter{}, []string{bloodCollected.SampleID, bloodArchived.SampleID, salivaCollected.SampleID}},
		{"by status", transport.Filter{Status: api.SampleStatusCollected}, []string{bloodCollected.SampleID, salivaCollected.SampleID}},
		{"by type", transport.Filter{SampleType: api.SampleTypeBlood}, []string{bloodCollected.SampleID, bloodArchived.SampleID}},
		{"by both", transport.Filter{Status: api.SampleStatusCollected, SampleType: api.SampleTypeBlood}, []string{bloodCollected.SampleID}},
		{"no matches", transport.Filter{Status: api.SampleStatusProcessing}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d samples, want %d", len(got), len(tt.wantIDs))
			}
			for i, s := range got {
				if s.SampleID != tt.wantIDs[i] {
					t.Errorf("position %d: got %q, want %q", i, s.SampleID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	store := New()
	ctx := context.Background()

	sample := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	if err := store.Insert(ctx, sample); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated := sample.Clone()
	updated.Status = api.SampleStatusArchived
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.Get(ctx, sample.SampleID)
	if got.Status != api.SampleStatusArchived {
		t.Errorf("status = %q, want archived", got.Status)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	store := New()

	ghost := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	err := store.Update(context.Background(), ghost)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_KeepsInsertionOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	first := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	second := makeSample("P002", api.SampleTypeSaliva, api.SampleStatusCollected)
	for _, s := range []*api.Sample{first, second} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	updated := first.Clone()
	updated.Status = api.SampleStatusProcessing
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.List(ctx, transport.Filter{})
	if got[0].SampleID != first.SampleID {
		t.Error("update moved the sample out of insertion order")
	}
}

func TestDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	sample := makeSample("P001", api.SampleTypeBlood, api.SampleStatusCollected)
	if err := store.Insert(ctx, sample); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.Delete(ctx, sample.SampleID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(ctx, sample.SampleID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, sample.SampleID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	got, _ := store.List(ctx, transport.Filter{})
	if len(got) != 0 {
		t.Errorf("list after delete returned %d samples, want 0", len(got))
	}
}

func TestHealthCheckAndClose(t *testing.T) {
	store := New()
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("health check: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

package api

import (
	"strings"
	"testing"
)

func TestNewSampleID_Format(t *testing.T) {
	id := NewSampleID()

	if !strings.HasPrefix(id, "smp_") {
		t.Errorf("ID %q missing smp_ prefix", id)
	}
	if len(id) != len("smp_")+24 {
		t.Errorf("ID %q has length %d, want %d", id, len(id), len("smp_")+24)
	}
	if !ValidateSampleID(id) {
		t.Errorf("generated ID %q does not validate", id)
	}
}

func TestNewSampleID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewSampleID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestValidateSampleID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "smp_" + strings.Repeat("a", 24), true},
		{"empty", "", false},
		{"wrong prefix", "resp_" + strings.Repeat("a", 24), false},
		{"too short", "smp_abc", false},
		{"too long", "smp_" + strings.Repeat("a", 25), false},
		{"invalid chars", "smp_" + strings.Repeat("-", 24), false},
		{"uuid-shaped", "11111111-1111-1111-1111-111111111111", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSampleID(tt.id); got != tt.want {
				t.Errorf("ValidateSampleID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

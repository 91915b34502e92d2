package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// SampleType classifies the physical specimen.
type SampleType string

const (
	SampleTypeBlood  SampleType = "blood"
	SampleTypeSaliva SampleType = "saliva"
	SampleTypeTissue SampleType = "tissue"
)

// Valid reports whether the value is a member of the sample_type enum.
func (t SampleType) Valid() bool {
	switch t {
	case SampleTypeBlood, SampleTypeSaliva, SampleTypeTissue:
		return true
	}
	return false
}

// ParseSampleType converts textual input into a SampleType, rejecting
// anything outside the closed enum.
func ParseSampleType(s string) (SampleType, error) {
	t := SampleType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid sample_type %q: must be one of blood, saliva, tissue", s)
	}
	return t, nil
}

// SampleStatus tracks where a sample is in its lifecycle.
//
// There is no enforced transition graph: an update may move a sample from
// any status to any other (including archived back to collected).
type SampleStatus string

const (
	SampleStatusCollected  SampleStatus = "collected"
	SampleStatusProcessing SampleStatus = "processing"
	SampleStatusArchived   SampleStatus = "archived"
)

// Valid reports whether the value is a member of the status enum.
func (s SampleStatus) Valid() bool {
	switch s {
	case SampleStatusCollected, SampleStatusProcessing, SampleStatusArchived:
		return true
	}
	return false
}

// ParseSampleStatus converts textual input into a SampleStatus, rejecting
// anything outside the closed enum.
func ParseSampleStatus(s string) (SampleStatus, error) {
	st := SampleStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of collected, processing, archived", s)
	}
	return st, nil
}

// ---------------------------------------------------------------------------
// Date
// ---------------------------------------------------------------------------

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals to and from
// the "YYYY-MM-DD" wire format.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String returns the wire representation.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Equal reports whether two dates denote the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Format(DateLayout) == other.Format(DateLayout)
}

// MarshalJSON serializes the date as a "YYYY-MM-DD" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON deserializes a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string in YYYY-MM-DD format")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ---------------------------------------------------------------------------
// Sample
// ---------------------------------------------------------------------------

// Sample is a tracked physical specimen record. SampleID is assigned by the
// service at creation and never changes; all other fields are mutable via
// partial update.
type Sample struct {
	SampleID        string       `json:"sample_id"`
	SampleType      SampleType   `json:"sample_type"`
	SubjectID       string       `json:"subject_id"`
	CollectionDate  Date         `json:"collection_date"`
	Status          SampleStatus `json:"status"`
	StorageLocation string       `json:"storage_location"`
}

// Clone returns a copy of the sample.
func (s *Sample) Clone() *Sample {
	cp := *s
	return &cp
}

// CreateSampleRequest is the payload for creating a sample. Every field is
// required; sample_id is not accepted from clients.
type CreateSampleRequest struct {
	SampleType      string `json:"sample_type"`
	SubjectID       string `json:"subject_id"`
	CollectionDate  *Date  `json:"collection_date"`
	Status          string `json:"status"`
	StorageLocation string `json:"storage_location"`
}

// UpdateSampleRequest is the payload for a partial update. Only fields
// present in the request body are applied; fields that are absent leave the
// stored value untouched. A field that is present but null is rejected
// during validation, since every sample field is required.
type UpdateSampleRequest struct {
	SampleType      *string `json:"sample_type"`
	SubjectID       *string `json:"subject_id"`
	CollectionDate  *Date   `json:"collection_date"`
	Status          *string `json:"status"`
	StorageLocation *string `json:"storage_location"`

	// present records which keys appeared in the request body, so that an
	// explicit null can be told apart from an omitted field.
	present map[string]bool
}

// UnmarshalJSON decodes the partial payload and records which keys were
// present in the body.
func (r *UpdateSampleRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateSampleRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	*r = UpdateSampleRequest(a)
	r.present = make(map[string]bool, len(keys))
	for k := range keys {
		r.present[k] = true
	}
	return nil
}

// Has reports whether the named field appeared in the request body,
// including as an explicit null.
func (r *UpdateSampleRequest) Has(field string) bool {
	return r.present[field]
}

// Empty reports whether the request carries no recognized fields.
func (r *UpdateSampleRequest) Empty() bool {
	for _, f := range []string{"sample_type", "subject_id", "collection_date", "status", "storage_location"} {
		if r.present[f] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Auth payloads
// ---------------------------------------------------------------------------

// LoginRequest is the payload for username/password login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IdentityResponse is returned by the current-identity probe.
type IdentityResponse struct {
	Subject string `json:"subject"`
}

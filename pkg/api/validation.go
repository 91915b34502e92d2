package api

// ValidateCreate checks a CreateSampleRequest for validity. It returns an
// *APIError describing the first validation failure, or nil if the request
// is valid. Enum members are checked exhaustively so that out-of-enum input
// never reaches persistence.
func ValidateCreate(req *CreateSampleRequest) *APIError {
	if req.SampleType == "" {
		return NewValidationError("sample_type", "sample_type is required")
	}
	if _, err := ParseSampleType(req.SampleType); err != nil {
		return NewValidationError("sample_type", err.Error())
	}

	if req.SubjectID == "" {
		return NewValidationError("subject_id", "subject_id is required")
	}

	if req.CollectionDate == nil {
		return NewValidationError("collection_date", "collection_date is required")
	}

	if req.Status == "" {
		return NewValidationError("status", "status is required")
	}
	if _, err := ParseSampleStatus(req.Status); err != nil {
		return NewValidationError("status", err.Error())
	}

	if req.StorageLocation == "" {
		return NewValidationError("storage_location", "storage_location is required")
	}

	return nil
}

// ValidateUpdate checks an UpdateSampleRequest for validity. Only fields
// present in the request body are checked; a field that is present but null
// or empty fails, since every sample field is required once set.
func ValidateUpdate(req *UpdateSampleRequest) *APIError {
	if req.Has("sample_type") {
		if req.SampleType == nil || *req.SampleType == "" {
			return NewValidationError("sample_type", "sample_type must not be null")
		}
		if _, err := ParseSampleType(*req.SampleType); err != nil {
			return NewValidationError("sample_type", err.Error())
		}
	}

	if req.Has("subject_id") {
		if req.SubjectID == nil || *req.SubjectID == "" {
			return NewValidationError("subject_id", "subject_id must not be null")
		}
	}

	if req.Has("collection_date") && req.CollectionDate == nil {
		return NewValidationError("collection_date", "collection_date must not be null")
	}

	if req.Has("status") {
		if req.Status == nil || *req.Status == "" {
			return NewValidationError("status", "status must not be null")
		}
		if _, err := ParseSampleStatus(*req.Status); err != nil {
			return NewValidationError("status", err.Error())
		}
	}

	if req.Has("storage_location") {
		if req.StorageLocation == nil || *req.StorageLocation == "" {
			return NewValidationError("storage_location", "storage_location must not be null")
		}
	}

	return nil
}

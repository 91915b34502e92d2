package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeServerError     ErrorType = "server_error"
)

// APIError represents a structured API error with type, param, and message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewValidationError creates an APIError for input that fails field or enum
// validation. Param names the offending field.
func NewValidationError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Param:   param,
		Message: message,
	}
}

// NewInvalidRequestError creates an APIError for malformed requests
// (bad JSON, wrong content type, rejected login).
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewUnauthenticatedError creates an APIError for requests without a valid
// bearer token. The message is deliberately generic so callers cannot tell
// which part of a credential was wrong.
func NewUnauthenticatedError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthenticated,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}

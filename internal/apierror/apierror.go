// Package apierror provides the error response envelopes for the API.
// Every error the backend returns goes through this package so the
// point-of-sale frontend always gets the same shape, and so internal
// details (stack traces, DB errors) never leak to the terminal.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Detail carries the user-facing message, in Spanish, shown on screen.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Package apierror provides the canonical response envelope for the API.
// Every handler response goes through this package so that clients always
// receive {success: true, data} or {success: false, error} and never see
// internal details (stack traces, DB errors, etc.).
package apierror

// Envelope is the uniform JSON body for all API responses.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// OK wraps a successful payload.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// New wraps an error message.
func New(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}

// NewDetailed wraps a structured error payload (itemized business errors,
// field-level validation failures).
func NewDetailed(detail any) Envelope {
	return Envelope{Success: false, Error: detail}
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// NewValidation wraps multiple field errors.
func NewValidation(fields map[string]string) Envelope {
	return NewDetailed(ValidationError{Message: "Validation failed", Fields: fields})
}

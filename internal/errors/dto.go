package errors

// ErrorResponse is the envelope every failed API request returns.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the client-facing hint plus any safe details the error
// chain accumulated. Raw error text never appears here.
type ErrorDetail struct {
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

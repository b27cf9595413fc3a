package models

import "fmt"

// ValidationError reports a missing or malformed request field. Validation
// failures are surfaced before any completion call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// RemoteError reports a non-200 response from the completion endpoint.
// Rate limits and server errors take the same path: every remote failure is
// terminal for the current request.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.Status, e.Body)
}

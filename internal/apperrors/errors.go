package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrConfig             = errors.New("configuration error")
	ErrAuth               = errors.New("authentication failed")
	ErrNetwork            = errors.New("request failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStructuralMismatch = errors.New("structural mismatch")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error { return ErrNetwork }

// ConflictError reports a snapshot record whose id is already taken on the
// destination.
type ConflictError struct {
	Type     string
	ID       int
	Snapshot string
	Existing string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s id %d: snapshot record %q collides with existing destination record %q (run clean first)",
		e.Type, e.ID, e.Snapshot, e.Existing)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

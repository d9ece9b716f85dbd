package collection

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("link not found")
	ErrCorrupt    = errors.New("stored collection is corrupt")
	ErrNetwork    = errors.New("backend unreachable")
	ErrValidation = errors.New("invalid link")
)

// HTTPError is a non-2xx answer from the remote backend. A 404 matches
// ErrNotFound.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend responded %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ValidationError names the required field a form left empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

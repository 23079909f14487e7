// Package errs provides types and support related to web error functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/layout"
	"github.com/ardanlabs/registry/foundation/registry/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// statuses maps the registry errors onto the status returned to callers.
var statuses = []struct {
	err    error
	status int
}{
	{database.ErrInvalidInput, http.StatusBadRequest},
	{database.ErrDuplicateID, http.StatusConflict},
	{database.ErrNotFound, http.StatusNotFound},
	{database.ErrUnsupported, http.StatusNotImplemented},
	{state.ErrUnauthorized, http.StatusForbidden},
	{state.ErrAlreadyInitialized, http.StatusConflict},
	{state.ErrNotInitialized, http.StatusServiceUnavailable},
	{layout.ErrIncompatible, http.StatusUnprocessableEntity},
}

// FromRegistry wraps an error returned by the registry as a trusted error
// carrying its HTTP status. Errors the registry doesn't declare are returned
// untouched so they render as internal errors.
func FromRegistry(err error) error {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return NewTrusted(err, s.status)
		}
	}

	return err
}

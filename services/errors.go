package services

import (
	"errors"
	"fmt"
)

// ValidationError is a local, pre-flight failure. Its text is shown to the
// user as-is and it never reaches the network layer.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrUnresolvedLocations  ValidationError = "Could not resolve one or both locations to airport codes. Please refine your input."
	ErrMissingDepartureDate ValidationError = "Please select a departure date."
	ErrMissingReturnDate    ValidationError = "Please select a return date for round-trip flights."
	ErrInvalidMaxStops      ValidationError = "Please choose a valid maximum number of stops."
	ErrMissingLocation      ValidationError = "Please enter a location."
	ErrMissingDestination   ValidationError = "Please enter a destination."
)

var (
	ErrTransport     = errors.New("transport error")
	ErrUnresolved    = errors.New("airport code unresolved")
	ErrNotConfigured = errors.New("provider not configured")
)

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// TransportError is a network failure or timeout. Its message is the raw
// transport message so it can be shown as a last-resort explanation.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIError is a non-2xx answer from an HTTP service. Detail carries the
// structured "detail" field of the body when the service sent one.
type APIError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Body)
}

// UnsuccessfulError is a 2xx answer whose body reports success=false.
type UnsuccessfulError struct {
	Action string
}

func (e *UnsuccessfulError) Error() string {
	return e.Action + " was not successful"
}

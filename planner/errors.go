package planner

import (
	"errors"
	"net/http"

	"drift/services"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrUnknownFlow    = errors.New("unknown flow")
	ErrUnsupported    = errors.New("operation not supported by this flow")
	ErrNoResult       = errors.New("no result available")
)

const (
	msgInvalidParams = "Invalid search parameters. Please check your dates and locations."
	msgUnavailable   = "Service temporarily unavailable. Please try again later."
)

// UserMessage turns an error into the single line shown to the user.
// Structured details from the server win over status-based messages, and
// the raw error text is the last resort.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve services.ValidationError
	if errors.As(err, &ve) {
		return string(ve)
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		switch apiErr.StatusCode {
		case http.StatusBadRequest:
			return msgInvalidParams
		case http.StatusInternalServerError:
			return msgUnavailable
		}
	}

	return err.Error()
}

// IsValidation reports whether err is a local form error that never
// reached the network.
func IsValidation(err error) bool {
	var ve services.ValidationError
	return errors.As(err, &ve)
}

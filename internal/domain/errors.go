package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDashboardNotFound is returned when a dashboard session has not been opened.
	ErrDashboardNotFound = errors.New("dashboard not found")
	// ErrNoData indicates there is nothing to render yet.
	ErrNoData = errors.New("no data available")
)

// Response codes embedded in Open Trivia DB bodies.
const (
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
	CodeRateLimit        = 5
)

// TransportError is an HTTP-level failure (non-2xx status).
type TransportError struct {
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// APIError is a service-level failure signalled by the embedded response code.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// APICode returns the embedded response code carried by err, if any.
func APICode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}

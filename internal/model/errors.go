package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication aborts a run before any job is touched.
	ErrAuthentication = errors.New("authentication failed")

	// ErrMissingCredentials is the precondition failure for starting a run.
	ErrMissingCredentials = fmt.Errorf("%w: site credentials are missing", ErrAuthentication)

	// ErrNavigationTimeout means a bounded wait was not met.
	ErrNavigationTimeout = errors.New("navigation timeout")

	// ErrFlowUnrecognized means the wizard reached a page matching no known shape.
	ErrFlowUnrecognized = errors.New("unrecognized application flow")

	// ErrRunActive is returned when a run is requested while another is in progress.
	ErrRunActive = errors.New("a run is already in progress")
)

// ExternalServiceError wraps a failed call to the text-completion service.
// StatusCode is zero for transport or decoding failures.
type ExternalServiceError struct {
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion service HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion service: %v", e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

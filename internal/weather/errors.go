package weather

import (
	"errors"
	"fmt"
)

// ErrCycleInFlight is returned when a fetch cycle is requested while another
// one, including its retries, has not finished.
var ErrCycleInFlight = errors.New("weather fetch cycle already in flight")

// TransportError reports a non-success HTTP status from the weather API.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("weather api returned status %d: %s", e.StatusCode, e.Body)
}

// ServiceError reports an error object embedded in an otherwise valid response.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("weather api error %d: %s", e.Code, e.Message)
	}
	return "weather api error: " + e.Message
}

// MalformedResponseError reports a response missing a required section.
type MalformedResponseError struct {
	Section string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed weather response (%s): %v", e.Section, e.Err)
	}
	return fmt.Sprintf("malformed weather response: missing %s", e.Section)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing or invalid API key or location.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

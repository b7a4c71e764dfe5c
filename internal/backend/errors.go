package backend

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// DuplicateMarker is the substring the backend places in the error message
// when a reservation conflicts with an existing booking.
const DuplicateMarker = "DUPLICATE_VALUE"

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the backend refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-2xx status code
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeDuplicate indicates the yacht is already booked for the date
	ErrTypeDuplicate
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeDuplicate:
		return "Duplicate Reservation"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Client method that fails.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable message, the backend's own text for HTTP errors
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the request may be retried
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// classifyNetworkError maps a transport error onto an Error.
func classifyNetworkError(message string, err error) *Error {
	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &Error{Type: ErrTypeTimeout, Message: message, Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Type: ErrTypeDNS, Message: fmt.Sprintf("%s: cannot resolve %s", message, dnsErr.Name), Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &Error{Type: ErrTypeConnectionRefused, Message: message, Err: err, Retryable: true}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return classifyNetworkError(message, urlErr.Err)
	}

	return &Error{Type: ErrTypeNetwork, Message: message, Err: err, Retryable: true}
}

// newHTTPError builds an Error for a non-2xx response. A message carrying the
// duplicate marker is classified as ErrTypeDuplicate.
func newHTTPError(statusCode int, message string) *Error {
	if strings.Contains(message, DuplicateMarker) {
		return &Error{Type: ErrTypeDuplicate, Message: message, StatusCode: statusCode}
	}
	return &Error{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

func newParseError(message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Message: message, Err: err}
}

// IsDuplicate reports whether err signals a duplicate-booking conflict.
// Only the message text is inspected, so errors from other sources that
// carry the marker are recognised as well.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Type == ErrTypeDuplicate || strings.Contains(be.Message, DuplicateMarker)
	}
	return strings.Contains(err.Error(), DuplicateMarker)
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	switch be.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}

// ShortMessage returns a concise, user-facing description of err.
func ShortMessage(err error) string {
	var be *Error
	if !errors.As(err, &be) {
		return err.Error()
	}

	switch be.Type {
	case ErrTypeTimeout:
		return "Reservation service not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Reservation service refused the connection"
	case ErrTypeDNS:
		return "Cannot resolve reservation service host"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		if be.Message != "" {
			return fmt.Sprintf("Service error (HTTP %d): %s", be.StatusCode, be.Message)
		}
		return fmt.Sprintf("Service error (HTTP %d)", be.StatusCode)
	case ErrTypeParse:
		return "Unexpected response from reservation service"
	case ErrTypeDuplicate:
		return "This yacht is already booked on the requested date"
	default:
		return be.Message
	}
}

// TroubleshootingHints returns follow-up suggestions for err, or nil when
// there is nothing useful to add.
func TroubleshootingHints(err error) []string {
	var be *Error
	if !errors.As(err, &be) {
		return nil
	}

	switch be.Type {
	case ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeNetwork:
		return []string{
			"Check that the backend URL is correct (charterdesk config show)",
			"Verify the reservation service is running",
			"Try 'charterdesk discover' to find services on the local network",
		}
	case ErrTypeDNS:
		return []string{
			"Use an IP address instead of a hostname",
			"Check your network DNS settings",
		}
	case ErrTypeHTTP:
		if be.StatusCode >= 500 {
			return []string{"The reservation service reported an internal error; try again later"}
		}
		return []string{"Check the search criteria and try again"}
	case ErrTypeDuplicate:
		return []string{"Choose a different date or another yacht"}
	}
	return nil
}

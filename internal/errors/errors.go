// Package errors provides the error taxonomy for the dixit backend client.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the three failure kinds
var (
	ErrBackendUnreachable   = errors.New("backend unreachable")
	ErrBackendError         = errors.New("backend error")
	ErrInvalidResponseShape = errors.New("invalid response shape")
)

// ErrorKind identifies which branch of the taxonomy an error belongs to
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnreachable
	KindBackend
	KindInvalidShape
)

// String returns a short label for the kind
func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "BackendUnreachable"
	case KindBackend:
		return "BackendError"
	case KindInvalidShape:
		return "InvalidResponseShape"
	default:
		return "Unknown"
	}
}

// UnreachableError means no response reached the client (DNS, refused, timeout, cancel)
type UnreachableError struct {
	Endpoint string
	Timeout  bool
	Cause    error
}

func (e *UnreachableError) Error() string {
	reason := "no response"
	if e.Timeout {
		reason = "timed out"
	}
	if e.Cause != nil {
		return fmt.Sprintf("backend unreachable at %s (%s): %v", e.Endpoint, reason, e.Cause)
	}
	return fmt.Sprintf("backend unreachable at %s (%s)", e.Endpoint, reason)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *UnreachableError) Is(target error) bool {
	if target == ErrBackendUnreachable {
		return true
	}
	_, ok := target.(*UnreachableError)
	return ok
}

// NewUnreachableError creates a new UnreachableError
func NewUnreachableError(endpoint string, cause error) *UnreachableError {
	return &UnreachableError{Endpoint: endpoint, Cause: cause}
}

// NewTimeoutError creates an UnreachableError flagged as a timeout
func NewTimeoutError(endpoint string, cause error) *UnreachableError {
	return &UnreachableError{Endpoint: endpoint, Timeout: true, Cause: cause}
}

// BackendError means the backend answered but signaled failure: a non-success status
// or a body that is not JSON.
type BackendError struct {
	StatusCode int
	Endpoint   string
	Body       string
	Parse      bool
	Cause      error
}

func (e *BackendError) Error() string {
	var sb strings.Builder
	if e.Parse {
		sb.WriteString(fmt.Sprintf("backend error at %s: unparseable response body", e.Endpoint))
		if e.Cause != nil {
			sb.WriteString(fmt.Sprintf(": %v", e.Cause))
		}
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("backend error [%d] at %s", e.StatusCode, e.Endpoint))
	if body := strings.TrimSpace(e.Body); body != "" {
		sb.WriteString(" — ")
		sb.WriteString(body)
	}
	return sb.String()
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *BackendError) Is(target error) bool {
	if target == ErrBackendError {
		return true
	}
	_, ok := target.(*BackendError)
	return ok
}

// NewStatusError creates a BackendError for a non-success HTTP status
func NewStatusError(statusCode int, endpoint, body string) *BackendError {
	return &BackendError{StatusCode: statusCode, Endpoint: endpoint, Body: body}
}

// NewParseError creates the parse variant of BackendError
func NewParseError(statusCode int, endpoint string, cause error) *BackendError {
	return &BackendError{StatusCode: statusCode, Endpoint: endpoint, Parse: true, Cause: cause}
}

// InvalidResponseShapeError means a 2xx JSON reply carried no recognizable answer field
type InvalidResponseShapeError struct {
	Attempted []string
}

func (e *InvalidResponseShapeError) Error() string {
	return fmt.Sprintf("invalid response shape: missing %s field", strings.Join(e.Attempted, "/"))
}

// Is allows comparison with sentinel errors
func (e *InvalidResponseShapeError) Is(target error) bool {
	if target == ErrInvalidResponseShape {
		return true
	}
	_, ok := target.(*InvalidResponseShapeError)
	return ok
}

// NewInvalidResponseShapeError creates a new InvalidResponseShapeError
func NewInvalidResponseShapeError(attempted []string) *InvalidResponseShapeError {
	fields := make([]string, len(attempted))
	copy(fields, attempted)
	return &InvalidResponseShapeError{Attempted: fields}
}

// Kind classifies err into the taxonomy
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrBackendUnreachable):
		return KindUnreachable
	case errors.Is(err, ErrBackendError):
		return KindBackend
	case errors.Is(err, ErrInvalidResponseShape):
		return KindInvalidShape
	default:
		return KindUnknown
	}
}

// IsUnreachable reports whether err is a BackendUnreachable failure
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrBackendUnreachable)
}

// IsTimeout reports whether err is an UnreachableError caused by a timeout
func IsTimeout(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue) && ue.Timeout
}

// IsBackendError reports whether err is a BackendError
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackendError)
}

// IsInvalidShape reports whether err is an InvalidResponseShape failure
func IsInvalidShape(err error) bool {
	return errors.Is(err, ErrInvalidResponseShape)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}

// GetResponseBody returns the best-effort body text carried by err
func GetResponseBody(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Body
	}
	return ""
}

// GetEndpoint returns the endpoint the failing request targeted
func GetEndpoint(err error) string {
	var ue *UnreachableError
	if errors.As(err, &ue) {
		return ue.Endpoint
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Endpoint
	}
	return ""
}

// GetAttemptedFields returns the answer fields tried before giving up
func GetAttemptedFields(err error) []string {
	var se *InvalidResponseShapeError
	if errors.As(err, &se) {
		return se.Attempted
	}
	return nil
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not in the backend or in the session list.
	ErrUserNotFound = errors.New("user not found")
	// ErrFormClosed is returned when a submit arrives while no form is open.
	ErrFormClosed = errors.New("form is not open")
	// ErrInvalidSession is returned when a request carries no usable session.
	ErrInvalidSession = errors.New("invalid session")
	// ErrTaskNotFound is returned when the email backend does not know a task id.
	ErrTaskNotFound = errors.New("task not found")
)

// BackendError is a non-2xx answer from one of the external services.
type BackendError struct {
	Service    string
	Op         string
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: backend returned status %d", e.Service, e.Op, e.StatusCode)
}

// Is lets a 404 from the backend match the not-found sentinels.
func (e *BackendError) Is(target error) bool {
	if e.StatusCode != http.StatusNotFound {
		return false
	}
	return target == ErrUserNotFound && e.Service == "users" ||
		target == ErrTaskNotFound && e.Service == "email"
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var backendErr *BackendError
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrTaskNotFound):
		return NewHTTPError(http.StatusNotFound, ErrTaskNotFound.Error(), "TASK_NOT_FOUND")
	case errors.Is(err, ErrInvalidSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_SESSION")
	case errors.Is(err, ErrFormClosed):
		return NewHTTPError(http.StatusConflict, err.Error(), "FORM_CLOSED")
	case errors.As(err, &backendErr):
		return NewHTTPError(http.StatusBadGateway, "backend request failed", "BACKEND_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

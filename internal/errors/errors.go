package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when a payload is missing or malforms a required field.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// Unknown email and wrong password map to the same value on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned for missing/invalid tokens, missing admin
	// role, and failed ownership checks alike.
	ErrUnauthorized = errors.New("user not authorized")
	// ErrTaskNotFound is returned for malformed or unknown task identifiers.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned for malformed or unknown user identifiers.
	ErrUserNotFound = errors.New("user not found")
	// ErrInadmissibleFile is returned when an attachment is not a PDF.
	ErrInadmissibleFile = errors.New("not an admissible file type")
	// ErrFileTooLarge is returned when an attachment exceeds the size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrTooManyFiles is returned when a request attaches more files than allowed.
	ErrTooManyFiles = errors.New("too many files attached")
)

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

// MapErrorToHTTP maps domain errors to HTTP errors. Unrecognized errors
// surface as a generic 500 so internal detail never leaks to clients.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInadmissibleFile):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INADMISSIBLE_FILE")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, ErrTooManyFiles):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TOO_MANY_FILES")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrTaskNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TASK_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

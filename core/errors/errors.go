package errors

import "fmt"

// ErrorCode identifies an application error category
type ErrorCode string

const (
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"

	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrForbidden                  ErrorCode = "FORBIDDEN"

	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrProviderUnavailable means a calendar collaborator failed after its
	// retry budget. Distinct from an empty interval list.
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	// ErrUnsupportedProvider means an unknown provider name was passed to a
	// booking/update/cancel/reschedule operation.
	ErrUnsupportedProvider ErrorCode = "UNSUPPORTED_PROVIDER"

	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

// AppError is the application error carried between service and controller layers
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

package shared

import (
	"errors"
	"net/http"
)

// Token verification sentinels. The codec never leaks library internals past
// these: any parse, signature or claim-shape failure wraps ErrTokenMalformed.
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("invalid token")

	ErrMissingAuthHeader = errors.New("authorization header is missing")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// AppError is the error shape recovered at the gate/router boundary and
// translated into the standard error envelope.
type AppError struct {
	StatusCode int
	Message    string
	ErrorCode  string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, errorCode, message string, err error) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewUnauthorizedError(errorCode, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, errorCode, message, nil)
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidationFailed, message, err)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, nil)
}

func NewTooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeRateLimited, message, nil)
}

func NewInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

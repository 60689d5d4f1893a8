package constants

import "net/http"

// CodedError is an error that carries the HTTP status it should be answered with.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDataUnavailable   = NewCodedError(http.StatusServiceUnavailable, "data unavailable")
	ErrAccessDenied      = NewCodedError(http.StatusUnauthorized, "Password incorrect. Please try again.")
	ErrTooManyAttempts   = NewCodedError(http.StatusTooManyRequests, "too many attempts, try again later")
	ErrUnauthorized      = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrMissingAuthCookie = NewCodedError(http.StatusUnauthorized, "missing auth cookie")
	ErrInvalidSelection  = NewCodedError(http.StatusBadRequest, "invalid selection")
	ErrBadRequest        = NewCodedError(http.StatusBadRequest, "bad request")
	ErrUnknownView       = NewCodedError(http.StatusNotFound, "unknown view")
	ErrUnknownDataset    = NewCodedError(http.StatusNotFound, "unknown dataset")
	ErrDBNotFound        = NewCodedError(http.StatusNotFound, "not found")
)

package constants

import "net/http"

// CodedError is an error that carries the HTTP status it should be
// reported with. The api error handler unwraps to the first CodedError
// in the chain.
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
	ErrDBNotFound        = NewCodedError(http.StatusNotFound, "not found")
	ErrRegionNotFound    = NewCodedError(http.StatusNotFound, "region not found")
	ErrFacilityNotFound  = NewCodedError(http.StatusNotFound, "facility not found")
	ErrUserNotFound      = NewCodedError(http.StatusNotFound, "facility user not found")
	ErrUsernameTaken     = NewCodedError(http.StatusBadRequest, "username already registered")
	ErrInvalidReport     = NewCodedError(http.StatusBadRequest, "malformed report message")
	ErrUnauthorized      = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrMissingAuthHeader = NewCodedError(http.StatusUnauthorized, "missing authorization header")
)

package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller
type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindAuthentication Kind = "UNAUTHENTICATED"
	KindAuthorization  Kind = "FORBIDDEN"
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "CONFLICT"
	KindInvalidState   Kind = "INVALID_STATE"
)

// Error is a classified application error. Anything that is not an *Error
// is treated as an unexpected server error.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetails returns a copy of e carrying details
func (e *Error) WithDetails(details interface{}) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: details}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Authorization(message string) *Error {
	return New(KindAuthorization, message)
}

func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func InvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

var (
	ErrInvalidCredentials = New(KindAuthentication, "invalid username or password")
	ErrUnauthenticated    = New(KindAuthentication, "authentication required")
	ErrInvalidToken       = New(KindAuthentication, "invalid token")

	ErrAdminOnly    = Authorization("only an admin may perform this action")
	ErrCustomerOnly = Authorization("only customers may perform this action")

	ErrUsernameTaken   = Conflict("username is already taken")
	ErrUniqueCodeTaken = Conflict("unique code is already taken")

	ErrRequestProcessed = InvalidState("request has already been processed")
)

// KindOf returns the kind of err, or "" when err is unclassified
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err is an application error of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Package apperror is the error taxonomy shared by the catalog, the ledger and
// the HTTP boundary. Every error returned by a service wraps exactly one of the
// sentinel kinds below, so callers branch with errors.Is.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrDuplicateItem          = errors.New("item already exists")
	ErrItemNotFound           = errors.New("item not found")
	ErrUnknownItem            = errors.New("unknown item")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrIntegrityViolation     = errors.New("ledger integrity violation")
	ErrQuantityOverflow       = errors.New("ledger quantity overflow")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrDuplicateRequest       = errors.New("duplicate request")
	ErrUnauthorized           = errors.New("authentication required")
)

// Error carries a kind, a client-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind error, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Message is the text safe to show a client. Server-side failures expose only
// their kind; details and causes stay in the logs. Storage messages are fixed
// retry hints and pass through.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if HTTPStatus(appErr) >= http.StatusInternalServerError && !errors.Is(appErr.Kind, ErrStorageUnavailable) {
			return appErr.Kind.Error()
		}
		if appErr.Message != "" {
			return appErr.Message
		}
		return appErr.Kind.Error()
	}
	return "Internal Server Error"
}

// HTTPStatus maps an error to the status code of the HTTP boundary.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDuplicateItem),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrUnknownItem),
		errors.Is(err, ErrInvalidTransactionType):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDuplicateRequest):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package callable

import (
	"net/http"
)

// Status is the canonical error status a callable function reports to its client.
type Status string

const (
	StatusInvalidArgument Status = "INVALID_ARGUMENT"
	StatusUnauthenticated Status = "UNAUTHENTICATED"
	StatusInternal        Status = "INTERNAL"
)

func (s Status) HTTPStatus() int {
	switch s {
	case StatusInvalidArgument:
		return http.StatusBadRequest
	case StatusUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Status so errors.Is(err, ErrUnauthenticated) holds for any message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Status == t.Status
	}
	return false
}

var (
	ErrInvalidArgument = &Error{Status: StatusInvalidArgument, Message: "invalid argument"}
	ErrUnauthenticated = &Error{Status: StatusUnauthenticated, Message: "unauthenticated"}
	ErrInternal        = &Error{Status: StatusInternal, Message: "internal"}
)

func NewError(status Status, message string) *Error {
	return &Error{Status: status, Message: message}
}

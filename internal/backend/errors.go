package backend

import (
	"errors"
	"strings"
)

// MsgInvalidResponse is the message carried by an ApplicationError when a 2xx body is not valid JSON.
const MsgInvalidResponse = "invalid response format"

// TransportError means the request never completed: dial failure, reset, transport timeout.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError is a completed exchange the client cannot use: a non-2xx status, or a
// 2xx whose body is not the expected JSON.
type ApplicationError struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ApplicationError) Error() string { return e.Message }

func (e *ApplicationError) Unwrap() error { return e.Cause }

// newStatusError builds the ApplicationError for a non-2xx response. The body text wins over
// the status line. Leading and trailing whitespace is trimmed from the body, and a body that is
// only whitespace falls back to the status line.
func newStatusError(op string, code int, status string, body []byte) *ApplicationError {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = status
	}
	return &ApplicationError{Op: op, StatusCode: code, Message: msg}
}

func newFormatError(op string, code int, cause error) *ApplicationError {
	return &ApplicationError{Op: op, StatusCode: code, Message: MsgInvalidResponse, Cause: cause}
}

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsApplication reports whether err is or wraps an ApplicationError.
func IsApplication(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}

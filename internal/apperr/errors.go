package apperr

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
)

// Error is a domain error carrying a Code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// GetCode returns the outermost code in err's chain, or CodeUnknown.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether any *Error in err's chain carries code.
func IsCode(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// ToConnect converts err for the transport. Unknown errors become internal
// with a generic message so storage details do not leak to clients.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		msg := e.Message
		if msg == "" {
			msg = string(e.Code)
		}
		if e.Code.Kind() == KindStorage {
			msg = "storage failure"
		}
		cerr := connect.NewError(e.Code.ConnectCode(), errors.New(msg))
		cerr.Meta().Set("X-Error-Code", string(e.Code))
		return cerr
	}
	return connect.NewError(connect.CodeInternal, errors.New("an unexpected error occurred"))
}

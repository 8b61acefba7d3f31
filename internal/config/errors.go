package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is matched by every configuration resolution failure.
	ErrConfig = errors.New("configuration error")
	// ErrUnknownMode is returned when the mode variable holds an unrecognized value.
	ErrUnknownMode = errors.New("unrecognized mode")
)

// Error describes why an environment variable could not be resolved.
// The cause text is left out of Error() for sensitive variables because
// converters commonly echo their input.
type Error struct {
	Key       Key
	Message   string
	Sensitive bool
	Err       error
}

func newError(key Key, format string, args ...any) *Error {
	return &Error{Key: key, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err != nil && !e.Sensitive {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the conversion failure, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrConfig.
func (e *Error) Is(target error) bool {
	return target == ErrConfig
}

package model

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the watched log file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ConfigError reports a configuration problem detected before an operation starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", err.Field, err.Reason)
}

// ValidationError reports invalid user input. The operation is not attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

package pipetheory

import (
	"errors"
	"fmt"
)

// DefinitionError is a definition-time failure with a stable error code.
//
// Every DefinitionError aborts the whole infrastructure build: the failures
// are operator mistakes (missing stream, unknown operation), not transient
// conditions, so nothing retries them.
type DefinitionError struct {
	Code    string
	Message string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newConfigError(format string, args ...any) *DefinitionError {
	return &DefinitionError{
		Code:    errorCodeConfig,
		Message: fmt.Sprintf(format, args...),
	}
}

func newInvalidOperationError(raw string) *DefinitionError {
	return &DefinitionError{
		Code:    errorCodeInvalidOperation,
		Message: fmt.Sprintf("operation type must be one of: INSERT, MODIFY, REMOVE. Got: %q", raw),
	}
}

// IsConfigError reports whether err is a missing-capability configuration
// failure, such as a table without a change stream.
func IsConfigError(err error) bool {
	return hasErrorCode(err, errorCodeConfig)
}

// IsInvalidOperationError reports whether err is an operation type outside
// the INSERT/MODIFY/REMOVE enumeration.
func IsInvalidOperationError(err error) bool {
	return hasErrorCode(err, errorCodeInvalidOperation)
}

func hasErrorCode(err error, code string) bool {
	var defErr *DefinitionError
	if !errors.As(err, &defErr) {
		return false
	}
	return defErr.Code == code
}

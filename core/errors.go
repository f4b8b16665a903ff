package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking.
var (
	ErrTransformInfeasible = errors.New("no safe flattening pattern for region")
	ErrValidationExhausted = errors.New("repair attempts exhausted")
	ErrUnknownDialect      = errors.New("no adapter registered for dialect")
)

// MalformedStructureError reports that an adapter could not build a
// consistent Block tree. It is fatal only for the affected region or unit.
type MalformedStructureError struct {
	Dialect string
	Line    int
	Reason  string
}

func (e *MalformedStructureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed %s structure at line %d: %s", e.Dialect, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed %s structure: %s", e.Dialect, e.Reason)
}

// IsMalformed reports whether err is a structural indexing failure.
func IsMalformed(err error) bool {
	var m *MalformedStructureError
	return errors.As(err, &m)
}

// ErrorCode provides a machine-readable error type for JSON output.
type ErrorCode string

const (
	ECNone                ErrorCode = ""
	ECMalformedStructure  ErrorCode = "ERR_MALFORMED_STRUCTURE"
	ECTransformInfeasible ErrorCode = "ERR_TRANSFORM_INFEASIBLE"
	ECValidationExhausted ErrorCode = "ERR_VALIDATION_EXHAUSTED"
	ECUnknownDialect      ErrorCode = "ERR_UNKNOWN_DIALECT"
)

// CodeFor maps an error to its ErrorCode.
func CodeFor(err error) ErrorCode {
	switch {
	case err == nil:
		return ECNone
	case IsMalformed(err):
		return ECMalformedStructure
	case errors.Is(err, ErrTransformInfeasible):
		return ECTransformInfeasible
	case errors.Is(err, ErrValidationExhausted):
		return ECValidationExhausted
	case errors.Is(err, ErrUnknownDialect):
		return ECUnknownDialect
	default:
		return ErrorCode("ERR_UNKNOWN")
	}
}

// Package errors wraps github.com/cockroachdb/errors for footprint.
//
// Errors created or wrapped here carry stack traces and can hold user-facing
// hints, which the CLI prints under the error message:
//
//	if err := os.MkdirAll(dir, 0o755); err != nil {
//	    return errors.WithHint(
//	        errors.Wrapf(err, "create run dir %s", dir),
//	        "check output.runs_dir in am.toml")
//	}
//
// Per-source failures during a lookup are not errors at this level; they
// become schema.Warning values and the run continues.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
)

// Hints shown to the user
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	GetAllHints = crdb.GetAllHints
)

// Inspection and marking
var (
	Is   = crdb.Is
	As   = crdb.As
	Mark = crdb.Mark

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors shared across footprint.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidInput indicates a lookup input failed normalization or validation
	ErrInvalidInput = New("invalid input")

	// ErrUnknownSource indicates a source id that is not in the registry
	ErrUnknownSource = New("unknown source")

	// ErrContractViolation indicates a source broke its request-building contract
	ErrContractViolation = New("source contract violation")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidInputError checks if an error is or wraps ErrInvalidInput
func IsInvalidInputError(err error) bool {
	return err != nil && Is(err, ErrInvalidInput)
}

// IsContractViolation checks if an error is or wraps ErrContractViolation
func IsContractViolation(err error) bool {
	return err != nil && Is(err, ErrContractViolation)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}

// NewInvalidInputError creates an invalid-input error with a formatted message
func NewInvalidInputError(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidInput, format, args...)
}

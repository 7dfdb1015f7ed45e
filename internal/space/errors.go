package space

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes space errors.
type ErrorCode string

const (
	// ErrCodeDimensionMismatch indicates data whose shape disagrees with a
	// space's expanded dimensions.
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"

	// ErrCodeConstraintViolation indicates a registered constraint evaluated
	// to false.
	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeArityMismatch indicates a block invoked with the wrong number of
	// points, a rule producing the wrong number of outputs, or a missing or
	// ill-typed space or block where one is required.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeInvalidSpace indicates malformed space construction arguments.
	ErrCodeInvalidSpace ErrorCode = "INVALID_SPACE"

	// ErrCodeInvalidBlock indicates malformed block construction arguments.
	ErrCodeInvalidBlock ErrorCode = "INVALID_BLOCK"

	// ErrCodeUnknownOperation indicates an operation missing from a space's
	// operation table.
	ErrCodeUnknownOperation ErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeOperationFailed indicates an operation rule that could not
	// combine two points, such as integer division by zero or overflow.
	ErrCodeOperationFailed ErrorCode = "OPERATION_FAILED"

	// ErrCodeUnknownBlock indicates a metric or projection missing from a
	// space's registries.
	ErrCodeUnknownBlock ErrorCode = "UNKNOWN_BLOCK"
)

// Error is the single error type returned by this package.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Space names the space involved, if any.
	Space string

	// Block names the block involved (the failing constraint for
	// CONSTRAINT_VIOLATION), if any.
	Block string

	// Mismatches lists structural differences for DIMENSION_MISMATCH.
	Mismatches []Mismatch

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Space != "" && e.Block != "":
		return fmt.Sprintf("%s: %s (space=%s, block=%s)", e.Code, e.Message, e.Space, e.Block)
	case e.Space != "":
		return fmt.Sprintf("%s: %s (space=%s)", e.Code, e.Message, e.Space)
	case e.Block != "":
		return fmt.Sprintf("%s: %s (block=%s)", e.Code, e.Message, e.Block)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsDimensionMismatch reports whether err is a DIMENSION_MISMATCH error.
func IsDimensionMismatch(err error) bool {
	return CodeOf(err) == ErrCodeDimensionMismatch
}

// IsConstraintViolation reports whether err is a CONSTRAINT_VIOLATION error.
func IsConstraintViolation(err error) bool {
	return CodeOf(err) == ErrCodeConstraintViolation
}

// IsArityMismatch reports whether err is an ARITY_MISMATCH error.
func IsArityMismatch(err error) bool {
	return CodeOf(err) == ErrCodeArityMismatch
}

func newDimensionMismatch(s string, expected, given Shape, mismatches []Mismatch) *Error {
	return &Error{
		Code:       ErrCodeDimensionMismatch,
		Message:    fmt.Sprintf("expected %s, was given %s", expected, given),
		Space:      s,
		Mismatches: mismatches,
	}
}

func newConstraintViolation(s, constraint string) *Error {
	return &Error{
		Code:    ErrCodeConstraintViolation,
		Message: fmt.Sprintf("supplied data failed constraint %q", constraint),
		Space:   s,
		Block:   constraint,
	}
}

func newArityMismatch(s, block, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeArityMismatch,
		Message: fmt.Sprintf(format, args...),
		Space:   s,
		Block:   block,
	}
}

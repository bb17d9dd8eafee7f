// Package xerr implements the transfer engine's error taxonomy (§7 of
// SPEC_FULL.md): a small closed set of typed outcomes, each carrying the
// CLI exit code it maps to and a Mask-safe message. This mirrors the
// teacher codebase's PreflightResult/Warning pattern in
// internal/apply/apply.go (a few concrete structs, not a generic
// error-wrapping library) rather than introducing one.
package xerr

import (
	"errors"
	"fmt"
)

// Kind identifies which taxonomy bucket an error belongs to.
type Kind string

const (
	KindConnection      Kind = "connection"
	KindConfiguration   Kind = "configuration"
	KindSchemaInference Kind = "schema_inference"
	KindDataValidation  Kind = "data_validation"
	KindTransform       Kind = "transform"
	KindTarget          Kind = "target"
)

// ExitCode returns the process exit code this Kind maps to (§6).
func (k Kind) ExitCode() int {
	switch k {
	case KindConnection, KindTarget:
		return 1
	case KindConfiguration, KindSchemaInference:
		return 2
	case KindDataValidation:
		return 3
	case KindTransform:
		return 4
	default:
		return 1
	}
}

// Error is the concrete error type raised by every core component. Message
// is assumed already credential-masked by the caller (see Mask).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Connection, Configuration, SchemaInference, DataValidation, Transform and
// Target are convenience constructors for each taxonomy bucket.

func Connection(format string, args ...any) *Error {
	return New(KindConnection, fmt.Sprintf(format, args...))
}

func Configuration(format string, args ...any) *Error {
	return New(KindConfiguration, fmt.Sprintf(format, args...))
}

func SchemaInference(format string, args ...any) *Error {
	return New(KindSchemaInference, fmt.Sprintf(format, args...))
}

func DataValidation(format string, args ...any) *Error {
	return New(KindDataValidation, fmt.Sprintf(format, args...))
}

func Transform(format string, args ...any) *Error {
	return New(KindTransform, fmt.Sprintf(format, args...))
}

func Target(format string, args ...any) *Error {
	return New(KindTarget, fmt.Sprintf(format, args...))
}

// ExitCode extracts the exit code implied by err, defaulting to 1 for any
// error that is not a *Error (an unclassified runtime failure).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.ExitCode()
	}
	return 1
}

// Package validation turns untrusted target and port expressions into parsed,
// bounded values. Every rejection carries a Reason so callers and tests can
// tell why input was refused, and injection attempts stay distinguishable
// from ordinary typos.
package validation

import (
	"errors"
	"fmt"
)

// Reason identifies why an expression was rejected.
type Reason string

const (
	ReasonEmpty           Reason = "empty"
	ReasonInjection       Reason = "injection"
	ReasonTooLong         Reason = "too_long"
	ReasonEmptyAtom       Reason = "empty_atom"
	ReasonMalformedRange  Reason = "malformed_range"
	ReasonInvalidAddress  Reason = "invalid_address"
	ReasonMixedFamily     Reason = "mixed_family"
	ReasonDescendingRange Reason = "descending_range"
	ReasonInvalidHostname Reason = "invalid_hostname"
	ReasonCharset         Reason = "charset"
	ReasonArity           Reason = "arity"
	ReasonNotNumeric      Reason = "not_numeric"
	ReasonOutOfRange      Reason = "out_of_range"
)

// Field names used in Error.Field.
const (
	FieldTarget = "target"
	FieldPorts  = "ports"
)

// ErrInjection matches, via errors.Is, any Error whose reason is ReasonInjection.
var ErrInjection = errors.New("shell metacharacter in argument")

// Error describes a rejected expression.
type Error struct {
	Field   string
	Value   string
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInjection) single out injection attempts.
func (e *Error) Is(target error) bool {
	return target == ErrInjection && e.Reason == ReasonInjection
}

// IsInjection reports whether the expression carried blocklisted characters.
func (e *Error) IsInjection() bool {
	return e.Reason == ReasonInjection
}

// ReasonOf returns the rejection reason of err, or "" when err is not an *Error.
func ReasonOf(err error) Reason {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	return ""
}

func newError(field, value string, reason Reason, format string, args ...any) *Error {
	return &Error{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

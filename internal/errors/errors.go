// Package errors provides structured error handling for scangate operations.
// It defines error codes and error types that carry enough context for the
// outer layers to render a safe response without leaking scanner output.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"
	CodePermission    ErrorCode = "PERMISSION"

	// Scanning errors.
	CodeInjectionAttempt ErrorCode = "INJECTION_ATTEMPT"
	CodeTargetInvalid    ErrorCode = "TARGET_INVALID"
	CodePortsInvalid     ErrorCode = "PORTS_INVALID"
	CodeScanFailed       ErrorCode = "SCAN_FAILED"
	CodeScannerMissing   ErrorCode = "SCANNER_MISSING"
	CodeScannerBusy      ErrorCode = "SCANNER_BUSY"

	// Report errors.
	CodeExport ErrorCode = "EXPORT"

	// Service errors.
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// ScanError represents an error that occurred while validating, running or
// exporting a scan.
type ScanError struct {
	Code      ErrorCode
	Message   string
	Target    string
	Operation string
	Cause     error
	Context   map[string]interface{}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ScanError) WithContext(key string, value interface{}) *ScanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithOperation records the operation that failed.
func (e *ScanError) WithOperation(op string) *ScanError {
	e.Operation = op
	return e
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Context: make(map[string]interface{}),
	}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// WrapScanErrorWithTarget wraps an error with target information.
func WrapScanErrorWithTarget(code ErrorCode, message, target string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
	}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error, or any error it wraps, has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Code
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	return CodeUnknown
}

// IsClientError reports whether the error was caused by the caller's input
// rather than by the scanner or the host.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case CodeValidation, CodeInjectionAttempt, CodeTargetInvalid, CodePortsInvalid, CodeExport:
		return true
	default:
		return false
	}
}

// IsSecurityEvent reports whether the error should be logged as a security event.
func IsSecurityEvent(err error) bool {
	return GetCode(err) == CodeInjectionAttempt
}

// IsFatal determines if an error indicates a fatal condition that should stop execution.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodePermission, CodeConfiguration, CodeScannerMissing:
		return true
	default:
		return false
	}
}

// Common error creation functions

// ErrInvalidTarget creates an error for malformed scan targets.
func ErrInvalidTarget(target string, cause error) *ScanError {
	return WrapScanErrorWithTarget(CodeTargetInvalid, "Invalid target specified", target, cause)
}

// ErrInvalidPorts creates an error for malformed port specifications.
func ErrInvalidPorts(cause error) *ScanError {
	return WrapScanError(CodePortsInvalid, "Invalid port specification", cause)
}

// ErrInjectionAttempt creates an error for targets carrying shell metacharacters.
// The message is deliberately the same one a malformed target gets.
func ErrInjectionAttempt(cause error) *ScanError {
	return WrapScanError(CodeInjectionAttempt, "Invalid target specified", cause)
}

// ErrScanTimeout creates an error for scan timeouts.
func ErrScanTimeout(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTimeout, "Scan operation timed out", target)
}

// ErrScannerBusy creates an error for a scan refused because every scanner
// slot is taken.
func ErrScannerBusy(target string, cause error) *ScanError {
	return WrapScanErrorWithTarget(CodeScannerBusy, "Scanner is busy, try again later", target, cause)
}

// ErrExport creates an error for a download that could not be produced.
func ErrExport(message string, cause error) *ScanError {
	return WrapScanError(CodeExport, message, cause)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}

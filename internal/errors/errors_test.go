package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		CodeUnknown,
		CodeValidation,
		CodeConfiguration,
		CodeTimeout,
		CodeCanceled,
		CodePermission,
		CodeInjectionAttempt,
		CodeTargetInvalid,
		CodePortsInvalid,
		CodeScanFailed,
		CodeScannerMissing,
		CodeScannerBusy,
		CodeExport,
		CodeRateLimited,
		CodeUnauthorized,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("Error code %v should not be empty", code)
		}
		if seen[code] {
			t.Errorf("Error code %s is declared twice", code)
		}
		seen[code] = true
	}
}

func TestScanError(t *testing.T) {
	t.Run("basic error creation", func(t *testing.T) {
		err := NewScanError(CodeScanFailed, "scan failed")
		if err.Code != CodeScanFailed {
			t.Errorf("Expected code %s, got %s", CodeScanFailed, err.Code)
		}
		if err.Message != "scan failed" {
			t.Errorf("Expected message 'scan failed', got '%s'", err.Message)
		}
		if err.Context == nil {
			t.Error("Context should be initialized")
		}
	})

	t.Run("error with target", func(t *testing.T) {
		err := NewScanErrorWithTarget(CodeTimeout, "timed out", "192.168.1.1")
		expected := "[TIMEOUT] timed out (target: 192.168.1.1)"
		if err.Error() != expected {
			t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("wrapped error", func(t *testing.T) {
		cause := fmt.Errorf("exit status 1")
		err := WrapScanError(CodeScanFailed, "scanner execution failed", cause)
		if err.Unwrap() != cause {
			t.Error("Unwrap should return the original cause")
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the cause")
		}
	})

	t.Run("context and operation", func(t *testing.T) {
		err := NewScanError(CodeExport, "no file").
			WithContext("format", "csv").
			WithOperation("export")
		if err.Context["format"] != "csv" {
			t.Errorf("Expected context format=csv, got %v", err.Context["format"])
		}
		if err.Operation != "export" {
			t.Errorf("Expected operation 'export', got '%s'", err.Operation)
		}
	})
}

func TestGetCodeThroughWrapping(t *testing.T) {
	inner := ErrInjectionAttempt(fmt.Errorf("';' in target"))
	wrapped := fmt.Errorf("handling request: %w", inner)

	if got := GetCode(wrapped); got != CodeInjectionAttempt {
		t.Errorf("Expected %s, got %s", CodeInjectionAttempt, got)
	}
	if !IsCode(wrapped, CodeInjectionAttempt) {
		t.Error("IsCode should see through fmt wrapping")
	}
	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("plain errors should map to UNKNOWN")
	}
	if GetCode(ErrConfigMissing("scanning.nmap_path")) != CodeConfiguration {
		t.Error("config errors should keep their code")
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		client   bool
		security bool
		fatal    bool
	}{
		{"injection", ErrInjectionAttempt(nil), true, true, false},
		{"bad target", ErrInvalidTarget("bad host", nil), true, false, false},
		{"bad ports", ErrInvalidPorts(nil), true, false, false},
		{"export", ErrExport("Error generating download file", nil), true, false, false},
		{"timeout", ErrScanTimeout("10.0.0.1"), false, false, false},
		{"scanner missing", NewScanError(CodeScannerMissing, "nmap not found"), false, false, true},
		{"config", ErrConfigMissing("api.port"), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClientError(tt.err); got != tt.client {
				t.Errorf("IsClientError = %v, want %v", got, tt.client)
			}
			if got := IsSecurityEvent(tt.err); got != tt.security {
				t.Errorf("IsSecurityEvent = %v, want %v", got, tt.security)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestInjectionMessageMatchesInvalidTarget(t *testing.T) {
	injection := ErrInjectionAttempt(nil)
	invalid := ErrInvalidTarget("", nil)
	if injection.Message != invalid.Message {
		t.Errorf("client-facing messages differ: %q vs %q", injection.Message, invalid.Message)
	}
}

func TestConfigError(t *testing.T) {
	err := ErrConfigInvalid("api.port", 70000)
	expected := "[VALIDATION] Invalid configuration value (field: api.port)"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	cause := fmt.Errorf("yaml: line 3")
	wrapped := WrapConfigError(CodeConfiguration, "failed to parse config", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("config error should unwrap to its cause")
	}
}

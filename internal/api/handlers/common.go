// Package handlers provides HTTP request handlers for the scangate API.
// This file contains common utilities shared across all handlers.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/anstrom/scangate/internal/api/middleware"
	"github.com/anstrom/scangate/internal/errors"
	"github.com/anstrom/scangate/internal/logging"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, only log.
		logging.Default().WithContext(r.Context()).Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response carrying err's message.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r),
	}
	writeJSON(w, r, statusCode, response)
}

// writeScanError writes a *errors.ScanError using only its client-safe
// message and code. Causes, command lines and scanner output never reach
// the response.
func writeScanError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	response := ErrorResponse{
		Error:     http.StatusText(status),
		Message:   "Internal server error",
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r),
	}

	var scanErr *errors.ScanError
	if stderrors.As(err, &scanErr) {
		response.Code = string(scanErr.Code)
		response.Message = scanErr.Message
	}
	writeJSON(w, r, status, response)
}

// statusForError maps error codes to HTTP status codes.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeValidation, errors.CodeTargetInvalid, errors.CodePortsInvalid, errors.CodeInjectionAttempt:
		return http.StatusBadRequest
	case errors.CodeExport:
		// Rejected parameters are the client's fault; a scan that did not
		// complete is not.
		cause := stderrors.Unwrap(err)
		if cause != nil && errors.IsClientError(cause) {
			return http.StatusBadRequest
		}
		if errors.IsCode(cause, errors.CodeScannerBusy) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeRateLimited:
		return http.StatusTooManyRequests
	case errors.CodeTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeCanceled, errors.CodeScannerBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseJSON decodes a JSON request body into dest, rejecting unknown fields
// and trailing data. Body size is bounded by middleware.MaxBodySize.
func parseJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("request body is empty")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return fmt.Errorf("request body too large (max %d bytes)", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("invalid JSON: trailing data after object")
	}

	return nil
}

// validationMessage turns validator errors into one client-facing sentence.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// Package handlers provides HTTP request handlers for the scangate API.
// This file implements the scan and report download endpoints.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/anstrom/scangate/internal/errors"
	"github.com/anstrom/scangate/internal/logging"
	"github.com/anstrom/scangate/internal/report"
	"github.com/anstrom/scangate/internal/scanner"
	"github.com/anstrom/scangate/internal/validation"
)

// Message returned when either scan field is missing.
const missingFieldsMessage = "Both target and ports are required."

// Scanner runs scans and renders downloads. *scanner.Service implements it.
type Scanner interface {
	Scan(ctx context.Context, target, ports string) (*scanner.Result, error)
	Export(ctx context.Context, format, target, ports string) (*report.Artifact, error)
}

// ScanHandler handles scan-related API endpoints.
type ScanHandler struct {
	scanner   Scanner
	logger    *logging.Logger
	validator *validator.Validate
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(s Scanner, logger *logging.Logger) *ScanHandler {
	return &ScanHandler{
		scanner:   s,
		logger:    logger.WithFields("handler", "scan"),
		validator: validator.New(),
	}
}

// ScanRequest represents a scan request.
type ScanRequest struct {
	Target string `json:"target" validate:"required,max=255" example:"scanme.nmap.org"`
	Ports  string `json:"ports" validate:"required,max=1024" example:"22,80,443"`
}

// CreateScan handles POST /api/v1/scans.
//
// @Summary Run a scan
// @Description Validates target and ports, runs nmap and returns sanitized output with parsed results.
// @Description Scans that fail or time out still return a result body with status "error" or "timeout".
// @Tags Scans
// @Accept json
// @Produce json
// @Param request body ScanRequest true "Scan target and ports"
// @Security ApiKeyAuth
// @Success 200 {object} scanner.Result
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} scanner.Result
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} scanner.Result
// @Router /scans [post]
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseScanRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := h.scanner.Scan(r.Context(), req.Target, req.Ports)
	if err != nil {
		if errors.IsSecurityEvent(err) {
			h.logger.WithContext(r.Context()).WarnSecurity("Scan request rejected", "code", errors.GetCode(err))
		}
		writeScanError(w, r, err)
		return
	}

	writeJSON(w, r, statusForResult(result), result)
}

func (h *ScanHandler) parseScanRequest(r *http.Request) (*ScanRequest, error) {
	var req ScanRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form body")
		}
		req.Target = r.PostForm.Get("target")
		req.Ports = r.PostForm.Get("ports")
	} else if err := parseJSON(r, &req); err != nil {
		return nil, err
	}

	req.Target = strings.TrimSpace(req.Target)
	req.Ports = strings.TrimSpace(req.Ports)

	if err := h.validator.Struct(&req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				if fe.Tag() == "required" {
					return nil, fmt.Errorf("%s", missingFieldsMessage)
				}
			}
		}
		return nil, fmt.Errorf("%s", validationMessage(err))
	}
	return &req, nil
}

func statusForResult(result *scanner.Result) int {
	switch result.Status {
	case scanner.StatusTimeout:
		return http.StatusGatewayTimeout
	case scanner.StatusError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// DownloadScan handles GET /api/v1/scans/download/{format}/{target}/{ports}.
//
// @Summary Download a scan report
// @Description Re-validates target and ports, runs a fresh scan and returns it as an attachment.
// @Description Unknown formats fall back to the plain-text log format.
// @Tags Scans
// @Produce json
// @Produce text/csv
// @Produce plain
// @Param format path string true "Report format" Enums(json, csv, log)
// @Param target path string true "Scan target"
// @Param ports path string true "Port specification"
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /scans/download/{format}/{target}/{ports} [get]
func (h *ScanHandler) DownloadScan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	target, ports := vars["target"], vars["ports"]
	if len(target) > validation.MaxTargetLength {
		writeScanError(w, r, errors.ErrExport("Invalid parameters for download", errors.ErrInvalidTarget("", nil)))
		return
	}

	artifact, err := h.scanner.Export(r.Context(), vars["format"], target, ports)
	if err != nil {
		h.logger.WithContext(r.Context()).Warn("Download failed", "code", errors.GetCode(err), "format", vars["format"])
		writeScanError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to write download", "error", err)
	}
}

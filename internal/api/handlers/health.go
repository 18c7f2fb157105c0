// Package handlers provides HTTP request handlers for the scangate API.
// This file implements health check and system status endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/anstrom/scangate/internal/logging"
)

// ScannerChecker reports whether the scanner binary is usable.
type ScannerChecker interface {
	CheckScanner() error
}

// SlotReporter reports scan process slot usage.
type SlotReporter interface {
	Active() int
	Capacity() int
}

// Status constants.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthHandler handles health check and status endpoints.
type HealthHandler struct {
	scanner   ScannerChecker
	slots     SlotReporter
	logger    *logging.Logger
	startTime time.Time
	build     BuildInfo
}

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// NewHealthHandler creates a new health handler. scanner and slots may be nil.
func NewHealthHandler(scanner ScannerChecker, slots SlotReporter, build BuildInfo, logger *logging.Logger) *HealthHandler {
	return &HealthHandler{
		scanner:   scanner,
		slots:     slots,
		logger:    logger.WithFields("handler", "health"),
		startTime: time.Now(),
		build:     build,
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
	Scans     *SlotInfo         `json:"scans,omitempty"`
}

// SlotInfo describes scan process slot usage.
type SlotInfo struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// LivenessResponse represents a simple liveness check response.
type LivenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// VersionResponse represents version information.
type VersionResponse struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Timestamp time.Time `json:"timestamp"`
}

// Health performs a dependency health check.
//
// @Summary Health check
// @Description Reports whether nmap is available and how many scan slots are in use.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested", "remote_addr", r.RemoteAddr)

	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]string),
	}

	if h.scanner != nil {
		if err := h.scanner.CheckScanner(); err != nil {
			response.Status = StatusUnhealthy
			response.Checks["scanner"] = "unavailable"
			h.logger.Warn("Scanner health check failed", "error", err)
		} else {
			response.Checks["scanner"] = "ok"
		}
	} else {
		response.Checks["scanner"] = "not configured"
	}

	if h.slots != nil {
		info := &SlotInfo{Active: h.slots.Active(), Capacity: h.slots.Capacity()}
		response.Scans = info
		if info.Capacity > 0 && info.Active >= info.Capacity {
			response.Checks["scan_slots"] = "saturated"
			if response.Status == StatusHealthy {
				response.Status = StatusDegraded
			}
		} else {
			response.Checks["scan_slots"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, r, statusCode, response)
}

// Liveness performs a simple liveness check without dependencies.
//
// @Summary Liveness check
// @Description Returns simple liveness status without dependency checks
// @Tags System
// @Produce json
// @Success 200 {object} LivenessResponse
// @Router /liveness [get]
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
	})
}

// Version provides version information.
//
// @Summary Version information
// @Description Returns version and build info
// @Tags System
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, VersionResponse{
		Version:   h.build.Version,
		Commit:    h.build.Commit,
		BuildTime: h.build.BuildTime,
		GoVersion: runtime.Version(),
		Timestamp: time.Now().UTC(),
	})
}

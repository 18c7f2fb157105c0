// Package scanner is the request-facing core of scangate. It validates a
// target and port expression, runs nmap through a scanning.Runner, and turns
// the sanitized output into results and downloadable reports.
package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/scangate/internal/errors"
	"github.com/anstrom/scangate/internal/logging"
	"github.com/anstrom/scangate/internal/metrics"
	"github.com/anstrom/scangate/internal/report"
	"github.com/anstrom/scangate/internal/scanning"
	"github.com/anstrom/scangate/internal/validation"
)

const (
	// Output prefix for scans whose process exited non-zero.
	errorOutputPrefix = "Error occurred:\n"

	// maxLoggedInput caps how much of a rejected input reaches the logs.
	maxLoggedInput = 64

	defaultMaxConcurrent = 4
)

// Status is the client-facing state of a finished scan.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusTimeout   Status = "timeout"
)

// Config controls how scans are executed.
type Config struct {
	// Program is the nmap binary; empty means "nmap" on PATH.
	Program string
	// Timeout is the wall-clock budget per scan; zero means five minutes.
	Timeout time.Duration
	// MaxConcurrent caps simultaneously running nmap processes.
	MaxConcurrent int
}

// Result is one finished scan. Execution errors and timeouts are results,
// not errors: Output then carries a client-safe message.
type Result struct {
	ID        string                   `json:"id"`
	Target    string                   `json:"target"`
	Ports     string                   `json:"ports"`
	Status    Status                   `json:"status"`
	Output    string                   `json:"output"`
	Stats     *scanning.ScanStatistics `json:"stats,omitempty"`
	Report    *scanning.ScanReport     `json:"report,omitempty"`
	Timestamp string                   `json:"timestamp"`
	Duration  time.Duration            `json:"duration"`
}

// Service runs validated scans. It is safe for concurrent use; every call
// owns its own command, outcome and report.
type Service struct {
	builder *scanning.CommandBuilder
	runner  scanning.Runner
	limiter *scanning.ProcessLimiter
	timeout time.Duration
	metrics metrics.Recorder
	logger  *logging.Logger
	now     func() time.Time
}

// New creates a Service. A nil runner means a real scanning.Executor and a
// nil recorder discards metrics.
func New(cfg Config, runner scanning.Runner, recorder metrics.Recorder) *Service {
	if runner == nil {
		runner = scanning.NewExecutor()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = scanning.DefaultTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	return &Service{
		builder: scanning.NewCommandBuilder(cfg.Program),
		runner:  runner,
		limiter: scanning.NewProcessLimiter(cfg.MaxConcurrent),
		timeout: cfg.Timeout,
		metrics: recorder,
		logger:  logging.Default().WithComponent("scanner"),
		now:     time.Now,
	}
}

// Timeout returns the per-scan budget.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Limiter exposes the process limiter for health reporting.
func (s *Service) Limiter() *scanning.ProcessLimiter {
	return s.limiter
}

// CheckScanner reports whether the scanner binary can be found.
func (s *Service) CheckScanner() error {
	if _, err := exec.LookPath(s.builder.Program()); err != nil {
		return errors.WrapScanError(errors.CodeScannerMissing, "Scanner binary not found", err)
	}
	return nil
}

// Validate checks target and ports and returns a client-safe *errors.ScanError.
// Injection attempts are logged as security events.
func (s *Service) Validate(target, ports string) error {
	if err := validation.ValidateTarget(target); err != nil {
		return s.rejected(target, err, errors.ErrInvalidTarget(target, err))
	}
	if err := validation.ValidatePorts(ports); err != nil {
		return s.rejected(ports, err, errors.ErrInvalidPorts(err))
	}
	return nil
}

func (s *Service) rejected(input string, cause error, generic *errors.ScanError) error {
	var vErr *validation.Error
	if !stderrors.As(cause, &vErr) {
		return generic
	}
	s.metrics.IncrementRejections(vErr.Field, string(vErr.Reason))
	if vErr.IsInjection() {
		s.metrics.IncrementInjectionAttempts(vErr.Field)
		s.logger.WarnSecurity("Rejected input containing shell metacharacters",
			"field", vErr.Field, "input", truncate(input, maxLoggedInput))
		return errors.ErrInjectionAttempt(cause).WithOperation("validate")
	}
	s.logger.Debug("Rejected scan input", "field", vErr.Field, "reason", vErr.Reason)
	return generic.WithOperation("validate")
}

// Scan validates, runs and parses one scan. The returned error is non-nil only
// for rejected input, a cancelled context or when every scanner slot is held;
// a scan never waits behind others for a slot.
func (s *Service) Scan(ctx context.Context, target, ports string) (*Result, error) {
	if err := s.Validate(target, ports); err != nil {
		return nil, err
	}
	return s.run(ctx, target, ports)
}

func (s *Service) run(ctx context.Context, target, ports string) (*Result, error) {
	cmd, err := s.builder.Build(target, ports)
	if err != nil {
		s.metrics.IncrementInjectionAttempts(validation.FieldTarget)
		s.logger.WarnSecurity("Command builder refused argument", "error", err)
		return nil, errors.ErrInjectionAttempt(err).WithOperation("build")
	}

	id := uuid.New().String()
	if err := s.limiter.TryAcquire(id); err != nil {
		if stderrors.Is(err, scanning.ErrLimiterBusy) {
			s.metrics.IncrementRejections("scanner", "busy")
			s.logger.Warn("Refused scan, no free scanner slot",
				"target", target, "active", s.limiter.Active(), "oldest", s.limiter.Oldest())
			return nil, errors.ErrScannerBusy(target, err).WithOperation("acquire")
		}
		return nil, errors.WrapScanErrorWithTarget(errors.CodeCanceled, "Scan was cancelled before it started", target, err)
	}
	s.metrics.SetActiveScans(s.limiter.Active())
	defer func() {
		s.limiter.Release(id)
		s.metrics.SetActiveScans(s.limiter.Active())
	}()

	started := s.now()
	s.logger.InfoScan("Starting scan", target, "scan_id", id, "ports", ports)
	outcome := s.runner.Run(ctx, cmd, s.timeout)
	s.metrics.RecordScan(string(outcome.Kind), outcome.Duration)

	result := &Result{
		ID:        id,
		Target:    target,
		Ports:     ports,
		Timestamp: report.Timestamp(started),
		Duration:  outcome.Duration,
	}

	switch outcome.Kind {
	case scanning.OutcomeSuccess:
		sanitized := scanning.Sanitize(outcome.Output)
		parsed := scanning.ParseDetailed(sanitized)
		result.Status = StatusCompleted
		result.Output = sanitized
		result.Stats = &parsed.Stats
		result.Report = &scanning.ScanReport{
			Metadata: scanning.Metadata{Timestamp: result.Timestamp, Target: target, Ports: ports},
			Hosts:    parsed.Hosts,
			Stats:    parsed.Stats,
		}
		s.recordReport(parsed)
		s.logger.InfoScan("Scan completed", target, "scan_id", id,
			"hosts", len(parsed.Hosts), "open_ports", parsed.Stats.OpenPorts, "duration", outcome.Duration)
	case scanning.OutcomeTimeout:
		result.Status = StatusTimeout
		result.Output = timeoutMessage(s.timeout)
		s.logger.ErrorScan("Scan timed out", target, errors.ErrScanTimeout(target), "scan_id", id, "pid", outcome.PID)
	default:
		if ctx.Err() != nil {
			return nil, errors.WrapScanErrorWithTarget(errors.CodeCanceled, "Scan was cancelled", target, ctx.Err())
		}
		result.Status = StatusError
		result.Output = errorOutputPrefix + scanning.Sanitize(outcome.Output)
		code := errors.CodeScanFailed
		if stderrors.Is(outcome.Err, exec.ErrNotFound) {
			code = errors.CodeScannerMissing
		}
		s.logger.ErrorScan("Scan failed", target, errors.WrapScanErrorWithTarget(code, "Scanner exited with an error", target, outcome.Err),
			"scan_id", id, "exit_code", outcome.ExitCode)
	}
	return result, nil
}

func (s *Service) recordReport(parsed scanning.ParseResult) {
	s.metrics.AddPorts(string(scanning.StateOpen), parsed.Stats.OpenPorts)
	s.metrics.AddPorts(string(scanning.StateClosed), parsed.Stats.ClosedPorts)
	s.metrics.AddPorts(string(scanning.StateFiltered), parsed.Stats.FilteredPorts)
	s.metrics.AddHosts(len(parsed.Hosts), parsed.Orphans)
	if parsed.Orphans > 0 {
		s.logger.Warn("Dropped port lines without a host header", "count", parsed.Orphans)
	}
}

// Export re-validates target and ports, runs a fresh scan and renders it in
// format. Unknown formats fall back to the log format. Any failure is an
// EXPORT error and no artifact is produced.
func (s *Service) Export(ctx context.Context, format, target, ports string) (*report.Artifact, error) {
	f := report.ParseFormat(format)
	if err := s.Validate(target, ports); err != nil {
		s.metrics.IncrementExports(string(f), "rejected")
		return nil, errors.ErrExport("Invalid parameters for download", err).WithOperation("export")
	}

	result, err := s.run(ctx, target, ports)
	if err != nil {
		s.metrics.IncrementExports(string(f), "error")
		return nil, errors.ErrExport("Scan for download could not be run", err).WithOperation("export")
	}
	return s.ExportResult(result, f)
}

// ExportResult renders an already finished scan. Only completed scans can be
// exported.
func (s *Service) ExportResult(result *Result, format report.Format) (*report.Artifact, error) {
	if result == nil || result.Status != StatusCompleted || result.Report == nil {
		s.metrics.IncrementExports(string(format), "error")
		status := Status("")
		if result != nil {
			status = result.Status
		}
		return nil, errors.ErrExport(fmt.Sprintf("Scan did not complete (status %q)", status), nil).
			WithOperation("export")
	}

	artifact, err := report.Export(result.Report, result.Output, format)
	if err != nil {
		s.metrics.IncrementExports(string(format), "error")
		return nil, errors.ErrExport("Report could not be rendered", err).WithOperation("export")
	}
	s.metrics.IncrementExports(string(artifact.Format), "success")
	return artifact, nil
}

func timeoutMessage(timeout time.Duration) string {
	if timeout%time.Minute == 0 {
		minutes := int(timeout / time.Minute)
		unit := "minutes"
		if minutes == 1 {
			unit = "minute"
		}
		return fmt.Sprintf("Scan timed out after %d %s", minutes, unit)
	}
	return fmt.Sprintf("Scan timed out after %s", timeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

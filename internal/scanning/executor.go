package scanning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/anstrom/scangate/internal/logging"
)

const (
	// DefaultTimeout is the wall-clock budget of one scan.
	DefaultTimeout = 300 * time.Second

	// waitDelay bounds how long Wait blocks on output pipes after the child
	// has been killed.
	waitDelay = 2 * time.Second
)

// OutcomeKind tags how an execution ended.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeError   OutcomeKind = "error"
	OutcomeTimeout OutcomeKind = "timeout"
)

// Outcome is the classified result of one execution. Output holds combined
// stdout and stderr exactly as the child wrote them.
type Outcome struct {
	Kind     OutcomeKind
	Output   string
	Err      error
	ExitCode int
	PID      int
	Duration time.Duration
}

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/anstrom/scangate/internal/scanning Runner

// Runner executes a scanner command.
type Runner interface {
	Run(ctx context.Context, cmd Command, timeout time.Duration) Outcome
}

// Executor runs commands as child processes without a shell.
type Executor struct {
	logger *logging.Logger
}

// NewExecutor returns an Executor logging through the default logger.
func NewExecutor() *Executor {
	return &Executor{logger: logging.Default().WithComponent("executor")}
}

// Run blocks until the child exits or timeout elapses. On timeout the child
// is killed and reaped before Run returns. A timeout <= 0 means DefaultTimeout.
func (e *Executor) Run(ctx context.Context, cmd Command, timeout time.Duration) Outcome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var output bytes.Buffer
	child := exec.CommandContext(runCtx, cmd.Program, cmd.Args...) //nolint:gosec // argv built by CommandBuilder
	child.Stdout = &output
	child.Stderr = &output
	child.WaitDelay = waitDelay

	start := time.Now()
	if err := child.Start(); err != nil {
		e.logger.Error("Failed to start scanner", "program", cmd.Program, "error", err)
		return Outcome{Kind: OutcomeError, Err: fmt.Errorf("start %s: %w", cmd.Program, err), ExitCode: -1}
	}
	pid := child.Process.Pid
	e.logger.Debug("Scanner started", "pid", pid, "command", cmd.String(), "timeout", timeout)

	err := child.Wait()
	outcome := Outcome{
		Output:   output.String(),
		PID:      pid,
		Duration: time.Since(start),
		ExitCode: child.ProcessState.ExitCode(),
	}

	outcome.Kind = outcomeKind(err, runCtx.Err(), ctx.Err())
	switch outcome.Kind {
	case OutcomeTimeout:
		outcome.Err = fmt.Errorf("scan exceeded %s", timeout)
		e.logger.Warn("Scanner killed after timeout", "pid", pid, "timeout", timeout)
	case OutcomeError:
		outcome.Err = err
		if ctx.Err() != nil {
			outcome.Err = ctx.Err()
		}
		e.logger.Debug("Scanner exited with error", "pid", pid, "exit_code", outcome.ExitCode, "error", err)
	}
	return outcome
}

// outcomeKind classifies a finished child. A clean exit is a success even if
// the deadline passed while Wait was returning; a timeout needs both a failed
// wait and our own deadline, not the caller's cancellation.
func outcomeKind(waitErr, runErr, parentErr error) OutcomeKind {
	switch {
	case waitErr == nil:
		return OutcomeSuccess
	case errors.Is(runErr, context.DeadlineExceeded) && parentErr == nil:
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

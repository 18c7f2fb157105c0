//go:build unix

package scanning

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorSuccess(t *testing.T) {
	cmd := Command{Program: "sh", Args: []string{"-c", "echo out; echo err 1>&2"}}
	outcome := NewExecutor().Run(context.Background(), cmd, 10*time.Second)

	require.Equal(t, OutcomeSuccess, outcome.Kind, "err: %v", outcome.Err)
	assert.NoError(t, outcome.Err)
	assert.Contains(t, outcome.Output, "out\n")
	assert.Contains(t, outcome.Output, "err\n")
	assert.Equal(t, 0, outcome.ExitCode)
	assert.NotZero(t, outcome.PID)
}

func TestExecutorNonZeroExit(t *testing.T) {
	cmd := Command{Program: "sh", Args: []string{"-c", "echo partial; exit 3"}}
	outcome := NewExecutor().Run(context.Background(), cmd, 10*time.Second)

	assert.Equal(t, OutcomeError, outcome.Kind)
	assert.Equal(t, "partial\n", outcome.Output)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Error(t, outcome.Err)
}

func TestExecutorMissingProgram(t *testing.T) {
	cmd := Command{Program: "scangate-no-such-binary", Args: []string{"-p", "80", "localhost"}}
	outcome := NewExecutor().Run(context.Background(), cmd, time.Second)

	assert.Equal(t, OutcomeError, outcome.Kind)
	assert.Error(t, outcome.Err)
	assert.Zero(t, outcome.PID)
}

func TestExecutorArgumentsAreNotShellInterpreted(t *testing.T) {
	cmd := Command{Program: "echo", Args: []string{"$(id)", ";", "`uname`"}}
	outcome := NewExecutor().Run(context.Background(), cmd, 10*time.Second)

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "$(id) ; `uname`\n", outcome.Output)
}

func TestExecutorTimeoutKillsChild(t *testing.T) {
	cmd := Command{Program: "sleep", Args: []string{"30"}}
	start := time.Now()
	outcome := NewExecutor().Run(context.Background(), cmd, 200*time.Millisecond)

	assert.Equal(t, OutcomeTimeout, outcome.Kind)
	assert.Error(t, outcome.Err)
	assert.Less(t, time.Since(start), 10*time.Second)
	require.NotZero(t, outcome.PID)

	// The child was reaped by Wait, so the pid no longer exists.
	err := syscall.Kill(outcome.PID, 0)
	assert.True(t, errors.Is(err, syscall.ESRCH), "process %d still present: %v", outcome.PID, err)
}

func TestExecutorParentCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	outcome := NewExecutor().Run(ctx, Command{Program: "sleep", Args: []string{"30"}}, time.Minute)
	assert.Equal(t, OutcomeError, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}

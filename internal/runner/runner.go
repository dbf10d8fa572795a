package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/pkg/constants"
)

// Result is the uniform shape every process invocation reports, including
// launch failures and timeouts. Callers never need to handle an error for an
// "expected" failure mode.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

type Runner interface {
	Run(ctx context.Context, command string, args []string, stdin string, timeoutMs int64) Result
}

type runner struct {
	logger   *zap.SugaredLogger
	maxBytes int
}

func NewRunner() Runner {
	return &runner{
		logger:   logger.NewNamedLogger("runner"),
		maxBytes: constants.MaxCapturedOutputBytes,
	}
}

func (r *runner) Run(ctx context.Context, command string, args []string, stdin string, timeoutMs int64) Result {
	if timeoutMs <= 0 {
		timeoutMs = constants.DefaultLocalTimeoutMs
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(execCtx, command, args...)
	cmd.Stdin = strings.NewReader(stdin)
	// Give the pipes a moment to drain after the kill, then abandon them.
	cmd.WaitDelay = time.Second

	stdout := NewCappedBuffer(r.maxBytes)
	stderr := NewCappedBuffer(r.maxBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		r.logger.Warnf("failed to launch %s: %s", command, err)
		return Result{
			Stderr:   fmt.Sprintf("failed to launch %s: %s", command, err),
			ExitCode: constants.ExitCodeLaunchFailure,
		}
	}

	waitErr := cmd.Wait()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = constants.ExitCodeTimeLimitExceeded
		if strings.TrimSpace(res.Stderr) == "" {
			res.Stderr = constants.MessageTimeLimitExceeded
		}
		return res
	}

	if waitErr != nil && res.ExitCode < 0 {
		// Killed by an external signal; surface the wait error for diagnostics.
		if strings.TrimSpace(res.Stderr) == "" {
			res.Stderr = waitErr.Error()
		}
		res.ExitCode = 1
	}

	return res
}

// CappedBuffer accumulates writes up to max bytes and silently discards the
// rest, appending a truncation marker when read back. The sandbox strategy
// shares it for container stream capture.
type CappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func NewCappedBuffer(max int) *CappedBuffer {
	return &CappedBuffer{max: max}
}

func (b *CappedBuffer) Write(p []byte) (int, error) {
	if b.truncated {
		return len(p), nil
	}
	if remaining := b.max - b.buf.Len(); len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *CappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n" + constants.TruncationMarker
	}
	return b.buf.String()
}

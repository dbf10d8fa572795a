package exec

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/runner"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
	"github.com/coderank/judge/pkg/languages"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Options struct {
	// TimeoutMs of zero selects the strategy's default.
	TimeoutMs int64
}

// Outcome is the result shape all strategies converge on. Status reflects
// the program's exit, not the infrastructure: a clean exit with stderr
// content is still StatusSuccess with a non-empty Error, and the caller
// decides how to combine the signals.
type Outcome struct {
	Status   Status
	Output   string
	Error    string
	ExitCode int
	TimedOut bool
}

// Strategy runs one piece of submitted code against one stdin payload.
// Infrastructure failures (sandbox runtime missing, temp dir creation)
// come back as errors; program failures are encoded in the Outcome.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, lang languages.LanguageType, code, stdin string, opts Options) (Outcome, error)
}

// Chain tries strategies in order and settles on the first one whose
// infrastructure works. Used for the auto mode (sandbox first, local
// fallback); single-element chains express the fixed modes.
type Chain struct {
	strategies []Strategy
	logger     *zap.SugaredLogger
}

func NewChain(strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     logger.NewNamedLogger("exec-chain"),
	}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Execute(
	ctx context.Context,
	lang languages.LanguageType,
	code, stdin string,
	opts Options,
) (Outcome, error) {
	if len(c.strategies) == 0 {
		return Outcome{}, errs.ErrNoStrategyAvailable
	}

	var lastErr error
	for _, s := range c.strategies {
		out, err := s.Execute(ctx, lang, code, stdin, opts)
		if err != nil {
			c.logger.Warnf("strategy %s unavailable, trying next: %s", s.Name(), err)
			lastErr = err
			continue
		}
		return out, nil
	}
	return Outcome{}, lastErr
}

// fromRunnerResult reshapes a raw process result into the strategy outcome,
// the same mapping the auto fallback applies to local runs.
func fromRunnerResult(res runner.Result) Outcome {
	o := Outcome{
		Output:   res.Stdout,
		Error:    res.Stderr,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
	}
	if res.ExitCode == constants.ExitCodeSuccess {
		o.Status = StatusSuccess
	} else {
		o.Status = StatusError
		if o.Error == "" {
			o.Error = fmt.Sprintf("exit %d", res.ExitCode)
		}
	}
	return o
}

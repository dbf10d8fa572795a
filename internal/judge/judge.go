package judge

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/coderank/judge/internal/exec"
	"github.com/coderank/judge/internal/harness"
	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/storage"
	"github.com/coderank/judge/internal/testbank"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/languages"
	"github.com/coderank/judge/pkg/verdict"
)

// CaseOutcome records one executed test case. Stderr and ExitCode are only
// meaningful on a failing runtime case.
type CaseOutcome struct {
	OK       bool
	Input    string
	Expected string
	Got      string
	Stderr   string
	ExitCode int
}

// Report is the aggregated judging result for one submission.
type Report struct {
	Verdict verdict.Verdict
	Passed  int
	Total   int
	Cases   []CaseOutcome
}

// Request describes one submission to judge. CallStyle selects
// function-call judging: the submission defines solve() and a per-problem
// harness performs the stdin parsing and printing. The default judges raw
// stdin/stdout.
type Request struct {
	Problem   storage.Problem
	Language  languages.LanguageType
	UserCode  string
	CallStyle bool
}

// Executor is the strategy surface the engine drives; *exec.Chain
// satisfies it.
type Executor interface {
	Execute(ctx context.Context, lang languages.LanguageType, code, stdin string, opts exec.Options) (exec.Outcome, error)
}

type Engine struct {
	tests     testbank.Repository
	strategy  Executor
	timeoutMs int64
	logger    *zap.SugaredLogger
}

func NewEngine(tests testbank.Repository, strategy Executor, timeoutMs int64) *Engine {
	if timeoutMs <= 0 {
		timeoutMs = constants.DefaultJudgeTimeoutMs
	}
	return &Engine{
		tests:     tests,
		strategy:  strategy,
		timeoutMs: timeoutMs,
		logger:    logger.NewNamedLogger("judge"),
	}
}

// Judge runs the submission against the problem's full test bank, public
// cases first, stopping at the first failing case. Configuration problems
// (no tests, missing harness) and infrastructure failures come back as
// errors, never as a verdict.
func (e *Engine) Judge(ctx context.Context, req Request) (Report, error) {
	entry, err := e.tests.Lookup(ctx, req.Problem.ID, req.Problem.Slug)
	if err != nil {
		return Report{}, err
	}

	code := req.UserCode
	if req.CallStyle {
		fragment, err := harness.Compose(req.Language, req.Problem.Slug)
		if err != nil {
			return Report{}, err
		}
		code = harness.Wrap(req.UserCode, fragment)
	}

	all := entry.All()
	report := Report{Total: len(all)}

	for _, tc := range all {
		out, err := e.strategy.Execute(ctx, req.Language, code, tc.Input, exec.Options{TimeoutMs: e.timeoutMs})
		if err != nil {
			return Report{}, err
		}

		if out.ExitCode != constants.ExitCodeSuccess || Normalize(out.Error) != "" {
			report.Cases = append(report.Cases, CaseOutcome{
				OK:       false,
				Input:    tc.Input,
				Expected: tc.ExpectedOutput,
				Got:      out.Output,
				Stderr:   out.Error,
				ExitCode: out.ExitCode,
			})
			break
		}

		ok := Normalize(out.Output) == Normalize(tc.ExpectedOutput)
		report.Cases = append(report.Cases, CaseOutcome{
			OK:       ok,
			Input:    tc.Input,
			Expected: tc.ExpectedOutput,
			Got:      out.Output,
		})
		if !ok {
			break
		}
	}

	for _, c := range report.Cases {
		if c.OK {
			report.Passed++
		}
	}
	report.Verdict = classify(report)

	e.logger.Infof("judged problem %s: %s (%d/%d)",
		req.Problem.Slug, report.Verdict, report.Passed, report.Total)
	return report, nil
}

// classify derives the verdict from the recorded outcomes. Timeouts carry
// exit code 124 and land in RuntimeError like any other non-zero exit.
func classify(r Report) verdict.Verdict {
	if r.Passed == r.Total {
		return verdict.Accepted
	}
	last := r.Cases[len(r.Cases)-1]
	if last.Stderr != "" || last.ExitCode != constants.ExitCodeSuccess {
		return verdict.RuntimeError
	}
	return verdict.WrongAnswer
}

// Normalize strips carriage returns and surrounding whitespace; judging
// compares outputs with exact equality after this and nothing looser.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
}

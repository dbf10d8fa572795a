package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coderank/judge/internal/exec"
	"github.com/coderank/judge/internal/judge"
	"github.com/coderank/judge/internal/scoring"
	. "github.com/coderank/judge/internal/service"
	"github.com/coderank/judge/internal/storage"
	"github.com/coderank/judge/internal/testbank"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
	"github.com/coderank/judge/pkg/languages"
	"github.com/coderank/judge/pkg/verdict"
)

// tableExecutor answers stdin payloads from a fixed table, standing in for
// the real execution strategies.
type tableExecutor struct {
	answers map[string]exec.Outcome
}

func (e *tableExecutor) Execute(
	_ context.Context,
	_ languages.LanguageType,
	_, stdin string,
	_ exec.Options,
) (exec.Outcome, error) {
	out, ok := e.answers[stdin]
	if !ok {
		return exec.Outcome{Status: exec.StatusError, Error: "no scripted answer", ExitCode: 1}, nil
	}
	return out, nil
}

func correctSumExecutor() *tableExecutor {
	return &tableExecutor{answers: map[string]exec.Outcome{
		"3 4":     {Status: exec.StatusSuccess, Output: "7\n"},
		"0 0":     {Status: exec.StatusSuccess, Output: "0\n"},
		"-5 2":    {Status: exec.StatusSuccess, Output: "-3\n"},
		"100 250": {Status: exec.StatusSuccess, Output: "350\n"},
	}}
}

func newService(store storage.Store, executor judge.Executor) *SubmissionService {
	engine := judge.NewEngine(testbank.NewStaticRepository(), executor, 0)
	gate := scoring.NewGate(store)
	return NewSubmissionService(engine, gate, store, store, "python")
}

func TestSubmit_AcceptedGrantsXPOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newService(store, correctSumExecutor())
	ctx := context.Background()

	req := SubmitRequest{UserID: 1, ProblemID: 2, Language: "py", Code: "..."}

	res, err := svc.Submit(ctx, req)
	require.NoError(t, err)
	require.Equal(t, verdict.Accepted, res.Verdict)
	require.Equal(t, 4, res.Passed)
	require.Equal(t, 4, res.Total)
	require.EqualValues(t, 20, res.AddedXP)
	require.Equal(t, constants.SubmissionStatusSuccess, res.Submission.Status)
	require.Equal(t, "python", res.Submission.Language)

	// the repeat accept stores a submission but grants nothing
	res, err = svc.Submit(ctx, req)
	require.NoError(t, err)
	require.Equal(t, verdict.Accepted, res.Verdict)
	require.EqualValues(t, 0, res.AddedXP)

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 20, u.XP)
	require.EqualValues(t, 1, u.Level)
}

func TestSubmit_WrongAnswerStoresFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	executor := &tableExecutor{answers: map[string]exec.Outcome{
		"3 4": {Status: exec.StatusSuccess, Output: "8\n"},
	}}
	svc := newService(store, executor)

	res, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, ProblemID: 2, Language: "python", Code: "..."})
	require.NoError(t, err)
	require.Equal(t, verdict.WrongAnswer, res.Verdict)
	require.EqualValues(t, 0, res.AddedXP)
	require.Equal(t, constants.SubmissionStatusFailed, res.Submission.Status)

	u, err := store.GetUser(context.Background(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 0, u.XP)
}

func TestSubmit_OutputJoinFormat(t *testing.T) {
	store := storage.NewMemoryStore()
	executor := &tableExecutor{answers: map[string]exec.Outcome{
		"3 4": {Status: exec.StatusSuccess, Output: "7\n"},
		"0 0": {Status: exec.StatusSuccess, Output: "999\n"},
	}}
	svc := newService(store, executor)

	res, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, ProblemID: 2, Language: "python", Code: "..."})
	require.NoError(t, err)
	require.Equal(t, "#1 OK\n7\n#2 X\n999", res.Submission.Output)
	require.Empty(t, res.Submission.Error)
}

func TestSubmit_RuntimeErrorRecordsStderr(t *testing.T) {
	store := storage.NewMemoryStore()
	executor := &tableExecutor{answers: map[string]exec.Outcome{
		"3 4": {Status: exec.StatusError, Error: "Traceback: boom", ExitCode: 1},
	}}
	svc := newService(store, executor)

	res, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, ProblemID: 2, Language: "python", Code: "..."})
	require.NoError(t, err)
	require.Equal(t, verdict.RuntimeError, res.Verdict)
	require.True(t, strings.HasPrefix(res.Submission.Error, "#1 "))
	require.Contains(t, res.Submission.Error, "boom")
}

func TestSubmit_UnknownLanguageFallsBack(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newService(store, correctSumExecutor())

	res, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, ProblemID: 2, Language: "ruby", Code: "..."})
	require.NoError(t, err)
	require.Equal(t, verdict.Accepted, res.Verdict)
	require.Equal(t, "python", res.Submission.Language)
}

func TestSubmit_UnknownProblem(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newService(store, correctSumExecutor())

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, ProblemID: 999, Language: "python", Code: "..."})
	require.ErrorIs(t, err, errs.ErrProblemNotFound)
}

func TestSubmit_InfrastructureErrorStoresNothing(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := judge.NewEngine(testbank.NewStaticRepository(), failingExecutor{}, 0)
	gate := scoring.NewGate(store)
	svc := NewSubmissionService(engine, gate, store, store, "python")

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, ProblemID: 2, Language: "python", Code: "..."})
	require.ErrorIs(t, err, errs.ErrSandboxUnavailable)

	has, err := store.HasAcceptedOther(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	require.False(t, has)
}

type failingExecutor struct{}

func (failingExecutor) Execute(
	_ context.Context,
	_ languages.LanguageType,
	_, _ string,
	_ exec.Options,
) (exec.Outcome, error) {
	return exec.Outcome{}, errs.ErrSandboxUnavailable
}

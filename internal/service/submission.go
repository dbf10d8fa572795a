package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/coderank/judge/internal/judge"
	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/scoring"
	"github.com/coderank/judge/internal/storage"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/languages"
	"github.com/coderank/judge/pkg/verdict"
)

// SubmitRequest is what the surrounding web layer hands over per submission.
// Language is free-form and resolved through the alias table.
type SubmitRequest struct {
	UserID    int64
	ProblemID int64
	Language  string
	Code      string
	CallStyle bool
}

// SubmitResult is the full judged outcome: the verdict, the per-case
// record, the stored submission row, and the XP granted (zero unless this
// was the user's first accept for the problem).
type SubmitResult struct {
	Verdict    verdict.Verdict
	Passed     int
	Total      int
	Cases      []judge.CaseOutcome
	AddedXP    int64
	Submission storage.Submission
}

// SubmissionService runs the whole judged-submission flow: resolve the
// problem, judge the code, persist the submission, and consult the scoring
// gate on acceptance.
type SubmissionService struct {
	engine           *judge.Engine
	gate             *scoring.Gate
	problems         storage.ProblemStore
	submissions      storage.SubmissionStore
	fallbackLanguage string
	logger           *zap.SugaredLogger
}

func NewSubmissionService(
	engine *judge.Engine,
	gate *scoring.Gate,
	problems storage.ProblemStore,
	submissions storage.SubmissionStore,
	fallbackLanguage string,
) *SubmissionService {
	return &SubmissionService{
		engine:           engine,
		gate:             gate,
		problems:         problems,
		submissions:      submissions,
		fallbackLanguage: fallbackLanguage,
		logger:           logger.NewNamedLogger("submission"),
	}
}

func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	problem, err := s.problems.GetProblem(ctx, req.ProblemID)
	if err != nil {
		return SubmitResult{}, err
	}

	lang := languages.Resolve(req.Language, s.fallbackLanguage)

	report, err := s.engine.Judge(ctx, judge.Request{
		Problem:   problem,
		Language:  lang,
		UserCode:  req.Code,
		CallStyle: req.CallStyle,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	status := constants.SubmissionStatusFailed
	if report.Verdict == verdict.Accepted {
		status = constants.SubmissionStatusSuccess
	}

	sub, err := s.submissions.InsertSubmission(ctx, storage.Submission{
		UserID:    req.UserID,
		ProblemID: req.ProblemID,
		Language:  lang.String(),
		Code:      req.Code,
		Status:    status,
		Output:    joinOutputs(report.Cases),
		Error:     joinErrors(report.Cases),
	})
	if err != nil {
		return SubmitResult{}, err
	}

	var addedXP int64
	if report.Verdict == verdict.Accepted {
		addedXP, err = s.gate.GrantIfFirstAccept(ctx, req.UserID, req.ProblemID, sub.ID, problem.XP)
		if err != nil {
			// The verdict stands even when the grant fails; the web layer
			// reports the submission either way.
			s.logger.Errorf("xp grant failed for user %d problem %d: %s", req.UserID, req.ProblemID, err)
		}
	}

	return SubmitResult{
		Verdict:    report.Verdict,
		Passed:     report.Passed,
		Total:      report.Total,
		Cases:      report.Cases,
		AddedXP:    addedXP,
		Submission: sub,
	}, nil
}

// joinOutputs flattens the per-case stdout into the `#<n> OK|X` text the
// platform stores on the submission row.
func joinOutputs(cases []judge.CaseOutcome) string {
	lines := make([]string, len(cases))
	for i, c := range cases {
		mark := "X"
		if c.OK {
			mark = "OK"
		}
		lines[i] = fmt.Sprintf("#%d %s\n%s", i+1, mark, judge.Normalize(c.Got))
	}
	return strings.Join(lines, "\n")
}

func joinErrors(cases []judge.CaseOutcome) string {
	var lines []string
	for i, c := range cases {
		if c.Stderr != "" {
			lines = append(lines, fmt.Sprintf("#%d %s", i+1, c.Stderr))
		}
	}
	return strings.Join(lines, "\n")
}

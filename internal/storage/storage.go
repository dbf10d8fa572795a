package storage

import (
	"context"
	"time"
)

// Problem is the catalog metadata the judge needs: slug addresses the test
// bank and harness registry, xp feeds the scoring gate.
type Problem struct {
	ID   int64  `db:"id"`
	Slug string `db:"slug"`
	XP   int64  `db:"xp"`
}

// Submission is the stored record of one judge invocation. Output and Error
// hold the aggregated per-case text the platform shows for debugging.
type Submission struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ProblemID int64     `db:"problem_id"`
	Language  string    `db:"language"`
	Code      string    `db:"code"`
	Status    string    `db:"status"`
	Output    string    `db:"output"`
	Error     string    `db:"error"`
	CreatedAt time.Time `db:"created_at"`
}

type User struct {
	ID    int64 `db:"id"`
	XP    int64 `db:"xp"`
	Level int64 `db:"level"`
}

type ProblemStore interface {
	GetProblem(ctx context.Context, id int64) (Problem, error)
}

type SubmissionStore interface {
	// InsertSubmission stores the row and returns it with the generated id
	// and timestamp filled in.
	InsertSubmission(ctx context.Context, sub Submission) (Submission, error)

	// HasAcceptedOther reports whether any accepted submission besides
	// excludeID exists for the (user, problem) pair.
	HasAcceptedOther(ctx context.Context, userID, problemID, excludeID int64) (bool, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id int64) (User, error)

	// AddXP bumps the user's XP and recomputes the level in one atomic
	// update, never a read-then-write.
	AddXP(ctx context.Context, userID, delta int64) error

	// GrantXPIfFirstAccept performs the first-accept check and the XP bump
	// as one decision: the grant happens only when no accepted submission
	// created before excludeSubmissionID exists for the pair. Reports
	// whether the grant was applied.
	GrantXPIfFirstAccept(ctx context.Context, userID, problemID, excludeSubmissionID, delta int64) (bool, error)
}

// Store bundles the three collaborator interfaces a fully wired engine needs.
type Store interface {
	ProblemStore
	SubmissionStore
	UserStore
}

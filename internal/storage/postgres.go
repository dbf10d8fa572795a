package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
)

type postgresStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

// NewPostgresStore connects to the platform database. The submissions,
// problems and users tables are owned by the web layer; this store only
// exercises the field contract the judge depends on.
func NewPostgresStore(databaseURL string) (Store, *sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &postgresStore{
		db:     db,
		logger: logger.NewNamedLogger("storage"),
	}, db, nil
}

func (s *postgresStore) GetProblem(ctx context.Context, id int64) (Problem, error) {
	var p Problem
	err := s.db.GetContext(ctx, &p, `SELECT id, slug, xp FROM problems WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Problem{}, errs.ErrProblemNotFound
		}
		return Problem{}, fmt.Errorf("failed to load problem %d: %w", id, err)
	}
	return p, nil
}

func (s *postgresStore) InsertSubmission(ctx context.Context, sub Submission) (Submission, error) {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO submissions (user_id, problem_id, language, code, status, output, error)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		 RETURNING id, created_at`,
		sub.UserID, sub.ProblemID, sub.Language, sub.Code, sub.Status, sub.Output, sub.Error,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to insert submission: %w", err)
	}
	return sub, nil
}

func (s *postgresStore) HasAcceptedOther(ctx context.Context, userID, problemID, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
		   SELECT 1 FROM submissions
		    WHERE user_id = $1 AND problem_id = $2 AND status = $3 AND id <> $4
		 )`,
		userID, problemID, constants.SubmissionStatusSuccess, excludeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check prior accepts: %w", err)
	}
	return exists, nil
}

func (s *postgresStore) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, COALESCE(xp, 0) AS xp, COALESCE(level, 1) AS level FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, errs.ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return u, nil
}

func (s *postgresStore) AddXP(ctx context.Context, userID, delta int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users
		    SET xp = COALESCE(xp, 0) + $1,
		        level = GREATEST(1, 1 + FLOOR((COALESCE(xp, 0) + $1) / 100.0))
		  WHERE id = $2`,
		delta, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add xp for user %d: %w", userID, err)
	}
	return nil
}

// GrantXPIfFirstAccept folds the "earlier accepted submission?" check and
// the XP bump into one statement, so two concurrent accepts for the same
// pair cannot both grant. The earlier-id comparison makes exactly one of
// them win regardless of which grant runs first.
func (s *postgresStore) GrantXPIfFirstAccept(
	ctx context.Context,
	userID, problemID, excludeSubmissionID, delta int64,
) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		    SET xp = COALESCE(xp, 0) + $1,
		        level = GREATEST(1, 1 + FLOOR((COALESCE(xp, 0) + $1) / 100.0))
		  WHERE id = $2
		    AND NOT EXISTS(
		        SELECT 1 FROM submissions
		         WHERE user_id = $2 AND problem_id = $3 AND status = $4 AND id < $5
		    )`,
		delta, userID, problemID, constants.SubmissionStatusSuccess, excludeSubmissionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to grant xp for user %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read grant result: %w", err)
	}
	return affected > 0, nil
}

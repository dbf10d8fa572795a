package testbank

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coderank/judge/pkg/errs"
)

type testRow struct {
	ID          int64  `db:"id"`
	InputText   string `db:"input_text"`
	ExpectedOut string `db:"expected_out"`
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns the storage-backed test bank. Rows carry no
// public/hidden partition; the whole ordered set judges as hidden.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Lookup(ctx context.Context, problemID int64, _ string) (Entry, error) {
	var rows []testRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, input_text, expected_out FROM problem_tests WHERE problem_id = $1 ORDER BY id`,
		problemID,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load tests for problem %d: %w", problemID, err)
	}
	if len(rows) == 0 {
		return Entry{}, errs.ErrNoTestsDefined
	}

	cases := make([]TestCase, len(rows))
	for i, row := range rows {
		cases[i] = TestCase{Input: row.InputText, ExpectedOutput: row.ExpectedOut}
	}
	return Entry{Hidden: cases}, nil
}

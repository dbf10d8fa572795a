package testbank

import "context"

// TestCase is one input/expected-output pair. Immutable once defined.
type TestCase struct {
	Input          string
	ExpectedOutput string
}

// Entry is the ordered test collection for one problem. Public cases are
// shown to users, hidden cases judge only; judging runs public then hidden.
type Entry struct {
	Public []TestCase
	Hidden []TestCase
}

// All returns the judging sequence: public cases followed by hidden ones.
func (e Entry) All() []TestCase {
	all := make([]TestCase, 0, len(e.Public)+len(e.Hidden))
	all = append(all, e.Public...)
	all = append(all, e.Hidden...)
	return all
}

func (e Entry) Total() int {
	return len(e.Public) + len(e.Hidden)
}

// Repository resolves the test bank entry for a problem. The static
// implementation addresses entries by slug, the storage-backed one by
// problem id; both return ErrNoTestsDefined when nothing is registered.
type Repository interface {
	Lookup(ctx context.Context, problemID int64, slug string) (Entry, error)
}

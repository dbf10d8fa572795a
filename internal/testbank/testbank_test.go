package testbank_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/coderank/judge/internal/testbank"
	"github.com/coderank/judge/pkg/errs"
)

func TestStaticLookup_KnownSlug(t *testing.T) {
	repo := NewStaticRepository()
	entry, err := repo.Lookup(context.Background(), 2, "sum-two-ints")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if len(entry.Public) != 1 || len(entry.Hidden) != 3 {
		t.Fatalf("expected 1 public and 3 hidden cases, got %d/%d", len(entry.Public), len(entry.Hidden))
	}
	if entry.Public[0].Input != "3 4" || entry.Public[0].ExpectedOutput != "7" {
		t.Fatalf("unexpected public case: %+v", entry.Public[0])
	}
}

func TestStaticLookup_UnknownSlug(t *testing.T) {
	repo := NewStaticRepository()
	_, err := repo.Lookup(context.Background(), 99, "no-such-problem")
	if !errors.Is(err, errs.ErrNoTestsDefined) {
		t.Fatalf("expected ErrNoTestsDefined, got %v", err)
	}
}

func TestEntry_AllOrdersPublicFirst(t *testing.T) {
	entry := Entry{
		Public: []TestCase{{Input: "p1"}, {Input: "p2"}},
		Hidden: []TestCase{{Input: "h1"}},
	}
	all := entry.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(all))
	}
	wantOrder := []string{"p1", "p2", "h1"}
	for i, tc := range all {
		if tc.Input != wantOrder[i] {
			t.Fatalf("case %d: expected input %q, got %q", i, wantOrder[i], tc.Input)
		}
	}
	if entry.Total() != 3 {
		t.Fatalf("expected total 3, got %d", entry.Total())
	}
}

func TestStaticBank_EveryEntryHasCases(t *testing.T) {
	repo := NewStaticRepository()
	slugs := []string{
		"print-hello", "sum-two-ints", "find-factorial", "palindrome-check",
		"two-sum", "reverse-string", "fizz-buzz", "max-of-three",
		"count-vowels", "prime-check", "fibonacci-n", "gcd",
		"anagram-check", "balanced-parentheses", "binary-search",
		"longest-substring-unique", "matrix-rotate-90", "merge-intervals",
	}
	for _, slug := range slugs {
		entry, err := repo.Lookup(context.Background(), 0, slug)
		if err != nil {
			t.Fatalf("Lookup(%s) returned error: %v", slug, err)
		}
		if entry.Total() == 0 {
			t.Fatalf("problem %s has no test cases", slug)
		}
	}
}

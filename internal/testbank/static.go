package testbank

import (
	"context"

	"github.com/coderank/judge/pkg/errs"
)

// staticBank is the embedded test bank keyed by problem slug, used when no
// database is configured.
var staticBank = map[string]Entry{
	"print-hello": {
		Public: []TestCase{{Input: "", ExpectedOutput: "Hello, CodeRank!"}},
		Hidden: []TestCase{{Input: "", ExpectedOutput: "Hello, CodeRank!"}},
	},
	"sum-two-ints": {
		Public: []TestCase{{Input: "3 4", ExpectedOutput: "7"}},
		Hidden: []TestCase{
			{Input: "0 0", ExpectedOutput: "0"},
			{Input: "-5 2", ExpectedOutput: "-3"},
			{Input: "100 250", ExpectedOutput: "350"},
		},
	},
	"find-factorial": {
		Public: []TestCase{{Input: "5", ExpectedOutput: "120"}},
		Hidden: []TestCase{
			{Input: "0", ExpectedOutput: "1"},
			{Input: "1", ExpectedOutput: "1"},
			{Input: "6", ExpectedOutput: "720"},
		},
	},
	"palindrome-check": {
		Public: []TestCase{{Input: "madam", ExpectedOutput: "YES"}},
		Hidden: []TestCase{
			{Input: "coderank", ExpectedOutput: "NO"},
			{Input: "abba", ExpectedOutput: "YES"},
		},
	},
	"two-sum": {
		Public: []TestCase{{Input: "4\n2 7 11 15\n9", ExpectedOutput: "0 1"}},
		Hidden: []TestCase{
			{Input: "3\n3 2 4\n6", ExpectedOutput: "1 2"},
			{Input: "2\n3 3\n6", ExpectedOutput: "0 1"},
		},
	},
	"reverse-string": {
		Public: []TestCase{{Input: "hello", ExpectedOutput: "olleh"}},
		Hidden: []TestCase{
			{Input: "a", ExpectedOutput: "a"},
			{Input: "abba", ExpectedOutput: "abba"},
		},
	},
	"fizz-buzz": {
		Public: []TestCase{{Input: "5", ExpectedOutput: "1\n2\nFizz\n4\nBuzz"}},
		Hidden: []TestCase{
			{Input: "1", ExpectedOutput: "1"},
			{
				Input:          "15",
				ExpectedOutput: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz",
			},
		},
	},
	"max-of-three": {
		Public: []TestCase{{Input: "5 9 -1", ExpectedOutput: "9"}},
		Hidden: []TestCase{
			{Input: "0 0 0", ExpectedOutput: "0"},
			{Input: "-10 -3 -7", ExpectedOutput: "-3"},
		},
	},
	"count-vowels": {
		Public: []TestCase{{Input: "banana", ExpectedOutput: "3"}},
		Hidden: []TestCase{
			{Input: "aeiou", ExpectedOutput: "5"},
			{Input: "bcdfg", ExpectedOutput: "0"},
		},
	},
	"prime-check": {
		Public: []TestCase{{Input: "7", ExpectedOutput: "YES"}},
		Hidden: []TestCase{
			{Input: "1", ExpectedOutput: "NO"},
			{Input: "2", ExpectedOutput: "YES"},
			{Input: "12", ExpectedOutput: "NO"},
		},
	},
	"fibonacci-n": {
		Public: []TestCase{{Input: "7", ExpectedOutput: "13"}},
		Hidden: []TestCase{
			{Input: "0", ExpectedOutput: "0"},
			{Input: "1", ExpectedOutput: "1"},
			{Input: "10", ExpectedOutput: "55"},
		},
	},
	"gcd": {
		Public: []TestCase{{Input: "12 18", ExpectedOutput: "6"}},
		Hidden: []TestCase{
			{Input: "0 5", ExpectedOutput: "5"},
			{Input: "100 35", ExpectedOutput: "5"},
		},
	},
	"anagram-check": {
		Public: []TestCase{{Input: "listen\nsilent", ExpectedOutput: "YES"}},
		Hidden: []TestCase{
			{Input: "abc\nabz", ExpectedOutput: "NO"},
			{Input: "aabb\nbaba", ExpectedOutput: "YES"},
		},
	},
	"balanced-parentheses": {
		Public: []TestCase{{Input: "()[]{}", ExpectedOutput: "YES"}},
		Hidden: []TestCase{
			{Input: "([)]", ExpectedOutput: "NO"},
			{Input: "{[()]}", ExpectedOutput: "YES"},
		},
	},
	"binary-search": {
		Public: []TestCase{{Input: "5\n1 3 5 7 9\n7", ExpectedOutput: "3"}},
		Hidden: []TestCase{
			{Input: "3\n2 4 6\n5", ExpectedOutput: "-1"},
			{Input: "1\n10\n10", ExpectedOutput: "0"},
		},
	},
	"longest-substring-unique": {
		Public: []TestCase{{Input: "abcabcbb", ExpectedOutput: "3"}},
		Hidden: []TestCase{
			{Input: "bbbbb", ExpectedOutput: "1"},
			{Input: "pwwkew", ExpectedOutput: "3"},
			{Input: "", ExpectedOutput: "0"},
		},
	},
	"matrix-rotate-90": {
		Public: []TestCase{{Input: "3\n1 2 3\n4 5 6\n7 8 9", ExpectedOutput: "7 4 1\n8 5 2\n9 6 3"}},
		Hidden: []TestCase{
			{Input: "1\n5", ExpectedOutput: "5"},
			{Input: "2\n1 2\n3 4", ExpectedOutput: "3 1\n4 2"},
		},
	},
	"merge-intervals": {
		Public: []TestCase{{Input: "4\n1 3\n2 6\n8 10\n15 18", ExpectedOutput: "1 6\n8 10\n15 18"}},
		Hidden: []TestCase{
			{Input: "3\n1 4\n4 5\n6 7", ExpectedOutput: "1 5\n6 7"},
			{Input: "2\n1 2\n3 4", ExpectedOutput: "1 2\n3 4"},
		},
	},
}

type staticRepository struct{}

// NewStaticRepository returns the embedded, slug-addressed test bank.
func NewStaticRepository() Repository {
	return staticRepository{}
}

func (staticRepository) Lookup(_ context.Context, _ int64, slug string) (Entry, error) {
	entry, ok := staticBank[slug]
	if !ok || entry.Total() == 0 {
		return Entry{}, errs.ErrNoTestsDefined
	}
	return entry, nil
}

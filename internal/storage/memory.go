package storage

import (
	"context"
	"sync"
	"time"

	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
)

// memoryStore is the database-free implementation used when DATABASE_URL is
// unset, and by tests. Grant decisions serialize on the store mutex.
type memoryStore struct {
	mu          sync.Mutex
	problems    map[int64]Problem
	users       map[int64]*User
	submissions []Submission
	nextSubID   int64
}

// defaultProblems mirrors the platform catalog for the embedded test bank.
var defaultProblems = []Problem{
	{ID: 1, Slug: "print-hello", XP: 10},
	{ID: 2, Slug: "sum-two-ints", XP: 20},
	{ID: 3, Slug: "find-factorial", XP: 30},
	{ID: 4, Slug: "palindrome-check", XP: 30},
	{ID: 5, Slug: "two-sum", XP: 50},
	{ID: 6, Slug: "reverse-string", XP: 20},
	{ID: 7, Slug: "fizz-buzz", XP: 20},
	{ID: 8, Slug: "max-of-three", XP: 20},
	{ID: 9, Slug: "count-vowels", XP: 20},
	{ID: 10, Slug: "prime-check", XP: 30},
	{ID: 11, Slug: "fibonacci-n", XP: 40},
	{ID: 12, Slug: "gcd", XP: 40},
	{ID: 13, Slug: "anagram-check", XP: 40},
	{ID: 14, Slug: "balanced-parentheses", XP: 50},
	{ID: 15, Slug: "binary-search", XP: 50},
	{ID: 16, Slug: "longest-substring-unique", XP: 80},
	{ID: 17, Slug: "matrix-rotate-90", XP: 80},
	{ID: 18, Slug: "merge-intervals", XP: 80},
}

// NewMemoryStore returns an in-memory store seeded with the default problem
// catalog. Users are created on first reference with xp 0, level 1.
func NewMemoryStore() Store {
	problems := make(map[int64]Problem, len(defaultProblems))
	for _, p := range defaultProblems {
		problems[p.ID] = p
	}
	return &memoryStore{
		problems:  problems,
		users:     make(map[int64]*User),
		nextSubID: 1,
	}
}

func (s *memoryStore) GetProblem(_ context.Context, id int64) (Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.problems[id]
	if !ok {
		return Problem{}, errs.ErrProblemNotFound
	}
	return p, nil
}

func (s *memoryStore) InsertSubmission(_ context.Context, sub Submission) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.nextSubID
	s.nextSubID++
	sub.CreatedAt = time.Now()
	s.submissions = append(s.submissions, sub)
	return sub, nil
}

func (s *memoryStore) HasAcceptedOther(_ context.Context, userID, problemID, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAcceptedOtherLocked(userID, problemID, excludeID), nil
}

func (s *memoryStore) hasAcceptedOtherLocked(userID, problemID, excludeID int64) bool {
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.ProblemID == problemID &&
			sub.Status == constants.SubmissionStatusSuccess && sub.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *memoryStore) GetUser(_ context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.userLocked(id), nil
}

func (s *memoryStore) AddXP(_ context.Context, userID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addXPLocked(userID, delta)
	return nil
}

func (s *memoryStore) GrantXPIfFirstAccept(
	_ context.Context,
	userID, problemID, excludeSubmissionID, delta int64,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.ProblemID == problemID &&
			sub.Status == constants.SubmissionStatusSuccess && sub.ID < excludeSubmissionID {
			return false, nil
		}
	}
	s.addXPLocked(userID, delta)
	return true, nil
}

func (s *memoryStore) userLocked(id int64) *User {
	u, ok := s.users[id]
	if !ok {
		u = &User{ID: id, XP: 0, Level: 1}
		s.users[id] = u
	}
	return u
}

func (s *memoryStore) addXPLocked(userID, delta int64) {
	u := s.userLocked(userID)
	u.XP += delta
	u.Level = 1 + u.XP/100
	if u.Level < 1 {
		u.Level = 1
	}
}

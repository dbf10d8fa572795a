package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/storage"
)

// Gate decides whether an accepted submission earns experience points.
// XP is granted exactly once per (user, problem) pair, on the first
// accepted submission in creation order; every later accept grants zero.
type Gate struct {
	users  storage.UserStore
	logger *zap.SugaredLogger
}

func NewGate(users storage.UserStore) *Gate {
	return &Gate{
		users:  users,
		logger: logger.NewNamedLogger("scoring"),
	}
}

// GrantIfFirstAccept grants xpValue to the user iff no accepted submission
// other than submissionID exists for the pair, and returns the granted
// amount. The check and the XP bump are one atomic decision in the store,
// so concurrent duplicate accepts cannot double-grant.
func (g *Gate) GrantIfFirstAccept(
	ctx context.Context,
	userID, problemID, submissionID, xpValue int64,
) (int64, error) {
	if xpValue <= 0 {
		return 0, nil
	}

	granted, err := g.users.GrantXPIfFirstAccept(ctx, userID, problemID, submissionID, xpValue)
	if err != nil {
		return 0, fmt.Errorf("failed to apply first-accept grant: %w", err)
	}
	if !granted {
		return 0, nil
	}

	g.logger.Infof("granted %d xp to user %d for problem %d", xpValue, userID, problemID)
	return xpValue, nil
}

package chain

import (
	"context"
	"time"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// DefaultTimeout bounds a single contract call or transaction wait.
const DefaultTimeout = 30 * time.Second

// Gateway reads and writes show state held by the show contract.
type Gateway interface {
	GetShow(ctx context.Context, showID string) (core.Show, error)
	// GetLivingParticipants returns the show's roster filtered to living agents, in roster order.
	GetLivingParticipants(ctx context.Context, showID string) ([]core.Agent, error)
	ApplyTraitUpdate(ctx context.Context, agentID string, traits core.TraitVector) (*core.Receipt, error)
	// KillAgent fails with AlreadyEliminatedError when the agent is already dead.
	KillAgent(ctx context.Context, showID, agentID string) (*core.Receipt, error)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

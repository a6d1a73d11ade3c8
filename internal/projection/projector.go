package projection

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/storage"
)

// Projector applies decoded events to Postgres, one transaction per event.
// A failure anywhere in a handler rolls the whole event back; state is never
// left half-applied.
type Projector struct {
	db *storage.PostgresDB
}

// NewProjector creates a projector over the given database
func NewProjector(db *storage.PostgresDB) *Projector {
	return &Projector{db: db}
}

// Apply projects one event atomically
func (p *Projector) Apply(ctx context.Context, e *chain.Event) error {
	return p.db.InTx(ctx, func(tx pgx.Tx) error {
		return Dispatch(ctx, storage.NewStores(tx), e)
	})
}

// Dispatch routes an event to its handler. Exported separately from Apply so
// tests can drive handlers against an in-memory store.
func Dispatch(ctx context.Context, s Store, e *chain.Event) error {
	switch payload := e.Payload.(type) {
	case *chain.ModelSubmitted:
		return handleModelSubmitted(ctx, s, e, payload)
	case *chain.ReviewSubmitted:
		return handleReviewSubmitted(ctx, s, e, payload)
	case *chain.ModelStatusUpdated:
		return handleModelStatusUpdated(ctx, s, e, payload)
	case *chain.ProposalCreated:
		return handleProposalCreated(ctx, s, e, payload)
	case *chain.VoteCast:
		return handleVoteCast(ctx, s, e, payload)
	case *chain.ProposalExecuted:
		return handleProposalExecuted(ctx, s, e, payload)
	case *chain.ReputationUpdated:
		return handleReputationUpdated(ctx, s, e, payload)
	case *chain.BadgeAwarded:
		return handleBadgeAwarded(ctx, s, e, payload)
	case *chain.IdentityMinted:
		return handleIdentityMinted(ctx, s, e, payload)
	case *chain.PlatformVerified:
		return handlePlatformVerified(ctx, s, e, payload)
	case *chain.IdentitiesRootSet:
		// Recognized and deliberately ignored: the merkle root rotation
		// carries no state the read API serves.
		return nil
	default:
		return fmt.Errorf("no handler for event kind %s", e.Kind)
	}
}

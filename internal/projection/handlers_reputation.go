package projection

import (
	"context"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/types"
)

func touch(e *chain.Event) storage.Touch {
	return storage.Touch{
		Timestamp:   types.Quantity(e.BlockTime),
		TxHash:      e.TxHash,
		BlockNumber: types.Quantity(e.BlockNumber),
	}
}

func handleReputationUpdated(ctx context.Context, s Store, e *chain.Event, p *chain.ReputationUpdated) error {
	entry := &models.ReputationHistoryEntry{
		ID:                  EventID(e),
		UserID:              p.User,
		NewScore:            p.NewScore,
		PointsAdded:         p.PointsAdded,
		Reason:              p.Reason,
		CreatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertReputationEntry(ctx, entry); err != nil {
		return err
	}

	if err := s.UpsertUserReputation(ctx, p.User, p.NewScore, touch(e)); err != nil {
		return err
	}

	// newScore is an absolute snapshot, so the stats merge overwrites the
	// score instead of adding to it.
	score := p.NewScore
	firstSeen, err := s.MergeUserStats(ctx, p.User, models.UserStatsDelta{ReputationScore: &score}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	if firstSeen {
		return s.MergeGlobalStats(ctx, models.GlobalStatsDelta{Users: 1}, types.Quantity(e.BlockTime))
	}
	return nil
}

func handleBadgeAwarded(ctx context.Context, s Store, e *chain.Event, p *chain.BadgeAwarded) error {
	b := &models.Badge{
		ID:                  EventID(e),
		UserID:              p.User,
		BadgeID:             p.BadgeID,
		BadgeName:           p.BadgeName,
		AwardedAt:           types.Quantity(p.Timestamp),
		CreatedAt:           types.Quantity(e.BlockTime),
		UpdatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertBadge(ctx, b); err != nil {
		return err
	}

	firstSeen, err := s.MergeUserStats(ctx, p.User, models.UserStatsDelta{Badges: 1}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	delta := models.GlobalStatsDelta{Badges: 1}
	if firstSeen {
		delta.Users = 1
	}
	return s.MergeGlobalStats(ctx, delta, types.Quantity(e.BlockTime))
}

package projection

import (
	"context"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

func handleIdentityMinted(ctx context.Context, s Store, e *chain.Event, p *chain.IdentityMinted) error {
	id := &models.Identity{
		TokenID:             types.Quantity(p.TokenID),
		Owner:               p.Owner,
		URI:                 p.URI,
		MintedAt:            types.Quantity(p.Timestamp),
		CreatedAt:           types.Quantity(e.BlockTime),
		UpdatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertIdentity(ctx, id); err != nil {
		return err
	}

	if err := s.UpsertUserIdentity(ctx, p.Owner, types.Quantity(p.TokenID), touch(e)); err != nil {
		return err
	}

	// Zero-delta merge so the stats row is the single "seen" marker for
	// every address, keeping totalUsers exact across all event kinds.
	firstSeen, err := s.MergeUserStats(ctx, p.Owner, models.UserStatsDelta{}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	delta := models.GlobalStatsDelta{Identities: 1}
	if firstSeen {
		delta.Users = 1
	}
	return s.MergeGlobalStats(ctx, delta, types.Quantity(e.BlockTime))
}

func handlePlatformVerified(ctx context.Context, s Store, e *chain.Event, p *chain.PlatformVerified) error {
	v := &models.PlatformVerification{
		ID:                  EventID(e),
		TokenID:             types.Quantity(p.TokenID),
		Platform:            p.Platform,
		Username:            p.Username,
		Owner:               p.Owner,
		VerifiedAt:          types.Quantity(p.Timestamp),
		CreatedAt:           types.Quantity(e.BlockTime),
		UpdatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertPlatformVerification(ctx, v); err != nil {
		return err
	}

	// Entries accumulate in event order as "platform:username".
	entry := p.Platform + ":" + p.Username
	if err := s.AppendUserPlatform(ctx, p.Owner, entry, touch(e)); err != nil {
		return err
	}

	firstSeen, err := s.MergeUserStats(ctx, p.Owner, models.UserStatsDelta{VerifiedPlatforms: 1}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	delta := models.GlobalStatsDelta{PlatformVerifications: 1}
	if firstSeen {
		delta.Users = 1
	}
	return s.MergeGlobalStats(ctx, delta, types.Quantity(e.BlockTime))
}

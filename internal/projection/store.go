// Package projection turns decoded contract events into relational state.
// Handlers are pure orchestration: all merge arithmetic lives in the Store's
// single-statement upserts, and every event applies atomically.
package projection

import (
	"context"

	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/types"
)

// Store is everything a handler may do to the projected state. The
// production implementation is storage.Stores over one transaction per
// event; tests substitute an in-memory store.
type Store interface {
	// Entity creation. All inserts are replay-safe: the deterministic or
	// chain-assigned primary key absorbs duplicates.
	InsertModel(ctx context.Context, m *models.Model) error
	InsertReview(ctx context.Context, r *models.Review) error
	InsertProposal(ctx context.Context, p *models.Proposal) error
	InsertVote(ctx context.Context, v *models.Vote) error
	InsertBadge(ctx context.Context, b *models.Badge) error
	InsertIdentity(ctx context.Context, i *models.Identity) error
	InsertPlatformVerification(ctx context.Context, v *models.PlatformVerification) error
	InsertReputationEntry(ctx context.Context, e *models.ReputationHistoryEntry) error

	// Entity mutation.
	SetModelStatus(ctx context.Context, id types.Quantity, status types.ModelStatus, updatedAt types.Quantity) error
	ApplyProposalExecution(ctx context.Context, ex *models.ProposalExecution) error

	// User upserts. Each creates the user on first sight and otherwise
	// touches only its own columns plus activity provenance.
	UpsertUserReputation(ctx context.Context, address string, newScore int64, t storage.Touch) error
	UpsertUserIdentity(ctx context.Context, address string, tokenID types.Quantity, t storage.Touch) error
	AppendUserPlatform(ctx context.Context, address, entry string, t storage.Touch) error

	// Aggregate merges. MergeUserStats reports whether the address was seen
	// for the first time, which feeds GlobalStats.totalUsers.
	MergeUserStats(ctx context.Context, address string, d models.UserStatsDelta, at types.Quantity) (firstSeen bool, err error)
	MergeReviewStats(ctx context.Context, modelID types.Quantity, severity int16, at types.Quantity) error
	MergeProposalActivity(ctx context.Context, modelID types.Quantity, at types.Quantity) error
	MergeVoteStats(ctx context.Context, proposalID types.Quantity, forVotes, againstVotes int64) error
	FinalizeProposalStats(ctx context.Context, ex *models.ProposalExecution) error
	MergeGlobalStats(ctx context.Context, d models.GlobalStatsDelta, at types.Quantity) error
}

package storage

import (
	"context"

	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

// Stores bundles every repository over one Querier. Built over a transaction
// it gives the projection a per-event atomic view; built over the pool it
// serves the read API.
type Stores struct {
	Models      *ModelRepository
	Reviews     *ReviewRepository
	Proposals   *ProposalRepository
	Votes       *VoteRepository
	Users       *UserRepository
	Badges      *BadgeRepository
	Identities  *IdentityRepository
	Reputation  *ReputationRepository
	Stats       *StatsRepository
	Progress    *ProgressRepository
}

// NewStores creates the repository bundle over q
func NewStores(q Querier) *Stores {
	return &Stores{
		Models:     NewModelRepository(q),
		Reviews:    NewReviewRepository(q),
		Proposals:  NewProposalRepository(q),
		Votes:      NewVoteRepository(q),
		Users:      NewUserRepository(q),
		Badges:     NewBadgeRepository(q),
		Identities: NewIdentityRepository(q),
		Reputation: NewReputationRepository(q),
		Stats:      NewStatsRepository(q),
		Progress:   NewProgressRepository(q),
	}
}

// Thin forwards giving the projection a flat surface over the repositories.

func (s *Stores) InsertModel(ctx context.Context, m *models.Model) error {
	return s.Models.Insert(ctx, m)
}

func (s *Stores) InsertReview(ctx context.Context, r *models.Review) error {
	return s.Reviews.Insert(ctx, r)
}

func (s *Stores) InsertProposal(ctx context.Context, p *models.Proposal) error {
	return s.Proposals.Insert(ctx, p)
}

func (s *Stores) InsertVote(ctx context.Context, v *models.Vote) error {
	return s.Votes.Insert(ctx, v)
}

func (s *Stores) InsertBadge(ctx context.Context, b *models.Badge) error {
	return s.Badges.Insert(ctx, b)
}

func (s *Stores) InsertIdentity(ctx context.Context, i *models.Identity) error {
	return s.Identities.Insert(ctx, i)
}

func (s *Stores) InsertPlatformVerification(ctx context.Context, v *models.PlatformVerification) error {
	return s.Identities.InsertVerification(ctx, v)
}

func (s *Stores) InsertReputationEntry(ctx context.Context, e *models.ReputationHistoryEntry) error {
	return s.Reputation.Insert(ctx, e)
}

func (s *Stores) SetModelStatus(ctx context.Context, id types.Quantity, status types.ModelStatus, updatedAt types.Quantity) error {
	return s.Models.SetStatus(ctx, id, status, updatedAt)
}

func (s *Stores) ApplyProposalExecution(ctx context.Context, ex *models.ProposalExecution) error {
	return s.Proposals.ApplyExecution(ctx, ex)
}

func (s *Stores) UpsertUserReputation(ctx context.Context, address string, newScore int64, t Touch) error {
	return s.Users.UpsertReputation(ctx, address, newScore, t)
}

func (s *Stores) UpsertUserIdentity(ctx context.Context, address string, tokenID types.Quantity, t Touch) error {
	return s.Users.UpsertIdentity(ctx, address, tokenID, t)
}

func (s *Stores) AppendUserPlatform(ctx context.Context, address, entry string, t Touch) error {
	return s.Users.AppendPlatform(ctx, address, entry, t)
}

func (s *Stores) MergeUserStats(ctx context.Context, address string, d models.UserStatsDelta, at types.Quantity) (bool, error) {
	return s.Stats.MergeUserStats(ctx, address, d, at)
}

func (s *Stores) MergeReviewStats(ctx context.Context, modelID types.Quantity, severity int16, at types.Quantity) error {
	return s.Stats.MergeReviewStats(ctx, modelID, severity, at)
}

func (s *Stores) MergeProposalActivity(ctx context.Context, modelID types.Quantity, at types.Quantity) error {
	return s.Stats.MergeProposalActivity(ctx, modelID, at)
}

func (s *Stores) MergeVoteStats(ctx context.Context, proposalID types.Quantity, forVotes, againstVotes int64) error {
	return s.Stats.MergeVoteStats(ctx, proposalID, forVotes, againstVotes)
}

func (s *Stores) FinalizeProposalStats(ctx context.Context, ex *models.ProposalExecution) error {
	return s.Stats.FinalizeProposalStats(ctx, ex)
}

func (s *Stores) MergeGlobalStats(ctx context.Context, d models.GlobalStatsDelta, at types.Quantity) error {
	return s.Stats.MergeGlobalStats(ctx, d, at)
}

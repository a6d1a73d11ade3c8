package projection

import (
	"context"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

func handleProposalCreated(ctx context.Context, s Store, e *chain.Event, p *chain.ProposalCreated) error {
	prop := &models.Proposal{
		ID:                  types.Quantity(p.ProposalID),
		ModelID:             types.Quantity(p.ModelID),
		ProposalType:        p.ProposalType,
		Status:              p.Status,
		ForVotes:            p.ForVotes,
		AgainstVotes:        p.AgainstVotes,
		StartTime:           types.Quantity(p.StartTime),
		EndTime:             types.Quantity(p.EndTime),
		Executed:            p.Executed,
		CreatedAt:           types.Quantity(e.BlockTime),
		UpdatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertProposal(ctx, prop); err != nil {
		return err
	}

	if err := s.MergeProposalActivity(ctx, types.Quantity(p.ModelID), types.Quantity(e.BlockTime)); err != nil {
		return err
	}

	// The event carries no proposer address, so no user stats move here.
	return s.MergeGlobalStats(ctx, models.GlobalStatsDelta{Proposals: 1}, types.Quantity(e.BlockTime))
}

func handleVoteCast(ctx context.Context, s Store, e *chain.Event, p *chain.VoteCast) error {
	v := &models.Vote{
		ID:                  EventID(e),
		ProposalID:          types.Quantity(p.ProposalID),
		Voter:               p.Voter,
		Support:             p.Support,
		ForVotes:            p.ForVotes,
		AgainstVotes:        p.AgainstVotes,
		Timestamp:           types.Quantity(p.Timestamp),
		CreatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertVote(ctx, v); err != nil {
		return err
	}

	if err := s.MergeVoteStats(ctx, types.Quantity(p.ProposalID), p.ForVotes, p.AgainstVotes); err != nil {
		return err
	}

	firstSeen, err := s.MergeUserStats(ctx, p.Voter, models.UserStatsDelta{Votes: 1}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	delta := models.GlobalStatsDelta{Votes: 1}
	if firstSeen {
		delta.Users = 1
	}
	return s.MergeGlobalStats(ctx, delta, types.Quantity(e.BlockTime))
}

func handleProposalExecuted(ctx context.Context, s Store, e *chain.Event, p *chain.ProposalExecuted) error {
	ex := &models.ProposalExecution{
		ProposalID:            types.Quantity(p.ProposalID),
		Result:                p.Result,
		ForVotes:              p.ForVotes,
		AgainstVotes:          p.AgainstVotes,
		TotalGovernanceVoters: p.TotalGovernanceVoters,
		Quorum:                p.Quorum,
		QuorumMet:             p.QuorumMet,
		MajorityWon:           p.MajorityWon,
		Timestamp:             types.Quantity(e.BlockTime),
		TxHash:                e.TxHash,
		BlockNumber:           types.Quantity(e.BlockNumber),
	}

	if err := s.ApplyProposalExecution(ctx, ex); err != nil {
		return err
	}
	return s.FinalizeProposalStats(ctx, ex)
}

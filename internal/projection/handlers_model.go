package projection

import (
	"context"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

func handleModelSubmitted(ctx context.Context, s Store, e *chain.Event, p *chain.ModelSubmitted) error {
	m := &models.Model{
		ID:                  types.Quantity(p.ModelID),
		Submitter:           p.Submitter,
		IPFSHash:            p.IPFSHash,
		Status:              p.Status,
		SubmissionTime:      types.Quantity(p.SubmissionTime),
		ReviewEndTime:       types.Quantity(p.ReviewEndTime),
		CreatedAt:           types.Quantity(e.BlockTime),
		UpdatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertModel(ctx, m); err != nil {
		return err
	}

	firstSeen, err := s.MergeUserStats(ctx, p.Submitter, models.UserStatsDelta{Models: 1}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	delta := models.GlobalStatsDelta{Models: 1}
	if firstSeen {
		delta.Users = 1
	}
	return s.MergeGlobalStats(ctx, delta, types.Quantity(e.BlockTime))
}

func handleReviewSubmitted(ctx context.Context, s Store, e *chain.Event, p *chain.ReviewSubmitted) error {
	// Severity is stored and bucketed as emitted, even outside the nominal
	// 0..4 scale. The contract owns validation; rejecting here would wedge
	// the worker on a log it can never skip.
	rev := &models.Review{
		ID:                  EventID(e),
		ModelID:             types.Quantity(p.ModelID),
		Reviewer:            p.Reviewer,
		IPFSHash:            p.IPFSHash,
		Severity:            p.Severity,
		Timestamp:           types.Quantity(p.Timestamp),
		CreatedAt:           types.Quantity(e.BlockTime),
		CreationTxHash:      e.TxHash,
		CreationBlockNumber: types.Quantity(e.BlockNumber),
	}
	if err := s.InsertReview(ctx, rev); err != nil {
		return err
	}

	if err := s.MergeReviewStats(ctx, types.Quantity(p.ModelID), p.Severity, types.Quantity(e.BlockTime)); err != nil {
		return err
	}

	firstSeen, err := s.MergeUserStats(ctx, p.Reviewer, models.UserStatsDelta{Reviews: 1}, types.Quantity(e.BlockTime))
	if err != nil {
		return err
	}

	delta := models.GlobalStatsDelta{Reviews: 1}
	if firstSeen {
		delta.Users = 1
	}
	return s.MergeGlobalStats(ctx, delta, types.Quantity(e.BlockTime))
}

func handleModelStatusUpdated(ctx context.Context, s Store, e *chain.Event, p *chain.ModelStatusUpdated) error {
	// Update-only: the model row must exist, or the store reports an error.
	return s.SetModelStatus(ctx, types.Quantity(p.ModelID), p.NewStatus, types.Quantity(e.BlockTime))
}

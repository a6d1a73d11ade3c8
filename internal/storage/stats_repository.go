package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

// StatsRepository maintains the aggregate tables. Every mutation is a single
// INSERT ... ON CONFLICT statement whose arithmetic references the stored
// row, so concurrent appliers cannot lose updates and no read-modify-write
// cycle exists anywhere in the projection.
type StatsRepository struct {
	q Querier
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(q Querier) *StatsRepository {
	return &StatsRepository{q: q}
}

// MergeUserStats folds one event's counter deltas into an address's stats
// row, creating it on first sight. The returned bool reports whether the row
// was inserted (xmax = 0 only on a fresh row), which is what drives the
// global totalUsers counter.
func (r *StatsRepository) MergeUserStats(ctx context.Context, address string, d models.UserStatsDelta, at types.Quantity) (bool, error) {
	var score int64
	hasScore := d.ReputationScore != nil
	if hasScore {
		score = *d.ReputationScore
	}

	query := `
		INSERT INTO silens_user_stats (
			address, total_models, total_reviews, total_proposals, total_votes,
			total_badges, verified_platforms_count, reputation_score, last_activity_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (address) DO UPDATE SET
			total_models = silens_user_stats.total_models + EXCLUDED.total_models,
			total_reviews = silens_user_stats.total_reviews + EXCLUDED.total_reviews,
			total_proposals = silens_user_stats.total_proposals + EXCLUDED.total_proposals,
			total_votes = silens_user_stats.total_votes + EXCLUDED.total_votes,
			total_badges = silens_user_stats.total_badges + EXCLUDED.total_badges,
			verified_platforms_count = silens_user_stats.verified_platforms_count + EXCLUDED.verified_platforms_count,
			reputation_score = CASE WHEN $10 THEN EXCLUDED.reputation_score ELSE silens_user_stats.reputation_score END,
			last_activity_at = EXCLUDED.last_activity_at
		RETURNING (xmax = 0)
	`

	var inserted bool
	err := r.q.QueryRow(ctx, query,
		address,
		d.Models,
		d.Reviews,
		d.Proposals,
		d.Votes,
		d.Badges,
		d.VerifiedPlatforms,
		score,
		at,
		hasScore,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to merge user stats: %w", err)
	}
	return inserted, nil
}

// MergeReviewStats folds one review into a model's aggregates. The running
// mean references the stored row: (avg*count + severity) / (count + 1). The
// threshold buckets count reviews with severity >= 4/3/2/1.
func (r *StatsRepository) MergeReviewStats(ctx context.Context, modelID types.Quantity, severity int16, at types.Quantity) error {
	bucket := func(threshold int16) int64 {
		if severity >= threshold {
			return 1
		}
		return 0
	}

	query := `
		INSERT INTO silens_model_stats (
			model_id, total_reviews, average_severity,
			critical_reviews_count, high_severity_reviews_count,
			medium_severity_reviews_count, low_severity_reviews_count,
			last_review_at, proposal_count, last_proposal_at
		)
		VALUES ($1, 1, $2, $3, $4, $5, $6, $7, 0, NULL)
		ON CONFLICT (model_id) DO UPDATE SET
			total_reviews = silens_model_stats.total_reviews + 1,
			average_severity = (silens_model_stats.average_severity * silens_model_stats.total_reviews + $2)
				/ (silens_model_stats.total_reviews + 1),
			critical_reviews_count = silens_model_stats.critical_reviews_count + $3,
			high_severity_reviews_count = silens_model_stats.high_severity_reviews_count + $4,
			medium_severity_reviews_count = silens_model_stats.medium_severity_reviews_count + $5,
			low_severity_reviews_count = silens_model_stats.low_severity_reviews_count + $6,
			last_review_at = $7
	`

	_, err := r.q.Exec(ctx, query,
		modelID,
		float64(severity),
		bucket(types.SeverityCriticalThreshold),
		bucket(types.SeverityHighThreshold),
		bucket(types.SeverityMediumThreshold),
		bucket(types.SeverityLowThreshold),
		at,
	)
	if err != nil {
		return fmt.Errorf("failed to merge review stats: %w", err)
	}
	return nil
}

// MergeProposalActivity folds one proposal creation into a model's aggregates
func (r *StatsRepository) MergeProposalActivity(ctx context.Context, modelID types.Quantity, at types.Quantity) error {
	query := `
		INSERT INTO silens_model_stats (
			model_id, total_reviews, average_severity,
			critical_reviews_count, high_severity_reviews_count,
			medium_severity_reviews_count, low_severity_reviews_count,
			last_review_at, proposal_count, last_proposal_at
		)
		VALUES ($1, 0, 0, 0, 0, 0, 0, NULL, 1, $2)
		ON CONFLICT (model_id) DO UPDATE SET
			proposal_count = silens_model_stats.proposal_count + 1,
			last_proposal_at = $2
	`

	if _, err := r.q.Exec(ctx, query, modelID, at); err != nil {
		return fmt.Errorf("failed to merge proposal activity: %w", err)
	}
	return nil
}

// MergeVoteStats folds one vote into a proposal's aggregates. totalVotes
// counts observed vote events; forVotes and againstVotes are overwritten with
// the contract's running totals, never summed.
func (r *StatsRepository) MergeVoteStats(ctx context.Context, proposalID types.Quantity, forVotes, againstVotes int64) error {
	query := `
		INSERT INTO silens_proposal_stats (
			proposal_id, total_votes, for_votes, against_votes,
			participation_rate, quorum_met, majority_won, execution_time
		)
		VALUES ($1, 1, $2, $3, 0, FALSE, FALSE, NULL)
		ON CONFLICT (proposal_id) DO UPDATE SET
			total_votes = silens_proposal_stats.total_votes + 1,
			for_votes = EXCLUDED.for_votes,
			against_votes = EXCLUDED.against_votes
	`

	if _, err := r.q.Exec(ctx, query, proposalID, forVotes, againstVotes); err != nil {
		return fmt.Errorf("failed to merge vote stats: %w", err)
	}
	return nil
}

// FinalizeProposalStats records a proposal's execution outcome in its stats
// row. The row is created if no vote ever touched it. participationRate is
// observed votes over governance voters at execution time.
func (r *StatsRepository) FinalizeProposalStats(ctx context.Context, ex *models.ProposalExecution) error {
	query := `
		INSERT INTO silens_proposal_stats (
			proposal_id, total_votes, for_votes, against_votes,
			participation_rate, quorum_met, majority_won, execution_time
		)
		VALUES ($1, 0, $2, $3, 0, $4, $5, $6)
		ON CONFLICT (proposal_id) DO UPDATE SET
			for_votes = EXCLUDED.for_votes,
			against_votes = EXCLUDED.against_votes,
			quorum_met = EXCLUDED.quorum_met,
			majority_won = EXCLUDED.majority_won,
			execution_time = EXCLUDED.execution_time,
			participation_rate = CASE
				WHEN $7::bigint > 0 THEN silens_proposal_stats.total_votes::double precision / $7
				ELSE 0
			END
	`

	_, err := r.q.Exec(ctx, query,
		ex.ProposalID,
		ex.ForVotes,
		ex.AgainstVotes,
		ex.QuorumMet,
		ex.MajorityWon,
		ex.Timestamp,
		ex.TotalGovernanceVoters,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize proposal stats: %w", err)
	}
	return nil
}

// MergeGlobalStats folds one event's deltas into the singleton global row
func (r *StatsRepository) MergeGlobalStats(ctx context.Context, d models.GlobalStatsDelta, at types.Quantity) error {
	query := `
		INSERT INTO silens_global_stats (
			id, total_models, total_reviews, total_proposals, total_votes,
			total_users, total_identities, total_badges,
			total_platform_verifications, average_reputation_score, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)
		ON CONFLICT (id) DO UPDATE SET
			total_models = silens_global_stats.total_models + EXCLUDED.total_models,
			total_reviews = silens_global_stats.total_reviews + EXCLUDED.total_reviews,
			total_proposals = silens_global_stats.total_proposals + EXCLUDED.total_proposals,
			total_votes = silens_global_stats.total_votes + EXCLUDED.total_votes,
			total_users = silens_global_stats.total_users + EXCLUDED.total_users,
			total_identities = silens_global_stats.total_identities + EXCLUDED.total_identities,
			total_badges = silens_global_stats.total_badges + EXCLUDED.total_badges,
			total_platform_verifications = silens_global_stats.total_platform_verifications + EXCLUDED.total_platform_verifications,
			last_updated_at = EXCLUDED.last_updated_at
	`

	_, err := r.q.Exec(ctx, query,
		models.GlobalStatsID,
		d.Models,
		d.Reviews,
		d.Proposals,
		d.Votes,
		d.Users,
		d.Identities,
		d.Badges,
		d.PlatformVerifications,
		at,
	)
	if err != nil {
		return fmt.Errorf("failed to merge global stats: %w", err)
	}
	return nil
}

// GetUserStats retrieves an address's stats row, nil when absent
func (r *StatsRepository) GetUserStats(ctx context.Context, address string) (*models.UserStats, error) {
	query := `
		SELECT address, total_models, total_reviews, total_proposals, total_votes,
		       total_badges, verified_platforms_count, reputation_score, last_activity_at
		FROM silens_user_stats
		WHERE address = $1
	`

	var s models.UserStats
	err := r.q.QueryRow(ctx, query, address).Scan(
		&s.Address,
		&s.TotalModels,
		&s.TotalReviews,
		&s.TotalProposals,
		&s.TotalVotes,
		&s.TotalBadges,
		&s.VerifiedPlatformsCount,
		&s.ReputationScore,
		&s.LastActivityAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &s, nil
}

// GetModelStats retrieves a model's stats row, nil when absent
func (r *StatsRepository) GetModelStats(ctx context.Context, modelID types.Quantity) (*models.ModelStats, error) {
	query := `
		SELECT model_id, total_reviews, average_severity,
		       critical_reviews_count, high_severity_reviews_count,
		       medium_severity_reviews_count, low_severity_reviews_count,
		       last_review_at, proposal_count, last_proposal_at
		FROM silens_model_stats
		WHERE model_id = $1
	`

	var s models.ModelStats
	err := r.q.QueryRow(ctx, query, modelID).Scan(
		&s.ModelID,
		&s.TotalReviews,
		&s.AverageSeverity,
		&s.CriticalReviewsCount,
		&s.HighSeverityReviewsCount,
		&s.MediumSeverityReviewsCount,
		&s.LowSeverityReviewsCount,
		&s.LastReviewAt,
		&s.ProposalCount,
		&s.LastProposalAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get model stats: %w", err)
	}
	return &s, nil
}

// GetProposalStats retrieves a proposal's stats row, nil when absent
func (r *StatsRepository) GetProposalStats(ctx context.Context, proposalID types.Quantity) (*models.ProposalStats, error) {
	query := `
		SELECT proposal_id, total_votes, for_votes, against_votes,
		       participation_rate, quorum_met, majority_won, execution_time
		FROM silens_proposal_stats
		WHERE proposal_id = $1
	`

	var s models.ProposalStats
	err := r.q.QueryRow(ctx, query, proposalID).Scan(
		&s.ProposalID,
		&s.TotalVotes,
		&s.ForVotes,
		&s.AgainstVotes,
		&s.ParticipationRate,
		&s.QuorumMet,
		&s.MajorityWon,
		&s.ExecutionTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal stats: %w", err)
	}
	return &s, nil
}

// GetGlobalStats retrieves the singleton global row, nil before any event
func (r *StatsRepository) GetGlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	query := `
		SELECT id, total_models, total_reviews, total_proposals, total_votes,
		       total_users, total_identities, total_badges,
		       total_platform_verifications, average_reputation_score, last_updated_at
		FROM silens_global_stats
		WHERE id = $1
	`

	var s models.GlobalStats
	err := r.q.QueryRow(ctx, query, models.GlobalStatsID).Scan(
		&s.ID,
		&s.TotalModels,
		&s.TotalReviews,
		&s.TotalProposals,
		&s.TotalVotes,
		&s.TotalUsers,
		&s.TotalIdentities,
		&s.TotalBadges,
		&s.TotalPlatformVerifications,
		&s.AverageReputationScore,
		&s.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get global stats: %w", err)
	}
	return &s, nil
}

// Leaderboard returns the top addresses by reputation score
func (r *StatsRepository) Leaderboard(ctx context.Context, limit int) ([]*models.UserStats, error) {
	query := `
		SELECT address, total_models, total_reviews, total_proposals, total_votes,
		       total_badges, verified_platforms_count, reputation_score, last_activity_at
		FROM silens_user_stats
		ORDER BY reputation_score DESC, address ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []*models.UserStats
	for rows.Next() {
		var s models.UserStats
		err := rows.Scan(
			&s.Address,
			&s.TotalModels,
			&s.TotalReviews,
			&s.TotalProposals,
			&s.TotalVotes,
			&s.TotalBadges,
			&s.VerifiedPlatformsCount,
			&s.ReputationScore,
			&s.LastActivityAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

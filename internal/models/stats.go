package models

import (
	"github.com/silens-indexer/internal/types"
)

// GlobalStatsID is the fixed key of the singleton global stats row. The row
// lives in the store, never in process memory, so counters survive restarts.
const GlobalStatsID = "global"

// UserStats holds per-address activity counters. Counters only ever increase;
// reputationScore mirrors the latest ReputationUpdated snapshot.
type UserStats struct {
	Address                string         `json:"address" db:"address"`
	TotalModels            int64          `json:"totalModels" db:"total_models"`
	TotalReviews           int64          `json:"totalReviews" db:"total_reviews"`
	TotalProposals         int64          `json:"totalProposals" db:"total_proposals"`
	TotalVotes             int64          `json:"totalVotes" db:"total_votes"`
	TotalBadges            int64          `json:"totalBadges" db:"total_badges"`
	VerifiedPlatformsCount int64          `json:"verifiedPlatformsCount" db:"verified_platforms_count"`
	ReputationScore        int64          `json:"reputationScore" db:"reputation_score"`
	LastActivityAt         types.Quantity `json:"lastActivityAt" db:"last_activity_at"`
}

// ModelStats holds per-model review and proposal aggregates. averageSeverity
// is maintained with the incremental mean formula
// (oldAvg*oldCount + severity) / (oldCount + 1); the threshold buckets count
// reviews with severity >= 1/2/3/4 respectively, so
// critical <= high <= medium <= low <= totalReviews always holds.
type ModelStats struct {
	ModelID                    types.Quantity  `json:"modelId" db:"model_id"`
	TotalReviews               int64           `json:"totalReviews" db:"total_reviews"`
	AverageSeverity            float64         `json:"averageSeverity" db:"average_severity"`
	CriticalReviewsCount       int64           `json:"criticalReviewsCount" db:"critical_reviews_count"`
	HighSeverityReviewsCount   int64           `json:"highSeverityReviewsCount" db:"high_severity_reviews_count"`
	MediumSeverityReviewsCount int64           `json:"mediumSeverityReviewsCount" db:"medium_severity_reviews_count"`
	LowSeverityReviewsCount    int64           `json:"lowSeverityReviewsCount" db:"low_severity_reviews_count"`
	LastReviewAt               *types.Quantity `json:"lastReviewAt,omitempty" db:"last_review_at"`
	ProposalCount              int64           `json:"proposalCount" db:"proposal_count"`
	LastProposalAt             *types.Quantity `json:"lastProposalAt,omitempty" db:"last_proposal_at"`
}

// ProposalStats holds per-proposal vote aggregates. forVotes/againstVotes are
// the latest contract-reported totals, overwritten (not summed) on every vote
// and on execution; totalVotes counts vote events seen by the indexer.
type ProposalStats struct {
	ProposalID        types.Quantity  `json:"proposalId" db:"proposal_id"`
	TotalVotes        int64           `json:"totalVotes" db:"total_votes"`
	ForVotes          int64           `json:"forVotes" db:"for_votes"`
	AgainstVotes      int64           `json:"againstVotes" db:"against_votes"`
	ParticipationRate float64         `json:"participationRate" db:"participation_rate"`
	QuorumMet         bool            `json:"quorumMet" db:"quorum_met"`
	MajorityWon       bool            `json:"majorityWon" db:"majority_won"`
	ExecutionTime     *types.Quantity `json:"executionTime,omitempty" db:"execution_time"`
}

// GlobalStats is the singleton platform-wide counter row.
type GlobalStats struct {
	ID                         string         `json:"id" db:"id"`
	TotalModels                int64          `json:"totalModels" db:"total_models"`
	TotalReviews               int64          `json:"totalReviews" db:"total_reviews"`
	TotalProposals             int64          `json:"totalProposals" db:"total_proposals"`
	TotalVotes                 int64          `json:"totalVotes" db:"total_votes"`
	TotalUsers                 int64          `json:"totalUsers" db:"total_users"`
	TotalIdentities            int64          `json:"totalIdentities" db:"total_identities"`
	TotalBadges                int64          `json:"totalBadges" db:"total_badges"`
	TotalPlatformVerifications int64          `json:"totalPlatformVerifications" db:"total_platform_verifications"`
	AverageReputationScore     float64        `json:"averageReputationScore" db:"average_reputation_score"`
	LastUpdatedAt              types.Quantity `json:"lastUpdatedAt" db:"last_updated_at"`
}

// UserStatsDelta describes one event's contribution to a user's counters.
// ReputationScore, when non-nil, overwrites the stored score (absolute
// snapshot, not additive).
type UserStatsDelta struct {
	Models            int64
	Reviews           int64
	Proposals         int64
	Votes             int64
	Badges            int64
	VerifiedPlatforms int64
	ReputationScore   *int64
}

// GlobalStatsDelta describes one event's contribution to the global counters.
type GlobalStatsDelta struct {
	Models                int64
	Reviews               int64
	Proposals             int64
	Votes                 int64
	Users                 int64
	Identities            int64
	Badges                int64
	PlatformVerifications int64
}

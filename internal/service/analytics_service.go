package service

import (
	"context"
	"fmt"
	"time"

	"github.com/silens-indexer/internal/logging"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/types"
)

// leaderboardSize and recentActivitySize bound the overview payload
const (
	leaderboardSize    = 10
	recentActivitySize = 5
)

// AnalyticsService serves platform-wide aggregates, cached in Redis
type AnalyticsService struct {
	modelRepo    *storage.ModelRepository
	reviewRepo   *storage.ReviewRepository
	proposalRepo *storage.ProposalRepository
	userRepo     *storage.UserRepository
	statsRepo    *storage.StatsRepository
	cache        *storage.CacheService
	log          *logging.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	modelRepo *storage.ModelRepository,
	reviewRepo *storage.ReviewRepository,
	proposalRepo *storage.ProposalRepository,
	userRepo *storage.UserRepository,
	statsRepo *storage.StatsRepository,
	cache *storage.CacheService,
) *AnalyticsService {
	return &AnalyticsService{
		modelRepo:    modelRepo,
		reviewRepo:   reviewRepo,
		proposalRepo: proposalRepo,
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		cache:        cache,
		log:          logging.WithComponent("analytics"),
	}
}

// ModelCounts breaks the model population down by status
type ModelCounts struct {
	Total       int64 `json:"total"`
	UnderReview int64 `json:"underReview"`
	Approved    int64 `json:"approved"`
	Flagged     int64 `json:"flagged"`
	Delisted    int64 `json:"delisted"`
}

// ProposalCounts summarizes proposal activity
type ProposalCounts struct {
	Active int64 `json:"active"`
}

// UserAnalytics carries the live reputation aggregate and leaderboard
type UserAnalytics struct {
	AverageReputation float64             `json:"averageReputation"`
	TopUsers          []*models.UserStats `json:"topUsers"`
}

// Overview is the platform dashboard payload
type Overview struct {
	Global         *models.GlobalStats `json:"global"`
	Models         ModelCounts         `json:"models"`
	Proposals      ProposalCounts      `json:"proposals"`
	Users          UserAnalytics       `json:"users"`
	RecentActivity []*models.Model     `json:"recentActivity"`
}

// Overview builds the dashboard payload, serving from cache when fresh.
// averageReputation is computed live from the users table; the stored global
// row does not maintain it.
func (s *AnalyticsService) Overview(ctx context.Context) (*Overview, error) {
	key := s.cache.Key(storage.CacheKeyAnalytics)

	var cached Overview
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.WithError(err).Warn("Analytics cache read failed")
	} else if hit {
		return &cached, nil
	}

	global, err := s.statsRepo.GetGlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get global stats: %w", err)
	}
	if global == nil {
		global = &models.GlobalStats{ID: models.GlobalStatsID}
	}

	breakdown, err := s.modelRepo.StatusBreakdown(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get model status breakdown: %w", err)
	}
	counts := ModelCounts{
		UnderReview: breakdown[types.ModelUnderReview],
		Approved:    breakdown[types.ModelApproved],
		Flagged:     breakdown[types.ModelFlagged],
		Delisted:    breakdown[types.ModelDelisted],
	}
	for _, c := range breakdown {
		counts.Total += c
	}

	active := types.ProposalActive
	activeProposals, err := s.proposalRepo.Count(ctx, storage.ProposalFilter{Status: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to count active proposals: %w", err)
	}

	avgReputation, err := s.userRepo.AverageReputation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average reputation: %w", err)
	}

	topUsers, err := s.statsRepo.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	recent, err := s.modelRepo.Recent(ctx, recentActivitySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent models: %w", err)
	}

	overview := &Overview{
		Global:         global,
		Models:         counts,
		Proposals:      ProposalCounts{Active: activeProposals},
		Users:          UserAnalytics{AverageReputation: avgReputation, TopUsers: topUsers},
		RecentActivity: recent,
	}

	if err := s.cache.Set(ctx, key, overview); err != nil {
		s.log.WithError(err).Warn("Analytics cache write failed")
	}
	return overview, nil
}

// ModelTrends is the model analytics payload
type ModelTrends struct {
	ModelsByStatus map[string]int64          `json:"modelsByStatus"`
	ModelsByDay    []storage.ModelTrendPoint `json:"modelsByDay"`
	TimeRange      string                    `json:"timeRange"`
}

// Models returns model submission trends for a 7d, 30d or 90d window
func (s *AnalyticsService) Models(ctx context.Context, timeRange string) (*ModelTrends, error) {
	since, normalized, err := resolveTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	key := s.cache.Key(storage.CacheKeyModelTrends, normalized)
	var cached ModelTrends
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.WithError(err).Warn("Model trends cache read failed")
	} else if hit {
		return &cached, nil
	}

	breakdown, err := s.modelRepo.StatusBreakdown(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get model status breakdown: %w", err)
	}
	byStatus := make(map[string]int64, len(breakdown))
	for status, count := range breakdown {
		byStatus[status.String()] = count
	}

	byDay, err := s.modelRepo.TrendByDay(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get model trend: %w", err)
	}

	trends := &ModelTrends{ModelsByStatus: byStatus, ModelsByDay: byDay, TimeRange: normalized}
	if err := s.cache.Set(ctx, key, trends); err != nil {
		s.log.WithError(err).Warn("Model trends cache write failed")
	}
	return trends, nil
}

// ReviewTrends is the review analytics payload
type ReviewTrends struct {
	ReviewsBySeverity map[int16]int64 `json:"reviewsBySeverity"`
	AverageSeverity   float64         `json:"averageSeverity"`
	TotalReviews      int64           `json:"totalReviews"`
	TimeRange         string          `json:"timeRange"`
}

// Reviews returns review severity trends for a 7d, 30d or 90d window
func (s *AnalyticsService) Reviews(ctx context.Context, timeRange string) (*ReviewTrends, error) {
	since, normalized, err := resolveTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	key := s.cache.Key(storage.CacheKeyReviewTrends, normalized)
	var cached ReviewTrends
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.WithError(err).Warn("Review trends cache read failed")
	} else if hit {
		return &cached, nil
	}

	breakdown, err := s.reviewRepo.BreakdownSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get severity breakdown: %w", err)
	}

	trends := &ReviewTrends{
		ReviewsBySeverity: breakdown.Counts,
		AverageSeverity:   breakdown.Average,
		TotalReviews:      breakdown.Total,
		TimeRange:         normalized,
	}
	if err := s.cache.Set(ctx, key, trends); err != nil {
		s.log.WithError(err).Warn("Review trends cache write failed")
	}
	return trends, nil
}

// resolveTimeRange maps 7d/30d/90d to a unix lower bound, defaulting to 7d
func resolveTimeRange(timeRange string) (uint64, string, error) {
	if timeRange == "" {
		timeRange = "7d"
	}

	var days int
	switch timeRange {
	case "7d":
		days = 7
	case "30d":
		days = 30
	case "90d":
		days = 90
	default:
		return 0, "", invalid("invalid timeRange %q, expected 7d, 30d or 90d", timeRange)
	}

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
	if since < 0 {
		since = 0
	}
	return uint64(since), timeRange, nil
}

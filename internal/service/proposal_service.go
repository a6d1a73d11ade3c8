package service

import (
	"context"
	"fmt"

	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/types"
)

// ProposalService serves governance proposal listings and detail views
type ProposalService struct {
	proposalRepo *storage.ProposalRepository
	voteRepo     *storage.VoteRepository
	statsRepo    *storage.StatsRepository
}

// NewProposalService creates a new proposal service
func NewProposalService(
	proposalRepo *storage.ProposalRepository,
	voteRepo *storage.VoteRepository,
	statsRepo *storage.StatsRepository,
) *ProposalService {
	return &ProposalService{
		proposalRepo: proposalRepo,
		voteRepo:     voteRepo,
		statsRepo:    statsRepo,
	}
}

// ProposalListInput filters the proposal listing
type ProposalListInput struct {
	Status       *types.ProposalStatus
	ProposalType *types.ProposalType
	Executed     *bool
	Page         Page
}

// ProposalList is the listing response
type ProposalList struct {
	Proposals  []*models.Proposal `json:"proposals"`
	Pagination Page               `json:"pagination"`
}

// List returns proposals matching the filter, newest first
func (s *ProposalService) List(ctx context.Context, in ProposalListInput) (*ProposalList, error) {
	page := in.Page.Normalize()

	proposals, err := s.proposalRepo.List(ctx, storage.ProposalFilter{
		Status:       in.Status,
		ProposalType: in.ProposalType,
		Executed:     in.Executed,
	}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return &ProposalList{Proposals: proposals, Pagination: page}, nil
}

// ProposalDetail is the single-proposal response
type ProposalDetail struct {
	Proposal *models.Proposal      `json:"proposal"`
	Votes    []*models.Vote        `json:"votes"`
	Stats    *models.ProposalStats `json:"stats"`
}

// Detail returns one proposal with its votes and stats
func (s *ProposalService) Detail(ctx context.Context, id types.Quantity) (*ProposalDetail, error) {
	p, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if p == nil {
		return nil, notFound("Proposal")
	}

	proposalID := uint64(id)
	votes, err := s.voteRepo.List(ctx, storage.VoteFilter{ProposalID: &proposalID}, DefaultPageLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes for proposal %d: %w", proposalID, err)
	}

	stats, err := s.statsRepo.GetProposalStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for proposal %d: %w", proposalID, err)
	}
	if stats == nil {
		stats = &models.ProposalStats{ProposalID: id}
	}

	return &ProposalDetail{Proposal: p, Votes: votes, Stats: stats}, nil
}

// VoteList is a vote listing response
type VoteList struct {
	Votes      []*models.Vote `json:"votes"`
	Pagination Page           `json:"pagination"`
}

// Votes lists one proposal's votes, newest first
func (s *ProposalService) Votes(ctx context.Context, id types.Quantity, support *bool, page Page) (*VoteList, error) {
	page = page.Normalize()
	proposalID := uint64(id)

	votes, err := s.voteRepo.List(ctx, storage.VoteFilter{ProposalID: &proposalID, Support: support}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return &VoteList{Votes: votes, Pagination: page}, nil
}

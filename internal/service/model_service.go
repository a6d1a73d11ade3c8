// Package service implements the read-side composition layer between the
// repositories and the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/silens-indexer/internal/ipfs"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/types"
)

// ModelService serves model listings and detail views
type ModelService struct {
	modelRepo    *storage.ModelRepository
	reviewRepo   *storage.ReviewRepository
	proposalRepo *storage.ProposalRepository
	statsRepo    *storage.StatsRepository
	ipfsClient   *ipfs.Client
}

// NewModelService creates a new model service
func NewModelService(
	modelRepo *storage.ModelRepository,
	reviewRepo *storage.ReviewRepository,
	proposalRepo *storage.ProposalRepository,
	statsRepo *storage.StatsRepository,
	ipfsClient *ipfs.Client,
) *ModelService {
	return &ModelService{
		modelRepo:    modelRepo,
		reviewRepo:   reviewRepo,
		proposalRepo: proposalRepo,
		statsRepo:    statsRepo,
		ipfsClient:   ipfsClient,
	}
}

// ModelListInput filters the model listing
type ModelListInput struct {
	Status         *types.ModelStatus
	Submitter      string
	IncludeRelated bool
	Page           Page
}

// ModelWithRelated is one listing entry with its related rows attached
type ModelWithRelated struct {
	*models.Model
	Reviews   []*models.Review   `json:"reviews,omitempty"`
	Proposals []*models.Proposal `json:"proposals,omitempty"`
	Stats     *models.ModelStats `json:"stats,omitempty"`
}

// ModelList is the listing response
type ModelList struct {
	Models     []*ModelWithRelated `json:"models"`
	Pagination Page                `json:"pagination"`
}

// List returns models matching the filter, newest first. With IncludeRelated
// each entry carries its reviews, proposals and stats.
func (s *ModelService) List(ctx context.Context, in ModelListInput) (*ModelList, error) {
	page := in.Page.Normalize()
	filter := storage.ModelFilter{Status: in.Status, Submitter: in.Submitter}

	results, err := s.modelRepo.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	out := &ModelList{Models: make([]*ModelWithRelated, 0, len(results)), Pagination: page}
	for _, m := range results {
		entry := &ModelWithRelated{Model: m}
		if in.IncludeRelated {
			if err := s.attachRelated(ctx, entry); err != nil {
				return nil, err
			}
		}
		out.Models = append(out.Models, entry)
	}
	return out, nil
}

// ModelDetail is the single-model response
type ModelDetail struct {
	Model     *models.Model      `json:"model"`
	Reviews   []*models.Review   `json:"reviews"`
	Proposals []*models.Proposal `json:"proposals"`
	Stats     *models.ModelStats `json:"stats"`
	Metadata  json.RawMessage    `json:"metadata"`
}

// Detail returns one model with its reviews, proposals, stats and IPFS
// metadata. Metadata is best effort and null when the gateway fails.
func (s *ModelService) Detail(ctx context.Context, id types.Quantity) (*ModelDetail, error) {
	m, err := s.modelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	if m == nil {
		return nil, notFound("Model")
	}

	entry := &ModelWithRelated{Model: m}
	if err := s.attachRelated(ctx, entry); err != nil {
		return nil, err
	}
	if entry.Stats == nil {
		entry.Stats = &models.ModelStats{ModelID: id}
	}

	metadata, err := s.ipfsClient.FetchDocument(ctx, m.IPFSHash)
	if err != nil {
		// Indexed state still serves; the document just comes back null.
		metadata = nil
	}

	return &ModelDetail{
		Model:     m,
		Reviews:   entry.Reviews,
		Proposals: entry.Proposals,
		Stats:     entry.Stats,
		Metadata:  metadata,
	}, nil
}

// ReviewList is a review listing response
type ReviewList struct {
	Reviews    []*models.Review `json:"reviews"`
	Pagination Page             `json:"pagination"`
}

// ModelReviews lists one model's reviews, newest first
func (s *ModelService) ModelReviews(ctx context.Context, id types.Quantity, severity *int16, page Page) (*ReviewList, error) {
	page = page.Normalize()
	modelID := uint64(id)

	reviews, err := s.reviewRepo.List(ctx, storage.ReviewFilter{ModelID: &modelID, Severity: severity}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list model reviews: %w", err)
	}
	return &ReviewList{Reviews: reviews, Pagination: page}, nil
}

// ReviewListInput filters the global review listing
type ReviewListInput struct {
	Reviewer string
	Severity *int16
	ModelID  *uint64
	Page     Page
}

// Reviews lists reviews across all models, newest first
func (s *ModelService) Reviews(ctx context.Context, in ReviewListInput) (*ReviewList, error) {
	page := in.Page.Normalize()

	reviews, err := s.reviewRepo.List(ctx, storage.ReviewFilter{
		ModelID:  in.ModelID,
		Reviewer: in.Reviewer,
		Severity: in.Severity,
	}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return &ReviewList{Reviews: reviews, Pagination: page}, nil
}

func (s *ModelService) attachRelated(ctx context.Context, entry *ModelWithRelated) error {
	modelID := uint64(entry.ID)

	reviews, err := s.reviewRepo.List(ctx, storage.ReviewFilter{ModelID: &modelID}, DefaultPageLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to load reviews for model %d: %w", modelID, err)
	}
	proposals, err := s.proposalRepo.List(ctx, storage.ProposalFilter{ModelID: &modelID}, DefaultPageLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to load proposals for model %d: %w", modelID, err)
	}
	stats, err := s.statsRepo.GetModelStats(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to load stats for model %d: %w", modelID, err)
	}

	entry.Reviews = reviews
	entry.Proposals = proposals
	entry.Stats = stats
	return nil
}

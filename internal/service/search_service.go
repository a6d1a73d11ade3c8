package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/silens-indexer/internal/storage"
)

// DefaultSearchLimit applies when a search request does not set limit
const DefaultSearchLimit = 10

// SearchService serves cross-entity lookup for the explorer search box
type SearchService struct {
	modelRepo  *storage.ModelRepository
	userRepo   *storage.UserRepository
	reviewRepo *storage.ReviewRepository
}

// NewSearchService creates a new search service
func NewSearchService(
	modelRepo *storage.ModelRepository,
	userRepo *storage.UserRepository,
	reviewRepo *storage.ReviewRepository,
) *SearchService {
	return &SearchService{
		modelRepo:  modelRepo,
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
	}
}

// SearchHit is one search result with its entity type tagged
type SearchHit struct {
	Type string `json:"type"`
	Item any    `json:"item"`
}

// SearchResult is the search response
type SearchResult struct {
	Results []SearchHit `json:"results"`
	Query   string      `json:"query"`
	Type    string      `json:"type,omitempty"`
}

// Search looks up models, users and reviews. type narrows the search to one
// entity kind; users match by address or verified platform handle.
func (s *SearchService) Search(ctx context.Context, query, entityType string, limit int) (*SearchResult, error) {
	if query == "" {
		return nil, invalid("Query parameter 'q' is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	result := &SearchResult{Results: []SearchHit{}, Query: query, Type: entityType}

	if entityType == "" || entityType == "models" {
		found, err := s.modelRepo.List(ctx, storage.ModelFilter{}, limit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to search models: %w", err)
		}
		for _, m := range found {
			result.Results = append(result.Results, SearchHit{Type: "model", Item: m})
		}
	}

	if entityType == "" || entityType == "users" {
		found, err := s.userRepo.Search(ctx, strings.ToLower(query), limit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to search users: %w", err)
		}
		for _, u := range found {
			result.Results = append(result.Results, SearchHit{Type: "user", Item: u})
		}
	}

	if entityType == "" || entityType == "reviews" {
		found, err := s.reviewRepo.List(ctx, storage.ReviewFilter{}, limit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to search reviews: %w", err)
		}
		for _, r := range found {
			result.Results = append(result.Results, SearchHit{Type: "review", Item: r})
		}
	}

	if len(result.Results) > limit {
		result.Results = result.Results[:limit]
	}
	return result, nil
}

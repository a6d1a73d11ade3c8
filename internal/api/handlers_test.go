package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/service"
	"github.com/silens-indexer/internal/types"
)

type stubModelService struct {
	list    *service.ModelList
	detail  *service.ModelDetail
	reviews *service.ReviewList
	err     error
}

func (s *stubModelService) List(_ context.Context, in service.ModelListInput) (*service.ModelList, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.list
	out.Pagination = in.Page
	return &out, nil
}

func (s *stubModelService) Detail(_ context.Context, _ types.Quantity) (*service.ModelDetail, error) {
	return s.detail, s.err
}

func (s *stubModelService) ModelReviews(_ context.Context, _ types.Quantity, _ *int16, page service.Page) (*service.ReviewList, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.reviews
	out.Pagination = page
	return &out, nil
}

func (s *stubModelService) Reviews(_ context.Context, in service.ReviewListInput) (*service.ReviewList, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.reviews
	out.Pagination = in.Page
	return &out, nil
}

type stubProposalService struct {
	detail *service.ProposalDetail
	err    error
}

func (s *stubProposalService) List(_ context.Context, in service.ProposalListInput) (*service.ProposalList, error) {
	return &service.ProposalList{Proposals: []*models.Proposal{}, Pagination: in.Page}, s.err
}

func (s *stubProposalService) Detail(_ context.Context, _ types.Quantity) (*service.ProposalDetail, error) {
	return s.detail, s.err
}

func (s *stubProposalService) Votes(_ context.Context, _ types.Quantity, _ *bool, page service.Page) (*service.VoteList, error) {
	return &service.VoteList{Votes: []*models.Vote{}, Pagination: page}, s.err
}

type stubUserService struct {
	profile *service.UserProfile
	err     error
}

func (s *stubUserService) Profile(_ context.Context, _ string) (*service.UserProfile, error) {
	return s.profile, s.err
}

func (s *stubUserService) Models(_ context.Context, _ string, page service.Page) (*service.ModelList, error) {
	return &service.ModelList{Models: []*service.ModelWithRelated{}, Pagination: page}, s.err
}

func (s *stubUserService) Reviews(_ context.Context, _ string, page service.Page) (*service.ReviewList, error) {
	return &service.ReviewList{Reviews: []*models.Review{}, Pagination: page}, s.err
}

func (s *stubUserService) Reputation(_ context.Context, _ string, page service.Page) (*service.ReputationList, error) {
	return &service.ReputationList{ReputationHistory: []*models.ReputationHistoryEntry{}, Pagination: page}, s.err
}

func (s *stubUserService) Badges(_ context.Context, _ *int64, _ string, page service.Page) (*service.BadgeList, error) {
	return &service.BadgeList{Badges: []*models.Badge{}, Pagination: page}, s.err
}

type stubAnalyticsService struct {
	overview *service.Overview
	err      error
}

func (s *stubAnalyticsService) Overview(_ context.Context) (*service.Overview, error) {
	return s.overview, s.err
}

func (s *stubAnalyticsService) Models(_ context.Context, timeRange string) (*service.ModelTrends, error) {
	if timeRange != "" && timeRange != "7d" && timeRange != "30d" && timeRange != "90d" {
		return nil, &service.ValidationError{Message: "invalid timeRange"}
	}
	return &service.ModelTrends{TimeRange: timeRange}, s.err
}

func (s *stubAnalyticsService) Reviews(_ context.Context, timeRange string) (*service.ReviewTrends, error) {
	return &service.ReviewTrends{TimeRange: timeRange}, s.err
}

type stubSearchService struct{}

func (s *stubSearchService) Search(_ context.Context, query, entityType string, limit int) (*service.SearchResult, error) {
	if query == "" {
		return nil, &service.ValidationError{Message: "Query parameter 'q' is required"}
	}
	return &service.SearchResult{Results: []service.SearchHit{}, Query: query, Type: entityType}, nil
}

func newTestServer(t *testing.T, opts ...func(*Server)) *Server {
	t.Helper()
	s := NewServer(
		&ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second},
		&stubModelService{
			list:    &service.ModelList{Models: []*service.ModelWithRelated{}},
			detail:  &service.ModelDetail{Model: &models.Model{ID: 1}},
			reviews: &service.ReviewList{Reviews: []*models.Review{}},
		},
		&stubProposalService{detail: &service.ProposalDetail{Proposal: &models.Proposal{ID: 7}}},
		&stubUserService{profile: &service.UserProfile{User: &models.User{Address: "0xaaa"}}},
		&stubAnalyticsService{overview: &service.Overview{Global: &models.GlobalStats{ID: models.GlobalStatsID}}},
		&stubSearchService{},
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetModelNotFound(t *testing.T) {
	s := newTestServer(t, func(s *Server) {
		s.modelService = &stubModelService{err: &service.NotFoundError{Entity: "Model"}}
	})

	rec := doRequest(t, s, "/api/models/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Model not found"}`, rec.Body.String())
}

func TestGetModelInvalidID(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/models/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid model id"}`, rec.Body.String())
}

func TestListModelsDefaultPagination(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/models")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pagination service.Page `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 50, body.Pagination.Limit)
	assert.Equal(t, 0, body.Pagination.Offset)
}

func TestListModelsExplicitPagination(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/models?limit=5&offset=20")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pagination service.Page `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Pagination.Limit)
	assert.Equal(t, 20, body.Pagination.Offset)
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestServer(t, func(s *Server) {
		s.userService = &stubUserService{err: &service.NotFoundError{Entity: "User"}}
	})

	rec := doRequest(t, s, "/api/users/0xdead")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}

func TestGetProposal(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/proposals/7")
	require.Equal(t, http.StatusOK, rec.Code)

	// Quantity fields serialize as decimal strings.
	var body struct {
		Proposal struct {
			ID types.Quantity `json:"id"`
		} `json:"proposal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, types.Quantity(7), body.Proposal.ID)
	assert.Contains(t, rec.Body.String(), `"id":"7"`)
}

func TestSearchRequiresQuery(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Query parameter 'q' is required"}`, rec.Body.String())
}

func TestSearchEchoesQuery(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/search?q=alice&type=users")
	require.Equal(t, http.StatusOK, rec.Code)

	var body service.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Query)
	assert.Equal(t, "users", body.Type)
}

func TestModelAnalyticsInvalidRange(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/models?timeRange=365d")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalErrorMasked(t *testing.T) {
	s := newTestServer(t, func(s *Server) {
		s.modelService = &stubModelService{err: assert.AnError}
	})

	rec := doRequest(t, s, "/api/models")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/models", nil)
	rec := httptest.NewRecorder()
	newTestServer(t).Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

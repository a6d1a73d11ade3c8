// Package api provides the HTTP read API over the indexed state.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/silens-indexer/internal/logging"
	"github.com/silens-indexer/internal/service"
	"github.com/silens-indexer/internal/types"
)

// Service interfaces for dependency injection and testing

// ModelServiceInterface defines model read operations
type ModelServiceInterface interface {
	List(ctx context.Context, in service.ModelListInput) (*service.ModelList, error)
	Detail(ctx context.Context, id types.Quantity) (*service.ModelDetail, error)
	ModelReviews(ctx context.Context, id types.Quantity, severity *int16, page service.Page) (*service.ReviewList, error)
	Reviews(ctx context.Context, in service.ReviewListInput) (*service.ReviewList, error)
}

// ProposalServiceInterface defines proposal read operations
type ProposalServiceInterface interface {
	List(ctx context.Context, in service.ProposalListInput) (*service.ProposalList, error)
	Detail(ctx context.Context, id types.Quantity) (*service.ProposalDetail, error)
	Votes(ctx context.Context, id types.Quantity, support *bool, page service.Page) (*service.VoteList, error)
}

// UserServiceInterface defines user read operations
type UserServiceInterface interface {
	Profile(ctx context.Context, address string) (*service.UserProfile, error)
	Models(ctx context.Context, address string, page service.Page) (*service.ModelList, error)
	Reviews(ctx context.Context, address string, page service.Page) (*service.ReviewList, error)
	Reputation(ctx context.Context, address string, page service.Page) (*service.ReputationList, error)
	Badges(ctx context.Context, badgeID *int64, userID string, page service.Page) (*service.BadgeList, error)
}

// AnalyticsServiceInterface defines analytics read operations
type AnalyticsServiceInterface interface {
	Overview(ctx context.Context) (*service.Overview, error)
	Models(ctx context.Context, timeRange string) (*service.ModelTrends, error)
	Reviews(ctx context.Context, timeRange string) (*service.ReviewTrends, error)
}

// SearchServiceInterface defines search operations
type SearchServiceInterface interface {
	Search(ctx context.Context, query, entityType string, limit int) (*service.SearchResult, error)
}

// Server is the HTTP API server
type Server struct {
	router           *mux.Router
	handler          http.Handler
	httpServer       *http.Server
	modelService     ModelServiceInterface
	proposalService  ProposalServiceInterface
	userService      UserServiceInterface
	analyticsService AnalyticsServiceInterface
	searchService    SearchServiceInterface
	log              *logging.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates the API server and wires its routes
func NewServer(
	config *ServerConfig,
	modelService ModelServiceInterface,
	proposalService ProposalServiceInterface,
	userService UserServiceInterface,
	analyticsService AnalyticsServiceInterface,
	searchService SearchServiceInterface,
) *Server {
	s := &Server{
		router:           mux.NewRouter(),
		modelService:     modelService,
		proposalService:  proposalService,
		userService:      userService,
		analyticsService: analyticsService,
		searchService:    searchService,
		log:              logging.WithComponent("api"),
	}

	s.setupRoutes()

	// Middleware wraps the router itself so CORS preflights and unmatched
	// paths still pass through it.
	s.handler = LoggingMiddleware(RecoveryMiddleware(CORSMiddleware(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Handler:      s.handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r := s.router.PathPrefix("/api").Subrouter()

	r.HandleFunc("/models", s.handleListModels).Methods(http.MethodGet)
	r.HandleFunc("/models/{id}", s.handleGetModel).Methods(http.MethodGet)
	r.HandleFunc("/models/{id}/reviews", s.handleListModelReviews).Methods(http.MethodGet)
	r.HandleFunc("/reviews", s.handleListReviews).Methods(http.MethodGet)

	r.HandleFunc("/proposals", s.handleListProposals).Methods(http.MethodGet)
	r.HandleFunc("/proposals/{id}", s.handleGetProposal).Methods(http.MethodGet)
	r.HandleFunc("/proposals/{id}/votes", s.handleListProposalVotes).Methods(http.MethodGet)

	r.HandleFunc("/users/{address}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{address}/models", s.handleListUserModels).Methods(http.MethodGet)
	r.HandleFunc("/users/{address}/reviews", s.handleListUserReviews).Methods(http.MethodGet)
	r.HandleFunc("/users/{address}/reputation", s.handleListUserReputation).Methods(http.MethodGet)
	r.HandleFunc("/badges", s.handleListBadges).Methods(http.MethodGet)

	r.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/analytics/models", s.handleModelAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/analytics/reviews", s.handleReviewAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
}

// Router exposes the fully wrapped handler for tests
func (s *Server) Router() http.Handler {
	return s.handler
}

// Start begins serving; it blocks until the listener stops
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

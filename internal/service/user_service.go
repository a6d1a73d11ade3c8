package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/silens-indexer/internal/ipfs"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
)

// UserService serves user profiles, their activity sublists and badges
type UserService struct {
	userRepo       *storage.UserRepository
	statsRepo      *storage.StatsRepository
	badgeRepo      *storage.BadgeRepository
	identityRepo   *storage.IdentityRepository
	reputationRepo *storage.ReputationRepository
	modelRepo      *storage.ModelRepository
	reviewRepo     *storage.ReviewRepository
	ipfsClient     *ipfs.Client
}

// NewUserService creates a new user service
func NewUserService(
	userRepo *storage.UserRepository,
	statsRepo *storage.StatsRepository,
	badgeRepo *storage.BadgeRepository,
	identityRepo *storage.IdentityRepository,
	reputationRepo *storage.ReputationRepository,
	modelRepo *storage.ModelRepository,
	reviewRepo *storage.ReviewRepository,
	ipfsClient *ipfs.Client,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		statsRepo:      statsRepo,
		badgeRepo:      badgeRepo,
		identityRepo:   identityRepo,
		reputationRepo: reputationRepo,
		modelRepo:      modelRepo,
		reviewRepo:     reviewRepo,
		ipfsClient:     ipfsClient,
	}
}

// UserProfile is the single-user response
type UserProfile struct {
	User             *models.User                   `json:"user"`
	Stats            *models.UserStats              `json:"stats"`
	Badges           []*models.Badge                `json:"badges"`
	Identity         *models.Identity               `json:"identity"`
	IdentityMetadata json.RawMessage                `json:"identityMetadata"`
	Verifications    []*models.PlatformVerification `json:"verifications"`
}

// Profile returns a user with stats, badges, identity (plus its IPFS
// metadata, best effort) and platform verifications. Addresses are stored
// lowercase, so the lookup lowercases its input.
func (s *UserService) Profile(ctx context.Context, address string) (*UserProfile, error) {
	address = strings.ToLower(address)

	u, err := s.userRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, notFound("User")
	}

	stats, err := s.statsRepo.GetUserStats(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if stats == nil {
		stats = &models.UserStats{Address: address}
	}

	badges, err := s.badgeRepo.List(ctx, storage.BadgeFilter{UserID: address}, DefaultPageLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	profile := &UserProfile{User: u, Stats: stats, Badges: badges}

	if u.IdentityTokenID != nil {
		identity, err := s.identityRepo.GetByTokenID(ctx, *u.IdentityTokenID)
		if err != nil {
			return nil, fmt.Errorf("failed to get identity: %w", err)
		}
		profile.Identity = identity
		if identity != nil {
			doc, err := s.ipfsClient.FetchDocument(ctx, ipfsHashFromURI(identity.URI))
			if err == nil {
				profile.IdentityMetadata = doc
			}
		}
	}

	verifications, err := s.identityRepo.ListVerificationsByOwner(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	profile.Verifications = verifications

	return profile, nil
}

// Models lists the models an address submitted, newest first
func (s *UserService) Models(ctx context.Context, address string, page Page) (*ModelList, error) {
	page = page.Normalize()

	results, err := s.modelRepo.List(ctx, storage.ModelFilter{Submitter: strings.ToLower(address)}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user models: %w", err)
	}

	out := &ModelList{Models: make([]*ModelWithRelated, 0, len(results)), Pagination: page}
	for _, m := range results {
		out.Models = append(out.Models, &ModelWithRelated{Model: m})
	}
	return out, nil
}

// Reviews lists the reviews an address wrote, newest first
func (s *UserService) Reviews(ctx context.Context, address string, page Page) (*ReviewList, error) {
	page = page.Normalize()

	reviews, err := s.reviewRepo.List(ctx, storage.ReviewFilter{Reviewer: strings.ToLower(address)}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	return &ReviewList{Reviews: reviews, Pagination: page}, nil
}

// ReputationList is the reputation history response
type ReputationList struct {
	ReputationHistory []*models.ReputationHistoryEntry `json:"reputationHistory"`
	Pagination        Page                             `json:"pagination"`
}

// Reputation lists an address's reputation audit log, newest first
func (s *UserService) Reputation(ctx context.Context, address string, page Page) (*ReputationList, error) {
	page = page.Normalize()

	entries, err := s.reputationRepo.ListByUser(ctx, strings.ToLower(address), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reputation history: %w", err)
	}
	return &ReputationList{ReputationHistory: entries, Pagination: page}, nil
}

// BadgeList is the badge listing response
type BadgeList struct {
	Badges     []*models.Badge `json:"badges"`
	Pagination Page            `json:"pagination"`
}

// Badges lists badges across all users, newest first
func (s *UserService) Badges(ctx context.Context, badgeID *int64, userID string, page Page) (*BadgeList, error) {
	page = page.Normalize()

	badges, err := s.badgeRepo.List(ctx, storage.BadgeFilter{UserID: strings.ToLower(userID), BadgeID: badgeID}, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return &BadgeList{Badges: badges, Pagination: page}, nil
}

// ipfsHashFromURI strips the ipfs:// scheme when present so both bare hashes
// and ipfs URIs resolve through the gateway
func ipfsHashFromURI(uri string) string {
	return strings.TrimPrefix(uri, "ipfs://")
}

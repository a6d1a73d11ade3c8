package models

import (
	"github.com/silens-indexer/internal/types"
)

// User represents an address seen by any user-touching event (reputation
// update, identity mint, platform verification). reputationScore is
// authoritative only from ReputationUpdated events.
type User struct {
	Address                  string          `json:"address" db:"address"`
	IdentityTokenID          *types.Quantity `json:"identityTokenId,omitempty" db:"identity_token_id"`
	ReputationScore          int64           `json:"reputationScore" db:"reputation_score"`
	VerifiedPlatforms        string          `json:"verifiedPlatforms" db:"verified_platforms"`
	CreatedAt                types.Quantity  `json:"createdAt" db:"created_at"`
	UpdatedAt                types.Quantity  `json:"updatedAt" db:"updated_at"`
	FirstActivityTxHash      string          `json:"firstActivityTxHash" db:"first_activity_tx_hash"`
	FirstActivityBlockNumber types.Quantity  `json:"firstActivityBlockNumber" db:"first_activity_block_number"`
	LastActivityTxHash       string          `json:"lastActivityTxHash" db:"last_activity_tx_hash"`
	LastActivityBlockNumber  types.Quantity  `json:"lastActivityBlockNumber" db:"last_activity_block_number"`
}

// Badge represents a badge awarded to a user. Append-only.
type Badge struct {
	ID                  string         `json:"id" db:"id"`
	UserID              string         `json:"userId" db:"user_id"`
	BadgeID             int64          `json:"badgeId" db:"badge_id"`
	BadgeName           string         `json:"badgeName" db:"badge_name"`
	AwardedAt           types.Quantity `json:"awardedAt" db:"awarded_at"`
	CreatedAt           types.Quantity `json:"createdAt" db:"created_at"`
	UpdatedAt           types.Quantity `json:"updatedAt" db:"updated_at"`
	CreationTxHash      string         `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity `json:"creationBlockNumber" db:"creation_block_number"`
}

// Identity represents a soulbound identity token. Created once by
// IdentityMinted.
type Identity struct {
	TokenID             types.Quantity `json:"tokenId" db:"token_id"`
	Owner               string         `json:"owner" db:"owner"`
	URI                 string         `json:"uri" db:"uri"`
	MintedAt            types.Quantity `json:"mintedAt" db:"minted_at"`
	CreatedAt           types.Quantity `json:"createdAt" db:"created_at"`
	UpdatedAt           types.Quantity `json:"updatedAt" db:"updated_at"`
	CreationTxHash      string         `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity `json:"creationBlockNumber" db:"creation_block_number"`
}

// PlatformVerification represents one off-chain platform handle verified
// against an identity token. Append-only.
type PlatformVerification struct {
	ID                  string         `json:"id" db:"id"`
	TokenID             types.Quantity `json:"tokenId" db:"token_id"`
	Platform            string         `json:"platform" db:"platform"`
	Username            string         `json:"username" db:"username"`
	Owner               string         `json:"owner" db:"owner"`
	VerifiedAt          types.Quantity `json:"verifiedAt" db:"verified_at"`
	CreatedAt           types.Quantity `json:"createdAt" db:"created_at"`
	UpdatedAt           types.Quantity `json:"updatedAt" db:"updated_at"`
	CreationTxHash      string         `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity `json:"creationBlockNumber" db:"creation_block_number"`
}

// ReputationHistoryEntry is one line of the append-only reputation audit log.
// NewScore is a snapshot of the absolute score, not a delta.
type ReputationHistoryEntry struct {
	ID                  string         `json:"id" db:"id"`
	UserID              string         `json:"userId" db:"user_id"`
	NewScore            int64          `json:"newScore" db:"new_score"`
	PointsAdded         int64          `json:"pointsAdded" db:"points_added"`
	Reason              string         `json:"reason" db:"reason"`
	CreatedAt           types.Quantity `json:"createdAt" db:"created_at"`
	CreationTxHash      string         `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity `json:"creationBlockNumber" db:"creation_block_number"`
}

// Package models provides data models for the Silens indexer.
package models

import (
	"github.com/silens-indexer/internal/types"
)

// Model represents an AI model submitted to the on-chain registry.
// Created exactly once by ModelSubmitted; only status and updatedAt change
// afterwards (ModelStatusUpdated or proposal execution).
type Model struct {
	ID                  types.Quantity    `json:"id" db:"id"`
	Submitter           string            `json:"submitter" db:"submitter"`
	IPFSHash            string            `json:"ipfsHash" db:"ipfs_hash"`
	Status              types.ModelStatus `json:"status" db:"status"`
	SubmissionTime      types.Quantity    `json:"submissionTime" db:"submission_time"`
	ReviewEndTime       types.Quantity    `json:"reviewEndTime" db:"review_end_time"`
	Upvotes             int64             `json:"upvotes" db:"upvotes"`
	Downvotes           int64             `json:"downvotes" db:"downvotes"`
	CreatedAt           types.Quantity    `json:"createdAt" db:"created_at"`
	UpdatedAt           types.Quantity    `json:"updatedAt" db:"updated_at"`
	CreationTxHash      string            `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity    `json:"creationBlockNumber" db:"creation_block_number"`
}

// Review represents a single review of a model. Append-only; never updated.
type Review struct {
	ID                  string         `json:"id" db:"id"`
	ModelID             types.Quantity `json:"modelId" db:"model_id"`
	Reviewer            string         `json:"reviewer" db:"reviewer"`
	IPFSHash            string         `json:"ipfsHash" db:"ipfs_hash"`
	Severity            int16          `json:"severity" db:"severity"`
	Timestamp           types.Quantity `json:"timestamp" db:"timestamp"`
	CreatedAt           types.Quantity `json:"createdAt" db:"created_at"`
	CreationTxHash      string         `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity `json:"creationBlockNumber" db:"creation_block_number"`
}

package models

import (
	"github.com/silens-indexer/internal/types"
)

// Proposal represents a governance proposal targeting a model. Created once
// (Active) by ProposalCreated and mutated exactly once at execution, which
// sets status, executed and the quorum fields.
type Proposal struct {
	ID                    types.Quantity       `json:"id" db:"id"`
	ModelID               types.Quantity       `json:"modelId" db:"model_id"`
	ProposalType          types.ProposalType   `json:"proposalType" db:"proposal_type"`
	Status                types.ProposalStatus `json:"status" db:"status"`
	ForVotes              int64                `json:"forVotes" db:"for_votes"`
	AgainstVotes          int64                `json:"againstVotes" db:"against_votes"`
	StartTime             types.Quantity       `json:"startTime" db:"start_time"`
	EndTime               types.Quantity       `json:"endTime" db:"end_time"`
	Executed              bool                 `json:"executed" db:"executed"`
	TotalGovernanceVoters *int64               `json:"totalGovernanceVoters,omitempty" db:"total_governance_voters"`
	Quorum                *int64               `json:"quorum,omitempty" db:"quorum"`
	QuorumMet             *bool                `json:"quorumMet,omitempty" db:"quorum_met"`
	MajorityWon           *bool                `json:"majorityWon,omitempty" db:"majority_won"`
	CreatedAt             types.Quantity       `json:"createdAt" db:"created_at"`
	UpdatedAt             types.Quantity       `json:"updatedAt" db:"updated_at"`
	CreationTxHash        string               `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber   types.Quantity       `json:"creationBlockNumber" db:"creation_block_number"`
	ExecutionTxHash       *string              `json:"executionTxHash,omitempty" db:"execution_tx_hash"`
	ExecutionBlockNumber  *types.Quantity      `json:"executionBlockNumber,omitempty" db:"execution_block_number"`
}

// Vote represents a single cast vote. Append-only. ForVotes/AgainstVotes are
// the proposal's running totals as reported by the contract at cast time, not
// this vote's weight.
type Vote struct {
	ID                  string         `json:"id" db:"id"`
	ProposalID          types.Quantity `json:"proposalId" db:"proposal_id"`
	Voter               string         `json:"voter" db:"voter"`
	Support             bool           `json:"support" db:"support"`
	ForVotes            int64          `json:"forVotes" db:"for_votes"`
	AgainstVotes        int64          `json:"againstVotes" db:"against_votes"`
	Timestamp           types.Quantity `json:"timestamp" db:"timestamp"`
	CreatedAt           types.Quantity `json:"createdAt" db:"created_at"`
	CreationTxHash      string         `json:"creationTxHash" db:"creation_tx_hash"`
	CreationBlockNumber types.Quantity `json:"creationBlockNumber" db:"creation_block_number"`
}

// ProposalExecution carries the outcome fields applied to a proposal by
// ProposalExecuted.
type ProposalExecution struct {
	ProposalID            types.Quantity
	Result                types.ProposalStatus
	ForVotes              int64
	AgainstVotes          int64
	TotalGovernanceVoters int64
	Quorum                int64
	QuorumMet             bool
	MajorityWon           bool
	Timestamp             types.Quantity
	TxHash                string
	BlockNumber           types.Quantity
}

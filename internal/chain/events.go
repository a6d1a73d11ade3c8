// Package chain wires the EVM side of the indexer: contract ABIs, log
// decoding into logical events, and the RPC client.
package chain

import (
	"fmt"

	"github.com/silens-indexer/internal/types"
)

// EventKind identifies a logical contract event. One kind covers both the
// legacy combined Silens contract and the split registries; where the two
// generations emit different field sets, the decoder maps each generation's
// topic0 to the same kind.
type EventKind string

const (
	KindModelSubmitted     EventKind = "ModelSubmitted"
	KindReviewSubmitted    EventKind = "ReviewSubmitted"
	KindModelStatusUpdated EventKind = "ModelStatusUpdated"
	KindProposalCreated    EventKind = "ProposalCreated"
	KindVoteCast           EventKind = "VoteCast"
	KindProposalExecuted   EventKind = "ProposalExecuted"
	KindReputationUpdated  EventKind = "ReputationUpdated"
	KindBadgeAwarded       EventKind = "BadgeAwarded"
	KindIdentityMinted     EventKind = "IdentityMinted"
	KindPlatformVerified   EventKind = "PlatformVerified"
	KindIdentitiesRootSet  EventKind = "SetIdentitiesRoot"
)

// Event is one decoded contract event with its chain position. Events are
// applied in (BlockNumber, TxIndex, LogIndex) order; that triple also seeds
// the deterministic ids of the rows the event produces.
type Event struct {
	Kind        EventKind
	Contract    string
	TxHash      string
	BlockNumber uint64
	TxIndex     uint
	LogIndex    uint
	BlockTime   uint64
	Payload     any
}

// Position renders the event's unique chain coordinate
func (e *Event) Position() string {
	return fmt.Sprintf("%d:%d:%d", e.BlockNumber, e.TxIndex, e.LogIndex)
}

// ModelSubmitted announces a new model in the registry
type ModelSubmitted struct {
	ModelID        uint64
	Submitter      string
	IPFSHash       string
	Status         types.ModelStatus
	SubmissionTime uint64
	ReviewEndTime  uint64
}

// ReviewSubmitted records a review of a model. ReviewType is nil for legacy
// logs; the registry generation added it. The projection does not store it,
// but the archive keeps it in the raw payload.
type ReviewSubmitted struct {
	ModelID    uint64
	Reviewer   string
	IPFSHash   string
	ReviewType *int16
	Severity   int16
	Timestamp  uint64
}

// ModelStatusUpdated changes a model's lifecycle status. The event carries
// no timestamp; the projection stamps the row with the block time.
type ModelStatusUpdated struct {
	ModelID   uint64
	NewStatus types.ModelStatus
}

// ProposalCreated announces a governance proposal targeting a model
type ProposalCreated struct {
	ProposalID   uint64
	ModelID      uint64
	ProposalType types.ProposalType
	Status       types.ProposalStatus
	ForVotes     int64
	AgainstVotes int64
	StartTime    uint64
	EndTime      uint64
	Executed     bool
}

// VoteCast records one vote. ForVotes and AgainstVotes are the proposal's
// running totals as reported by the contract, not this vote's weight.
type VoteCast struct {
	ProposalID   uint64
	Voter        string
	Support      bool
	ForVotes     int64
	AgainstVotes int64
	Timestamp    uint64
}

// ProposalExecuted carries a proposal's final outcome. Quorum and majority
// are contract verdicts; the indexer stores them verbatim.
type ProposalExecuted struct {
	ProposalID            uint64
	Result                types.ProposalStatus
	ForVotes              int64
	AgainstVotes          int64
	TotalGovernanceVoters int64
	Quorum                int64
	QuorumMet             bool
	MajorityWon           bool
}

// ReputationUpdated carries an absolute score snapshot plus the delta that
// produced it
type ReputationUpdated struct {
	User        string
	NewScore    int64
	PointsAdded int64
	Reason      string
}

// BadgeAwarded records a badge grant
type BadgeAwarded struct {
	User      string
	BadgeID   int64
	BadgeName string
	Timestamp uint64
}

// IdentityMinted records a soulbound identity token mint
type IdentityMinted struct {
	Owner     string
	TokenID   uint64
	URI       string
	Timestamp uint64
}

// PlatformVerified links an off-chain platform handle to an identity token
type PlatformVerified struct {
	TokenID   uint64
	Platform  string
	Username  string
	Owner     string
	Timestamp uint64
}

// IdentitiesRootSet is emitted when the identity merkle root rotates. The
// projection recognizes it and deliberately stores nothing.
type IdentitiesRootSet struct {
	ID   uint64
	Root [32]byte
}

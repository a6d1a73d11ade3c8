// Package types provides common type definitions for the Silens indexer.
package types

// ModelStatus represents the lifecycle state of a submitted model.
// Values mirror the on-chain enum and must not be renumbered.
type ModelStatus int16

const (
	// ModelUnderReview is the initial status assigned by ModelSubmitted
	ModelUnderReview ModelStatus = 0
	// ModelApproved marks a model approved by governance
	ModelApproved ModelStatus = 1
	// ModelFlagged marks a model flagged by governance
	ModelFlagged ModelStatus = 2
	// ModelDelisted marks a model removed from the registry
	ModelDelisted ModelStatus = 3
)

// String returns the lower-camel label used in analytics payloads
func (s ModelStatus) String() string {
	switch s {
	case ModelUnderReview:
		return "underReview"
	case ModelApproved:
		return "approved"
	case ModelFlagged:
		return "flagged"
	case ModelDelisted:
		return "delisted"
	default:
		return "unknown"
	}
}

// ProposalType represents the action a governance proposal requests.
type ProposalType int16

const (
	// ProposalApprove requests approving a model
	ProposalApprove ProposalType = 0
	// ProposalFlag requests flagging a model
	ProposalFlag ProposalType = 1
	// ProposalDelist requests delisting a model
	ProposalDelist ProposalType = 2
)

// ProposalStatus represents the lifecycle state of a proposal.
type ProposalStatus int16

const (
	// ProposalActive is the initial status assigned by ProposalCreated
	ProposalActive ProposalStatus = 0
	// ProposalPassed marks a proposal that met quorum and majority
	ProposalPassed ProposalStatus = 1
	// ProposalFailed marks a proposal that did not pass
	ProposalFailed ProposalStatus = 2
	// ProposalExecuted marks a proposal whose action was carried out
	ProposalExecuted ProposalStatus = 3
)

// BadgeType identifies the well-known badge ids minted by the reputation
// contract. Other ids may appear; they are persisted verbatim.
type BadgeType int64

const (
	// BadgeVerifiedReviewer is awarded after identity verification
	BadgeVerifiedReviewer BadgeType = 1
	// BadgeTrustedReviewer is awarded at a reputation threshold
	BadgeTrustedReviewer BadgeType = 2
	// BadgeGovernanceVoter is awarded after first governance vote
	BadgeGovernanceVoter BadgeType = 3
)

// Severity bounds for review severity scores. Higher is worse; a review of
// severity >= k counts toward every bucket with threshold <= k.
const (
	SeverityMin = 0
	SeverityMax = 4

	// SeverityLowThreshold and friends are the bucket thresholds used by
	// the per-model aggregate counters.
	SeverityLowThreshold      = 1
	SeverityMediumThreshold   = 2
	SeverityHighThreshold     = 3
	SeverityCriticalThreshold = 4
)

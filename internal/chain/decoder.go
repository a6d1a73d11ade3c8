package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/silens-indexer/internal/types"
)

// ErrUnknownTopic reports a log whose topic0 matches no projected event.
// Callers skip these; configured contracts emit events the projection does
// not track (transfers, ownership changes).
var ErrUnknownTopic = fmt.Errorf("unknown event topic")

// Decoder turns raw logs into typed Events via a topic0 registry
type Decoder struct {
	byTopic map[common.Hash]abi.Event
}

// NewDecoder builds a decoder over both contract generations. Signatures the
// generations share hash to the same topic0; where the field sets diverged,
// the legacy topic0 maps to the same logical kind with its own argument
// layout.
func NewDecoder() *Decoder {
	d := &Decoder{byTopic: make(map[common.Hash]abi.Event, len(EventsABI.Events)+len(LegacyEventsABI.Events))}
	for _, ev := range EventsABI.Events {
		d.byTopic[ev.ID] = ev
	}
	for _, ev := range LegacyEventsABI.Events {
		d.byTopic[ev.ID] = ev
	}
	return d
}

// Known reports whether topic0 maps to a projected event
func (d *Decoder) Known(topic0 common.Hash) bool {
	_, ok := d.byTopic[topic0]
	return ok
}

// Decode converts a raw log into a typed Event. blockTime is the timestamp
// of the log's block, fetched separately since logs do not carry it.
func (d *Decoder) Decode(log ethtypes.Log, blockTime uint64) (*Event, error) {
	if len(log.Topics) == 0 {
		return nil, ErrUnknownTopic
	}

	ev, ok := d.byTopic[log.Topics[0]]
	if !ok {
		return nil, ErrUnknownTopic
	}

	args, err := unpackLog(ev, log)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", ev.Name, err)
	}

	payload, err := buildPayload(ev.Name, args)
	if err != nil {
		return nil, err
	}

	return &Event{
		Kind:        EventKind(ev.Name),
		Contract:    normalizeAddress(log.Address),
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		TxIndex:     log.TxIndex,
		LogIndex:    log.Index,
		BlockTime:   blockTime,
		Payload:     payload,
	}, nil
}

// unpackLog merges non-indexed data and indexed topics into one argument map
func unpackLog(ev abi.Event, log ethtypes.Log) (map[string]any, error) {
	args := make(map[string]any)

	if len(log.Data) > 0 {
		// Unpack against the matched event's own inputs; the registry and
		// legacy variants of one event lay out their data differently.
		if err := ev.Inputs.UnpackIntoMap(args, log.Data); err != nil {
			return nil, err
		}
	}

	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
			return nil, err
		}
	}

	return args, nil
}

func buildPayload(name string, args map[string]any) (any, error) {
	switch EventKind(name) {
	case KindModelSubmitted:
		return &ModelSubmitted{
			ModelID:        argUint64(args, "modelId"),
			Submitter:      argAddress(args, "submitter"),
			IPFSHash:       argString(args, "ipfsHash"),
			Status:         types.ModelStatus(argUint8(args, "status")),
			SubmissionTime: argUint64(args, "submissionTime"),
			ReviewEndTime:  argUint64(args, "reviewEndTime"),
		}, nil
	case KindReviewSubmitted:
		p := &ReviewSubmitted{
			ModelID:   argUint64(args, "modelId"),
			Reviewer:  argAddress(args, "reviewer"),
			IPFSHash:  argString(args, "ipfsHash"),
			Severity:  int16(argUint8(args, "severity")),
			Timestamp: argUint64(args, "timestamp"),
		}
		// Only the registry generation carries reviewType.
		if _, ok := args["reviewType"]; ok {
			rt := int16(argUint8(args, "reviewType"))
			p.ReviewType = &rt
		}
		return p, nil
	case KindModelStatusUpdated:
		return &ModelStatusUpdated{
			ModelID:   argUint64(args, "modelId"),
			NewStatus: types.ModelStatus(argUint8(args, "newStatus")),
		}, nil
	case KindProposalCreated:
		return &ProposalCreated{
			ProposalID:   argUint64(args, "proposalId"),
			ModelID:      argUint64(args, "modelId"),
			ProposalType: types.ProposalType(argUint8(args, "proposalType")),
			Status:       types.ProposalStatus(argUint8(args, "status")),
			ForVotes:     argInt64(args, "forVotes"),
			AgainstVotes: argInt64(args, "againstVotes"),
			StartTime:    argUint64(args, "startTime"),
			EndTime:      argUint64(args, "endTime"),
			Executed:     argBool(args, "executed"),
		}, nil
	case KindVoteCast:
		return &VoteCast{
			ProposalID:   argUint64(args, "proposalId"),
			Voter:        argAddress(args, "voter"),
			Support:      argBool(args, "support"),
			ForVotes:     argInt64(args, "forVotes"),
			AgainstVotes: argInt64(args, "againstVotes"),
			Timestamp:    argUint64(args, "timestamp"),
		}, nil
	case KindProposalExecuted:
		return &ProposalExecuted{
			ProposalID:            argUint64(args, "proposalId"),
			Result:                types.ProposalStatus(argUint8(args, "result")),
			ForVotes:              argInt64(args, "forVotes"),
			AgainstVotes:          argInt64(args, "againstVotes"),
			TotalGovernanceVoters: argInt64(args, "totalGovernanceVoters"),
			Quorum:                argInt64(args, "quorum"),
			QuorumMet:             argBool(args, "quorumMet"),
			MajorityWon:           argBool(args, "majorityWon"),
		}, nil
	case KindReputationUpdated:
		return &ReputationUpdated{
			User:        argAddress(args, "user"),
			NewScore:    argInt64(args, "newScore"),
			PointsAdded: argInt64(args, "pointsAdded"),
			Reason:      argString(args, "reason"),
		}, nil
	case KindBadgeAwarded:
		return &BadgeAwarded{
			User:      argAddress(args, "user"),
			BadgeID:   argInt64(args, "badgeId"),
			BadgeName: argString(args, "badgeName"),
			Timestamp: argUint64(args, "timestamp"),
		}, nil
	case KindIdentityMinted:
		return &IdentityMinted{
			Owner:     argAddress(args, "owner"),
			TokenID:   argUint64(args, "tokenId"),
			URI:       argString(args, "uri"),
			Timestamp: argUint64(args, "timestamp"),
		}, nil
	case KindPlatformVerified:
		return &PlatformVerified{
			TokenID:   argUint64(args, "tokenId"),
			Platform:  argString(args, "platform"),
			Username:  argString(args, "username"),
			Owner:     argAddress(args, "owner"),
			Timestamp: argUint64(args, "timestamp"),
		}, nil
	case KindIdentitiesRootSet:
		return &IdentitiesRootSet{
			ID:   argUint64(args, "id"),
			Root: argBytes32(args, "identitiesRoot"),
		}, nil
	default:
		return nil, fmt.Errorf("no payload builder for event %s", name)
	}
}

// Argument extraction helpers. The ABI layer guarantees the underlying types,
// so a mismatched key yields a zero value rather than a panic.

func argUint64(args map[string]any, key string) uint64 {
	if v, ok := args[key].(*big.Int); ok {
		return v.Uint64()
	}
	return 0
}

func argInt64(args map[string]any, key string) int64 {
	if v, ok := args[key].(*big.Int); ok {
		return v.Int64()
	}
	return 0
}

func argUint8(args map[string]any, key string) uint8 {
	if v, ok := args[key].(uint8); ok {
		return v
	}
	return 0
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argAddress(args map[string]any, key string) string {
	if v, ok := args[key].(common.Address); ok {
		return normalizeAddress(v)
	}
	return ""
}

func argBytes32(args map[string]any, key string) [32]byte {
	if v, ok := args[key].([32]byte); ok {
		return v
	}
	return [32]byte{}
}

// normalizeAddress lowercases addresses so lookups and filters never depend
// on EIP-55 checksum casing
func normalizeAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

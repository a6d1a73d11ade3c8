package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// eventsABIJSON covers every event emitted by the split registry contracts,
// the generation currently deployed. The decoder keys on topic0, so events
// whose signatures match the legacy combined Silens contract cover both
// deployments from this one ABI; legacyEventsABIJSON lists the signatures
// that diverged.
const eventsABIJSON = `[
	{"type":"event","name":"ModelSubmitted","inputs":[
		{"name":"modelId","type":"uint256","indexed":true},
		{"name":"submitter","type":"address","indexed":true},
		{"name":"ipfsHash","type":"string","indexed":false},
		{"name":"status","type":"uint8","indexed":false},
		{"name":"submissionTime","type":"uint256","indexed":false},
		{"name":"reviewEndTime","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"ReviewSubmitted","inputs":[
		{"name":"modelId","type":"uint256","indexed":true},
		{"name":"reviewer","type":"address","indexed":true},
		{"name":"ipfsHash","type":"string","indexed":false},
		{"name":"reviewType","type":"uint8","indexed":false},
		{"name":"severity","type":"uint8","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"ModelStatusUpdated","inputs":[
		{"name":"modelId","type":"uint256","indexed":true},
		{"name":"newStatus","type":"uint8","indexed":false}
	]},
	{"type":"event","name":"ProposalCreated","inputs":[
		{"name":"proposalId","type":"uint256","indexed":true},
		{"name":"modelId","type":"uint256","indexed":true},
		{"name":"proposalType","type":"uint8","indexed":false},
		{"name":"status","type":"uint8","indexed":false},
		{"name":"forVotes","type":"uint256","indexed":false},
		{"name":"againstVotes","type":"uint256","indexed":false},
		{"name":"startTime","type":"uint256","indexed":false},
		{"name":"endTime","type":"uint256","indexed":false},
		{"name":"executed","type":"bool","indexed":false}
	]},
	{"type":"event","name":"VoteCast","inputs":[
		{"name":"proposalId","type":"uint256","indexed":true},
		{"name":"voter","type":"address","indexed":true},
		{"name":"support","type":"bool","indexed":false},
		{"name":"forVotes","type":"uint256","indexed":false},
		{"name":"againstVotes","type":"uint256","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"ProposalExecuted","inputs":[
		{"name":"proposalId","type":"uint256","indexed":true},
		{"name":"result","type":"uint8","indexed":false},
		{"name":"forVotes","type":"uint256","indexed":false},
		{"name":"againstVotes","type":"uint256","indexed":false},
		{"name":"totalGovernanceVoters","type":"uint256","indexed":false},
		{"name":"quorum","type":"uint256","indexed":false},
		{"name":"quorumMet","type":"bool","indexed":false},
		{"name":"majorityWon","type":"bool","indexed":false}
	]},
	{"type":"event","name":"ReputationUpdated","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"newScore","type":"uint256","indexed":false},
		{"name":"pointsAdded","type":"int256","indexed":false},
		{"name":"reason","type":"string","indexed":false}
	]},
	{"type":"event","name":"BadgeAwarded","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"badgeId","type":"uint256","indexed":false},
		{"name":"badgeName","type":"string","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"IdentityMinted","inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"uri","type":"string","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"PlatformVerified","inputs":[
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"platform","type":"string","indexed":false},
		{"name":"username","type":"string","indexed":false},
		{"name":"owner","type":"address","indexed":true},
		{"name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"SetIdentitiesRoot","inputs":[
		{"name":"id","type":"uint256","indexed":false},
		{"name":"identitiesRoot","type":"bytes32","indexed":false}
	]}
]`

// legacyEventsABIJSON carries the legacy combined Silens contract's variants
// of events whose field sets changed across generations. Legacy
// ReviewSubmitted predates the reviewType field, so it hashes to a different
// topic0 than the registry version.
const legacyEventsABIJSON = `[
	{"type":"event","name":"ReviewSubmitted","inputs":[
		{"name":"modelId","type":"uint256","indexed":true},
		{"name":"reviewer","type":"address","indexed":true},
		{"name":"ipfsHash","type":"string","indexed":false},
		{"name":"severity","type":"uint8","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}
	]}
]`

// EventsABI is the parsed registry-generation event ABI
var EventsABI = mustParseABI(eventsABIJSON)

// LegacyEventsABI holds the legacy signatures that diverge from EventsABI
var LegacyEventsABI = mustParseABI(legacyEventsABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("chain: invalid event ABI: " + err.Error())
	}
	return parsed
}

package projection

import (
	"github.com/google/uuid"
	"github.com/silens-indexer/internal/chain"
)

// idNamespace seeds the UUIDv5 derivation for synthetic row ids. Fixed
// forever: changing it would re-key every append-only row on replay.
var idNamespace = uuid.MustParse("6c9f38e1-52a4-4d2e-9b7a-8f0d3c1e5a42")

// EventID derives the deterministic id for a row produced by an event. The
// chain position (block, txIndex, logIndex) is unique per log, so a
// redelivered event maps to the same id and its insert becomes a no-op.
func EventID(e *chain.Event) string {
	return uuid.NewSHA1(idNamespace, []byte(e.Position())).String()
}

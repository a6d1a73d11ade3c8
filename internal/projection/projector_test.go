package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/types"
)

func newEvent(kind chain.EventKind, block uint64, txIndex, logIndex uint, payload any) *chain.Event {
	return &chain.Event{
		Kind:        kind,
		Contract:    "0xcontract",
		TxHash:      "0xtx",
		BlockNumber: block,
		TxIndex:     txIndex,
		LogIndex:    logIndex,
		BlockTime:   1700000000 + block,
		Payload:     payload,
	}
}

func TestEventIDDeterministic(t *testing.T) {
	a := newEvent(chain.KindReviewSubmitted, 100, 2, 7, nil)
	b := newEvent(chain.KindReviewSubmitted, 100, 2, 7, nil)
	c := newEvent(chain.KindReviewSubmitted, 100, 2, 8, nil)

	assert.Equal(t, EventID(a), EventID(b))
	assert.NotEqual(t, EventID(a), EventID(c))
}

func TestModelSubmitted(t *testing.T) {
	s := newMemStore()

	err := Dispatch(context.Background(), s, newEvent(chain.KindModelSubmitted, 10, 0, 0, &chain.ModelSubmitted{
		ModelID:        1,
		Submitter:      "0xaaa",
		IPFSHash:       "QmModel",
		Status:         types.ModelUnderReview,
		SubmissionTime: 1700000010,
		ReviewEndTime:  1700086410,
	}))
	require.NoError(t, err)

	m := s.modelsByID[1]
	require.NotNil(t, m)
	assert.Equal(t, "0xaaa", m.Submitter)
	assert.Equal(t, "QmModel", m.IPFSHash)
	assert.Equal(t, types.ModelUnderReview, m.Status)

	us := s.userStats["0xaaa"]
	require.NotNil(t, us)
	assert.Equal(t, int64(1), us.TotalModels)

	require.NotNil(t, s.globalStats)
	assert.Equal(t, int64(1), s.globalStats.TotalModels)
	assert.Equal(t, int64(1), s.globalStats.TotalUsers)
}

func TestReviewAggregates(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindReviewSubmitted, 20, 0, 0, &chain.ReviewSubmitted{
		ModelID: 1, Reviewer: "0xbbb", IPFSHash: "QmR1", Severity: 3, Timestamp: 1700000020,
	})))
	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindReviewSubmitted, 21, 0, 0, &chain.ReviewSubmitted{
		ModelID: 1, Reviewer: "0xccc", IPFSHash: "QmR2", Severity: 5, Timestamp: 1700000021,
	})))

	ms := s.modelStats[1]
	require.NotNil(t, ms)
	assert.Equal(t, int64(2), ms.TotalReviews)
	assert.InDelta(t, 4.0, ms.AverageSeverity, 1e-9)
	assert.Equal(t, int64(1), ms.CriticalReviewsCount)
	assert.Equal(t, int64(2), ms.HighSeverityReviewsCount)
	assert.Equal(t, int64(2), ms.MediumSeverityReviewsCount)
	assert.Equal(t, int64(2), ms.LowSeverityReviewsCount)

	assert.Len(t, s.reviews, 2)
	assert.Equal(t, int64(2), s.globalStats.TotalReviews)
	assert.Equal(t, int64(2), s.globalStats.TotalUsers)
}

func TestReviewSeverityZero(t *testing.T) {
	s := newMemStore()

	require.NoError(t, Dispatch(context.Background(), s, newEvent(chain.KindReviewSubmitted, 22, 0, 0, &chain.ReviewSubmitted{
		ModelID: 2, Reviewer: "0xbbb", IPFSHash: "QmR3", Severity: 0, Timestamp: 1700000022,
	})))

	ms := s.modelStats[2]
	require.NotNil(t, ms)
	assert.Equal(t, int64(1), ms.TotalReviews)
	assert.Zero(t, ms.AverageSeverity)
	assert.Zero(t, ms.LowSeverityReviewsCount)
	assert.Zero(t, ms.CriticalReviewsCount)
}

func TestVoteTotalsOverwritten(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindVoteCast, 30, 0, 0, &chain.VoteCast{
		ProposalID: 7, Voter: "0xaaa", Support: true, ForVotes: 10, AgainstVotes: 3, Timestamp: 1700000030,
	})))
	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindVoteCast, 31, 0, 0, &chain.VoteCast{
		ProposalID: 7, Voter: "0xbbb", Support: true, ForVotes: 11, AgainstVotes: 3, Timestamp: 1700000031,
	})))

	ps := s.proposalStats[7]
	require.NotNil(t, ps)
	assert.Equal(t, int64(2), ps.TotalVotes)
	assert.Equal(t, int64(11), ps.ForVotes)
	assert.Equal(t, int64(3), ps.AgainstVotes)

	assert.Len(t, s.votes, 2)
	assert.Equal(t, int64(1), s.userStats["0xaaa"].TotalVotes)
	assert.Equal(t, int64(1), s.userStats["0xbbb"].TotalVotes)
}

func TestProposalLifecycle(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindProposalCreated, 40, 0, 0, &chain.ProposalCreated{
		ProposalID:   7,
		ModelID:      1,
		ProposalType: types.ProposalFlag,
		Status:       types.ProposalActive,
		StartTime:    1700000040,
		EndTime:      1700086440,
	})))

	p := s.proposals[7]
	require.NotNil(t, p)
	assert.Equal(t, types.ProposalActive, p.Status)
	assert.False(t, p.Executed)
	// No proposer on the event, so no user counters move.
	assert.Empty(t, s.userStats)
	assert.Equal(t, int64(1), s.modelStats[1].ProposalCount)
	assert.Equal(t, int64(1), s.globalStats.TotalProposals)
	assert.Zero(t, s.globalStats.TotalUsers)

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindVoteCast, 41, 0, 0, &chain.VoteCast{
		ProposalID: 7, Voter: "0xaaa", Support: true, ForVotes: 11, AgainstVotes: 3, Timestamp: 1700000041,
	})))
	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindVoteCast, 42, 0, 0, &chain.VoteCast{
		ProposalID: 7, Voter: "0xbbb", Support: false, ForVotes: 11, AgainstVotes: 4, Timestamp: 1700000042,
	})))

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindProposalExecuted, 50, 0, 0, &chain.ProposalExecuted{
		ProposalID:            7,
		Result:                types.ProposalPassed,
		ForVotes:              11,
		AgainstVotes:          4,
		TotalGovernanceVoters: 20,
		Quorum:                5,
		QuorumMet:             true,
		MajorityWon:           true,
	})))

	p = s.proposals[7]
	assert.True(t, p.Executed)
	assert.Equal(t, types.ProposalPassed, p.Status)
	require.NotNil(t, p.QuorumMet)
	assert.True(t, *p.QuorumMet)
	require.NotNil(t, p.ExecutionTxHash)

	ps := s.proposalStats[7]
	assert.Equal(t, int64(2), ps.TotalVotes)
	assert.Equal(t, int64(11), ps.ForVotes)
	assert.Equal(t, int64(4), ps.AgainstVotes)
	assert.InDelta(t, 0.1, ps.ParticipationRate, 1e-9)
	assert.True(t, ps.QuorumMet)
	assert.True(t, ps.MajorityWon)
	require.NotNil(t, ps.ExecutionTime)
}

func TestProposalExecutionZeroVoters(t *testing.T) {
	s := newMemStore()

	require.NoError(t, Dispatch(context.Background(), s, newEvent(chain.KindProposalCreated, 50, 0, 0, &chain.ProposalCreated{
		ProposalID:   9,
		ModelID:      1,
		ProposalType: types.ProposalFlag,
		Status:       types.ProposalActive,
		StartTime:    1700000050,
		EndTime:      1700086450,
	})))

	require.NoError(t, Dispatch(context.Background(), s, newEvent(chain.KindProposalExecuted, 51, 0, 0, &chain.ProposalExecuted{
		ProposalID:            9,
		Result:                types.ProposalFailed,
		TotalGovernanceVoters: 0,
	})))

	ps := s.proposalStats[9]
	require.NotNil(t, ps)
	assert.Zero(t, ps.ParticipationRate)
}

func TestReputationUpdated(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindReputationUpdated, 60, 0, 0, &chain.ReputationUpdated{
		User: "0xaaa", NewScore: 120, PointsAdded: 20, Reason: "review accepted",
	})))
	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindReputationUpdated, 61, 0, 0, &chain.ReputationUpdated{
		User: "0xaaa", NewScore: 95, PointsAdded: -25, Reason: "penalty",
	})))

	u := s.users["0xaaa"]
	require.NotNil(t, u)
	assert.Equal(t, int64(95), u.ReputationScore)

	us := s.userStats["0xaaa"]
	require.NotNil(t, us)
	assert.Equal(t, int64(95), us.ReputationScore)
	assert.Zero(t, us.TotalReviews)

	assert.Len(t, s.repEntries, 2)
	// Reputation updates never move the global activity counters.
	assert.Zero(t, s.globalStats.TotalReviews)
	assert.Equal(t, int64(1), s.globalStats.TotalUsers)
}

func TestBadgeAwarded(t *testing.T) {
	s := newMemStore()

	require.NoError(t, Dispatch(context.Background(), s, newEvent(chain.KindBadgeAwarded, 62, 0, 0, &chain.BadgeAwarded{
		User: "0xaaa", BadgeID: 3, BadgeName: "Top Reviewer", Timestamp: 1700000062,
	})))

	assert.Len(t, s.badges, 1)
	assert.Equal(t, int64(1), s.userStats["0xaaa"].TotalBadges)
	assert.Equal(t, int64(1), s.globalStats.TotalBadges)
	assert.Equal(t, int64(1), s.globalStats.TotalUsers)
}

func TestIdentityAndPlatforms(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindIdentityMinted, 70, 0, 0, &chain.IdentityMinted{
		Owner: "0xddd", TokenID: 42, URI: "ipfs://QmId", Timestamp: 1700000070,
	})))

	id := s.identities[42]
	require.NotNil(t, id)
	assert.Equal(t, "0xddd", id.Owner)

	u := s.users["0xddd"]
	require.NotNil(t, u)
	require.NotNil(t, u.IdentityTokenID)
	assert.Equal(t, types.Quantity(42), *u.IdentityTokenID)
	assert.Equal(t, int64(1), s.globalStats.TotalIdentities)
	assert.Equal(t, int64(1), s.globalStats.TotalUsers)

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindPlatformVerified, 71, 0, 0, &chain.PlatformVerified{
		TokenID: 42, Platform: "twitter", Username: "alice", Owner: "0xddd", Timestamp: 1700000071,
	})))
	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindPlatformVerified, 72, 0, 0, &chain.PlatformVerified{
		TokenID: 42, Platform: "github", Username: "alice2", Owner: "0xddd", Timestamp: 1700000072,
	})))

	assert.Equal(t, "twitter:alice,github:alice2", s.users["0xddd"].VerifiedPlatforms)
	assert.Equal(t, int64(2), s.userStats["0xddd"].VerifiedPlatformsCount)
	assert.Equal(t, int64(2), s.globalStats.TotalPlatformVerifications)
	// Identity mint already marked the address as seen.
	assert.Equal(t, int64(1), s.globalStats.TotalUsers)
	assert.Len(t, s.verifications, 2)
}

func TestModelStatusUpdated(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindModelSubmitted, 10, 0, 0, &chain.ModelSubmitted{
		ModelID: 1, Submitter: "0xaaa", IPFSHash: "QmModel", Status: types.ModelUnderReview,
	})))
	require.NoError(t, Dispatch(ctx, s, newEvent(chain.KindModelStatusUpdated, 11, 0, 0, &chain.ModelStatusUpdated{
		ModelID: 1, NewStatus: types.ModelFlagged,
	})))

	assert.Equal(t, types.ModelFlagged, s.modelsByID[1].Status)
	// Status updates never touch counters.
	assert.Equal(t, int64(1), s.globalStats.TotalModels)
}

// Update-only events must find their row; the store never invents one, so the
// error bubbles up to the worker instead of the event vanishing.
func TestUpdateOnlyEventsRequireExistingRow(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	err := Dispatch(ctx, s, newEvent(chain.KindModelStatusUpdated, 11, 0, 0, &chain.ModelStatusUpdated{
		ModelID: 99, NewStatus: types.ModelFlagged,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")

	err = Dispatch(ctx, s, newEvent(chain.KindProposalExecuted, 12, 0, 0, &chain.ProposalExecuted{
		ProposalID: 99, Result: types.ProposalPassed,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown proposal")
}

// Replaying an event leaves the append-only tables unchanged but moves the
// aggregate counters again; exactly-once delivery is the worker's job.
func TestReplayAppendOnlyButCountersMove(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	e := newEvent(chain.KindReviewSubmitted, 80, 1, 2, &chain.ReviewSubmitted{
		ModelID: 1, Reviewer: "0xbbb", IPFSHash: "QmR", Severity: 4, Timestamp: 1700000080,
	})
	require.NoError(t, Dispatch(ctx, s, e))
	require.NoError(t, Dispatch(ctx, s, e))

	assert.Len(t, s.reviews, 1)
	assert.Equal(t, int64(2), s.modelStats[1].TotalReviews)
	assert.Equal(t, int64(2), s.userStats["0xbbb"].TotalReviews)
}

func TestIdentitiesRootSetIsNoop(t *testing.T) {
	s := newMemStore()

	err := Dispatch(context.Background(), s, newEvent(chain.KindIdentitiesRootSet, 90, 0, 0, &chain.IdentitiesRootSet{ID: 1}))
	require.NoError(t, err)

	assert.Empty(t, s.users)
	assert.Nil(t, s.globalStats)
}

func TestUnknownPayloadErrors(t *testing.T) {
	s := newMemStore()

	err := Dispatch(context.Background(), s, newEvent("Bogus", 91, 0, 0, struct{}{}))
	assert.Error(t, err)
}

func TestGlobalStatsMatchScriptedSequence(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	events := []*chain.Event{
		newEvent(chain.KindModelSubmitted, 100, 0, 0, &chain.ModelSubmitted{ModelID: 1, Submitter: "0xaaa", IPFSHash: "Qm1"}),
		newEvent(chain.KindModelSubmitted, 100, 0, 1, &chain.ModelSubmitted{ModelID: 2, Submitter: "0xbbb", IPFSHash: "Qm2"}),
		newEvent(chain.KindReviewSubmitted, 101, 0, 0, &chain.ReviewSubmitted{ModelID: 1, Reviewer: "0xccc", Severity: 2}),
		newEvent(chain.KindReviewSubmitted, 101, 0, 1, &chain.ReviewSubmitted{ModelID: 1, Reviewer: "0xaaa", Severity: 4}),
		newEvent(chain.KindReviewSubmitted, 101, 1, 0, &chain.ReviewSubmitted{ModelID: 2, Reviewer: "0xccc", Severity: 1}),
		newEvent(chain.KindProposalCreated, 102, 0, 0, &chain.ProposalCreated{ProposalID: 1, ModelID: 1, Status: types.ProposalActive}),
		newEvent(chain.KindVoteCast, 103, 0, 0, &chain.VoteCast{ProposalID: 1, Voter: "0xbbb", Support: true, ForVotes: 1}),
		newEvent(chain.KindVoteCast, 103, 0, 1, &chain.VoteCast{ProposalID: 1, Voter: "0xddd", Support: false, ForVotes: 1, AgainstVotes: 1}),
	}
	for _, e := range events {
		require.NoError(t, Dispatch(ctx, s, e))
	}

	g := s.globalStats
	require.NotNil(t, g)
	assert.Equal(t, int64(2), g.TotalModels)
	assert.Equal(t, int64(3), g.TotalReviews)
	assert.Equal(t, int64(1), g.TotalProposals)
	assert.Equal(t, int64(2), g.TotalVotes)
	// 0xaaa, 0xbbb, 0xccc, 0xddd each seen once.
	assert.Equal(t, int64(4), g.TotalUsers)
}

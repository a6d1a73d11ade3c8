package projection

import (
	"context"
	"fmt"

	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/types"
)

// memStore mirrors the SQL merge semantics in memory so handler logic can be
// exercised without a database.
type memStore struct {
	modelsByID    map[types.Quantity]*models.Model
	reviews       map[string]*models.Review
	proposals     map[types.Quantity]*models.Proposal
	votes         map[string]*models.Vote
	badges        map[string]*models.Badge
	identities    map[types.Quantity]*models.Identity
	verifications map[string]*models.PlatformVerification
	repEntries    map[string]*models.ReputationHistoryEntry
	users         map[string]*models.User
	userStats     map[string]*models.UserStats
	modelStats    map[types.Quantity]*models.ModelStats
	proposalStats map[types.Quantity]*models.ProposalStats
	globalStats   *models.GlobalStats
}

func newMemStore() *memStore {
	return &memStore{
		modelsByID:    make(map[types.Quantity]*models.Model),
		reviews:       make(map[string]*models.Review),
		proposals:     make(map[types.Quantity]*models.Proposal),
		votes:         make(map[string]*models.Vote),
		badges:        make(map[string]*models.Badge),
		identities:    make(map[types.Quantity]*models.Identity),
		verifications: make(map[string]*models.PlatformVerification),
		repEntries:    make(map[string]*models.ReputationHistoryEntry),
		users:         make(map[string]*models.User),
		userStats:     make(map[string]*models.UserStats),
		modelStats:    make(map[types.Quantity]*models.ModelStats),
		proposalStats: make(map[types.Quantity]*models.ProposalStats),
	}
}

func (m *memStore) InsertModel(_ context.Context, mod *models.Model) error {
	if _, ok := m.modelsByID[mod.ID]; !ok {
		cp := *mod
		m.modelsByID[mod.ID] = &cp
	}
	return nil
}

func (m *memStore) InsertReview(_ context.Context, r *models.Review) error {
	if _, ok := m.reviews[r.ID]; !ok {
		cp := *r
		m.reviews[r.ID] = &cp
	}
	return nil
}

func (m *memStore) InsertProposal(_ context.Context, p *models.Proposal) error {
	if _, ok := m.proposals[p.ID]; !ok {
		cp := *p
		m.proposals[p.ID] = &cp
	}
	return nil
}

func (m *memStore) InsertVote(_ context.Context, v *models.Vote) error {
	if _, ok := m.votes[v.ID]; !ok {
		cp := *v
		m.votes[v.ID] = &cp
	}
	return nil
}

func (m *memStore) InsertBadge(_ context.Context, b *models.Badge) error {
	if _, ok := m.badges[b.ID]; !ok {
		cp := *b
		m.badges[b.ID] = &cp
	}
	return nil
}

func (m *memStore) InsertIdentity(_ context.Context, i *models.Identity) error {
	if _, ok := m.identities[i.TokenID]; !ok {
		cp := *i
		m.identities[i.TokenID] = &cp
	}
	return nil
}

func (m *memStore) InsertPlatformVerification(_ context.Context, v *models.PlatformVerification) error {
	if _, ok := m.verifications[v.ID]; !ok {
		cp := *v
		m.verifications[v.ID] = &cp
	}
	return nil
}

func (m *memStore) InsertReputationEntry(_ context.Context, e *models.ReputationHistoryEntry) error {
	if _, ok := m.repEntries[e.ID]; !ok {
		cp := *e
		m.repEntries[e.ID] = &cp
	}
	return nil
}

func (m *memStore) SetModelStatus(_ context.Context, id types.Quantity, status types.ModelStatus, updatedAt types.Quantity) error {
	mod, ok := m.modelsByID[id]
	if !ok {
		return fmt.Errorf("status update for unknown model %d", id)
	}
	mod.Status = status
	mod.UpdatedAt = updatedAt
	return nil
}

func (m *memStore) ApplyProposalExecution(_ context.Context, ex *models.ProposalExecution) error {
	p, ok := m.proposals[ex.ProposalID]
	if !ok {
		return fmt.Errorf("execution for unknown proposal %d", ex.ProposalID)
	}
	p.Status = ex.Result
	p.Executed = true
	voters, quorum := ex.TotalGovernanceVoters, ex.Quorum
	quorumMet, majorityWon := ex.QuorumMet, ex.MajorityWon
	p.TotalGovernanceVoters = &voters
	p.Quorum = &quorum
	p.QuorumMet = &quorumMet
	p.MajorityWon = &majorityWon
	p.UpdatedAt = ex.Timestamp
	hash, block := ex.TxHash, ex.BlockNumber
	p.ExecutionTxHash = &hash
	p.ExecutionBlockNumber = &block
	return nil
}

func (m *memStore) ensureUser(address string, t storage.Touch) *models.User {
	u, ok := m.users[address]
	if !ok {
		u = &models.User{
			Address:                  address,
			CreatedAt:                t.Timestamp,
			UpdatedAt:                t.Timestamp,
			FirstActivityTxHash:      t.TxHash,
			FirstActivityBlockNumber: t.BlockNumber,
			LastActivityTxHash:       t.TxHash,
			LastActivityBlockNumber:  t.BlockNumber,
		}
		m.users[address] = u
		return u
	}
	u.UpdatedAt = t.Timestamp
	u.LastActivityTxHash = t.TxHash
	u.LastActivityBlockNumber = t.BlockNumber
	return u
}

func (m *memStore) UpsertUserReputation(_ context.Context, address string, newScore int64, t storage.Touch) error {
	m.ensureUser(address, t).ReputationScore = newScore
	return nil
}

func (m *memStore) UpsertUserIdentity(_ context.Context, address string, tokenID types.Quantity, t storage.Touch) error {
	m.ensureUser(address, t).IdentityTokenID = &tokenID
	return nil
}

func (m *memStore) AppendUserPlatform(_ context.Context, address, entry string, t storage.Touch) error {
	u := m.ensureUser(address, t)
	if u.VerifiedPlatforms == "" {
		u.VerifiedPlatforms = entry
	} else {
		u.VerifiedPlatforms += "," + entry
	}
	return nil
}

func (m *memStore) MergeUserStats(_ context.Context, address string, d models.UserStatsDelta, at types.Quantity) (bool, error) {
	s, ok := m.userStats[address]
	if !ok {
		s = &models.UserStats{Address: address}
		m.userStats[address] = s
	}
	s.TotalModels += d.Models
	s.TotalReviews += d.Reviews
	s.TotalProposals += d.Proposals
	s.TotalVotes += d.Votes
	s.TotalBadges += d.Badges
	s.VerifiedPlatformsCount += d.VerifiedPlatforms
	if d.ReputationScore != nil {
		s.ReputationScore = *d.ReputationScore
	}
	s.LastActivityAt = at
	return !ok, nil
}

func (m *memStore) MergeReviewStats(_ context.Context, modelID types.Quantity, severity int16, at types.Quantity) error {
	bucket := func(threshold int16) int64 {
		if severity >= threshold {
			return 1
		}
		return 0
	}

	s, ok := m.modelStats[modelID]
	if !ok {
		s = &models.ModelStats{ModelID: modelID}
		m.modelStats[modelID] = s
	}
	s.AverageSeverity = (s.AverageSeverity*float64(s.TotalReviews) + float64(severity)) / float64(s.TotalReviews+1)
	s.TotalReviews++
	s.CriticalReviewsCount += bucket(types.SeverityCriticalThreshold)
	s.HighSeverityReviewsCount += bucket(types.SeverityHighThreshold)
	s.MediumSeverityReviewsCount += bucket(types.SeverityMediumThreshold)
	s.LowSeverityReviewsCount += bucket(types.SeverityLowThreshold)
	ts := at
	s.LastReviewAt = &ts
	return nil
}

func (m *memStore) MergeProposalActivity(_ context.Context, modelID types.Quantity, at types.Quantity) error {
	s, ok := m.modelStats[modelID]
	if !ok {
		s = &models.ModelStats{ModelID: modelID}
		m.modelStats[modelID] = s
	}
	s.ProposalCount++
	ts := at
	s.LastProposalAt = &ts
	return nil
}

func (m *memStore) MergeVoteStats(_ context.Context, proposalID types.Quantity, forVotes, againstVotes int64) error {
	s, ok := m.proposalStats[proposalID]
	if !ok {
		s = &models.ProposalStats{ProposalID: proposalID}
		m.proposalStats[proposalID] = s
	}
	s.TotalVotes++
	s.ForVotes = forVotes
	s.AgainstVotes = againstVotes
	return nil
}

func (m *memStore) FinalizeProposalStats(_ context.Context, ex *models.ProposalExecution) error {
	s, ok := m.proposalStats[ex.ProposalID]
	if !ok {
		s = &models.ProposalStats{ProposalID: ex.ProposalID}
		m.proposalStats[ex.ProposalID] = s
	}
	s.ForVotes = ex.ForVotes
	s.AgainstVotes = ex.AgainstVotes
	s.QuorumMet = ex.QuorumMet
	s.MajorityWon = ex.MajorityWon
	ts := ex.Timestamp
	s.ExecutionTime = &ts
	if ex.TotalGovernanceVoters > 0 {
		s.ParticipationRate = float64(s.TotalVotes) / float64(ex.TotalGovernanceVoters)
	} else {
		s.ParticipationRate = 0
	}
	return nil
}

func (m *memStore) MergeGlobalStats(_ context.Context, d models.GlobalStatsDelta, at types.Quantity) error {
	if m.globalStats == nil {
		m.globalStats = &models.GlobalStats{ID: models.GlobalStatsID}
	}
	g := m.globalStats
	g.TotalModels += d.Models
	g.TotalReviews += d.Reviews
	g.TotalProposals += d.Proposals
	g.TotalVotes += d.Votes
	g.TotalUsers += d.Users
	g.TotalIdentities += d.Identities
	g.TotalBadges += d.Badges
	g.TotalPlatformVerifications += d.PlatformVerifications
	g.LastUpdatedAt = at
	return nil
}

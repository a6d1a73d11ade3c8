package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
)

// VoteRepository handles vote persistence. Votes are append-only.
type VoteRepository struct {
	q Querier
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(q Querier) *VoteRepository {
	return &VoteRepository{q: q}
}

const voteColumns = `id, proposal_id, voter, support, for_votes, against_votes,
	timestamp, created_at, creation_tx_hash, creation_block_number`

// Insert creates a vote row, ignoring replays via the deterministic id
func (r *VoteRepository) Insert(ctx context.Context, v *models.Vote) error {
	query := `
		INSERT INTO silens_votes (` + voteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		v.ID,
		v.ProposalID,
		v.Voter,
		v.Support,
		v.ForVotes,
		v.AgainstVotes,
		v.Timestamp,
		v.CreatedAt,
		v.CreationTxHash,
		v.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// VoteFilter narrows List and Count
type VoteFilter struct {
	ProposalID *uint64
	Voter      string
	Support    *bool
}

func (f VoteFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.ProposalID != nil {
		args = append(args, *f.ProposalID)
		clause += " AND proposal_id = $" + strconv.Itoa(len(args))
	}
	if f.Voter != "" {
		args = append(args, f.Voter)
		clause += " AND voter = $" + strconv.Itoa(len(args))
	}
	if f.Support != nil {
		args = append(args, *f.Support)
		clause += " AND support = $" + strconv.Itoa(len(args))
	}
	return clause, args
}

// List retrieves votes matching the filter, newest first
func (r *VoteRepository) List(ctx context.Context, filter VoteFilter, limit, offset int) ([]*models.Vote, error) {
	clause, args := filter.where()
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+voteColumns+`
		FROM silens_votes
		WHERE 1=1%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var out []*models.Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of votes matching the filter
func (r *VoteRepository) Count(ctx context.Context, filter VoteFilter) (int64, error) {
	clause, args := filter.where()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM silens_votes WHERE 1=1%s`, clause)

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func scanVote(row pgx.Row) (*models.Vote, error) {
	var v models.Vote
	err := row.Scan(
		&v.ID,
		&v.ProposalID,
		&v.Voter,
		&v.Support,
		&v.ForVotes,
		&v.AgainstVotes,
		&v.Timestamp,
		&v.CreatedAt,
		&v.CreationTxHash,
		&v.CreationBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

// ProposalRepository handles proposal persistence
type ProposalRepository struct {
	q Querier
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(q Querier) *ProposalRepository {
	return &ProposalRepository{q: q}
}

const proposalColumns = `id, model_id, proposal_type, status, for_votes, against_votes,
	start_time, end_time, executed, total_governance_voters, quorum, quorum_met,
	majority_won, created_at, updated_at, creation_tx_hash, creation_block_number,
	execution_tx_hash, execution_block_number`

// Insert creates a proposal row, ignoring replays via the primary key
func (r *ProposalRepository) Insert(ctx context.Context, p *models.Proposal) error {
	query := `
		INSERT INTO silens_proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		p.ID,
		p.ModelID,
		p.ProposalType,
		p.Status,
		p.ForVotes,
		p.AgainstVotes,
		p.StartTime,
		p.EndTime,
		p.Executed,
		p.TotalGovernanceVoters,
		p.Quorum,
		p.QuorumMet,
		p.MajorityWon,
		p.CreatedAt,
		p.UpdatedAt,
		p.CreationTxHash,
		p.CreationBlockNumber,
		p.ExecutionTxHash,
		p.ExecutionBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

// ApplyExecution records a proposal's execution outcome. The proposal row
// must already exist; an execution for an unknown proposal is an error so the
// worker's retry-then-halt path engages instead of the outcome vanishing.
func (r *ProposalRepository) ApplyExecution(ctx context.Context, ex *models.ProposalExecution) error {
	query := `
		UPDATE silens_proposals
		SET status = $2,
		    executed = TRUE,
		    total_governance_voters = $3,
		    quorum = $4,
		    quorum_met = $5,
		    majority_won = $6,
		    updated_at = $7,
		    execution_tx_hash = $8,
		    execution_block_number = $9
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		ex.ProposalID,
		ex.Result,
		ex.TotalGovernanceVoters,
		ex.Quorum,
		ex.QuorumMet,
		ex.MajorityWon,
		ex.Timestamp,
		ex.TxHash,
		ex.BlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to apply proposal execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("execution for unknown proposal %d", ex.ProposalID)
	}
	return nil
}

// GetByID retrieves a proposal by id, returning nil when it does not exist
func (r *ProposalRepository) GetByID(ctx context.Context, id types.Quantity) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM silens_proposals WHERE id = $1`

	p, err := scanProposal(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return p, nil
}

// ProposalFilter narrows List and Count
type ProposalFilter struct {
	ModelID      *uint64
	Status       *types.ProposalStatus
	ProposalType *types.ProposalType
	Executed     *bool
}

func (f ProposalFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.ModelID != nil {
		args = append(args, *f.ModelID)
		clause += " AND model_id = $" + strconv.Itoa(len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		clause += " AND status = $" + strconv.Itoa(len(args))
	}
	if f.ProposalType != nil {
		args = append(args, *f.ProposalType)
		clause += " AND proposal_type = $" + strconv.Itoa(len(args))
	}
	if f.Executed != nil {
		args = append(args, *f.Executed)
		clause += " AND executed = $" + strconv.Itoa(len(args))
	}
	return clause, args
}

// List retrieves proposals matching the filter, newest first
func (r *ProposalRepository) List(ctx context.Context, filter ProposalFilter, limit, offset int) ([]*models.Proposal, error) {
	clause, args := filter.where()
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+proposalColumns+`
		FROM silens_proposals
		WHERE 1=1%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var out []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of proposals matching the filter
func (r *ProposalRepository) Count(ctx context.Context, filter ProposalFilter) (int64, error) {
	clause, args := filter.where()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM silens_proposals WHERE 1=1%s`, clause)

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count proposals: %w", err)
	}
	return count, nil
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(
		&p.ID,
		&p.ModelID,
		&p.ProposalType,
		&p.Status,
		&p.ForVotes,
		&p.AgainstVotes,
		&p.StartTime,
		&p.EndTime,
		&p.Executed,
		&p.TotalGovernanceVoters,
		&p.Quorum,
		&p.QuorumMet,
		&p.MajorityWon,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CreationTxHash,
		&p.CreationBlockNumber,
		&p.ExecutionTxHash,
		&p.ExecutionBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

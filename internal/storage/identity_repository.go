package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

// IdentityRepository handles identity token and platform verification
// persistence
type IdentityRepository struct {
	q Querier
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(q Querier) *IdentityRepository {
	return &IdentityRepository{q: q}
}

const identityColumns = `token_id, owner, uri, minted_at,
	created_at, updated_at, creation_tx_hash, creation_block_number`

const verificationColumns = `id, token_id, platform, username, owner, verified_at,
	created_at, updated_at, creation_tx_hash, creation_block_number`

// Insert creates an identity row, ignoring replays via the token id
func (r *IdentityRepository) Insert(ctx context.Context, id *models.Identity) error {
	query := `
		INSERT INTO silens_identities (` + identityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (token_id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		id.TokenID,
		id.Owner,
		id.URI,
		id.MintedAt,
		id.CreatedAt,
		id.UpdatedAt,
		id.CreationTxHash,
		id.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}
	return nil
}

// GetByTokenID retrieves an identity, returning nil when it does not exist
func (r *IdentityRepository) GetByTokenID(ctx context.Context, tokenID types.Quantity) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM silens_identities WHERE token_id = $1`

	id, err := scanIdentity(r.q.QueryRow(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return id, nil
}

// GetByOwner retrieves the identity owned by an address, nil when none
func (r *IdentityRepository) GetByOwner(ctx context.Context, owner string) (*models.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM silens_identities
		WHERE owner = $1
		ORDER BY minted_at DESC
		LIMIT 1
	`

	id, err := scanIdentity(r.q.QueryRow(ctx, query, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity by owner: %w", err)
	}
	return id, nil
}

// InsertVerification creates a platform verification row, ignoring replays
func (r *IdentityRepository) InsertVerification(ctx context.Context, v *models.PlatformVerification) error {
	query := `
		INSERT INTO silens_platform_verifications (` + verificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		v.ID,
		v.TokenID,
		v.Platform,
		v.Username,
		v.Owner,
		v.VerifiedAt,
		v.CreatedAt,
		v.UpdatedAt,
		v.CreationTxHash,
		v.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert platform verification: %w", err)
	}
	return nil
}

// ListVerificationsByOwner retrieves an address's verifications in event order
func (r *IdentityRepository) ListVerificationsByOwner(ctx context.Context, owner string) ([]*models.PlatformVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM silens_platform_verifications
		WHERE owner = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform verifications: %w", err)
	}
	defer rows.Close()

	var out []*models.PlatformVerification
	for rows.Next() {
		var v models.PlatformVerification
		err := rows.Scan(
			&v.ID,
			&v.TokenID,
			&v.Platform,
			&v.Username,
			&v.Owner,
			&v.VerifiedAt,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.CreationTxHash,
			&v.CreationBlockNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan platform verification: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var id models.Identity
	err := row.Scan(
		&id.TokenID,
		&id.Owner,
		&id.URI,
		&id.MintedAt,
		&id.CreatedAt,
		&id.UpdatedAt,
		&id.CreationTxHash,
		&id.CreationBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

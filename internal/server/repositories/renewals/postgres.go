// Package renewals is the PostgreSQL backend of the renewal registry.
// It satisfies revocation.Store.
package renewals

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

// PostgresRepository stores one row per honoured renewal id over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add records id as valid until expiresAt; an existing row is kept.
func (r *PostgresRepository) Add(ctx context.Context, id string, expiresAt time.Time) error {
	query := `
		INSERT INTO renewal_credentials (id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, id, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Exists reports whether id is present and not expired.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM renewal_credentials
			WHERE id = $1 AND expires_at > now()
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// Remove deletes id; deleting an absent id is not an error.
func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	query := `
		DELETE FROM renewal_credentials
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Purge deletes every expired row.
func (r *PostgresRepository) Purge(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM renewal_credentials
		WHERE expires_at <= now()
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
)

type PostgresPermissionRepository struct {
	db database.DBTX
}

func NewPostgresPermissionRepository(db database.DBTX) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{db: db}
}

// Grant is idempotent: a repeated grant returns the id of the existing row.
// ErrNotFound is returned when the ledger or user does not exist.
func (r *PostgresPermissionRepository) Grant(ctx context.Context, ledgerID, userID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ledger_permissions (id, ledger_id, user_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (ledger_id, user_id) DO UPDATE SET ledger_id = EXCLUDED.ledger_id
		 RETURNING id`,
		uuid.NewString(), ledgerID, userID,
	).Scan(&id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to grant ledger permission: %w", err)
	}
	return id, nil
}

func (r *PostgresPermissionRepository) HasGrant(ctx context.Context, ledgerID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM ledger_permissions WHERE ledger_id = $1 AND user_id = $2)",
		ledgerID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger permission: %w", err)
	}
	return exists, nil
}

func (r *PostgresPermissionRepository) Revoke(ctx context.Context, ledgerID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM ledger_permissions WHERE ledger_id = $1 AND user_id = $2",
		ledgerID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke ledger permission: %w", err)
	}
	return nil
}

func (r *PostgresPermissionRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM ledger_permissions WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to revoke ledger permissions: %w", err)
	}
	return nil
}

func (r *PostgresPermissionRepository) FindLedgersForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT ledger_id FROM ledger_permissions WHERE user_id = $1 ORDER BY created_at, ledger_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers for user: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ledger id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresPermissionRepository) FindGrantsForLedger(ctx context.Context, ledgerID string) ([]models.LedgerPermission, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, ledger_id, user_id, created_at FROM ledger_permissions WHERE ledger_id = $1 ORDER BY created_at, id",
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger grants: %w", err)
	}
	defer rows.Close()

	grants := []models.LedgerPermission{}
	for rows.Next() {
		var g models.LedgerPermission
		if err := rows.Scan(&g.ID, &g.LedgerID, &g.UserID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

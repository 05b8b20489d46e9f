package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
)

type PostgresLedgerRepository struct {
	db database.DBTX
}

func NewPostgresLedgerRepository(db database.DBTX) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

func (r *PostgresLedgerRepository) Create(ctx context.Context, l *models.Ledger) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ledgers (id, name, default_currency)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		l.ID, l.Name, l.DefaultCurrency,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	return nil
}

func (r *PostgresLedgerRepository) FindByID(ctx context.Context, id string) (*models.Ledger, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var l models.Ledger
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, default_currency, created_at, updated_at FROM ledgers WHERE id = $1",
		id,
	).Scan(&l.ID, &l.Name, &l.DefaultCurrency, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger: %w", err)
	}
	return &l, nil
}

func (r *PostgresLedgerRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Ledger, error) {
	ledgers := []models.Ledger{}
	if len(ids) == 0 {
		return ledgers, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, default_currency, created_at, updated_at FROM ledgers WHERE id = ANY($1) ORDER BY created_at, id",
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Ledger
		if err := rows.Scan(&l.ID, &l.Name, &l.DefaultCurrency, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

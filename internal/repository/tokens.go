package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
)

type PostgresTokenRepository struct {
	db database.DBTX
}

func NewPostgresTokenRepository(db database.DBTX) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

func (r *PostgresTokenRepository) Record(ctx context.Context, t *models.Token) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tokens (jwt_id, user_id, issued, subject) VALUES ($1, $2, $3, $4)",
		t.JwtID, t.UserID, t.Issued, t.Subject,
	)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("failed to record token: %w", err)
	}
	return nil
}

func (r *PostgresTokenRepository) FindByTokenID(ctx context.Context, jwtID string) (*models.Token, error) {
	var t models.Token
	err := r.db.QueryRowContext(ctx,
		"SELECT jwt_id, user_id, issued, subject FROM tokens WHERE jwt_id = $1",
		jwtID,
	).Scan(&t.JwtID, &t.UserID, &t.Issued, &t.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return &t, nil
}

func (r *PostgresTokenRepository) FindAllByUser(ctx context.Context, userID string) ([]models.Token, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT jwt_id, user_id, issued, subject FROM tokens WHERE user_id = $1 ORDER BY issued, jwt_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	tokens := []models.Token{}
	for rows.Next() {
		var t models.Token
		if err := rows.Scan(&t.JwtID, &t.UserID, &t.Issued, &t.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

func (r *PostgresTokenRepository) Revoke(ctx context.Context, jwtID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE jwt_id = $1", jwtID)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTokenRepository) RevokeAllByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return n, nil
}

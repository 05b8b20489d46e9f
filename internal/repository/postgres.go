package repository

import (
	"errors"

	"github.com/lib/pq"
	"github.com/underbudget/backend/internal/database"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// PostgresManager vends PostgreSQL repositories. The token ledger may be
// swapped for another backend.
type PostgresManager struct {
	tokens TokenRepository
}

type ManagerOption func(*PostgresManager)

// WithTokenRepository routes the token ledger to r instead of PostgreSQL.
func WithTokenRepository(r TokenRepository) ManagerOption {
	return func(m *PostgresManager) {
		m.tokens = r
	}
}

func NewPostgresManager(opts ...ManagerOption) *PostgresManager {
	m := &PostgresManager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PostgresManager) Users(db database.DBTX) UserRepository {
	return NewPostgresUserRepository(db)
}

func (m *PostgresManager) Tokens(db database.DBTX) TokenRepository {
	if m.tokens != nil {
		return m.tokens
	}
	return NewPostgresTokenRepository(db)
}

func (m *PostgresManager) Permissions(db database.DBTX) PermissionRepository {
	return NewPostgresPermissionRepository(db)
}

func (m *PostgresManager) Ledgers(db database.DBTX) LedgerRepository {
	return NewPostgresLedgerRepository(db)
}

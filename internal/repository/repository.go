// Package repository persists users, session tokens, ledgers and ledger
// grants. Repositories are bound to a database.DBTX so callers decide whether
// an operation runs inside a transaction.
package repository

import (
	"context"
	"errors"

	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenRepository is the token ledger, the allow-list of live session tokens.
type TokenRepository interface {
	Record(ctx context.Context, token *models.Token) error
	FindByTokenID(ctx context.Context, jwtID string) (*models.Token, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.Token, error)
	// Revoke deletes the record. ErrNotFound means no record matched, so of
	// several concurrent revokes of one id exactly one succeeds.
	Revoke(ctx context.Context, jwtID string) error
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
}

// PermissionRepository stores ledger grants, unique per (ledger, user).
type PermissionRepository interface {
	// Grant returns the id of the new grant, or of the existing one.
	Grant(ctx context.Context, ledgerID, userID string) (string, error)
	HasGrant(ctx context.Context, ledgerID, userID string) (bool, error)
	Revoke(ctx context.Context, ledgerID, userID string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	FindLedgersForUser(ctx context.Context, userID string) ([]string, error)
	FindGrantsForLedger(ctx context.Context, ledgerID string) ([]models.LedgerPermission, error)
}

type LedgerRepository interface {
	Create(ctx context.Context, ledger *models.Ledger) error
	FindByID(ctx context.Context, id string) (*models.Ledger, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Ledger, error)
}

// Manager vends repositories bound to a DBTX.
type Manager interface {
	Users(db database.DBTX) UserRepository
	Tokens(db database.DBTX) TokenRepository
	Permissions(db database.DBTX) PermissionRepository
	Ledgers(db database.DBTX) LedgerRepository
}

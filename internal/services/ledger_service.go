package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/underbudget/backend/internal/audit"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/metrics"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/repository"
	"go.uber.org/zap"
)

// CreateLedgerRequest represents the ledger creation payload
// @Description Ledger creation request structure
type CreateLedgerRequest struct {
	Name            string `json:"name" validate:"required,max=128" example:"Household"`
	DefaultCurrency string `json:"defaultCurrency" validate:"required,iso4217" example:"USD"`
}

// ShareLedgerRequest represents the ledger sharing payload
// @Description Ledger sharing request structure
type ShareLedgerRequest struct {
	UserID string `json:"userId" validate:"required" example:"6f1c1a5e-8d8b-4f55-9b6e-1d2f7c3b9a10"`
}

var ledgerMessages = map[string]string{
	"Name.max":                MsgLedgerNameTooLong,
	"DefaultCurrency.iso4217": MsgInvalidCurrency,
}

// LedgerService manages ledgers and the per-user grants guarding them.
type LedgerService struct {
	store     Storage
	validator *ValidationHelper
	l         *zap.Logger
	audit     *audit.Logger
	metrics   *metrics.Metrics
}

func NewLedgerService(store Storage, l *zap.Logger, auditLog *audit.Logger, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		store:     store,
		validator: NewValidationHelper(),
		l:         l,
		audit:     auditLog,
		metrics:   m,
	}
}

// CreateLedger creates the ledger and grants the creator access to it in one
// transaction.
func (s *LedgerService) CreateLedger(ctx context.Context, userID string, req CreateLedgerRequest) (string, error) {
	if err := s.validator.Check(&req, ledgerMessages); err != nil {
		return "", err
	}

	var ledgerID string
	err := s.store.inTx(ctx, "create ledger", "", func(ctx context.Context, tx database.DBTX) error {
		ledger := &models.Ledger{Name: req.Name, DefaultCurrency: req.DefaultCurrency}
		if err := s.store.Repos.Ledgers(tx).Create(ctx, ledger); err != nil {
			return persistence("create ledger", err)
		}
		if _, err := s.store.Repos.Permissions(tx).Grant(ctx, ledger.ID, userID); err != nil {
			return persistence("grant ledger creator", err)
		}
		ledgerID = ledger.ID
		return nil
	})
	if err != nil {
		s.l.Error("failed to create ledger", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	s.l.Info("ledger created", zap.String("ledger_id", ledgerID), zap.String("user_id", userID))
	return ledgerID, nil
}

// GetLedger returns the ledger if userID holds a grant on it. A missing
// ledger and a ledger without a grant both yield ErrForbidden.
func (s *LedgerService) GetLedger(ctx context.Context, userID, ledgerID string) (*models.Ledger, error) {
	if err := s.authorize(ctx, userID, ledgerID); err != nil {
		return nil, err
	}

	ledger, err := s.store.Repos.Ledgers(s.store.DB).FindByID(ctx, ledgerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		s.l.Error("failed to load ledger", zap.String("ledger_id", ledgerID), zap.Error(err))
		return nil, persistence("find ledger", err)
	}
	return ledger, nil
}

// ListLedgers returns every ledger userID holds a grant on.
func (s *LedgerService) ListLedgers(ctx context.Context, userID string) ([]models.Ledger, error) {
	ids, err := s.store.Repos.Permissions(s.store.DB).FindLedgersForUser(ctx, userID)
	if err != nil {
		s.l.Error("failed to list ledger grants", zap.String("user_id", userID), zap.Error(err))
		return nil, persistence("find ledgers for user", err)
	}
	if len(ids) == 0 {
		return []models.Ledger{}, nil
	}

	ledgers, err := s.store.Repos.Ledgers(s.store.DB).FindByIDs(ctx, ids)
	if err != nil {
		s.l.Error("failed to list ledgers", zap.String("user_id", userID), zap.Error(err))
		return nil, persistence("find ledgers", err)
	}
	return ledgers, nil
}

// ListGrants returns the grants on a ledger userID can access.
func (s *LedgerService) ListGrants(ctx context.Context, userID, ledgerID string) ([]models.LedgerPermission, error) {
	if err := s.authorize(ctx, userID, ledgerID); err != nil {
		return nil, err
	}

	grants, err := s.store.Repos.Permissions(s.store.DB).FindGrantsForLedger(ctx, ledgerID)
	if err != nil {
		s.l.Error("failed to list grants", zap.String("ledger_id", ledgerID), zap.Error(err))
		return nil, persistence("find grants for ledger", err)
	}
	return grants, nil
}

// ShareLedger grants another user access to a ledger userID can access.
// Granting twice returns the existing grant.
func (s *LedgerService) ShareLedger(ctx context.Context, userID, ledgerID string, req ShareLedgerRequest) (string, error) {
	if err := s.validator.Check(&req, nil); err != nil {
		return "", err
	}
	if err := s.authorize(ctx, userID, ledgerID); err != nil {
		return "", err
	}

	var grantID string
	err := s.store.inTx(ctx, "share ledger", "", func(ctx context.Context, tx database.DBTX) error {
		if _, err := s.store.Repos.Users(tx).FindByID(ctx, req.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid(MsgInvalidUser)
			}
			return persistence("find grantee", err)
		}

		id, err := s.store.Repos.Permissions(tx).Grant(ctx, ledgerID, req.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid(MsgInvalidUser)
			}
			return persistence("grant ledger", err)
		}
		grantID = id
		return nil
	})
	if err != nil {
		var pErr *PersistenceError
		if errors.As(err, &pErr) {
			s.l.Error("failed to share ledger", zap.String("ledger_id", ledgerID), zap.Error(err))
		}
		return "", err
	}

	s.audit.LogLedgerShared(userID, ledgerID, req.UserID)
	return grantID, nil
}

// UnshareLedger removes granteeID's access. Removing a grant that does not
// exist succeeds.
func (s *LedgerService) UnshareLedger(ctx context.Context, userID, ledgerID, granteeID string) error {
	if err := s.authorize(ctx, userID, ledgerID); err != nil {
		return err
	}
	if _, err := uuid.Parse(granteeID); err != nil {
		return nil
	}

	if err := s.store.Repos.Permissions(s.store.DB).Revoke(ctx, ledgerID, granteeID); err != nil {
		s.l.Error("failed to unshare ledger", zap.String("ledger_id", ledgerID), zap.Error(err))
		return persistence("revoke ledger grant", err)
	}

	s.audit.LogLedgerUnshared(userID, ledgerID, granteeID)
	return nil
}

// HasAccess reports whether userID holds a grant on ledgerID.
func (s *LedgerService) HasAccess(ctx context.Context, userID, ledgerID string) (bool, error) {
	if _, err := uuid.Parse(ledgerID); err != nil {
		return false, nil
	}
	ok, err := s.store.Repos.Permissions(s.store.DB).HasGrant(ctx, ledgerID, userID)
	if err != nil {
		return false, persistence("check ledger grant", err)
	}
	return ok, nil
}

func (s *LedgerService) authorize(ctx context.Context, userID, ledgerID string) error {
	ok, err := s.HasAccess(ctx, userID, ledgerID)
	if err != nil {
		s.l.Error("failed to check ledger access", zap.String("ledger_id", ledgerID), zap.Error(err))
		return err
	}
	if !ok {
		s.audit.LogLedgerAccessDenied(userID, ledgerID)
		s.metrics.AuthorizationDenied("ledger")
		return ErrForbidden
	}
	return nil
}

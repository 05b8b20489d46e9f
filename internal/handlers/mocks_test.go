package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/services"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Register(ctx context.Context, req services.RegisterRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, req services.LoginRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAPI) ListTokens(ctx context.Context, userID string) ([]models.Token, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Token), args.Error(1)
}

func (m *MockAuthAPI) RevokeToken(ctx context.Context, userID, jwtID string) error {
	return m.Called(ctx, userID, jwtID).Error(0)
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthAPI) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockLedgerAPI struct {
	mock.Mock
}

func (m *MockLedgerAPI) CreateLedger(ctx context.Context, userID string, req services.CreateLedgerRequest) (string, error) {
	args := m.Called(ctx, userID, req)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerAPI) GetLedger(ctx context.Context, userID, ledgerID string) (*models.Ledger, error) {
	args := m.Called(ctx, userID, ledgerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ledger), args.Error(1)
}

func (m *MockLedgerAPI) ListLedgers(ctx context.Context, userID string) ([]models.Ledger, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ledger), args.Error(1)
}

func (m *MockLedgerAPI) ListGrants(ctx context.Context, userID, ledgerID string) ([]models.LedgerPermission, error) {
	args := m.Called(ctx, userID, ledgerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerPermission), args.Error(1)
}

func (m *MockLedgerAPI) ShareLedger(ctx context.Context, userID, ledgerID string, req services.ShareLedgerRequest) (string, error) {
	args := m.Called(ctx, userID, ledgerID, req)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerAPI) UnshareLedger(ctx context.Context, userID, ledgerID, granteeID string) error {
	return m.Called(ctx, userID, ledgerID, granteeID).Error(0)
}

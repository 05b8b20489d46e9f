package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/underbudget/backend/internal/audit"
)

func TestLedgerService_CreateLedgerValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateLedgerRequest
		want string
	}{
		{"missing name", CreateLedgerRequest{DefaultCurrency: "USD"}, MsgMissingFields},
		{"missing currency", CreateLedgerRequest{Name: "Household"}, MsgMissingFields},
		{"missing beats long name", CreateLedgerRequest{Name: strings.Repeat("n", 129)}, MsgMissingFields},
		{"long name", CreateLedgerRequest{Name: strings.Repeat("n", 129), DefaultCurrency: "USD"}, MsgLedgerNameTooLong},
		{"unknown currency", CreateLedgerRequest{Name: "Household", DefaultCurrency: "DOLLARS"}, MsgInvalidCurrency},
		{"lowercase currency", CreateLedgerRequest{Name: "Household", DefaultCurrency: "usd"}, MsgInvalidCurrency},
		{"name checked before currency", CreateLedgerRequest{Name: strings.Repeat("n", 129), DefaultCurrency: "DOLLARS"}, MsgLedgerNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			userID := f.register(t, "robert")

			_, err := f.ledgers.CreateLedger(context.Background(), userID, tt.req)
			status, msg := StatusFor(err)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestLedgerService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	robert := f.register(t, "robert")
	alice := f.register(t, "alice_1")

	ok, err := f.ledgers.HasAccess(ctx, robert, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)

	ledgerID, err := f.ledgers.CreateLedger(ctx, robert, CreateLedgerRequest{Name: strings.Repeat("n", 128), DefaultCurrency: "EUR"})
	require.NoError(t, err)

	ok, err = f.ledgers.HasAccess(ctx, robert, ledgerID)
	require.NoError(t, err)
	assert.True(t, ok)

	ledger, err := f.ledgers.GetLedger(ctx, robert, ledgerID)
	require.NoError(t, err)
	assert.Equal(t, ledgerID, ledger.ID)
	assert.Equal(t, "EUR", ledger.DefaultCurrency)

	t.Run("forbidden and missing look the same", func(t *testing.T) {
		_, forbiddenErr := f.ledgers.GetLedger(ctx, alice, ledgerID)
		_, missingErr := f.ledgers.GetLedger(ctx, alice, uuid.NewString())
		_, malformedErr := f.ledgers.GetLedger(ctx, alice, "not-a-uuid")

		for _, err := range []error{forbiddenErr, missingErr, malformedErr} {
			assert.ErrorIs(t, err, ErrForbidden)
			status, msg := StatusFor(err)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, MsgForbidden, msg)
		}
		assert.Equal(t, 3, f.auditEvents(audit.EventLedgerAccessDenied))
		assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.AuthorizationDeniedTotal.WithLabelValues("ledger")))
	})
}

func TestLedgerService_ListLedgers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	robert := f.register(t, "robert")
	alice := f.register(t, "alice_1")

	empty, err := f.ledgers.ListLedgers(ctx, robert)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	household, err := f.ledgers.CreateLedger(ctx, robert, CreateLedgerRequest{Name: "Household", DefaultCurrency: "USD"})
	require.NoError(t, err)
	_, err = f.ledgers.CreateLedger(ctx, alice, CreateLedgerRequest{Name: "Alice only", DefaultCurrency: "GBP"})
	require.NoError(t, err)

	mine, err := f.ledgers.ListLedgers(ctx, robert)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, household, mine[0].ID)

	_, err = f.ledgers.ShareLedger(ctx, robert, household, ShareLedgerRequest{UserID: alice})
	require.NoError(t, err)

	theirs, err := f.ledgers.ListLedgers(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, theirs, 2)
}

func TestLedgerService_ShareAndUnshare(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	robert := f.register(t, "robert")
	alice := f.register(t, "alice_1")
	mallory := f.register(t, "mallory")

	ledgerID, err := f.ledgers.CreateLedger(ctx, robert, CreateLedgerRequest{Name: "Household", DefaultCurrency: "USD"})
	require.NoError(t, err)

	first, err := f.ledgers.ShareLedger(ctx, robert, ledgerID, ShareLedgerRequest{UserID: alice})
	require.NoError(t, err)
	second, err := f.ledgers.ShareLedger(ctx, robert, ledgerID, ShareLedgerRequest{UserID: alice})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, f.auditEvents(audit.EventLedgerShared))

	grants, err := f.ledgers.ListGrants(ctx, alice, ledgerID)
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	t.Run("unknown grantee", func(t *testing.T) {
		for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
			_, err := f.ledgers.ShareLedger(ctx, robert, ledgerID, ShareLedgerRequest{UserID: id})
			status, msg := StatusFor(err)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, MsgInvalidUser, msg)
		}
	})

	t.Run("missing grantee", func(t *testing.T) {
		_, err := f.ledgers.ShareLedger(ctx, robert, ledgerID, ShareLedgerRequest{})
		_, msg := StatusFor(err)
		assert.Equal(t, MsgMissingFields, msg)
	})

	t.Run("only users with access may share", func(t *testing.T) {
		_, err := f.ledgers.ShareLedger(ctx, mallory, ledgerID, ShareLedgerRequest{UserID: mallory})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.ledgers.ListGrants(ctx, mallory, ledgerID)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, f.ledgers.UnshareLedger(ctx, mallory, ledgerID, alice), ErrForbidden)
	})

	t.Run("unshare", func(t *testing.T) {
		require.NoError(t, f.ledgers.UnshareLedger(ctx, robert, ledgerID, alice))
		require.NoError(t, f.ledgers.UnshareLedger(ctx, robert, ledgerID, alice))
		require.NoError(t, f.ledgers.UnshareLedger(ctx, robert, ledgerID, "not-a-uuid"))

		ok, err := f.ledgers.HasAccess(ctx, alice, ledgerID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = f.ledgers.GetLedger(ctx, alice, ledgerID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestLedgerService_PersistenceFailure(t *testing.T) {
	f, mock := newSQLFixture(t)
	ledgerID := uuid.NewString()
	userID := uuid.NewString()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(ledgerID, userID).WillReturnError(errors.New("connection refused"))

	_, err := f.ledgers.GetLedger(context.Background(), userID, ledgerID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrForbidden)

	status, msg := StatusFor(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgUnableToComplete, msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_CreateLedgerRollsBack(t *testing.T) {
	f, mock := newSQLFixture(t)
	userID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ledgers").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := f.ledgers.CreateLedger(context.Background(), userID, CreateLedgerRequest{Name: "Household", DefaultCurrency: "USD"})
	require.Error(t, err)
	status, _ := StatusFor(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerService_ShareCommitFailure(t *testing.T) {
	f, mock := newSQLFixture(t)
	owner := uuid.NewString()
	grantee := uuid.NewString()
	ledgerID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(ledgerID, owner).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id").WithArgs(grantee).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "salt", "password_hash", "verified", "created_at", "updated_at"}).
			AddRow(grantee, "alice_1", "alice@test.com", "salt", "hash", false, now, now))
	mock.ExpectQuery("INSERT INTO ledger_permissions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	id, err := f.ledgers.ShareLedger(context.Background(), owner, ledgerID, ShareLedgerRequest{UserID: grantee})
	require.Error(t, err)
	assert.Empty(t, id)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	status, msg := StatusFor(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgUnableToComplete, msg)

	assert.Equal(t, 1, f.logs.FilterMessage("failed to share ledger").Len())
	assert.Equal(t, 0, f.auditEvents(audit.EventLedgerShared))
	assert.NoError(t, mock.ExpectationsWereMet())
}

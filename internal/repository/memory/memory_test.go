package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/repository"
)

func TestManager_UsersAndTokens(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	users := m.Users(nil)
	tokens := m.Tokens(nil)

	alice := &models.User{Username: "alice_1", Email: "alice@test.com"}
	require.NoError(t, users.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)

	assert.ErrorIs(t, users.Create(ctx, &models.User{Username: "alice_1", Email: "x@test.com"}), repository.ErrConflict)
	assert.ErrorIs(t, users.Create(ctx, &models.User{Username: "other_1", Email: "alice@test.com"}), repository.ErrConflict)

	found, err := users.FindByEmail(ctx, "alice@test.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = users.FindByUsername(ctx, "ALICE_1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, tokens.Record(ctx, &models.Token{JwtID: "t1", UserID: alice.ID, Issued: time.Now()}))
	assert.ErrorIs(t, tokens.Record(ctx, &models.Token{JwtID: "t1", UserID: alice.ID}), repository.ErrConflict)
	assert.ErrorIs(t, tokens.Record(ctx, &models.Token{JwtID: "t2", UserID: "ghost"}), repository.ErrNotFound)

	list, err := tokens.FindAllByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, tokens.Revoke(ctx, "t1"))
	assert.ErrorIs(t, tokens.Revoke(ctx, "t1"), repository.ErrNotFound)
	_, err = tokens.FindByTokenID(ctx, "t1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestManager_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	u := &models.User{Username: "robert", Email: "bob@test.com"}
	require.NoError(t, m.Users(nil).Create(ctx, u))
	l := &models.Ledger{Name: "Household", DefaultCurrency: "USD"}
	require.NoError(t, m.Ledgers(nil).Create(ctx, l))
	_, err := m.Permissions(nil).Grant(ctx, l.ID, u.ID)
	require.NoError(t, err)
	require.NoError(t, m.Tokens(nil).Record(ctx, &models.Token{JwtID: "t1", UserID: u.ID}))

	require.NoError(t, m.Users(nil).Delete(ctx, u.ID))
	assert.ErrorIs(t, m.Users(nil).Delete(ctx, u.ID), repository.ErrNotFound)

	ok, err := m.Permissions(nil).HasGrant(ctx, l.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = m.Tokens(nil).FindByTokenID(ctx, "t1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestManager_Permissions(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	perms := m.Permissions(nil)

	u := &models.User{Username: "robert", Email: "bob@test.com"}
	require.NoError(t, m.Users(nil).Create(ctx, u))
	l := &models.Ledger{Name: "Household", DefaultCurrency: "USD"}
	require.NoError(t, m.Ledgers(nil).Create(ctx, l))

	ok, err := perms.HasGrant(ctx, l.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := perms.Grant(ctx, l.ID, u.ID)
	require.NoError(t, err)
	second, err := perms.Grant(ctx, l.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	grants, err := perms.FindGrantsForLedger(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	ids, err := perms.FindLedgersForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{l.ID}, ids)

	_, err = perms.Grant(ctx, "missing", u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, perms.Revoke(ctx, l.ID, u.ID))
	ok, err = perms.HasGrant(ctx, l.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransactor(t *testing.T) {
	called := false
	err := Transactor{}.WithTx(context.Background(), func(ctx context.Context, tx database.DBTX) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

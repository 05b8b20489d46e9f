package repository

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestPostgresManager(t *testing.T) {
	db, _ := newMock(t)

	m := NewPostgresManager()
	assert.IsType(t, &PostgresUserRepository{}, m.Users(db))
	assert.IsType(t, &PostgresTokenRepository{}, m.Tokens(db))
	assert.IsType(t, &PostgresPermissionRepository{}, m.Permissions(db))
	assert.IsType(t, &PostgresLedgerRepository{}, m.Ledgers(db))

	redisTokens := NewRedisTokenRepository(redis.NewClient(&redis.Options{Addr: "localhost:0"}))
	m = NewPostgresManager(WithTokenRepository(redisTokens))
	assert.Same(t, redisTokens, m.Tokens(db))
}

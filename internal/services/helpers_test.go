package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/underbudget/backend/internal/audit"
	"github.com/underbudget/backend/internal/config"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/metrics"
	"github.com/underbudget/backend/internal/repository"
	"github.com/underbudget/backend/internal/repository/memory"
	"github.com/underbudget/backend/internal/security"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:          "test-secret-with-some-length",
	JWTIssuer:          "underbudget-test",
	PasswordIterations: 1000,
}

type fixture struct {
	store   Storage
	hasher  *security.PasswordHasher
	issuer  *security.TokenIssuer
	creds   *CredentialStore
	auth    *AuthService
	ledgers *LedgerService
	metrics *metrics.Metrics
	logs    *observer.ObservedLogs
}

func newFixtureWithStorage(t *testing.T, store Storage) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core)
	auditLog := audit.NewLogger(l)
	m := metrics.NewMetrics(prometheus.NewRegistry())

	hasher := security.NewPasswordHasher(testAuthConfig)
	issuer := security.NewTokenIssuer(testAuthConfig)
	creds := NewCredentialStore(store, hasher, l)

	return &fixture{
		store:   store,
		hasher:  hasher,
		issuer:  issuer,
		creds:   creds,
		auth:    NewAuthService(store, creds, hasher, issuer, l, auditLog, m),
		ledgers: NewLedgerService(store, l, auditLog, m),
		metrics: m,
		logs:    logs,
	}
}

// newFixture wires the services to the in-memory backend.
func newFixture(t *testing.T) *fixture {
	return newFixtureWithStorage(t, Storage{Tx: memory.Transactor{}, Repos: memory.NewManager()})
}

// newSQLFixture wires the services to PostgreSQL repositories over sqlmock.
func newSQLFixture(t *testing.T) (*fixture, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return newFixtureWithStorage(t, sqlStorage(db)), mock
}

func sqlStorage(db *sql.DB) Storage {
	return Storage{DB: db, Tx: database.NewSQLTransactor(db), Repos: repository.NewPostgresManager()}
}

func (f *fixture) register(t *testing.T, name string) string {
	t.Helper()
	id, err := f.auth.Register(context.Background(), NewRegisterRequest(name, name+"@test.com", "password123456"))
	require.NoError(t, err)
	return id
}

func (f *fixture) login(t *testing.T, name string) string {
	t.Helper()
	token, err := f.auth.Login(context.Background(), LoginRequest{Name: name, Password: "password123456"})
	require.NoError(t, err)
	return token
}

func ptr(s string) *string {
	return &s
}

func (f *fixture) auditEvents(eventType string) int {
	return f.logs.FilterField(zap.String("event_type", eventType)).Len()
}

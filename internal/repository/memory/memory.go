// Package memory is an in-process implementation of the repository
// interfaces for local development and tests. State is lost on restart and
// transactions do not roll back.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/repository"
)

type store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	tokens      map[string]models.Token
	ledgers     map[string]models.Ledger
	permissions map[string]models.LedgerPermission
}

// Manager hands out repositories sharing one store. The DBTX argument is
// ignored.
type Manager struct {
	s *store
}

func NewManager() *Manager {
	return &Manager{s: &store{
		users:       map[string]models.User{},
		tokens:      map[string]models.Token{},
		ledgers:     map[string]models.Ledger{},
		permissions: map[string]models.LedgerPermission{},
	}}
}

func (m *Manager) Users(database.DBTX) repository.UserRepository {
	return &users{m.s}
}

func (m *Manager) Tokens(database.DBTX) repository.TokenRepository {
	return &tokens{m.s}
}

func (m *Manager) Permissions(database.DBTX) repository.PermissionRepository {
	return &permissions{m.s}
}

func (m *Manager) Ledgers(database.DBTX) repository.LedgerRepository {
	return &ledgers{m.s}
}

// Transactor runs the unit of work directly.
type Transactor struct{}

func (Transactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
	return fn(ctx, nil)
}

type users struct{ s *store }

func (r *users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *users) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *users) FindByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

// Delete mirrors the ON DELETE CASCADE foreign keys of the SQL schema.
func (r *users) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for k, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, k)
		}
	}
	for k, p := range r.s.permissions {
		if p.UserID == id {
			delete(r.s.permissions, k)
		}
	}
	return nil
}

type tokens struct{ s *store }

func (r *tokens) Record(_ context.Context, t *models.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[t.JwtID]; ok {
		return repository.ErrConflict
	}
	if _, ok := r.s.users[t.UserID]; !ok {
		return repository.ErrNotFound
	}
	r.s.tokens[t.JwtID] = *t
	return nil
}

func (r *tokens) FindByTokenID(_ context.Context, jwtID string) (*models.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[jwtID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *tokens) FindAllByUser(_ context.Context, userID string) ([]models.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []models.Token{}
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Issued.Equal(result[j].Issued) {
			return result[i].JwtID < result[j].JwtID
		}
		return result[i].Issued.Before(result[j].Issued)
	})
	return result, nil
}

func (r *tokens) Revoke(_ context.Context, jwtID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[jwtID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tokens, jwtID)
	return nil
}

func (r *tokens) RevokeAllByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}

type permissions struct{ s *store }

func (r *permissions) Grant(_ context.Context, ledgerID, userID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.ledgers[ledgerID]; !ok {
		return "", repository.ErrNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return "", repository.ErrNotFound
	}
	for _, p := range r.s.permissions {
		if p.LedgerID == ledgerID && p.UserID == userID {
			return p.ID, nil
		}
	}

	p := models.LedgerPermission{
		ID:        uuid.NewString(),
		LedgerID:  ledgerID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	r.s.permissions[p.ID] = p
	return p.ID, nil
}

func (r *permissions) HasGrant(_ context.Context, ledgerID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.permissions {
		if p.LedgerID == ledgerID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *permissions) Revoke(_ context.Context, ledgerID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, p := range r.s.permissions {
		if p.LedgerID == ledgerID && p.UserID == userID {
			delete(r.s.permissions, k)
		}
	}
	return nil
}

func (r *permissions) RevokeAllByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, p := range r.s.permissions {
		if p.UserID == userID {
			delete(r.s.permissions, k)
		}
	}
	return nil
}

func (r *permissions) grants(match func(models.LedgerPermission) bool) []models.LedgerPermission {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []models.LedgerPermission{}
	for _, p := range r.s.permissions {
		if match(p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (r *permissions) FindLedgersForUser(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	for _, p := range r.grants(func(p models.LedgerPermission) bool { return p.UserID == userID }) {
		ids = append(ids, p.LedgerID)
	}
	return ids, nil
}

func (r *permissions) FindGrantsForLedger(_ context.Context, ledgerID string) ([]models.LedgerPermission, error) {
	return r.grants(func(p models.LedgerPermission) bool { return p.LedgerID == ledgerID }), nil
}

type ledgers struct{ s *store }

func (r *ledgers) Create(_ context.Context, l *models.Ledger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	r.s.ledgers[l.ID] = *l
	return nil
}

func (r *ledgers) FindByID(_ context.Context, id string) (*models.Ledger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.ledgers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *ledgers) FindByIDs(_ context.Context, ids []string) ([]models.Ledger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []models.Ledger{}
	for _, id := range ids {
		if l, ok := r.s.ledgers[id]; ok {
			result = append(result, l)
		}
	}
	return result, nil
}

package services

import (
	"context"
	"errors"

	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/repository"
	"github.com/underbudget/backend/internal/security"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload. Fields are
// pointers so an absent field reads as missing while an empty one is
// checked against the length rules.
// @Description Registration request structure
type RegisterRequest struct {
	Name     *string `json:"name" validate:"required,min=6,max=128,username" example:"robert"`
	Email    *string `json:"email" validate:"required" example:"bob@test.com"`
	Password *string `json:"password" validate:"required,min=12" example:"password123456"`
}

// NewRegisterRequest builds a request with every field present.
func NewRegisterRequest(name, email, password string) RegisterRequest {
	return RegisterRequest{Name: &name, Email: &email, Password: &password}
}

var registerMessages = map[string]string{
	"Name.min":      MsgUsernameTooShort,
	"Name.max":      MsgUsernameTooLong,
	"Name.username": MsgUsernameCharset,
	"Password.min":  MsgPasswordTooShort,
}

// CredentialStore owns user records: registration rules, hashing and
// lookups.
type CredentialStore struct {
	store     Storage
	hasher    *security.PasswordHasher
	validator *ValidationHelper
	l         *zap.Logger
}

func NewCredentialStore(store Storage, hasher *security.PasswordHasher, l *zap.Logger) *CredentialStore {
	return &CredentialStore{
		store:     store,
		hasher:    hasher,
		validator: NewValidationHelper(),
		l:         l,
	}
}

// Register validates the request and creates an unverified user, returning
// its id. Checks run in a fixed order and only the first failure is
// reported.
func (s *CredentialStore) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := s.validator.Check(&req, registerMessages); err != nil {
		return "", err
	}

	name, email, password := *req.Name, *req.Email, *req.Password

	var userID string
	err := s.store.inTx(ctx, "register user", MsgUnableToRegister, func(ctx context.Context, tx database.DBTX) error {
		users := s.store.Repos.Users(tx)

		if _, err := users.FindByUsername(ctx, name); err == nil {
			return invalid(MsgUsernameTaken)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return &PersistenceError{Op: "find user by name", Message: MsgUnableToRegister, Err: err}
		}

		if _, err := users.FindByEmail(ctx, email); err == nil {
			return invalid(MsgEmailTaken)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return &PersistenceError{Op: "find user by email", Message: MsgUnableToRegister, Err: err}
		}

		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return &PersistenceError{Op: "generate salt", Message: MsgUnableToRegister, Err: err}
		}
		hash, err := s.hasher.Hash(password, salt)
		if err != nil {
			return &PersistenceError{Op: "hash password", Message: MsgUnableToRegister, Err: err}
		}

		user := &models.User{
			Username:     name,
			Email:        email,
			Salt:         salt,
			PasswordHash: hash,
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				// lost a race with a concurrent registration
				return invalid(MsgUnableToRegister)
			}
			return &PersistenceError{Op: "create user", Message: MsgUnableToRegister, Err: err}
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		var pErr *PersistenceError
		if errors.As(err, &pErr) {
			s.l.Error("failed to register user", zap.String("username", name), zap.Error(err))
		}
		return "", err
	}
	return userID, nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.find("find user by name", func(r repository.UserRepository) (*models.User, error) {
		return r.FindByUsername(ctx, username)
	})
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find("find user by email", func(r repository.UserRepository) (*models.User, error) {
		return r.FindByEmail(ctx, email)
	})
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.find("find user by id", func(r repository.UserRepository) (*models.User, error) {
		return r.FindByID(ctx, id)
	})
}

func (s *CredentialStore) find(op string, fn func(repository.UserRepository) (*models.User, error)) (*models.User, error) {
	user, err := fn(s.store.Repos.Users(s.store.DB))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistence(op, err)
	}
	return user, nil
}

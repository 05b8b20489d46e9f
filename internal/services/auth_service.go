package services

import (
	"context"
	"errors"

	"github.com/underbudget/backend/internal/audit"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/metrics"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/repository"
	"github.com/underbudget/backend/internal/security"
	"go.uber.org/zap"
)

// SessionSubject is recorded as the purpose of tokens minted by Login.
const SessionSubject = "session"

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Name     string `json:"name" validate:"required" example:"robert"`
	Password string `json:"password" validate:"required" example:"password123456"`
}

// Principal is the identity resolved from a live session token.
type Principal struct {
	User    *models.User
	TokenID string
}

// AuthService orchestrates registration, login, session listing and
// revocation, and per-request token authentication.
type AuthService struct {
	store       Storage
	credentials *CredentialStore
	hasher      *security.PasswordHasher
	issuer      *security.TokenIssuer
	validator   *ValidationHelper
	l           *zap.Logger
	audit       *audit.Logger
	metrics     *metrics.Metrics
}

func NewAuthService(
	store Storage,
	credentials *CredentialStore,
	hasher *security.PasswordHasher,
	issuer *security.TokenIssuer,
	l *zap.Logger,
	auditLog *audit.Logger,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		store:       store,
		credentials: credentials,
		hasher:      hasher,
		issuer:      issuer,
		validator:   NewValidationHelper(),
		l:           l,
		audit:       auditLog,
		metrics:     m,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	userID, err := s.credentials.Register(ctx, req)
	if err != nil {
		var pErr *PersistenceError
		if errors.As(err, &pErr) {
			s.metrics.ObserveRegistration(metrics.ResultError)
		} else {
			s.metrics.ObserveRegistration(metrics.ResultRejected)
		}
		return "", err
	}

	s.l.Info("user registered", zap.String("user_id", userID), zap.String("username", *req.Name))
	s.audit.LogRegistration(userID, *req.Name)
	s.metrics.ObserveRegistration(metrics.ResultSuccess)
	return userID, nil
}

// Login verifies the credentials and returns a signed session token. The
// token's ledger record is written in the same transaction, and the token is
// only handed out once that transaction has committed.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := s.validator.Check(&req, nil); err != nil {
		s.metrics.ObserveLogin(metrics.ResultRejected)
		return "", err
	}

	var signed, userID string
	err := s.store.inTx(ctx, "login", "", func(ctx context.Context, tx database.DBTX) error {
		user, err := s.store.Repos.Users(tx).FindByUsername(ctx, req.Name)
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Burn(req.Password)
			s.l.Info("attempt to login with invalid username", zap.String("username", req.Name))
			return ErrInvalidCredentials
		}
		if err != nil {
			return persistence("find user by name", err)
		}

		if !s.hasher.Verify(req.Password, user.Salt, user.PasswordHash) {
			s.l.Info("attempt to login with invalid password", zap.String("username", req.Name))
			return ErrInvalidCredentials
		}

		token, claims, err := s.issuer.Issue(user.ID)
		if err != nil {
			return persistence("issue token", err)
		}

		record := &models.Token{
			JwtID:   claims.ID,
			UserID:  user.ID,
			Issued:  claims.IssuedAt.Time,
			Subject: SessionSubject,
		}
		if err := s.store.Repos.Tokens(tx).Record(ctx, record); err != nil {
			return persistence("record token", err)
		}

		signed, userID = token, user.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.audit.LogLogin(req.Name, "", false)
			s.metrics.ObserveLogin(metrics.ResultRejected)
		} else {
			s.l.Error("failed to login", zap.String("username", req.Name), zap.Error(err))
			s.metrics.ObserveLogin(metrics.ResultError)
		}
		return "", err
	}

	s.audit.LogLogin(req.Name, userID, true)
	s.metrics.ObserveLogin(metrics.ResultSuccess)
	return signed, nil
}

// Authenticate resolves a bearer token. A bad signature, a deleted user and a
// revoked token are all reported as ErrNotAuthenticated.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.issuer.Verify(tokenString)
	if err != nil {
		s.metrics.AuthenticationFailed()
		return nil, ErrNotAuthenticated
	}

	user, err := s.store.Repos.Users(s.store.DB).FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.AuthenticationFailed()
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		s.l.Error("failed to load token owner", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, persistence("find user by id", err)
	}

	record, err := s.store.Repos.Tokens(s.store.DB).FindByTokenID(ctx, claims.ID)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.AuthenticationFailed()
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		s.l.Error("failed to load token record", zap.String("jwt_id", claims.ID), zap.Error(err))
		return nil, persistence("find token", err)
	}

	if record.UserID != user.ID {
		s.metrics.AuthenticationFailed()
		return nil, ErrNotAuthenticated
	}

	return &Principal{User: user, TokenID: claims.ID}, nil
}

// ListTokens returns the live sessions owned by userID.
func (s *AuthService) ListTokens(ctx context.Context, userID string) ([]models.Token, error) {
	tokens, err := s.store.Repos.Tokens(s.store.DB).FindAllByUser(ctx, userID)
	if err != nil {
		s.l.Error("failed to list tokens", zap.String("user_id", userID), zap.Error(err))
		return nil, persistence("list tokens", err)
	}
	return tokens, nil
}

// RevokeToken deletes a session owned by userID. An unknown id yields
// ErrNotFound and another user's token ErrForbidden; in both cases nothing
// is deleted.
func (s *AuthService) RevokeToken(ctx context.Context, userID, jwtID string) error {
	err := s.store.inTx(ctx, "revoke token", "", func(ctx context.Context, tx database.DBTX) error {
		tokens := s.store.Repos.Tokens(tx)

		record, err := tokens.FindByTokenID(ctx, jwtID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return persistence("find token", err)
		}

		if record.UserID != userID {
			return ErrForbidden
		}

		if err := tokens.Revoke(ctx, jwtID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return persistence("revoke token", err)
		}
		return nil
	})

	switch {
	case err == nil:
		s.audit.LogTokenRevoked(userID, jwtID)
		s.metrics.TokenRevoked()
		return nil
	case errors.Is(err, ErrForbidden):
		s.audit.LogTokenRevokeDenied(userID, jwtID)
		s.metrics.AuthorizationDenied("token")
	case errors.Is(err, ErrNotFound):
	default:
		s.l.Error("failed to revoke token", zap.String("jwt_id", jwtID), zap.Error(err))
	}
	return err
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.credentials.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	return user, err
}

// DeleteUser removes the user together with every token and ledger grant
// that references it.
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	err := s.store.inTx(ctx, "delete user", "", func(ctx context.Context, tx database.DBTX) error {
		if _, err := s.store.Repos.Tokens(tx).RevokeAllByUser(ctx, userID); err != nil {
			return persistence("revoke tokens", err)
		}
		if err := s.store.Repos.Permissions(tx).RevokeAllByUser(ctx, userID); err != nil {
			return persistence("revoke ledger permissions", err)
		}
		if err := s.store.Repos.Users(tx).Delete(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return persistence("delete user", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.l.Error("failed to delete user", zap.String("user_id", userID), zap.Error(err))
		}
		return err
	}

	s.l.Info("user deleted", zap.String("user_id", userID))
	s.audit.LogUserDeleted(userID)
	return nil
}

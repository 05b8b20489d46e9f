package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/underbudget/backend/internal/services"
	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey  contextKey = "userID"
	tokenIDKey contextKey = "tokenID"
)

// Authenticator resolves a bearer token to the user that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

type AuthMiddleware struct {
	auth Authenticator
	l    *zap.Logger
}

func NewAuthMiddleware(auth Authenticator, l *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, l: l}
}

// Handler rejects requests without a live session token and stores the
// caller's user and token ids in the request context.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			services.SendErrorResponse(w, services.MsgUnauthorized, http.StatusUnauthorized, nil)
			return
		}

		principal, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			status, msg := services.StatusFor(err)
			if status >= http.StatusInternalServerError {
				m.l.Error("failed to authenticate request", zap.String("path", r.URL.Path), zap.Error(err))
			}
			services.SendErrorResponse(w, msg, status, nil)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, principal.User.ID)
		ctx = context.WithValue(ctx, tokenIDKey, principal.TokenID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func TokenIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tokenIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a copy of ctx carrying userID, as Handler would.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func WithTokenID(ctx context.Context, tokenID string) context.Context {
	return context.WithValue(ctx, tokenIDKey, tokenID)
}

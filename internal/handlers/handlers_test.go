package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	mW "github.com/underbudget/backend/internal/middleware"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func ptr(s string) *string {
	return &s
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(mW.WithUserID(req.Context(), userID))
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *MockAuthAPI)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"name":"robert","email":"bob@test.com","password":"password123456"}`,
			setup: func(m *MockAuthAPI) {
				m.On("Register", mock.Anything, services.NewRegisterRequest("robert", "bob@test.com", "password123456")).
					Return("user-1", nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"userId":"user-1"}`,
		},
		{
			name: "unknown fields are ignored",
			body: `{"name":"robert","password":"password123456","nickname":"bob"}`,
			setup: func(m *MockAuthAPI) {
				m.On("Register", mock.Anything, services.RegisterRequest{Name: ptr("robert"), Password: ptr("password123456")}).
					Return("", &services.ValidationError{Message: services.MsgMissingFields})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Missing required field(s)"}`,
		},
		{
			name: "empty name is present, not missing",
			body: `{"name":"","email":"bob@test.com","password":"password123456"}`,
			setup: func(m *MockAuthAPI) {
				m.On("Register", mock.Anything, services.NewRegisterRequest("", "bob@test.com", "password123456")).
					Return("", &services.ValidationError{Message: services.MsgUsernameTooShort})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Username must be at least 6 characters in length"}`,
		},
		{
			name: "empty body reaches validation",
			body: ``,
			setup: func(m *MockAuthAPI) {
				m.On("Register", mock.Anything, services.RegisterRequest{}).
					Return("", &services.ValidationError{Message: services.MsgMissingFields})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Missing required field(s)"}`,
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request"}`,
		},
		{
			name:       "trailing data",
			body:       `{"name":"robert"} {"name":"again"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request"}`,
		},
		{
			name: "persistence failure",
			body: `{"name":"robert","email":"bob@test.com","password":"password123456"}`,
			setup: func(m *MockAuthAPI) {
				m.On("Register", mock.Anything, mock.Anything).
					Return("", &services.PersistenceError{Op: "create user", Message: services.MsgUnableToRegister, Err: errors.New("boom")})
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Unable to register user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAuthAPI)
			if tt.setup != nil {
				tt.setup(api)
			}
			w := httptest.NewRecorder()
			NewAuthHandler(api, zap.NewNop()).Register(w, newRequest(http.MethodPost, "/users", tt.body, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			api.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, services.LoginRequest{Name: "robert", Password: "password123456"}).Return("signed.jwt.value", nil)
	api.On("Login", mock.Anything, services.LoginRequest{Name: "robert", Password: "nope"}).Return("", services.ErrInvalidCredentials)
	h := NewAuthHandler(api, zap.NewNop())

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/tokens", `{"name":"robert","password":"password123456"}`, nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"token":"signed.jwt.value"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/tokens", `{"name":"robert","password":"nope"}`, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid login credentials"}`, w.Body.String())
}

func TestAuthHandler_Tokens(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	api := new(MockAuthAPI)
	api.On("ListTokens", mock.Anything, "user-1").Return([]models.Token{{JwtID: "jti-1", UserID: "user-1", Issued: issued, Subject: "session"}}, nil)
	api.On("RevokeToken", mock.Anything, "user-1", "jti-1").Return(nil)
	api.On("RevokeToken", mock.Anything, "user-1", "jti-2").Return(services.ErrForbidden)
	api.On("RevokeToken", mock.Anything, "user-1", "jti-3").Return(services.ErrNotFound)
	h := NewAuthHandler(api, zap.NewNop())

	w := httptest.NewRecorder()
	h.ListTokens(w, asUser(newRequest(http.MethodGet, "/tokens", "", nil), "user-1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tokens":[{"jwtId":"jti-1","issued":"2024-03-01T12:00:00Z","subject":"session"}]}`, w.Body.String())

	for id, want := range map[string]int{"jti-1": http.StatusOK, "jti-2": http.StatusForbidden, "jti-3": http.StatusNotFound} {
		w := httptest.NewRecorder()
		h.RevokeToken(w, asUser(newRequest(http.MethodDelete, "/tokens/"+id, "", map[string]string{"jwtId": id}), "user-1"))
		assert.Equal(t, want, w.Code, id)
	}
	api.AssertExpectations(t)
}

func TestAuthHandler_RevokeCurrentSession(t *testing.T) {
	api := new(MockAuthAPI)
	api.On("RevokeToken", mock.Anything, "user-1", "jti-1").Return(nil)
	api.On("RevokeToken", mock.Anything, "user-1", "jti-2").Return(nil)
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuthHandler(api, zap.New(core))

	revoke := func(id string) int {
		req := asUser(newRequest(http.MethodDelete, "/tokens/"+id, "", map[string]string{"jwtId": id}), "user-1")
		req = req.WithContext(mW.WithTokenID(req.Context(), "jti-1"))
		w := httptest.NewRecorder()
		h.RevokeToken(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, revoke("jti-2"))
	assert.Equal(t, 0, logs.FilterMessage("current session revoked").Len())

	assert.Equal(t, http.StatusOK, revoke("jti-1"))
	entries := logs.FilterMessage("current session revoked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "jti-1", entries[0].ContextMap()["jwt_id"])
	api.AssertExpectations(t)
}

func TestAuthHandler_RequiresIdentity(t *testing.T) {
	h := NewAuthHandler(new(MockAuthAPI), zap.NewNop())
	for _, fn := range []http.HandlerFunc{h.ListTokens, h.RevokeToken, h.CurrentUser, h.DeleteUser} {
		w := httptest.NewRecorder()
		fn(w, newRequest(http.MethodGet, "/", "", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthHandler_CurrentUserHidesSecrets(t *testing.T) {
	api := new(MockAuthAPI)
	api.On("CurrentUser", mock.Anything, "user-1").Return(&models.User{
		ID:           "user-1",
		Username:     "robert",
		Email:        "bob@test.com",
		Salt:         "salt-value",
		PasswordHash: "hash-value",
	}, nil)

	w := httptest.NewRecorder()
	NewAuthHandler(api, zap.NewNop()).CurrentUser(w, asUser(newRequest(http.MethodGet, "/users/me", "", nil), "user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"robert"`)
	assert.NotContains(t, w.Body.String(), "salt-value")
	assert.NotContains(t, w.Body.String(), "hash-value")
}

func TestLedgerHandler(t *testing.T) {
	api := new(MockLedgerAPI)
	h := NewLedgerHandler(api)

	t.Run("create", func(t *testing.T) {
		api.On("CreateLedger", mock.Anything, "user-1", services.CreateLedgerRequest{Name: "Household", DefaultCurrency: "USD"}).
			Return("ledger-1", nil).Once()

		w := httptest.NewRecorder()
		h.CreateLedger(w, asUser(newRequest(http.MethodPost, "/ledgers", `{"name":"Household","defaultCurrency":"USD"}`, nil), "user-1"))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":"ledger-1"}`, w.Body.String())
	})

	t.Run("get forbidden", func(t *testing.T) {
		api.On("GetLedger", mock.Anything, "user-1", "ledger-2").Return(nil, services.ErrForbidden).Once()

		w := httptest.NewRecorder()
		h.GetLedger(w, asUser(newRequest(http.MethodGet, "/ledgers/ledger-2", "", map[string]string{"ledgerId": "ledger-2"}), "user-1"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
	})

	t.Run("list", func(t *testing.T) {
		api.On("ListLedgers", mock.Anything, "user-1").Return([]models.Ledger{}, nil).Once()

		w := httptest.NewRecorder()
		h.ListLedgers(w, asUser(newRequest(http.MethodGet, "/ledgers", "", nil), "user-1"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ledgers":[]}`, w.Body.String())
	})

	t.Run("share and revoke", func(t *testing.T) {
		params := map[string]string{"ledgerId": "ledger-1", "userId": "user-2"}
		api.On("ShareLedger", mock.Anything, "user-1", "ledger-1", services.ShareLedgerRequest{UserID: "user-2"}).Return("grant-1", nil).Once()
		api.On("UnshareLedger", mock.Anything, "user-1", "ledger-1", "user-2").Return(nil).Once()

		w := httptest.NewRecorder()
		h.SharePermission(w, asUser(newRequest(http.MethodPost, "/ledgers/ledger-1/permissions", `{"userId":"user-2"}`, params), "user-1"))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":"grant-1"}`, w.Body.String())

		w = httptest.NewRecorder()
		h.RevokePermission(w, asUser(newRequest(http.MethodDelete, "/ledgers/ledger-1/permissions/user-2", "", params), "user-1"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	api.AssertExpectations(t)
}

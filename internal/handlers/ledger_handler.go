package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/services"
)

type LedgerAPI interface {
	CreateLedger(ctx context.Context, userID string, req services.CreateLedgerRequest) (string, error)
	GetLedger(ctx context.Context, userID, ledgerID string) (*models.Ledger, error)
	ListLedgers(ctx context.Context, userID string) ([]models.Ledger, error)
	ListGrants(ctx context.Context, userID, ledgerID string) ([]models.LedgerPermission, error)
	ShareLedger(ctx context.Context, userID, ledgerID string, req services.ShareLedgerRequest) (string, error)
	UnshareLedger(ctx context.Context, userID, ledgerID, granteeID string) error
}

type LedgerHandler struct {
	service LedgerAPI
}

func NewLedgerHandler(service LedgerAPI) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// CreatedResponse carries the id of a created resource
type CreatedResponse struct {
	ID string `json:"id"`
}

type LedgersResponse struct {
	Ledgers []models.Ledger `json:"ledgers"`
}

type PermissionsResponse struct {
	Permissions []models.LedgerPermission `json:"permissions"`
}

// CreateLedger creates a ledger owned by the caller
// @Summary Create ledger
// @Tags Ledgers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateLedgerRequest true "Ledger"
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /ledgers [post]
func (h *LedgerHandler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.CreateLedgerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.CreateLedger(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// ListLedgers lists ledgers the caller can access
// @Summary List ledgers
// @Tags Ledgers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LedgersResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /ledgers [get]
func (h *LedgerHandler) ListLedgers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ledgers, err := h.service.ListLedgers(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, LedgersResponse{Ledgers: ledgers})
}

// GetLedger returns a single ledger
// @Summary Get ledger
// @Description Missing ledgers and ledgers without a grant both answer 403
// @Tags Ledgers
// @Produce json
// @Security BearerAuth
// @Param ledgerId path string true "Ledger id"
// @Success 200 {object} models.Ledger
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /ledgers/{ledgerId} [get]
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ledger, err := h.service.GetLedger(r.Context(), userID, chi.URLParam(r, "ledgerId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// ListPermissions lists the grants on a ledger
// @Summary List ledger grants
// @Tags Ledgers
// @Produce json
// @Security BearerAuth
// @Param ledgerId path string true "Ledger id"
// @Success 200 {object} PermissionsResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /ledgers/{ledgerId}/permissions [get]
func (h *LedgerHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	grants, err := h.service.ListGrants(r.Context(), userID, chi.URLParam(r, "ledgerId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PermissionsResponse{Permissions: grants})
}

// SharePermission grants another user access to a ledger
// @Summary Share ledger
// @Tags Ledgers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ledgerId path string true "Ledger id"
// @Param request body services.ShareLedgerRequest true "Grantee"
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /ledgers/{ledgerId}/permissions [post]
func (h *LedgerHandler) SharePermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.ShareLedgerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.ShareLedger(r.Context(), userID, chi.URLParam(r, "ledgerId"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// RevokePermission removes a user's access to a ledger
// @Summary Unshare ledger
// @Tags Ledgers
// @Security BearerAuth
// @Param ledgerId path string true "Ledger id"
// @Param userId path string true "Grantee id"
// @Success 200
// @Failure 403 {object} services.ErrorResponse
// @Router /ledgers/{ledgerId}/permissions/{userId} [delete]
func (h *LedgerHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	err := h.service.UnshareLedger(r.Context(), userID, chi.URLParam(r, "ledgerId"), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

package api

import (
	"net/http"

	"github.com/maildeck/server/internal/store"
)

// AccountsHandler handles account listing and account-level mutations.
type AccountsHandler struct {
	store *store.Store
}

// NewAccountsHandler creates a new AccountsHandler instance.
func NewAccountsHandler(st *store.Store) *AccountsHandler {
	return &AccountsHandler{store: st}
}

// GetAccounts returns all accounts with their current status flags.
func (h *AccountsHandler) GetAccounts(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, h.store.Accounts())
}

// PostReauth flips the needs-reauth flag on an account.
// Expects account_id and needs_reauth query parameters.
func (h *AccountsHandler) PostReauth(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}
	needsReauth := r.URL.Query().Get("needs_reauth") == "true"

	applied, err := h.store.SetAccountReauth(r.Context(), accountID, needsReauth)
	WriteMutationResult(w, applied, err)
}

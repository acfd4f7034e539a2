package api

import (
	"net/http"

	"github.com/maildeck/server/internal/store"
)

// FoldersHandler handles folder listing requests.
type FoldersHandler struct {
	store *store.Store
}

// NewFoldersHandler creates a new FoldersHandler instance.
func NewFoldersHandler(st *store.Store) *FoldersHandler {
	return &FoldersHandler{store: st}
}

// GetFolders returns the folders of the account given by the account_id
// query parameter, including their derived unread counts.
func (h *FoldersHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	if _, ok := h.store.Account(accountID); !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	WriteJSONResponse(w, h.store.Folders(accountID))
}

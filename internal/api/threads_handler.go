package api

import (
	"net/http"

	"github.com/maildeck/server/internal/store"
)

// ThreadsHandler handles thread listing requests.
type ThreadsHandler struct {
	store *store.Store
}

// NewThreadsHandler creates a new ThreadsHandler instance.
func NewThreadsHandler(st *store.Store) *ThreadsHandler {
	return &ThreadsHandler{store: st}
}

// GetThreads lists threads. With folder_id it lists that folder; with
// account_id it lists every thread of that account; with neither it
// lists everything. Always newest first.
func (h *ThreadsHandler) GetThreads(w http.ResponseWriter, r *http.Request) {
	folderID := r.URL.Query().Get("folder_id")
	accountID := r.URL.Query().Get("account_id")

	WriteJSONResponse(w, h.store.ListThreads(folderID, accountID))
}

// GetUnified returns the de-duplicated cross-account inbox. With
// favorites=true it is restricted to accounts flagged as favorites.
func (h *ThreadsHandler) GetUnified(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("favorites") == "true" {
		WriteJSONResponse(w, h.store.FavoritesInbox())
		return
	}
	WriteJSONResponse(w, h.store.UnifiedInbox())
}

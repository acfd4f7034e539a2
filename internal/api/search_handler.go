package api

import (
	"net/http"

	"github.com/maildeck/server/internal/models"
	"github.com/maildeck/server/internal/store"
)

// SearchHandler handles multi-predicate thread search.
type SearchHandler struct {
	store *store.Store
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(st *store.Store) *SearchHandler {
	return &SearchHandler{store: st}
}

// Search composes the present query parameters as an AND and returns
// matching threads newest first. Missing parameters constrain nothing.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := models.SearchFilters{
		Query:         query.Get("q"),
		AccountID:     query.Get("account_id"),
		FolderID:      query.Get("folder_id"),
		HasAttachment: query.Get("has_attachment") == "true",
		From:          query.Get("from"),
		To:            query.Get("to"),
	}

	if unread := query.Get("unread"); unread != "" {
		isUnread := unread == "true"
		filters.IsUnread = &isUnread
	}

	WriteJSONResponse(w, h.store.SearchThreads(filters))
}

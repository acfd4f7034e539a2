package api

import (
	"log"
	"net/http"

	"github.com/maildeck/server/internal/simulator"
	"github.com/maildeck/server/internal/store"
)

// SyncHandler exposes sync statuses and the deterministic simulator tick.
type SyncHandler struct {
	store *store.Store
	sim   *simulator.Simulator
}

// NewSyncHandler creates a new SyncHandler instance.
func NewSyncHandler(st *store.Store, sim *simulator.Simulator) *SyncHandler {
	return &SyncHandler{store: st, sim: sim}
}

// GetStatuses returns the per-account sync status records. A failed sync
// shows up here as the record's error string; this is the sole
// user-facing error channel.
func (h *SyncHandler) GetStatuses(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, h.store.SyncStatuses())
}

// RunOnce triggers a single synchronous simulator tick across all
// accounts and returns the settled statuses.
func (h *SyncHandler) RunOnce(w http.ResponseWriter, r *http.Request) {
	if err := h.sim.RunOnce(r.Context()); err != nil {
		log.Printf("SyncHandler: Tick failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, h.store.SyncStatuses())
}

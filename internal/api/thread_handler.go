package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/maildeck/server/internal/models"
	"github.com/maildeck/server/internal/store"
)

// ThreadHandler handles single-thread reads and mutations under
// /api/v1/thread/{thread_id}[/{action}].
type ThreadHandler struct {
	store *store.Store
}

// NewThreadHandler creates a new ThreadHandler instance.
func NewThreadHandler(st *store.Store) *ThreadHandler {
	return &ThreadHandler{store: st}
}

// ThreadResponse is a thread together with its messages in reading order.
type ThreadResponse struct {
	Thread   models.Thread    `json:"thread"`
	Messages []models.Message `json:"messages"`
}

// Handle dispatches /api/v1/thread/{thread_id} (GET) and
// /api/v1/thread/{thread_id}/{action} (POST).
func (h *ThreadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/thread/")
	if path == "" || path == r.URL.Path {
		http.Error(w, "thread_id is required", http.StatusBadRequest)
		return
	}

	threadID, action, _ := strings.Cut(path, "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getThread(w, threadID)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.mutateThread(w, r, threadID, action)
}

func (h *ThreadHandler) getThread(w http.ResponseWriter, threadID string) {
	thread, ok := h.store.Thread(threadID)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	WriteJSONResponse(w, ThreadResponse{
		Thread:   thread,
		Messages: h.store.ThreadMessages(threadID),
	})
}

func (h *ThreadHandler) mutateThread(w http.ResponseWriter, r *http.Request, threadID, action string) {
	ctx := r.Context()

	var applied bool
	var err error

	switch action {
	case "read":
		applied, err = h.store.MarkThreadRead(ctx, threadID, true)
	case "unread":
		applied, err = h.store.MarkThreadRead(ctx, threadID, false)
	case "star":
		applied, err = h.store.ToggleThreadStar(ctx, threadID)
	case "archive":
		applied, err = h.store.ArchiveThread(ctx, threadID)
	case "trash":
		applied, err = h.store.TrashThread(ctx, threadID)
	case "spam":
		applied, err = h.store.MarkAsSpam(ctx, threadID)
	case "move":
		folderID := r.URL.Query().Get("folder_id")
		if folderID == "" {
			http.Error(w, "folder_id is required", http.StatusBadRequest)
			return
		}
		applied, err = h.store.MoveThreadToFolder(ctx, threadID, folderID)
	case "label":
		folderID := r.URL.Query().Get("folder_id")
		if folderID == "" {
			http.Error(w, "folder_id is required", http.StatusBadRequest)
			return
		}
		applied, err = h.store.ApplyLabel(ctx, threadID, folderID)
	default:
		log.Printf("ThreadHandler: Unknown action %q", action)
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	WriteMutationResult(w, applied, err)
}

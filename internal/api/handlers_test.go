package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/server/internal/models"
	"github.com/maildeck/server/internal/seed"
	"github.com/maildeck/server/internal/simulator"
	"github.com/maildeck/server/internal/snapshot"
	"github.com/maildeck/server/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st := store.New(snapshot.NewMemoryRepository())
	require.NoError(t, st.Initialize(context.Background(), seed.Generate()))
	return st
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetAccounts(t *testing.T) {
	handler := NewAccountsHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	handler.GetAccounts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decodeJSON[[]models.Account](t, rec)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acc_1", accounts[0].ID)
	assert.Equal(t, models.HealthGood, accounts[0].HealthStatus)
}

func TestPostReauth(t *testing.T) {
	st := newTestStore(t)
	handler := NewAccountsHandler(st)

	t.Run("requires account_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.PostReauth(rec, httptest.NewRequest(http.MethodPost, "/api/v1/accounts/reauth", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/reauth?account_id=ghost&needs_reauth=true", nil)
		handler.PostReauth(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("flips the flag", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/reauth?account_id=acc_1&needs_reauth=true", nil)
		handler.PostReauth(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeJSON[map[string]bool](t, rec)["applied"])

		account, ok := st.Account("acc_1")
		require.True(t, ok)
		assert.True(t, account.NeedsReauth)
		assert.Equal(t, models.HealthReauth, account.HealthStatus)
	})
}

func TestGetFolders(t *testing.T) {
	handler := NewFoldersHandler(newTestStore(t))

	t.Run("requires account_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.GetFolders(rec, httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.GetFolders(rec, httptest.NewRequest(http.MethodGet, "/api/v1/folders?account_id=ghost", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists the account's folders", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.GetFolders(rec, httptest.NewRequest(http.MethodGet, "/api/v1/folders?account_id=acc_2", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		folders := decodeJSON[[]models.Folder](t, rec)
		require.Len(t, folders, 8)
		var inboxUnread int
		for _, folder := range folders {
			assert.Equal(t, "acc_2", folder.AccountID)
			if folder.Type == models.FolderInbox {
				inboxUnread = folder.UnreadCount
			}
		}
		assert.Greater(t, inboxUnread, 0, "seed leaves unread mail in the work inbox")
	})
}

func TestGetThreads(t *testing.T) {
	handler := NewThreadsHandler(newTestStore(t))

	t.Run("lists everything by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.GetThreads(rec, httptest.NewRequest(http.MethodGet, "/api/v1/threads", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeJSON[[]models.Thread](t, rec), 8)
	})

	t.Run("filters by folder", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/threads?folder_id=folder_acc_1_inbox", nil)
		handler.GetThreads(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		threads := decodeJSON[[]models.Thread](t, rec)
		require.NotEmpty(t, threads)
		for _, thread := range threads {
			assert.True(t, thread.FolderIDs.Has("folder_acc_1_inbox"))
		}
	})

	t.Run("empty folder yields empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/threads?folder_id=folder_acc_1_trash", nil)
		handler.GetThreads(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeJSON[[]models.Thread](t, rec))
	})
}

func TestGetUnified(t *testing.T) {
	handler := NewThreadsHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	handler.GetUnified(rec, httptest.NewRequest(http.MethodGet, "/api/v1/threads/unified", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	unified := decodeJSON[[]models.Thread](t, rec)
	assert.Len(t, unified, 8)

	rec = httptest.NewRecorder()
	handler.GetUnified(rec, httptest.NewRequest(http.MethodGet, "/api/v1/threads/unified?favorites=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]models.Thread](t, rec), len(unified),
		"both seed accounts are favorites")
}

func TestThreadHandlerGet(t *testing.T) {
	handler := NewThreadHandler(newTestStore(t))

	t.Run("returns thread with messages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/thread/thread_5", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeJSON[ThreadResponse](t, rec)
		assert.Equal(t, "thread_5", resp.Thread.ID)
		require.Len(t, resp.Messages, 2)
		for _, message := range resp.Messages {
			assert.Equal(t, "thread_5", message.ThreadID)
		}
	})

	t.Run("unknown thread is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/thread/ghost", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing id is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/thread/", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("POST on bare thread is 405", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/thread/thread_1", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestThreadHandlerActions(t *testing.T) {
	st := newTestStore(t)
	handler := NewThreadHandler(st)

	post := func(t *testing.T, target string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		handler.Handle(rec, httptest.NewRequest(http.MethodPost, target, nil))
		return rec
	}

	t.Run("read and unread", func(t *testing.T) {
		rec := post(t, "/api/v1/thread/thread_1/read")
		require.Equal(t, http.StatusOK, rec.Code)
		thread, _ := st.Thread("thread_1")
		assert.True(t, thread.IsRead)

		rec = post(t, "/api/v1/thread/thread_1/unread")
		require.Equal(t, http.StatusOK, rec.Code)
		thread, _ = st.Thread("thread_1")
		assert.False(t, thread.IsRead)
	})

	t.Run("star toggles", func(t *testing.T) {
		before, _ := st.Thread("thread_2")
		rec := post(t, "/api/v1/thread/thread_2/star")
		require.Equal(t, http.StatusOK, rec.Code)
		after, _ := st.Thread("thread_2")
		assert.NotEqual(t, before.IsStarred, after.IsStarred)
	})

	t.Run("archive relocates the thread", func(t *testing.T) {
		rec := post(t, "/api/v1/thread/thread_4/archive")
		require.Equal(t, http.StatusOK, rec.Code)
		thread, _ := st.Thread("thread_4")
		assert.True(t, thread.FolderIDs.Has("folder_acc_1_archive"))
		assert.False(t, thread.FolderIDs.Has("folder_acc_1_inbox"))
	})

	t.Run("move requires folder_id", func(t *testing.T) {
		rec := post(t, "/api/v1/thread/thread_1/move")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = post(t, "/api/v1/thread/thread_1/move?folder_id=folder_acc_1_archive")
		require.Equal(t, http.StatusOK, rec.Code)
		thread, _ := st.Thread("thread_1")
		assert.True(t, thread.FolderIDs.Has("folder_acc_1_archive"))
	})

	t.Run("label requires folder_id", func(t *testing.T) {
		rec := post(t, "/api/v1/thread/thread_2/label")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = post(t, "/api/v1/thread/thread_2/label?folder_id=folder_acc_2_projects")
		require.Equal(t, http.StatusOK, rec.Code)
		thread, _ := st.Thread("thread_2")
		assert.True(t, thread.FolderIDs.Has("folder_acc_2_projects"))
	})

	t.Run("unknown action is 400", func(t *testing.T) {
		rec := post(t, "/api/v1/thread/thread_1/frobnicate")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("mutating an unknown thread is 404", func(t *testing.T) {
		rec := post(t, "/api/v1/thread/ghost/read")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearch(t *testing.T) {
	handler := NewSearchHandler(newTestStore(t))

	t.Run("free-text query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=netflix", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		threads := decodeJSON[[]models.Thread](t, rec)
		require.Len(t, threads, 1)
		assert.Equal(t, "Netflix: New shows you might like", threads[0].Subject)
	})

	t.Run("unread filter composes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/search?unread=true&account_id=acc_2", nil)
		handler.Search(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		for _, thread := range decodeJSON[[]models.Thread](t, rec) {
			assert.False(t, thread.IsRead)
		}
	})

	t.Run("no parameters returns all threads", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeJSON[[]models.Thread](t, rec), 8)
	})
}

// quietRand draws 0.75 on every Float64, which keeps simulator ticks
// free of reauth flips and new mail.
type quietRand struct{}

func (quietRand) Int63() int64 { return 3 << 61 }
func (quietRand) Seed(int64)   {}

func TestSyncHandler(t *testing.T) {
	st := newTestStore(t)
	sim := simulator.New(st,
		simulator.WithRand(rand.New(quietRand{})),
		simulator.WithDelay(func(context.Context, time.Duration) error { return nil }),
	)
	handler := NewSyncHandler(st, sim)

	rec := httptest.NewRecorder()
	handler.GetStatuses(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decodeJSON[[]models.SyncStatus](t, rec)
	require.Len(t, statuses, 2)

	rec = httptest.NewRecorder()
	handler.RunOnce(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/run", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	statuses = decodeJSON[[]models.SyncStatus](t, rec)
	require.Len(t, statuses, 2)
	for _, status := range statuses {
		assert.False(t, status.IsSyncing)
		assert.Empty(t, status.Error)
	}
}

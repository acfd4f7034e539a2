package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/server/internal/models"
	"github.com/maildeck/server/internal/store"
)

func TestGenerate(t *testing.T) {
	snap := Generate()

	t.Run("is internally consistent", func(t *testing.T) {
		require.NoError(t, snap.Validate())
		assert.False(t, snap.IsEmpty())
	})

	t.Run("two healthy accounts", func(t *testing.T) {
		require.Len(t, snap.Accounts, 2)
		for _, account := range snap.Accounts {
			assert.Equal(t, models.HealthGood, account.HealthStatus)
			assert.False(t, account.NeedsReauth)
			assert.True(t, account.IsInFavorites)
			assert.NotEmpty(t, account.FolderIDs)
		}
		assert.Equal(t, models.ProviderGmail, snap.Accounts[0].Provider)
		assert.Equal(t, models.ProviderOutlook, snap.Accounts[1].Provider)
	})

	t.Run("standard folders plus work customs", func(t *testing.T) {
		byAccount := make(map[string][]models.Folder)
		for _, folder := range snap.Folders {
			byAccount[folder.AccountID] = append(byAccount[folder.AccountID], folder)
		}
		assert.Len(t, byAccount["acc_1"], 6)
		assert.Len(t, byAccount["acc_2"], 8)

		types := make(map[models.FolderType]int)
		customs := 0
		for _, folder := range byAccount["acc_2"] {
			types[folder.Type]++
			if folder.Type == models.FolderCustom {
				customs++
			}
		}
		assert.Equal(t, 1, types[models.FolderInbox])
		assert.Equal(t, 1, types[models.FolderArchive])
		assert.Equal(t, 1, types[models.FolderTrash])
		assert.Equal(t, 1, types[models.FolderSpam])
		assert.Equal(t, 2, customs)
	})

	t.Run("account folder lists match folder ownership", func(t *testing.T) {
		owned := make(map[string]map[string]struct{})
		for _, folder := range snap.Folders {
			if owned[folder.AccountID] == nil {
				owned[folder.AccountID] = make(map[string]struct{})
			}
			owned[folder.AccountID][folder.ID] = struct{}{}
		}
		for _, account := range snap.Accounts {
			assert.Len(t, account.FolderIDs, len(owned[account.ID]))
			for _, id := range account.FolderIDs {
				_, ok := owned[account.ID][id]
				assert.True(t, ok, "account %s lists foreign folder %s", account.ID, id)
			}
		}
	})

	t.Run("threads land in their accounts' inboxes", func(t *testing.T) {
		require.Len(t, snap.Threads, 8)
		for _, thread := range snap.Threads {
			assert.Greater(t, thread.FolderIDs.Len(), 0)
			assert.Equal(t, thread.FolderIDs.Len(), len(thread.MessageIDs),
				"one message per inbox the thread was filed in")
		}
	})

	t.Run("multi-account templates produce one shared thread", func(t *testing.T) {
		var github *models.Thread
		for i := range snap.Threads {
			if snap.Threads[i].Subject == "GitHub: Pull request merged" {
				github = &snap.Threads[i]
			}
		}
		require.NotNil(t, github)
		assert.True(t, github.FolderIDs.Has("folder_acc_1_inbox"))
		assert.True(t, github.FolderIDs.Has("folder_acc_2_inbox"))
		assert.Len(t, github.MessageIDs, 2)
	})

	t.Run("messages belong to seeded threads and carry read state", func(t *testing.T) {
		threadsByID := make(map[string]models.Thread)
		for _, thread := range snap.Threads {
			threadsByID[thread.ID] = thread
		}
		for _, message := range snap.Messages {
			thread, ok := threadsByID[message.ThreadID]
			require.True(t, ok)
			assert.Equal(t, thread.IsRead, message.IsRead)
			assert.Equal(t, thread.Subject, message.Subject)
		}
	})

	t.Run("folder caches hold from the start", func(t *testing.T) {
		for _, folder := range snap.Folders {
			threadIDs, unread := store.RecomputeFolder(folder.ID, snap.Threads)
			assert.Equal(t, threadIDs, folder.ThreadIDs, "folder %s", folder.ID)
			assert.Equal(t, unread, folder.UnreadCount, "folder %s", folder.ID)
		}
	})

	t.Run("sync status per account", func(t *testing.T) {
		require.Len(t, snap.SyncStatuses, 2)
		for _, status := range snap.SyncStatuses {
			assert.False(t, status.IsSyncing)
			assert.NotNil(t, status.LastSyncTime)
			assert.Empty(t, status.Error)
		}
	})

	t.Run("successive calls are independent", func(t *testing.T) {
		other := Generate()
		other.Threads[0].FolderIDs.Add("folder_injected")
		assert.False(t, snap.Threads[0].FolderIDs.Has("folder_injected"))
	})
}

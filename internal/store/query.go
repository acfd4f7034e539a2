package store

import (
	"sort"
	"strings"
	"time"

	"github.com/maildeck/server/internal/models"
)

// Accounts returns all accounts.
func (s *Store) Accounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, len(s.accounts))
	for i, account := range s.accounts {
		out[i] = cloneAccount(account)
	}
	return out
}

// Account returns the account with the given id.
func (s *Store) Account(accountID string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.findAccountLocked(accountID)
	if index < 0 {
		return models.Account{}, false
	}
	return cloneAccount(s.accounts[index]), true
}

// Folders returns the folders owned by the account.
func (s *Store) Folders(accountID string) []models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Folder
	for _, folder := range s.folders {
		if folder.AccountID == accountID {
			out = append(out, cloneFolder(folder))
		}
	}
	return out
}

// Folder returns the folder with the given id.
func (s *Store) Folder(folderID string) (models.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folder := s.folderByIDLocked(folderID)
	if folder == nil {
		return models.Folder{}, false
	}
	return cloneFolder(*folder), true
}

// FolderByPath returns the account's folder with the given provider path.
func (s *Store) FolderByPath(accountID, path string) (models.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, folder := range s.folders {
		if folder.AccountID == accountID && folder.Path == path {
			return cloneFolder(folder), true
		}
	}
	return models.Folder{}, false
}

// Thread returns the thread with the given id.
func (s *Store) Thread(threadID string) (models.Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.findThreadLocked(threadID)
	if index < 0 {
		return models.Thread{}, false
	}
	return cloneThread(s.threads[index]), true
}

// ListThreads returns threads filtered by folder (if folderID is set),
// else by account (if accountID is set), else all threads. Results are
// sorted by last activity, newest first.
func (s *Store) ListThreads(folderID, accountID string) []models.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Thread
	switch {
	case folderID != "":
		for _, thread := range s.threads {
			if thread.FolderIDs.Has(folderID) {
				out = append(out, cloneThread(thread))
			}
		}
	case accountID != "":
		accountFolderIDs := s.accountFolderIDsLocked(accountID)
		for _, thread := range s.threads {
			if threadTouchesFolders(&thread, accountFolderIDs) {
				out = append(out, cloneThread(thread))
			}
		}
	default:
		for _, thread := range s.threads {
			out = append(out, cloneThread(thread))
		}
	}

	sortByLastActivity(out)
	return out
}

// UnifiedInbox returns the de-duplicated union of all inbox folders'
// threads across accounts, newest first. Accounts with an active snooze
// are left out.
func (s *Store) UnifiedInbox() []models.Thread {
	return s.unifiedInbox(func(*models.Account) bool { return true })
}

// FavoritesInbox is the unified inbox restricted to accounts flagged as
// favorites.
func (s *Store) FavoritesInbox() []models.Thread {
	return s.unifiedInbox(func(a *models.Account) bool { return a.IsInFavorites })
}

func (s *Store) unifiedInbox(include func(*models.Account) bool) []models.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	visibleAccounts := make(map[string]struct{})
	for i := range s.accounts {
		account := &s.accounts[i]
		if account.SnoozeActive(now) || !include(account) {
			continue
		}
		visibleAccounts[account.ID] = struct{}{}
	}

	inboxFolderIDs := make(map[string]struct{})
	for _, folder := range s.folders {
		if folder.Type != models.FolderInbox {
			continue
		}
		if _, ok := visibleAccounts[folder.AccountID]; ok {
			inboxFolderIDs[folder.ID] = struct{}{}
		}
	}

	var out []models.Thread
	seen := make(map[string]struct{})
	for _, thread := range s.threads {
		if !threadTouchesFolders(&thread, inboxFolderIDs) {
			continue
		}
		if _, dup := seen[thread.ID]; dup {
			continue
		}
		seen[thread.ID] = struct{}{}
		out = append(out, cloneThread(thread))
	}

	sortByLastActivity(out)
	return out
}

// ThreadMessages returns the thread's messages in chronological reading
// order, independent of append order.
func (s *Store) ThreadMessages(threadID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Message
	for _, message := range s.messages {
		if message.ThreadID == threadID {
			out = append(out, cloneMessage(message))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SearchThreads applies the present filter predicates as a logical AND
// and returns matches newest first. Empty filter fields constrain
// nothing.
func (s *Store) SearchThreads(filters models.SearchFilters) []models.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accountFolderIDs map[string]struct{}
	if filters.AccountID != "" {
		accountFolderIDs = s.accountFolderIDsLocked(filters.AccountID)
	}

	var threadIDsWithTo map[string]struct{}
	if filters.To != "" {
		threadIDsWithTo = make(map[string]struct{})
		for _, message := range s.messages {
			if participantsMatch(message.To, filters.To) {
				threadIDsWithTo[message.ThreadID] = struct{}{}
			}
		}
	}

	var out []models.Thread
	for i := range s.threads {
		thread := &s.threads[i]

		if filters.AccountID != "" && !threadTouchesFolders(thread, accountFolderIDs) {
			continue
		}
		if filters.FolderID != "" && !thread.FolderIDs.Has(filters.FolderID) {
			continue
		}
		if filters.IsUnread != nil && thread.IsRead == *filters.IsUnread {
			continue
		}
		if filters.HasAttachment && !s.threadHasAttachmentLocked(thread.ID) {
			continue
		}
		if filters.From != "" && !participantsMatch(thread.Participants, filters.From) {
			continue
		}
		if filters.To != "" {
			if _, ok := threadIDsWithTo[thread.ID]; !ok {
				continue
			}
		}
		if filters.Query != "" && !s.threadMatchesQueryLocked(thread, filters.Query) {
			continue
		}

		out = append(out, cloneThread(*thread))
	}

	sortByLastActivity(out)
	return out
}

// SyncStatus returns the account's sync status record, if one exists.
func (s *Store) SyncStatus(accountID string) (models.SyncStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.syncStatuses[accountID]
	return status, ok
}

// SyncStatuses returns all known sync status records.
func (s *Store) SyncStatuses() []models.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SyncStatus, 0, len(s.syncStatuses))
	for _, status := range s.syncStatuses {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

func (s *Store) accountFolderIDsLocked(accountID string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, folder := range s.folders {
		if folder.AccountID == accountID {
			ids[folder.ID] = struct{}{}
		}
	}
	return ids
}

func (s *Store) threadHasAttachmentLocked(threadID string) bool {
	for _, message := range s.messages {
		if message.ThreadID == threadID && len(message.Attachments) > 0 {
			return true
		}
	}
	return false
}

func (s *Store) threadMatchesQueryLocked(thread *models.Thread, query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(thread.Subject), query) {
		return true
	}
	if strings.Contains(strings.ToLower(thread.Snippet), query) {
		return true
	}
	for _, message := range s.messages {
		if message.ThreadID == thread.ID && strings.Contains(strings.ToLower(message.Body), query) {
			return true
		}
	}
	return false
}

func threadTouchesFolders(thread *models.Thread, folderIDs map[string]struct{}) bool {
	for _, folderID := range thread.FolderIDs.Values() {
		if _, ok := folderIDs[folderID]; ok {
			return true
		}
	}
	return false
}

func participantsMatch(participants []models.Participant, needle string) bool {
	needle = strings.ToLower(needle)
	for _, p := range participants {
		if strings.Contains(strings.ToLower(p.Email), needle) ||
			strings.Contains(strings.ToLower(p.Name), needle) {
			return true
		}
	}
	return false
}

func sortByLastActivity(threads []models.Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastActivity.After(threads[j].LastActivity)
	})
}

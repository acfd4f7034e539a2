package models

import "fmt"

// Snapshot is the full serializable closure of the mailbox state and the
// unit of persistence. It is a disposable projection of the store's live
// collections, taken before each write-through.
type Snapshot struct {
	Accounts     []Account    `json:"accounts"`
	Folders      []Folder     `json:"folders"`
	Threads      []Thread     `json:"threads"`
	Messages     []Message    `json:"messages"`
	SyncStatuses []SyncStatus `json:"sync_statuses"`
}

// IsEmpty reports whether the snapshot carries no accounts, which is how
// a fresh install looks to the store.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Accounts) == 0
}

// Validate runs the referential checks the store relies on: every folder
// references a known account, every thread folder-id references a known
// folder, and every message references a known thread. It returns the
// first violation found.
func (s *Snapshot) Validate() error {
	accountIDs := make(map[string]struct{}, len(s.Accounts))
	for _, account := range s.Accounts {
		if account.ID == "" {
			return fmt.Errorf("account with empty id (email %q)", account.Email)
		}
		if _, dup := accountIDs[account.ID]; dup {
			return fmt.Errorf("duplicate account id %q", account.ID)
		}
		accountIDs[account.ID] = struct{}{}
	}

	folderIDs := make(map[string]struct{}, len(s.Folders))
	for _, folder := range s.Folders {
		if _, dup := folderIDs[folder.ID]; dup {
			return fmt.Errorf("duplicate folder id %q", folder.ID)
		}
		folderIDs[folder.ID] = struct{}{}
		if _, ok := accountIDs[folder.AccountID]; !ok {
			return fmt.Errorf("folder %q references unknown account %q", folder.ID, folder.AccountID)
		}
	}

	threadIDs := make(map[string]struct{}, len(s.Threads))
	for _, thread := range s.Threads {
		if _, dup := threadIDs[thread.ID]; dup {
			return fmt.Errorf("duplicate thread id %q", thread.ID)
		}
		threadIDs[thread.ID] = struct{}{}
		for _, folderID := range thread.FolderIDs.Values() {
			if _, ok := folderIDs[folderID]; !ok {
				return fmt.Errorf("thread %q references unknown folder %q", thread.ID, folderID)
			}
		}
	}

	for _, message := range s.Messages {
		if _, ok := threadIDs[message.ThreadID]; !ok {
			return fmt.Errorf("message %q references unknown thread %q", message.ID, message.ThreadID)
		}
	}

	for _, status := range s.SyncStatuses {
		if _, ok := accountIDs[status.AccountID]; !ok {
			return fmt.Errorf("sync status references unknown account %q", status.AccountID)
		}
	}

	return nil
}

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/maildeck/server/internal/models"
	"github.com/maildeck/server/internal/snapshot"
)

// Store holds the canonical in-memory mailbox state for all signed-in
// accounts and performs every mutation through one of a fixed set of
// operations. Each operation leaves the entity invariants intact and
// persists the new snapshot before returning (write-through).
//
// Mutations serialize on an internal lock; reads may run concurrently
// and always observe a consistent state. All returned entities are
// copies that callers may retain.
type Store struct {
	repo snapshot.Repository

	mu           sync.RWMutex
	accounts     []models.Account
	folders      []models.Folder
	threads      []models.Thread
	messages     []models.Message
	syncStatuses map[string]models.SyncStatus
}

// New creates a store backed by the given snapshot repository. Call
// Initialize before use.
func New(repo snapshot.Repository) *Store {
	return &Store{
		repo:         repo,
		syncStatuses: make(map[string]models.SyncStatus),
	}
}

// Initialize loads the last persisted snapshot. On a fresh install (no
// snapshot, or an empty one) it persists and loads the provided seed
// instead; a nil seed means starting with zero accounts. Loaded and
// seeded snapshots both go through referential validation.
func (s *Store) Initialize(ctx context.Context, seed *models.Snapshot) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	fresh := snap.IsEmpty()
	if fresh {
		if seed == nil {
			seed = &models.Snapshot{}
		}
		if err := seed.Validate(); err != nil {
			return fmt.Errorf("invalid seed snapshot: %w", err)
		}
		snap = seed
	} else if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid persisted snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSnapshotLocked(snap)
	// Folder caches are derived state; recompute on load so even a
	// hand-written seed satisfies the cache invariant from the start.
	s.updateFolderThreadListsLocked()

	if fresh {
		if err := s.persistLocked(ctx); err != nil {
			return fmt.Errorf("failed to persist seed snapshot: %w", err)
		}
	}
	return nil
}

// loadSnapshotLocked deep-copies the snapshot into the live collections
// so later mutations never alias the caller's (or the repository's) data.
func (s *Store) loadSnapshotLocked(snap *models.Snapshot) {
	s.accounts = make([]models.Account, len(snap.Accounts))
	for i, account := range snap.Accounts {
		s.accounts[i] = cloneAccount(account)
	}
	s.folders = make([]models.Folder, len(snap.Folders))
	for i, folder := range snap.Folders {
		s.folders[i] = cloneFolder(folder)
	}
	s.threads = make([]models.Thread, len(snap.Threads))
	for i, thread := range snap.Threads {
		s.threads[i] = cloneThread(thread)
	}
	s.messages = make([]models.Message, len(snap.Messages))
	for i, message := range snap.Messages {
		s.messages[i] = cloneMessage(message)
	}
	s.syncStatuses = make(map[string]models.SyncStatus, len(snap.SyncStatuses))
	for _, status := range snap.SyncStatuses {
		s.syncStatuses[status.AccountID] = status
	}
}

// SetAccountReauth flips the needs-reauth flag on the account and keeps
// its health status coherent. Unknown account ids report applied=false.
func (s *Store) SetAccountReauth(ctx context.Context, accountID string, needsReauth bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findAccountLocked(accountID)
	if index < 0 {
		return false, nil
	}

	account := &s.accounts[index]
	account.NeedsReauth = needsReauth
	if needsReauth {
		account.HealthStatus = models.HealthReauth
	} else if account.HealthStatus != models.HealthFailing {
		account.HealthStatus = models.HealthGood
	}

	return true, s.persistLocked(ctx)
}

// MarkThreadRead sets the thread's read state and cascades it to every
// message in the thread, then recomputes unread counts for the folders
// the thread currently occupies.
func (s *Store) MarkThreadRead(ctx context.Context, threadID string, isRead bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findThreadLocked(threadID)
	if index < 0 {
		return false, nil
	}

	s.threads[index].IsRead = isRead
	for i := range s.messages {
		if s.messages[i].ThreadID == threadID {
			s.messages[i].IsRead = isRead
		}
	}

	s.updateFolderUnreadCountsLocked(s.threads[index].FolderIDs.Values())
	return true, s.persistLocked(ctx)
}

// ToggleThreadStar flips the thread's starred flag.
func (s *Store) ToggleThreadStar(ctx context.Context, threadID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findThreadLocked(threadID)
	if index < 0 {
		return false, nil
	}

	s.threads[index].IsStarred = !s.threads[index].IsStarred
	return true, s.persistLocked(ctx)
}

// ArchiveThread removes the thread from every inbox folder it occupies
// and, per account whose inbox was removed, adds it to that account's
// archive folder if one exists. Folders of other accounts are untouched;
// an account without an archive folder simply loses inbox membership.
func (s *Store) ArchiveThread(ctx context.Context, threadID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findThreadLocked(threadID)
	if index < 0 {
		return false, nil
	}

	thread := &s.threads[index]
	var affectedAccountIDs []string
	for _, folderID := range thread.FolderIDs.Values() {
		folder := s.folderByIDLocked(folderID)
		if folder != nil && folder.Type == models.FolderInbox {
			thread.FolderIDs.Remove(folderID)
			affectedAccountIDs = append(affectedAccountIDs, folder.AccountID)
		}
	}

	for _, accountID := range affectedAccountIDs {
		if archive := s.folderByTypeLocked(accountID, models.FolderArchive); archive != nil {
			thread.FolderIDs.Add(archive.ID)
		}
	}

	s.updateFolderThreadListsLocked()
	return true, s.persistLocked(ctx)
}

// MoveThreadToFolder removes the thread from every folder of the target
// folder's account, then files it into the target folder only.
// Membership in other accounts' folders is untouched.
func (s *Store) MoveThreadToFolder(ctx context.Context, threadID, targetFolderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findThreadLocked(threadID)
	target := s.folderByIDLocked(targetFolderID)
	if index < 0 || target == nil {
		return false, nil
	}

	thread := &s.threads[index]
	for _, folder := range s.folders {
		if folder.AccountID == target.AccountID {
			thread.FolderIDs.Remove(folder.ID)
		}
	}
	thread.FolderIDs.Add(targetFolderID)

	s.updateFolderThreadListsLocked()
	return true, s.persistLocked(ctx)
}

// TrashThread replaces the thread's folder membership with exactly the
// trash folders of the accounts it was associated with.
func (s *Store) TrashThread(ctx context.Context, threadID string) (bool, error) {
	return s.replaceMembership(ctx, threadID, models.FolderTrash)
}

// MarkAsSpam replaces the thread's folder membership with exactly the
// spam folders of the accounts it was associated with.
func (s *Store) MarkAsSpam(ctx context.Context, threadID string) (bool, error) {
	return s.replaceMembership(ctx, threadID, models.FolderSpam)
}

// replaceMembership implements the trash/spam replacement pattern: the
// thread keeps membership only in the given folder type, one folder per
// account currently represented in its membership. An account without a
// folder of that type drops out entirely.
func (s *Store) replaceMembership(ctx context.Context, threadID string, folderType models.FolderType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findThreadLocked(threadID)
	if index < 0 {
		return false, nil
	}

	thread := &s.threads[index]
	accountIDs := models.NewIDSet()
	for _, folderID := range thread.FolderIDs.Values() {
		if folder := s.folderByIDLocked(folderID); folder != nil {
			accountIDs.Add(folder.AccountID)
		}
	}

	replacement := models.NewIDSet()
	for _, accountID := range accountIDs.Values() {
		if folder := s.folderByTypeLocked(accountID, folderType); folder != nil {
			replacement.Add(folder.ID)
		}
	}
	thread.FolderIDs = replacement

	s.updateFolderThreadListsLocked()
	return true, s.persistLocked(ctx)
}

// ApplyLabel files the thread into the folder (if absent) and records
// the folder's name as a label, unique case-insensitively. Re-applying
// an existing label is idempotent.
func (s *Store) ApplyLabel(ctx context.Context, threadID, folderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findThreadLocked(threadID)
	folder := s.folderByIDLocked(folderID)
	if index < 0 || folder == nil {
		return false, nil
	}

	thread := &s.threads[index]
	thread.FolderIDs.Add(folderID)

	hasLabel := false
	for _, label := range thread.Labels {
		if strings.EqualFold(label, folder.Name) {
			hasLabel = true
			break
		}
	}
	if !hasLabel {
		thread.Labels = append(thread.Labels, folder.Name)
	}

	s.updateFolderThreadListsLocked()
	return true, s.persistLocked(ctx)
}

// AddThread appends a thread to the canonical collection. The caller is
// responsible for referential validity of its folder ids.
func (s *Store) AddThread(ctx context.Context, thread models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads = append(s.threads, cloneThread(thread))
	s.updateFolderThreadListsLocked()
	return s.persistLocked(ctx)
}

// AddMessage appends a message. If its thread is known, the message id
// is recorded on the thread (append-only) and the thread's last activity
// advances, forward only.
func (s *Store) AddMessage(ctx context.Context, message models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, cloneMessage(message))

	if index := s.findThreadLocked(message.ThreadID); index >= 0 {
		thread := &s.threads[index]
		known := false
		for _, id := range thread.MessageIDs {
			if id == message.ID {
				known = true
				break
			}
		}
		if !known {
			thread.MessageIDs = append(thread.MessageIDs, message.ID)
		}
		if message.Date.After(thread.LastActivity) {
			thread.LastActivity = message.Date
		}
		s.updateFolderUnreadCountsLocked(thread.FolderIDs.Values())
	}

	return s.persistLocked(ctx)
}

// UpdateSyncStatus overwrites the sync status record for the account,
// creating it if absent (last write wins).
func (s *Store) UpdateSyncStatus(ctx context.Context, status models.SyncStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncStatuses[status.AccountID] = status
	return s.persistLocked(ctx)
}

// persistLocked writes the current state through to the repository. It
// honors cancellation up to the point the write starts; a started save
// runs to completion so the snapshot is never torn. A failed save leaves
// the in-memory state as mutated; the caller must treat memory as ahead
// of disk and retry or alert.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshotLocked()
	if err := s.repo.Save(context.WithoutCancel(ctx), snap); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

func (s *Store) snapshotLocked() *models.Snapshot {
	snap := &models.Snapshot{
		Accounts: make([]models.Account, len(s.accounts)),
		Folders:  make([]models.Folder, len(s.folders)),
		Threads:  make([]models.Thread, len(s.threads)),
		Messages: make([]models.Message, len(s.messages)),
	}
	for i, account := range s.accounts {
		snap.Accounts[i] = cloneAccount(account)
	}
	for i, folder := range s.folders {
		snap.Folders[i] = cloneFolder(folder)
	}
	for i, thread := range s.threads {
		snap.Threads[i] = cloneThread(thread)
	}
	for i, message := range s.messages {
		snap.Messages[i] = cloneMessage(message)
	}
	for _, status := range s.syncStatuses {
		snap.SyncStatuses = append(snap.SyncStatuses, status)
	}
	return snap
}

func (s *Store) findAccountLocked(accountID string) int {
	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			return i
		}
	}
	return -1
}

func (s *Store) findThreadLocked(threadID string) int {
	for i := range s.threads {
		if s.threads[i].ID == threadID {
			return i
		}
	}
	return -1
}

func (s *Store) folderByIDLocked(folderID string) *models.Folder {
	for i := range s.folders {
		if s.folders[i].ID == folderID {
			return &s.folders[i]
		}
	}
	return nil
}

func (s *Store) folderByTypeLocked(accountID string, folderType models.FolderType) *models.Folder {
	for i := range s.folders {
		if s.folders[i].AccountID == accountID && s.folders[i].Type == folderType {
			return &s.folders[i]
		}
	}
	return nil
}

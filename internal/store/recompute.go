package store

import "github.com/maildeck/server/internal/models"

// RecomputeFolder derives a folder's thread list and unread count from
// the thread set. Folder caches must always equal this function's
// output; the store never edits them directly.
func RecomputeFolder(folderID string, threads []models.Thread) (threadIDs []string, unreadCount int) {
	for i := range threads {
		if threads[i].FolderIDs.Has(folderID) {
			threadIDs = append(threadIDs, threads[i].ID)
			if !threads[i].IsRead {
				unreadCount++
			}
		}
	}
	return threadIDs, unreadCount
}

// updateFolderThreadListsLocked fully recomputes every folder's derived
// caches. Used after any mutation that can change membership of folders
// not explicitly enumerated (archive, move, trash, spam, label, add).
func (s *Store) updateFolderThreadListsLocked() {
	for i := range s.folders {
		s.folders[i].ThreadIDs, s.folders[i].UnreadCount = RecomputeFolder(s.folders[i].ID, s.threads)
	}
}

// updateFolderUnreadCountsLocked recomputes unread counts for the given
// folders only. Used when read state changed but membership did not.
func (s *Store) updateFolderUnreadCountsLocked(folderIDs []string) {
	for _, folderID := range folderIDs {
		if folder := s.folderByIDLocked(folderID); folder != nil {
			_, folder.UnreadCount = RecomputeFolder(folderID, s.threads)
		}
	}
}

func cloneAccount(account models.Account) models.Account {
	out := account
	out.FolderIDs = append([]string(nil), account.FolderIDs...)
	if account.SnoozeUntil != nil {
		until := *account.SnoozeUntil
		out.SnoozeUntil = &until
	}
	return out
}

func cloneFolder(folder models.Folder) models.Folder {
	out := folder
	out.ThreadIDs = append([]string(nil), folder.ThreadIDs...)
	return out
}

func cloneThread(thread models.Thread) models.Thread {
	out := thread
	out.Participants = append([]models.Participant(nil), thread.Participants...)
	out.MessageIDs = append([]string(nil), thread.MessageIDs...)
	out.FolderIDs = thread.FolderIDs.Clone()
	out.Labels = append([]string(nil), thread.Labels...)
	return out
}

func cloneMessage(message models.Message) models.Message {
	out := message
	out.To = append([]models.Participant(nil), message.To...)
	if message.Cc != nil {
		out.Cc = append([]models.Participant(nil), message.Cc...)
	}
	if message.Bcc != nil {
		out.Bcc = append([]models.Participant(nil), message.Bcc...)
	}
	out.Attachments = append([]models.Attachment(nil), message.Attachments...)
	return out
}

package models

import "time"

// FolderType tags a folder with its mailbox role.
type FolderType string

const (
	FolderInbox   FolderType = "inbox"
	FolderSent    FolderType = "sent"
	FolderDrafts  FolderType = "drafts"
	FolderTrash   FolderType = "trash"
	FolderSpam    FolderType = "spam"
	FolderArchive FolderType = "archive"
	FolderCustom  FolderType = "custom"
)

// Folder belongs to exactly one account. UnreadCount and ThreadIDs are
// derived caches recomputed by the store from thread folder membership;
// they are never edited directly.
type Folder struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Type        FolderType `json:"type"`
	UnreadCount int        `json:"unread_count"`
	ThreadIDs   []string   `json:"thread_ids"`
}

// Thread is a conversation filed into one or more folders. FolderIDs is
// the single source of truth for folder membership.
type Thread struct {
	ID           string        `json:"id"`
	Subject      string        `json:"subject"`
	Participants []Participant `json:"participants"`
	MessageIDs   []string      `json:"message_ids"`
	FolderIDs    IDSet         `json:"folder_ids"`
	Labels       []string      `json:"labels"`
	IsRead       bool          `json:"is_read"`
	IsStarred    bool          `json:"is_starred"`
	LastActivity time.Time     `json:"last_activity"`
	Snippet      string        `json:"snippet"`
}

// Message belongs to exactly one thread.
type Message struct {
	ID          string        `json:"id"`
	ThreadID    string        `json:"thread_id"`
	From        Participant   `json:"from"`
	To          []Participant `json:"to"`
	Cc          []Participant `json:"cc,omitempty"`
	Bcc         []Participant `json:"bcc,omitempty"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	BodyHTML    string        `json:"body_html,omitempty"`
	Date        time.Time     `json:"date"`
	IsRead      bool          `json:"is_read"`
	Attachments []Attachment  `json:"attachments"`
	InReplyTo   string        `json:"in_reply_to,omitempty"`
}

// Participant is a (name, address) pair with no identity beyond its fields.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment is immutable once attached to a message.
type Attachment struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url,omitempty"`
}

// SearchFilters compose as a logical AND; zero values mean "no
// constraint", not "match empty".
type SearchFilters struct {
	Query         string `json:"query,omitempty"`
	AccountID     string `json:"account_id,omitempty"`
	FolderID      string `json:"folder_id,omitempty"`
	IsUnread      *bool  `json:"is_unread,omitempty"`
	HasAttachment bool   `json:"has_attachment,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
}

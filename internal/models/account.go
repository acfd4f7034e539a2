package models

import "time"

// AccountProvider identifies the mail provider behind an account.
type AccountProvider string

const (
	ProviderGmail   AccountProvider = "gmail"
	ProviderOutlook AccountProvider = "outlook"
	ProviderIMAP    AccountProvider = "imap"
)

// HealthStatus summarizes an account's sync health for the UI.
type HealthStatus string

const (
	HealthGood    HealthStatus = "good"
	HealthReauth  HealthStatus = "reauth"
	HealthFailing HealthStatus = "failing"
)

// Account represents one signed-in mail account.
// FolderIDs is the ordered list of folders the account owns; the folder
// entities themselves live in the snapshot's flat folder list.
type Account struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Provider      AccountProvider `json:"provider"`
	Color         string          `json:"color"`
	FolderIDs     []string        `json:"folder_ids"`
	NeedsReauth   bool            `json:"needs_reauth"`
	IsPinned      bool            `json:"is_pinned"`
	IsInFavorites bool            `json:"is_in_favorites"`
	IsSnoozed     bool            `json:"is_snoozed"`
	SnoozeUntil   *time.Time      `json:"snooze_until,omitempty"`
	HealthStatus  HealthStatus    `json:"health_status"`
}

// SnoozeActive reports whether the account is currently snoozed and
// therefore hidden from cross-account unified views.
func (a *Account) SnoozeActive(now time.Time) bool {
	if !a.IsSnoozed {
		return false
	}
	return a.SnoozeUntil == nil || a.SnoozeUntil.After(now)
}

// SyncStatus is the per-account sync status record. It is overwritten
// wholesale on every update, never merged.
type SyncStatus struct {
	AccountID    string     `json:"account_id"`
	IsSyncing    bool       `json:"is_syncing"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	Error        string     `json:"error,omitempty"`
}

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maildeck/server/internal/models"
)

// NewPool creates a PostgreSQL connection pool for the given database URL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// PostgresRepository persists snapshots to PostgreSQL. Nested lists
// (participants, attachments, id lists) are stored as JSONB; a save
// replaces the whole snapshot inside one transaction, so a read-back is
// always the last fully written state.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps the given pool. Call EnsureSchema before
// first use.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		provider TEXT NOT NULL,
		color TEXT NOT NULL,
		folder_ids JSONB NOT NULL DEFAULT '[]',
		needs_reauth BOOLEAN NOT NULL DEFAULT FALSE,
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		is_in_favorites BOOLEAN NOT NULL DEFAULT FALSE,
		is_snoozed BOOLEAN NOT NULL DEFAULT FALSE,
		snooze_until TIMESTAMPTZ NULL,
		health_status TEXT NOT NULL DEFAULT 'good'
	)`,
	`CREATE TABLE IF NOT EXISTS folders (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		type TEXT NOT NULL,
		unread_count INTEGER NOT NULL DEFAULT 0,
		thread_ids JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS threads (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		participants JSONB NOT NULL DEFAULT '[]',
		message_ids JSONB NOT NULL DEFAULT '[]',
		folder_ids JSONB NOT NULL DEFAULT '[]',
		labels JSONB NOT NULL DEFAULT '[]',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		is_starred BOOLEAN NOT NULL DEFAULT FALSE,
		last_activity TIMESTAMPTZ NOT NULL,
		snippet TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL,
		from_participant JSONB NOT NULL,
		to_participants JSONB NOT NULL DEFAULT '[]',
		cc_participants JSONB NULL,
		bcc_participants JSONB NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		body_html TEXT NULL,
		date TIMESTAMPTZ NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		attachments JSONB NOT NULL DEFAULT '[]',
		in_reply_to TEXT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_statuses (
		account_id TEXT PRIMARY KEY,
		is_syncing BOOLEAN NOT NULL DEFAULT FALSE,
		last_sync_time TIMESTAMPTZ NULL,
		error TEXT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_folders_account_id ON folders(account_id)`,
	`CREATE INDEX IF NOT EXISTS ix_threads_last_activity ON threads(last_activity)`,
	`CREATE INDEX IF NOT EXISTS ix_messages_thread_id ON messages(thread_id)`,
}

// EnsureSchema creates the snapshot tables and indexes if they do not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// Load reads the full snapshot. It returns (nil, nil) when all tables are
// empty, which the store treats as a fresh install.
func (r *PostgresRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, provider, color, folder_ids, needs_reauth,
		       is_pinned, is_in_favorites, is_snoozed, snooze_until, health_status
		FROM accounts
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	for rows.Next() {
		var account models.Account
		var folderIDs []byte
		if err := rows.Scan(
			&account.ID, &account.Email, &account.Name, &account.Provider,
			&account.Color, &folderIDs, &account.NeedsReauth, &account.IsPinned,
			&account.IsInFavorites, &account.IsSnoozed, &account.SnoozeUntil,
			&account.HealthStatus,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if err := json.Unmarshal(folderIDs, &account.FolderIDs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to decode account folder ids: %w", err)
		}
		snap.Accounts = append(snap.Accounts, account)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, account_id, name, path, type, unread_count, thread_ids
		FROM folders
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}
	for rows.Next() {
		var folder models.Folder
		var threadIDs []byte
		if err := rows.Scan(
			&folder.ID, &folder.AccountID, &folder.Name, &folder.Path,
			&folder.Type, &folder.UnreadCount, &threadIDs,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		if err := json.Unmarshal(threadIDs, &folder.ThreadIDs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to decode folder thread ids: %w", err)
		}
		snap.Folders = append(snap.Folders, folder)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read folders: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, subject, participants, message_ids, folder_ids, labels,
		       is_read, is_starred, last_activity, snippet
		FROM threads
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load threads: %w", err)
	}
	for rows.Next() {
		var thread models.Thread
		var participants, messageIDs, folderIDs, labels []byte
		if err := rows.Scan(
			&thread.ID, &thread.Subject, &participants, &messageIDs,
			&folderIDs, &labels, &thread.IsRead, &thread.IsStarred,
			&thread.LastActivity, &thread.Snippet,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		if err := decodeThreadLists(&thread, participants, messageIDs, folderIDs, labels); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Threads = append(snap.Threads, thread)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read threads: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, thread_id, from_participant, to_participants, cc_participants,
		       bcc_participants, subject, body, body_html, date, is_read,
		       attachments, in_reply_to
		FROM messages
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	for rows.Next() {
		var message models.Message
		var from, to, cc, bcc, attachments []byte
		var bodyHTML, inReplyTo *string
		if err := rows.Scan(
			&message.ID, &message.ThreadID, &from, &to, &cc, &bcc,
			&message.Subject, &message.Body, &bodyHTML, &message.Date,
			&message.IsRead, &attachments, &inReplyTo,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if err := decodeMessageLists(&message, from, to, cc, bcc, attachments); err != nil {
			rows.Close()
			return nil, err
		}
		if bodyHTML != nil {
			message.BodyHTML = *bodyHTML
		}
		if inReplyTo != nil {
			message.InReplyTo = *inReplyTo
		}
		snap.Messages = append(snap.Messages, message)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT account_id, is_syncing, last_sync_time, error
		FROM sync_statuses
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync statuses: %w", err)
	}
	for rows.Next() {
		var status models.SyncStatus
		var errMsg *string
		if err := rows.Scan(&status.AccountID, &status.IsSyncing, &status.LastSyncTime, &errMsg); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sync status: %w", err)
		}
		if errMsg != nil {
			status.Error = *errMsg
		}
		snap.SyncStatuses = append(snap.SyncStatuses, status)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sync statuses: %w", err)
	}

	if len(snap.Accounts) == 0 && len(snap.Folders) == 0 &&
		len(snap.Threads) == 0 && len(snap.Messages) == 0 {
		return nil, nil
	}

	return snap, nil
}

// Save replaces the stored snapshot with the given one in a single
// transaction.
func (r *PostgresRepository) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range []string{"accounts", "folders", "threads", "messages", "sync_statuses"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertAccounts(ctx, tx, snap.Accounts); err != nil {
		return err
	}
	if err := insertFolders(ctx, tx, snap.Folders); err != nil {
		return err
	}
	if err := insertThreads(ctx, tx, snap.Threads); err != nil {
		return err
	}
	if err := insertMessages(ctx, tx, snap.Messages); err != nil {
		return err
	}
	if err := insertSyncStatuses(ctx, tx, snap.SyncStatuses); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func insertAccounts(ctx context.Context, tx pgx.Tx, accounts []models.Account) error {
	for _, account := range accounts {
		folderIDs, err := json.Marshal(account.FolderIDs)
		if err != nil {
			return fmt.Errorf("failed to encode account folder ids: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO accounts (id, email, name, provider, color, folder_ids,
				needs_reauth, is_pinned, is_in_favorites, is_snoozed, snooze_until, health_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, account.ID, account.Email, account.Name, account.Provider, account.Color,
			folderIDs, account.NeedsReauth, account.IsPinned, account.IsInFavorites,
			account.IsSnoozed, account.SnoozeUntil, account.HealthStatus)
		if err != nil {
			return fmt.Errorf("failed to insert account %s: %w", account.ID, err)
		}
	}
	return nil
}

func insertFolders(ctx context.Context, tx pgx.Tx, folders []models.Folder) error {
	for _, folder := range folders {
		threadIDs, err := json.Marshal(folder.ThreadIDs)
		if err != nil {
			return fmt.Errorf("failed to encode folder thread ids: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO folders (id, account_id, name, path, type, unread_count, thread_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, folder.ID, folder.AccountID, folder.Name, folder.Path, folder.Type,
			folder.UnreadCount, threadIDs)
		if err != nil {
			return fmt.Errorf("failed to insert folder %s: %w", folder.ID, err)
		}
	}
	return nil
}

func insertThreads(ctx context.Context, tx pgx.Tx, threads []models.Thread) error {
	for _, thread := range threads {
		participants, err := json.Marshal(thread.Participants)
		if err != nil {
			return fmt.Errorf("failed to encode thread participants: %w", err)
		}
		messageIDs, err := json.Marshal(thread.MessageIDs)
		if err != nil {
			return fmt.Errorf("failed to encode thread message ids: %w", err)
		}
		folderIDs, err := json.Marshal(thread.FolderIDs)
		if err != nil {
			return fmt.Errorf("failed to encode thread folder ids: %w", err)
		}
		labels, err := json.Marshal(thread.Labels)
		if err != nil {
			return fmt.Errorf("failed to encode thread labels: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO threads (id, subject, participants, message_ids, folder_ids,
				labels, is_read, is_starred, last_activity, snippet)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, thread.ID, thread.Subject, participants, messageIDs, folderIDs, labels,
			thread.IsRead, thread.IsStarred, thread.LastActivity, thread.Snippet)
		if err != nil {
			return fmt.Errorf("failed to insert thread %s: %w", thread.ID, err)
		}
	}
	return nil
}

func insertMessages(ctx context.Context, tx pgx.Tx, messages []models.Message) error {
	for _, message := range messages {
		from, err := json.Marshal(message.From)
		if err != nil {
			return fmt.Errorf("failed to encode message sender: %w", err)
		}
		to, err := json.Marshal(message.To)
		if err != nil {
			return fmt.Errorf("failed to encode message recipients: %w", err)
		}
		attachments, err := json.Marshal(message.Attachments)
		if err != nil {
			return fmt.Errorf("failed to encode message attachments: %w", err)
		}
		var cc, bcc []byte
		if message.Cc != nil {
			if cc, err = json.Marshal(message.Cc); err != nil {
				return fmt.Errorf("failed to encode message cc: %w", err)
			}
		}
		if message.Bcc != nil {
			if bcc, err = json.Marshal(message.Bcc); err != nil {
				return fmt.Errorf("failed to encode message bcc: %w", err)
			}
		}
		var bodyHTML, inReplyTo *string
		if message.BodyHTML != "" {
			bodyHTML = &message.BodyHTML
		}
		if message.InReplyTo != "" {
			inReplyTo = &message.InReplyTo
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (id, thread_id, from_participant, to_participants,
				cc_participants, bcc_participants, subject, body, body_html, date,
				is_read, attachments, in_reply_to)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, message.ID, message.ThreadID, from, to, cc, bcc, message.Subject,
			message.Body, bodyHTML, message.Date, message.IsRead, attachments, inReplyTo)
		if err != nil {
			return fmt.Errorf("failed to insert message %s: %w", message.ID, err)
		}
	}
	return nil
}

func insertSyncStatuses(ctx context.Context, tx pgx.Tx, statuses []models.SyncStatus) error {
	for _, status := range statuses {
		var errMsg *string
		if status.Error != "" {
			errMsg = &status.Error
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO sync_statuses (account_id, is_syncing, last_sync_time, error)
			VALUES ($1, $2, $3, $4)
		`, status.AccountID, status.IsSyncing, status.LastSyncTime, errMsg)
		if err != nil {
			return fmt.Errorf("failed to insert sync status for %s: %w", status.AccountID, err)
		}
	}
	return nil
}

func decodeThreadLists(thread *models.Thread, participants, messageIDs, folderIDs, labels []byte) error {
	if err := json.Unmarshal(participants, &thread.Participants); err != nil {
		return fmt.Errorf("failed to decode thread participants: %w", err)
	}
	if err := json.Unmarshal(messageIDs, &thread.MessageIDs); err != nil {
		return fmt.Errorf("failed to decode thread message ids: %w", err)
	}
	if err := json.Unmarshal(folderIDs, &thread.FolderIDs); err != nil {
		return fmt.Errorf("failed to decode thread folder ids: %w", err)
	}
	if err := json.Unmarshal(labels, &thread.Labels); err != nil {
		return fmt.Errorf("failed to decode thread labels: %w", err)
	}
	return nil
}

func decodeMessageLists(message *models.Message, from, to, cc, bcc, attachments []byte) error {
	if err := json.Unmarshal(from, &message.From); err != nil {
		return fmt.Errorf("failed to decode message sender: %w", err)
	}
	if err := json.Unmarshal(to, &message.To); err != nil {
		return fmt.Errorf("failed to decode message recipients: %w", err)
	}
	if cc != nil {
		if err := json.Unmarshal(cc, &message.Cc); err != nil {
			return fmt.Errorf("failed to decode message cc: %w", err)
		}
	}
	if bcc != nil {
		if err := json.Unmarshal(bcc, &message.Bcc); err != nil {
			return fmt.Errorf("failed to decode message bcc: %w", err)
		}
	}
	if err := json.Unmarshal(attachments, &message.Attachments); err != nil {
		return fmt.Errorf("failed to decode message attachments: %w", err)
	}
	return nil
}

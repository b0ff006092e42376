// Package index records which messages were already downloaded, so repeated
// fetch runs only save new mail.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one downloaded message.
type Entry struct {
	Store      string
	EntryID    string
	MessageID  string
	Received   time.Time
	Subject    string
	Folder     string
	SavedPath  string
	RecordedAt time.Time
}

// Index is a SQLite backed set of downloaded messages keyed by store and
// entry id.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS downloaded_emails (
			store_name TEXT NOT NULL,
			entry_id TEXT NOT NULL,
			internet_message_id TEXT,
			received_time TEXT,
			subject TEXT,
			broker_folder TEXT,
			saved_path TEXT,
			created_at TEXT NOT NULL,
			PRIMARY KEY (store_name, entry_id)
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_downloaded_folder ON downloaded_emails(broker_folder)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &Index{db: db}, nil
}

// Has reports whether the message was already recorded.
func (i *Index) Has(ctx context.Context, store, entryID string) (bool, error) {
	var one int
	err := i.db.QueryRowContext(ctx, `
		SELECT 1 FROM downloaded_emails
		WHERE store_name = ? AND entry_id = ?
	`, store, entryID).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query index: %w", err)
	}
	return true, nil
}

// Mark records a downloaded message. Recording the same message twice keeps
// the first entry.
func (i *Index) Mark(ctx context.Context, e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	var received string
	if !e.Received.IsZero() {
		received = e.Received.Format(time.RFC3339)
	}

	_, err := i.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO downloaded_emails
			(store_name, entry_id, internet_message_id, received_time, subject, broker_folder, saved_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Store, e.EntryID, e.MessageID, received, e.Subject, e.Folder, e.SavedPath, e.RecordedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert index entry: %w", err)
	}
	return nil
}

// Count returns the number of recorded messages in folder, or in all
// folders when folder is empty.
func (i *Index) Count(ctx context.Context, folder string) (int, error) {
	var n int
	var err error
	if folder == "" {
		err = i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloaded_emails`).Scan(&n)
	} else {
		err = i.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM downloaded_emails WHERE broker_folder = ?
		`, folder).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count index entries: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

// Package mailstore enumerates and reads broker messages, either live from
// an IMAP server or from an archive of .eml files.
package mailstore

import (
	"context"

	"position-report-extractor/internal/models"
)

// Ref identifies one message of a store.
type Ref struct {
	// Folder is the broker folder the message was listed under.
	Folder string
	// ID is unique within the store and stable across runs.
	ID string

	mailbox string
	uid     uint32
	path    string
}

// Store is a source of broker messages.
type Store interface {
	// Name identifies the store in the download index.
	Name() string
	List(ctx context.Context, folder string) ([]Ref, error)
	Fetch(ctx context.Context, ref Ref) (*models.RawDocument, error)
}

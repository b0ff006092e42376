package imap

import (
	"time"

	"github.com/emersion/go-imap"
)

// Client is the subset of an IMAP session used to read broker folders.
// Mailboxes are opened read-only, nothing is flagged on the server.
type Client interface {
	Connect(server string) error
	Login(user, password string) error
	ListMailboxes(ref, pattern string) ([]*imap.MailboxInfo, error)
	SelectMailbox(name string) error
	ListUIDs(since time.Duration) ([]uint32, error)
	FetchMessage(uid uint32) (*imap.Message, error)
	Close() error
}

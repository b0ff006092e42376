package imap

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// ErrNotConnected is returned by every call made before Connect.
var ErrNotConnected = errors.New("not connected")

const defaultTimeout = 30 * time.Second

type StandardClient struct {
	client  *client.Client
	timeout time.Duration
}

// NewStandardClient creates a new StandardClient. The timeout bounds dialing
// and every command; zero means 30 seconds.
func NewStandardClient(timeout time.Duration) *StandardClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &StandardClient{
		timeout: timeout,
	}
}

// Connect establishes a secure connection to the IMAP server using TLS.
func (c *StandardClient) Connect(server string) error {
	cl, err := client.DialWithDialerTLS(&net.Dialer{Timeout: c.timeout}, server, nil)
	if err != nil {
		return fmt.Errorf("IMAP connection error: %w", err)
	}
	cl.Timeout = c.timeout
	c.client = cl
	return nil
}

func (c *StandardClient) Login(user, password string) error {
	if c.client == nil {
		return ErrNotConnected
	}
	return c.client.Login(user, password)
}

// ListMailboxes returns the mailboxes matching pattern under ref, e.g. ("", "Ship Reports/*").
func (c *StandardClient) ListMailboxes(ref, pattern string) ([]*imap.MailboxInfo, error) {
	if c.client == nil {
		return nil, ErrNotConnected
	}

	out, err := drain(func(ch chan *imap.MailboxInfo) error {
		return c.client.List(ref, pattern, ch)
	})
	if err != nil {
		return nil, fmt.Errorf("error listing mailboxes %q: %w", pattern, err)
	}
	return out, nil
}

// SelectMailbox opens a broker folder read-only, so reading never changes flags.
func (c *StandardClient) SelectMailbox(name string) error {
	if c.client == nil {
		return ErrNotConnected
	}
	if _, err := c.client.Select(name, true); err != nil {
		return fmt.Errorf("error selecting mailbox %q: %w", name, err)
	}
	return nil
}

// ListUIDs returns the UIDs of the selected folder, limited to messages received
// within since when it is positive.
func (c *StandardClient) ListUIDs(since time.Duration) ([]uint32, error) {
	if c.client == nil {
		return nil, ErrNotConnected
	}

	criteria := imap.NewSearchCriteria()
	if since > 0 {
		criteria.Since = time.Now().Add(-since)
	}

	uids, err := c.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("error searching folder: %w", err)
	}
	return uids, nil
}

// FetchMessage retrieves the full raw message with the given UID. The body is
// peeked, the \Seen flag is left untouched.
func (c *StandardClient) FetchMessage(uid uint32) (*imap.Message, error) {
	if c.client == nil {
		return nil, ErrNotConnected
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchInternalDate, imap.FetchUid}

	msgs, err := drain(func(ch chan *imap.Message) error {
		return c.client.UidFetch(seqSet, items, ch)
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching message UID %d: %w", uid, err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no message retrieved for UID %d", uid)
	}
	return msgs[len(msgs)-1], nil
}

// Close logs out. Without an active connection it returns nil.
func (c *StandardClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Logout()
}

// drain runs a go-imap streaming call and collects what it sends. The call
// closes the channel when it returns.
func drain[T any](call func(chan T) error) ([]T, error) {
	ch := make(chan T, 16)
	done := make(chan error, 1)
	go func() {
		done <- call(ch)
	}()

	var out []T
	for v := range ch {
		out = append(out, v)
	}
	return out, <-done
}

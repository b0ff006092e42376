package mailstore

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockClient is a mock implementation of the IMAP client for testing
type MockClient struct {
	Mailboxes []*imap.MailboxInfo
	UIDs      map[string][]uint32
	Messages  map[uint32]string
	Selected  []string
	Since     time.Duration
	Closed    bool
}

func (m *MockClient) Connect(server string) error       { return nil }
func (m *MockClient) Login(user, password string) error { return nil }

func (m *MockClient) ListMailboxes(ref, pattern string) ([]*imap.MailboxInfo, error) {
	return m.Mailboxes, nil
}

func (m *MockClient) SelectMailbox(name string) error {
	if _, ok := m.UIDs[name]; !ok {
		return fmt.Errorf("no mailbox %q", name)
	}
	m.Selected = append(m.Selected, name)
	return nil
}

func (m *MockClient) ListUIDs(since time.Duration) ([]uint32, error) {
	m.Since = since
	return m.UIDs[m.Selected[len(m.Selected)-1]], nil
}

func (m *MockClient) FetchMessage(uid uint32) (*imap.Message, error) {
	raw, ok := m.Messages[uid]
	if !ok {
		return nil, fmt.Errorf("no message UID %d", uid)
	}
	msg := imap.NewMessage(uid, []imap.FetchItem{imap.FetchUid, imap.FetchInternalDate})
	msg.Uid = uid
	msg.InternalDate = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	msg.Body[&imap.BodySectionName{}] = bytes.NewBufferString(raw)
	return msg, nil
}

func (m *MockClient) Close() error {
	m.Closed = true
	return nil
}

func newMock() *MockClient {
	return &MockClient{
		Mailboxes: []*imap.MailboxInfo{
			{Name: "Ship Reports", Delimiter: "."},
			{Name: "Ship Reports.Affinity", Delimiter: "."},
			{Name: "Ship Reports.Poten", Delimiter: "."},
		},
		UIDs: map[string][]uint32{
			"Ship Reports.Affinity": {7, 9},
			"Ship Reports.Poten":    {11},
		},
		Messages: map[uint32]string{
			7:  plainMessage,
			9:  "Subject: no date\r\n\r\nbody\r\n",
			11: plainMessage,
		},
	}
}

func TestIMAPStore(t *testing.T) {
	ctx := context.Background()
	mock := newMock()
	s := NewIMAPStore(mock, "imap.example.com:993", "Ship Reports", 30*24*time.Hour)

	assert.Equal(t, "imap:imap.example.com:993", s.Name())

	refs, err := s.List(ctx, "Affinity")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "Ship Reports.Affinity:7", refs[0].ID)
	assert.Equal(t, 30*24*time.Hour, mock.Since)

	doc, err := s.Fetch(ctx, refs[0])
	require.NoError(t, err)
	assert.Equal(t, "Ship Reports.Affinity:7", doc.ID)
	assert.Equal(t, "Affinity", doc.Folder)
	assert.Equal(t, time.Date(2025, time.March, 2, 14, 30, 0, 0, time.UTC), doc.SentAt.UTC())

	doc, err = s.Fetch(ctx, refs[1])
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), doc.SentAt, "falls back to internal date")

	assert.Equal(t, []string{"Ship Reports.Affinity"}, mock.Selected, "mailbox selected once")

	poten, err := s.List(ctx, "Poten")
	require.NoError(t, err)
	require.Len(t, poten, 1)

	_, err = s.Fetch(ctx, refs[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Ship Reports.Affinity", "Ship Reports.Poten", "Ship Reports.Affinity"}, mock.Selected)

	_, err = s.List(ctx, "Gibson")
	assert.Error(t, err)

	_, err = s.Fetch(ctx, Ref{ID: "foreign"})
	assert.Error(t, err)

	require.NoError(t, s.Close())
	assert.True(t, mock.Closed)
}

package mailstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	imapclient "position-report-extractor/internal/imap"
	"position-report-extractor/internal/mailparse"
	"position-report-extractor/internal/models"
)

// IMAPStore reads broker folders below a root mailbox, e.g.
// "Ship Reports/Affinity". One IMAP session serves all calls, so calls are
// serialized.
type IMAPStore struct {
	mu       sync.Mutex
	client   imapclient.Client
	server   string
	root     string
	since    time.Duration
	selected string
	folders  map[string]string
}

// NewIMAPStore wraps a logged-in client. since limits listing to recent
// messages, zero lists everything.
func NewIMAPStore(client imapclient.Client, server, root string, since time.Duration) *IMAPStore {
	return &IMAPStore{
		client: client,
		server: server,
		root:   root,
		since:  since,
	}
}

// DialIMAP connects and logs in with the email settings.
func DialIMAP(cfg models.EmailConfig) (*IMAPStore, error) {
	client := imapclient.NewStandardClient(cfg.Timeout)
	if err := client.Connect(cfg.Imap); err != nil {
		return nil, err
	}
	if err := client.Login(cfg.Login, cfg.Password); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("login error: %w", err)
	}
	return NewIMAPStore(client, cfg.Imap, cfg.MailBox, cfg.Since), nil
}

func (s *IMAPStore) Name() string { return "imap:" + s.server }

// Close logs out.
func (s *IMAPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Close()
}

// mailbox resolves the server name of a broker folder using the server's
// hierarchy delimiter.
func (s *IMAPStore) mailbox(folder string) (string, error) {
	if name, ok := s.folders[folder]; ok {
		return name, nil
	}

	infos, err := s.client.ListMailboxes("", s.root+"*")
	if err != nil {
		return "", err
	}

	s.folders = make(map[string]string)
	for _, info := range infos {
		if info.Delimiter == "" || !strings.HasPrefix(info.Name, s.root+info.Delimiter) {
			continue
		}
		rest := strings.TrimPrefix(info.Name, s.root+info.Delimiter)
		s.folders[rest] = info.Name
	}

	name, ok := s.folders[folder]
	if !ok {
		return "", fmt.Errorf("mailbox %q not found under %q", folder, s.root)
	}
	return name, nil
}

func (s *IMAPStore) selectMailbox(name string) error {
	if s.selected == name {
		return nil
	}
	if err := s.client.SelectMailbox(name); err != nil {
		return err
	}
	s.selected = name
	return nil
}

// List returns the messages of a broker folder.
func (s *IMAPStore) List(ctx context.Context, folder string) ([]Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := s.mailbox(folder)
	if err != nil {
		return nil, err
	}
	if err := s.selectMailbox(name); err != nil {
		return nil, err
	}

	uids, err := s.client.ListUIDs(s.since)
	if err != nil {
		return nil, err
	}

	refs := make([]Ref, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, Ref{
			Folder:  folder,
			ID:      fmt.Sprintf("%s:%d", name, uid),
			mailbox: name,
			uid:     uid,
		})
	}
	return refs, nil
}

// Fetch downloads and parses one message.
func (s *IMAPStore) Fetch(ctx context.Context, ref Ref) (*models.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref.mailbox == "" {
		return nil, fmt.Errorf("ref %q was not listed by this store", ref.ID)
	}
	if err := s.selectMailbox(ref.mailbox); err != nil {
		return nil, err
	}

	msg, err := s.client.FetchMessage(ref.uid)
	if err != nil {
		return nil, err
	}
	doc, err := mailparse.Parse(msg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref.ID, err)
	}
	doc.ID = ref.ID
	doc.Folder = ref.Folder
	return doc, nil
}

package mailparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"position-report-extractor/internal/models"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// ErrNoBody means the message carried no readable content
var ErrNoBody = errors.New("message has no body")

var addressRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Parse converts a fetched IMAP message. The internal date is used when the
// Date header is missing.
func Parse(msg *imap.Message) (*models.RawDocument, error) {
	section := &imap.BodySectionName{}
	r := msg.GetBody(section)
	if r == nil {
		return nil, ErrNoBody
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading message UID %d: %w", msg.Uid, err)
	}

	doc, err := ParseBytes(raw)
	if err != nil {
		return nil, err
	}
	if doc.SentAt.IsZero() {
		doc.SentAt = msg.InternalDate
	}
	return doc, nil
}

// ParseBytes parses an RFC 5322 message, as stored in a .eml file
func ParseBytes(raw []byte) (*models.RawDocument, error) {
	if len(raw) == 0 {
		return nil, ErrNoBody
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("reading message header: %w", err)
	}
	defer func() {
		_ = mr.Close()
	}()

	doc := &models.RawDocument{
		TraceID: uuid.New().String(),
		Raw:     raw,
	}

	header := mr.Header

	// Extract From
	doc.From = extractEmailAddress(header.Get("From"))

	if id, err := header.MessageID(); err == nil {
		doc.MessageID = id
	}

	if date, err := header.Date(); err == nil {
		doc.SentAt = date
	}

	// Decode Subject
	decodedSubject, err := DecodeHeader(header.Get("Subject"))
	if err != nil {
		decodedSubject = header.Get("Subject")
	}
	doc.Subject = decodedSubject

	// Extract text/plain and text/html bodies, first non-empty of each wins
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("reading message part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, err := h.ContentType()
			if err != nil {
				continue
			}
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			switch contentType {
			case "text/plain":
				if strings.TrimSpace(doc.Body) == "" {
					doc.Body = string(body)
				}
			case "text/html":
				if strings.TrimSpace(doc.HTMLBody) == "" {
					doc.HTMLBody = string(body)
				}
			}
		}
	}

	return doc, nil
}

// Simple regex to extract email address from "From" header, which may contain name and email
func extractEmailAddress(fromHeader string) string {
	return addressRe.FindString(fromHeader)
}

// DecodeHeader decodes MIME-encoded headers (e.g., "=?UTF-8?B?...?=") to plain text.
// Charsets beyond UTF-8 and Latin-1, such as windows-1252, go through go-message's table.
func DecodeHeader(encoded string) (string, error) {
	decoder := &mime.WordDecoder{CharsetReader: charset.Reader}
	decoded, err := decoder.DecodeHeader(encoded)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

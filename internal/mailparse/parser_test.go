package mailparse

import (
	"strings"
	"testing"
)

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "Plain ASCII",
			input:    "Hello World",
			expected: "Hello World",
			wantErr:  false,
		},
		{
			name:     "UTF-8 encoded",
			input:    "=?UTF-8?Q?Important_:_comment_mettre_=C3=A0_jour?=",
			expected: "Important : comment mettre à jour",
			wantErr:  false,
		},
		{
			name:     "ISO-8859-1 encoded",
			input:    "=?ISO-8859-1?Q?Caf=E9?=",
			expected: "Café",
			wantErr:  false,
		},
		{
			name:     "Windows-1252 encoded",
			input:    "=?windows-1252?Q?Caf=E9_=96_West?=",
			expected: "Café – West",
			wantErr:  false,
		},
		{
			name:     "Base64 encoded",
			input:    "=?UTF-8?B?SGVsbG8gV29ybGQ=?=",
			expected: "Hello World",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHeader(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeHeader() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("DecodeHeader() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtractEmailAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple email",
			input:    "positions@broker.example.com",
			expected: "positions@broker.example.com",
		},
		{
			name:     "Email with name",
			input:    "Affinity Desk <positions@broker.example.com>",
			expected: "positions@broker.example.com",
		},
		{
			name:     "Email with quotes",
			input:    `"Poten West Desk" <positions@broker.example.com>`,
			expected: "positions@broker.example.com",
		},
		{
			name:     "No email",
			input:    "Just some text",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEmailAddress(tt.input)
			if got != tt.expected {
				t.Errorf("extractEmailAddress() = %v, want %v", got, tt.expected)
			}
		})
	}
}

const multipartMessage = "From: Affinity Desk <positions@broker.example.com>\r\n" +
	"To: chartering@example.com\r\n" +
	"Subject: =?UTF-8?Q?USG_positions_=E2=80=93_week_10?=\r\n" +
	"Date: Sun, 02 Mar 2025 14:30:00 +0800\r\n" +
	"Message-Id: <abc123@broker.example.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"USG\r\nNotes\r\nVessel A\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>USG</p>\r\n" +
	"--XYZ--\r\n"

func TestParseBytes(t *testing.T) {
	doc, err := ParseBytes([]byte(multipartMessage))
	if err != nil {
		t.Fatalf("ParseBytes() error: %v", err)
	}

	if doc.From != "positions@broker.example.com" {
		t.Errorf("From = %q", doc.From)
	}
	if doc.Subject != "USG positions – week 10" {
		t.Errorf("Subject = %q", doc.Subject)
	}
	if doc.MessageID != "abc123@broker.example.com" {
		t.Errorf("MessageID = %q", doc.MessageID)
	}
	if want := "2025-03-02T06:30:00Z"; doc.SentAt.UTC().Format("2006-01-02T15:04:05Z") != want {
		t.Errorf("SentAt = %v, want %s", doc.SentAt.UTC(), want)
	}
	if !strings.Contains(doc.Body, "Vessel A") {
		t.Errorf("Body = %q", doc.Body)
	}
	if !strings.Contains(doc.HTMLBody, "<p>USG</p>") {
		t.Errorf("HTMLBody = %q", doc.HTMLBody)
	}
	if doc.TraceID == "" {
		t.Error("Expected a trace id")
	}
	if len(doc.Raw) != len(multipartMessage) {
		t.Errorf("Raw has %d bytes, want %d", len(doc.Raw), len(multipartMessage))
	}
}

func TestParseBytes_Latin1(t *testing.T) {
	msg := "Subject: West\r\n" +
		"Content-Type: text/plain; charset=iso-8859-1\r\n" +
		"\r\n" +
		"West:\r\nVessel\tCaf\xe9\r\n"

	doc, err := ParseBytes([]byte(msg))
	if err != nil {
		t.Fatalf("ParseBytes() error: %v", err)
	}
	if !strings.Contains(doc.Body, "Café") {
		t.Errorf("Body = %q, want decoded latin-1", doc.Body)
	}
	if !doc.SentAt.IsZero() {
		t.Errorf("Expected zero SentAt without Date header, got %v", doc.SentAt)
	}
}

func TestParseBytes_Empty(t *testing.T) {
	if _, err := ParseBytes(nil); err != ErrNoBody {
		t.Errorf("ParseBytes(nil) error = %v, want ErrNoBody", err)
	}
}

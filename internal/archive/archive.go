// Package archive stores fetched messages as .eml files laid out per broker:
// <root>/<folder>/Emails/<sent>__<subject>.eml.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"position-report-extractor/internal/models"
)

const (
	// EmailsDir is the per-broker directory holding saved messages.
	EmailsDir = "Emails"
	// Ext is the extension of saved messages.
	Ext = ".eml"

	stampLayout = "2006-01-02_150405"
	maxSubject  = 120
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	blankRun    = regexp.MustCompile(`\s+`)
)

// SafeFilename turns s into a portable file name of at most limit bytes.
func SafeFilename(s string, limit int) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	s = blankRun.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .")
	if s == "" {
		s = "no_subject"
	}
	if limit > 0 && len(s) > limit {
		s = s[:limit]
		for len(s) > 0 && !validTail(s) {
			s = s[:len(s)-1]
		}
		s = strings.TrimRight(s, " .")
	}
	return s
}

// validTail reports whether s does not end inside a multi-byte rune.
func validTail(s string) bool {
	return strings.ToValidUTF8(s, "") == s
}

// Dir returns the message directory of a broker folder.
func Dir(root, folder string) string {
	return filepath.Join(root, folder, EmailsDir)
}

// Save writes the raw message to the broker's Emails directory and returns
// the path. An existing file with the same name gets a numeric suffix.
func Save(root, folder string, doc *models.RawDocument) (string, error) {
	if len(doc.Raw) == 0 {
		return "", fmt.Errorf("message %q has no raw content", doc.ID)
	}

	dir := Dir(root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	stamp := "unknown_date"
	if !doc.SentAt.IsZero() {
		stamp = doc.SentAt.Format(stampLayout)
	}
	base := stamp + "__" + SafeFilename(doc.Subject, maxSubject)

	for k := 0; ; k++ {
		name := base
		if k > 0 {
			name = fmt.Sprintf("%s__%d", base, k)
		}
		path := filepath.Join(dir, name+Ext)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", path, err)
		}

		if _, err := f.Write(doc.Raw); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing %s: %w", path, err)
		}
		return path, nil
	}
}

package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"position-report-extractor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"Plain", "USG positions", 0, "USG positions"},
		{"Reserved characters", `FW: Poten & Partners / West?`, 0, "FW_ Poten & Partners _ West_"},
		{"Whitespace", "  a \t b  ", 0, "a b"},
		{"Empty", "", 0, "no_subject"},
		{"Dots only", "...", 0, "no_subject"},
		{"Truncated", "abcdefghij", 4, "abcd"},
		{"Truncated inside rune", "abcé", 4, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.in, tt.max))
		})
	}
}

func TestSave(t *testing.T) {
	root := t.TempDir()
	doc := &models.RawDocument{
		Subject: "FW: USG positions",
		SentAt:  time.Date(2026, time.February, 27, 16, 1, 19, 0, time.UTC),
		Raw:     []byte("Subject: FW: USG positions\r\n\r\nUSG\r\n"),
	}

	first, err := Save(root, "Affinity", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Affinity", "Emails", "2026-02-27_160119__FW_ USG positions.eml"), first)

	second, err := Save(root, "Affinity", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Affinity", "Emails", "2026-02-27_160119__FW_ USG positions__1.eml"), second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, doc.Raw, data)

	_, err = Save(root, "Affinity", &models.RawDocument{ID: "x"})
	assert.Error(t, err)
}

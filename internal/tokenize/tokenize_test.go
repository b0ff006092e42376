package tokenize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCells(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Empty", input: "", expected: nil},
		{name: "Only blanks", input: "\n \n\t\n", expected: nil},
		{
			name:     "Blank separated cells",
			input:    "\n\nVessel A\n\n2016\n\n83,000\n",
			expected: []string{"Vessel A", "2016", "83,000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Cells(tt.input))
		})
	}
}

func TestCells_CosmeticWhitespaceIsIrrelevant(t *testing.T) {
	a := "Vessel A\n2016\n83,000\nABC"
	b := "  Vessel A \n\n\n\t2016\t\n \n83,000  \n\nABC\n\n"

	assert.Equal(t, Cells(a), Cells(b))
}

func TestLines(t *testing.T) {
	assert.Nil(t, Lines(""))
	assert.Equal(t, []string{"a", "", "b"}, Lines("  a \n \n\tb"))
}

func TestSplitRow(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Empty", input: "   ", expected: nil},
		{
			name:     "Tabs preferred",
			input:    "Vessel A\t84/blt16\t\t16-17 March\tOwner  Co",
			expected: []string{"Vessel A", "84/blt16", "16-17 March", "Owner  Co"},
		},
		{
			name:     "Two or more spaces",
			input:    "Vessel A   84/blt16  16-17 March  Owner Co",
			expected: []string{"Vessel A", "84/blt16", "16-17 March", "Owner Co"},
		},
		{
			name:     "Single spaces keep one cell",
			input:    "just some prose here",
			expected: []string{"just some prose here"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitRow(tt.input))
		})
	}
}

func TestSkipHeader(t *testing.T) {
	labels := []string{"Vessel", "BLT", "CBM", "OWNER"}

	tests := []struct {
		name     string
		tokens   []string
		expected []string
	}{
		{
			name:     "Full header",
			tokens:   []string{"vessel", "Blt", "CBM", "owner", "Ship A", "2016"},
			expected: []string{"Ship A", "2016"},
		},
		{
			name:     "Header without first label",
			tokens:   []string{"BLT", "CBM", "OWNER", "Ship A"},
			expected: []string{"Ship A"},
		},
		{
			name:     "Partial header",
			tokens:   []string{"Vessel", "BLT", "Ship A"},
			expected: []string{"Ship A"},
		},
		{
			name:     "No header",
			tokens:   []string{"Ship A", "2016"},
			expected: []string{"Ship A", "2016"},
		},
		{
			name:     "Header only",
			tokens:   []string{"Vessel", "BLT", "CBM", "OWNER"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SkipHeader(tt.tokens, labels))
		})
	}
}

func TestTruncate(t *testing.T) {
	stop := regexp.MustCompile(`(?i)^regards,?$`)

	assert.Equal(t, []string{"a", "b"}, Truncate([]string{"a", "b", "Regards,", "c"}, stop))
	assert.Equal(t, []string{"a"}, Truncate([]string{"a"}, nil))
}

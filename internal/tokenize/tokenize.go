// Package tokenize turns a located section into ordered, trimmed tokens.
package tokenize

import (
	"regexp"
	"strings"
)

var (
	tabRun   = regexp.MustCompile(`\t+`)
	spaceRun = regexp.MustCompile(`\s{2,}`)
)

// Cells splits text on newlines and keeps the non-empty trimmed lines. Used
// when every table cell sits on its own line.
func Cells(text string) []string {
	var cells []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			cells = append(cells, s)
		}
	}
	return cells
}

// Lines splits text on newlines and trims each line, keeping blank ones so
// callers can react to blank runs.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	return lines
}

// SplitRow splits one delimited row. Tabs win when present, otherwise runs of
// two or more spaces separate the columns.
func SplitRow(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	sep := spaceRun
	if strings.Contains(line, "\t") {
		sep = tabRun
	}

	var parts []string
	for _, p := range sep.Split(line, -1) {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// SkipHeader drops a stacked run of column labels from the front of tokens.
// The run may begin at any label (some sources omit the first one) and is
// consumed greedily while tokens keep matching the label sequence,
// case-insensitively.
func SkipHeader(tokens, labels []string) []string {
	if len(tokens) == 0 || len(labels) == 0 {
		return tokens
	}

	offset := -1
	for k, label := range labels {
		if strings.EqualFold(tokens[0], label) {
			offset = k
			break
		}
	}
	if offset < 0 {
		return tokens
	}

	i := 0
	for k := offset; k < len(labels) && i < len(tokens); k++ {
		if !strings.EqualFold(tokens[i], labels[k]) {
			break
		}
		i++
	}
	return tokens[i:]
}

// Truncate cuts tokens at the first one matching stop.
func Truncate(tokens []string, stop *regexp.Regexp) []string {
	if stop == nil {
		return tokens
	}
	for i, tok := range tokens {
		if stop.MatchString(tok) {
			return tokens[:i]
		}
	}
	return tokens
}

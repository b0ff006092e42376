package section

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNotFound means the document holds no section for the locator. It is an
// expected outcome, callers skip the document.
var ErrNotFound = errors.New("section not found")

// Anchor marks the start of a section. Strict is tried first, Loose only when
// Strict does not match. Either may be nil. Accept, when set, rejects matches
// and the search goes on with the next one.
type Anchor struct {
	Strict *regexp.Regexp
	Loose  *regexp.Regexp
	Accept func(match string) bool
}

// PhraseAnchor builds an anchor for a literal phrase. The strict form requires
// the phrase alone on its line, the loose form finds it anywhere.
func PhraseAnchor(phrase string, strictOnly bool) Anchor {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return Anchor{}
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}

	a := Anchor{
		Strict: regexp.MustCompile(`(?im)^[ \t]*` + strings.Join(quoted, `[ \t]+`) + `[ \t]*$`),
	}
	if strictOnly {
		return a
	}

	loose := strings.Join(quoted, `\s+`)
	first, _ := utf8.DecodeRuneInString(words[0])
	if isWord(first) {
		loose = `\b` + loose
	}
	last, _ := utf8.DecodeLastRuneInString(words[len(words)-1])
	if isWord(last) {
		loose += `\b`
	}
	a.Loose = regexp.MustCompile(`(?i)` + loose)
	return a
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// find returns the match span of the anchor in text.
func (a Anchor) find(text string) (start, end int, ok bool) {
	for _, re := range []*regexp.Regexp{a.Strict, a.Loose} {
		if re == nil {
			continue
		}
		if a.Accept == nil {
			if loc := re.FindStringIndex(text); loc != nil {
				return loc[0], loc[1], true
			}
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if a.Accept(text[loc[0]:loc[1]]) {
				return loc[0], loc[1], true
			}
		}
	}
	return 0, 0, false
}

// Window is the located section text plus the text each anchor matched.
type Window struct {
	Text    string
	Matches []string
}

// Locator finds a section using one or more anchors applied in sequence, each
// searched after the previous match. MaxWindow, when positive, caps the text
// considered after the first anchor.
type Locator struct {
	Anchors   []Anchor
	MaxWindow int
}

// Locate returns the text following the last anchor. All anchors must match,
// otherwise ErrNotFound is returned.
func (l Locator) Locate(text string) (Window, error) {
	if len(l.Anchors) == 0 || strings.TrimSpace(text) == "" {
		return Window{}, ErrNotFound
	}

	rest := text
	matches := make([]string, 0, len(l.Anchors))
	for i, anchor := range l.Anchors {
		start, end, ok := anchor.find(rest)
		if !ok {
			return Window{}, ErrNotFound
		}
		matches = append(matches, rest[start:end])
		rest = rest[end:]
		if i == 0 && l.MaxWindow > 0 && len(rest) > l.MaxWindow {
			rest = rest[:l.MaxWindow]
		}
	}

	return Window{Text: rest, Matches: matches}, nil
}

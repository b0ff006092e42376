package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	scriptTag     = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleTag      = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	brTag         = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphEnd  = regexp.MustCompile(`(?i)</p\s*>`)
	anyTag        = regexp.MustCompile(`(?s)<[^>]*>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

var punctuation = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
	"\u2013", "-",
	"\u2014", "-",
)

// Normalize canonicalizes line endings to LF, non-breaking spaces to plain
// spaces and en/em dashes to ASCII hyphens. It never fails.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return punctuation.Replace(norm.NFC.String(raw))
}

// HTMLToText degrades an HTML body to plain text. Script and style blocks are
// dropped with their content, <br> and </p> become newlines and every other
// tag is removed. Only &nbsp; and &amp; are decoded.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}
	html = scriptTag.ReplaceAllString(html, " ")
	html = styleTag.ReplaceAllString(html, " ")
	html = brTag.ReplaceAllString(html, "\n")
	html = paragraphEnd.ReplaceAllString(html, "\n")
	html = anyTag.ReplaceAllString(html, " ")
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = multiSpaces.ReplaceAllString(html, " ")
	html = multiNewlines.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html)
}

// Body returns the normalized plain body, falling back to the de-tagged HTML
// body when the plain one is empty or whitespace only.
func Body(plain, html string) string {
	body := strings.TrimSpace(Normalize(plain))
	if body != "" {
		return body
	}
	return Normalize(HTMLToText(html))
}

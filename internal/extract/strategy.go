package extract

import (
	"regexp"
	"strings"

	"position-report-extractor/internal/assemble"
	"position-report-extractor/internal/models"
	"position-report-extractor/internal/tokenize"
)

// Strategy parses a located section into rows of named values.
type Strategy interface {
	Name() string
	Parse(window string) [][]models.Field
}

// vertical reads one cell per line and groups cells with the record assembler.
type vertical struct {
	schema assemble.Schema
	header []string
	cutoff *regexp.Regexp
}

func (v *vertical) Name() string { return "vertical" }

func (v *vertical) Parse(window string) [][]models.Field {
	tokens := tokenize.Cells(window)
	tokens = tokenize.Truncate(tokens, v.cutoff)
	tokens = tokenize.SkipHeader(tokens, v.header)

	names := v.schema.Names()
	var rows [][]models.Field
	for _, row := range assemble.Assemble(tokens, v.schema) {
		fields := make([]models.Field, len(names))
		for k, name := range names {
			fields[k] = models.Field{Name: name, Value: row[k]}
		}
		rows = append(rows, fields)
	}
	return rows
}

// delimited reads one record per line, columns split by tabs or wide gaps.
// Short rows are padded and overflow is merged into the last column.
type delimited struct {
	fields   []assemble.Field
	stop     *regexp.Regexp
	minParts int
}

func (d *delimited) Name() string { return "delimited" }

func (d *delimited) Parse(window string) [][]models.Field {
	n := len(d.fields)
	var rows [][]models.Field
	for _, ln := range tokenize.Lines(window) {
		if ln == "" {
			continue
		}
		if d.stop != nil && d.stop.MatchString(ln) {
			break
		}

		parts := tokenize.SplitRow(ln)
		if len(parts) < d.minParts {
			continue
		}
		switch {
		case len(parts) > n:
			parts = append(parts[:n-1:n-1], strings.Join(parts[n-1:], " "))
		case len(parts) < n:
			parts = append(parts, make([]string, n-len(parts))...)
		}

		row, ok := d.row(parts)
		if ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func (d *delimited) row(parts []string) ([]models.Field, bool) {
	row := make([]models.Field, len(d.fields))
	for k, f := range d.fields {
		if f.Valid != nil && !f.Valid(parts[k]) {
			return nil, false
		}
		v := parts[k]
		if f.Clean != nil {
			v = f.Clean(v)
		}
		row[k] = models.Field{Name: f.Name, Value: v}
	}
	return row, true
}

// patternField maps a named regexp group to a record field.
type patternField struct {
	name  string
	group int
	clean func(string) string
}

// pattern matches whole lines against a regexp with named groups. A row
// begins at a line matching start (or the row regexp itself when start is
// nil); with continuation, the following non-row lines are wrapped text of
// the previous row.
type pattern struct {
	re           *regexp.Regexp
	start        *regexp.Regexp
	continuation bool
	maxBlankRun  int
	missLimit    int
	stop         *regexp.Regexp
	stopUnless   *regexp.Regexp
	fields       []patternField
	rawField     string
}

func (p *pattern) Name() string { return "pattern" }

func (p *pattern) Parse(window string) [][]models.Field {
	var rows [][]models.Field
	for _, ln := range p.collect(window) {
		m := p.re.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		row := make([]models.Field, 0, len(p.fields)+1)
		for _, f := range p.fields {
			v := strings.TrimSpace(m[f.group])
			if f.clean != nil {
				v = f.clean(v)
			}
			row = append(row, models.Field{Name: f.name, Value: v})
		}
		if p.rawField != "" {
			row = append(row, models.Field{Name: p.rawField, Value: ln})
		}
		rows = append(rows, row)
	}
	return rows
}

// collect returns the candidate row lines of the window.
func (p *pattern) collect(window string) []string {
	begins := p.re
	if p.start != nil {
		begins = p.start
	}

	var out []string
	started := false
	blanks, misses := 0, 0
	for _, ln := range tokenize.Lines(window) {
		if ln == "" {
			if started {
				blanks++
				if p.maxBlankRun > 0 && blanks >= p.maxBlankRun {
					break
				}
			}
			continue
		}
		if started && p.stop != nil && p.stop.MatchString(ln) &&
			(p.stopUnless == nil || !p.stopUnless.MatchString(ln)) {
			break
		}

		if begins.MatchString(ln) {
			started = true
			blanks, misses = 0, 0
			out = append(out, ln)
			continue
		}
		if !started {
			continue
		}
		if p.continuation && len(out) > 0 {
			out[len(out)-1] += " " + ln
			continue
		}
		misses++
		if p.missLimit > 0 && misses >= p.missLimit {
			break
		}
	}
	return out
}

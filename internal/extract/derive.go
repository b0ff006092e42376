package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"position-report-extractor/internal/daterange"
	"position-report-extractor/internal/models"
)

// Derivation adds computed fields to a record after parsing.
type Derivation func(r *models.Record)

var (
	sizeBuilt = regexp.MustCompile(`(?i)^\s*(\d{2,3})\s*/\s*(?:blt|btl)\s*(\d{2,4})\s*$`)
	parens    = regexp.MustCompile(`\((.*?)\)`)
)

func compileDerivation(dc models.DeriveConfig) (Derivation, error) {
	if dc.Field == "" {
		return nil, fmt.Errorf("%w: derive %q without field", ErrMalformed, dc.Kind)
	}

	switch dc.Kind {
	case "dateRange":
		as := dc.As
		if as == "" {
			as = dc.Field
		}
		return func(r *models.Record) { deriveDateRange(r, dc.Field, as) }, nil

	case "number":
		as := dc.As
		if as == "" {
			as = dc.Field + "_num"
		}
		return func(r *models.Record) {
			r.Set(as, parseNumber(r.Text(dc.Field), dc.ScaleBelow, dc.Scale))
		}, nil

	case "sizeBuilt":
		return func(r *models.Record) { deriveSizeBuilt(r, dc.Field) }, nil

	case "parenNotes":
		as := dc.As
		if as == "" {
			as = "Notes"
		}
		return func(r *models.Record) { deriveParenNotes(r, dc.Field, as) }, nil
	}

	return nil, fmt.Errorf("%w: unknown derivation %q", ErrMalformed, dc.Kind)
}

// reference is the date the record's schedule is relative to.
func reference(r *models.Record) time.Time {
	if !r.ReportDate.IsZero() {
		return r.ReportDate
	}
	return r.SentAt
}

func deriveDateRange(r *models.Record, field, as string) {
	rng := daterange.Resolve(r.Text(field), reference(r))
	if !rng.OK() {
		r.Set(as+" Start", nil)
		r.Set(as+" End", nil)
		r.Set(as+" Midpoint", nil)
		return
	}
	r.Set(as+" Start", rng.Start)
	r.Set(as+" End", rng.End)
	r.Set(as+" Midpoint", rng.Midpoint)
}

// parseNumber reads a thousands-grouped number. Placeholders give nil. Values
// below scaleBelow are multiplied by scale (83 meaning 83,000).
func parseNumber(s string, scaleBelow, scale float64) any {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	switch s {
	case "", "-", "*":
		return nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if scaleBelow > 0 && scale > 0 && x < scaleBelow {
		x *= scale
	}
	return x
}

func deriveSizeBuilt(r *models.Record, field string) {
	m := sizeBuilt.FindStringSubmatch(r.Text(field))
	if m == nil {
		r.Set("Size_kcbm", nil)
		r.Set("Built_year", nil)
		return
	}

	size, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		if year <= 29 {
			year += 2000
		} else {
			year += 1900
		}
	}
	r.Set("Size_kcbm", size)
	r.Set("Built_year", year)
}

// deriveParenNotes moves parenthesised remarks out of field into as.
func deriveParenNotes(r *models.Record, field, as string) {
	v := r.Text(field)

	var notes []string
	for _, m := range parens.FindAllStringSubmatch(v, -1) {
		if n := strings.TrimSpace(m[1]); n != "" {
			notes = append(notes, n)
		}
	}

	v = parens.ReplaceAllString(v, "")
	v = spaces.ReplaceAllString(strings.TrimSpace(v), " ")
	v = strings.TrimSpace(strings.TrimRight(v, " -"))

	r.Set(field, v)
	r.Set(as, strings.Join(notes, "; "))
}

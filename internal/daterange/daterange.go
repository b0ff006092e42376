// Package daterange turns loose schedule expressions such as "14-20 Mar",
// "3 Apr", "28 Mar - 2 Apr" or "Late Feb" into concrete date ranges.
package daterange

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"position-report-extractor/internal/textnorm"
)

// Range is a resolved date range. All three values are zero when the
// expression could not be resolved.
type Range struct {
	Start    time.Time
	End      time.Time
	Midpoint time.Time
}

// OK reports whether the range was resolved.
func (r Range) OK() bool {
	return !r.Start.IsZero()
}

var (
	dayRange   = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})\s*([A-Za-z]+)\.?$`)
	crossMonth = regexp.MustCompile(`^(\d{1,2})\s*([A-Za-z]+)\.?\s*-\s*(\d{1,2})\s*([A-Za-z]+)\.?$`)
	singleDay  = regexp.MustCompile(`^(\d{1,2})\s*([A-Za-z]+)\.?$`)
	bucket     = regexp.MustCompile(`(?i)^(early|mid|late|end)[\s-]+([A-Za-z]+)\.?$`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// bucket day spans; 0 as upper bound means the last day of the month.
var buckets = map[string][2]int{
	"early": {1, 10},
	"mid":   {11, 20},
	"late":  {21, 0},
	"end":   {21, 0},
}

// Resolve parses expr against the reference time. A zero ref means no
// reference and the current year is used.
func Resolve(expr string, ref time.Time) Range {
	return ResolveAt(expr, ref, time.Now())
}

// ResolveAt is Resolve with an explicit processing time.
func ResolveAt(expr string, ref, now time.Time) Range {
	s := strings.TrimSpace(textnorm.Normalize(expr))
	if s == "" {
		return Range{}
	}

	if m := dayRange.FindStringSubmatch(s); m != nil {
		month, ok := parseMonth(m[3])
		if !ok {
			return Range{}
		}
		year := inferYear(month, ref, now)
		start, ok1 := date(year, month, atoi(m[1]))
		end, ok2 := date(year, month, atoi(m[2]))
		if !ok1 || !ok2 {
			return Range{}
		}
		return span(start, end)
	}

	if m := crossMonth.FindStringSubmatch(s); m != nil {
		m1, ok1 := parseMonth(m[2])
		m2, ok2 := parseMonth(m[4])
		if !ok1 || !ok2 {
			return Range{}
		}
		start, ok1 := date(inferYear(m1, ref, now), m1, atoi(m[1]))
		end, ok2 := date(start.Year(), m2, atoi(m[3]))
		if !ok1 || !ok2 {
			return Range{}
		}
		if end.Before(start) {
			if end, ok2 = date(start.Year()+1, m2, atoi(m[3])); !ok2 {
				return Range{}
			}
		}
		return span(start, end)
	}

	if m := singleDay.FindStringSubmatch(s); m != nil {
		month, ok := parseMonth(m[2])
		if !ok {
			return Range{}
		}
		d, ok := date(inferYear(month, ref, now), month, atoi(m[1]))
		if !ok {
			return Range{}
		}
		return Range{Start: d, End: d, Midpoint: d}
	}

	if m := bucket.FindStringSubmatch(s); m != nil {
		month, ok := parseMonth(m[2])
		if !ok {
			return Range{}
		}
		year := inferYear(month, ref, now)
		days := buckets[strings.ToLower(m[1])]
		last := daysIn(year, month)
		hi := days[1]
		if hi == 0 || hi > last {
			hi = last
		}
		start, _ := date(year, month, days[0])
		end, _ := date(year, month, hi)
		return span(start, end)
	}

	return Range{}
}

func span(start, end time.Time) Range {
	if end.Before(start) {
		return Range{}
	}
	return Range{Start: start, End: end, Midpoint: start.Add(end.Sub(start) / 2)}
}

func parseMonth(s string) (time.Month, bool) {
	m, ok := months[strings.ToLower(s)]
	return m, ok
}

// inferYear applies the December to January rollover.
func inferYear(month time.Month, ref, now time.Time) int {
	if ref.IsZero() {
		return now.Year()
	}
	if ref.Month() == time.December && month == time.January {
		return ref.Year() + 1
	}
	return ref.Year()
}

// date builds a UTC date, refusing days outside the month.
func date(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > daysIn(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

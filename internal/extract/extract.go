// Package extract runs the per-source pipeline on one document: normalize,
// locate the section, try each parse strategy in rank order and derive the
// computed columns.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"position-report-extractor/internal/models"
	"position-report-extractor/internal/section"
	"position-report-extractor/internal/textnorm"
)

// Parse runs the strategies in order and returns the rows of the first one
// producing any, with its name. No rows gives an empty name.
func (s *Source) Parse(window string) ([][]models.Field, string) {
	for _, st := range s.Strategies {
		if rows := st.Parse(window); len(rows) > 0 {
			return rows, st.Name()
		}
	}
	return nil, ""
}

// Extract returns the records of doc for src. A document without the
// section gives section.ErrNotFound; a located section without rows gives no
// records and no error.
func Extract(doc *models.RawDocument, src *Source) ([]models.Record, error) {
	text := textnorm.Body(doc.Body, doc.HTMLBody)
	if strings.TrimSpace(text) == "" {
		return nil, section.ErrNotFound
	}

	win, err := src.Locator.Locate(text)
	if err != nil {
		return nil, err
	}

	rows, _ := src.Parse(win.Text)
	if len(rows) == 0 {
		return nil, nil
	}

	report := reportDate(src.Reference, win.Matches)
	records := make([]models.Record, 0, len(rows))
	for _, fields := range rows {
		rec := models.Record{
			Broker:     src.Name,
			Origin:     doc.ID,
			SentAt:     doc.SentAt,
			ReportDate: report,
			Fields:     fields,
		}
		for _, d := range src.Derive {
			d(&rec)
		}
		records = append(records, rec)
	}
	return records, nil
}

// reportDate reads a day/month/year date from the anchor matches.
func reportDate(re *regexp.Regexp, matches []string) time.Time {
	if re == nil {
		return time.Time{}
	}
	for _, m := range matches {
		sub := re.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		d, _ := strconv.Atoi(sub[re.SubexpIndex("day")])
		mo, _ := strconv.Atoi(sub[re.SubexpIndex("month")])
		y, _ := strconv.Atoi(sub[re.SubexpIndex("year")])
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		if mo < 1 || mo > 12 || t.Day() != d {
			continue
		}
		return t
	}
	return time.Time{}
}

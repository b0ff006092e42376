// Package sink writes extracted records as flat tables.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"position-report-extractor/internal/archive"
	"position-report-extractor/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the records.
const SheetName = "Positions"

// Columns orders the table columns: the prefix names that occur in rows,
// then every other name in first-seen order.
func Columns(prefix []string, rows [][]models.Field) []string {
	present := make(map[string]bool)
	var seen []string
	for _, row := range rows {
		for _, f := range row {
			if !present[f.Name] {
				present[f.Name] = true
				seen = append(seen, f.Name)
			}
		}
	}

	cols := make([]string, 0, len(seen))
	used := make(map[string]bool, len(seen))
	for _, name := range prefix {
		if present[name] && !used[name] {
			used[name] = true
			cols = append(cols, name)
		}
	}
	for _, name := range seen {
		if !used[name] {
			used[name] = true
			cols = append(cols, name)
		}
	}
	return cols
}

// XLSXWriter writes one workbook per source. Writes are serialized.
type XLSXWriter struct {
	mu         sync.Mutex
	dir        string
	nameFormat string
	loc        *time.Location
}

// NewXLSXWriter returns a writer placing files in dir. nameFormat receives
// the source name, e.g. "%s_Positions.xlsx".
func NewXLSXWriter(dir, nameFormat string, loc *time.Location) *XLSXWriter {
	if nameFormat == "" {
		nameFormat = "%s_Positions.xlsx"
	}
	return &XLSXWriter{dir: dir, nameFormat: nameFormat, loc: loc}
}

// Path returns the workbook path of a source.
func (w *XLSXWriter) Path(name string) string {
	return filepath.Join(w.dir, archive.SafeFilename(fmt.Sprintf(w.nameFormat, name), 0))
}

// Write replaces the workbook of source name with recs and returns its path.
func (w *XLSXWriter) Write(name string, prefix []string, recs []models.Record) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := make([][]models.Field, len(recs))
	for i := range recs {
		rows[i] = recs[i].Flatten(w.loc)
	}
	cols := Columns(prefix, rows)

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	for r, row := range rows {
		values := make([]interface{}, len(cols))
		for _, fld := range row {
			values[index[fld.Name]] = cellValue(fld.Value)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return "", fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	if len(cols) > 0 {
		last, err := excelize.CoordinatesToCellName(len(cols), len(rows)+1)
		if err != nil {
			return "", err
		}
		if err := f.AutoFilter(SheetName, "A1:"+last, nil); err != nil {
			return "", fmt.Errorf("adding filter: %w", err)
		}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", w.dir, err)
	}
	path := w.Path(name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

func cellValue(v any) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return t
	default:
		return t
	}
}

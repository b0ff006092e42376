package sink

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"position-report-extractor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fields(names ...string) []models.Field {
	out := make([]models.Field, len(names))
	for i, n := range names {
		out[i] = models.Field{Name: n, Value: n}
	}
	return out
}

func TestColumns(t *testing.T) {
	rows := [][]models.Field{
		fields("Vessel", "CBM", "Extra"),
		fields("Vessel", "Notes", "CBM", "Late"),
	}

	got := Columns([]string{"Broker", "Notes", "Vessel"}, rows)
	assert.Equal(t, []string{"Notes", "Vessel", "CBM", "Extra", "Late"}, got)

	assert.Empty(t, Columns([]string{"Vessel"}, nil))
}

func TestXLSXWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewXLSXWriter(dir, "%s_Positions.xlsx", time.UTC)

	sent := time.Date(2025, time.March, 2, 14, 30, 0, 0, time.UTC)
	recs := []models.Record{
		{
			Broker: "Affinity",
			Origin: "a.eml",
			SentAt: sent,
			Fields: []models.Field{
				{Name: "Vessel", Value: "Vessel A"},
				{Name: "CBM_num", Value: 83000.0},
				{Name: "ETA Start", Value: nil},
			},
		},
		{
			Broker: "Affinity",
			Origin: "b.eml",
			SentAt: sent,
			Fields: []models.Field{
				{Name: "Vessel", Value: "Vessel B"},
				{Name: "Notes", Value: "subs"},
			},
		},
	}

	path, err := w.Write("Affinity", []string{"Vessel", models.ColBroker}, recs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Affinity_Positions.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Vessel", "Broker", "Email Sent Date", "Email File", "CBM_num", "ETA Start", "Notes"}, rows[0])
	assert.Equal(t, "Vessel A", rows[1][0])
	assert.Equal(t, "2025-03-02 14:30:00", rows[1][2])
	assert.Equal(t, "83000", rows[1][4])
	assert.Equal(t, "subs", rows[2][6])
}

func TestXLSXWriter_Concurrent(t *testing.T) {
	w := NewXLSXWriter(t.TempDir(), "", time.UTC)
	recs := []models.Record{{Broker: "X", Fields: fields("Vessel")}}

	var wg sync.WaitGroup
	for _, name := range []string{"Affinity", "Poten", "Gibson", "Fearnleys"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := w.Write(name, nil, recs)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()
}

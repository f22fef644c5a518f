package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

func TestWriteStatsXLSX(t *testing.T) {
	stats := model.Statistics{
		TotalSessions:     4,
		SessionsWithEdits: 1,
		TotalEdits:        3,
		EditsByField: map[string]int{
			"address":      2,
			"serialNumber": 1,
		},
	}

	path := filepath.Join(t.TempDir(), "stats.xlsx")
	require.NoError(t, writeStatsXLSX(stats, path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	summary := f.Sheets[0]
	assert.Equal(t, "Summary", summary.Name)
	assert.Equal(t, "Total Sessions", summary.Rows[0].Cells[0].Value)
	n, err := summary.Rows[0].Cells[1].Int()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	fields := f.Sheets[1]
	assert.Equal(t, "Edits By Field", fields.Name)
	require.Len(t, fields.Rows, 3)
	// Sorted by edit count, descending.
	assert.Equal(t, "address", fields.Rows[1].Cells[0].Value)
	assert.Equal(t, "serialNumber", fields.Rows[2].Cells[0].Value)
}

func TestWriteStatsXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	require.NoError(t, writeStatsXLSX(model.Statistics{}, path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	// Header only, no field rows.
	assert.Len(t, f.Sheets[1].Rows, 1)
}

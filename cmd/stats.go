package main

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
	"github.com/supreme-sprinklers/backflow-cli/internal/tracking"
)

var statsXLSX string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report extraction accuracy from recorded edit sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		tracker := tracking.NewTracker(st)
		stats, err := tracker.Statistics(ctx)
		if err != nil {
			return eris.Wrap(err, "load statistics")
		}

		if statsXLSX != "" {
			if err := writeStatsXLSX(stats, statsXLSX); err != nil {
				return eris.Wrap(err, "export xlsx")
			}
			zap.L().Info("statistics exported", zap.String("path", statsXLSX))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(statsReport{
			Statistics: stats,
			Accuracy:   stats.Accuracy(),
		})
	},
}

type statsReport struct {
	model.Statistics
	Accuracy float64 `json:"accuracy_pct"`
}

// writeStatsXLSX writes a two-sheet workbook: a summary and a per-field
// edit breakdown sorted by edit count.
func writeStatsXLSX(stats model.Statistics, path string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	addRow(summary, "Total Sessions", stats.TotalSessions)
	addRow(summary, "Sessions With Edits", stats.SessionsWithEdits)
	addRow(summary, "Total Edits", stats.TotalEdits)
	row := summary.AddRow()
	row.AddCell().Value = "Accuracy %"
	row.AddCell().SetFloatWithFormat(stats.Accuracy(), "0.0")

	fields, err := f.AddSheet("Edits By Field")
	if err != nil {
		return eris.Wrap(err, "xlsx: add field sheet")
	}
	header := fields.AddRow()
	header.AddCell().Value = "Field"
	header.AddCell().Value = "Edits"

	names := make([]string, 0, len(stats.EditsByField))
	for name := range stats.EditsByField {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats.EditsByField[names[i]] != stats.EditsByField[names[j]] {
			return stats.EditsByField[names[i]] > stats.EditsByField[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		row := fields.AddRow()
		row.AddCell().Value = name
		row.AddCell().SetInt(stats.EditsByField[name])
	}

	return eris.Wrap(f.Save(path), "xlsx: save")
}

func addRow(sheet *xlsx.Sheet, label string, value int) {
	row := sheet.AddRow()
	row.AddCell().Value = label
	row.AddCell().SetInt(value)
}

func init() {
	statsCmd.Flags().StringVar(&statsXLSX, "xlsx", "", "also export the report as an XLSX workbook")
	rootCmd.AddCommand(statsCmd)
}

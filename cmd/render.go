package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

var (
	renderRecord string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fill the NEWWA certificate form from an inspection record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		record, err := readRecord(renderRecord)
		if err != nil {
			return err
		}

		renderer := initRenderer()
		doc, err := renderer.Render(ctx, record)
		if err != nil {
			return eris.Wrap(err, "render certificate")
		}
		defer doc.Release()

		if err := doc.Download.WriteFile(renderOut); err != nil {
			return eris.Wrap(err, "write certificate")
		}

		zap.L().Info("certificate written",
			zap.String("path", renderOut),
			zap.String("address", record.Address),
		)
		return nil
	},
}

func readRecord(path string) (model.InspectionRecord, error) {
	var record model.InspectionRecord
	raw, err := os.ReadFile(path)
	if err != nil {
		return record, eris.Wrap(err, "read record")
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, eris.Wrap(err, "parse record")
	}
	return record, nil
}

func init() {
	renderCmd.Flags().StringVar(&renderRecord, "record", "", "inspection record JSON (required)")
	renderCmd.Flags().StringVar(&renderOut, "out", "certificate.pdf", "output PDF path")
	_ = renderCmd.MarkFlagRequired("record")
	rootCmd.AddCommand(renderCmd)
}

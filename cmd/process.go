package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/capture"
	"github.com/supreme-sprinklers/backflow-cli/internal/extract"
	"github.com/supreme-sprinklers/backflow-cli/internal/model"
	"github.com/supreme-sprinklers/backflow-cli/internal/tracking"
)

var (
	processImage string
	processCrop  bool
	processOut   string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract inspection data from a test sheet photo",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(processImage)
		if err != nil {
			return eris.Wrap(err, "read image")
		}

		img, err := capture.Normalize(raw, "")
		if err != nil {
			return eris.Wrap(err, "normalize image")
		}

		crop := processCrop || cfg.Capture.Crop
		if crop {
			img, err = capture.CropFrame(img)
			if err != nil {
				return eris.Wrap(err, "crop image")
			}
		}

		extractor, err := initExtractor()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		record, err := processFrame(ctx, extractor, tracking.NewTracker(st), img)
		if err != nil {
			return err
		}

		for _, issue := range record.Validate() {
			zap.L().Warn("field needs review",
				zap.String("field", issue.Field),
				zap.String("message", issue.Message),
			)
		}

		out := os.Stdout
		if processOut != "" {
			f, err := os.Create(processOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

// processFrame runs extraction and books a tracking session around it, so
// an uncorrected CLI run still lands in the accuracy denominator as a
// zero-edit session.
func processFrame(ctx context.Context, extractor *extract.Extractor, tracker *tracking.Tracker, img capture.NormalizedImage) (model.InspectionRecord, error) {
	fields, err := extractor.Extract(ctx, img)
	if err != nil {
		return model.InspectionRecord{}, eris.Wrap(err, "extract fields")
	}

	tracker.StartTracking(fields.Fields())
	record := model.InspectionRecord{}.Apply(fields)
	tracker.StopTracking(ctx)

	return record, nil
}

func init() {
	processCmd.Flags().StringVar(&processImage, "image", "", "inspection sheet photo (required)")
	processCmd.Flags().BoolVar(&processCrop, "crop", false, "crop to the camera guide band before extraction")
	processCmd.Flags().StringVar(&processOut, "out", "", "write the record JSON to a file instead of stdout")
	_ = processCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(processCmd)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/supreme-sprinklers/backflow-cli/internal/email"
)

var (
	emailRecord string
	emailTo     string
	emailName   string
	emailOutDir string
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Render the certificate and compose the handoff email",
	Long:  "Renders the certificate for an inspection record, saves the PDF for manual attachment, and prints a mailto URI for the default mail client.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		record, err := readRecord(emailRecord)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		renderer := initRenderer()
		doc, err := renderer.Render(ctx, record)
		if err != nil {
			return eris.Wrap(err, "render certificate")
		}
		defer doc.Release()

		outDir := emailOutDir
		if outDir == "" {
			outDir = cfg.Email.OutputDir
		}

		svc := email.NewService(st)
		msg, err := svc.Compose(ctx, email.ComposeRequest{
			To:              emailTo,
			RecipientName:   emailName,
			PropertyAddress: record.Address,
			Document:        doc.Download,
			OutputDir:       outDir,
		})
		if err != nil {
			return eris.Wrap(err, "compose email")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "To:         %s\n", msg.To)
		fmt.Fprintf(out, "Subject:    %s\n", msg.Subject)
		fmt.Fprintf(out, "Attachment: %s\n", msg.AttachmentPath)
		fmt.Fprintln(out, msg.MailtoURI)
		return nil
	},
}

func init() {
	emailCmd.Flags().StringVar(&emailRecord, "record", "", "inspection record JSON (required)")
	emailCmd.Flags().StringVar(&emailTo, "to", "", "recipient address (default: configured office email)")
	emailCmd.Flags().StringVar(&emailName, "name", "Water Department", "recipient name used in the subject and body")
	emailCmd.Flags().StringVar(&emailOutDir, "out-dir", "", "directory for the saved certificate (default from config)")
	_ = emailCmd.MarkFlagRequired("record")
	rootCmd.AddCommand(emailCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supreme-sprinklers/backflow-cli/internal/email"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
}

var settingsEmailCmd = &cobra.Command{
	Use:   "email [address]",
	Short: "Show or set the default office recipient",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := email.NewService(st)

		if len(args) == 1 {
			if err := svc.SetDefaultOfficeEmail(ctx, args[0]); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), svc.DefaultOfficeEmail(ctx))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsEmailCmd)
	rootCmd.AddCommand(settingsCmd)
}

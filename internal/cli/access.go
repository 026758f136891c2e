package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewAccessCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Manual access log entries",
	}

	cmd.AddCommand(newAccessLogCommand(app))
	return cmd
}

func newAccessLogCommand(app *App) *cobra.Command {
	var (
		allowed bool
		notes   string
	)

	cmd := &cobra.Command{
		Use:   "log <plate>",
		Short: "Append a manual access decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			ok, err := svc.access.RegisterAccess(cmd.Context(), args[0], allowed, notes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged: plate is not registered")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged")
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowed, "allowed", false, "Record the access as allowed")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	return cmd
}

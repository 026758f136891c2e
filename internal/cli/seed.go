package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/db"
)

func NewSeedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample employees and vehicles (dev only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfg.Env != "dev" {
				return errors.New("seed is only available when env is dev")
			}

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := db.SeedDev(cmd.Context(), svc.writer); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seeded sample employees and vehicles")
			return nil
		},
	}
}

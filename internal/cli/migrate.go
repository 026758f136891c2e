package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/db"
)

func NewMigrateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply the embedded schema migrations or show which ones are applied.`,
	}

	cmd.AddCommand(
		newMigrateUpCommand(app),
		newMigrateStatusCommand(app),
	)

	return cmd
}

func newMigrateUpCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts := app.cfg.DatabaseOptions()
			opts.SkipMigrate = true

			conn, err := db.Open(ctx, opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			app.log.Info("running up migrations", "db", opts.Path, "environment", app.cfg.Env)

			applied, err := db.Migrate(ctx, conn)
			if err != nil {
				app.log.Error("migration failed", "error", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func newMigrateStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts := app.cfg.DatabaseOptions()
			opts.SkipMigrate = true

			conn, err := db.Open(ctx, opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			states, err := db.Status(ctx, conn)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tNAME\tSTATE\tAPPLIED AT")
			for _, s := range states {
				state, at := "pending", "-"
				if s.Applied {
					state = "applied"
					if !s.AppliedAt.IsZero() {
						at = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, s.Name, state, at)
			}
			return tw.Flush()
		},
	}
}

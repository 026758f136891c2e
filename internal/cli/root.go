package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the command tree with args. The log output is closed once the
// command returns, whether or not it failed.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app := &App{}
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return execute(ctx, app, root)
}

func execute(ctx context.Context, app *App, root *cobra.Command) (err error) {
	defer func() {
		if cerr := app.close(); err == nil {
			err = cerr
		}
	}()
	return root.ExecuteContext(ctx)
}

// newRootCommand builds the plategate command tree around app.
func newRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plategate",
		Short: "Vehicle access registry with license plate recognition",
		Long: `plategate keeps a registry of employees and their vehicles, checks typed or
photographed license plates against it, and keeps an append-only log of every
access decision.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.load,
	}

	cmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to config file (default: ./plategate.yaml)")

	cmd.AddCommand(
		NewMigrateCommand(app),
		NewSeedCommand(app),
		NewValidateCommand(app),
		NewCheckCommand(app),
		NewRecognizeCommand(app),
		NewAccessCommand(app),
		NewEmployeeCommand(app),
		NewVehicleCommand(app),
		NewReportCommand(app),
	)

	return cmd
}

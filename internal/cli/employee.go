package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/plategate/service"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

func NewEmployeeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage registered employees",
	}

	cmd.AddCommand(
		newEmployeeAddCommand(app),
		newEmployeeListCommand(app),
		newEmployeeShowCommand(app),
		newEmployeeDeactivateCommand(app),
	)
	return cmd
}

func newEmployeeAddCommand(app *App) *cobra.Command {
	var (
		in        service.EmployeeInput
		photoPath string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an employee",
		Long: fmt.Sprintf(`Register an employee. Role is free text; suggested roles are %s.`,
			strings.Join(types.SuggestedRoles, ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if photoPath != "" {
				data, err := os.ReadFile(photoPath)
				if err != nil {
					return err
				}
				in.Photo = data
			}

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			e, err := svc.registry.RegisterEmployee(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered employee #%d %s\n", e.ID, e.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&in.Role, "role", "", "Role (required)")
	cmd.Flags().StringVar(&in.TagID, "tag", "", "Access tag id (unique)")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to a photo")
	return cmd
}

func newEmployeeListCommand(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			employees, err := svc.registry.ListEmployees(cmd.Context(), all)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tROLE\tTAG\tACTIVE")
			for _, e := range employees {
				tag := "-"
				if e.TagID != nil {
					tag = *e.TagID
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", e.ID, e.Name, e.Role, tag, e.Active)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include deactivated employees")
	return cmd
}

func newEmployeeShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			e, err := svc.registry.GetEmployee(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tag := "-"
			if e.TagID != nil {
				tag = *e.TagID
			}
			fmt.Fprintf(out, "id:      %d\n", e.ID)
			fmt.Fprintf(out, "name:    %s\n", e.Name)
			fmt.Fprintf(out, "role:    %s\n", e.Role)
			fmt.Fprintf(out, "tag:     %s\n", tag)
			fmt.Fprintf(out, "active:  %t\n", e.Active)
			fmt.Fprintf(out, "photo:   %d bytes\n", len(e.Photo))
			fmt.Fprintf(out, "created: %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newEmployeeDeactivateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.registry.DeactivateEmployee(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated employee #%d\n", id)
			return nil
		},
	}
}

func parseEmployeeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid employee id %q", s)
	}
	return id, nil
}

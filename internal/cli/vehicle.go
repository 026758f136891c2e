package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/service"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

func NewVehicleCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicle",
		Short: "Manage registered vehicles",
	}

	cmd.AddCommand(
		newVehicleAddCommand(app),
		newVehicleListCommand(app),
		newVehicleShowCommand(app),
	)
	return cmd
}

func newVehicleAddCommand(app *App) *cobra.Command {
	var (
		in    service.VehicleInput
		owner int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("owner") {
				in.OwnerID = &owner
			}

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			v, err := svc.registry.RegisterVehicle(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered vehicle #%d %s\n", v.ID, v.Plate)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Plate, "plate", "", "License plate (required)")
	cmd.Flags().StringVar(&in.Model, "model", "", "Model")
	cmd.Flags().StringVar(&in.Brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&in.Color, "color", "", "Color")
	cmd.Flags().StringVar(&in.Category, "category", string(types.CategoryEmployee), "Director, Manager, Employee or Visitor")
	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner employee id")
	return cmd
}

func newVehicleListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List vehicles with their owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			recs, err := svc.registry.ListVehicles(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPLATE\tBRAND\tMODEL\tCOLOR\tCATEGORY\tOWNER")
			for _, r := range recs {
				v := r.Vehicle
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					v.ID, v.Plate, v.Brand, v.Model, v.Color, v.Category, ownerName(r.Owner))
			}
			return tw.Flush()
		},
	}
}

func newVehicleShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plate>",
		Short: "Look up a vehicle by plate without logging access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := plate.Normalize(args[0])

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			rec, ok, err := svc.registry.LookupVehicle(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "%s: not registered\n", p)
				return nil
			}

			v := rec.Vehicle
			fmt.Fprintf(out, "plate:    %s\n", v.Plate)
			fmt.Fprintf(out, "vehicle:  %s %s, %s\n", v.Brand, v.Model, v.Color)
			fmt.Fprintf(out, "category: %s\n", v.Category)
			if rec.Owner != nil {
				fmt.Fprintf(out, "owner:    %s, %s\n", rec.Owner.Name, rec.Owner.Role)
			} else {
				fmt.Fprintln(out, "owner:    -")
			}
			return nil
		},
	}
}

func ownerName(o *types.Employee) string {
	if o == nil {
		return "-"
	}
	if !o.Active {
		return o.Name + " (inactive)"
	}
	return o.Name
}

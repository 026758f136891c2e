package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/plategate/service"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// Report output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

const reportTimeLayout = "2006-01-02 15:04:05"

var reportHeader = []string{
	"id", "occurred_at", "plate", "allowed", "source", "vehicle", "owner", "role", "notes",
}

func NewReportCommand(app *App) *cobra.Command {
	var (
		from, to string
		format   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List access events, newest first",
		Long: `List access events, newest first. --from and --to are inclusive calendar
days (YYYY-MM-DD) in the configured timezone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := app.cfg.Location()
			if err != nil {
				return err
			}
			filter, err := service.ParseDayRange(from, to, loc)
			if err != nil {
				return err
			}

			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			rows, err := svc.reports.AccessEvents(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output == "" {
				return RenderReport(cmd.OutOrStdout(), rows, format, loc)
			}
			if err := writeReportFile(output, rows, format, loc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d event(s) to %s\n", len(rows), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "Output format: table, csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// writeReportFile renders rows into path. The file is only reported written
// once Close has succeeded.
func writeReportFile(path string, rows []types.AccessReportRow, format string, loc *time.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderReport(f, rows, format, loc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// RenderReport writes rows in the given format. Times are shown in loc.
func RenderReport(w io.Writer, rows []types.AccessReportRow, format string, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	switch strings.ToLower(format) {
	case FormatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(reportHeader, "\t")))
		for _, r := range rows {
			fmt.Fprintln(tw, strings.Join(reportRecord(r, loc), "\t"))
		}
		return tw.Flush()

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(reportHeader); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(reportRecord(r, loc)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatJSON:
		if rows == nil {
			rows = []types.AccessReportRow{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)

	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func reportRecord(r types.AccessReportRow, loc *time.Location) []string {
	ev := r.Event
	vehicle := strings.TrimSpace(r.VehicleBrand + " " + r.VehicleModel)
	return []string{
		strconv.FormatInt(ev.ID, 10),
		ev.OccurredAt.In(loc).Format(reportTimeLayout),
		ev.Plate,
		strconv.FormatBool(ev.Allowed),
		string(ev.Source),
		vehicle,
		r.OwnerName,
		r.OwnerRole,
		ev.Notes,
	}
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/plategate/ocr"
	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

func NewValidateCommand(_ *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plate>",
		Short: "Check whether a plate is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := plate.Canonical(args[0])
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "%s: invalid\n", args[0])
				return errors.New("invalid plate format")
			}
			grammar := "legacy"
			if plate.IsMercosul(p) {
				grammar = "mercosul"
			}
			fmt.Fprintf(out, "%s: valid (%s)\n", p, grammar)
			return nil
		},
	}
}

func NewCheckCommand(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <plate>",
		Short: "Decide access for a typed plate and log the decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.access.CheckPlate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func NewRecognizeCommand(app *App) *cobra.Command {
	var (
		asJSON bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Read a plate from a photo and decide access",
		Long: `Preprocess the image, run it through the configured OCR engine, pick the
first candidate that is a valid plate and decide access for it. With
--dry-run only the recognized plate is printed and nothing is logged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			svc, err := app.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				p, ok, err := svc.access.RecognizePlate(cmd.Context(), data)
				if err != nil {
					return explainRecognition(err)
				}
				if !ok {
					fmt.Fprintln(out, "no plate found")
					return nil
				}
				fmt.Fprintln(out, p)
				return nil
			}

			res, err := svc.access.CheckImage(cmd.Context(), data)
			if err != nil {
				return explainRecognition(err)
			}
			return printResult(out, res, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Recognize only; do not decide or log")
	return cmd
}

func explainRecognition(err error) error {
	var rerr *ocr.RecognitionError
	if errors.As(err, &rerr) && errors.Is(rerr, ocr.ErrDisabled) {
		return fmt.Errorf("%w (set ocr.backend to tesseract or rekognition)", err)
	}
	return err
}

func printResult(w io.Writer, res types.CheckResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	switch res.Status {
	case types.StatusInvalidFormat:
		fmt.Fprintf(w, "INVALID FORMAT %s\n", res.Plate)
	case types.StatusNoPlateFound:
		texts := make([]string, 0, len(res.Candidates))
		for _, c := range res.Candidates {
			texts = append(texts, c.Text)
		}
		fmt.Fprintf(w, "NO PLATE FOUND (read: %s)\n", strings.Join(texts, ", "))
	case types.StatusAllowed:
		fmt.Fprintf(w, "ALLOWED %s\n", res.Plate)
		v := res.Record.Vehicle
		fmt.Fprintf(w, "  vehicle: %s %s, %s (%s)\n", v.Brand, v.Model, v.Color, v.Category)
		if o := res.Record.Owner; o != nil {
			fmt.Fprintf(w, "  owner:   %s, %s\n", o.Name, o.Role)
			if o.TagID != nil {
				fmt.Fprintf(w, "  tag:     %s\n", *o.TagID)
			}
			if len(o.Photo) > 0 {
				fmt.Fprintf(w, "  photo:   %d bytes\n", len(o.Photo))
			}
		}
	default:
		fmt.Fprintf(w, "DENIED %s\n", res.Plate)
	}
	if res.Event != nil {
		fmt.Fprintf(w, "  logged:  event #%d at %s\n", res.Event.ID, res.Event.OccurredAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/errors"
	zio "github.com/matzehuels/zonemap/pkg/io"
	"github.com/matzehuels/zonemap/pkg/pipeline"
)

// checkReport is what check found in a table.
type checkReport struct {
	Rows       int
	Points     int
	Columns    [][2]string // header, canonical field ("" when unused)
	Missing    []string
	Skipped    []zio.RowError
	Violations []zio.RangeViolation
}

// ok reports whether the table can be charted without loss.
func (r checkReport) ok() bool {
	return len(r.Missing) == 0 && len(r.Skipped) == 0 && len(r.Violations) == 0
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags  chartFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check [data.csv]",
		Short: "Validate a CSV table before rendering",
		Long: `Validate a CSV table before rendering.

Shows how each header was recognized, which required columns are missing,
which rows would be skipped and which scores fall outside the axis range.

Missing columns always fail. With --strict, skipped rows and out-of-range
scores fail too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			rep, err := runCheck(args[0], opts)
			if err != nil {
				return err
			}
			printCheck(cmd.OutOrStdout(), args[0], rep)

			if len(rep.Missing) > 0 {
				return &errors.MissingColumnsError{Columns: rep.Missing}
			}
			if strict && !rep.ok() {
				return errors.New(errors.ErrCodeInvalidInput, "%d skipped rows, %d out-of-range values", len(rep.Skipped), len(rep.Violations))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on skipped rows and out-of-range values")
	return cmd
}

// runCheck reads the table at path and collects the report.
func runCheck(path string, opts pipeline.Options) (checkReport, error) {
	t, err := zio.ImportCSV(path, opts.ReadOptions()...)
	if err != nil {
		return checkReport{}, err
	}

	rep := checkReport{Rows: t.Len(), Violations: t.CheckRanges(opts.Axis)}
	for _, h := range t.Header {
		f, _ := zio.FieldOf(h)
		rep.Columns = append(rep.Columns, [2]string{zio.DisplayName(h), string(f)})
	}

	points, skipped, err := t.Points()
	var mc *errors.MissingColumnsError
	switch {
	case stderrors.As(err, &mc):
		rep.Missing = mc.Columns
	case err != nil:
		return checkReport{}, err
	}
	rep.Points = len(points)
	rep.Skipped = skipped
	return rep, nil
}

func printCheck(w io.Writer, path string, rep checkReport) {
	fmt.Fprintln(w, StyleTitle.Render(path))
	fmt.Fprintf(w, "%s\n\n", StyleDim.Render(fmt.Sprintf("%d rows, %d plottable", rep.Rows, rep.Points)))

	cols := newTable("Column", "Field")
	for _, c := range rep.Columns {
		field := c[1]
		if field == "" {
			field = StyleDim.Render("-")
		}
		cols.Row(c[0], field)
	}
	for _, m := range rep.Missing {
		cols.Row(StyleError.Render("(missing)"), StyleError.Render(m))
	}
	fmt.Fprintln(w, cols.Render())

	if len(rep.Skipped) > 0 {
		t := newTable("Row", "Column", "Value", "Reason")
		for _, e := range rep.Skipped {
			t.Row(strconv.Itoa(e.Row), string(e.Column), e.Value, e.Reason)
		}
		fmt.Fprintln(w, StyleWarning.Render("Skipped rows"))
		fmt.Fprintln(w, t.Render())
	}

	if len(rep.Violations) > 0 {
		t := newTable("Row", "Column", "Value")
		for _, v := range rep.Violations {
			t.Row(strconv.Itoa(v.Row), string(v.Column), strconv.FormatFloat(v.Value, 'g', -1, 64))
		}
		fmt.Fprintln(w, StyleWarning.Render("Out of range (clamped when drawn)"))
		fmt.Fprintln(w, t.Render())
	}

	switch {
	case len(rep.Missing) > 0:
		fmt.Fprintln(w, StyleError.Render(iconError+" cannot be charted"))
	case rep.ok():
		fmt.Fprintln(w, StyleSuccess.Render(iconSuccess+" ready to render"))
	default:
		fmt.Fprintln(w, StyleWarning.Render(iconWarning+" renders with warnings"))
	}
}

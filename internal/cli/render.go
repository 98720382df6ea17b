package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/config"
	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/pipeline"
)

// renderOutputs says where render writes its files.
type renderOutputs struct {
	output string // file (single format), base path (several) or "-" for stdout
	csvOut string // normalized table, optional
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   chartFlags
		out     renderOutputs
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render [data.csv]",
		Short: "Render a zoned scatter chart from a CSV table",
		Long: `Render a zoned scatter chart from a CSV table.

The table needs a label, two 1-9 scores and a magnitude. Legacy headers
(Country/Market, Certainty_1to9, Alignment_1to9, MarketSize_Units) and
sub-score columns are recognized and normalized.

Rows with unparseable numbers are skipped with a warning. Scores outside the
axis range are clamped onto the chart and reported.

Results are cached, so re-rendering unchanged data is instant.`,
		Example: `  zonemap render markets.csv
  zonemap render markets.csv -f svg,png -o charts/markets
  zonemap render markets.csv --preset quadrant --title "EMEA 2025"
  zonemap render markets.csv -f json -o - | jq '.points | length'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg, opts, out, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVar(&out.csvOut, "csv-out", "", "also write the normalized table to this CSV file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender runs the pipeline on input and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, out renderOutputs, noCache bool) error {
	if out.output == "-" && len(opts.Formats) != 1 {
		return fmt.Errorf("-o - needs exactly one format, got %s", strings.Join(opts.Formats, ","))
	}

	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()

	res, paths, err := c.renderOnce(ctx, runner, input, opts, out)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if out.output == "-" {
		return nil
	}
	prog.done(fmt.Sprintf("Rendered %s", input))

	printSuccess("Chart rendered")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.Points, res.Stats.Skipped, res.Stats.Violations, res.CacheInfo.SceneHit && res.CacheInfo.RenderHit)
	if res.Stats.Skipped > 0 || res.Stats.Violations > 0 {
		printNewline()
		printNextStep("Inspect the table", appName+" check "+input)
	}
	return nil
}

// renderOnce executes the pipeline and writes its outputs. It returns the
// written paths, the normalized table last.
func (c *CLI) renderOnce(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, out renderOutputs) (*pipeline.Result, []string, error) {
	res, err := runner.ExecuteFile(ctx, input, opts)
	if err != nil {
		return nil, nil, err
	}
	for _, v := range res.Dataset.Violations {
		c.Logger.Warn("value outside axis range, clamped", "row", v.Row, "column", v.Column, "value", v.Value)
	}

	if out.output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[opts.Formats[0]])
		return res, nil, err
	}

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, input, out.output)
	if err != nil {
		return nil, nil, err
	}
	if out.csvOut != "" {
		if err := res.Dataset.Table.ExportCSV(out.csvOut); err != nil {
			return nil, nil, fmt.Errorf("write normalized table: %w", err)
		}
		paths = append(paths, out.csvOut)
	}
	return res, paths, nil
}

// writeArtifacts writes one file per format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := outputPath(output, input, format, len(formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath picks the file for one format. A single format with an
// explicit output is written there verbatim; otherwise the output (or the
// input) minus a known extension is used as the base.
func outputPath(output, input, format string, nformats int) string {
	if output != "" && nformats == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// openInput opens an input table.
func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, err
	}
	return f, nil
}

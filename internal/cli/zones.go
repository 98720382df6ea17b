package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/zone"
)

// zonesCommand creates the zones command.
func (c *CLI) zonesCommand() *cobra.Command {
	var (
		preset string
		asTOML bool
		file   string
	)

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Show a zone rule set",
		Long: `Show a zone rule set and check that it covers the whole chart.

Without flags the rules from the config file are shown, or the default
preset when the config defines none. Rules are listed in paint order: a
later rule wins where rules overlap.

Use --toml to print the rule set in the form --rules reads.`,
		Example: `  zonemap zones
  zonemap zones --preset quadrant
  zonemap zones --preset stacey --toml > zones.toml
  zonemap zones --rules zones.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := c.ruleSet(preset, file)
			if err != nil {
				return err
			}
			if asTOML {
				return rs.EncodeTOML(cmd.OutOrStdout())
			}
			return printRuleSet(cmd.OutOrStdout(), rs)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "preset to show: "+presetList())
	cmd.Flags().StringVar(&file, "rules", "", "rule set TOML file to show")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print as TOML")
	cmd.MarkFlagsMutuallyExclusive("preset", "rules")
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)
	return cmd
}

// ruleSet picks the rule set zones shows: the named preset, the rules
// file, the config rules or the default preset, in that order.
func (c *CLI) ruleSet(preset, file string) (zone.RuleSet, error) {
	if preset != "" {
		return zone.Preset(preset)
	}
	if file != "" {
		return zone.LoadRuleSet(file)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return zone.RuleSet{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return zone.RuleSet{}, err
	}
	return opts.RuleSet()
}

// printRuleSet lists the rules and reports totality. A rule set with gaps
// is printed and returned as an error.
func printRuleSet(w io.Writer, rs zone.RuleSet) error {
	fmt.Fprintln(w, StyleTitle.Render(rs.Name))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("axis %g–%g, %d rules", rs.Axis.Min, rs.Axis.Max, len(rs.Rules))))

	t := newTable("#", "", "Zone", "x", "y")
	for i, r := range rs.Rules {
		t.Row(
			strconv.Itoa(i+1),
			swatch(r.Zone.Color),
			r.Zone.Name,
			fmt.Sprintf("%g–%g", r.X0, r.X1),
			fmt.Sprintf("%g–%g", r.Y0, r.Y1),
		)
	}
	if rs.Default.Name != "" {
		t.Row("-", swatch(rs.Default.Color), rs.Default.Name+StyleDim.Render(" (default)"), "", "")
	}
	fmt.Fprintln(w, t.Render())

	cl, err := rs.Classifier()
	if err == nil {
		err = cl.CheckTotal()
	}
	if err != nil {
		fmt.Fprintln(w, StyleError.Render(iconError+" "+err.Error()))
		return err
	}
	fmt.Fprintln(w, StyleSuccess.Render(iconSuccess+" covers the whole chart"))
	return nil
}

func presetList() string {
	return strings.Join(zone.Presets(), ", ")
}

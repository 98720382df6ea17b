package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/pipeline"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// flagCommand returns a command with the chart flags set to args.
func flagCommand(t *testing.T, f *chartFlags, args map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	for name, v := range args {
		if err := cmd.Flags().Set(name, v); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	return cmd
}

func TestChartFlagsApply(t *testing.T) {
	rules, err := zone.Preset(zone.PresetQuadrant)
	if err != nil {
		t.Fatal(err)
	}
	base := func() pipeline.Options {
		return pipeline.Options{Title: "From config", Width: 640, Rules: &rules}
	}

	tests := []struct {
		name  string
		args  map[string]string
		check func(t *testing.T, o pipeline.Options)
	}{
		{
			name: "unset flags keep config values",
			args: nil,
			check: func(t *testing.T, o pipeline.Options) {
				if o.Title != "From config" || o.Width != 640 || o.Rules == nil {
					t.Errorf("options changed: %+v", o)
				}
			},
		},
		{
			name: "explicit flags override",
			args: map[string]string{"title": "EMEA", "width": "1000", "format": "svg,PNG", "no-grid": "true"},
			check: func(t *testing.T, o pipeline.Options) {
				if o.Title != "EMEA" || o.Width != 1000 || !o.HideGrid {
					t.Errorf("options = %+v", o)
				}
				if len(o.Formats) != 2 || o.Formats[1] != "png" {
					t.Errorf("formats = %v", o.Formats)
				}
			},
		},
		{
			name: "preset drops config rules",
			args: map[string]string{"preset": zone.PresetStacey},
			check: func(t *testing.T, o pipeline.Options) {
				if o.Preset != zone.PresetStacey || o.Rules != nil {
					t.Errorf("preset = %q, rules = %v", o.Preset, o.Rules)
				}
			},
		},
		{
			name: "one axis bound keeps the other default",
			args: map[string]string{"axis-max": "10"},
			check: func(t *testing.T, o pipeline.Options) {
				want := layout.AxisRange{Min: layout.DefaultAxis.Min, Max: 10}
				if o.Axis != want {
					t.Errorf("axis = %+v, want %+v", o.Axis, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f chartFlags
			cmd := flagCommand(t, &f, tt.args)
			opts := base()
			f.apply(cmd, &opts)
			tt.check(t, opts)
		})
	}
}

func TestResolveOptionsRulesFile(t *testing.T) {
	c := newTestCLI(t)
	rs, err := zone.Preset(zone.PresetQuadrant)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "zones.toml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := rs.EncodeTOML(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var flags chartFlags
	cmd := flagCommand(t, &flags, map[string]string{"rules": path})
	_, opts, err := c.resolveOptions(cmd, &flags)
	if err != nil {
		t.Fatalf("resolveOptions() error: %v", err)
	}
	got, err := opts.RuleSet()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rules) != len(rs.Rules) {
		t.Errorf("rules = %d, want %d", len(got.Rules), len(rs.Rules))
	}
}

func TestResolveOptionsInvalid(t *testing.T) {
	c := newTestCLI(t)
	var flags chartFlags
	cmd := flagCommand(t, &flags, map[string]string{"format": "gif"})
	if _, _, err := c.resolveOptions(cmd, &flags); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

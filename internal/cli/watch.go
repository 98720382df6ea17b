package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/errors"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags   chartFlags
		out     renderOutputs
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "watch [data.csv]",
		Short: "Re-render a chart whenever its table changes",
		Long: `Re-render a chart whenever its table changes.

Renders once, then watches the input file and re-renders on every save.
Errors in the table are logged and the previous output is kept. Stop with
Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out.output == "-" {
				return errors.New(errors.ErrCodeInvalidOptions, "watch cannot write to stdout")
			}
			cfg, opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			render := func() {
				res, paths, err := c.renderOnce(cmd.Context(), runner, args[0], opts, out)
				if err != nil {
					c.Logger.Error("render failed", "error", errors.UserMessage(err))
					return
				}
				c.Logger.Info("rendered", "files", paths, "points", res.Stats.Points, "skipped", res.Stats.Skipped)
			}
			return c.watch(cmd.Context(), args[0], render)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&out.csvOut, "csv-out", "", "also write the normalized table to this CSV file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// watch calls fn once, then again after every change to path, until ctx
// ends. The parent directory is watched so that editors which replace the
// file on save are followed.
func (c *CLI) watch(ctx context.Context, path string, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	fn()
	c.Logger.Info("watching for changes", "path", path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			c.Logger.Debug("change detected", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			fn()
		}
	}
}

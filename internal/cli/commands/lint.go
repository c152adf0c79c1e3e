// Package commands implements the leaplint subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplint/internal/cache"
	"github.com/leapstack-labs/leaplint/internal/cli/config"
	"github.com/leapstack-labs/leaplint/internal/cli/output"
	"github.com/leapstack-labs/leaplint/internal/loader"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	_ "github.com/leapstack-labs/leaplint/pkg/lint/rules" // register built-in rules
)

// ErrIssuesFound is returned by the lint command when the run did not pass.
// It carries no message; the report has already been rendered.
var ErrIssuesFound = errors.New("issues found")

// watchDebounce coalesces bursts of filesystem events into one rerun.
const watchDebounce = 300 * time.Millisecond

// NewLintCommand creates the lint command.
func NewLintCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [dir]",
		Short: "Check SQL models for problems",
		Long: `Check every SQL model under the project directory against the
enabled rules and report diagnostics ordered by file position.

The project root is found by searching upward from the given directory
for a .leaplint.yaml config file. Results for unchanged clean files are
served from the cache on repeat runs.`,
		Example: `  # Lint the current project
  leaplint lint

  # Lint a specific project, failing on warnings too
  leaplint lint ./analytics --strict

  # Only reference rules, as JSON
  leaplint lint --select RF --format json

  # Re-lint on every change
  leaplint lint --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(dir, cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			mode, err := output.ParseMode(cfg.Output)
			if err != nil {
				return err
			}
			policy, err := cfg.ToPolicy()
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.Verbose {
				if used := config.ConfigFileUsed(); used != "" {
					logger.Info("using config file", "path", used)
				}
			}
			renderer := output.NewRenderer(cmd.OutOrStdout(), mode)

			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return watchLoop(cmd.Context(), cfg, policy, renderer, logger, version)
			}

			passed, err := runOnce(cfg, policy, renderer, logger, version)
			if err != nil {
				return err
			}
			if !passed {
				return ErrIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: table, json, sarif")
	cmd.Flags().StringSlice("select", nil, "Only run rules with these ID prefixes")
	cmd.Flags().StringSlice("disable", nil, "Skip rules with these ID prefixes")
	cmd.Flags().StringSlice("severity", nil, "Override a rule severity (RULE=level, repeatable)")
	cmd.Flags().Int("max-diagnostics", 0, "Cap the number of reported diagnostics (0 = unlimited)")
	cmd.Flags().Bool("no-cache", false, "Ignore and do not update the result cache")
	cmd.Flags().Bool("strict", false, "Fail on warnings as well as errors")
	cmd.Flags().Int("jobs", 0, "Number of files checked in parallel (0 = NumCPU)")
	cmd.Flags().BoolP("watch", "w", false, "Watch the models directory and re-lint on change")
	cmd.Flags().String("kind", "", "Project kind: dbt or plain (default: detected)")

	return cmd
}

// runOnce discovers the project, runs every enabled rule, and renders the
// report. It returns whether the run passed.
func runOnce(cfg *config.Config, policy *lint.Policy, renderer *output.Renderer, logger *slog.Logger, version string) (bool, error) {
	files, models, err := loader.New(cfg.ModelsPath(), logger).Discover()
	if err != nil {
		return false, fmt.Errorf("failed to discover models: %w", err)
	}

	opts := []lint.Option{
		lint.WithLogger(logger),
		lint.WithWorkers(cfg.Jobs),
	}
	if cfg.CacheEnabled() {
		opts = append(opts, lint.WithCache(
			cache.New(cfg.CachePath(), version, policy.IdentityHash(), cache.WithLogger(logger)),
		))
	}

	result := lint.NewRunner(policy, opts...).Run(files, models)
	if err := renderer.Render(result, version); err != nil {
		return false, err
	}
	return result.Stats.Passed, nil
}

// watchLoop reruns the check whenever a SQL file under the models directory
// changes. It returns when the context is canceled; a failing run does not
// stop the loop.
func watchLoop(ctx context.Context, cfg *config.Config, policy *lint.Policy, renderer *output.Renderer, logger *slog.Logger, version string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	root := cfg.ModelsPath()
	if err := addDirs(watcher, root); err != nil {
		return err
	}

	if _, err := runOnce(cfg, policy, renderer, logger, version); err != nil {
		return err
	}
	logger.Info("watching for changes", "dir", root)

	var timer *time.Timer
	var rerun <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New subdirectories must be watched too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addDirs(watcher, event.Name)
				}
			}
			if !relevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			rerun = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-rerun:
			rerun = nil
			if _, err := runOnce(cfg, policy, renderer, logger, version); err != nil {
				logger.Error("run failed", "error", err)
			}
		}
	}
}

// relevantEvent reports whether an event should trigger a rerun.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, ".sql")
}

// addDirs registers root and every non-hidden subdirectory with the watcher.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// newLogger builds the CLI logger. Verbose lowers the threshold to debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

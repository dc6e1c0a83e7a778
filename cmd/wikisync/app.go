package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/logging"
	"github.com/slurpgg/bloom-wikisync/internal/metrics"
	"github.com/slurpgg/bloom-wikisync/internal/observability"
	"github.com/slurpgg/bloom-wikisync/internal/retry"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// app carries everything a command needs. It is built once per invocation
// and handed to the stage functions.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	printer *observability.Printer
	out     io.Writer
	now     func() time.Time
}

// newApp resolves the configuration for cmd: defaults, --config file,
// environment, then explicitly set flags.
func newApp(cmd *cobra.Command) (*app, error) {
	return buildApp(cmd, os.Getenv)
}

func buildApp(cmd *cobra.Command, lookup func(string) string) (*app, error) {
	var file config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		file = *loaded
	}

	env, err := config.FromEnv(lookup)
	if err != nil {
		return nil, err
	}

	cfg := config.Resolve(flagConfig(cmd), env, file)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:     &cfg,
		logger:  logging.New(cmd.ErrOrStderr(), cfg.LogLevel, false),
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		out:     cmd.OutOrStdout(),
		now:     time.Now,
	}
	if cfg.MetricsFile != "" {
		a.metrics = metrics.New()
	}
	if rootConfigPath != "" {
		a.logger.Debug("loaded config", slog.String("path", rootConfigPath))
	}
	return a, nil
}

// flagConfig returns the settings of flags that were explicitly set.
func flagConfig(cmd *cobra.Command) config.Config {
	var c config.Config
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = rootLogLevel
	}
	if flags.Changed("db-url") {
		c.DatabaseURL = rootDatabaseURL
	}
	if flags.Changed("metrics-file") {
		c.MetricsFile = rootMetricsFile
	}
	if flags.Changed("verbose") {
		c.Verbose = rootVerbose
	}
	return c
}

// close flushes metrics. Failures are logged; they never change the exit code.
func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("failed to write metrics", slog.String("error", err.Error()))
		return
	}
	if a.metrics != nil {
		a.logger.Debug("wrote metrics", slog.String("path", a.cfg.MetricsFile))
	}
}

// loadWiki reads the page list and fills in default cache paths.
func (a *app) loadWiki() (*types.WikiConfig, error) {
	wc, err := config.LoadWikiConfig(a.cfg.WikiConfigPath)
	if err != nil {
		return nil, err
	}
	a.cfg.ResolvePagePaths(wc)
	return wc, nil
}

// newExecutor builds the retry executor for remote calls, counting retries.
func (a *app) newExecutor() *retry.Executor {
	return retry.NewExecutor(
		retry.Config{MaxAttempts: a.cfg.MaxAttempts, BaseDelay: a.cfg.RetryBaseDelay()},
		retry.WithLogger(a.logger),
		retry.WithObserver(func(_ string, _ int, reason string, _ time.Duration) {
			a.metrics.RecordRetry(reason)
		}),
	)
}

// openHistory connects to the run history database when one is configured.
// Any failure is a warning and yields nil.
func (a *app) openHistory(ctx context.Context) *db.DB {
	if a.cfg.DatabaseURL == "" {
		return nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := db.Connect(connectCtx, a.cfg.DatabaseURL)
	if err != nil {
		a.logger.Warn("run history disabled", slog.String("error", err.Error()))
		return nil
	}
	if err := database.EnsureSchema(connectCtx); err != nil {
		a.logger.Warn("run history disabled", slog.String("error", err.Error()))
		database.Close()
		return nil
	}
	return database
}

//nolint:errcheck // writing to the terminal; errors are not recoverable
func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

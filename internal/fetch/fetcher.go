// Package fetch retrieves wiki pages into the local raw-markdown cache.
//
// Pages are processed one at a time in the configured order. A cached copy
// younger than the TTL is used without any network call unless Force is set.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/slurpgg/bloom-wikisync/internal/logging"
	"github.com/slurpgg/bloom-wikisync/internal/retry"
	"github.com/slurpgg/bloom-wikisync/internal/types"
	"github.com/slurpgg/bloom-wikisync/internal/wiki"
)

// DefaultCacheTTL is the cache freshness window when none is configured.
const DefaultCacheTTL = 24 * time.Hour

// Outcome is the per-page result of a fetch.
type Outcome string

// Page outcomes.
const (
	OutcomeFetched Outcome = "fetched"
	OutcomeCached  Outcome = "cached"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result describes what happened to one page.
type Result struct {
	Slug       string
	Purpose    string
	OutputPath string
	Outcome    Outcome
	Age        time.Duration // cache age, set for cached pages
	Bytes      int           // bytes written, set for fetched pages
	Err        error         // set for failed pages
}

// Config holds configuration for the fetcher.
type Config struct {
	ProjectID string
	CacheTTL  time.Duration
	Force     bool // bypass cache freshness unconditionally
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{CacheTTL: DefaultCacheTTL}
}

// Fetcher wraps wiki page retrieval with a file-backed cache.
type Fetcher struct {
	source    wiki.Source
	executor  *retry.Executor
	projectID string
	cacheTTL  time.Duration
	force     bool
	now       func() time.Time
	logger    *slog.Logger
	onOutcome func(Outcome)
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithOutcomeHook registers a callback invoked once per page outcome.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(f *Fetcher) { f.onOutcome = fn }
}

// NewFetcher creates a fetcher reading from source through executor.
func NewFetcher(source wiki.Source, executor *retry.Executor, config *Config, opts ...Option) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if executor == nil {
		executor = retry.NewExecutor(retry.DefaultConfig())
	}
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	f := &Fetcher{
		source:    source,
		executor:  executor,
		projectID: config.ProjectID,
		cacheTTL:  ttl,
		force:     config.Force,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrDiscard(f.logger)
	return f
}

// CacheAge returns the age of the cached file at path. ok is false when the
// file does not exist.
func (f *Fetcher) CacheAge(path string) (age time.Duration, ok bool, err error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to stat cache file %s: %w", path, err)
	}
	return f.now().Sub(info.ModTime()), true, nil
}

// IsFresh reports whether the cached file may be used instead of fetching.
func (f *Fetcher) IsFresh(path string) (bool, time.Duration, error) {
	if f.force {
		return false, 0, nil
	}
	age, ok, err := f.CacheAge(path)
	if err != nil || !ok {
		return false, 0, err
	}
	return age < f.cacheTTL, age, nil
}

// FetchPage resolves one page. The returned error is non-nil only for
// conditions that must stop the whole stage: a rejected credential, a
// cancelled context, or a cache write failure. Per-page remote failures are
// reported through Result.Outcome.
func (f *Fetcher) FetchPage(ctx context.Context, page types.WikiPageConfig) (Result, error) {
	result := Result{Slug: page.Slug, Purpose: page.Purpose, OutputPath: page.OutputPath}

	fresh, age, err := f.IsFresh(page.OutputPath)
	if err != nil {
		return f.finish(result, OutcomeFailed, err), &CacheError{Path: page.OutputPath, Message: "cannot inspect cache", Cause: err}
	}
	if fresh {
		result.Age = age
		f.logger.Info("using cached page",
			slog.String("slug", page.Slug),
			slog.String("age", fmt.Sprintf("%.1fh", age.Hours())))
		return f.finish(result, OutcomeCached, nil), nil
	}

	wikiPage, found, err := retry.Do(ctx, f.executor, page.Slug, func(ctx context.Context) (*wiki.Page, error) {
		return f.source.GetPage(ctx, f.projectID, page.Slug)
	})
	if err != nil {
		var authErr *retry.AuthError
		if errors.As(err, &authErr) || ctx.Err() != nil {
			return f.finish(result, OutcomeFailed, err), err
		}
		f.logger.Error("failed to fetch page", slog.String("slug", page.Slug), slog.String("error", err.Error()))
		return f.finish(result, OutcomeFailed, err), nil
	}
	if !found || wikiPage == nil {
		f.logger.Warn("wiki page not found, skipping", slog.String("slug", page.Slug))
		return f.finish(result, OutcomeSkipped, nil), nil
	}

	if err := writeCache(page.OutputPath, wikiPage.Content); err != nil {
		return f.finish(result, OutcomeFailed, err), err
	}
	result.Bytes = len(wikiPage.Content)
	f.logger.Info("fetched and cached page",
		slog.String("slug", page.Slug),
		slog.String("path", page.OutputPath),
		slog.Int("bytes", result.Bytes))
	return f.finish(result, OutcomeFetched, nil), nil
}

// FetchAll resolves every page in order. A fatal condition stops the loop
// and is returned alongside the partial summary.
func (f *Fetcher) FetchAll(ctx context.Context, pages []types.WikiPageConfig) (*Summary, error) {
	summary := &Summary{}
	for _, page := range pages {
		result, err := f.FetchPage(ctx, page)
		summary.add(result)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (f *Fetcher) finish(r Result, outcome Outcome, err error) Result {
	r.Outcome = outcome
	r.Err = err
	if f.onOutcome != nil {
		f.onOutcome(outcome)
	}
	return r
}

func writeCache(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &CacheError{Path: path, Message: "failed to create cache directory", Cause: err}
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &CacheError{Path: path, Message: "failed to write cache file", Cause: err}
	}
	return nil
}

package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slurpgg/bloom-wikisync/internal/retry"
	"github.com/slurpgg/bloom-wikisync/internal/types"
	"github.com/slurpgg/bloom-wikisync/internal/wiki"
)

// fakeSource serves scripted responses per slug and counts calls.
type fakeSource struct {
	pages map[string]string
	errs  map[string][]error
	calls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{pages: map[string]string{}, errs: map[string][]error{}, calls: map[string]int{}}
}

func (s *fakeSource) GetPage(_ context.Context, _ string, slug string) (*wiki.Page, error) {
	s.calls[slug]++
	if queue := s.errs[slug]; len(queue) > 0 {
		s.errs[slug] = queue[1:]
		return nil, queue[0]
	}
	content, ok := s.pages[slug]
	if !ok {
		return nil, wiki.NewAPIError(slug, 404, 0)
	}
	return &wiki.Page{Slug: slug, Content: content}, nil
}

func (s *fakeSource) totalCalls() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func noSleepExecutor() *retry.Executor {
	return retry.NewExecutor(retry.DefaultConfig(), retry.WithSleep(func(context.Context, time.Duration) error { return nil }))
}

func page(dir, slug string) types.WikiPageConfig {
	return types.WikiPageConfig{Slug: slug, Purpose: "test", OutputPath: filepath.Join(dir, "wiki-raw", slug+".md")}
}

func TestFetchPage_WritesContentVerbatim(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource()
	src.pages["brand"] = "# Brand\n\n| Token | Value |\n"

	f := NewFetcher(src, noSleepExecutor(), &Config{ProjectID: "42", CacheTTL: time.Hour})
	result, err := f.FetchPage(context.Background(), page(dir, "brand"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, result.Outcome)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "# Brand\n\n| Token | Value |\n", string(data))
}

func TestFetch_IdempotentWithinTTL(t *testing.T) {
	dir := t.TempDir()
	p := page(dir, "brand")
	require.NoError(t, os.MkdirAll(filepath.Dir(p.OutputPath), 0o755))
	require.NoError(t, os.WriteFile(p.OutputPath, []byte("cached"), 0o644))

	src := newFakeSource()
	src.pages["brand"] = "fresh"
	f := NewFetcher(src, noSleepExecutor(), &Config{CacheTTL: time.Hour})

	for i := 0; i < 2; i++ {
		result, err := f.FetchPage(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCached, result.Outcome)
	}
	assert.Equal(t, 0, src.totalCalls())

	data, err := os.ReadFile(p.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
}

func TestFetch_FetchThenCached(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource()
	src.pages["lore"] = "lore"
	f := NewFetcher(src, noSleepExecutor(), &Config{CacheTTL: time.Hour})

	first, err := f.FetchPage(context.Background(), page(dir, "lore"))
	require.NoError(t, err)
	second, err := f.FetchPage(context.Background(), page(dir, "lore"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeFetched, first.Outcome)
	assert.Equal(t, OutcomeCached, second.Outcome)
	assert.Equal(t, 1, src.calls["lore"])
}

func TestFetch_StaleCacheRefetches(t *testing.T) {
	dir := t.TempDir()
	p := page(dir, "brand")
	require.NoError(t, os.MkdirAll(filepath.Dir(p.OutputPath), 0o755))
	require.NoError(t, os.WriteFile(p.OutputPath, []byte("old"), 0o644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(p.OutputPath, old, old))

	src := newFakeSource()
	src.pages["brand"] = "new"
	f := NewFetcher(src, noSleepExecutor(), &Config{CacheTTL: 24 * time.Hour})

	result, err := f.FetchPage(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, result.Outcome)
	data, _ := os.ReadFile(p.OutputPath)
	assert.Equal(t, "new", string(data))
}

func TestFetch_ForceBypassesCache(t *testing.T) {
	dir := t.TempDir()
	p := page(dir, "brand")
	require.NoError(t, os.MkdirAll(filepath.Dir(p.OutputPath), 0o755))
	require.NoError(t, os.WriteFile(p.OutputPath, []byte("cached"), 0o644))

	src := newFakeSource()
	src.pages["brand"] = "forced"
	f := NewFetcher(src, noSleepExecutor(), &Config{CacheTTL: time.Hour, Force: true})

	result, err := f.FetchPage(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, result.Outcome)
	assert.Equal(t, 1, src.calls["brand"])
}

func TestFetch_NotFoundIsSkipped(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource()
	f := NewFetcher(src, noSleepExecutor(), nil)

	summary, err := f.FetchAll(context.Background(), []types.WikiPageConfig{page(dir, "missing")})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, src.calls["missing"], "404 must not be retried")
	assert.NoError(t, summary.Err())

	_, statErr := os.Stat(summary.Results[0].OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchAll_PartialFailureContinues(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource()
	src.pages["good"] = "ok"
	src.errs["bad"] = []error{wiki.NewAPIError("bad", 500, 0), wiki.NewAPIError("bad", 500, 0), wiki.NewAPIError("bad", 503, 0)}

	var outcomes []Outcome
	f := NewFetcher(src, noSleepExecutor(), nil, WithOutcomeHook(func(o Outcome) { outcomes = append(outcomes, o) }))

	summary, err := f.FetchAll(context.Background(), []types.WikiPageConfig{page(dir, "bad"), page(dir, "good")})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 3, src.calls["bad"])
	assert.True(t, summary.Partial())
	assert.NoError(t, summary.Err())
	assert.Equal(t, []Outcome{OutcomeFailed, OutcomeFetched}, outcomes)
}

func TestFetchAll_AllFailedIsFatal(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource()
	boom := errors.New("connection refused")
	src.errs["a"] = []error{boom, boom, boom}
	src.errs["b"] = []error{boom, boom, boom}

	f := NewFetcher(src, noSleepExecutor(), nil)
	summary, err := f.FetchAll(context.Background(), []types.WikiPageConfig{page(dir, "a"), page(dir, "b")})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)

	var allFailed *AllFailedError
	require.True(t, errors.As(summary.Err(), &allFailed))
	assert.Contains(t, allFailed.Error(), "a: ")
}

func TestFetchAll_AuthErrorStopsImmediately(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource()
	src.errs["a"] = []error{wiki.NewAPIError("a", 401, 0)}
	src.pages["b"] = "never fetched"

	f := NewFetcher(src, noSleepExecutor(), nil)
	summary, err := f.FetchAll(context.Background(), []types.WikiPageConfig{page(dir, "a"), page(dir, "b")})
	require.Error(t, err)

	var authErr *retry.AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Equal(t, 1, src.calls["a"])
	assert.Equal(t, 0, src.calls["b"])
	assert.Equal(t, 1, summary.Total())
}

func TestIsFresh_UsesClock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	f := NewFetcher(newFakeSource(), nil, &Config{CacheTTL: time.Hour},
		WithClock(func() time.Time { return info.ModTime().Add(59 * time.Minute) }))
	fresh, age, err := f.IsFresh(path)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 59*time.Minute, age)

	f = NewFetcher(newFakeSource(), nil, &Config{CacheTTL: time.Hour},
		WithClock(func() time.Time { return info.ModTime().Add(time.Hour) }))
	fresh, _, err = f.IsFresh(path)
	require.NoError(t, err)
	assert.False(t, fresh, "age equal to TTL is stale")

	fresh, _, err = f.IsFresh(filepath.Join(dir, "absent.md"))
	require.NoError(t, err)
	assert.False(t, fresh)
}

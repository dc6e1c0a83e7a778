package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/dataset"
	"github.com/slurpgg/bloom-wikisync/internal/logging"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Options customizes Run.
type Options struct {
	RunID  string
	Logger *slog.Logger
	Now    func() time.Time
}

// Result summarizes a transform run.
type Result struct {
	Factions Stats
	Biomes   *Stats // nil when biomes were not processed
	Metadata types.SyncMetadata
	Written  []string
}

// Run transforms every dataset configured in wiki and writes the results
// with backups, followed by the sync metadata file. The factions dataset and
// its cached page are required; biomes are processed only when both a biomes
// page and an existing biomes.json are present.
func Run(cfg *config.Config, wiki *types.WikiConfig, opts Options) (*Result, error) {
	logger := logging.OrDiscard(opts.Logger)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	result := &Result{}
	pages := 0

	existing, err := dataset.LoadCollection(cfg.FactionsPath(), FactionsKey)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", ErrNoBaseline, cfg.FactionsPath())
	}
	if err != nil {
		return nil, err
	}
	logger.Info("loaded existing factions", slog.Int("count", len(existing.Items)))

	page := wiki.PageFor(types.DataTypeFactions)
	if page == nil {
		return nil, &ConfigError{Message: fmt.Sprintf("wiki config lists no page with dataType %q", types.DataTypeFactions)}
	}
	raw, err := readPage(page)
	if err != nil {
		return nil, err
	}
	pages++

	factions, stats, err := Factions(existing, raw, now())
	if err != nil {
		return nil, err
	}
	logStats(logger, "factions", page.Slug, stats)
	if err := dataset.WriteJSON(cfg.FactionsPath(), factions, true); err != nil {
		return nil, err
	}
	result.Factions = stats
	result.Written = append(result.Written, cfg.FactionsPath())

	biomeCount := 0
	if page := wiki.PageFor(types.DataTypeBiomes); page != nil && dataset.Exists(cfg.BiomesPath()) {
		stats, count, err := transformBiomes(cfg, page, now(), logger)
		if err != nil {
			return nil, err
		}
		if stats != nil {
			pages++
			biomeCount = count
			result.Biomes = stats
			result.Written = append(result.Written, cfg.BiomesPath())
		}
	}

	result.Metadata = types.SyncMetadata{
		RunID:              opts.RunID,
		LastSynced:         types.FormatTimestamp(now()),
		FactionCount:       len(factions.Items),
		BiomeCount:         biomeCount,
		SyncDurationMS:     now().Sub(start).Milliseconds(),
		WikiPagesProcessed: pages,
	}
	if err := dataset.WriteJSON(cfg.MetadataPath(), result.Metadata, false); err != nil {
		return nil, err
	}
	result.Written = append(result.Written, cfg.MetadataPath())

	logger.Info("transform complete",
		slog.Int("factions", result.Metadata.FactionCount),
		slog.Int("biomes", result.Metadata.BiomeCount),
		slog.Int("pages", pages))
	return result, nil
}

// transformBiomes returns nil stats when the cached biomes page is absent;
// biomes are optional so that only logs a warning.
func transformBiomes(cfg *config.Config, page *types.WikiPageConfig, now time.Time, logger *slog.Logger) (*Stats, int, error) {
	existing, err := dataset.LoadCollection(cfg.BiomesPath(), BiomesKey)
	if err != nil {
		return nil, 0, err
	}
	raw, err := readPage(page)
	var missing *MissingPageError
	if errors.As(err, &missing) {
		logger.Warn("cached biomes page missing, leaving biomes unchanged", slog.String("path", page.OutputPath))
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	biomes, stats, err := Biomes(existing, raw, now)
	if err != nil {
		return nil, 0, err
	}
	logStats(logger, "biomes", page.Slug, stats)
	if err := dataset.WriteJSON(cfg.BiomesPath(), biomes, true); err != nil {
		return nil, 0, err
	}
	return &stats, len(biomes.Items), nil
}

func readPage(page *types.WikiPageConfig) (string, error) {
	content, err := os.ReadFile(page.OutputPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", &MissingPageError{Slug: page.Slug, Path: page.OutputPath}
	}
	if err != nil {
		return "", &dataset.IOError{Op: "read", Path: page.OutputPath, Cause: err}
	}
	return string(content), nil
}

func logStats(logger *slog.Logger, kind, slug string, s Stats) {
	logger.Info("transformed dataset",
		slog.String("dataset", kind),
		slog.String("page", slug),
		slog.Int("front_matter_fields", s.FrontMatterFields),
		slog.Int("tables", s.Tables),
		slog.Int("table_rows", s.TableRows),
		slog.Int("entities", s.Entities))
}

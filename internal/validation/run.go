package validation

import (
	"encoding/json"
	"log/slog"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/dataset"
	"github.com/slurpgg/bloom-wikisync/internal/logging"
	"github.com/slurpgg/bloom-wikisync/internal/schemas"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Run validates the datasets named by cfg. Every entity is checked against
// its schema as stored on disk, then the domain rules are applied to the
// entities that decode. The returned error is non-nil only when a check
// could not run (unreadable schema or dataset); findings are reported
// through the Result.
func Run(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	logger = logging.OrDiscard(logger)
	result := &Result{}

	factionSchema, err := schemas.Load(cfg.FactionSchemaPath())
	if err != nil {
		return nil, err
	}
	items, err := dataset.LoadItems(cfg.FactionsPath(), KindFactions)
	if err != nil {
		return nil, err
	}

	issues, err := SchemaIssues(schemas.ValidateCollection(factionSchema, KindFactions, items))
	if err != nil {
		return nil, err
	}
	result.Add(issues...)
	if issue := CheckCount(KindFactions, len(items), cfg.ExpectedFactionCount); issue != nil {
		result.Add(*issue)
	}

	factions, undecoded := decodeEntities[types.Faction](items)
	if undecoded > 0 {
		logger.Warn("skipping domain checks for malformed factions", slog.Int("count", undecoded))
	}
	result.Add(CheckContrast(factions, cfg.ContrastThreshold)...)
	logger.Info("validated factions",
		slog.Int("count", len(items)),
		slog.Int("errors", len(result.Errors)),
		slog.Int("warnings", len(result.Warnings)))

	if !dataset.Exists(cfg.BiomesPath()) {
		logger.Warn("biomes dataset not found, skipping", slog.String("path", cfg.BiomesPath()))
		return result, nil
	}

	biomeSchema, err := schemas.Load(cfg.BiomeSchemaPath())
	if err != nil {
		return nil, err
	}
	items, err = dataset.LoadItems(cfg.BiomesPath(), KindBiomes)
	if err != nil {
		return nil, err
	}
	issues, err = SchemaIssues(schemas.ValidateCollection(biomeSchema, KindBiomes, items))
	if err != nil {
		return nil, err
	}
	result.Add(issues...)
	if cfg.ExpectedBiomeCount > 0 {
		if issue := CheckCount(KindBiomes, len(items), cfg.ExpectedBiomeCount); issue != nil {
			result.Add(*issue)
		}
	}
	logger.Info("validated biomes", slog.Int("count", len(items)))

	return result, nil
}

// decodeEntities decodes every item that fits T and counts the ones that do
// not. Those already carry schema issues.
func decodeEntities[T any](items []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(items))
	undecoded := 0
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			undecoded++
			continue
		}
		out = append(out, v)
	}
	return out, undecoded
}

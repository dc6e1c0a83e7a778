package audit

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/dataset"
	"github.com/slurpgg/bloom-wikisync/internal/logging"
)

// Result is the outcome of Run.
type Result struct {
	Report *Report
	Paths  []string
	// MissingBaselines lists datasets audited against themselves because no
	// backup existed.
	MissingBaselines []string
}

// Run audits the datasets named by cfg against their backups and writes the
// reports, tagged with runID, to cfg.ReportDir. A dataset without a backup
// is compared with itself, which yields no discrepancies. Critical findings
// are reported via Result.Report.Err, not the returned error.
func Run(cfg *config.Config, runID string, now time.Time, logger *slog.Logger) (*Result, error) {
	logger = logging.OrDiscard(logger)
	opts := Options{SimilarityThreshold: cfg.SimilarityThreshold}
	result := &Result{Report: NewReport(now)}
	result.Report.RunID = runID

	current, err := dataset.LoadFactions(cfg.FactionsPath())
	if err != nil {
		return nil, err
	}
	previous, err := dataset.LoadFactions(dataset.BackupPath(cfg.FactionsPath()))
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("factions backup not found, using current data as baseline")
		previous = current
		result.MissingBaselines = append(result.MissingBaselines, cfg.FactionsPath())
	} else if err != nil {
		return nil, err
	}
	logger.Info("comparing factions",
		slog.Int("wiki", len(current.Factions)),
		slog.Int("website", len(previous.Factions)))
	result.Report.CompareFactions(previous, current, opts)

	if dataset.Exists(cfg.BiomesPath()) {
		currentBiomes, err := dataset.LoadBiomes(cfg.BiomesPath())
		if err != nil {
			return nil, err
		}
		previousBiomes, err := dataset.LoadBiomes(dataset.BackupPath(cfg.BiomesPath()))
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("biomes backup not found, using current data as baseline")
			previousBiomes = currentBiomes
			result.MissingBaselines = append(result.MissingBaselines, cfg.BiomesPath())
		} else if err != nil {
			return nil, err
		}
		result.Report.CompareBiomes(previousBiomes, currentBiomes, opts)
	}

	paths, err := WriteAll(cfg.ReportDir, result.Report)
	if err != nil {
		return nil, err
	}
	result.Paths = paths

	s := result.Report.Summary
	logger.Info("audit complete",
		slog.Int("total", s.Total),
		slog.Int("critical", s.Critical),
		slog.Int("warning", s.Warning),
		slog.Int("minor", s.Minor))
	return result, nil
}

package main

import (
	"context"
	"log/slog"

	"github.com/slurpgg/bloom-wikisync/internal/audit"
	"github.com/slurpgg/bloom-wikisync/internal/fetch"
	"github.com/slurpgg/bloom-wikisync/internal/tokens"
	"github.com/slurpgg/bloom-wikisync/internal/transform"
	"github.com/slurpgg/bloom-wikisync/internal/validation"
	"github.com/slurpgg/bloom-wikisync/internal/wiki"
)

// The functions below are shared by the single-stage commands and sync.

func (a *app) fetchStage(ctx context.Context, force bool) error {
	// No network activity without credentials.
	if err := a.cfg.ValidateRemote(); err != nil {
		return err
	}
	wc, err := a.loadWiki()
	if err != nil {
		return err
	}
	client, err := wiki.NewClient(a.cfg.GitLabHost, a.cfg.GitLabToken, &wiki.Options{Timeout: a.cfg.HTTPTimeout()})
	if err != nil {
		return err
	}

	fetcher := fetch.NewFetcher(client, a.newExecutor(),
		&fetch.Config{ProjectID: a.cfg.ProjectID, CacheTTL: a.cfg.CacheTTL(wc), Force: force},
		fetch.WithLogger(a.logger),
		fetch.WithOutcomeHook(func(o fetch.Outcome) { a.metrics.RecordFetch(string(o)) }),
	)
	summary, err := fetcher.FetchAll(ctx, wc.WikiPages)
	if a.cfg.Verbose {
		a.printer.PrintFetchSummary(summary)
	} else if summary != nil {
		a.printf("Fetched: %d, cached: %d, skipped: %d, failed: %d\n",
			summary.Fetched, summary.Cached, summary.Skipped, summary.Failed)
	}
	if err != nil {
		return err
	}
	if summary.Partial() {
		a.logger.Warn("some pages failed to fetch", slog.Int("failed", summary.Failed), slog.Int("total", summary.Total()))
	}
	return summary.Err()
}

func (a *app) transformStage(runID string) error {
	wc, err := a.loadWiki()
	if err != nil {
		return err
	}
	result, err := transform.Run(a.cfg, wc, transform.Options{RunID: runID, Logger: a.logger, Now: a.now})
	if err != nil {
		return err
	}
	if a.cfg.Verbose {
		a.printer.PrintTransform(result)
	} else {
		a.printf("Transformed %d factions, %d biomes\n", result.Metadata.FactionCount, result.Metadata.BiomeCount)
	}
	return nil
}

func (a *app) tokensStage() error {
	wc, err := a.loadWiki()
	if err != nil {
		return err
	}
	result, err := tokens.Run(a.cfg, wc, a.logger)
	if err != nil {
		return err
	}
	if a.cfg.Verbose {
		a.printer.PrintTokens(result.Tokens)
	} else {
		a.printf("Extracted %d design tokens to %s\n", result.Tokens.Count(), result.Path)
	}
	return nil
}

func (a *app) validateStage() error {
	result, err := validation.Run(a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.metrics.RecordValidationIssues(string(validation.SeverityCritical), len(result.Errors))
	a.metrics.RecordValidationIssues(string(validation.SeverityWarning), len(result.Warnings))

	if a.cfg.Verbose {
		a.printer.PrintValidation(result)
	} else {
		for _, issue := range result.Errors {
			a.printf("ERROR   [%s] %s\n", issue.Type, issue)
		}
		for _, issue := range result.Warnings {
			a.printf("WARNING [%s] %s\n", issue.Type, issue)
		}
		if result.Valid() {
			a.printf("Validation passed (%d warning(s))\n", len(result.Warnings))
		}
	}
	return result.Err()
}

// auditStage writes the reports and returns the report so sync can store it.
func (a *app) auditStage(runID string) (*audit.Report, error) {
	result, err := audit.Run(a.cfg, runID, a.now(), a.logger)
	if err != nil {
		return nil, err
	}
	report := result.Report
	for _, sev := range audit.Severities {
		a.metrics.RecordAuditDiscrepancies(string(sev), report.Summary.Count(sev))
	}

	if a.cfg.Verbose {
		a.printer.PrintAudit(report)
	} else {
		a.printf("Audit: %d discrepancies (%d critical, %d warning, %d minor)\n",
			report.Summary.Total, report.Summary.Critical, report.Summary.Warning, report.Summary.Minor)
	}
	for _, path := range result.Paths {
		a.printf("Report: %s\n", path)
	}
	return report, report.Err()
}

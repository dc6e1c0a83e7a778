package tokens

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/dataset"
	"github.com/slurpgg/bloom-wikisync/internal/logging"
	"github.com/slurpgg/bloom-wikisync/internal/markdown"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Result is the outcome of Run.
type Result struct {
	Tokens types.DesignTokens
	Path   string
}

// Run reads the cached brand guidelines page (the page with dataType
// designTokens), extracts its tokens and writes them to cfg.TokensPath.
// An empty extraction is written too, with a warning.
func Run(cfg *config.Config, wiki *types.WikiConfig, logger *slog.Logger) (*Result, error) {
	logger = logging.OrDiscard(logger)

	page := wiki.PageFor(types.DataTypeDesignTokens)
	if page == nil {
		return nil, fmt.Errorf("wiki config lists no page with dataType %q", types.DataTypeDesignTokens)
	}
	raw, err := os.ReadFile(page.OutputPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cached wiki page %q not found at %s (run the fetch stage first)", page.Slug, page.OutputPath)
	}
	if err != nil {
		return nil, &dataset.IOError{Op: "read", Path: page.OutputPath, Cause: err}
	}

	_, body := markdown.SplitFrontMatter(string(raw))
	tokens := Extract(markdown.Parse(body))
	logger.Info("extracted design tokens",
		slog.String("page", page.Slug),
		slog.Int("colors", len(tokens.Color)),
		slog.Int("typography", len(tokens.Typography)))
	if tokens.Count() == 0 {
		logger.Warn("no design tokens found", slog.String("path", page.OutputPath))
	}

	if err := dataset.WriteJSON(cfg.TokensPath, tokens, false); err != nil {
		return nil, err
	}
	logger.Info("wrote design tokens", slog.String("path", cfg.TokensPath))
	return &Result{Tokens: tokens, Path: cfg.TokensPath}, nil
}

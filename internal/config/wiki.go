package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// LoadWikiConfig reads the list of wiki pages to synchronize.
func LoadWikiConfig(path string) (*types.WikiConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load wiki config %s: %w", path, err)
	}

	var wc types.WikiConfig
	if err := json.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("failed to parse wiki config %s: %w", path, err)
	}

	if err := validate.Struct(&wc); err != nil {
		return nil, fmt.Errorf("invalid wiki config %s: %w", path, err)
	}

	return &wc, nil
}

// ResolvePagePaths fills the output path of every page that has none with a
// file under CacheDir named after its slug ("Marketing/Brand_Guidelines"
// becomes "marketing-brand_guidelines.md").
func (c *Config) ResolvePagePaths(wc *types.WikiConfig) {
	for i := range wc.WikiPages {
		page := &wc.WikiPages[i]
		if page.OutputPath != "" {
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(page.Slug, "/", "-")) + ".md"
		page.OutputPath = filepath.Join(c.CacheDir, name)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slurpgg/bloom-wikisync/internal/types"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"gitlab_host": "https://gitlab.example.com",
		"project_id": "42",
		"data_dir": "site/data",
		"expected_faction_count": 12,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://gitlab.example.com", cfg.GitLabHost)
	assert.Equal(t, "42", cfg.ProjectID)
	assert.Equal(t, filepath.Join("site", "data", "factions.json"), cfg.FactionsPath())
	assert.Equal(t, 12, cfg.ExpectedFactionCount)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		EnvGitLabToken: " glpat-secret ",
		EnvProjectID:   "1234",
		EnvCacheMaxAge: "3600000",
		EnvLogLevel:    "DEBUG",
	}))
	require.NoError(t, err)

	assert.Equal(t, "glpat-secret", cfg.GitLabToken)
	assert.Equal(t, "1234", cfg.ProjectID)
	assert.Equal(t, int64(3600000), cfg.CacheTTLMillis)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnv_InvalidCacheAge(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{EnvCacheMaxAge: "tomorrow"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvCacheMaxAge)
}

func TestFromEnv_ExpectedFactionsMustBePositive(t *testing.T) {
	for _, raw := range []string{"0", "-3", "ten"} {
		_, err := FromEnv(envMap(map[string]string{EnvExpectedSize: raw}))
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "must be a positive integer")
	}

	cfg, err := FromEnv(envMap(map[string]string{EnvExpectedSize: "12"}))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.ExpectedFactionCount)
}

func TestResolve_ZeroExpectedFactionsMeansDefault(t *testing.T) {
	cfg := Resolve(Config{ExpectedFactionCount: 0})
	assert.Equal(t, DefaultExpectedFactionCount, cfg.ExpectedFactionCount)
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{ProjectID: "7", ExpectedFactionCount: 8}
	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "7", merged.ProjectID)
	assert.Equal(t, 8, merged.ExpectedFactionCount)
	assert.Equal(t, DefaultGitLabHost, merged.GitLabHost)
	assert.Equal(t, DefaultContrastThreshold, merged.ContrastThreshold)
	assert.Equal(t, DefaultSimilarityThreshold, merged.SimilarityThreshold)
	assert.Equal(t, DefaultMaxAttempts, merged.MaxAttempts)
	assert.Equal(t, time.Second, merged.RetryBaseDelay())
	assert.NoError(t, merged.Validate())
}

func TestResolve_Precedence(t *testing.T) {
	flags := Config{LogLevel: "debug"}
	env := Config{ProjectID: "42", LogLevel: "warn", GitLabToken: "env-token"}
	file := Config{ProjectID: "7", DataDir: "content/data", GitLabToken: "file-token"}

	cfg := Resolve(flags, env, file)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "42", cfg.ProjectID)
	assert.Equal(t, "env-token", cfg.GitLabToken)
	assert.Equal(t, "content/data", cfg.DataDir)
	assert.Equal(t, DefaultGitLabHost, cfg.GitLabHost)
	assert.Equal(t, DefaultExpectedFactionCount, cfg.ExpectedFactionCount)
}

func TestResolve_NoLayers(t *testing.T) {
	assert.Equal(t, Defaults(), Resolve())
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	cfg := Defaults()
	cfg.SimilarityThreshold = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SimilarityThreshold")
}

func TestValidateRemote(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		projectID string
		wantErr   bool
		problems  int
	}{
		{"numeric project", "tok", "42", false, 0},
		{"path project", "tok", "bloom/game-design", false, 0},
		{"missing token", "", "42", true, 1},
		{"missing both", "", "", true, 2},
		{"invalid project", "tok", "-3", true, 1},
		{"dangling path", "tok", "bloom/", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.GitLabToken = tt.token
			cfg.ProjectID = tt.projectID

			err := cfg.ValidateRemote()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Len(t, cfgErr.Problems, tt.problems)
		})
	}
}

func TestCacheTTL_Precedence(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL(nil))

	wiki := &types.WikiConfig{CacheTTL: 60_000}
	assert.Equal(t, time.Minute, cfg.CacheTTL(wiki))

	cfg.CacheTTLMillis = 1000
	assert.Equal(t, time.Second, cfg.CacheTTL(wiki))
}

func TestLoadWikiConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wiki-config.json")
	content := `{
		"wikiPages": [
			{"slug": "Marketing/Brand_Guidelines", "purpose": "Colors and fonts", "outputPath": "temp/wiki-raw/brand-guidelines.md", "dataType": "designTokens"},
			{"slug": "Marketing/Faction_Profiles", "purpose": "Faction lore", "outputPath": "temp/wiki-raw/faction-marketing-profiles.md", "dataType": "factions"}
		],
		"cacheTTL": 86400000,
		"description": "Pages synchronized into the site"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	wc, err := LoadWikiConfig(path)
	require.NoError(t, err)
	assert.Len(t, wc.WikiPages, 2)
	assert.Equal(t, int64(86400000), wc.CacheTTL)
}

func TestLoadWikiConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"wikiPages": []}`), 0644))
	_, err := LoadWikiConfig(empty)
	assert.Error(t, err)

	badType := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badType, []byte(`{"wikiPages": [{"slug": "a", "outputPath": "a.md", "dataType": "weapons"}]}`), 0644))
	_, err = LoadWikiConfig(badType)
	assert.Error(t, err)

	_, err = LoadWikiConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestResolvePagePaths(t *testing.T) {
	cfg := Defaults()
	cfg.CacheDir = filepath.Join("tmp", "cache")
	wc := &types.WikiConfig{WikiPages: []types.WikiPageConfig{
		{Slug: "Marketing/Brand_Guidelines"},
		{Slug: "lore", OutputPath: "custom/lore.md"},
	}}

	cfg.ResolvePagePaths(wc)

	assert.Equal(t, filepath.Join("tmp", "cache", "marketing-brand_guidelines.md"), wc.WikiPages[0].OutputPath)
	assert.Equal(t, "custom/lore.md", wc.WikiPages[1].OutputPath)
}

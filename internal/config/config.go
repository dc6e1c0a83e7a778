// Package config provides configuration loading and validation for the sync pipeline.
//
// A Config is built once by the command layer (defaults, optional JSON file,
// environment, flags) and handed to every component by parameter.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Defaults mirrored by Defaults().
const (
	DefaultGitLabHost           = "https://gitlab.slurpgg.net"
	DefaultCacheTTL             = 24 * time.Hour
	DefaultExpectedFactionCount = 10
	DefaultContrastThreshold    = 4.5
	DefaultSimilarityThreshold  = 0.85
	DefaultMaxAttempts          = 3
	DefaultRetryBaseDelay       = time.Second
	DefaultHTTPTimeout          = 30 * time.Second
)

// Environment variable names read by FromEnv.
const (
	EnvGitLabHost   = "GITLAB_HOST"
	EnvGitLabToken  = "GITLAB_TOKEN"
	EnvProjectID    = "GITLAB_PROJECT_ID"
	EnvCacheMaxAge  = "WIKI_CACHE_MAX_AGE"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvLogLevel     = "WIKISYNC_LOG_LEVEL"
	EnvMetricsFile  = "WIKISYNC_METRICS_FILE"
	EnvWikiConfig   = "WIKISYNC_WIKI_CONFIG"
	EnvExpectedSize = "WIKISYNC_EXPECTED_FACTIONS"
)

// Config represents the pipeline configuration.
// Zero values mean "not set" so that MergeWithDefaults can layer sources.
type Config struct {
	// Content source
	GitLabHost  string `json:"gitlab_host,omitempty" validate:"omitempty,url"`
	GitLabToken string `json:"gitlab_token,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`

	// Paths
	CacheDir       string `json:"cache_dir,omitempty"`        // Raw markdown cache (temp/wiki-raw)
	WikiConfigPath string `json:"wiki_config,omitempty"`      // wiki-config.json listing the pages
	DataDir        string `json:"data_dir,omitempty"`         // factions.json, biomes.json, wiki-metadata.json
	SchemaDir      string `json:"schema_dir,omitempty"`       // faction.schema.json, biome.schema.json
	TokensPath     string `json:"tokens_path,omitempty"`      // design-tokens.json
	ReportDir      string `json:"report_dir,omitempty"`       // audit-report.{json,md,html}
	MetricsFile    string `json:"metrics_file,omitempty"`     // Prometheus textfile output
	DatabaseURL    string `json:"database_url,omitempty"`     // Optional run history
	CacheTTLMillis int64  `json:"cache_ttl_ms,omitempty" validate:"gte=0"`

	// Validation and audit thresholds. An expected faction count of 0 means
	// "use the default"; there is no way to expect an empty roster.
	ExpectedFactionCount int     `json:"expected_faction_count,omitempty" validate:"gte=0"`
	ExpectedBiomeCount   int     `json:"expected_biome_count,omitempty" validate:"gte=0"` // 0 = unchecked
	ContrastThreshold    float64 `json:"contrast_threshold,omitempty" validate:"gte=0,lte=21"`
	SimilarityThreshold  float64 `json:"similarity_threshold,omitempty" validate:"gte=0,lte=1"`

	// Remote call behavior
	MaxAttempts          int   `json:"max_attempts,omitempty" validate:"gte=0,lte=10"`
	RetryBaseDelayMillis int64 `json:"retry_base_delay_ms,omitempty" validate:"gte=0"`
	HTTPTimeoutMillis    int64 `json:"http_timeout_ms,omitempty" validate:"gte=0"`

	// Behavior
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Verbose  bool   `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		GitLabHost:           DefaultGitLabHost,
		CacheDir:             filepath.Join("temp", "wiki-raw"),
		WikiConfigPath:       filepath.Join("scripts", "wiki-config.json"),
		DataDir:              filepath.Join("src", "data"),
		SchemaDir:            "schemas",
		TokensPath:           filepath.Join("src", "styles", "tokens", "design-tokens.json"),
		ReportDir:            ".",
		ExpectedFactionCount: DefaultExpectedFactionCount,
		ContrastThreshold:    DefaultContrastThreshold,
		SimilarityThreshold:  DefaultSimilarityThreshold,
		MaxAttempts:          DefaultMaxAttempts,
		RetryBaseDelayMillis: DefaultRetryBaseDelay.Milliseconds(),
		HTTPTimeoutMillis:    DefaultHTTPTimeout.Milliseconds(),
		LogLevel:             "info",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a partial Config from environment lookups.
// lookup is usually os.Getenv; tests pass a map-backed function.
func FromEnv(lookup func(string) string) (Config, error) {
	cfg := Config{
		GitLabHost:     strings.TrimSpace(lookup(EnvGitLabHost)),
		GitLabToken:    strings.TrimSpace(lookup(EnvGitLabToken)),
		ProjectID:      strings.TrimSpace(lookup(EnvProjectID)),
		DatabaseURL:    strings.TrimSpace(lookup(EnvDatabaseURL)),
		LogLevel:       strings.ToLower(strings.TrimSpace(lookup(EnvLogLevel))),
		MetricsFile:    strings.TrimSpace(lookup(EnvMetricsFile)),
		WikiConfigPath: strings.TrimSpace(lookup(EnvWikiConfig)),
	}

	if raw := strings.TrimSpace(lookup(EnvCacheMaxAge)); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			return Config{}, fmt.Errorf("config error: %s must be a non-negative number of milliseconds, got %q", EnvCacheMaxAge, raw)
		}
		cfg.CacheTTLMillis = ms
	}
	if raw := strings.TrimSpace(lookup(EnvExpectedSize)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("config error: %s must be a positive integer, got %q", EnvExpectedSize, raw)
		}
		cfg.ExpectedFactionCount = n
	}

	return cfg, nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.GitLabHost, defaults.GitLabHost)
	mergeString(&result.GitLabToken, defaults.GitLabToken)
	mergeString(&result.ProjectID, defaults.ProjectID)
	mergeString(&result.CacheDir, defaults.CacheDir)
	mergeString(&result.WikiConfigPath, defaults.WikiConfigPath)
	mergeString(&result.DataDir, defaults.DataDir)
	mergeString(&result.SchemaDir, defaults.SchemaDir)
	mergeString(&result.TokensPath, defaults.TokensPath)
	mergeString(&result.ReportDir, defaults.ReportDir)
	mergeString(&result.MetricsFile, defaults.MetricsFile)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.LogLevel, defaults.LogLevel)

	// Numeric fields: use default if zero
	if result.CacheTTLMillis == 0 {
		result.CacheTTLMillis = defaults.CacheTTLMillis
	}
	if result.ExpectedFactionCount == 0 {
		result.ExpectedFactionCount = defaults.ExpectedFactionCount
	}
	if result.ExpectedBiomeCount == 0 {
		result.ExpectedBiomeCount = defaults.ExpectedBiomeCount
	}
	if result.ContrastThreshold == 0 {
		result.ContrastThreshold = defaults.ContrastThreshold
	}
	if result.SimilarityThreshold == 0 {
		result.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.RetryBaseDelayMillis == 0 {
		result.RetryBaseDelayMillis = defaults.RetryBaseDelayMillis
	}
	if result.HTTPTimeoutMillis == 0 {
		result.HTTPTimeoutMillis = defaults.HTTPTimeoutMillis
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)
	result.Verbose = c.Verbose || defaults.Verbose

	return result
}

// Resolve layers configuration sources given highest precedence first
// (typically flags, environment, config file) over Defaults().
func Resolve(layers ...Config) Config {
	var result Config
	for _, layer := range layers {
		result = result.MergeWithDefaults(layer)
	}
	return result.MergeWithDefaults(Defaults())
}

func mergeString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Required remote settings are checked separately by ValidateRemote so that
// offline stages (transform, validate, audit) run without credentials.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// ValidateRemote checks the settings needed before any network activity.
// Every missing or invalid field is reported in one ConfigurationError.
func (c *Config) ValidateRemote() error {
	var problems []string
	if strings.TrimSpace(c.GitLabToken) == "" {
		problems = append(problems, fmt.Sprintf("missing access token (set %s)", EnvGitLabToken))
	}
	switch {
	case strings.TrimSpace(c.ProjectID) == "":
		problems = append(problems, fmt.Sprintf("missing project id (set %s)", EnvProjectID))
	case !validProjectID(c.ProjectID):
		problems = append(problems, fmt.Sprintf("invalid project id %q: expected a positive number or a namespace/project path", c.ProjectID))
	}
	if c.GitLabHost == "" {
		problems = append(problems, fmt.Sprintf("missing host (set %s)", EnvGitLabHost))
	}
	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func validProjectID(id string) bool {
	if n, err := strconv.Atoi(id); err == nil {
		return n > 0
	}
	parts := strings.Split(id, "/")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

// CacheTTL returns the effective cache TTL. An explicit setting wins over the
// wiki config's cacheTTL, which wins over DefaultCacheTTL.
func (c *Config) CacheTTL(wiki *types.WikiConfig) time.Duration {
	if c.CacheTTLMillis > 0 {
		return time.Duration(c.CacheTTLMillis) * time.Millisecond
	}
	if wiki != nil && wiki.CacheTTL > 0 {
		return time.Duration(wiki.CacheTTL) * time.Millisecond
	}
	return DefaultCacheTTL
}

// RetryBaseDelay returns the backoff base as a duration.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMillis) * time.Millisecond
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMillis) * time.Millisecond
}

// FactionsPath is the factions dataset file.
func (c *Config) FactionsPath() string { return filepath.Join(c.DataDir, "factions.json") }

// BiomesPath is the biomes dataset file.
func (c *Config) BiomesPath() string { return filepath.Join(c.DataDir, "biomes.json") }

// MetadataPath is the sync metadata file.
func (c *Config) MetadataPath() string { return filepath.Join(c.DataDir, "wiki-metadata.json") }

// FactionSchemaPath is the JSON Schema for a single faction.
func (c *Config) FactionSchemaPath() string {
	return filepath.Join(c.SchemaDir, "faction.schema.json")
}

// BiomeSchemaPath is the JSON Schema for a single biome.
func (c *Config) BiomeSchemaPath() string {
	return filepath.Join(c.SchemaDir, "biome.schema.json")
}

package types

// Wiki page data types: which dataset a page feeds.
const (
	DataTypeFactions     = "factions"
	DataTypeBiomes       = "biomes"
	DataTypeDesignTokens = "designTokens"
	DataTypeContent      = "content"
)

// WikiPageConfig describes one wiki page to synchronize.
type WikiPageConfig struct {
	Slug       string `json:"slug" validate:"required"`
	URL        string `json:"url,omitempty"`
	Purpose    string `json:"purpose"`
	OutputPath string `json:"outputPath,omitempty"` // defaults to a file under the cache dir
	DataType   string `json:"dataType,omitempty" validate:"omitempty,oneof=factions biomes designTokens content"`
}

// WikiConfig is the list of pages the pipeline pulls from the wiki.
type WikiConfig struct {
	WikiPages   []WikiPageConfig `json:"wikiPages" validate:"required,min=1,dive"`
	CacheTTL    int64            `json:"cacheTTL,omitempty" validate:"gte=0"` // milliseconds
	Description string           `json:"description,omitempty"`
}

// PageFor returns the first page feeding the given data type, or nil.
func (c *WikiConfig) PageFor(dataType string) *WikiPageConfig {
	for i := range c.WikiPages {
		if c.WikiPages[i].DataType == dataType {
			return &c.WikiPages[i]
		}
	}
	return nil
}

// SyncMetadata records the outcome of the last transform run
// (src/data/wiki-metadata.json).
type SyncMetadata struct {
	RunID              string   `json:"runId,omitempty"`
	LastSynced         string   `json:"lastSynced"`
	FactionCount       int      `json:"factionCount"`
	BiomeCount         int      `json:"biomeCount"`
	SyncDurationMS     int64    `json:"syncDuration"`
	WikiPagesProcessed int      `json:"wikiPagesProcessed"`
	Errors             []string `json:"errors,omitempty"`
}

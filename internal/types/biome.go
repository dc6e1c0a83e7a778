package types

// Threat levels for biomes.
const (
	ThreatLevelLow     = "Low"
	ThreatLevelMedium  = "Medium"
	ThreatLevelHigh    = "High"
	ThreatLevelExtreme = "Extreme"
)

// BiomeVisualCharacteristics describes how a biome looks and feels.
type BiomeVisualCharacteristics struct {
	Climate     string   `json:"climate"`
	Temperature string   `json:"temperature"`
	Weather     []string `json:"weather"`
	Visibility  string   `json:"visibility"`
	Terrain     string   `json:"terrain"`
}

// Biome is one explorable region of the game world.
type Biome struct {
	ID                    string                      `json:"id"`
	Name                  string                      `json:"name"`
	DisplayName           string                      `json:"displayName,omitempty"`
	ThreatTier            string                      `json:"threatTier,omitempty"`
	ThreatLevel           string                      `json:"threatLevel,omitempty"`
	Location              string                      `json:"location,omitempty"`
	LaunchStatus          string                      `json:"launchStatus,omitempty"`
	LaunchWindow          string                      `json:"launchWindow,omitempty"`
	Geography             string                      `json:"geography,omitempty"`
	MacroFeatures         []string                    `json:"macroFeatures,omitempty"`
	VisualCharacteristics *BiomeVisualCharacteristics `json:"visualCharacteristics,omitempty"`
	KeyFeatures           []string                    `json:"keyFeatures,omitempty"`
	FactionPresence       []string                    `json:"factionPresence,omitempty"`
	Hazards               []string                    `json:"hazards,omitempty"`
	Resources             []string                    `json:"resources,omitempty"`
	Description           string                      `json:"description,omitempty"`
	LastSynced            string                      `json:"lastSynced,omitempty"`
}

// BiomesData is the persisted biomes dataset (src/data/biomes.json).
type BiomesData struct {
	Biomes     []Biome `json:"biomes"`
	LastSynced string  `json:"lastSynced,omitempty"`
}

// FindByID returns the biome with the given id, or nil.
func (d *BiomesData) FindByID(id string) *Biome {
	for i := range d.Biomes {
		if d.Biomes[i].ID == id {
			return &d.Biomes[i]
		}
	}
	return nil
}

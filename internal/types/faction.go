// Package types provides type definitions for the structured data synchronized from the wiki.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Launch statuses shared by factions and biomes.
const (
	LaunchStatusEALaunch   = "ea-launch"
	LaunchStatusExpansion1 = "expansion-1"
	LaunchStatusExpansion2 = "expansion-2"
	LaunchStatusPlanned    = "planned"
)

// FactionColors is the visual identity of a faction. Values are #RRGGBB.
type FactionColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// FactionAbility is one unique ability of a faction
type FactionAbility struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cooldown    string `json:"cooldown"` // passive, short, medium, long
}

// Faction is one playable faction as rendered on the site. It is a read
// model for validation and audits; dataset rewrites go through
// dataset.Collection so members this struct does not model survive.
type Faction struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ShortName       string           `json:"shortName,omitempty"`
	Role            string           `json:"role,omitempty"`
	CoopAbility     string           `json:"coopAbility,omitempty"`
	HomeBiome       string           `json:"homeBiome,omitempty"`
	LaunchStatus    string           `json:"launchStatus,omitempty"`
	LaunchWindow    string           `json:"launchWindow,omitempty"`
	Philosophy      string           `json:"philosophy,omitempty"`
	Specialty       string           `json:"specialty,omitempty"`
	Lore            string           `json:"lore,omitempty"`
	Colors          *FactionColors   `json:"colors,omitempty"`
	Playstyle       string           `json:"playstyle,omitempty"`
	Strengths       []string         `json:"strengths,omitempty"`
	Weaknesses      []string         `json:"weaknesses,omitempty"`
	UniqueAbilities []FactionAbility `json:"uniqueAbilities,omitempty"`
	LastSynced      string           `json:"lastSynced,omitempty"`
}

// FactionsData is the persisted factions dataset (src/data/factions.json).
type FactionsData struct {
	Factions   []Faction `json:"factions"`
	LastSynced string    `json:"lastSynced,omitempty"`
}

// IDs returns the faction identifiers in dataset order.
func (d *FactionsData) IDs() []string {
	ids := make([]string, 0, len(d.Factions))
	for _, f := range d.Factions {
		ids = append(ids, f.ID)
	}
	return ids
}

// FindByID returns the faction with the given id, or nil.
func (d *FactionsData) FindByID(id string) *Faction {
	for i := range d.Factions {
		if d.Factions[i].ID == id {
			return &d.Factions[i]
		}
	}
	return nil
}

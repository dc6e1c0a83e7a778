package audit

import (
	"fmt"
	"strings"

	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// DefaultSimilarityThreshold is the lowest text similarity accepted without
// a warning.
const DefaultSimilarityThreshold = 0.85

const excerptLength = 100

// Options tunes the comparison.
type Options struct {
	SimilarityThreshold float64
}

// DefaultOptions returns the standard comparison settings.
func DefaultOptions() Options {
	return Options{SimilarityThreshold: DefaultSimilarityThreshold}
}

func (o Options) threshold() float64 {
	if o.SimilarityThreshold <= 0 {
		return DefaultSimilarityThreshold
	}
	return o.SimilarityThreshold
}

// CompareFactions records the differences between the website snapshot
// (previous) and the wiki-transformed data (current). Entities are matched
// by id; field paths index into current, or into previous for factions that
// only exist there.
func (r *Report) CompareFactions(previous, current *types.FactionsData, opts Options) {
	if n, m := len(current.Factions), len(previous.Factions); n != m {
		r.Add(SeverityCritical, "factionCount", n, m,
			fmt.Sprintf("Faction count mismatch: wiki has %d, website has %d", n, m))
	}

	for i, wiki := range current.Factions {
		path := fmt.Sprintf("factions[%d]", i)
		website := previous.FindByID(wiki.ID)
		if website == nil {
			r.Add(SeverityCritical, path+".missing", wiki.Name, nil,
				fmt.Sprintf("Faction %q exists in wiki but not on website", wiki.Name))
			continue
		}

		if wiki.Colors != nil && website.Colors != nil {
			r.compareColor(path+".colors.primary", wiki.Name, "primary", wiki.Colors.Primary, website.Colors.Primary)
			r.compareColor(path+".colors.secondary", wiki.Name, "secondary", wiki.Colors.Secondary, website.Colors.Secondary)
			r.compareColor(path+".colors.accent", wiki.Name, "accent", wiki.Colors.Accent, website.Colors.Accent)
		}

		r.compareText(path+".lore", wiki.Name, "lore", wiki.Lore, website.Lore, opts.threshold())
	}

	for j, website := range previous.Factions {
		if current.FindByID(website.ID) == nil {
			r.Add(SeverityCritical, fmt.Sprintf("factions[%d].missing", j), nil, website.Name,
				fmt.Sprintf("Faction %q exists on website but not in wiki", website.Name))
		}
	}
}

// CompareBiomes records biome differences the same way CompareFactions does
// for factions, comparing descriptions by similarity.
func (r *Report) CompareBiomes(previous, current *types.BiomesData, opts Options) {
	if n, m := len(current.Biomes), len(previous.Biomes); n != m {
		r.Add(SeverityCritical, "biomeCount", n, m,
			fmt.Sprintf("Biome count mismatch: wiki has %d, website has %d", n, m))
	}

	for i, wiki := range current.Biomes {
		path := fmt.Sprintf("biomes[%d]", i)
		website := previous.FindByID(wiki.ID)
		if website == nil {
			r.Add(SeverityCritical, path+".missing", wiki.Name, nil,
				fmt.Sprintf("Biome %q exists in wiki but not on website", wiki.Name))
			continue
		}
		r.compareText(path+".description", wiki.Name, "description", wiki.Description, website.Description, opts.threshold())
	}

	for j, website := range previous.Biomes {
		if current.FindByID(website.ID) == nil {
			r.Add(SeverityCritical, fmt.Sprintf("biomes[%d].missing", j), nil, website.Name,
				fmt.Sprintf("Biome %q exists on website but not in wiki", website.Name))
		}
	}
}

func (r *Report) compareColor(field, entity, key, wiki, website string) {
	w, s := strings.ToUpper(wiki), strings.ToUpper(website)
	if w == s {
		return
	}
	r.Add(SeverityCritical, field, w, s, fmt.Sprintf("%s: %s color mismatch", entity, key))
}

// compareText warns when two texts drift below threshold and reports a
// whitespace-only difference as minor. An empty side is not compared.
func (r *Report) compareText(field, entity, label, wiki, website string, threshold float64) {
	if wiki == "" || website == "" || wiki == website {
		return
	}
	similarity := Similarity(wiki, website)
	switch {
	case similarity < threshold:
		r.Add(SeverityWarning, field, excerpt(wiki, excerptLength), excerpt(website, excerptLength),
			fmt.Sprintf("%s: %s text similarity %.1f%% (threshold: %.4g%%)", entity, label, similarity*100, threshold*100))
	case sameModuloSpace(wiki, website):
		r.Add(SeverityMinor, field, wiki, website,
			fmt.Sprintf("%s: %s differs only in whitespace", entity, label))
	}
}

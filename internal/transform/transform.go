// Package transform turns cached wiki markdown into updated datasets.
//
// Entity fields are not yet derived from wiki tables: the wiki's table layout
// for faction and biome profiles has not been fixed, so a transform keeps
// every existing entity as is and only refreshes its lastSynced stamp. The
// page is still parsed so that structural problems show up in the logs and
// in Stats.
package transform

import (
	"errors"
	"fmt"
	"time"

	"github.com/slurpgg/bloom-wikisync/internal/dataset"
	"github.com/slurpgg/bloom-wikisync/internal/markdown"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// ErrNoBaseline is returned when there is no existing dataset to merge onto.
// Bootstrap datasets are curated by hand and must exist before a sync.
var ErrNoBaseline = errors.New("no existing dataset to merge onto")

const lastSyncedKey = "lastSynced"

// Stats describes what was found in a wiki page during a transform.
type Stats struct {
	FrontMatterFields int
	Tables            int
	TableRows         int
	Entities          int
}

// Collection keys of the dataset files.
const (
	FactionsKey = "factions"
	BiomesKey   = "biomes"
)

// Factions returns a copy of existing with every faction, and the collection,
// stamped with now. All other members are kept byte for byte.
func Factions(existing *dataset.Collection, raw string, now time.Time) (*dataset.Collection, Stats, error) {
	return stamp(existing, raw, now)
}

// Biomes returns a copy of existing with every biome, and the collection,
// stamped with now. All other members are kept byte for byte.
func Biomes(existing *dataset.Collection, raw string, now time.Time) (*dataset.Collection, Stats, error) {
	return stamp(existing, raw, now)
}

func stamp(existing *dataset.Collection, raw string, now time.Time) (*dataset.Collection, Stats, error) {
	if existing == nil {
		return nil, Stats{}, ErrNoBaseline
	}
	stats := inspect(raw)
	synced := types.FormatTimestamp(now)

	out := existing.Clone()
	for i, item := range out.Items {
		if err := item.Set(lastSyncedKey, synced); err != nil {
			return nil, Stats{}, fmt.Errorf("%s[%d]: %w", out.Key, i, err)
		}
	}
	if err := out.Root.Set(lastSyncedKey, synced); err != nil {
		return nil, Stats{}, err
	}
	stats.Entities = len(out.Items)
	return out, stats, nil
}

func inspect(raw string) Stats {
	meta, body := markdown.SplitFrontMatter(raw)
	tables := markdown.ExtractTables(markdown.Parse(body))
	stats := Stats{FrontMatterFields: len(meta), Tables: len(tables)}
	for _, t := range tables {
		stats.TableRows += len(t.Rows)
	}
	return stats
}

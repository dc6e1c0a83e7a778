package validation

import (
	"fmt"
	"strconv"

	"github.com/slurpgg/bloom-wikisync/internal/colors"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Dataset kinds accepted by CheckCount.
const (
	KindFactions = "factions"
	KindBiomes   = "biomes"
)

// CheckCount returns a critical issue when actual differs from expected.
func CheckCount(kind string, actual, expected int) *Issue {
	if actual == expected {
		return nil
	}
	issueType := TypeFactionCount
	if kind == KindBiomes {
		issueType = TypeBiomeCount
	}
	return &Issue{
		Type:     issueType,
		Severity: SeverityCritical,
		Field:    kind,
		Message:  fmt.Sprintf("Expected %d %s, found %d", expected, kind, actual),
		Expected: strconv.Itoa(expected),
		Actual:   strconv.Itoa(actual),
	}
}

// CheckContrast compares each faction's primary color against its secondary
// and accent colors. A ratio below threshold, or a color that cannot be
// parsed, is a warning. Factions without colors are skipped.
func CheckContrast(factions []types.Faction, threshold float64) []Issue {
	var issues []Issue
	for _, f := range factions {
		if f.Colors == nil {
			continue
		}
		pairs := []struct {
			field string
			other string
		}{
			{"colors.primary vs colors.secondary", f.Colors.Secondary},
			{"colors.primary vs colors.accent", f.Colors.Accent},
		}
		for _, p := range pairs {
			if issue := contrastIssue(f.Name, p.field, f.Colors.Primary, p.other, threshold); issue != nil {
				issues = append(issues, *issue)
			}
		}
	}
	return issues
}

func contrastIssue(entity, field, a, b string, threshold float64) *Issue {
	ratio, err := colors.ContrastRatio(a, b)
	if err != nil {
		return &Issue{
			Type:     TypeContrastRatio,
			Severity: SeverityWarning,
			Entity:   entity,
			Field:    field,
			Message:  fmt.Sprintf("Cannot compute contrast ratio: %v", err),
		}
	}
	if colors.MeetsThreshold(ratio, threshold) {
		return nil
	}
	return &Issue{
		Type:     TypeContrastRatio,
		Severity: SeverityWarning,
		Entity:   entity,
		Field:    field,
		Message:  fmt.Sprintf("Contrast ratio %.2f is below WCAG AA threshold (%g)", ratio, threshold),
		Expected: fmt.Sprintf(">= %g", threshold),
		Actual:   fmt.Sprintf("%.2f", ratio),
	}
}

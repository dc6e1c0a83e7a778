// Package colors provides hex color normalization and WCAG contrast math.
package colors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// AAThreshold is the WCAG 2.x level AA minimum contrast for normal text.
const AAThreshold = 4.5

var hexRe = regexp.MustCompile(`^#?(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// NormalizeHex returns hex as "#RRGGBB" in upper case. Three-digit values are
// expanded and a missing "#" is added. The function is idempotent.
func NormalizeHex(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		var sb strings.Builder
		for _, c := range hex {
			sb.WriteRune(c)
			sb.WriteRune(c)
		}
		hex = sb.String()
	}
	return "#" + strings.ToUpper(hex)
}

// IsHex reports whether s is a 3- or 6-digit hex color, with or without "#".
func IsHex(s string) bool {
	return hexRe.MatchString(strings.TrimSpace(s))
}

// EqualHex compares two colors case-insensitively after normalization.
func EqualHex(a, b string) bool {
	return strings.EqualFold(NormalizeHex(a), NormalizeHex(b))
}

// RelativeLuminance returns the WCAG relative luminance of a hex color.
func RelativeLuminance(hex string) (float64, error) {
	if !IsHex(hex) {
		return 0, fmt.Errorf("invalid hex color %q", hex)
	}
	c, err := colorful.Hex(NormalizeHex(hex))
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, nil
}

// ContrastRatio returns (L1+0.05)/(L2+0.05) with L1 the lighter color.
// The result is in [1, 21].
func ContrastRatio(a, b string) (float64, error) {
	la, err := RelativeLuminance(a)
	if err != nil {
		return 0, err
	}
	lb, err := RelativeLuminance(b)
	if err != nil {
		return 0, err
	}
	if lb > la {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05), nil
}

// MeetsThreshold reports whether ratio passes threshold. The comparison is
// inclusive: a ratio of exactly the threshold passes.
func MeetsThreshold(ratio, threshold float64) bool {
	return ratio >= threshold
}

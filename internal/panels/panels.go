// Package panels resolves which panel configurations are physically valid
// for a given opening. All functions are pure; an empty result means the
// dimensions admit no configuration, which the UI treats as a dead end
// rather than an error.
package panels

import (
	"math"

	"doorquote/internal/catalog"
)

// CountOption is one valid way to divide an opening: the panel count and
// the resulting width of each panel.
type CountOption struct {
	Count         int     `json:"count"`
	PerPanelWidth float64 `json:"per_panel_width"`
}

// AvailableCounts enumerates valid panel counts for a nominal opening
// width, ascending by count. The usable width is the nominal width minus
// the rule's opening offset; a count is valid iff the per-panel width
// falls within the rule's bounds. A width of zero or less yields nil.
func AvailableCounts(width float64, rule catalog.PanelRule) []CountOption {
	if width <= 0 || rule.MaxCount < rule.MinCount {
		return nil
	}

	usable := width - rule.OpeningOffset
	if usable <= 0 {
		return nil
	}

	var opts []CountOption
	for count := rule.MinCount; count <= rule.MaxCount; count++ {
		per := roundCents(usable / float64(count))
		if per < rule.MinPanelWidth || per > rule.MaxPanelWidth {
			continue
		}
		opts = append(opts, CountOption{Count: count, PerPanelWidth: per})
	}
	return opts
}

// Layouts returns the layout labels a customer can choose from for the
// given panel count. Empty means the product has exactly one implicit
// layout for that count and no choice is presented.
func Layouts(count int, product catalog.ProductDefinition) []string {
	if count <= 0 || !product.SupportsPanelCount {
		return nil
	}
	return product.LayoutsFor(count)
}

// Per-panel widths are quoted to the hundredth of an inch.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

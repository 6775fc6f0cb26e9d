package quote

import (
	"fmt"

	"doorquote/internal/catalog"
	"doorquote/internal/panels"
)

// Validate checks a configured item against its product's constraints and
// returns a field-to-message map for inline display. An empty map means
// the item may be committed. Saving an item is hard-gated on this.
func Validate(item Item, reg *catalog.Registry) map[string]string {
	errs := make(map[string]string)

	product, ok := reg.Lookup(item.ProductSlug)
	if !ok {
		errs["product"] = "select a door type"
		return errs
	}

	if item.Width <= 0 {
		errs["width"] = "enter an opening width"
	} else if item.Width > product.MaxWidth {
		errs["width"] = fmt.Sprintf("maximum width is %g in", product.MaxWidth)
	}

	if item.Height <= 0 {
		errs["height"] = "enter an opening height"
	} else if item.Height > product.MaxHeight {
		errs["height"] = fmt.Sprintf("maximum height is %g in", product.MaxHeight)
	}

	if item.ExteriorFinish == "" {
		errs["exterior_finish"] = "choose an exterior finish"
	}
	if item.GlassType == "" {
		errs["glass_type"] = "choose a glass type"
	}
	if item.HardwareFinish == "" {
		errs["hardware_finish"] = "choose a hardware finish"
	}

	if product.SupportsPanelCount {
		if item.PanelCount == 0 {
			errs["panel_count"] = "choose a panel configuration"
		} else if errs["width"] == "" {
			opts := panels.AvailableCounts(item.Width, product.PanelRule)
			if !countAvailable(item.PanelCount, opts) {
				errs["panel_count"] = "panel count is not valid for this width"
			} else if layouts := product.LayoutsFor(item.PanelCount); len(layouts) > 1 {
				if item.PanelLayout == "" {
					errs["panel_layout"] = "choose a panel layout"
				} else if !contains(layouts, item.PanelLayout) {
					errs["panel_layout"] = "layout is not valid for this panel count"
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func countAvailable(count int, opts []panels.CountOption) bool {
	for _, o := range opts {
		if o.Count == count {
			return true
		}
	}
	return false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

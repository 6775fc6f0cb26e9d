// Package pricing prices configured items and composes quote totals. All
// functions are pure; nothing here clamps or rounds — presentation owns
// rounding, and invalid item states are kept out upstream by the
// validator.
package pricing

import (
	"doorquote/internal/catalog"
	"doorquote/internal/quote"
)

// Rates are the quote-level service and tax rates.
type Rates struct {
	RegularDelivery    float64
	WhiteGloveDelivery float64
	Installation       float64
	TaxRate            float64
}

// DefaultRates returns the current published service rates.
func DefaultRates() Rates {
	return Rates{
		RegularDelivery:    800,
		WhiteGloveDelivery: 1500,
		Installation:       1750,
		TaxRate:            0.08,
	}
}

// ItemTotal prices one configured item, composed in a fixed order for
// reproducibility: base price, plus the fixed premium system surcharge
// when the premium variant is selected (not per panel), plus the glass
// modifier applied per physical panel. Products without panel counts are
// one physical panel. Finish and hardware choices carry no price delta.
func ItemTotal(item quote.Item, product catalog.ProductDefinition) float64 {
	total := product.BasePrice

	if product.IsPremiumSystem(item.SystemType) {
		total += product.PremiumSurcharge
	}

	panelCount := item.PanelCount
	if !product.SupportsPanelCount {
		panelCount = 1
	}
	total += product.GlassModifier(item.GlassType) * float64(panelCount)

	return total
}

// Totals is the composed quote-level pricing breakdown.
type Totals struct {
	Subtotal         float64 `json:"subtotal"`
	DeliveryCost     float64 `json:"delivery_cost"`
	InstallationCost float64 `json:"installation_cost"`
	Tax              float64 `json:"tax"`
	GrandTotal       float64 `json:"grand_total"`
}

// QuoteTotals composes the quote total from the item list and the
// quote-level service selections. Items whose product cannot be resolved
// contribute zero, silently. The tax base includes delivery and
// installation, not item price alone.
func QuoteTotals(items []quote.Item, services quote.ServiceOptions, reg *catalog.Registry, rates Rates) Totals {
	var t Totals

	for _, item := range items {
		product, ok := reg.Lookup(item.ProductSlug)
		if !ok {
			continue
		}
		t.Subtotal += ItemTotal(item, product)
	}

	t.DeliveryCost = rates.DeliveryCost(services.DeliveryType)
	if services.Installation {
		t.InstallationCost = rates.Installation
	}

	t.Tax = rates.TaxRate * (t.Subtotal + t.DeliveryCost + t.InstallationCost)
	t.GrandTotal = t.Subtotal + t.DeliveryCost + t.InstallationCost + t.Tax

	return t
}

// DeliveryCost is the fixed-tier delivery lookup. Unknown tiers cost
// nothing, same as none.
func (r Rates) DeliveryCost(deliveryType string) float64 {
	switch deliveryType {
	case quote.DeliveryRegular:
		return r.RegularDelivery
	case quote.DeliveryWhiteGlove:
		return r.WhiteGloveDelivery
	default:
		return 0
	}
}

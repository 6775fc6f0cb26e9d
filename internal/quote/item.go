// Package quote holds the customer-facing quote domain: configured door
// items, quote-level service selections, contact intake, and the field
// validation that gates the wizard.
package quote

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"doorquote/internal/catalog"
)

// Item is one configured door unit within a quote. GlassModifier and Total
// are memoized projections of the other fields; every write that can
// invalidate them is refreshed within the same state transition.
type Item struct {
	ID          string `json:"id"`
	ProductSlug string `json:"product_slug"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	SystemType  string `json:"system_type,omitempty"`
	PanelCount  int    `json:"panel_count,omitempty"`
	PanelLayout string `json:"panel_layout,omitempty"`
	RoomName    string `json:"room_name,omitempty"`

	ExteriorFinish string `json:"exterior_finish"`
	InteriorFinish string `json:"interior_finish,omitempty"`
	GlassType      string `json:"glass_type"`
	HardwareFinish string `json:"hardware_finish"`

	GlassModifier float64 `json:"glass_modifier"`
	Total         float64 `json:"total"`
}

// NewItem creates a fresh item for the given product.
func NewItem(productSlug string) Item {
	return Item{
		ID:          uuid.NewString(),
		ProductSlug: productSlug,
	}
}

// Clone duplicates the item under a new id.
func (i Item) Clone() Item {
	c := i
	c.ID = uuid.NewString()
	return c
}

// TwoTone reports whether the item has a distinct interior finish.
func (i Item) TwoTone() bool {
	return i.InteriorFinish != "" && i.InteriorFinish != i.ExteriorFinish
}

// ItemPatch is a partial update merged into an in-progress item. Nil
// fields are left untouched.
type ItemPatch struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	SystemType  *string `json:"system_type,omitempty"`
	PanelCount  *int    `json:"panel_count,omitempty"`
	PanelLayout *string `json:"panel_layout,omitempty"`
	RoomName    *string `json:"room_name,omitempty"`

	ExteriorFinish *string `json:"exterior_finish,omitempty"`
	InteriorFinish *string `json:"interior_finish,omitempty"`
	GlassType      *string `json:"glass_type,omitempty"`
	HardwareFinish *string `json:"hardware_finish,omitempty"`
}

// Apply merges the patch into a copy of the item. A width change clears
// the panel count and layout: no stale panel state may survive a width
// edit. Derived pricing fields are the caller's responsibility.
func (i Item) Apply(p ItemPatch) Item {
	out := i

	if p.Width != nil && *p.Width != out.Width {
		out.Width = *p.Width
		out.PanelCount = 0
		out.PanelLayout = ""
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if p.SystemType != nil {
		out.SystemType = *p.SystemType
	}
	if p.PanelCount != nil {
		out.PanelCount = *p.PanelCount
	}
	if p.PanelLayout != nil {
		out.PanelLayout = *p.PanelLayout
	}
	if p.RoomName != nil {
		out.RoomName = *p.RoomName
	}
	if p.ExteriorFinish != nil {
		out.ExteriorFinish = *p.ExteriorFinish
	}
	if p.InteriorFinish != nil {
		out.InteriorFinish = *p.InteriorFinish
	}
	if p.GlassType != nil {
		out.GlassType = *p.GlassType
	}
	if p.HardwareFinish != nil {
		out.HardwareFinish = *p.HardwareFinish
	}

	return out
}

// ServiceOptions are quote-level delivery and installation selections.
type ServiceOptions struct {
	DeliveryType string `json:"delivery_type"` // none, regular, white-glove
	Installation bool   `json:"installation"`
}

// Delivery tiers.
const (
	DeliveryNone       = "none"
	DeliveryRegular    = "regular"
	DeliveryWhiteGlove = "white-glove"
)

// LineItem is the flattened persistence shape of one configured item.
type LineItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// LineItem flattens the item for persistence: name is the door type,
// description joins dimensions, finish(es), glass, hardware and room.
func (i Item) LineItem(product catalog.ProductDefinition) LineItem {
	var parts []string
	parts = append(parts, fmt.Sprintf("%g x %g in", i.Width, i.Height))

	if i.TwoTone() {
		parts = append(parts, fmt.Sprintf("%s / %s two-tone", i.ExteriorFinish, i.InteriorFinish))
	} else if i.ExteriorFinish != "" {
		parts = append(parts, i.ExteriorFinish)
	}
	if i.GlassType != "" {
		parts = append(parts, i.GlassType+" glass")
	}
	if i.HardwareFinish != "" {
		parts = append(parts, i.HardwareFinish+" hardware")
	}
	if product.SupportsRoomName && i.RoomName != "" {
		parts = append(parts, i.RoomName)
	}

	return LineItem{
		ID:          i.ID,
		Name:        product.Name,
		Description: strings.Join(parts, ", "),
		Quantity:    1,
		UnitPrice:   i.Total,
		Total:       i.Total,
	}
}

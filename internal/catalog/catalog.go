package catalog

// GlassOption is a glass choice with its per-panel price modifier. The
// modifier may be negative (downgrades price below the base configuration).
type GlassOption struct {
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	PriceModifier float64 `json:"price_modifier"`
}

// SystemTypeOption is a track/frame variant for products that support one.
// Premium variants carry the product's fixed surcharge.
type SystemTypeOption struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Premium bool   `json:"premium"`
}

// PanelRule bounds the panel enumeration for a product family.
// OpeningOffset is subtracted from the nominal opening width for frame and
// jamb material before dividing into panels.
type PanelRule struct {
	MinCount      int     `json:"min_count"`
	MaxCount      int     `json:"max_count"`
	MinPanelWidth float64 `json:"min_panel_width"`
	MaxPanelWidth float64 `json:"max_panel_width"`
	OpeningOffset float64 `json:"opening_offset"`
}

// ProductDefinition describes one door family. Definitions are static and
// never mutated after registry construction.
type ProductDefinition struct {
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`

	MaxWidth  float64 `json:"max_width"`
	MaxHeight float64 `json:"max_height"`

	SupportsPanelCount bool      `json:"supports_panel_count"`
	PanelRule          PanelRule `json:"panel_rule,omitempty"`

	SupportsSystemType bool               `json:"supports_system_type"`
	SystemTypes        []SystemTypeOption `json:"system_types,omitempty"`
	PremiumSurcharge   float64            `json:"premium_surcharge,omitempty"`

	SupportsRoomName bool `json:"supports_room_name"`

	Finishes         []string      `json:"finishes"`
	HardwareFinishes []string      `json:"hardware_finishes"`
	GlassOptions     []GlassOption `json:"glass_options"`

	// PanelLayouts maps a panel count to its layout labels. Counts with no
	// entry have exactly one implicit layout.
	PanelLayouts map[int][]string `json:"panel_layouts,omitempty"`
}

// GlassOption returns the glass option with the given slug.
func (p ProductDefinition) GlassOption(slug string) (GlassOption, bool) {
	for _, g := range p.GlassOptions {
		if g.Slug == slug {
			return g, true
		}
	}
	return GlassOption{}, false
}

// GlassModifier returns the per-panel price modifier for the given glass
// slug, or 0 when the slug is unknown or unset.
func (p ProductDefinition) GlassModifier(slug string) float64 {
	if g, ok := p.GlassOption(slug); ok {
		return g.PriceModifier
	}
	return 0
}

// IsPremiumSystem reports whether the given system type slug selects the
// product's premium variant.
func (p ProductDefinition) IsPremiumSystem(slug string) bool {
	if !p.SupportsSystemType {
		return false
	}
	for _, st := range p.SystemTypes {
		if st.Slug == slug {
			return st.Premium
		}
	}
	return false
}

// LayoutsFor returns the layout labels for a panel count. An empty result
// means the count has one implicit layout and no choice is required.
func (p ProductDefinition) LayoutsFor(count int) []string {
	return p.PanelLayouts[count]
}

// Registry is the immutable, loaded-once product catalog. It is the
// constraint source for the resolver, the calculators, and the validator.
type Registry struct {
	products map[string]ProductDefinition
	order    []string
}

// NewRegistry builds a registry from the given definitions, preserving
// order for listing.
func NewRegistry(defs ...ProductDefinition) *Registry {
	r := &Registry{products: make(map[string]ProductDefinition, len(defs))}
	for _, d := range defs {
		if _, dup := r.products[d.Slug]; dup {
			continue
		}
		r.products[d.Slug] = d
		r.order = append(r.order, d.Slug)
	}
	return r
}

// Lookup returns the product definition for a slug.
func (r *Registry) Lookup(slug string) (ProductDefinition, bool) {
	p, ok := r.products[slug]
	return p, ok
}

// Products returns all definitions in catalog order.
func (r *Registry) Products() []ProductDefinition {
	out := make([]ProductDefinition, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.products[slug])
	}
	return out
}

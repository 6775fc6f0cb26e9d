package quote

import (
	"testing"

	"doorquote/internal/catalog"
)

func validSlidingItem() Item {
	item := NewItem("sliding")
	item.Width = 120
	item.Height = 96
	item.ExteriorFinish = "matte-black"
	item.GlassType = "clear"
	item.HardwareFinish = "matte-black"
	item.PanelCount = 3
	item.PanelLayout = "OXO"
	return item
}

func TestValidateAcceptsCompleteItem(t *testing.T) {
	reg := catalog.Default()
	if errs := Validate(validSlidingItem(), reg); len(errs) != 0 {
		t.Fatalf("expected valid item, got %v", errs)
	}
}

func TestValidateFieldRules(t *testing.T) {
	reg := catalog.Default()

	tests := []struct {
		name   string
		mutate func(*Item)
		field  string
	}{
		{"unknown product", func(it *Item) { it.ProductSlug = "stable-door" }, "product"},
		{"zero width", func(it *Item) { it.Width = 0 }, "width"},
		{"width over max", func(it *Item) { it.Width = 600 }, "width"},
		{"zero height", func(it *Item) { it.Height = 0 }, "height"},
		{"height over max", func(it *Item) { it.Height = 200 }, "height"},
		{"no exterior finish", func(it *Item) { it.ExteriorFinish = "" }, "exterior_finish"},
		{"no glass", func(it *Item) { it.GlassType = "" }, "glass_type"},
		{"no hardware", func(it *Item) { it.HardwareFinish = "" }, "hardware_finish"},
		{"no panel count", func(it *Item) { it.PanelCount = 0 }, "panel_count"},
		{"panel count invalid for width", func(it *Item) { it.PanelCount = 5 }, "panel_count"},
		{"no layout", func(it *Item) { it.PanelLayout = "" }, "panel_layout"},
		{"layout not in family set", func(it *Item) { it.PanelLayout = "XXX" }, "panel_layout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validSlidingItem()
			tt.mutate(&item)
			errs := Validate(item, reg)
			if errs[tt.field] == "" {
				t.Errorf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidatePivotSkipsPanelRules(t *testing.T) {
	reg := catalog.Default()

	item := NewItem("pivot")
	item.Width = 48
	item.Height = 96
	item.ExteriorFinish = "bronze"
	item.GlassType = "laminated"
	item.HardwareFinish = "bronze"

	if errs := Validate(item, reg); len(errs) != 0 {
		t.Fatalf("pivot door needs no panel configuration, got %v", errs)
	}
}

func TestValidateSingleLayoutCountNeedsNoLayout(t *testing.T) {
	reg := catalog.Default()

	// Sliding 5-panel has one implicit layout; at width 156 (usable 152),
	// 5 panels of 30.4 in are valid.
	item := validSlidingItem()
	item.Width = 156
	item.PanelCount = 5
	item.PanelLayout = ""

	if errs := Validate(item, reg); len(errs) != 0 {
		t.Fatalf("single-layout count should not require a layout, got %v", errs)
	}
}

func TestContactValidate(t *testing.T) {
	good := ContactInfo{
		Name:  "Dana Whitfield",
		Email: "dana@example.com",
		Phone: "(415) 555-0134",
		Zip:   "94110",
	}
	if errs := good.Validate(); len(errs) != 0 {
		t.Fatalf("expected valid contact, got %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*ContactInfo)
		field  string
	}{
		{"missing name", func(c *ContactInfo) { c.Name = "  " }, "name"},
		{"missing email", func(c *ContactInfo) { c.Email = "" }, "email"},
		{"bad email", func(c *ContactInfo) { c.Email = "not-an-email" }, "email"},
		{"missing phone", func(c *ContactInfo) { c.Phone = "" }, "phone"},
		{"fake phone", func(c *ContactInfo) { c.Phone = "1111111111" }, "phone"},
		{"short zip", func(c *ContactInfo) { c.Zip = "941" }, "zip"},
		{"alpha zip", func(c *ContactInfo) { c.Zip = "94x10" }, "zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.mutate(&c)
			if errs := c.Validate(); errs[tt.field] == "" {
				t.Errorf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(415) 555-0134", "+14155550134"},
		{"415.555.0134", "+14155550134"},
		{"14155550134", "+14155550134"},
		{"+1 415 555 0134", "+14155550134"},
		{"+44 20 7946 0958", "+442079460958"},
	}
	for _, tt := range tests {
		if got := NormalizePhoneNumber(tt.in); got != tt.want {
			t.Errorf("NormalizePhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package catalog

// Default returns the production door catalog. Dimensions are inches.
//
// Layout labels use the industry X/O notation for sliders (X operating,
// O fixed, read from outside) and L/R fold direction for bifolds.
func Default() *Registry {
	return NewRegistry(
		ProductDefinition{
			Slug:      "sliding",
			Name:      "Sliding Glass Door",
			BasePrice: 4000,
			MaxWidth:  240,
			MaxHeight: 120,

			SupportsPanelCount: true,
			PanelRule: PanelRule{
				MinCount:      2,
				MaxCount:      6,
				MinPanelWidth: 24,
				MaxPanelWidth: 40,
				OpeningOffset: 4,
			},

			SupportsSystemType: true,
			SystemTypes: []SystemTypeOption{
				{Slug: "slider", Name: "Standard Slider"},
				{Slug: "pocket", Name: "Pocket System", Premium: true},
			},
			PremiumSurcharge: 650,

			SupportsRoomName: true,
			Finishes:         standardFinishes,
			HardwareFinishes: standardHardware,
			GlassOptions:     standardGlass,
			PanelLayouts: map[int][]string{
				2: {"OX", "XO"},
				3: {"OXX", "XXO", "OXO"},
				4: {"OXXO", "XXOO", "OOXX"},
			},
		},
		ProductDefinition{
			Slug:      "multi-slide",
			Name:      "Multi-Slide Door",
			BasePrice: 5200,
			MaxWidth:  480,
			MaxHeight: 144,

			SupportsPanelCount: true,
			PanelRule: PanelRule{
				MinCount:      3,
				MaxCount:      8,
				MinPanelWidth: 28,
				MaxPanelWidth: 48,
				OpeningOffset: 6,
			},

			SupportsSystemType: true,
			SystemTypes: []SystemTypeOption{
				{Slug: "slider", Name: "Stacking Slider"},
				{Slug: "pocket", Name: "Pocket System", Premium: true},
			},
			PremiumSurcharge: 900,

			SupportsRoomName: true,
			Finishes:         standardFinishes,
			HardwareFinishes: standardHardware,
			GlassOptions:     standardGlass,
			PanelLayouts: map[int][]string{
				3: {"Stack Left", "Stack Right"},
				4: {"Stack Left", "Stack Right", "Split"},
				5: {"Stack Left", "Stack Right"},
				6: {"Stack Left", "Stack Right", "Split"},
				8: {"Stack Left", "Stack Right", "Split"},
			},
		},
		ProductDefinition{
			Slug:      "bifold",
			Name:      "Bi-Fold Door",
			BasePrice: 4800,
			MaxWidth:  288,
			MaxHeight: 120,

			SupportsPanelCount: true,
			PanelRule: PanelRule{
				MinCount:      2,
				MaxCount:      7,
				MinPanelWidth: 18,
				MaxPanelWidth: 36,
				OpeningOffset: 5,
			},

			SupportsRoomName: true,
			Finishes:         standardFinishes,
			HardwareFinishes: standardHardware,
			GlassOptions:     standardGlass,
			PanelLayouts: map[int][]string{
				2: {"2L", "2R"},
				3: {"3L", "3R"},
				4: {"4L", "4R", "2L2R"},
				5: {"5L", "5R", "3L2R", "2L3R"},
				6: {"6L", "6R", "3L3R"},
				7: {"7L", "7R", "4L3R", "3L4R"},
			},
		},
		ProductDefinition{
			Slug:      "pivot",
			Name:      "Pivot Door",
			BasePrice: 3500,
			MaxWidth:  72,
			MaxHeight: 120,

			SupportsRoomName: true,
			Finishes:         standardFinishes,
			HardwareFinishes: standardHardware,
			GlassOptions:     standardGlass,
		},
	)
}

var standardFinishes = []string{
	"matte-black",
	"bronze",
	"clear-anodized",
	"white",
}

var standardHardware = []string{
	"matte-black",
	"brushed-nickel",
	"polished-chrome",
	"bronze",
}

var standardGlass = []GlassOption{
	{Slug: "clear", Name: "Clear Dual Pane", PriceModifier: 0},
	{Slug: "single-pane", Name: "Single Pane", PriceModifier: -50},
	{Slug: "obscure", Name: "Obscure", PriceModifier: 75},
	{Slug: "low-e", Name: "Solar Low-E", PriceModifier: 150},
	{Slug: "laminated", Name: "Laminated Acoustic", PriceModifier: 225},
}

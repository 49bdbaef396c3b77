package theme

// Palette is the resolved color set for one mode. It is a pure
// function of the dark/light preference; nothing mutates it.
type Palette struct {
	Background BackgroundColors `json:"background"`
	Text       TextColors       `json:"text"`
	Border     BorderColors     `json:"border"`
	Brand      BrandColors      `json:"brand"`
	State      StateColors      `json:"state"`
}

type BackgroundColors struct {
	Base     string `json:"base"`
	Elevated string `json:"elevated"`
	Subtle   string `json:"subtle"`
}

type TextColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Muted     string `json:"muted"`
}

type BorderColors struct {
	Default string `json:"default"`
	Subtle  string `json:"subtle"`
}

type BrandColors struct {
	Primary string `json:"primary"`
	Soft    string `json:"soft"`
}

type StateColors struct {
	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
}

var lightPalette = Palette{
	Background: BackgroundColors{
		Base:     "#f8fafc",
		Elevated: "#ffffff",
		Subtle:   "#f1f5f9",
	},
	Text: TextColors{
		Primary:   "#0f172a",
		Secondary: "#334155",
		Muted:     "#94a3b8",
	},
	Border: BorderColors{
		Default: "#e2e8f0",
		Subtle:  "#f1f5f9",
	},
	Brand: BrandColors{
		Primary: "#4f46e5",
		Soft:    "#eef2ff",
	},
	State: StateColors{
		Success: "#10b981",
		Warning: "#f59e0b",
		Error:   "#ef4444",
	},
}

var darkPalette = Palette{
	Background: BackgroundColors{
		Base:     "#020617",
		Elevated: "#0f172a",
		Subtle:   "#111827",
	},
	Text: TextColors{
		Primary:   "#f8fafc",
		Secondary: "#cbd5f5",
		Muted:     "#64748b",
	},
	Border: BorderColors{
		Default: "#1e293b",
		Subtle:  "#0f172a",
	},
	Brand: BrandColors{
		Primary: "#6366f1",
		Soft:    "#1e1b4b",
	},
	State: StateColors{
		Success: "#22c55e",
		Warning: "#fbbf24",
		Error:   "#f87171",
	},
}

// PaletteFor resolves the palette for the given mode.
func PaletteFor(dark bool) Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

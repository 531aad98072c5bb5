package render

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Built-in theme names
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyonight"
	ThemeCatppuccin = "catppuccin"
)

// palette holds the handful of colors a custom theme changes on top of the
// glamour dark style.
type palette struct {
	heading  string
	h1Fg     string
	h1Bg     string
	link     string
	linkText string
	code     string
	codeBg   string
	rule     string
	emph     string
}

var palettes = map[string]palette{
	ThemeTokyoNight: {
		heading:  "#7aa2f7",
		h1Fg:     "#1a1b26",
		h1Bg:     "#7aa2f7",
		link:     "#7dcfff",
		linkText: "#bb9af7",
		code:     "#9ece6a",
		codeBg:   "#24283b",
		rule:     "#414868",
		emph:     "#e0af68",
	},
	ThemeCatppuccin: {
		heading:  "#89b4fa",
		h1Fg:     "#1e1e2e",
		h1Bg:     "#cba6f7",
		link:     "#74c7ec",
		linkText: "#f5c2e7",
		code:     "#a6e3a1",
		codeBg:   "#313244",
		rule:     "#45475a",
		emph:     "#f9e2af",
	},
}

// builtinStyle returns the glamour style for one of the custom themes.
// ThemeDark is glamour's own dark style with a visible rule between sections.
func builtinStyle(name string) (ansi.StyleConfig, bool) {
	cfg := styles.DarkStyleConfig

	switch name {
	case ThemeDark:
		cfg.HorizontalRule.Format = "\n──────────\n"
		return cfg, true
	}

	p, ok := palettes[name]
	if !ok {
		return ansi.StyleConfig{}, false
	}

	cfg.Heading.Color = strPtr(p.heading)
	cfg.Heading.Bold = boolPtr(true)
	cfg.H1.Color = strPtr(p.h1Fg)
	cfg.H1.BackgroundColor = strPtr(p.h1Bg)
	cfg.Link.Color = strPtr(p.link)
	cfg.Link.Underline = boolPtr(true)
	cfg.LinkText.Color = strPtr(p.linkText)
	cfg.LinkText.Bold = boolPtr(true)
	cfg.Code.Color = strPtr(p.code)
	cfg.Code.BackgroundColor = strPtr(p.codeBg)
	cfg.Emph.Color = strPtr(p.emph)
	cfg.HorizontalRule.Color = strPtr(p.rule)
	cfg.HorizontalRule.Format = "\n──────────\n"

	return cfg, true
}

// IsBuiltinStyle returns true if the style is a glamour style name or one of
// the custom themes.
func IsBuiltinStyle(style string) bool {
	switch style {
	case ThemeDark, ThemeLight, ThemeTokyoNight, ThemeCatppuccin:
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the markdown themes accepted by markdown.style.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeCatppuccin, Description: "Catppuccin Mocha color scheme"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: "dracula", Description: "Dracula color scheme"},
		{Name: "notty", Description: "Plain text (no styling)"},
		{Name: "ascii", Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

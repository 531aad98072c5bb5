package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the chat interface
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color // bot label, focused borders
	Secondary lipgloss.Color // user label
	Accent    lipgloss.Color // source links, suggestions
	Warning   lipgloss.Color // status line while sending
	Error     lipgloss.Color // failed requests

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// MarkdownStyle is the markdown theme that matches this palette
	MarkdownStyle string
}

// DefaultTUITheme is used when the configured theme is unknown
const DefaultTUITheme = "tokyonight"

var tuiThemes = map[string]TUITheme{
	"tokyonight": {
		Name:        "tokyonight",
		Description: "Tokyo Night - dark theme with blue accents",
		Background:  lipgloss.Color("#1a1b26"),
		Surface:     lipgloss.Color("#24283b"),
		Border:      lipgloss.Color("#414868"),
		Primary:     lipgloss.Color("#7aa2f7"),
		Secondary:   lipgloss.Color("#9ece6a"),
		Accent:      lipgloss.Color("#bb9af7"),
		Warning:     lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
		TextMute:    lipgloss.Color("#3b4261"),

		MarkdownStyle: ThemeTokyoNight,
	},
	"catppuccin": {
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - warm dark theme with pastel colors",
		Background:  lipgloss.Color("#1e1e2e"),
		Surface:     lipgloss.Color("#313244"),
		Border:      lipgloss.Color("#45475a"),
		Primary:     lipgloss.Color("#89b4fa"),
		Secondary:   lipgloss.Color("#a6e3a1"),
		Accent:      lipgloss.Color("#cba6f7"),
		Warning:     lipgloss.Color("#f9e2af"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
		TextMute:    lipgloss.Color("#45475a"),

		MarkdownStyle: ThemeCatppuccin,
	},
	"dracula": {
		Name:        "dracula",
		Description: "Dracula - dark theme with vibrant colors",
		Background:  lipgloss.Color("#282a36"),
		Surface:     lipgloss.Color("#44475a"),
		Border:      lipgloss.Color("#6272a4"),
		Primary:     lipgloss.Color("#8be9fd"),
		Secondary:   lipgloss.Color("#50fa7b"),
		Accent:      lipgloss.Color("#ff79c6"),
		Warning:     lipgloss.Color("#f1fa8c"),
		Error:       lipgloss.Color("#ff5555"),
		Text:        lipgloss.Color("#f8f8f2"),
		TextDim:     lipgloss.Color("#6272a4"),
		TextMute:    lipgloss.Color("#44475a"),

		MarkdownStyle: "dracula",
	},
	"light": {
		Name:        "light",
		Description: "Light - for bright terminals",
		Background:  lipgloss.Color("#fafafa"),
		Surface:     lipgloss.Color("#eeeeee"),
		Border:      lipgloss.Color("#bdbdbd"),
		Primary:     lipgloss.Color("#1e66f5"),
		Secondary:   lipgloss.Color("#40a02b"),
		Accent:      lipgloss.Color("#8839ef"),
		Warning:     lipgloss.Color("#df8e1d"),
		Error:       lipgloss.Color("#d20f39"),
		Text:        lipgloss.Color("#4c4f69"),
		TextDim:     lipgloss.Color("#8c8fa1"),
		TextMute:    lipgloss.Color("#bcc0cc"),

		MarkdownStyle: ThemeLight,
	},
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	theme, ok := tuiThemes[name]
	return theme, ok
}

// TUIThemeFor returns the named theme, or the default one if it is unknown
func TUIThemeFor(name string) TUITheme {
	if theme, ok := tuiThemes[name]; ok {
		return theme
	}
	return tuiThemes[DefaultTUITheme]
}

// TUIThemeNames returns the available theme names in sorted order
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

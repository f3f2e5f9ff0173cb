package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the terminal views.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Muted  lipgloss.Color
	Marker lipgloss.Color
	Cursor lipgloss.Color
	Border lipgloss.Color
}

var (
	ThemeMono = Theme{
		Name:   "mono",
		Title:  lipgloss.Color("#ffffff"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#dddddd"),
		Muted:  lipgloss.Color("#555555"),
		Marker: lipgloss.Color("#ffff00"),
		Cursor: lipgloss.Color("#ff4444"),
		Border: lipgloss.Color("#444444"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Title:  lipgloss.Color("#00a8cc"),
		Label:  lipgloss.Color("#4488aa"),
		Value:  lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#335566"),
		Marker: lipgloss.Color("#ffd700"),
		Cursor: lipgloss.Color("#ff4444"),
		Border: lipgloss.Color("#0077be"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Title:  lipgloss.Color("#00ff00"),
		Label:  lipgloss.Color("#00aa00"),
		Value:  lipgloss.Color("#88ff88"),
		Muted:  lipgloss.Color("#005500"),
		Marker: lipgloss.Color("#ffff00"),
		Cursor: lipgloss.Color("#ff0000"),
		Border: lipgloss.Color("#00cc00"),
	}

	Themes = []Theme{ThemeMono, ThemeOcean, ThemeRetro}
)

// GetTheme returns the named theme, falling back to mono.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeMono
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

package viz

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour ramp used to shade heatmaps, from Cold to Hot, plus
// the accents used around it.
type Theme struct {
	Name   string
	Cold   lipgloss.Color
	Hot    lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeThermal = Theme{
		Name:   "thermal",
		Cold:   lipgloss.Color("#1a2a80"),
		Hot:    lipgloss.Color("#ff3300"),
		Accent: lipgloss.Color("#ffcc00"),
		Muted:  lipgloss.Color("#666688"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Cold:   lipgloss.Color("#001a33"),
		Hot:    lipgloss.Color("#00e0ff"),
		Accent: lipgloss.Color("#ffd700"),
		Muted:  lipgloss.Color("#4488aa"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Cold:   lipgloss.Color("#2d1b2e"),
		Hot:    lipgloss.Color("#feca57"),
		Accent: lipgloss.Color("#ff9ff3"),
		Muted:  lipgloss.Color("#8b6b8c"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Cold:   lipgloss.Color("#222222"),
		Hot:    lipgloss.Color("#ffffff"),
		Accent: lipgloss.Color("#0088ff"),
		Muted:  lipgloss.Color("#888888"),
	}

	Themes = []Theme{ThemeThermal, ThemeOcean, ThemeSunset, ThemeMinimal}
)

// GetTheme returns the theme called name.
func GetTheme(name string) (Theme, error) {
	if name == "" {
		return ThemeThermal, nil
	}
	for _, t := range Themes {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames())
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

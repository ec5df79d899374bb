package tui

import "github.com/charmbracelet/lipgloss"

// Color palette: one lime accent on grays.
const (
	ColorLime     = "154" // matches, active marker
	ColorLimeDim  = "106" // borders of the open panel
	ColorWhite    = "255" // titles
	ColorGray     = "245" // excerpts, hints
	ColorDarkGray = "238" // separators, placeholder
	ColorRed      = "196" // errors
)

// Styles holds every style the panel renders with.
type Styles struct {
	Header      lipgloss.Style
	Prompt      lipgloss.Style
	Title       lipgloss.Style
	ActiveTitle lipgloss.Style
	Match       lipgloss.Style
	Excerpt     lipgloss.Style
	Cursor      lipgloss.Style
	Dim         lipgloss.Style
	Error       lipgloss.Style
	Panel       lipgloss.Style
}

// DefaultStyles returns the colored panel styles.
func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Title:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		ActiveTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Match:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Excerpt:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorLimeDim)).
			Padding(0, 1),
	}
}

// NoColorStyles returns unstyled components. Matches stay bold-free too,
// so the only highlight cue is the surrounding text of the marker.
func NoColorStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle(),
		Prompt:      lipgloss.NewStyle(),
		Title:       lipgloss.NewStyle(),
		ActiveTitle: lipgloss.NewStyle(),
		Match:       lipgloss.NewStyle(),
		Excerpt:     lipgloss.NewStyle(),
		Cursor:      lipgloss.NewStyle(),
		Dim:         lipgloss.NewStyle(),
		Error:       lipgloss.NewStyle(),
		Panel:       lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

package styles

import "github.com/charmbracelet/lipgloss"

// Theme hands out styles, or unstyled equivalents when color is off
// (ui.color: false, or output that is not a terminal).
type Theme struct {
	color bool
}

// NewTheme creates a Theme. With color disabled every style renders its
// input unchanged.
func NewTheme(color bool) *Theme {
	return &Theme{color: color}
}

// Color reports whether the theme applies styling.
func (t *Theme) Color() bool { return t != nil && t.color }

func (t *Theme) pick(s lipgloss.Style) lipgloss.Style {
	if !t.Color() {
		return lipgloss.NewStyle()
	}
	return s
}

func (t *Theme) Title() lipgloss.Style     { return t.pick(Title) }
func (t *Theme) Muted() lipgloss.Style     { return t.pick(Muted) }
func (t *Theme) Error() lipgloss.Style     { return t.pick(ErrorMsg) }
func (t *Theme) Success() lipgloss.Style   { return t.pick(SuccessMsg) }
func (t *Theme) HelpKey() lipgloss.Style   { return t.pick(HelpKey) }
func (t *Theme) HelpBar() lipgloss.Style   { return t.pick(HelpBar) }
func (t *Theme) Selected() lipgloss.Style  { return t.pick(Selected) }
func (t *Theme) StatusBar() lipgloss.Style { return t.pick(StatusBar) }
func (t *Theme) Box() lipgloss.Style       { return t.pick(ContentBox) }

// Status returns the style for a task row in the given state.
func (t *Theme) Status(done bool) lipgloss.Style {
	return t.pick(lipgloss.NewStyle().Foreground(StatusColor(done)))
}

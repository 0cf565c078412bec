package tui

import "github.com/charmbracelet/lipgloss"

// Palette is the watch view stylesheet, one named style per concern.
type Palette struct {
	title       lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	header      lipgloss.Style
	cursor      lipgloss.Style
	ok          lipgloss.Style
	err         lipgloss.Style
	dim         lipgloss.Style
}

func NewPalette() *Palette {
	return &Palette{
		title:       newBold("#7D56F4"),
		tabActive:   newBold("#7D56F4").Underline(true),
		tabInactive: newStyle("#626262"),
		header:      newBold("#FFFFFF"),
		cursor:      newBold("#FFA500"),
		ok:          newBold("#04B575"),
		err:         newBold("#FF5555"),
		dim:         newStyle("#626262"),
	}
}

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}

package components

import (
	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for card sections so
// stacked boxes visually align.
func ContentWidth(frameWidth int) int {
	// Leave room for outer border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

// GameFrame wraps content in a double-border frame, centering vertically
// and horizontally within the given dimensions.
func GameFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ModeCard renders a selectable game-mode card with a title and a
// description line.
func ModeCard(title, description string, selected bool, cw int) string {
	titleStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	borderColor := theme.Border
	if selected {
		titleStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		borderColor = theme.Primary
		title = "▸ " + title
	}

	body := titleStyle.Render(title) + "\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(description)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 2).
		Render(body)
}

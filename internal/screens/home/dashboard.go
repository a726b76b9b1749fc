package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/catalog"
	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// Block-letter title.
const titleFull = ` ███╗   ███╗ █████╗ ████████╗██╗  ██╗███████╗███╗   ██╗██╗ ██████╗ ██╗   ██╗███████╗
 ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║██╔════╝████╗  ██║██║██╔═══██╗██║   ██║██╔════╝
 ██╔████╔██║███████║   ██║   ███████║█████╗  ██╔██╗ ██║██║██║   ██║██║   ██║█████╗
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║██╔══╝  ██║╚██╗██║██║██║▄▄ ██║██║   ██║██╔══╝
 ██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║███████╗██║ ╚████║██║╚██████╔╝╚██████╔╝███████╗
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═══╝╚═╝ ╚══▀▀═╝  ╚═════╝ ╚══════╝`

const titleCompact = "M · A · T · H · E · N · I · Q · U · E"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Gold).
		Bold(true)

	if compact {
		return lipgloss.NewStyle().
			Width(cw).
			Align(lipgloss.Center).
			Render(style.Render(titleCompact))
	}
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(style.Render(titleFull))
}

// renderStatsBar renders the progress summary in a bordered box.
func (h *HomeScreen) renderStatsBar(cw int, compact bool) string {
	starStyle := lipgloss.NewStyle().Foreground(theme.Gold).Bold(true)
	gameStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	lessonStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var totalStars, games, unlocked int
	if h.deps.Progress != nil {
		for _, l := range catalog.Lessons() {
			totalStars += h.deps.Progress.Lesson(l.ID).Stars
		}
		games = h.deps.Progress.Stats().GamesPlayed
		unlocked = h.deps.Progress.UnlockedLesson()
		if unlocked > catalog.LessonCount() {
			unlocked = catalog.LessonCount()
		}
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			starStyle.Render(fmt.Sprintf("★%d", totalStars)),
			lessonStyle.Render(fmt.Sprintf("📖%d", unlocked)),
			gameStyle.Render(fmt.Sprintf("🏆%d", games)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			starStyle.Render(fmt.Sprintf("★ %d STARS", totalStars)),
			lessonStyle.Render(fmt.Sprintf("📖 LESSON %d", unlocked)),
			gameStyle.Render(fmt.Sprintf("🏆 %d GAMES", games)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenuButtons renders each menu item as a fixed-width button.
func renderMenuButtons(items []string, selected int, cw int) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Gold).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Gold).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, label := range items {
		if i == selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		} else {
			buttons = append(buttons, normalBtn.Render(label))
		}
	}
	block := strings.Join(buttons, "\n")

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}

// renderUpdateNote renders a dim one-line update notification.
func renderUpdateNote(latestVersion string, cw int) string {
	text := fmt.Sprintf("New version %s available — run: mathenique update", latestVersion)
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

// renderMascotBox renders the mascot centered at content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

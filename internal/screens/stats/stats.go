// Package stats shows the aggregate play statistics and per-lesson
// stars.
package stats

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/auth"
	"github.com/kilohertztli/Mathenique/internal/catalog"
	"github.com/kilohertztli/Mathenique/internal/progress"
	"github.com/kilohertztli/Mathenique/internal/screen"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
	"github.com/kilohertztli/Mathenique/internal/ui/layout"
	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// StatsScreen renders the statistics dashboard.
type StatsScreen struct {
	progress *progress.Store
	auth     *auth.Manager
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a new StatsScreen.
func New(p *progress.Store, a *auth.Manager) *StatsScreen {
	return &StatsScreen{progress: p, auth: a}
}

func (s *StatsScreen) Init() tea.Cmd {
	return nil
}

func (s *StatsScreen) Title() string {
	return "My Stats"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var stats progress.GameStats
	if s.progress != nil {
		stats = s.progress.Stats()
	}

	accuracy := 0
	if stats.TotalQuestions > 0 {
		accuracy = stats.CorrectAnswers * 100 / stats.TotalQuestions
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("My Stats"))
	if s.auth != nil && !s.auth.LoggedIn() {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("playing offline — log in to keep progress across devices"))
	}
	b.WriteString("\n\n")

	b.WriteString(components.NewProgressBar("Accuracy", float64(accuracy)/100, true, cw).View())
	b.WriteString("\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Games played", fmt.Sprintf("%d", stats.GamesPlayed)},
		{"Questions answered", fmt.Sprintf("%d", stats.TotalQuestions)},
		{"Lessons completed", fmt.Sprintf("%d", stats.LessonsCompleted)},
		{"Challenge high score", fmt.Sprintf("%d", stats.ChallengeHighScore)},
		{"Challenge best streak", fmt.Sprintf("%d", stats.ChallengeBestStreak)},
		{"Apocalypse high score", fmt.Sprintf("%d", stats.ApocalypseHighScore)},
		{"Apocalypse best streak", fmt.Sprintf("%d", stats.ApocalypseBestStreak)},
	}
	for _, r := range rows {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%-24s", r.label)))
		b.WriteString(theme.Body.Render(r.value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Lesson stars"))
	b.WriteString("\n")
	for _, lesson := range catalog.Lessons() {
		stars := 0
		if s.progress != nil {
			stars = s.progress.Lesson(lesson.ID).Stars
		}
		label := fmt.Sprintf("%-28s", lesson.Title)
		b.WriteString(theme.Body.Render(label))
		b.WriteString(layout.StarRow(stars))
		b.WriteString("\n")
	}

	card := lipgloss.NewStyle().Width(cw).Render(b.String())
	return components.GameFrame(card, width, height)
}

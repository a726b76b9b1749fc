// Package lessons renders the curriculum path: every lesson with its
// earned stars, locked until the one before it is completed.
package lessons

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/catalog"
	"github.com/kilohertztli/Mathenique/internal/progress"
	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/router"
	"github.com/kilohertztli/Mathenique/internal/screen"
	gamescreen "github.com/kilohertztli/Mathenique/internal/screens/session"
	sess "github.com/kilohertztli/Mathenique/internal/session"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
	"github.com/kilohertztli/Mathenique/internal/ui/layout"
	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// LessonsScreen lists the curriculum.
type LessonsScreen struct {
	controller *sess.Controller
	progress   *progress.Store
	selected   int
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)

// New creates a new LessonsScreen.
func New(controller *sess.Controller, p *progress.Store) *LessonsScreen {
	s := &LessonsScreen{controller: controller, progress: p}
	s.selected = s.unlocked() - 1
	if s.selected >= catalog.LessonCount() {
		s.selected = catalog.LessonCount() - 1
	}
	return s
}

func (s *LessonsScreen) unlocked() int {
	if s.progress == nil {
		return 1
	}
	u := s.progress.UnlockedLesson()
	if u > catalog.LessonCount() {
		return catalog.LessonCount()
	}
	return u
}

func (s *LessonsScreen) Init() tea.Cmd {
	return nil
}

func (s *LessonsScreen) Title() string {
	return "Lessons"
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start lesson"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < catalog.LessonCount()-1 {
			s.selected++
		}
	case "enter":
		lesson := catalog.Lessons()[s.selected]
		if lesson.ID > s.unlocked() {
			return s, nil
		}
		return s, func() tea.Msg {
			return router.PushScreenMsg{
				Screen: gamescreen.New(s.controller, quiz.ModeLesson, sess.Filters{LessonID: lesson.ID}),
			}
		}
	}
	return s, nil
}

func (s *LessonsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	unlocked := s.unlocked()

	var b strings.Builder
	b.WriteString(theme.Title.Render("Your learning path"))
	b.WriteString("\n\n")

	for i, lesson := range catalog.Lessons() {
		locked := lesson.ID > unlocked

		marker := "  "
		if i == s.selected {
			marker = "▸ "
		}

		var stars string
		if s.progress != nil {
			stars = layout.StarRow(s.progress.Lesson(lesson.ID).Stars)
		} else {
			stars = layout.StarRow(0)
		}

		label := fmt.Sprintf("%s%d. %s", marker, lesson.ID, lesson.Title)
		line := label + strings.Repeat(" ", max(1, cw-lipgloss.Width(label)-lipgloss.Width(stars)-4)) + stars

		switch {
		case locked:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%s🔒", line)))
		case i == s.selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")

		if i == s.selected && !locked {
			b.WriteString(theme.Hint.Render("    " + lesson.Description))
			b.WriteString("\n")
		}
	}

	card := lipgloss.NewStyle().Width(cw).Render(b.String())
	return components.GameFrame(card, width, height)
}

// Package arena is the game-mode picker for free play outside the
// lesson path.
package arena

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/kilohertztli/Mathenique/internal/catalog"
	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/router"
	"github.com/kilohertztli/Mathenique/internal/screen"
	gamescreen "github.com/kilohertztli/Mathenique/internal/screens/session"
	sess "github.com/kilohertztli/Mathenique/internal/session"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
	"github.com/kilohertztli/Mathenique/internal/ui/layout"
	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

type modeEntry struct {
	mode        quiz.Mode
	title       string
	description string
}

var modes = []modeEntry{
	{quiz.ModeNormal, "Normal", "10 questions, one topic, 3 lives"},
	{quiz.ModeMixed, "Mixed", "10 questions across every topic, double points"},
	{quiz.ModeChallenge, "Challenge", "15 seconds per question, double points"},
	{quiz.ModeApocalypse, "Apocalypse", "60 seconds on the clock, answer as many as you can"},
}

// ArenaScreen picks a game mode. Normal play adds a second step where
// the single topic for the game is chosen.
type ArenaScreen struct {
	controller *sess.Controller
	selected   int

	picking  bool
	topics   []string
	topicIdx int
}

var _ screen.Screen = (*ArenaScreen)(nil)
var _ screen.KeyHintProvider = (*ArenaScreen)(nil)
var _ screen.EscHandler = (*ArenaScreen)(nil)

// New creates a new ArenaScreen.
func New(controller *sess.Controller) *ArenaScreen {
	return &ArenaScreen{controller: controller, topics: catalog.Topics()}
}

func (s *ArenaScreen) Init() tea.Cmd {
	return nil
}

func (s *ArenaScreen) Title() string {
	return "Arena"
}

func (s *ArenaScreen) KeyHints() []layout.KeyHint {
	if s.picking {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose topic"},
			{Key: "Enter", Description: "Play"},
			{Key: "Esc", Description: "Modes"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose mode"},
		{Key: "Enter", Description: "Play"},
		{Key: "Esc", Description: "Back"},
	}
}

// HandleEsc backs out of the topic list to the mode list instead of
// leaving the arena.
func (s *ArenaScreen) HandleEsc() (screen.Screen, tea.Cmd, bool) {
	if !s.picking {
		return s, nil, false
	}
	s.picking = false
	return s, nil, true
}

func (s *ArenaScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	if s.picking {
		return s.updateTopicPick(kmsg)
	}

	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(modes)-1 {
			s.selected++
		}
	case "enter":
		entry := modes[s.selected]
		if entry.mode == quiz.ModeNormal {
			// Normal runs on a single topic; ask which one first.
			s.picking = true
			s.topicIdx = 0
			return s, nil
		}
		return s, s.startGame(entry.mode, "")
	}
	return s, nil
}

func (s *ArenaScreen) updateTopicPick(kmsg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch kmsg.String() {
	case "up", "k":
		if s.topicIdx > 0 {
			s.topicIdx--
		}
	case "down", "j":
		if s.topicIdx < len(s.topics)-1 {
			s.topicIdx++
		}
	case "enter":
		return s, s.startGame(quiz.ModeNormal, s.topics[s.topicIdx])
	}
	return s, nil
}

func (s *ArenaScreen) startGame(mode quiz.Mode, topic string) tea.Cmd {
	filters := gameFilters(mode, topic)
	return func() tea.Msg {
		return router.PushScreenMsg{
			Screen: gamescreen.New(s.controller, mode, filters),
		}
	}
}

// gameFilters builds the question filters for an arena game. Normal is
// restricted to the chosen topic; every other mode draws from the whole
// pool.
func gameFilters(mode quiz.Mode, topic string) sess.Filters {
	if mode == quiz.ModeNormal {
		return sess.Filters{Subject: topic}
	}
	return sess.Filters{}
}

func (s *ArenaScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	if s.picking {
		sections = append(sections, theme.Title.Render("Pick your topic"))
		for i, topic := range s.topics {
			sections = append(sections, components.ModeCard(titleCase(topic), "10 questions on "+topic, i == s.topicIdx, cw))
		}
	} else {
		sections = append(sections, theme.Title.Render("Pick your battle"))
		for i, entry := range modes {
			sections = append(sections, components.ModeCard(entry.title, entry.description, i == s.selected, cw))
		}
	}

	return components.GameFrame(strings.Join(sections, "\n"), width, height)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

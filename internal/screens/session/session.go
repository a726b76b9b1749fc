// Package session renders an active game: the question loop, the
// countdown, the answer feedback pause, and the end-of-game summary.
package session

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/router"
	"github.com/kilohertztli/Mathenique/internal/screen"
	sess "github.com/kilohertztli/Mathenique/internal/session"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
	"github.com/kilohertztli/Mathenique/internal/ui/layout"
)

// feedbackDelay is how long the correct/incorrect colors stay on screen
// before the next question appears.
const feedbackDelay = 900 * time.Millisecond

// GameScreen implements screen.Screen for an active session.
type GameScreen struct {
	controller  *sess.Controller
	mode        quiz.Mode
	filters     sess.Filters
	events      chan sess.Event
	unsubscribe func()

	snap        sess.Snapshot
	mc          components.MultiChoice
	loading     bool
	feedback    bool
	timedOut    bool
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*GameScreen)(nil)
var _ screen.KeyHintProvider = (*GameScreen)(nil)
var _ screen.EscHandler = (*GameScreen)(nil)

// New creates a game screen and subscribes it to the controller. The
// controller must be idle.
func New(controller *sess.Controller, mode quiz.Mode, filters sess.Filters) *GameScreen {
	s := &GameScreen{
		controller: controller,
		mode:       mode,
		filters:    filters,
		events:     make(chan sess.Event, 16),
		loading:    true,
	}
	s.unsubscribe = controller.Subscribe(func(e sess.Event) {
		// Never block the controller; the loop drains fast and a full
		// buffer only drops intermediate snapshots.
		select {
		case s.events <- e:
		default:
		}
	})
	return s
}

func (s *GameScreen) Init() tea.Cmd {
	return tea.Batch(s.startCmd(), s.waitForEvent())
}

func (s *GameScreen) Title() string {
	switch s.mode {
	case quiz.ModeLesson:
		return "Lesson"
	case quiz.ModeChallenge:
		return "Challenge"
	case quiz.ModeApocalypse:
		return "Apocalypse"
	case quiz.ModeMixed:
		return "Mixed Arena"
	default:
		return "Arena"
	}
}

func (s *GameScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon game"},
			{Key: "N", Description: "Keep playing"},
		}
	case s.snap.State.Terminal():
		return []layout.KeyHint{
			{Key: "R", Description: "Play again"},
			{Key: "Enter", Description: "Continue"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓/1-4", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Quit game"},
		}
	}
}

// HandleEsc intercepts Esc so an active game asks before being abandoned.
func (s *GameScreen) HandleEsc() (screen.Screen, tea.Cmd, bool) {
	if s.snap.State == sess.StatePlaying && !s.confirmQuit {
		s.confirmQuit = true
		return s, nil, true
	}
	return s, nil, false
}

func (s *GameScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)
	case eventMsg:
		return s.handleEvent(sess.Event(msg))
	case tickMsg:
		return s.handleTick()
	case feedbackDoneMsg:
		return s.handleFeedbackDone()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *GameScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if msg.Err != nil {
		if errors.Is(msg.Err, quiz.ErrSourceUnavailable) {
			s.errMsg = "Could not load questions. Check your connection and try again."
		} else {
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}

	s.errMsg = ""
	s.feedback = false
	s.timedOut = false
	s.snap = s.controller.Snapshot()
	s.mc = components.NewMultiChoice(s.snap.Question.Question, s.snap.Question.Options, s.snap.Question.CorrectAnswer)

	if s.mode.Timed() {
		return s, tickCmd()
	}
	return s, nil
}

func (s *GameScreen) handleEvent(e sess.Event) (screen.Screen, tea.Cmd) {
	next := s.waitForEvent()

	switch e.Type {
	case sess.EventAnswered:
		// The snapshot already points at the next question (or the
		// terminal result); hold it until the feedback pause ends.
		s.snap = e.Snapshot
		return s, next

	case sess.EventTimedOut:
		s.snap = e.Snapshot
		if s.snap.State == sess.StatePlaying {
			// Time cost a life (or none in apocalypse); move straight on.
			s.timedOut = true
			s.feedback = false
			s.mc = components.NewMultiChoice(s.snap.Question.Question, s.snap.Question.Options, s.snap.Question.CorrectAnswer)
		}
		return s, next

	case sess.EventFinished:
		s.snap = e.Snapshot
		if !s.feedback {
			// Ended by the session clock; show the summary immediately.
			s.confirmQuit = false
		}
		return s, next

	case sess.EventExited:
		// The game is gone; stop listening so the goroutine can end.
		return s, nil

	default:
		return s, next
	}
}

func (s *GameScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.snap.State != sess.StatePlaying {
		return s, nil
	}
	if !s.feedback {
		// Refresh the countdown without disturbing the current choice.
		remaining := s.controller.Snapshot().Remaining
		s.snap.Remaining = remaining
	}
	return s, tickCmd()
}

func (s *GameScreen) handleFeedbackDone() (screen.Screen, tea.Cmd) {
	s.feedback = false
	if s.snap.State.Terminal() {
		return s, nil
	}
	s.timedOut = false
	s.mc = components.NewMultiChoice(s.snap.Question.Question, s.snap.Question.Options, s.snap.Question.CorrectAnswer)
	return s, nil
}

func (s *GameScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, s.leave()
	}
	if s.loading {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.leave()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.snap.State.Terminal() && !s.feedback {
		switch key {
		case "r", "R":
			s.loading = true
			return s, s.retryCmd()
		case "enter", "esc":
			return s, s.leave()
		}
		return s, nil
	}

	if s.feedback {
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	var cmd tea.Cmd
	s.mc, cmd = s.mc.Update(msg)
	if s.mc.Submitted {
		s.feedback = true
		chosen := s.mc.ChosenIndex
		return s, tea.Batch(
			func() tea.Msg {
				s.controller.Answer(chosen)
				return nil
			},
			tea.Tick(feedbackDelay, func(time.Time) tea.Msg { return feedbackDoneMsg{} }),
		)
	}
	return s, cmd
}

// leave tears the game down and pops back to the previous screen.
func (s *GameScreen) leave() tea.Cmd {
	s.controller.Exit()
	s.unsubscribe()
	return func() tea.Msg { return router.PopScreenMsg{} }
}

// startCmd starts the session off the update loop; fetching questions can
// block on the network.
func (s *GameScreen) startCmd() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{Err: s.controller.Start(context.Background(), s.mode, s.filters)}
	}
}

func (s *GameScreen) retryCmd() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{Err: s.controller.Retry(context.Background())}
	}
}

// waitForEvent blocks on the controller's event channel.
func (s *GameScreen) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-s.events)
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

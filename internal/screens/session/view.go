package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/quiz"
	sess "github.com/kilohertztli/Mathenique/internal/session"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
	"github.com/kilohertztli/Mathenique/internal/ui/layout"
	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

func (s *GameScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return s.renderError(width, height)
	case s.loading:
		return s.renderLoading(width, height)
	case s.confirmQuit:
		return s.renderQuitConfirm(width, height)
	case s.snap.State.Terminal() && !s.feedback:
		return s.renderSummary(width, height)
	default:
		return s.renderQuestion(width, height)
	}
}

func (s *GameScreen) renderLoading(width, height int) string {
	return components.GameFrame(theme.Hint.Render("Loading questions..."), width, height)
}

func (s *GameScreen) renderError(width, height int) string {
	body := theme.Incorrect.Render("Something went wrong") + "\n\n" +
		theme.Body.Render(s.errMsg)
	return components.GameFrame(body, width, height)
}

func (s *GameScreen) renderQuitConfirm(width, height int) string {
	body := theme.Title.Render("Abandon this game?") + "\n\n" +
		theme.Body.Render("Progress in this game will be lost.") + "\n\n" +
		theme.Hint.Render("Y to quit, N to keep playing")
	return components.GameFrame(body, width, height)
}

func (s *GameScreen) renderQuestion(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(s.renderStatusLine(cw))
	b.WriteString("\n")

	if s.mode.Timed() {
		total := sess.ChallengeQuestionTime
		if s.mode == quiz.ModeApocalypse {
			total = sess.ApocalypseSessionTime
		}
		b.WriteString(components.NewTimerBar(s.snap.Remaining, total, cw).View())
		b.WriteString("\n")
	}

	if s.timedOut {
		b.WriteString(theme.Incorrect.Render("⏱ Time's up!"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.mc.View())

	card := lipgloss.NewStyle().Width(cw).Render(b.String())
	return components.GameFrame(card, width, height)
}

// renderStatusLine shows position, score, streak, and lives.
func (s *GameScreen) renderStatusLine(cw int) string {
	var position string
	if s.mode.Endless() {
		position = fmt.Sprintf("Question %d", s.snap.Answered+1)
	} else {
		position = fmt.Sprintf("Question %d/%d", s.snap.Index+1, s.snap.Total)
	}

	left := theme.Body.Render(position)
	mid := theme.Body.Render(fmt.Sprintf("Score %d", s.snap.Score))
	if s.snap.Streak > 1 {
		mid += theme.Stars.Render(fmt.Sprintf("  %d×🔥", s.snap.Streak))
	}
	right := layout.HeartRow(s.snap.Lives, quiz.MaxLives)

	gap1 := cw/2 - lipgloss.Width(left) - lipgloss.Width(mid)/2
	if gap1 < 1 {
		gap1 = 1
	}
	gap2 := cw - lipgloss.Width(left) - gap1 - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap2 < 1 {
		gap2 = 1
	}
	return left + strings.Repeat(" ", gap1) + mid + strings.Repeat(" ", gap2) + right
}

func (s *GameScreen) renderSummary(width, height int) string {
	var b strings.Builder

	switch s.snap.State {
	case sess.StateWon:
		b.WriteString(theme.Correct.Render("You won!"))
		b.WriteString("\n\n")
		if s.mode == quiz.ModeLesson {
			b.WriteString(layout.StarRow(s.snap.Stars))
			b.WriteString("\n\n")
		}
	case sess.StateLost:
		b.WriteString(theme.Incorrect.Render("Out of lives!"))
		b.WriteString("\n\n")
	case sess.StateEnded:
		b.WriteString(theme.Title.Render("Time's up!"))
		b.WriteString("\n\n")
	}

	accuracy := 0
	if s.snap.Answered > 0 {
		accuracy = s.snap.Correct * 100 / s.snap.Answered
	}

	rows := []struct {
		label string
		value string
	}{
		{"Score", fmt.Sprintf("%d", s.snap.Score)},
		{"Correct", fmt.Sprintf("%d/%d (%d%%)", s.snap.Correct, s.snap.Answered, accuracy)},
		{"Best streak", fmt.Sprintf("%d", s.snap.BestStreak)},
	}
	for _, r := range rows {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%-12s", r.label)))
		b.WriteString(theme.Body.Render(r.value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("R to play again, Enter to continue"))

	return components.GameFrame(b.String(), width, height)
}

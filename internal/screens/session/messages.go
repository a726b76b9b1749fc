package session

import (
	"time"

	sess "github.com/kilohertztli/Mathenique/internal/session"
)

// startedMsg reports the result of starting (or retrying) a game.
type startedMsg struct {
	Err error
}

// eventMsg carries one controller event into the update loop.
type eventMsg sess.Event

// tickMsg is sent every second to refresh the countdown.
type tickMsg time.Time

// feedbackDoneMsg ends the answer-feedback pause and reveals the next
// question.
type feedbackDoneMsg struct{}

// Package session drives a single play session from start to resolution:
// question advancement, lives, score, streak, mode-dependent timers, and
// the terminal outcome handed to the progress store. The controller is an
// explicit state machine with observer callbacks; it knows nothing about
// rendering.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/timer"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateWon
	StateLost
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Terminal reports whether the state is a session outcome.
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost || s == StateEnded
}

// Timing for timed modes.
const (
	// ChallengeQuestionTime is the per-question countdown in challenge mode.
	ChallengeQuestionTime = 15 * time.Second

	// ApocalypseSessionTime is the single session-wide countdown in
	// apocalypse mode; it is never reset between questions.
	ApocalypseSessionTime = 60 * time.Second

	// ApocalypseLength is the size of the wrapping apocalypse question list.
	ApocalypseLength = 30
)

// ErrSessionActive is returned by Start while a session is already playing.
var ErrSessionActive = errors.New("session already in progress")

// Filters narrows the question pool for a session.
type Filters struct {
	Subject    string
	Difficulty int
	LessonID   int // set for lesson mode only
}

// Source supplies the ordered question list for a session.
type Source interface {
	Fetch(ctx context.Context, mode quiz.Mode, count int, f Filters) ([]quiz.Question, error)
}

// Outcome is the terminal result of a session, handed to the progress store.
type Outcome struct {
	SessionID  string
	Mode       quiz.Mode
	LessonID   int
	State      State
	Score      int
	BestStreak int
	Answered   int
	Correct    int
	LivesLeft  int
	Stars      int // lesson mode only, 0 otherwise
}

// Recorder reconciles session results into durable progress.
type Recorder interface {
	// GameStarted is called once per successful Start.
	GameStarted(mode quiz.Mode)

	// RecordOutcome is called once per terminal state.
	RecordOutcome(o Outcome)
}

// EventType classifies observer notifications.
type EventType int

const (
	EventStarted  EventType = iota // session entered playing
	EventAnswered                  // an answer was resolved
	EventTimedOut                  // a timeout was resolved
	EventFinished                  // session reached a terminal state
	EventExited                    // session returned to idle
)

// Event is delivered to observers on every state transition.
type Event struct {
	Type     EventType
	Correct  bool // meaningful for EventAnswered
	Snapshot Snapshot
}

// Snapshot is an immutable copy of the session state for consumers.
type Snapshot struct {
	SessionID  string
	Mode       quiz.Mode
	State      State
	Question   quiz.Question
	Index      int
	Total      int
	Lives      int
	Score      int
	Streak     int
	BestStreak int
	Answered   int
	Correct    int
	Stars      int
	Remaining  time.Duration
}

// Controller is the session state machine. All mutating methods are safe
// for concurrent use; the first of a racing answer/timeout pair wins and
// the loser is discarded.
type Controller struct {
	source   Source
	recorder Recorder

	mu        sync.Mutex
	observers map[int]func(Event)
	nextObs   int

	id        string
	mode      quiz.Mode
	filters   Filters
	state     State
	questions []quiz.Question
	index     int
	lives     int
	score     int
	streak    int
	best      int
	answered  int
	correct   int
	stars     int

	// resolved marks the current question as already answered or timed
	// out; a late event for the same question is a no-op.
	resolved bool

	// epoch increments on every question advance so a stale per-question
	// timer callback can be recognized and dropped.
	epoch int

	questionTimer *timer.Handle
	sessionTimer  *timer.Handle
}

// New creates an idle controller.
func New(source Source, recorder Recorder) *Controller {
	return &Controller{source: source, recorder: recorder, state: StateIdle, lives: quiz.MaxLives}
}

// Subscribe registers an observer invoked on every transition. The
// returned func removes it again.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.observers == nil {
		c.observers = make(map[int]func(Event))
	}
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Start fetches questions and enters playing. A source failure aborts the
// start and the session stays idle.
func (c *Controller) Start(ctx context.Context, mode quiz.Mode, f Filters) error {
	c.mu.Lock()
	if c.state == StatePlaying {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.mu.Unlock()

	count := quiz.ArenaLength
	switch mode {
	case quiz.ModeLesson:
		count = quiz.LessonLength
	case quiz.ModeApocalypse:
		count = ApocalypseLength
	}

	questions, err := c.source.Fetch(ctx, mode, count, f)
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("fetch questions: %w", quiz.ErrSourceUnavailable)
	}

	c.mu.Lock()
	c.id = uuid.New().String()
	c.mode = mode
	c.filters = f
	c.questions = questions
	c.index = 0
	c.lives = quiz.MaxLives
	c.score = 0
	c.streak = 0
	c.best = 0
	c.answered = 0
	c.correct = 0
	c.stars = 0
	c.resolved = false
	c.epoch++
	c.state = StatePlaying

	if mode == quiz.ModeApocalypse {
		c.sessionTimer = timer.Start(ApocalypseSessionTime, c.sessionExpired)
	} else if mode == quiz.ModeChallenge {
		c.armQuestionTimer()
	}
	ev := c.eventLocked(EventStarted, false)
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.GameStarted(mode)
	}
	c.notify(ev)
	return nil
}

// Retry restarts a session with the same mode and filters.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	mode, f := c.mode, c.filters
	c.mu.Unlock()
	return c.Start(ctx, mode, f)
}

// Answer resolves the current question with the chosen option index.
// Ignored outside playing, or if the question is already resolved.
func (c *Controller) Answer(selected int) {
	c.mu.Lock()
	if c.state != StatePlaying || c.resolved {
		c.mu.Unlock()
		return
	}
	c.resolved = true
	c.questionTimer.Cancel()

	q := c.questions[c.index]
	correct := selected == q.CorrectAnswer
	c.answered++
	if correct {
		c.correct++
		c.score += quiz.Points(c.mode)
		c.streak = quiz.NextStreak(c.streak, true)
		if c.streak > c.best {
			c.best = c.streak
		}
	} else {
		c.streak = quiz.NextStreak(c.streak, false)
		c.lives = quiz.RegisterMiss(c.lives)
	}

	events, outcome := c.advanceLocked(EventAnswered, correct)
	c.mu.Unlock()

	c.finish(events, outcome)
}

// Timeout resolves the current question as expired. In apocalypse mode the
// whole session ends with no life penalty; everywhere else it counts as a
// miss. Subject to the same single-resolution guard as Answer.
func (c *Controller) Timeout() {
	c.mu.Lock()
	events, outcome := c.timeoutLocked()
	c.mu.Unlock()
	c.finish(events, outcome)
}

func (c *Controller) timeoutLocked() ([]Event, *Outcome) {
	if c.state != StatePlaying || c.resolved {
		return nil, nil
	}
	c.resolved = true
	c.questionTimer.Cancel()

	if c.mode == quiz.ModeApocalypse {
		// Time is the only thing that ran out. Current score and streak
		// stand; lives are untouched.
		return c.terminateLocked(StateEnded, EventTimedOut)
	}

	c.answered++
	c.streak = quiz.NextStreak(c.streak, false)
	c.lives = quiz.RegisterMiss(c.lives)
	return c.advanceLocked(EventTimedOut, false)
}

// advanceLocked applies post-resolution bookkeeping: life depletion, list
// exhaustion, wrapping, and re-arming the challenge timer. Life depletion
// takes precedence over finishing the last question.
func (c *Controller) advanceLocked(kind EventType, correct bool) ([]Event, *Outcome) {
	if quiz.Depleted(c.lives) {
		return c.terminateLocked(StateLost, kind)
	}

	c.index++
	if c.index >= len(c.questions) {
		if c.mode.Endless() {
			c.index = 0
		} else {
			switch c.mode {
			case quiz.ModeLesson:
				c.stars = quiz.Stars(c.correct)
			case quiz.ModeNormal:
				c.stars = quiz.StarsFromLives(c.lives)
			}
			return c.terminateLocked(StateWon, kind)
		}
	}

	c.resolved = false
	c.epoch++
	if c.mode == quiz.ModeChallenge {
		c.armQuestionTimer()
	}
	return []Event{c.eventLocked(kind, correct)}, nil
}

func (c *Controller) terminateLocked(final State, kind EventType) ([]Event, *Outcome) {
	c.questionTimer.Cancel()
	c.sessionTimer.Cancel()
	c.state = final

	o := &Outcome{
		SessionID:  c.id,
		Mode:       c.mode,
		LessonID:   c.filters.LessonID,
		State:      final,
		Score:      c.score,
		BestStreak: c.best,
		Answered:   c.answered,
		Correct:    c.correct,
		LivesLeft:  c.lives,
		Stars:      c.stars,
	}
	events := []Event{c.eventLocked(kind, false), c.eventLocked(EventFinished, false)}
	return events, o
}

// Exit cancels any outstanding timer and returns to idle. The transient
// session is discarded with no further persistence.
func (c *Controller) Exit() {
	c.mu.Lock()
	c.questionTimer.Cancel()
	c.sessionTimer.Cancel()
	c.questionTimer = nil
	c.sessionTimer = nil
	c.state = StateIdle
	c.questions = nil
	c.index = 0
	c.lives = quiz.MaxLives
	c.score = 0
	c.streak = 0
	c.best = 0
	c.answered = 0
	c.correct = 0
	c.stars = 0
	c.resolved = false
	c.epoch++
	ev := c.eventLocked(EventExited, false)
	c.mu.Unlock()
	c.notify(ev)
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) armQuestionTimer() {
	epoch := c.epoch
	c.questionTimer = timer.Start(ChallengeQuestionTime, func() {
		c.questionExpired(epoch)
	})
}

// questionExpired delivers a per-question timer expiry, dropping it if the
// session has already moved past the question it was armed for.
func (c *Controller) questionExpired(epoch int) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	events, outcome := c.timeoutLocked()
	c.mu.Unlock()
	c.finish(events, outcome)
}

// sessionExpired delivers the apocalypse session-wide expiry.
func (c *Controller) sessionExpired() {
	c.mu.Lock()
	var events []Event
	var outcome *Outcome
	if c.state == StatePlaying {
		events, outcome = c.terminateLocked(StateEnded, EventTimedOut)
	}
	c.mu.Unlock()
	c.finish(events, outcome)
}

func (c *Controller) finish(events []Event, outcome *Outcome) {
	if outcome != nil && c.recorder != nil {
		c.recorder.RecordOutcome(*outcome)
	}
	c.notify(events...)
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:  c.id,
		Mode:       c.mode,
		State:      c.state,
		Index:      c.index,
		Total:      len(c.questions),
		Lives:      c.lives,
		Score:      c.score,
		Streak:     c.streak,
		BestStreak: c.best,
		Answered:   c.answered,
		Correct:    c.correct,
		Stars:      c.stars,
	}
	if c.state == StatePlaying && c.index < len(c.questions) {
		s.Question = c.questions[c.index]
	}
	switch c.mode {
	case quiz.ModeChallenge:
		s.Remaining = c.questionTimer.Remaining()
	case quiz.ModeApocalypse:
		s.Remaining = c.sessionTimer.Remaining()
	}
	return s
}

func (c *Controller) eventLocked(kind EventType, correct bool) Event {
	return Event{Type: kind, Correct: correct, Snapshot: c.snapshotLocked()}
}

func (c *Controller) notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	obs := make([]func(Event), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	c.mu.Unlock()

	for _, ev := range events {
		for _, fn := range obs {
			fn(ev)
		}
	}
}

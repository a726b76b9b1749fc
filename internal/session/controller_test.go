package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/kilohertztli/Mathenique/internal/quiz"
)

// fakeSource serves a fixed question list where option 0 is always correct.
type fakeSource struct {
	n   int
	err error
}

func (f *fakeSource) Fetch(ctx context.Context, mode quiz.Mode, count int, _ Filters) ([]quiz.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := f.n
	if n == 0 {
		n = count
	}
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{
			ID:            i + 1,
			Question:      "2 + 2 = ?",
			Options:       []string{"4", "5", "6", "7"},
			CorrectAnswer: 0,
		}
	}
	return qs, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	started  []quiz.Mode
	outcomes []Outcome
}

func (r *fakeRecorder) GameStarted(mode quiz.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, mode)
}

func (r *fakeRecorder) RecordOutcome(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *fakeRecorder) lastOutcome(t *testing.T) Outcome {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		t.Fatal("no outcome recorded")
	}
	return r.outcomes[len(r.outcomes)-1]
}

func startSession(t *testing.T, mode quiz.Mode, src Source) (*Controller, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	c := New(src, rec)
	if err := c.Start(context.Background(), mode, Filters{}); err != nil {
		t.Fatalf("Start(%s): %v", mode, err)
	}
	t.Cleanup(c.Exit)
	return c, rec
}

func TestStart_SourceFailureStaysIdle(t *testing.T) {
	c := New(&fakeSource{err: quiz.ErrSourceUnavailable}, &fakeRecorder{})

	err := c.Start(context.Background(), quiz.ModeNormal, Filters{})
	if !errors.Is(err, quiz.ErrSourceUnavailable) {
		t.Fatalf("Start error = %v, want ErrSourceUnavailable", err)
	}
	if got := c.Snapshot().State; got != StateIdle {
		t.Errorf("state = %s, want idle", got)
	}
}

func TestStart_WhilePlaying(t *testing.T) {
	c, rec := startSession(t, quiz.ModeNormal, &fakeSource{})

	if err := c.Start(context.Background(), quiz.ModeMixed, Filters{}); !errors.Is(err, ErrSessionActive) {
		t.Errorf("Start while playing = %v, want ErrSessionActive", err)
	}
	if len(rec.started) != 1 {
		t.Errorf("gamesPlayed incremented %d times, want 1", len(rec.started))
	}
}

func TestLives_WrongAnswersDeplete(t *testing.T) {
	for n := 0; n <= 2; n++ {
		c, _ := startSession(t, quiz.ModeNormal, &fakeSource{})
		for i := 0; i < n; i++ {
			c.Answer(1) // wrong
		}
		snap := c.Snapshot()
		if snap.Lives != quiz.MaxLives-n {
			t.Errorf("after %d misses lives = %d, want %d", n, snap.Lives, quiz.MaxLives-n)
		}
		if snap.State != StatePlaying {
			t.Errorf("after %d misses state = %s, want playing", n, snap.State)
		}
		c.Exit()
	}

	c, rec := startSession(t, quiz.ModeNormal, &fakeSource{})
	for i := 0; i < 3; i++ {
		c.Answer(1)
	}
	if got := c.Snapshot().State; got != StateLost {
		t.Fatalf("after 3 misses state = %s, want lost", got)
	}
	if o := rec.lastOutcome(t); o.State != StateLost || o.LivesLeft != 0 {
		t.Errorf("outcome = %+v, want lost with 0 lives", o)
	}
}

func TestLesson_FourOfFiveTwoStars(t *testing.T) {
	c, rec := startSession(t, quiz.ModeLesson, &fakeSource{})

	// correct, correct, wrong, correct, correct
	c.Answer(0)
	c.Answer(0)
	c.Answer(1)
	c.Answer(0)
	c.Answer(0)

	snap := c.Snapshot()
	if snap.State != StateWon {
		t.Fatalf("state = %s, want won", snap.State)
	}
	if snap.Correct != 4 {
		t.Errorf("correct = %d, want 4", snap.Correct)
	}
	if snap.Stars != 2 {
		t.Errorf("stars = %d, want 2", snap.Stars)
	}
	if snap.Lives != 2 {
		t.Errorf("lives = %d, want 2", snap.Lives)
	}

	o := rec.lastOutcome(t)
	if o.Stars != 2 || o.Correct != 4 || o.State != StateWon {
		t.Errorf("outcome = %+v, want won/4 correct/2 stars", o)
	}
}

func TestLesson_DepletionOnFinalQuestionLoses(t *testing.T) {
	c, _ := startSession(t, quiz.ModeLesson, &fakeSource{})

	c.Answer(1)
	c.Answer(1)
	c.Answer(0)
	c.Answer(0)
	c.Answer(1) // third miss on the final question

	// Life depletion wins over "last question answered".
	if got := c.Snapshot().State; got != StateLost {
		t.Errorf("state = %s, want lost", got)
	}
}

func TestScoring_PointsAndStreak(t *testing.T) {
	c, _ := startSession(t, quiz.ModeMixed, &fakeSource{})

	c.Answer(0)
	c.Answer(0)
	c.Answer(1)
	c.Answer(0)

	snap := c.Snapshot()
	if snap.Score != 60 {
		t.Errorf("score = %d, want 60 (3 correct x 20)", snap.Score)
	}
	if snap.Streak != 1 {
		t.Errorf("streak = %d, want 1", snap.Streak)
	}
	if snap.BestStreak != 2 {
		t.Errorf("best streak = %d, want 2", snap.BestStreak)
	}
}

func TestTimeout_NonApocalypseCostsLife(t *testing.T) {
	c, _ := startSession(t, quiz.ModeChallenge, &fakeSource{})

	c.Answer(0) // build a streak
	c.Timeout()

	snap := c.Snapshot()
	if snap.Lives != quiz.MaxLives-1 {
		t.Errorf("lives = %d, want %d", snap.Lives, quiz.MaxLives-1)
	}
	if snap.Streak != 0 {
		t.Errorf("streak = %d, want 0 after timeout", snap.Streak)
	}
	if snap.State != StatePlaying {
		t.Errorf("state = %s, want playing", snap.State)
	}
	if snap.Index != 2 {
		t.Errorf("index = %d, want 2 (timeout advances)", snap.Index)
	}
}

func TestTimeout_ChallengeOnLastLifeLoses(t *testing.T) {
	c, rec := startSession(t, quiz.ModeChallenge, &fakeSource{})

	c.Answer(1)
	c.Answer(1) // lives down to 1, now on question 3
	c.Timeout()

	if got := c.Snapshot().State; got != StateLost {
		t.Fatalf("state = %s, want lost", got)
	}

	// A late answer for the already-resolved question must be ignored.
	before := c.Snapshot()
	c.Answer(0)
	if after := c.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("late answer mutated state: %+v -> %+v", before, after)
	}
	if o := rec.lastOutcome(t); o.State != StateLost {
		t.Errorf("outcome state = %s, want lost", o.State)
	}
}

func TestTimeout_ApocalypseEndsWithoutLifePenalty(t *testing.T) {
	c, rec := startSession(t, quiz.ModeApocalypse, &fakeSource{})

	c.Answer(1) // wrong answers still cost a life in apocalypse
	livesBefore := c.Snapshot().Lives
	if livesBefore != quiz.MaxLives-1 {
		t.Fatalf("lives = %d, want %d", livesBefore, quiz.MaxLives-1)
	}

	c.Timeout()

	snap := c.Snapshot()
	if snap.State != StateEnded {
		t.Errorf("state = %s, want ended", snap.State)
	}
	if snap.Lives != livesBefore {
		t.Errorf("lives = %d, want %d (unchanged by session timeout)", snap.Lives, livesBefore)
	}
	if o := rec.lastOutcome(t); o.State != StateEnded {
		t.Errorf("outcome state = %s, want ended", o.State)
	}
}

func TestApocalypse_IndexWraps(t *testing.T) {
	c, _ := startSession(t, quiz.ModeApocalypse, &fakeSource{n: 30})

	for i := 0; i < 30; i++ {
		c.Answer(0)
	}

	snap := c.Snapshot()
	if snap.Index != 0 {
		t.Errorf("index = %d, want 0 (wrapped)", snap.Index)
	}
	if snap.State != StatePlaying {
		t.Errorf("state = %s, want playing (endless mode never exhausts)", snap.State)
	}
}

// untimed strips the live countdown so snapshots taken at different
// instants of the same state compare equal.
func untimed(s Snapshot) Snapshot {
	s.Remaining = 0
	return s
}

func TestResolution_FirstEventWins(t *testing.T) {
	// Answer first, then the timer for the same question fires late: the
	// expiry must be dropped by the epoch guard.
	c, _ := startSession(t, quiz.ModeChallenge, &fakeSource{})
	c.mu.Lock()
	stale := c.epoch
	c.mu.Unlock()
	c.Answer(0)
	after := untimed(c.Snapshot())
	c.questionExpired(stale)
	if got := untimed(c.Snapshot()); !reflect.DeepEqual(got, after) {
		t.Errorf("late timeout mutated state: %+v -> %+v", after, got)
	}

	// Timeout ends the session first, then a late answer arrives: the
	// answer must be a no-op.
	c2, _ := startSession(t, quiz.ModeApocalypse, &fakeSource{})
	c2.Timeout()
	after2 := untimed(c2.Snapshot())
	c2.Answer(0)
	if got := untimed(c2.Snapshot()); !reflect.DeepEqual(got, after2) {
		t.Errorf("late answer mutated state: %+v -> %+v", after2, got)
	}
}

func TestNormalWin_StarsFromLives(t *testing.T) {
	c, rec := startSession(t, quiz.ModeNormal, &fakeSource{})

	c.Answer(1) // one miss
	for i := 0; i < 9; i++ {
		c.Answer(0)
	}

	snap := c.Snapshot()
	if snap.State != StateWon {
		t.Fatalf("state = %s, want won", snap.State)
	}
	if snap.Stars != 2 {
		t.Errorf("stars = %d, want 2 (graded from 2 remaining lives)", snap.Stars)
	}
	if o := rec.lastOutcome(t); o.Score != 90 {
		t.Errorf("score = %d, want 90 (9 correct x 10)", o.Score)
	}
}

func TestExit_ReturnsToIdle(t *testing.T) {
	c, rec := startSession(t, quiz.ModeChallenge, &fakeSource{})

	var exited bool
	c.Subscribe(func(ev Event) {
		if ev.Type == EventExited {
			exited = true
		}
	})

	c.Answer(0)
	c.Exit()

	if got := c.Snapshot().State; got != StateIdle {
		t.Errorf("state = %s, want idle", got)
	}
	if !exited {
		t.Error("expected EventExited notification")
	}
	rec.mu.Lock()
	n := len(rec.outcomes)
	rec.mu.Unlock()
	if n != 0 {
		t.Errorf("exit recorded %d outcomes, want 0", n)
	}
}

func TestRetry_SameModeAndFilters(t *testing.T) {
	rec := &fakeRecorder{}
	c := New(&fakeSource{}, rec)
	if err := c.Start(context.Background(), quiz.ModeLesson, Filters{LessonID: 4, Subject: "geometry", Difficulty: 2}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Exit)

	for i := 0; i < 5; i++ {
		c.Answer(0)
	}
	if err := c.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}

	snap := c.Snapshot()
	if snap.State != StatePlaying || snap.Index != 0 || snap.Score != 0 || snap.Lives != quiz.MaxLives {
		t.Errorf("retry snapshot = %+v, want fresh playing session", snap)
	}
	if rec.lastOutcome(t).LessonID != 4 {
		t.Errorf("outcome lesson = %d, want 4", rec.lastOutcome(t).LessonID)
	}
	if len(rec.started) != 2 {
		t.Errorf("gamesPlayed incremented %d times, want 2", len(rec.started))
	}
}

// Package progress reconciles terminal session outcomes into durable
// per-user state: lesson stars, the curriculum unlock position, and the
// aggregate statistics. Mutations land in memory first; persistence to
// the backend is fire-and-forget and never blocks or rolls back play.
package progress

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/session"
)

// GameStats is the aggregate counter set. All counters are monotonically
// increasing; the per-mode records are max-so-far.
type GameStats struct {
	TotalQuestions       int
	CorrectAnswers       int
	GamesPlayed          int
	LessonsCompleted     int
	ChallengeHighScore   int
	ChallengeBestStreak  int
	ApocalypseHighScore  int
	ApocalypseBestStreak int
}

// LessonProgress is one per-lesson completion record, created on first
// completion and only ever upgraded.
type LessonProgress struct {
	LessonID  int
	Stars     int
	Completed bool
}

// Backend persists state to the remote store.
type Backend interface {
	FetchStats(ctx context.Context) (GameStats, error)
	SaveStats(ctx context.Context, s GameStats) error
	FetchLessons(ctx context.Context) ([]LessonProgress, error)
	SaveLesson(ctx context.Context, lessonID, stars int) error
}

// Cache keeps an offline copy of the same state. Snapshot writes carry a
// monotonic sequence so a slow write can never regress the on-disk copy.
type Cache interface {
	SaveStats(s GameStats, seq int64) error
	LoadStats() (GameStats, int64, error)
	SaveLessons(ls []LessonProgress) error
	LoadLessons() ([]LessonProgress, error)
}

// Store owns the in-memory progress state.
type Store struct {
	mu      sync.Mutex
	stats   GameStats
	lessons map[int]LessonProgress
	seq     int64

	backend Backend
	cache   Cache
	log     *slog.Logger
	wg      sync.WaitGroup
	expired func()
}

var _ session.Recorder = (*Store)(nil)

// NewStore builds an empty store. backend and cache may each be nil
// (offline play, no durable copy).
func NewStore(backend Backend, cache Cache, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		lessons: make(map[int]LessonProgress),
		backend: backend,
		cache:   cache,
		log:     log,
	}
}

// OnAuthExpired registers a hook fired whenever the backend rejects the
// session token, from Load or from a background save. The hook may run
// off the caller's goroutine.
func (s *Store) OnAuthExpired(fn func()) {
	s.mu.Lock()
	s.expired = fn
	s.mu.Unlock()
}

// reportAuthExpired fires the expiry hook when err means the token was
// rejected. Any other error is the caller's to log.
func (s *Store) reportAuthExpired(err error) {
	if !errors.Is(err, quiz.ErrAuthExpired) {
		return
	}
	s.mu.Lock()
	fn := s.expired
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Load hydrates state from the backend, falling back to the local cache
// when the backend is unreachable. An auth failure propagates so the
// caller can force a logout.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		s.loadFromCache()
		return nil
	}

	stats, err := s.backend.FetchStats(ctx)
	if err != nil {
		s.log.Warn("stats fetch failed, using local cache", "error", err)
		s.reportAuthExpired(err)
		s.loadFromCache()
		return err
	}
	lessons, err := s.backend.FetchLessons(ctx)
	if err != nil {
		s.log.Warn("lesson progress fetch failed, using local cache", "error", err)
		s.reportAuthExpired(err)
		s.loadFromCache()
		return err
	}

	s.mu.Lock()
	s.stats = stats
	s.lessons = make(map[int]LessonProgress, len(lessons))
	for _, l := range lessons {
		s.lessons[l.LessonID] = l
	}
	s.mu.Unlock()

	s.persistCache()
	return nil
}

func (s *Store) loadFromCache() {
	if s.cache == nil {
		return
	}
	stats, seq, err := s.cache.LoadStats()
	if err != nil {
		s.log.Warn("local stats cache unreadable", "error", err)
		return
	}
	lessons, err := s.cache.LoadLessons()
	if err != nil {
		s.log.Warn("local lesson cache unreadable", "error", err)
	}

	s.mu.Lock()
	s.stats = stats
	s.seq = seq
	s.lessons = make(map[int]LessonProgress, len(lessons))
	for _, l := range lessons {
		s.lessons[l.LessonID] = l
	}
	s.mu.Unlock()
}

// GameStarted counts a session start.
func (s *Store) GameStarted(quiz.Mode) {
	s.mu.Lock()
	s.stats.GamesPlayed++
	s.mu.Unlock()
	s.persist()
}

// RecordOutcome folds a terminal session outcome into the aggregate state.
func (s *Store) RecordOutcome(o session.Outcome) {
	s.mu.Lock()
	s.stats.TotalQuestions += o.Answered
	s.stats.CorrectAnswers += o.Correct

	switch o.Mode {
	case quiz.ModeChallenge:
		s.stats.ChallengeHighScore = maxInt(s.stats.ChallengeHighScore, o.Score)
		s.stats.ChallengeBestStreak = maxInt(s.stats.ChallengeBestStreak, o.BestStreak)
	case quiz.ModeApocalypse:
		s.stats.ApocalypseHighScore = maxInt(s.stats.ApocalypseHighScore, o.Score)
		s.stats.ApocalypseBestStreak = maxInt(s.stats.ApocalypseBestStreak, o.BestStreak)
	}

	var completedLesson *LessonProgress
	if o.Mode == quiz.ModeLesson && o.State == session.StateWon {
		s.stats.LessonsCompleted++
		existing := s.lessons[o.LessonID]
		merged := LessonProgress{
			LessonID:  o.LessonID,
			Stars:     quiz.MergeStars(existing.Stars, o.Stars),
			Completed: true,
		}
		s.lessons[o.LessonID] = merged
		completedLesson = &merged
	}
	s.mu.Unlock()

	s.persist()
	if completedLesson != nil {
		s.persistLesson(*completedLesson)
	}
}

// UnlockedLesson is the current curriculum position: one past the highest
// completed lesson, starting at 1.
func (s *Store) UnlockedLesson() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	highest := 0
	for id, l := range s.lessons {
		if l.Completed && id > highest {
			highest = id
		}
	}
	return highest + 1
}

// Stats returns a copy of the aggregate counters.
func (s *Store) Stats() GameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Lesson returns the record for one lesson, zero-valued when never
// completed.
func (s *Store) Lesson(id int) LessonProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lessons[id]
}

// Reset clears in-memory state, for logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.stats = GameStats{}
	s.lessons = make(map[int]LessonProgress)
	s.seq = 0
	s.mu.Unlock()
}

// Wait blocks until in-flight persistence goroutines finish. Used at
// shutdown and in tests.
func (s *Store) Wait() {
	s.wg.Wait()
}

// persist pushes the current snapshot to the backend and the cache
// without blocking the caller. A failure is logged and the optimistic
// in-memory state stands; a later successful save overwrites remote
// state from the newest local snapshot.
func (s *Store) persist() {
	s.mu.Lock()
	s.seq++
	snap := s.stats
	seq := s.seq
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.cache != nil {
			if err := s.cache.SaveStats(snap, seq); err != nil {
				s.log.Warn("local stats save failed", "seq", seq, "error", err)
			}
		}
		if s.backend != nil {
			if err := s.backend.SaveStats(context.Background(), snap); err != nil {
				s.log.Warn("stats save failed, keeping local state", "seq", seq, "error", err)
				s.reportAuthExpired(err)
			}
		}
	}()
}

func (s *Store) persistLesson(l LessonProgress) {
	s.mu.Lock()
	all := make([]LessonProgress, 0, len(s.lessons))
	for _, rec := range s.lessons {
		all = append(all, rec)
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.cache != nil {
			if err := s.cache.SaveLessons(all); err != nil {
				s.log.Warn("local lesson save failed", "lesson", l.LessonID, "error", err)
			}
		}
		if s.backend != nil {
			if err := s.backend.SaveLesson(context.Background(), l.LessonID, l.Stars); err != nil {
				s.log.Warn("lesson progress save failed", "lesson", l.LessonID, "error", err)
				s.reportAuthExpired(err)
			}
		}
	}()
}

func (s *Store) persistCache() {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.seq++
	snap := s.stats
	seq := s.seq
	all := make([]LessonProgress, 0, len(s.lessons))
	for _, rec := range s.lessons {
		all = append(all, rec)
	}
	s.mu.Unlock()

	if err := s.cache.SaveStats(snap, seq); err != nil {
		s.log.Warn("local stats save failed", "seq", seq, "error", err)
	}
	if err := s.cache.SaveLessons(all); err != nil {
		s.log.Warn("local lesson save failed", "error", err)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

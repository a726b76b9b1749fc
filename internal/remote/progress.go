package remote

import (
	"context"
	"errors"

	"github.com/kilohertztli/Mathenique/internal/progress"
)

// ErrLoggedOut short-circuits backend calls that need a session.
var ErrLoggedOut = errors.New("not logged in")

// ProgressBackend adapts the API client to the progress store's
// persistence contract.
type ProgressBackend struct {
	client *Client
}

// NewProgressBackend wraps a client as a progress backend.
func NewProgressBackend(c *Client) *ProgressBackend {
	return &ProgressBackend{client: c}
}

var _ progress.Backend = (*ProgressBackend)(nil)

// FetchStats pulls the aggregate statistics.
func (b *ProgressBackend) FetchStats(ctx context.Context) (progress.GameStats, error) {
	if !b.client.authed() {
		return progress.GameStats{}, ErrLoggedOut
	}
	s, err := b.client.Stats(ctx)
	if err != nil {
		return progress.GameStats{}, err
	}
	return progress.GameStats{
		TotalQuestions:       s.TotalQuestions,
		CorrectAnswers:       s.CorrectAnswers,
		GamesPlayed:          s.GamesPlayed,
		LessonsCompleted:     s.LessonsCompleted,
		ChallengeHighScore:   s.ChallengeHighScore,
		ChallengeBestStreak:  s.ChallengeBestStreak,
		ApocalypseHighScore:  s.ApocalypseHighScore,
		ApocalypseBestStreak: s.ApocalypseBestStreak,
	}, nil
}

// SaveStats pushes the full statistics snapshot. Logged out it is a
// no-op; the local cache still holds the state.
func (b *ProgressBackend) SaveStats(ctx context.Context, s progress.GameStats) error {
	if !b.client.authed() {
		return nil
	}
	return b.client.PutStats(ctx, Stats{
		TotalQuestions:       s.TotalQuestions,
		CorrectAnswers:       s.CorrectAnswers,
		GamesPlayed:          s.GamesPlayed,
		LessonsCompleted:     s.LessonsCompleted,
		ChallengeHighScore:   s.ChallengeHighScore,
		ChallengeBestStreak:  s.ChallengeBestStreak,
		ApocalypseHighScore:  s.ApocalypseHighScore,
		ApocalypseBestStreak: s.ApocalypseBestStreak,
	})
}

// FetchLessons pulls all per-lesson completion records.
func (b *ProgressBackend) FetchLessons(ctx context.Context) ([]progress.LessonProgress, error) {
	if !b.client.authed() {
		return nil, ErrLoggedOut
	}
	wire, err := b.client.LessonProgress(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]progress.LessonProgress, 0, len(wire))
	for _, l := range wire {
		out = append(out, progress.LessonProgress{
			LessonID:  l.LessonID,
			Stars:     l.Stars,
			Completed: l.Completed != 0,
		})
	}
	return out, nil
}

// SaveLesson records a lesson completion. Logged out it is a no-op.
func (b *ProgressBackend) SaveLesson(ctx context.Context, lessonID, stars int) error {
	if !b.client.authed() {
		return nil
	}
	return b.client.PostLessonProgress(ctx, lessonID, stars)
}

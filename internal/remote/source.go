package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilohertztli/Mathenique/internal/catalog"
	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/session"
)

// QuestionSource adapts the API client to the session controller's
// question contract.
type QuestionSource struct {
	client *Client
}

// NewQuestionSource wraps a client as a session source.
func NewQuestionSource(c *Client) *QuestionSource {
	return &QuestionSource{client: c}
}

var _ session.Source = (*QuestionSource)(nil)

// Fetch pulls a question batch from the backend and normalizes it to the
// internal shape. Any transport failure, auth expiry aside, surfaces as
// ErrSourceUnavailable so the session never starts on a bad batch.
func (s *QuestionSource) Fetch(ctx context.Context, mode quiz.Mode, count int, f session.Filters) ([]quiz.Question, error) {
	p := QuestionParams{
		Mode:       string(mode),
		Count:      count,
		Subject:    f.Subject,
		Difficulty: f.Difficulty,
	}
	if mode == quiz.ModeLesson {
		lesson, ok := catalog.LessonByID(f.LessonID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown lesson %d", quiz.ErrSourceUnavailable, f.LessonID)
		}
		p.Mode = ""
		p.IsLesson = true
		p.Subject = lesson.Topic
		p.Difficulty = lesson.Difficulty
	}

	wire, err := s.client.Questions(ctx, p)
	if err != nil {
		if errors.Is(err, quiz.ErrAuthExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", quiz.ErrSourceUnavailable, err)
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("%w: empty batch", quiz.ErrSourceUnavailable)
	}

	out := make([]quiz.Question, 0, len(wire))
	seen := make(map[int]bool, len(wire))
	for _, w := range wire {
		q := quiz.Question{
			ID:            w.ID,
			Question:      w.Text,
			Options:       w.Options,
			CorrectAnswer: w.CorrectIndex,
		}
		if !q.Valid() || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable questions in batch", quiz.ErrSourceUnavailable)
	}
	return out, nil
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/kilohertztli/Mathenique/internal/quiz"
)

type fnSource func(ctx context.Context, mode quiz.Mode, count int, f Filters) ([]quiz.Question, error)

func (fn fnSource) Fetch(ctx context.Context, mode quiz.Mode, count int, f Filters) ([]quiz.Question, error) {
	return fn(ctx, mode, count, f)
}

func staticBatch(n int) []quiz.Question {
	out := make([]quiz.Question, n)
	for i := range out {
		out[i] = quiz.Question{ID: i + 1, Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1}
	}
	return out
}

func TestFallbackSource_PrimaryWins(t *testing.T) {
	primary := staticBatch(3)
	s := &FallbackSource{
		Primary: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return primary, nil
		}),
		Backup: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			t.Fatal("backup should not be consulted")
			return nil, nil
		}),
	}

	got, err := s.Fetch(context.Background(), quiz.ModeNormal, 3, Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d questions, want 3", len(got))
	}
}

func TestFallbackSource_PrimaryFailureFallsBack(t *testing.T) {
	s := &FallbackSource{
		Primary: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return nil, quiz.ErrSourceUnavailable
		}),
		Backup: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return staticBatch(2), nil
		}),
	}

	got, err := s.Fetch(context.Background(), quiz.ModeNormal, 2, Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
}

func TestFallbackSource_GateSkipsPrimary(t *testing.T) {
	s := &FallbackSource{
		Primary: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			t.Fatal("gated primary should not be consulted")
			return nil, nil
		}),
		Backup: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return staticBatch(1), nil
		}),
		Gate: func() bool { return false },
	}

	got, err := s.Fetch(context.Background(), quiz.ModeLesson, 1, Filters{LessonID: 1})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d questions, want 1", len(got))
	}
}

func TestFallbackSource_ExpiredTokenForcesLogout(t *testing.T) {
	var loggedOut bool
	s := &FallbackSource{
		Primary: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return nil, quiz.ErrAuthExpired
		}),
		Backup: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return staticBatch(2), nil
		}),
		OnAuthExpired: func() { loggedOut = true },
	}

	got, err := s.Fetch(context.Background(), quiz.ModeNormal, 2, Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want the offline fallback", len(got))
	}
	if !loggedOut {
		t.Error("a rejected token must trigger the logout hook")
	}
}

func TestFallbackSource_NetworkErrorIsNotLogout(t *testing.T) {
	s := &FallbackSource{
		Primary: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return nil, errors.New("connect refused")
		}),
		Backup: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return staticBatch(1), nil
		}),
		OnAuthExpired: func() { t.Error("a plain network error must not log the player out") },
	}

	if _, err := s.Fetch(context.Background(), quiz.ModeNormal, 1, Filters{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
}

func TestFallbackSource_NoBackup(t *testing.T) {
	s := &FallbackSource{
		Primary: fnSource(func(context.Context, quiz.Mode, int, Filters) ([]quiz.Question, error) {
			return nil, errors.New("boom")
		}),
	}

	_, err := s.Fetch(context.Background(), quiz.ModeNormal, 5, Filters{})
	if !errors.Is(err, quiz.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

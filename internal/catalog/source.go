package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/session"
)

// lessonIDStride spaces in-lesson question ids apart when lessons are
// merged into one arena pool, keeping ids globally unique:
// globalID = id + lessonID*100.
const lessonIDStride = 100

// Static serves sessions from the embedded question bank. It is the
// offline counterpart of the remote source and produces the same
// normalized question shape.
type Static struct{}

// NewStatic returns a Static source, failing if the embedded bank does
// not validate.
func NewStatic() (*Static, error) {
	if _, err := loadBank(); err != nil {
		return nil, err
	}
	return &Static{}, nil
}

var _ session.Source = (*Static)(nil)

// Fetch returns questions for a session. Lesson mode draws the fixed
// per-lesson list sized at exactly count; arena modes draw an unbiased
// shuffled sample without replacement from the merged multi-topic pool.
func (s *Static) Fetch(_ context.Context, mode quiz.Mode, count int, f session.Filters) ([]quiz.Question, error) {
	bank, err := loadBank()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrSourceUnavailable, err)
	}

	if mode == quiz.ModeLesson {
		return lessonQuestions(bank, count, f.LessonID)
	}
	return arenaSample(bank, mode, count, f)
}

func lessonQuestions(bank *bankFile, count, lessonID int) ([]quiz.Question, error) {
	for _, l := range bank.Lessons {
		if l.LessonID != lessonID {
			continue
		}
		if len(l.Questions) < count {
			return nil, fmt.Errorf("%w: lesson %d has %d questions, need %d", quiz.ErrSourceUnavailable, lessonID, len(l.Questions), count)
		}
		out := make([]quiz.Question, count)
		for i, q := range l.Questions[:count] {
			out[i] = normalize(q, 0)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown lesson %d", quiz.ErrSourceUnavailable, lessonID)
}

func arenaSample(bank *bankFile, mode quiz.Mode, count int, f session.Filters) ([]quiz.Question, error) {
	maxDifficulty := 3
	if mode == quiz.ModeChallenge {
		maxDifficulty = 2
	}

	var pool []quiz.Question
	for _, l := range bank.Lessons {
		if f.Subject != "" && l.Subject != f.Subject {
			continue
		}
		if f.Difficulty > 0 && l.Difficulty != f.Difficulty {
			continue
		}
		if l.Difficulty > maxDifficulty {
			continue
		}
		for _, q := range l.Questions {
			pool = append(pool, normalize(q, l.LessonID*lessonIDStride))
		}
	}

	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no questions match filters", quiz.ErrSourceUnavailable)
	}

	// Unbiased Fisher-Yates permutation, then take the prefix: a uniform
	// sample without replacement. Fewer items than requested means the
	// whole pool, shuffled.
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

// normalize maps the wire question shape onto the internal one. The same
// renaming applies to every source.
func normalize(q bankQuestion, idOffset int) quiz.Question {
	return quiz.Question{
		ID:            q.ID + idOffset,
		Question:      q.Text,
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectIndex,
	}
}

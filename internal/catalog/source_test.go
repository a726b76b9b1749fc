package catalog

import (
	"context"
	"testing"

	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/session"
)

func newSource(t *testing.T) *Static {
	t.Helper()
	s, err := NewStatic()
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	return s
}

func TestBankValidates(t *testing.T) {
	bank, err := loadBank()
	if err != nil {
		t.Fatalf("loadBank: %v", err)
	}
	if len(bank.Lessons) != LessonCount() {
		t.Errorf("bank has %d lessons, catalog lists %d", len(bank.Lessons), LessonCount())
	}
	for _, l := range bank.Lessons {
		if len(l.Questions) < quiz.LessonLength {
			t.Errorf("lesson %d has %d questions, want >= %d", l.LessonID, len(l.Questions), quiz.LessonLength)
		}
	}
}

func TestParseBank_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"lessons": [`},
		{"empty lessons", `{"lessons": []}`},
		{"single option", `{"lessons":[{"lesson_id":1,"subject":"algebra","difficulty":1,"questions":[{"id":1,"text":"?","options":["a"],"correct_index":0}]}]}`},
		{"index out of range", `{"lessons":[{"lesson_id":1,"subject":"algebra","difficulty":1,"questions":[{"id":1,"text":"?","options":["a","b"],"correct_index":2}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseBank([]byte(tt.raw)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestFetch_LessonExactCount(t *testing.T) {
	s := newSource(t)

	qs, err := s.Fetch(context.Background(), quiz.ModeLesson, quiz.LessonLength, session.Filters{LessonID: 3})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(qs) != quiz.LessonLength {
		t.Fatalf("got %d questions, want %d", len(qs), quiz.LessonLength)
	}
	for _, q := range qs {
		if !q.Valid() {
			t.Errorf("invalid question %+v", q)
		}
	}
}

func TestFetch_UnknownLesson(t *testing.T) {
	s := newSource(t)

	_, err := s.Fetch(context.Background(), quiz.ModeLesson, quiz.LessonLength, session.Filters{LessonID: 99})
	if err == nil {
		t.Fatal("expected error for unknown lesson")
	}
}

func TestFetch_ArenaIDsGloballyUnique(t *testing.T) {
	s := newSource(t)

	qs, err := s.Fetch(context.Background(), quiz.ModeMixed, 1000, session.Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	seen := make(map[int]bool)
	for _, q := range qs {
		if seen[q.ID] {
			t.Errorf("duplicate id %d in arena set", q.ID)
		}
		seen[q.ID] = true

		// id = originalID + lessonID*100
		lessonID := q.ID / lessonIDStride
		original := q.ID % lessonIDStride
		if lessonID < 1 || lessonID > LessonCount() {
			t.Errorf("id %d implies lesson %d outside catalog", q.ID, lessonID)
		}
		if original < 1 || original > quiz.LessonLength {
			t.Errorf("id %d implies in-lesson id %d outside range", q.ID, original)
		}
	}
}

func TestFetch_ArenaSampleSize(t *testing.T) {
	s := newSource(t)

	qs, err := s.Fetch(context.Background(), quiz.ModeMixed, quiz.ArenaLength, session.Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(qs) != quiz.ArenaLength {
		t.Errorf("got %d questions, want %d", len(qs), quiz.ArenaLength)
	}

	// Requesting more than the pool returns everything, shuffled.
	all, err := s.Fetch(context.Background(), quiz.ModeMixed, 1000, session.Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(all) != LessonCount()*quiz.LessonLength {
		t.Errorf("got %d questions, want the full pool of %d", len(all), LessonCount()*quiz.LessonLength)
	}
}

func TestFetch_SubjectFilter(t *testing.T) {
	s := newSource(t)

	qs, err := s.Fetch(context.Background(), quiz.ModeNormal, 1000, session.Filters{Subject: "algebra"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Lessons 1 and 2 are algebra.
	for _, q := range qs {
		if lid := q.ID / lessonIDStride; lid != 1 && lid != 2 {
			t.Errorf("id %d from lesson %d leaked through the algebra filter", q.ID, lid)
		}
	}

	if _, err := s.Fetch(context.Background(), quiz.ModeNormal, 10, session.Filters{Subject: "calculus"}); err == nil {
		t.Error("expected error for a subject with no questions")
	}
}

func TestTopics(t *testing.T) {
	got := Topics()
	want := []string{"algebra", "geometry", "trigonometry"}
	if len(got) != len(want) {
		t.Fatalf("Topics() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Topics()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLessonByID(t *testing.T) {
	l, ok := LessonByID(5)
	if !ok {
		t.Fatal("lesson 5 missing")
	}
	if l.Topic != "trigonometry" || l.Difficulty != 1 {
		t.Errorf("lesson 5 = %+v, want trigonometry training", l)
	}
	if _, ok := LessonByID(0); ok {
		t.Error("lesson 0 should not exist")
	}
}

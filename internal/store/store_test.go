package store

import (
	"path/filepath"
	"testing"

	"github.com/kilohertztli/Mathenique/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStats_EmptyDatabase(t *testing.T) {
	s := openTestStore(t)

	got, seq, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if got != (progress.GameStats{}) || seq != 0 {
		t.Errorf("fresh database returned %+v seq=%d", got, seq)
	}
}

func TestStats_SaveAndReload(t *testing.T) {
	s := openTestStore(t)

	want := progress.GameStats{
		TotalQuestions:      25,
		CorrectAnswers:      19,
		GamesPlayed:         4,
		LessonsCompleted:    2,
		ChallengeHighScore:  140,
		ChallengeBestStreak: 7,
	}
	if err := s.SaveStats(want, 3); err != nil {
		t.Fatalf("SaveStats: %v", err)
	}

	got, seq, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if got != want {
		t.Errorf("LoadStats = %+v, want %+v", got, want)
	}
	if seq != 3 {
		t.Errorf("seq = %d, want 3", seq)
	}
}

func TestStats_StaleWriteDropped(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveStats(progress.GameStats{GamesPlayed: 8}, 12); err != nil {
		t.Fatal(err)
	}
	// A write carrying an older sequence arrives late and must not win.
	if err := s.SaveStats(progress.GameStats{GamesPlayed: 3}, 5); err != nil {
		t.Fatal(err)
	}

	got, seq, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if got.GamesPlayed != 8 || seq != 12 {
		t.Errorf("stale write regressed the snapshot: %+v seq=%d", got, seq)
	}
}

func TestLessons_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := []progress.LessonProgress{
		{LessonID: 2, Stars: 3, Completed: true},
		{LessonID: 1, Stars: 2, Completed: true},
	}
	if err := s.SaveLessons(in); err != nil {
		t.Fatalf("SaveLessons: %v", err)
	}

	got, err := s.LoadLessons()
	if err != nil {
		t.Fatalf("LoadLessons: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].LessonID != 1 || got[1].LessonID != 2 {
		t.Errorf("records not ordered by lesson: %+v", got)
	}
	if got[1].Stars != 3 {
		t.Errorf("lesson 2 stars = %d, want 3", got[1].Stars)
	}

	// A later save replaces the whole set.
	if err := s.SaveLessons([]progress.LessonProgress{{LessonID: 1, Stars: 3, Completed: true}}); err != nil {
		t.Fatal(err)
	}
	got, err = s.LoadLessons()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Stars != 3 {
		t.Errorf("overwrite failed: %+v", got)
	}
}

func TestCredentials_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	tok, email, err := s.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if tok != "" || email != "" {
		t.Errorf("fresh database returned credentials %q %q", tok, email)
	}

	if err := s.SaveCredentials("tok-abc", "alice@example.com"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	tok, email, err = s.LoadCredentials()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "tok-abc" || email != "alice@example.com" {
		t.Errorf("got %q %q", tok, email)
	}

	if err := s.ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials: %v", err)
	}
	tok, _, err = s.LoadCredentials()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "" {
		t.Errorf("token survived ClearCredentials: %q", tok)
	}
}

func TestDefaultPath_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MATHENIQUE_DB", filepath.Join(dir, "nested", "custom.db"))

	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if p != filepath.Join(dir, "nested", "custom.db") {
		t.Errorf("path = %q", p)
	}
}

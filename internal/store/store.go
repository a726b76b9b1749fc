// Package store keeps an offline copy of progress and credentials in a
// local SQLite database, so the app stays usable when the backend is
// unreachable.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/kilohertztli/Mathenique/internal/progress"
)

// statsRow is the single-row aggregate snapshot. Sequence is a monotonic
// write counter so a write that lands late cannot regress the snapshot.
type statsRow struct {
	ID                   int `gorm:"primaryKey"`
	Sequence             int64
	TotalQuestions       int
	CorrectAnswers       int
	GamesPlayed          int
	LessonsCompleted     int
	ChallengeHighScore   int
	ChallengeBestStreak  int
	ApocalypseHighScore  int
	ApocalypseBestStreak int
}

func (statsRow) TableName() string { return "stats_snapshot" }

type lessonRow struct {
	LessonID  int `gorm:"primaryKey"`
	Stars     int
	Completed bool
}

func (lessonRow) TableName() string { return "lesson_progress" }

type credentialRow struct {
	ID    int `gorm:"primaryKey"`
	Token string
	Email string
}

func (credentialRow) TableName() string { return "credentials" }

// Store wraps the local database.
type Store struct {
	db *gorm.DB
}

var _ progress.Cache = (*Store)(nil)

// Open connects to the SQLite database at path and runs auto-migration.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&statsRow{}, &lessonRow{}, &credentialRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// SaveStats upserts the aggregate snapshot. A snapshot older than the one
// on disk is dropped.
func (s *Store) SaveStats(g progress.GameStats, seq int64) error {
	row := statsRow{
		ID:                   1,
		Sequence:             seq,
		TotalQuestions:       g.TotalQuestions,
		CorrectAnswers:       g.CorrectAnswers,
		GamesPlayed:          g.GamesPlayed,
		LessonsCompleted:     g.LessonsCompleted,
		ChallengeHighScore:   g.ChallengeHighScore,
		ChallengeBestStreak:  g.ChallengeBestStreak,
		ApocalypseHighScore:  g.ApocalypseHighScore,
		ApocalypseBestStreak: g.ApocalypseBestStreak,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sequence", "total_questions", "correct_answers", "games_played",
			"lessons_completed", "challenge_high_score", "challenge_best_streak",
			"apocalypse_high_score", "apocalypse_best_streak",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lt{Column: clause.Column{Name: "sequence"}, Value: seq},
		}},
	}).Create(&row).Error
}

// LoadStats reads the aggregate snapshot, zero-valued when none exists.
func (s *Store) LoadStats() (progress.GameStats, int64, error) {
	var row statsRow
	err := s.db.First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progress.GameStats{}, 0, nil
	}
	if err != nil {
		return progress.GameStats{}, 0, err
	}
	return progress.GameStats{
		TotalQuestions:       row.TotalQuestions,
		CorrectAnswers:       row.CorrectAnswers,
		GamesPlayed:          row.GamesPlayed,
		LessonsCompleted:     row.LessonsCompleted,
		ChallengeHighScore:   row.ChallengeHighScore,
		ChallengeBestStreak:  row.ChallengeBestStreak,
		ApocalypseHighScore:  row.ApocalypseHighScore,
		ApocalypseBestStreak: row.ApocalypseBestStreak,
	}, row.Sequence, nil
}

// SaveLessons replaces the per-lesson records with the given set. Stars
// only ever go up, so a full overwrite from the newest in-memory state is
// safe.
func (s *Store) SaveLessons(ls []progress.LessonProgress) error {
	rows := make([]lessonRow, 0, len(ls))
	for _, l := range ls {
		rows = append(rows, lessonRow{LessonID: l.LessonID, Stars: l.Stars, Completed: l.Completed})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&lessonRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// LoadLessons reads all per-lesson records.
func (s *Store) LoadLessons() ([]progress.LessonProgress, error) {
	var rows []lessonRow
	if err := s.db.Order("lesson_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]progress.LessonProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, progress.LessonProgress{LessonID: r.LessonID, Stars: r.Stars, Completed: r.Completed})
	}
	return out, nil
}

// ResetProgress drops the cached statistics and lesson records, keeping
// credentials.
func (s *Store) ResetProgress() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&statsRow{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&lessonRow{}).Error
	})
}

// SaveCredentials persists the bearer token between runs.
func (s *Store) SaveCredentials(token, email string) error {
	row := credentialRow{ID: 1, Token: token, Email: email}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "email"}),
	}).Create(&row).Error
}

// LoadCredentials reads the saved token and email, empty when logged out.
func (s *Store) LoadCredentials() (token, email string, err error) {
	var row credentialRow
	err = s.db.First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return row.Token, row.Email, nil
}

// ClearCredentials removes the saved token.
func (s *Store) ClearCredentials() error {
	return s.db.Where("1 = 1").Delete(&credentialRow{}).Error
}

// DefaultPath resolves the database file path in priority order:
// 1. MATHENIQUE_DB environment variable
// 2. $XDG_DATA_HOME/mathenique/mathenique.db
// 3. ~/.local/share/mathenique/mathenique.db
func DefaultPath() (string, error) {
	if p := os.Getenv("MATHENIQUE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "mathenique", "mathenique.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

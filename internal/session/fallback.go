package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kilohertztli/Mathenique/internal/quiz"
)

// FallbackSource serves questions from Primary and falls back to Backup
// when Primary fails or is gated off. The app wires the backend as
// Primary with the embedded bank as Backup, so play keeps working when
// the network or the session token does not.
type FallbackSource struct {
	Primary Source
	Backup  Source

	// Gate, when set, disables Primary while it returns false, e.g.
	// while logged out.
	Gate func() bool

	// OnAuthExpired, when set, fires when Primary rejects the session
	// token. The fetch still falls back so play continues, but the app
	// gets a chance to drop the stale login.
	OnAuthExpired func()

	Log *slog.Logger
}

var _ Source = (*FallbackSource)(nil)

func (s *FallbackSource) Fetch(ctx context.Context, mode quiz.Mode, count int, f Filters) ([]quiz.Question, error) {
	if s.Primary != nil && (s.Gate == nil || s.Gate()) {
		qs, err := s.Primary.Fetch(ctx, mode, count, f)
		if err == nil {
			return qs, nil
		}
		if errors.Is(err, quiz.ErrAuthExpired) && s.OnAuthExpired != nil {
			s.OnAuthExpired()
		}
		if s.Log != nil {
			s.Log.Warn("question fetch failed, using offline bank", "mode", mode, "error", err)
		}
	}
	if s.Backup == nil {
		return nil, quiz.ErrSourceUnavailable
	}
	return s.Backup.Fetch(ctx, mode, count, f)
}

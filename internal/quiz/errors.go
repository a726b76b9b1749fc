package quiz

import "errors"

// Domain error taxonomy shared by the catalog, the remote client, and the
// session controller.
var (
	// ErrSourceUnavailable means a question fetch failed or produced no
	// usable items; the session does not start.
	ErrSourceUnavailable = errors.New("question source unavailable")

	// ErrAuthExpired means an authenticated call was rejected; the caller
	// must force a logout.
	ErrAuthExpired = errors.New("authentication expired")
)

package quiz

// Question is the normalized internal question shape. All sources — the
// embedded catalog and the remote API — map into this struct before a
// session ever sees a question. Immutable once fetched.
type Question struct {
	ID            int
	Question      string
	Options       []string
	CorrectAnswer int
}

// Valid reports whether the question satisfies the structural invariants:
// at least two options and a correct index inside the option range.
func (q Question) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

// Mode identifies a play mode.
type Mode string

const (
	ModeLesson     Mode = "lesson"
	ModeNormal     Mode = "normal"
	ModeMixed      Mode = "mixed"
	ModeChallenge  Mode = "challenge"
	ModeApocalypse Mode = "apocalypse"
)

// Timed reports whether the mode runs against a countdown.
func (m Mode) Timed() bool {
	return m == ModeChallenge || m == ModeApocalypse
}

// Endless reports whether the question list wraps instead of terminating
// the session on exhaustion.
func (m Mode) Endless() bool {
	return m == ModeApocalypse
}

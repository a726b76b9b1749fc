package quiz

// Points per correct answer by mode. Arena modes beyond normal pay double
// to reward playing against the clock or the full topic pool.
const (
	basePoints  = 10
	arenaPoints = 20
)

// LessonLength is the fixed question count for a journey lesson.
const LessonLength = 5

// ArenaLength is the question count for a normal/mixed/challenge game.
const ArenaLength = 10

// Points returns the score awarded for a correct answer in the given mode.
func Points(m Mode) int {
	switch m {
	case ModeLesson, ModeNormal:
		return basePoints
	default:
		return arenaPoints
	}
}

// NextStreak returns the streak length after an answer outcome: +1 on a
// correct answer, reset to zero on any miss or timeout.
func NextStreak(streak int, correct bool) int {
	if correct {
		return streak + 1
	}
	return 0
}

// Stars grades a completed 5-question lesson from its correct-answer count.
func Stars(correctCount int) int {
	switch {
	case correctCount >= LessonLength:
		return 3
	case correctCount == LessonLength-1:
		return 2
	default:
		return 1
	}
}

// StarsFromLives grades a completed run from the lives remaining, for
// modes that expose lives rather than a correct count.
func StarsFromLives(lives int) int {
	switch {
	case lives >= MaxLives:
		return 3
	case lives == MaxLives-1:
		return 2
	default:
		return 1
	}
}

// MergeStars returns the stars to persist after a replay. A grade is never
// lowered: the stored value is the max of the previous and new grades.
func MergeStars(existing, earned int) int {
	if existing > earned {
		return existing
	}
	return earned
}

package quiz

// MaxLives is the number of lives a session starts with.
const MaxLives = 3

// RegisterMiss decrements the life counter for a wrong answer or timeout,
// clamped at zero.
func RegisterMiss(lives int) int {
	if lives <= 0 {
		return 0
	}
	return lives - 1
}

// Depleted reports whether the session has run out of lives.
func Depleted(lives int) bool {
	return lives == 0
}

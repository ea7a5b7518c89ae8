package match

import (
	"math"
	"strconv"
)

// T20 innings limits.
const (
	BallsPerOver = 6
	MaxOvers     = 20
	MaxBalls     = MaxOvers * BallsPerOver
	MaxWickets   = 10

	// maxBallDigit is the highest legal tenths digit in decimal over notation.
	maxBallDigit = BallsPerOver - 1
)

// ParseOver converts decimal over notation (11.4 = 11 overs and 4 balls)
// into the number of balls bowled.
func ParseOver(over float64) (int, error) {
	if math.IsNaN(over) || math.IsInf(over, 0) || over < 0 || over > MaxOvers {
		return 0, &OverError{Over: over, Err: ErrOutOfRange}
	}
	whole := math.Floor(over)
	ball := int(math.Round((over - whole) * 10))
	if ball > maxBallDigit {
		return 0, &OverError{Over: over, Err: ErrInvalidBallNotation}
	}
	balls := int(whole)*BallsPerOver + ball
	if balls > MaxBalls {
		return 0, &OverError{Over: over, Err: ErrOversExceeded}
	}
	return balls, nil
}

// FormatOver renders a ball count back into decimal over notation.
func FormatOver(balls int) string {
	if balls < 0 {
		return ""
	}
	return strconv.Itoa(balls/BallsPerOver) + "." + strconv.Itoa(balls%BallsPerOver)
}

package services

import (
	"fmt"
	"math"

	"github.com/hucha-app/hucha-api/store"
)

// ValidateScore rejects exam scores outside [0, 10].
func ValidateScore(score float64) error {
	if math.IsNaN(score) || score < 0 || score > 10 {
		return fmt.Errorf("%w: score must be between 0 and 10", store.ErrValidation)
	}
	return nil
}

// CalculateExamReward maps an exam score to a signed allowance adjustment.
// Scores of 9 or better earn 10, the bands below shrink to 5, 0 and -5, and
// anything under 7.5 costs 10 more per full point below, capped at -50.
// Callers validate the score first; the function itself is pure.
func CalculateExamReward(score float64) float64 {
	switch {
	case score >= 9:
		return 10
	case score >= 8.5:
		return 5
	case score >= 8:
		return 0
	case score >= 7.5:
		return -5
	default:
		steps := math.Floor(7.49 - score)
		if steps < 0 {
			steps = 0
		}
		if steps > 4 {
			steps = 4
		}
		return -10 - steps*10
	}
}

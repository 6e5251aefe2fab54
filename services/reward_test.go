package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateExamReward_Bands(t *testing.T) {
	cases := []struct {
		score  float64
		reward float64
	}{
		{10, 10},
		{9.5, 10},
		{9, 10},
		{8.99, 5},
		{8.5, 5},
		{8.49, 0},
		{8, 0},
		{7.99, -5},
		{7.5, -5},
		{7.49, -10},
		{7.0, -10},
		{6.0, -20},
		{5.0, -30},
		{4.0, -40},
		{2.0, -50},
		{1.0, -50},
		{0, -50},
	}

	for _, tc := range cases {
		got := CalculateExamReward(tc.score)
		assert.Equalf(t, tc.reward, got, "score %.2f", tc.score)
	}
}

func TestValidateScore(t *testing.T) {
	for _, score := range []float64{0, 5, 10, 7.49} {
		if err := ValidateScore(score); err != nil {
			t.Errorf("ValidateScore(%v) = %v, want nil", score, err)
		}
	}
	for _, score := range []float64{-0.01, 10.01, -5, 100} {
		if err := ValidateScore(score); err == nil {
			t.Errorf("ValidateScore(%v) = nil, want error", score)
		}
	}
}

// internal/sentiment/sentiment_test.go

package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel_Bands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{-1, VeryNegative},
		{-0.6, VeryNegative},
		{-0.59, Negative},
		{-0.2, Negative},
		{-0.19, Neutral},
		{0, Neutral},
		{0.19, Neutral},
		{0.2, Positive},
		{0.59, Positive},
		{0.6, VeryPositive},
		{1, VeryPositive},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score %v", tt.score)
	}
}

func TestLabel_MonotonicOverTheScale(t *testing.T) {
	order := map[string]int{
		VeryNegative: 0,
		Negative:     1,
		Neutral:      2,
		Positive:     3,
		VeryPositive: 4,
	}

	prev := order[Label(-1)]
	for score := -1.0; score <= 1.0; score += 0.01 {
		cur := order[Label(score)]
		assert.GreaterOrEqual(t, cur, prev, "label rank dropped at score %v", score)
		prev = cur
	}
}

// internal/sentiment/sentiment.go

package sentiment

// Labels for each band of the sentiment scale.
const (
	VeryNegative = "Very Negative"
	Negative     = "Negative"
	Neutral      = "Neutral"
	Positive     = "Positive"
	VeryPositive = "Very Positive"
)

// Label maps a sentiment score in [-1, 1] to its band. Scores outside the
// range land in the outermost bands.
func Label(score float64) string {
	switch {
	case score <= -0.6:
		return VeryNegative
	case score <= -0.2:
		return Negative
	case score < 0.2:
		return Neutral
	case score < 0.6:
		return Positive
	default:
		return VeryPositive
	}
}

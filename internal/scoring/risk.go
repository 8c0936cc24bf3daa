package scoring

import "math"

// RiskLevel is the coarse bucket shown to the user.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

const (
	moderateFrom = 30
	highFrom     = 60
)

// Level buckets a 0-100 score: [0,30) Low, [30,60) Moderate, [60,100] High.
func Level(score int) RiskLevel {
	switch {
	case score < moderateFrom:
		return RiskLow
	case score < highFrom:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// ScoreOf truncates a probability to a whole percentage.
func ScoreOf(p float64) int {
	return int(math.Floor(p * 100))
}

// roundProbability keeps four decimals for the response payload.
func roundProbability(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}

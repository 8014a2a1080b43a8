package triage

import "math"

// Verification score component bounds. Each component is normalized and
// clamped independently; the total is clamped again so out-of-range
// similarity input can never escape [0,100].
const (
	descMatchFloor = 0.20
	descMatchSpan  = 0.40
	descMatchMax   = 40.0
	civicFloor     = 0.22
	civicSpan      = 0.28
	civicMax       = 30.0
	keywordUnit    = 6.0
	keywordMax     = 30.0
	verifyScoreMax = 100.0
)

// VerificationScore combines description match, civic relevance, and
// keyword quality into an integer confidence in [0,100].
func VerificationScore(descSimilarity, civicSimilarity float64, keywordCount int) int {
	descComponent := clamp((descSimilarity-descMatchFloor)/descMatchSpan*descMatchMax, 0, descMatchMax)
	civicComponent := clamp((civicSimilarity-civicFloor)/civicSpan*civicMax, 0, civicMax)
	keywordComponent := math.Min(keywordMax, keywordUnit*float64(keywordCount))

	total := math.Round(descComponent + civicComponent + keywordComponent)
	return int(clamp(total, 0, verifyScoreMax))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package difficulty estimates the next question difficulty from a
// learner's answer history.
package difficulty

const (
	MinLevel = 1
	MaxLevel = 10
)

// Policy holds the thresholds used by Estimate.
type Policy struct {
	// Base is the level adjustments are applied to.
	Base int

	// RaiseAbove raises the level when accuracy is strictly greater.
	RaiseAbove float64

	// LowerBelow lowers the level when accuracy is strictly less.
	LowerBelow float64

	// MinSample is the number of answers required before raising.
	MinSample int
}

// DefaultPolicy returns the standard thresholds.
//
// Every call starts from Base; the level does not ratchet across calls.
func DefaultPolicy() Policy {
	return Policy{
		Base:       1,
		RaiseAbove: 0.9,
		LowerBelow: 0.6,
		MinSample:  10,
	}
}

// Estimate returns the difficulty for the next question given the full
// answer history, oldest first, as correctness flags. The result is always
// in [MinLevel, MaxLevel].
func (p Policy) Estimate(history []bool) int {
	level := clamp(p.Base)
	if len(history) == 0 {
		return level
	}

	accuracy := Accuracy(history)
	switch {
	case accuracy > p.RaiseAbove && len(history) >= p.MinSample:
		level++
	case accuracy < p.LowerBelow:
		level--
	}
	return clamp(level)
}

// Accuracy returns the share of true values, or 0 for an empty history.
func Accuracy(history []bool) float64 {
	if len(history) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range history {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(history))
}

func clamp(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

package srs

import "time"

// Params defines all configurable parameters for the scheduling engine.
type Params struct {
	// IntervalHours maps a streak tier to the number of hours until the
	// next review. Tiers without an entry are terminal: no further review
	// is ever scheduled for them.
	IntervalHours map[int]int

	// BurnedStreak is the tier at which an item is considered mastered.
	// Reaching it marks the review as burned.
	BurnedStreak int

	// DoublePenaltyStreak is the tier that is demoted by two instead of
	// one on an incorrect answer ("about to burn" double penalty).
	DoublePenaltyStreak int

	// RoundingGranularity is the boundary next review times are rounded
	// up to, so that due-review queries can batch items together.
	RoundingGranularity time.Duration

	// MinAttemptsForCritical is the minimum total attempt count before a
	// review can be flagged critical. Below it the flag is always false.
	MinAttemptsForCritical int

	// CriticalityThreshold is the failure ratio (incorrect over total)
	// at or above which a review is flagged critical.
	CriticalityThreshold float64
}

// NewDefaultParams creates a new Params instance with the default schedule:
// 4h, 4h, 8h, 1d, 3d, 1w, 2w, 1M, 3M for streaks 0 through 8, burned at 9.
func NewDefaultParams() *Params {
	return &Params{
		IntervalHours: map[int]int{
			0: 4,
			1: 4,
			2: 8,
			3: 24,
			4: 72,
			5: 168,
			6: 336,
			7: 720,
			8: 2160,
		},
		BurnedStreak:           9,
		DoublePenaltyStreak:    7,
		RoundingGranularity:    time.Hour,
		MinAttemptsForCritical: 4,
		CriticalityThreshold:   0.75,
	}
}

package srs

import "github.com/kaniwani/kw-api/internal/domain"

// stageStreaks maps each remote SRS stage grouping to the local streak
// tiers it covers. Used by the profile review-inclusion thresholds to
// translate a named stage into a streak range.
var stageStreaks = map[domain.WKStage][]int{
	domain.WKStageApprentice:  {1, 2, 3, 4},
	domain.WKStageGuru:        {5, 6},
	domain.WKStageMaster:      {7},
	domain.WKStageEnlightened: {8},
	domain.WKStageBurned:      {9},
}

// MinStreakForStage returns the lowest streak tier covered by the stage.
// Unknown stages map to the lesson tier.
func MinStreakForStage(stage domain.WKStage) int {
	streaks, ok := stageStreaks[stage]
	if !ok {
		return 0
	}
	return streaks[0]
}

// MaxStreakForStage returns the highest streak tier covered by the stage.
func MaxStreakForStage(stage domain.WKStage) int {
	streaks, ok := stageStreaks[stage]
	if !ok {
		return 0
	}
	return streaks[len(streaks)-1]
}

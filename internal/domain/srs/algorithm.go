package srs

import (
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
)

// answerCorrect computes the next state of a review after a correct answer.
//
// Completing a lesson (streak 0) promotes to streak 1 unconditionally; a
// lesson does not require a first-attempt answer. For items past the lesson
// tier only a first-attempt correct answer increments the counters and the
// streak; reaching the burned tier marks the review burned.
//
// Regardless of the branch taken the review is no longer due, the study
// timestamp moves to now, the next review time is recomputed from the
// interval table and the criticality flag is re-derived.
func answerCorrect(
	review *domain.Review,
	firstAttempt bool,
	now time.Time,
	params *Params,
) *domain.Review {
	next := review.Clone()

	if next.Streak == 0 {
		next.Streak = 1
	} else if firstAttempt {
		next.Correct++
		next.Streak++
		if next.Streak >= params.BurnedStreak {
			next.Burned = true
		}
	}

	next.NeedsReview = false
	next.LastStudied = &now
	next.NextReviewDate = nextReviewTime(next.Streak, now, params)
	next.Critical = isCritical(next.Correct, next.Incorrect, params)
	next.UpdatedAt = now

	return next
}

// answerIncorrect computes the next state of a review after an incorrect
// answer. The streak at the double-penalty tier drops by two, tiers above
// the review floor drop by one, and the result is clamped at zero.
//
// The next review date is deliberately not recomputed here: demotion
// affects the streak, but scheduling happens only on the correct-answer
// path, matching the provider's lesson/quiz flow.
func answerIncorrect(review *domain.Review, now time.Time, params *Params) *domain.Review {
	next := review.Clone()

	next.Incorrect++

	if next.Streak == params.DoublePenaltyStreak {
		next.Streak -= 2
	} else if next.Streak > 1 {
		next.Streak--
	}
	if next.Streak < 0 {
		next.Streak = 0
	}

	next.Critical = isCritical(next.Correct, next.Incorrect, params)
	next.UpdatedAt = now

	return next
}

// reset returns the review to the lowest review tier, not the lesson tier.
// It is an explicit user action: counters are reset, the burn is undone and
// the item becomes immediately due.
func reset(review *domain.Review, now time.Time) *domain.Review {
	next := review.Clone()

	next.Streak = 1
	next.Correct = 1
	next.Incorrect = 0
	next.Burned = false
	next.NeedsReview = true
	next.LastStudied = nil
	next.NextReviewDate = &now
	next.UpdatedAt = now

	return next
}

// bringOutOfVacation shifts the review's timeline forward by the vacation
// duration so that the schedule resumes where it left off.
func bringOutOfVacation(
	review *domain.Review,
	duration time.Duration,
	now time.Time,
	params *Params,
) *domain.Review {
	next := review.Clone()

	if next.LastStudied != nil {
		shifted := next.LastStudied.Add(duration)
		next.LastStudied = &shifted
		next.NextReviewDate = nextReviewTime(next.Streak, shifted, params)
	} else if _, ok := params.IntervalHours[next.Streak]; !ok {
		next.NextReviewDate = nil
	}

	next.UpdatedAt = now

	return next
}

// nextReviewTime is the pure scheduling function: given a streak and the
// time the item was last studied, it returns when the item is next due.
// Streaks without a table entry are terminal and yield nil.
//
// The result is rounded up to the next boundary of the configured
// granularity so due-review queries can batch items scheduled together.
func nextReviewTime(streak int, lastStudied time.Time, params *Params) *time.Time {
	hours, ok := params.IntervalHours[streak]
	if !ok {
		return nil
	}

	due := roundUp(lastStudied.Add(time.Duration(hours)*time.Hour), params.RoundingGranularity)
	return &due
}

// roundUp rounds t up to the next multiple of granularity.
// A t already on a boundary is moved to the following one, matching the
// original schedule's "always in the future" rounding.
func roundUp(t time.Time, granularity time.Duration) time.Time {
	if granularity <= 0 {
		return t
	}
	return t.Truncate(granularity).Add(granularity)
}

// isCritical derives the criticality flag from the attempt counters.
// With fewer than the minimum attempts it is always false, which guards the
// division and avoids flagging a single early miss.
func isCritical(correct, incorrect int, params *Params) bool {
	total := correct + incorrect
	if total < params.MinAttemptsForCritical {
		return false
	}
	return float64(incorrect)/float64(total) >= params.CriticalityThreshold
}

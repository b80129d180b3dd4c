package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReview(t *testing.T, streak, correct, incorrect int) *domain.Review {
	t.Helper()
	review, err := domain.NewReview(uuid.New(), uuid.New())
	require.NoError(t, err, "Failed to create review")
	review.Streak = streak
	review.Correct = correct
	review.Incorrect = incorrect
	return review
}

func TestAnswerCorrect(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	testCases := []struct {
		name          string
		streak        int
		correct       int
		firstAttempt  bool
		expectStreak  int
		expectCorrect int
		expectBurned  bool
	}{
		{
			name:          "lesson completion promotes without counting",
			streak:        0,
			correct:       0,
			firstAttempt:  true,
			expectStreak:  1,
			expectCorrect: 0,
		},
		{
			name:          "lesson completion ignores the first-attempt flag",
			streak:        0,
			correct:       0,
			firstAttempt:  false,
			expectStreak:  1,
			expectCorrect: 0,
		},
		{
			name:          "first-attempt correct promotes and counts",
			streak:        3,
			correct:       10,
			firstAttempt:  true,
			expectStreak:  4,
			expectCorrect: 11,
		},
		{
			name:          "retry correct reschedules without promoting",
			streak:        3,
			correct:       10,
			firstAttempt:  false,
			expectStreak:  3,
			expectCorrect: 10,
		},
		{
			name:          "reaching the top tier burns the item",
			streak:        8,
			correct:       20,
			firstAttempt:  true,
			expectStreak:  9,
			expectCorrect: 21,
			expectBurned:  true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			review := newTestReview(t, tc.streak, tc.correct, 0)

			next := answerCorrect(review, tc.firstAttempt, now, params)

			assert.Equal(t, tc.expectStreak, next.Streak)
			assert.Equal(t, tc.expectCorrect, next.Correct)
			assert.Equal(t, tc.expectBurned, next.Burned)
			assert.False(t, next.NeedsReview, "answered item must not stay due")
			require.NotNil(t, next.LastStudied)
			assert.Equal(t, now, *next.LastStudied)

			if tc.expectBurned {
				assert.Nil(t, next.NextReviewDate, "burned item must not be rescheduled")
			} else {
				require.NotNil(t, next.NextReviewDate)
				assert.True(t, next.NextReviewDate.After(now),
					"next review must be in the future")
			}

			// Input must be untouched.
			assert.Equal(t, tc.streak, review.Streak)
			assert.Equal(t, tc.correct, review.Correct)
		})
	}
}

func TestAnswerIncorrect(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Now().UTC()

	testCases := []struct {
		name         string
		streak       int
		expectStreak int
	}{
		{name: "double penalty at the about-to-burn tier", streak: 7, expectStreak: 5},
		{name: "single demotion above the floor", streak: 4, expectStreak: 3},
		{name: "lowest review tier does not demote", streak: 1, expectStreak: 1},
		{name: "lesson tier stays put", streak: 0, expectStreak: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			review := newTestReview(t, tc.streak, 5, 0)
			before := review.NextReviewDate

			next := answerIncorrect(review, now, params)

			assert.Equal(t, tc.expectStreak, next.Streak)
			assert.Equal(t, 1, next.Incorrect)
			assert.Equal(t, 5, next.Correct, "correct counter must not change")
			assert.Equal(t, before, next.NextReviewDate,
				"incorrect answers must not reschedule")
		})
	}
}

func TestAnswerIncorrectStreakNeverNegative(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	params.DoublePenaltyStreak = 1

	review := newTestReview(t, 1, 0, 0)
	next := answerIncorrect(review, time.Now().UTC(), params)

	assert.Equal(t, 0, next.Streak, "streak must clamp at zero")
}

func TestReset(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	review := newTestReview(t, 9, 42, 17)
	review.Burned = true
	review.NeedsReview = false

	next := reset(review, now)

	assert.Equal(t, 1, next.Streak)
	assert.Equal(t, 1, next.Correct)
	assert.Equal(t, 0, next.Incorrect)
	assert.False(t, next.Burned, "reset must undo the burn")
	assert.True(t, next.NeedsReview, "reset item must be immediately due")
	assert.Nil(t, next.LastStudied)
	require.NotNil(t, next.NextReviewDate)
	assert.Equal(t, now, *next.NextReviewDate)
}

func TestNextReviewTime(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	studied := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		streak int
		expect *time.Time
	}{
		{
			name:   "lowest review tier is four hours out",
			streak: 1,
			expect: timePtr(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)),
		},
		{
			name:   "mid tier uses the table",
			streak: 3,
			expect: timePtr(time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)),
		},
		{
			name:   "burned tier is terminal",
			streak: 9,
			expect: nil,
		},
		{
			name:   "unknown tier is terminal",
			streak: 42,
			expect: nil,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := nextReviewTime(tc.streak, studied, params)
			if tc.expect == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.expect, *got)
		})
	}
}

func TestNextReviewTimeDeterministic(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	studied := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	first := nextReviewTime(4, studied, params)
	second := nextReviewTime(4, studied, params)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second, "same inputs must schedule identically")
}

func TestRoundUp(t *testing.T) {
	t.Parallel()

	onBoundary := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rounded := roundUp(onBoundary, time.Hour)
	assert.Equal(t, onBoundary.Add(time.Hour), rounded,
		"a boundary time rounds to the following boundary")

	within := time.Date(2026, 3, 14, 10, 0, 0, 1, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
		roundUp(within, time.Hour))

	assert.Equal(t, within, roundUp(within, 0),
		"zero granularity disables rounding")
}

func TestIsCritical(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name      string
		correct   int
		incorrect int
		expect    bool
	}{
		{name: "too few attempts never critical", correct: 0, incorrect: 3, expect: false},
		{name: "zero attempts never critical", correct: 0, incorrect: 0, expect: false},
		{name: "ratio at threshold is critical", correct: 1, incorrect: 3, expect: true},
		{name: "ratio below threshold is not", correct: 2, incorrect: 2, expect: false},
		{name: "all incorrect is critical", correct: 0, incorrect: 4, expect: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, isCritical(tc.correct, tc.incorrect, params))
		})
	}
}

func TestBringOutOfVacation(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Now().UTC()

	studied := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	review := newTestReview(t, 3, 5, 0)
	review.LastStudied = &studied

	vacation := 14 * 24 * time.Hour
	next := bringOutOfVacation(review, vacation, now, params)

	require.NotNil(t, next.LastStudied)
	assert.Equal(t, studied.Add(vacation), *next.LastStudied)
	require.NotNil(t, next.NextReviewDate)
	assert.Equal(t, *nextReviewTime(3, studied.Add(vacation), params), *next.NextReviewDate)
}

func TestBringOutOfVacationNeverStudied(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Now().UTC()

	review := newTestReview(t, 0, 0, 0)
	review.LastStudied = nil
	before := *review.NextReviewDate

	next := bringOutOfVacation(review, time.Hour, now, params)

	assert.Nil(t, next.LastStudied)
	require.NotNil(t, next.NextReviewDate)
	assert.Equal(t, before, *next.NextReviewDate,
		"an unstudied item keeps its seed due date")
}

func timePtr(t time.Time) *time.Time {
	return &t
}

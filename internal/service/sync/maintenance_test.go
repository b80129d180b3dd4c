package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDueReviews(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)

	var gotUserID *uuid.UUID
	f.reviews.MarkDueReviewsFn = func(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
		gotUserID = userID
		return 7, nil
	}

	flagged, err := f.syncer.FlagDueReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), flagged)
	assert.Nil(t, gotUserID, "the periodic run covers all users")
}

func TestReturnFromVacation(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	vacationStart := time.Now().UTC().Add(-72 * time.Hour)
	profile.OnVacation = true
	profile.VacationDate = &vacationStart

	studied := vacationStart.Add(-24 * time.Hour)
	review, err := domain.NewReview(profile.UserID, uuid.New())
	require.NoError(t, err)
	review.Streak = 3
	review.LastStudied = &studied

	f.reviews.ListByUserFn = func(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
		return []*domain.Review{review}, nil
	}

	var flaggedUserID *uuid.UUID
	f.reviews.MarkDueReviewsFn = func(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
		flaggedUserID = userID
		return 1, nil
	}

	err = f.syncer.ReturnFromVacation(context.Background(), profile)
	require.NoError(t, err)

	assert.False(t, profile.OnVacation)
	assert.Nil(t, profile.VacationDate)

	require.Len(t, f.reviews.UpdatedReviews, 1)
	shifted := f.reviews.UpdatedReviews[0]
	require.NotNil(t, shifted.LastStudied)
	assert.True(t, shifted.LastStudied.After(studied),
		"the schedule shifts forward by the vacation duration")

	require.NotNil(t, flaggedUserID)
	assert.Equal(t, profile.UserID, *flaggedUserID,
		"due flagging after a vacation return covers only this user")
}

func TestReturnFromVacationNotOnVacation(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	err := f.syncer.ReturnFromVacation(context.Background(), profile)
	assert.ErrorIs(t, err, ErrNotOnVacation)
}

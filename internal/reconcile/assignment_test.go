package reconcile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReview(t *testing.T) *domain.Review {
	t.Helper()
	review, err := domain.NewReview(uuid.New(), uuid.New())
	require.NoError(t, err)
	return review
}

func TestAssignmentOutOfDate(t *testing.T) {
	t.Parallel()
	stamp := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	assignment := &wanikani.AssignmentSnapshot{DataUpdatedAt: stamp}

	fresh := newTestReview(t)
	assert.True(t, AssignmentOutOfDate(fresh, assignment),
		"a review without an assignment stamp is always out of date")

	synced := newTestReview(t)
	synced.WKAssignmentLastModified = &stamp
	assert.False(t, AssignmentOutOfDate(synced, assignment))

	older := stamp.Add(-time.Minute)
	stale := newTestReview(t)
	stale.WKAssignmentLastModified = &older
	assert.True(t, AssignmentOutOfDate(stale, assignment))
}

func TestAssignmentMirrorsMetadataOnly(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	stamp := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	burnedAt := stamp.Add(-24 * time.Hour)

	review := newTestReview(t)
	review.Streak = 4
	review.Correct = 12
	review.Incorrect = 3

	assignment := &wanikani.AssignmentSnapshot{
		SubjectID:     1000,
		SRSStage:      9,
		SRSStageName:  "burned",
		BurnedAt:      &burnedAt,
		DataUpdatedAt: stamp,
	}

	next := Assignment(review, assignment, now)

	assert.Equal(t, "burned", next.WanikaniSRS)
	assert.Equal(t, 9, next.WanikaniSRSNumeric)
	assert.True(t, next.WanikaniBurned)
	require.NotNil(t, next.WKAssignmentLastModified)
	assert.Equal(t, stamp, *next.WKAssignmentLastModified)

	// The local SRS state is owned by the scheduling engine; mirroring
	// the remote stage must never leak into it.
	assert.Equal(t, 4, next.Streak)
	assert.Equal(t, 12, next.Correct)
	assert.Equal(t, 3, next.Incorrect)
	assert.False(t, next.Burned)

	// Immutable update: the input keeps its old stamp.
	assert.Nil(t, review.WKAssignmentLastModified)
}

func TestAssignmentNotBurnedRemotely(t *testing.T) {
	t.Parallel()

	review := newTestReview(t)
	assignment := &wanikani.AssignmentSnapshot{
		SRSStage:      5,
		SRSStageName:  "guru_1",
		DataUpdatedAt: time.Now().UTC(),
	}

	next := Assignment(review, assignment, time.Now().UTC())
	assert.False(t, next.WanikaniBurned)
}

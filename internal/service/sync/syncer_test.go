package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/domain/srs"
	"github.com/kaniwani/kw-api/internal/mocks"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	profiles *mocks.MockProfileStore
	vocab    *mocks.MockVocabularyStore
	reviews  *mocks.MockReviewStore
	client   *mocks.MockWanikaniClient
	syncer   *Syncer
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		profiles: &mocks.MockProfileStore{},
		vocab:    &mocks.MockVocabularyStore{},
		reviews:  &mocks.MockReviewStore{},
		client:   &mocks.MockWanikaniClient{},
	}
	f.syncer = NewSyncer(
		f.profiles,
		f.vocab,
		f.reviews,
		func(apiKey string) wanikani.Client { return f.client },
		srs.NewDefaultService(),
		nil,
	)
	return f
}

func newTestProfile(t *testing.T) *domain.Profile {
	t.Helper()
	profile, err := domain.NewProfile(uuid.New(), "koichi", "test-api-key")
	require.NoError(t, err)
	profile.Level = 5
	profile.UnlockedLevels = []int{1, 2, 3, 4, 5}
	return profile
}

func profileSnapshot(level int) *wanikani.ProfileSnapshot {
	return &wanikani.ProfileSnapshot{
		Username:      "koichi",
		Level:         level,
		StartedAt:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DataUpdatedAt: time.Now().UTC(),
	}
}

func TestSyncProfileInvalidCredential(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return nil, wanikani.ErrInvalidCredential
	}

	assignmentsCalled := false
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		assignmentsCalled = true
		return &mocks.AssignmentSeq{}
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.False(t, result.ProfileSynced)
	assert.Zero(t, result.NewReviews)
	assert.False(t, assignmentsCalled,
		"a rejected key must stop all remote work for the profile")

	require.Len(t, f.profiles.UpdatedProfiles, 1)
	assert.False(t, f.profiles.UpdatedProfiles[0].APIValid,
		"the invalid credential must be persisted")
}

func TestSyncProfileRevalidatesCredential(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)
	profile.APIValid = false

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced)
	assert.True(t, profile.APIValid,
		"a successful profile sync revalidates the credential")
	require.NotNil(t, profile.LastSyncedAt)
	require.NotNil(t, profile.JoinedAt)
}

func TestSyncProfileLevelUpUnlocksLevel(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(6), nil
	}

	f.syncer.SyncProfile(context.Background(), profile, false)

	assert.Equal(t, 6, profile.Level)
	assert.True(t, profile.HasUnlocked(6),
		"a follow-me profile unlocks the new level on level-up")
}

func TestSyncProfileOptOutDoesNotUnlock(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)
	profile.FollowMe = false

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(6), nil
	}

	f.syncer.SyncProfile(context.Background(), profile, false)

	assert.Equal(t, 5, profile.Level,
		"an opt-out profile keeps its stored level")
	assert.False(t, profile.HasUnlocked(6),
		"an opt-out profile does not unlock levels automatically")
}

func TestSyncFollowMeCreatesReviews(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	stamp := time.Now().UTC()
	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		assert.Equal(t, []string{wanikani.SubjectTypeVocabulary}, filter.SubjectTypes)
		assert.Equal(t, []int{3, 4, 5}, filter.Levels,
			"an incremental pass covers the recent unlocked levels")
		assert.True(t, filter.FetchAll,
			"an incremental pass still drains every page of its levels")
		return &mocks.AssignmentSeq{Items: []*wanikani.AssignmentSnapshot{
			{SubjectID: 100, SRSStage: 5, SRSStageName: "guru_1", DataUpdatedAt: stamp},
			{SubjectID: 200, SRSStage: 2, SRSStageName: "apprentice_2", DataUpdatedAt: stamp},
		}}
	}

	vocabByID := map[int64]*domain.Vocabulary{}
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		if v, ok := vocabByID[subjectID]; ok {
			return v, nil
		}
		v, err := domain.NewVocabulary(subjectID, "meaning")
		require.NoError(t, err)
		vocabByID[subjectID] = v
		return v, nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced)
	assert.Equal(t, 2, result.NewReviews)

	require.Len(t, f.reviews.UpdatedReviews, 2,
		"new reviews get the assignment metadata mirrored")
	assert.Equal(t, "guru_1", f.reviews.UpdatedReviews[0].WanikaniSRS)
	assert.Equal(t, 5, f.reviews.UpdatedReviews[0].WanikaniSRSNumeric)
}

func TestSyncExistingReviewsDoNotCount(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		return &mocks.AssignmentSeq{Items: []*wanikani.AssignmentSnapshot{
			{SubjectID: 100, SRSStage: 5, DataUpdatedAt: time.Now().UTC()},
		}}
	}

	vocab, err := domain.NewVocabulary(100, "meaning")
	require.NoError(t, err)
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		return vocab, nil
	}
	f.reviews.GetOrCreateFn = func(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, bool, error) {
		review, err := domain.NewReview(userID, vocabularyID)
		require.NoError(t, err)
		return review, false, nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.Zero(t, result.NewReviews,
		"only actually-created reviews count, exactly once")
}

func TestSyncFullPassFetchesEverything(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}

	var gotFilter wanikani.AssignmentFilter
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		gotFilter = filter
		return &mocks.AssignmentSeq{}
	}

	result := f.syncer.SyncProfile(context.Background(), profile, true)

	assert.True(t, result.ProfileSynced)
	assert.True(t, gotFilter.FetchAll, "a full pass drains every page")
	assert.Empty(t, gotFilter.Levels, "a full pass is not restricted by level")
}

func TestSyncUnknownVocabularySkipped(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		return &mocks.AssignmentSeq{Items: []*wanikani.AssignmentSnapshot{
			{SubjectID: 999, DataUpdatedAt: time.Now().UTC()},
		}}
	}
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		return nil, store.ErrVocabularyNotFound
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced, "a catalog gap never fails the pass")
	assert.Zero(t, result.NewReviews)
}

func TestSyncDuplicateReviewsAreNoOp(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	stamp := time.Now().UTC()
	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		return &mocks.AssignmentSeq{Items: []*wanikani.AssignmentSnapshot{
			{SubjectID: 100, DataUpdatedAt: stamp},
			{SubjectID: 200, DataUpdatedAt: stamp},
		}}
	}

	vocabByID := map[int64]*domain.Vocabulary{}
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		if v, ok := vocabByID[subjectID]; ok {
			return v, nil
		}
		v, err := domain.NewVocabulary(subjectID, "meaning")
		require.NoError(t, err)
		vocabByID[subjectID] = v
		return v, nil
	}

	listedOffenders := false
	f.reviews.GetOrCreateFn = func(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, bool, error) {
		if vocabularyID == vocabByID[100].ID {
			return nil, false, store.ErrIntegrityViolation
		}
		review, err := domain.NewReview(userID, vocabularyID)
		require.NoError(t, err)
		return review, true, nil
	}
	f.reviews.ListByUserAndVocabularyFn = func(ctx context.Context, userID, vocabularyID uuid.UUID) ([]*domain.Review, error) {
		listedOffenders = true
		a, _ := domain.NewReview(userID, vocabularyID)
		b, _ := domain.NewReview(userID, vocabularyID)
		return []*domain.Review{a, b}, nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced)
	assert.Equal(t, 1, result.NewReviews,
		"the duplicate item is a no-op; the rest of the batch continues")
	assert.True(t, listedOffenders, "every offending row must be listed")
}

func TestSyncMidBatchInvalidCredentialStopsPass(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		return &mocks.AssignmentSeq{
			Items: []*wanikani.AssignmentSnapshot{
				{SubjectID: 100, DataUpdatedAt: time.Now().UTC()},
			},
			Err: wanikani.ErrInvalidCredential,
		}
	}

	vocab, err := domain.NewVocabulary(100, "meaning")
	require.NoError(t, err)
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		return vocab, nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced)
	assert.Equal(t, 1, result.NewReviews,
		"items processed before the rejection still count")
	assert.False(t, profile.APIValid,
		"a mid-batch rejection invalidates the credential")
}

func TestSyncPerItemErrorsDoNotFailPass(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	stamp := time.Now().UTC()
	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		return &mocks.AssignmentSeq{Items: []*wanikani.AssignmentSnapshot{
			{SubjectID: 100, DataUpdatedAt: stamp},
			{SubjectID: 200, DataUpdatedAt: stamp},
		}}
	}

	vocabByID := map[int64]*domain.Vocabulary{}
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		if subjectID == 100 {
			return nil, errors.New("connection reset")
		}
		if v, ok := vocabByID[subjectID]; ok {
			return v, nil
		}
		v, err := domain.NewVocabulary(subjectID, "meaning")
		require.NoError(t, err)
		vocabByID[subjectID] = v
		return v, nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced)
	assert.Equal(t, 1, result.NewReviews,
		"a transient item failure contributes zero and the batch continues")
}

func TestSyncOptOutMergesNotesOnly(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)
	profile.FollowMe = false

	stamp := time.Now().UTC()
	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}

	assignmentsCalled := false
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		assignmentsCalled = true
		return &mocks.AssignmentSeq{}
	}
	f.client.StudyMaterialsFn = func(ctx context.Context, subjectIDs []int64) wanikani.StudyMaterialSeq {
		return &mocks.StudyMaterialSeq{Items: []*wanikani.StudyMaterialSnapshot{
			{
				SubjectID:       100,
				MeaningNote:     "remote note",
				MeaningSynonyms: []string{"alt"},
				DataUpdatedAt:   stamp,
			},
			{SubjectID: 999, DataUpdatedAt: stamp},
		}}
	}

	vocab, err := domain.NewVocabulary(100, "meaning")
	require.NoError(t, err)
	f.vocab.GetBySubjectIDFn = func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
		if subjectID == 100 {
			return vocab, nil
		}
		return nil, store.ErrVocabularyNotFound
	}

	existing, err := domain.NewReview(profile.UserID, vocab.ID)
	require.NoError(t, err)
	f.reviews.GetFn = func(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, error) {
		return existing, nil
	}

	var replacedSynonyms []string
	f.reviews.ReplaceMeaningSynonymsFn = func(ctx context.Context, reviewID uuid.UUID, texts []string) error {
		replacedSynonyms = texts
		return nil
	}

	result := f.syncer.SyncProfile(context.Background(), profile, false)

	assert.True(t, result.ProfileSynced)
	assert.Zero(t, result.NewReviews, "the opt-out strategy never creates reviews")
	assert.False(t, assignmentsCalled, "the opt-out strategy never fetches assignments")

	require.Len(t, f.reviews.UpdatedReviews, 1)
	assert.Equal(t, "remote note", f.reviews.UpdatedReviews[0].MeaningNote)
	assert.Equal(t, []string{"alt"}, replacedSynonyms)
}

func TestSyncUserLoadsProfile(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)
	profile := newTestProfile(t)

	f.profiles.GetByUserIDFn = func(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
		require.Equal(t, profile.UserID, userID)
		return profile, nil
	}
	f.client.UserInformationFn = func(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
		return profileSnapshot(5), nil
	}
	f.client.AssignmentsFn = func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
		return &mocks.AssignmentSeq{}
	}

	result, err := f.syncer.SyncUser(context.Background(), profile.UserID, false)
	require.NoError(t, err)
	assert.True(t, result.ProfileSynced)
}

func TestSyncUserUnknownProfile(t *testing.T) {
	t.Parallel()
	f := newSyncFixture(t)

	_, err := f.syncer.SyncUser(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

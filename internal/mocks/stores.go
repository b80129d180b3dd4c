package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/store"
)

// MockProfileStore implements store.ProfileStore for testing.
type MockProfileStore struct {
	CreateFn           func(ctx context.Context, profile *domain.Profile) error
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByUserIDFn      func(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpdateFn           func(ctx context.Context, profile *domain.Profile) error
	ListSyncEligibleFn func(ctx context.Context) ([]*domain.Profile, error)

	// UpdatedProfiles records every profile passed to Update, for
	// verifying what a sync pass persisted.
	UpdatedProfiles []*domain.Profile
}

var _ store.ProfileStore = (*MockProfileStore)(nil)

func (m *MockProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, profile)
	}
	return nil
}

func (m *MockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrProfileNotFound
}

func (m *MockProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, store.ErrProfileNotFound
}

func (m *MockProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	m.UpdatedProfiles = append(m.UpdatedProfiles, profile)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, profile)
	}
	return nil
}

func (m *MockProfileStore) ListSyncEligible(ctx context.Context) ([]*domain.Profile, error) {
	if m.ListSyncEligibleFn != nil {
		return m.ListSyncEligibleFn(ctx)
	}
	return nil, nil
}

func (m *MockProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return m
}

// MockVocabularyStore implements store.VocabularyStore for testing.
type MockVocabularyStore struct {
	CreateFn               func(ctx context.Context, vocab *domain.Vocabulary) error
	GetBySubjectIDFn       func(ctx context.Context, subjectID int64) (*domain.Vocabulary, error)
	UpdateFn               func(ctx context.Context, vocab *domain.Vocabulary) error
	AddReadingFn           func(ctx context.Context, reading *domain.Reading) error
	DeleteReadingsFn       func(ctx context.Context, ids []uuid.UUID) error
	ReplacePartsOfSpeechFn func(ctx context.Context, vocabularyID uuid.UUID, parts []string) error
}

var _ store.VocabularyStore = (*MockVocabularyStore)(nil)

func (m *MockVocabularyStore) Create(ctx context.Context, vocab *domain.Vocabulary) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, vocab)
	}
	return nil
}

func (m *MockVocabularyStore) GetBySubjectID(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
	if m.GetBySubjectIDFn != nil {
		return m.GetBySubjectIDFn(ctx, subjectID)
	}
	return nil, store.ErrVocabularyNotFound
}

func (m *MockVocabularyStore) Update(ctx context.Context, vocab *domain.Vocabulary) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, vocab)
	}
	return nil
}

func (m *MockVocabularyStore) AddReading(ctx context.Context, reading *domain.Reading) error {
	if m.AddReadingFn != nil {
		return m.AddReadingFn(ctx, reading)
	}
	return nil
}

func (m *MockVocabularyStore) DeleteReadings(ctx context.Context, ids []uuid.UUID) error {
	if m.DeleteReadingsFn != nil {
		return m.DeleteReadingsFn(ctx, ids)
	}
	return nil
}

func (m *MockVocabularyStore) ReplacePartsOfSpeech(
	ctx context.Context,
	vocabularyID uuid.UUID,
	parts []string,
) error {
	if m.ReplacePartsOfSpeechFn != nil {
		return m.ReplacePartsOfSpeechFn(ctx, vocabularyID, parts)
	}
	return nil
}

func (m *MockVocabularyStore) WithTx(tx *sql.Tx) store.VocabularyStore {
	return m
}

// MockReviewStore implements store.ReviewStore for testing.
type MockReviewStore struct {
	GetOrCreateFn             func(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, bool, error)
	GetFn                     func(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, error)
	ListByUserAndVocabularyFn func(ctx context.Context, userID, vocabularyID uuid.UUID) ([]*domain.Review, error)
	ListByUserFn              func(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error)
	UpdateFn                  func(ctx context.Context, review *domain.Review) error
	ReplaceMeaningSynonymsFn  func(ctx context.Context, reviewID uuid.UUID, texts []string) error
	AddAnswerSynonymFn        func(ctx context.Context, reviewID uuid.UUID, character, kana string) (*domain.AnswerSynonym, bool, error)
	DeleteAnswerSynonymFn     func(ctx context.Context, synonymID uuid.UUID) error
	MarkDueReviewsFn          func(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error)

	// UpdatedReviews records every review passed to Update, for
	// verifying what a sync pass persisted.
	UpdatedReviews []*domain.Review
}

var _ store.ReviewStore = (*MockReviewStore)(nil)

func (m *MockReviewStore) GetOrCreate(
	ctx context.Context,
	userID, vocabularyID uuid.UUID,
) (*domain.Review, bool, error) {
	if m.GetOrCreateFn != nil {
		return m.GetOrCreateFn(ctx, userID, vocabularyID)
	}
	review, err := domain.NewReview(userID, vocabularyID)
	if err != nil {
		return nil, false, err
	}
	return review, true, nil
}

func (m *MockReviewStore) Get(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, vocabularyID)
	}
	return nil, store.ErrReviewNotFound
}

func (m *MockReviewStore) ListByUserAndVocabulary(
	ctx context.Context,
	userID, vocabularyID uuid.UUID,
) ([]*domain.Review, error) {
	if m.ListByUserAndVocabularyFn != nil {
		return m.ListByUserAndVocabularyFn(ctx, userID, vocabularyID)
	}
	return nil, nil
}

func (m *MockReviewStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockReviewStore) Update(ctx context.Context, review *domain.Review) error {
	m.UpdatedReviews = append(m.UpdatedReviews, review)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, review)
	}
	return nil
}

func (m *MockReviewStore) ReplaceMeaningSynonyms(
	ctx context.Context,
	reviewID uuid.UUID,
	texts []string,
) error {
	if m.ReplaceMeaningSynonymsFn != nil {
		return m.ReplaceMeaningSynonymsFn(ctx, reviewID, texts)
	}
	return nil
}

func (m *MockReviewStore) AddAnswerSynonym(
	ctx context.Context,
	reviewID uuid.UUID,
	character, kana string,
) (*domain.AnswerSynonym, bool, error) {
	if m.AddAnswerSynonymFn != nil {
		return m.AddAnswerSynonymFn(ctx, reviewID, character, kana)
	}
	return &domain.AnswerSynonym{
		ID:        uuid.New(),
		ReviewID:  reviewID,
		Character: character,
		Kana:      kana,
	}, true, nil
}

func (m *MockReviewStore) DeleteAnswerSynonym(ctx context.Context, synonymID uuid.UUID) error {
	if m.DeleteAnswerSynonymFn != nil {
		return m.DeleteAnswerSynonymFn(ctx, synonymID)
	}
	return nil
}

func (m *MockReviewStore) MarkDueReviews(
	ctx context.Context,
	userID *uuid.UUID,
	now time.Time,
) (int64, error) {
	if m.MarkDueReviewsFn != nil {
		return m.MarkDueReviewsFn(ctx, userID, now)
	}
	return 0, nil
}

func (m *MockReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return m
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review-specific validation errors
var (
	ErrEmptyReviewID         = errors.New("review ID cannot be empty")
	ErrEmptyReviewUserID     = errors.New("review user ID cannot be empty")
	ErrEmptyReviewVocabulary = errors.New("review vocabulary ID cannot be empty")
)

// Review tracks a single user's spaced repetition state for a single
// vocabulary item. The streak encodes the proficiency tier: 0 is an
// unreviewed lesson, ascending values are ascending tiers, and the burned
// tier is terminal (no further reviews are scheduled).
//
// Invariant: exactly one Review exists per (user, vocabulary) pair. A
// violation is a data-integrity fault and is never silently resolved.
//
// A Review is created the first time a user's remote assignment references
// a vocabulary the system already has, and is never deleted by the engine.
type Review struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	VocabularyID uuid.UUID `json:"vocabulary_id"`

	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Streak    int `json:"streak"`

	LastStudied *time.Time `json:"last_studied,omitempty"`

	// NextReviewDate is nil when the item is no longer scheduled,
	// e.g. after burning.
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`

	NeedsReview bool `json:"needs_review"`
	Burned      bool `json:"burned"`

	// Critical is derived from the correct/incorrect counters and is
	// recomputed after every mutation, never set independently.
	Critical bool `json:"critical"`

	Hidden bool `json:"hidden"`

	Notes       string `json:"notes"`
	MeaningNote string `json:"meaning_note"`
	ReadingNote string `json:"reading_note"`

	// Mirror fields for the remote provider's own SRS progress. These are
	// metadata only and never feed back into the local streak.
	WanikaniSRS        string `json:"wanikani_srs"`
	WanikaniSRSNumeric int    `json:"wanikani_srs_numeric"`
	WanikaniBurned     bool   `json:"wanikani_burned"`

	WKAssignmentLastModified     *time.Time `json:"wk_assignment_last_modified,omitempty"`
	WKStudyMaterialsLastModified *time.Time `json:"wk_study_materials_last_modified,omitempty"`

	MeaningSynonyms []MeaningSynonym `json:"meaning_synonyms,omitempty"`
	ReadingSynonyms []AnswerSynonym  `json:"reading_synonyms,omitempty"`

	UnlockDate time.Time `json:"unlock_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewReview creates a Review associating the user with a vocabulary item.
// New reviews are seeded as immediately due: the next review date is now
// and the item is flagged as needing review.
func NewReview(userID, vocabularyID uuid.UUID) (*Review, error) {
	now := time.Now().UTC()
	review := &Review{
		ID:             uuid.New(),
		UserID:         userID,
		VocabularyID:   vocabularyID,
		NeedsReview:    true,
		NextReviewDate: &now,
		WanikaniSRS:    "unknown",
		UnlockDate:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the Review has valid data.
// Returns an error if any field fails validation.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReviewID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyReviewUserID
	}

	if r.VocabularyID == uuid.Nil {
		return ErrEmptyReviewVocabulary
	}

	if r.Streak < 0 {
		return ErrInvalidStreak
	}

	return nil
}

// Clone returns a deep copy of the review. The scheduling engine and the
// reconciliation engine both follow the immutable-update pattern, returning
// new instances instead of mutating their input.
func (r *Review) Clone() *Review {
	clone := *r

	clone.LastStudied = copyTime(r.LastStudied)
	clone.NextReviewDate = copyTime(r.NextReviewDate)
	clone.WKAssignmentLastModified = copyTime(r.WKAssignmentLastModified)
	clone.WKStudyMaterialsLastModified = copyTime(r.WKStudyMaterialsLastModified)

	if r.MeaningSynonyms != nil {
		clone.MeaningSynonyms = make([]MeaningSynonym, len(r.MeaningSynonyms))
		copy(clone.MeaningSynonyms, r.MeaningSynonyms)
	}
	if r.ReadingSynonyms != nil {
		clone.ReadingSynonyms = make([]AnswerSynonym, len(r.ReadingSynonyms))
		copy(clone.ReadingSynonyms, r.ReadingSynonyms)
	}

	return &clone
}

// SynonymTexts returns the text of every accepted meaning synonym.
func (r *Review) SynonymTexts() []string {
	texts := make([]string, 0, len(r.MeaningSynonyms))
	for _, s := range r.MeaningSynonyms {
		texts = append(texts, s.Text)
	}
	return texts
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// MeaningSynonym is a user-accepted alternate answer for a review's meaning.
// The text is unique within a review.
type MeaningSynonym struct {
	ID       uuid.UUID `json:"id"`
	ReviewID uuid.UUID `json:"review_id"`
	Text     string    `json:"text"`
}

// AnswerSynonym is a user-accepted alternate reading answer for a review.
// The (character, kana) pair is unique within a review.
type AnswerSynonym struct {
	ID        uuid.UUID `json:"id"`
	ReviewID  uuid.UUID `json:"review_id"`
	Character string    `json:"character"`
	Kana      string    `json:"kana"`
}

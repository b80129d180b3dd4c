package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Vocabulary-specific validation errors
var (
	ErrEmptyVocabularyID      = errors.New("vocabulary ID cannot be empty")
	ErrEmptySubjectID         = errors.New("vocabulary subject ID cannot be empty")
	ErrEmptyMeaning           = errors.New("vocabulary meaning cannot be empty")
	ErrEmptyReadingID         = errors.New("reading ID cannot be empty")
	ErrEmptyReadingVocabulary = errors.New("reading vocabulary ID cannot be empty")
	ErrEmptyKana              = errors.New("reading kana cannot be empty")
)

// Vocabulary is a canonical vocabulary item, keyed by the immutable remote
// subject ID. It is shared across all users and is created and updated only
// by reconciliation against the remote catalog.
type Vocabulary struct {
	ID        uuid.UUID `json:"id"`
	SubjectID int64     `json:"wk_subject_id"`

	Meaning                    string `json:"meaning"`
	AlternateMeanings          string `json:"alternate_meanings"`           // comma-joined
	AuxiliaryMeaningsWhitelist string `json:"auxiliary_meanings_whitelist"` // comma-joined
	Level                      int    `json:"level"`

	// WKLastModified mirrors the remote data_updated_at timestamp.
	// Nil means the item has never been reconciled against the remote.
	WKLastModified *time.Time `json:"wk_last_modified,omitempty"`

	Readings      []Reading `json:"readings,omitempty"`
	PartsOfSpeech []string  `json:"parts_of_speech,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVocabulary creates a Vocabulary stub for the given remote subject ID.
// Meaning, readings and the rest of the catalog data are filled in by the
// first reconciliation pass.
func NewVocabulary(subjectID int64, meaning string) (*Vocabulary, error) {
	now := time.Now().UTC()
	vocab := &Vocabulary{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Meaning:   meaning,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := vocab.Validate(); err != nil {
		return nil, err
	}

	return vocab, nil
}

// Validate checks if the Vocabulary has valid data.
// Returns an error if any field fails validation.
func (v *Vocabulary) Validate() error {
	if v.ID == uuid.Nil {
		return ErrEmptyVocabularyID
	}

	if v.SubjectID == 0 {
		return ErrEmptySubjectID
	}

	if v.Meaning == "" {
		return ErrEmptyMeaning
	}

	return nil
}

// ReadingKanas returns the kana of every local reading, in storage order.
func (v *Vocabulary) ReadingKanas() []string {
	kanas := make([]string, 0, len(v.Readings))
	for _, r := range v.Readings {
		kanas = append(kanas, r.Kana)
	}
	return kanas
}

// Reading is a (character, kana) pair belonging to exactly one Vocabulary.
// The pair is unique within a vocabulary.
type Reading struct {
	ID           uuid.UUID `json:"id"`
	VocabularyID uuid.UUID `json:"vocabulary_id"`
	Character    string    `json:"character"`
	Kana         string    `json:"kana"`
	Level        int       `json:"level"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewReading creates a Reading attached to the given vocabulary.
func NewReading(vocabularyID uuid.UUID, character, kana string, level int) (*Reading, error) {
	reading := &Reading{
		ID:           uuid.New(),
		VocabularyID: vocabularyID,
		Character:    character,
		Kana:         kana,
		Level:        level,
		CreatedAt:    time.Now().UTC(),
	}

	if err := reading.Validate(); err != nil {
		return nil, err
	}

	return reading, nil
}

// Validate checks if the Reading has valid data.
func (r *Reading) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReadingID
	}

	if r.VocabularyID == uuid.Nil {
		return ErrEmptyReadingVocabulary
	}

	if r.Kana == "" {
		return ErrEmptyKana
	}

	return nil
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
)

// VocabularyStore defines the interface for the shared vocabulary catalog.
type VocabularyStore interface {
	// Create saves a new vocabulary item.
	// Returns ErrDuplicate if the subject ID is already present.
	Create(ctx context.Context, vocab *domain.Vocabulary) error

	// GetBySubjectID retrieves a vocabulary by its immutable remote
	// subject ID, with readings and parts-of-speech loaded.
	// Returns ErrVocabularyNotFound if no such vocabulary exists.
	GetBySubjectID(ctx context.Context, subjectID int64) (*domain.Vocabulary, error)

	// Update modifies a vocabulary's scalar fields.
	// Returns ErrVocabularyNotFound if the vocabulary does not exist.
	Update(ctx context.Context, vocab *domain.Vocabulary) error

	// AddReading attaches a reading to its vocabulary. Adding a reading
	// whose (character, kana) pair already exists is a no-op, so repeated
	// reconciliation attempts stay idempotent.
	AddReading(ctx context.Context, reading *domain.Reading) error

	// DeleteReadings removes the readings with the given IDs.
	DeleteReadings(ctx context.Context, ids []uuid.UUID) error

	// ReplacePartsOfSpeech clears the vocabulary's tag set and recreates
	// it from the given list, deduplicating repeated tags.
	ReplacePartsOfSpeech(ctx context.Context, vocabularyID uuid.UUID, parts []string) error

	// WithTx returns a VocabularyStore bound to the provided transaction.
	WithTx(tx *sql.Tx) VocabularyStore
}

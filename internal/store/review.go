package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
)

// ReviewStore defines the interface for per-user review persistence.
// Reviews carry a uniqueness constraint on (user, vocabulary).
type ReviewStore interface {
	// GetOrCreate retrieves the review for the (user, vocabulary) pair,
	// creating it when absent. New reviews are seeded as immediately due.
	// The created flag reports whether a new record was inserted.
	//
	// Concurrency contract: creation races on the same pair are resolved
	// by the unique constraint. The insert uses ON CONFLICT DO NOTHING,
	// so the loser of the race reads the winner's row.
	//
	// Returns ErrIntegrityViolation if more than one review already
	// exists for the pair; the caller must treat the item as a no-op
	// after logging the offenders.
	GetOrCreate(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, bool, error)

	// Get retrieves the review for the (user, vocabulary) pair.
	// Returns ErrReviewNotFound if it does not exist and
	// ErrIntegrityViolation if duplicates exist.
	Get(ctx context.Context, userID, vocabularyID uuid.UUID) (*domain.Review, error)

	// ListByUserAndVocabulary returns every review for the pair, in
	// creation order. Used to log each offender after an integrity
	// violation.
	ListByUserAndVocabulary(ctx context.Context, userID, vocabularyID uuid.UUID) ([]*domain.Review, error)

	// ListByUser returns every review belonging to the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error)

	// Update modifies an existing review's scalar fields.
	// Returns ErrReviewNotFound if the review does not exist.
	Update(ctx context.Context, review *domain.Review) error

	// ReplaceMeaningSynonyms deletes the review's meaning synonyms and
	// recreates the set from the given texts.
	ReplaceMeaningSynonyms(ctx context.Context, reviewID uuid.UUID, texts []string) error

	// AddAnswerSynonym records a user-accepted reading synonym. Returns
	// the existing synonym when the (character, kana) pair is already
	// present, with created=false.
	AddAnswerSynonym(ctx context.Context, reviewID uuid.UUID, character, kana string) (*domain.AnswerSynonym, bool, error)

	// DeleteAnswerSynonym removes a user-accepted reading synonym.
	// Returns ErrNotFound if no such synonym exists.
	DeleteAnswerSynonym(ctx context.Context, synonymID uuid.UUID) error

	// MarkDueReviews flags every non-hidden, non-burned review whose next
	// review date has passed as needing review, and returns the number of
	// reviews flagged. A nil userID runs over all users.
	MarkDueReviews(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error)

	// WithTx returns a ReviewStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}

package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/logger"
	"github.com/kaniwani/kw-api/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{
		db:     tx,
		logger: s.logger,
	}
}

const reviewColumns = `id, user_id, vocabulary_id, correct, incorrect, streak,
	last_studied, next_review_date, needs_review, burned, critical, hidden,
	notes, meaning_note, reading_note, wanikani_srs, wanikani_srs_numeric,
	wanikani_burned, wk_assignment_last_modified,
	wk_study_materials_last_modified, unlock_date, created_at, updated_at`

// GetOrCreate implements store.ReviewStore.GetOrCreate
//
// The insert races through ON CONFLICT DO NOTHING on the (user_id,
// vocabulary_id) unique constraint, so concurrent creation of the same
// pair leaves exactly one row and the loser reads the winner's record.
// Returns store.ErrIntegrityViolation when duplicates already exist.
func (s *PostgresReviewStore) GetOrCreate(
	ctx context.Context,
	userID, vocabularyID uuid.UUID,
) (*domain.Review, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	review, err := domain.NewReview(userID, vocabularyID)
	if err != nil {
		return nil, false, err
	}

	query := `
		INSERT INTO reviews (id, user_id, vocabulary_id, correct, incorrect,
			streak, last_studied, next_review_date, needs_review, burned,
			critical, hidden, notes, meaning_note, reading_note, wanikani_srs,
			wanikani_srs_numeric, wanikani_burned, wk_assignment_last_modified,
			wk_study_materials_last_modified, unlock_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (user_id, vocabulary_id) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.UserID,
		review.VocabularyID,
		review.Correct,
		review.Incorrect,
		review.Streak,
		review.LastStudied,
		review.NextReviewDate,
		review.NeedsReview,
		review.Burned,
		review.Critical,
		review.Hidden,
		review.Notes,
		review.MeaningNote,
		review.ReadingNote,
		review.WanikaniSRS,
		review.WanikaniSRSNumeric,
		review.WanikaniBurned,
		review.WKAssignmentLastModified,
		review.WKStudyMaterialsLastModified,
		review.UnlockDate,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("vocabulary_id", vocabularyID.String()))
		return nil, false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	if rowsAffected == 1 {
		log.Info("review created",
			slog.String("review_id", review.ID.String()),
			slog.String("user_id", userID.String()),
			slog.String("vocabulary_id", vocabularyID.String()))
		return review, true, nil
	}

	// Conflict path: the row already existed (or a legacy duplicate set
	// does). Get enforces the one-row invariant either way.
	existing, err := s.Get(ctx, userID, vocabularyID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Get implements store.ReviewStore.Get
// Returns store.ErrReviewNotFound when no review exists for the pair and
// store.ErrIntegrityViolation when more than one does.
func (s *PostgresReviewStore) Get(
	ctx context.Context,
	userID, vocabularyID uuid.UUID,
) (*domain.Review, error) {
	reviews, err := s.ListByUserAndVocabulary(ctx, userID, vocabularyID)
	if err != nil {
		return nil, err
	}

	switch len(reviews) {
	case 0:
		return nil, store.ErrReviewNotFound
	case 1:
		review := reviews[0]
		if err := s.loadSynonyms(ctx, review); err != nil {
			return nil, err
		}
		return review, nil
	default:
		return nil, store.ErrIntegrityViolation
	}
}

func (s *PostgresReviewStore) loadSynonyms(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, review_id, text FROM meaning_synonyms
		 WHERE review_id = $1 ORDER BY text`, review.ID)
	if err != nil {
		log.Error("failed to query meaning synonyms", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer closeRows(rows, log)

	review.MeaningSynonyms = nil
	for rows.Next() {
		var syn domain.MeaningSynonym
		if err := rows.Scan(&syn.ID, &syn.ReviewID, &syn.Text); err != nil {
			return err
		}
		review.MeaningSynonyms = append(review.MeaningSynonyms, syn)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, review_id, "character", kana FROM answer_synonyms
		 WHERE review_id = $1 ORDER BY "character", kana`, review.ID)
	if err != nil {
		log.Error("failed to query answer synonyms", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer closeRows(rows, log)

	review.ReadingSynonyms = nil
	for rows.Next() {
		var syn domain.AnswerSynonym
		if err := rows.Scan(&syn.ID, &syn.ReviewID, &syn.Character, &syn.Kana); err != nil {
			return err
		}
		review.ReadingSynonyms = append(review.ReadingSynonyms, syn)
	}
	return rows.Err()
}

// ListByUserAndVocabulary implements store.ReviewStore.ListByUserAndVocabulary
func (s *PostgresReviewStore) ListByUserAndVocabulary(
	ctx context.Context,
	userID, vocabularyID uuid.UUID,
) ([]*domain.Review, error) {
	return s.list(ctx,
		`WHERE user_id = $1 AND vocabulary_id = $2 ORDER BY created_at`,
		userID, vocabularyID)
}

// ListByUser implements store.ReviewStore.ListByUser
func (s *PostgresReviewStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	return s.list(ctx, `WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (s *PostgresReviewStore) list(ctx context.Context, where string, args ...any) ([]*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews `+where, args...)
	if err != nil {
		log.Error("failed to query reviews", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var reviews []*domain.Review
	for rows.Next() {
		var review domain.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.VocabularyID,
			&review.Correct,
			&review.Incorrect,
			&review.Streak,
			&review.LastStudied,
			&review.NextReviewDate,
			&review.NeedsReview,
			&review.Burned,
			&review.Critical,
			&review.Hidden,
			&review.Notes,
			&review.MeaningNote,
			&review.ReadingNote,
			&review.WanikaniSRS,
			&review.WanikaniSRSNumeric,
			&review.WanikaniBurned,
			&review.WKAssignmentLastModified,
			&review.WKStudyMaterialsLastModified,
			&review.UnlockDate,
			&review.CreatedAt,
			&review.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan review row", slog.String("error", err.Error()))
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning review rows", slog.String("error", err.Error()))
		return nil, err
	}

	return reviews, nil
}

// Update implements store.ReviewStore.Update
// Returns store.ErrReviewNotFound if the review does not exist.
func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		log.Warn("review validation failed during update",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return err
	}

	query := `
		UPDATE reviews
		SET correct = $1, incorrect = $2, streak = $3, last_studied = $4,
			next_review_date = $5, needs_review = $6, burned = $7,
			critical = $8, hidden = $9, notes = $10, meaning_note = $11,
			reading_note = $12, wanikani_srs = $13, wanikani_srs_numeric = $14,
			wanikani_burned = $15, wk_assignment_last_modified = $16,
			wk_study_materials_last_modified = $17, updated_at = $18
		WHERE id = $19
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		review.Correct,
		review.Incorrect,
		review.Streak,
		review.LastStudied,
		review.NextReviewDate,
		review.NeedsReview,
		review.Burned,
		review.Critical,
		review.Hidden,
		review.Notes,
		review.MeaningNote,
		review.ReadingNote,
		review.WanikaniSRS,
		review.WanikaniSRSNumeric,
		review.WanikaniBurned,
		review.WKAssignmentLastModified,
		review.WKStudyMaterialsLastModified,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		log.Error("failed to update review",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("review not found for update",
			slog.String("review_id", review.ID.String()))
		return store.ErrReviewNotFound
	}

	return nil
}

// ReplaceMeaningSynonyms implements store.ReviewStore.ReplaceMeaningSynonyms
func (s *PostgresReviewStore) ReplaceMeaningSynonyms(ctx context.Context, reviewID uuid.UUID, texts []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM meaning_synonyms WHERE review_id = $1`, reviewID); err != nil {
		log.Error("failed to clear meaning synonyms",
			slog.String("error", err.Error()),
			slog.String("review_id", reviewID.String()))
		return MapError(err)
	}

	for _, text := range texts {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO meaning_synonyms (id, review_id, text)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (review_id, text) DO NOTHING`,
			uuid.New(), reviewID, text); err != nil {
			log.Error("failed to insert meaning synonym",
				slog.String("error", err.Error()),
				slog.String("review_id", reviewID.String()))
			return MapError(err)
		}
	}

	return nil
}

// AddAnswerSynonym implements store.ReviewStore.AddAnswerSynonym
func (s *PostgresReviewStore) AddAnswerSynonym(
	ctx context.Context,
	reviewID uuid.UUID,
	character, kana string,
) (*domain.AnswerSynonym, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	synonym := &domain.AnswerSynonym{
		ID:        uuid.New(),
		ReviewID:  reviewID,
		Character: character,
		Kana:      kana,
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO answer_synonyms (id, review_id, "character", kana)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (review_id, "character", kana) DO NOTHING`,
		synonym.ID, reviewID, character, kana)
	if err != nil {
		log.Error("failed to add answer synonym",
			slog.String("error", err.Error()),
			slog.String("review_id", reviewID.String()))
		return nil, false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if rowsAffected == 1 {
		return synonym, true, nil
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT id, review_id, "character", kana FROM answer_synonyms
		 WHERE review_id = $1 AND "character" = $2 AND kana = $3`,
		reviewID, character, kana).
		Scan(&synonym.ID, &synonym.ReviewID, &synonym.Character, &synonym.Kana)
	if err != nil {
		return nil, false, MapError(err)
	}
	return synonym, false, nil
}

// DeleteAnswerSynonym implements store.ReviewStore.DeleteAnswerSynonym
func (s *PostgresReviewStore) DeleteAnswerSynonym(ctx context.Context, synonymID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM answer_synonyms WHERE id = $1`, synonymID)
	if err != nil {
		log.Error("failed to delete answer synonym",
			slog.String("error", err.Error()),
			slog.String("synonym_id", synonymID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkDueReviews implements store.ReviewStore.MarkDueReviews
// It flags reviews whose scheduled time has passed as needing review and
// returns the number of rows flagged.
func (s *PostgresReviewStore) MarkDueReviews(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE reviews
		SET needs_review = TRUE, updated_at = $1
		WHERE needs_review = FALSE
			AND burned = FALSE
			AND hidden = FALSE
			AND next_review_date IS NOT NULL
			AND next_review_date <= $2
	`
	args := []any{now, now}
	if userID != nil {
		query += ` AND user_id = $3`
		args = append(args, *userID)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to mark due reviews", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	flagged, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Debug("marked due reviews", slog.Int64("count", flagged))
	return flagged, nil
}

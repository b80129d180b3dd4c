package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/logger"
	"github.com/kaniwani/kw-api/internal/store"
)

// PostgresVocabularyStore implements the store.VocabularyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a new PostgreSQL implementation of the
// VocabularyStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

// Ensure PostgresVocabularyStore implements store.VocabularyStore interface
var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// WithTx implements store.VocabularyStore.WithTx
func (s *PostgresVocabularyStore) WithTx(tx *sql.Tx) store.VocabularyStore {
	return &PostgresVocabularyStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.VocabularyStore.Create
// Returns store.ErrDuplicate if the subject ID is already present.
func (s *PostgresVocabularyStore) Create(ctx context.Context, vocab *domain.Vocabulary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := vocab.Validate(); err != nil {
		log.Warn("vocabulary validation failed during create",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocab.ID.String()))
		return err
	}

	query := `
		INSERT INTO vocabulary (id, wk_subject_id, meaning, alternate_meanings,
			auxiliary_meanings_whitelist, level, wk_last_modified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		vocab.ID,
		vocab.SubjectID,
		vocab.Meaning,
		vocab.AlternateMeanings,
		vocab.AuxiliaryMeaningsWhitelist,
		vocab.Level,
		vocab.WKLastModified,
		vocab.CreatedAt,
		vocab.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: vocabulary subject %d", store.ErrDuplicate, vocab.SubjectID)
		}
		log.Error("failed to create vocabulary",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", vocab.SubjectID))
		return MapError(err)
	}

	log.Info("vocabulary created",
		slog.String("vocabulary_id", vocab.ID.String()),
		slog.Int64("subject_id", vocab.SubjectID))
	return nil
}

// GetBySubjectID implements store.VocabularyStore.GetBySubjectID
// It loads the vocabulary together with its readings and parts-of-speech.
// Returns store.ErrVocabularyNotFound if no such vocabulary exists.
func (s *PostgresVocabularyStore) GetBySubjectID(ctx context.Context, subjectID int64) (*domain.Vocabulary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, wk_subject_id, meaning, alternate_meanings,
			auxiliary_meanings_whitelist, level, wk_last_modified, created_at, updated_at
		FROM vocabulary
		WHERE wk_subject_id = $1
	`

	var vocab domain.Vocabulary
	err := s.db.QueryRowContext(ctx, query, subjectID).Scan(
		&vocab.ID,
		&vocab.SubjectID,
		&vocab.Meaning,
		&vocab.AlternateMeanings,
		&vocab.AuxiliaryMeaningsWhitelist,
		&vocab.Level,
		&vocab.WKLastModified,
		&vocab.CreatedAt,
		&vocab.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocabulary not found", slog.Int64("subject_id", subjectID))
			return nil, store.ErrVocabularyNotFound
		}
		log.Error("failed to get vocabulary by subject ID",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", subjectID))
		return nil, MapError(err)
	}

	if err := s.loadReadings(ctx, &vocab); err != nil {
		return nil, err
	}
	if err := s.loadPartsOfSpeech(ctx, &vocab); err != nil {
		return nil, err
	}

	return &vocab, nil
}

// Update implements store.VocabularyStore.Update
// Returns store.ErrVocabularyNotFound if the vocabulary does not exist.
func (s *PostgresVocabularyStore) Update(ctx context.Context, vocab *domain.Vocabulary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := vocab.Validate(); err != nil {
		log.Warn("vocabulary validation failed during update",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocab.ID.String()))
		return err
	}

	query := `
		UPDATE vocabulary
		SET meaning = $1, alternate_meanings = $2, auxiliary_meanings_whitelist = $3,
			level = $4, wk_last_modified = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		vocab.Meaning,
		vocab.AlternateMeanings,
		vocab.AuxiliaryMeaningsWhitelist,
		vocab.Level,
		vocab.WKLastModified,
		vocab.UpdatedAt,
		vocab.ID,
	)
	if err != nil {
		log.Error("failed to update vocabulary",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocab.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocab.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("vocabulary not found for update",
			slog.String("vocabulary_id", vocab.ID.String()))
		return store.ErrVocabularyNotFound
	}

	return nil
}

// AddReading implements store.VocabularyStore.AddReading
// Re-adding an existing (character, kana) pair is a no-op, which keeps
// repeated reconciliation attempts idempotent.
func (s *PostgresVocabularyStore) AddReading(ctx context.Context, reading *domain.Reading) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reading.Validate(); err != nil {
		log.Warn("reading validation failed during add",
			slog.String("error", err.Error()),
			slog.String("reading_id", reading.ID.String()))
		return err
	}

	query := `
		INSERT INTO readings (id, vocabulary_id, "character", kana, level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vocabulary_id, "character", kana) DO NOTHING
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		reading.ID,
		reading.VocabularyID,
		reading.Character,
		reading.Kana,
		reading.Level,
		reading.CreatedAt,
	)
	if err != nil {
		log.Error("failed to add reading",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", reading.VocabularyID.String()),
			slog.String("kana", reading.Kana))
		return MapError(err)
	}

	return nil
}

// DeleteReadings implements store.VocabularyStore.DeleteReadings
func (s *PostgresVocabularyStore) DeleteReadings(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM readings WHERE id = $1`, id); err != nil {
			log.Error("failed to delete reading",
				slog.String("error", err.Error()),
				slog.String("reading_id", id.String()))
			return MapError(err)
		}
	}

	return nil
}

// ReplacePartsOfSpeech implements store.VocabularyStore.ReplacePartsOfSpeech
// It clears the tag set and recreates it, tolerating duplicate tags in the
// input via the unique constraint.
func (s *PostgresVocabularyStore) ReplacePartsOfSpeech(ctx context.Context, vocabularyID uuid.UUID, parts []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM vocabulary_parts_of_speech WHERE vocabulary_id = $1`,
		vocabularyID); err != nil {
		log.Error("failed to clear parts of speech",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocabularyID.String()))
		return MapError(err)
	}

	for _, part := range parts {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO vocabulary_parts_of_speech (vocabulary_id, part)
			 VALUES ($1, $2)
			 ON CONFLICT (vocabulary_id, part) DO NOTHING`,
			vocabularyID, part); err != nil {
			log.Error("failed to insert part of speech",
				slog.String("error", err.Error()),
				slog.String("vocabulary_id", vocabularyID.String()),
				slog.String("part", part))
			return MapError(err)
		}
	}

	return nil
}

func (s *PostgresVocabularyStore) loadReadings(ctx context.Context, vocab *domain.Vocabulary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vocabulary_id, "character", kana, level, created_at
		FROM readings
		WHERE vocabulary_id = $1
		ORDER BY created_at
	`, vocab.ID)
	if err != nil {
		log.Error("failed to load readings",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocab.ID.String()))
		return MapError(err)
	}
	defer closeRows(rows, log)

	vocab.Readings = nil
	for rows.Next() {
		var reading domain.Reading
		err := rows.Scan(
			&reading.ID,
			&reading.VocabularyID,
			&reading.Character,
			&reading.Kana,
			&reading.Level,
			&reading.CreatedAt,
		)
		if err != nil {
			return err
		}
		vocab.Readings = append(vocab.Readings, reading)
	}
	return rows.Err()
}

func (s *PostgresVocabularyStore) loadPartsOfSpeech(ctx context.Context, vocab *domain.Vocabulary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT part FROM vocabulary_parts_of_speech
		WHERE vocabulary_id = $1
		ORDER BY part
	`, vocab.ID)
	if err != nil {
		log.Error("failed to load parts of speech",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocab.ID.String()))
		return MapError(err)
	}
	defer closeRows(rows, log)

	vocab.PartsOfSpeech = nil
	for rows.Next() {
		var part string
		if err := rows.Scan(&part); err != nil {
			return err
		}
		vocab.PartsOfSpeech = append(vocab.PartsOfSpeech, part)
	}
	return rows.Err()
}

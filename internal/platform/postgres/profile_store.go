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

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// WithTx implements store.ProfileStore.WithTx
func (s *PostgresProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return &PostgresProfileStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ProfileStore.Create
// It saves a new profile and its unlocked-level set.
// Returns store.ErrDuplicate if a profile already exists for the user.
func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during create",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}

	query := `
		INSERT INTO profiles (id, user_id, username, api_key, api_valid,
			level, follow_me, min_wk_stage, max_wk_stage, on_vacation,
			vacation_date, joined_at, last_synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.UserID,
		profile.Username,
		profile.APIKey,
		profile.APIValid,
		profile.Level,
		profile.FollowMe,
		profile.MinWKStage,
		profile.MaxWKStage,
		profile.OnVacation,
		profile.VacationDate,
		profile.JoinedAt,
		profile.LastSyncedAt,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate profile during create",
				slog.String("profile_id", profile.ID.String()),
				slog.String("user_id", profile.UserID.String()))
			return fmt.Errorf("%w: profile for user %s", store.ErrDuplicate, profile.UserID)
		}
		log.Error("failed to create profile",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return MapError(err)
	}

	if err := s.replaceUnlockedLevels(ctx, profile.ID, profile.UnlockedLevels); err != nil {
		return err
	}

	log.Info("profile created successfully",
		slog.String("profile_id", profile.ID.String()),
		slog.String("user_id", profile.UserID.String()))
	return nil
}

const profileColumns = `id, user_id, username, api_key, api_valid, level,
	follow_me, min_wk_stage, max_wk_stage, on_vacation, vacation_date,
	joined_at, last_synced_at, created_at, updated_at`

// GetByID implements store.ProfileStore.GetByID
// Returns store.ErrProfileNotFound if the profile does not exist.
func (s *PostgresProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.getOne(ctx, "id", id)
}

// GetByUserID implements store.ProfileStore.GetByUserID
// Returns store.ErrProfileNotFound if the profile does not exist.
func (s *PostgresProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.getOne(ctx, "user_id", userID)
}

func (s *PostgresProfileStore) getOne(ctx context.Context, column string, id uuid.UUID) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE %s = $1`, profileColumns, column)

	profile, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("profile not found", slog.String(column, id.String()))
			return nil, store.ErrProfileNotFound
		}
		log.Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String(column, id.String()))
		return nil, MapError(err)
	}

	if err := s.loadUnlockedLevels(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Update implements store.ProfileStore.Update
// It persists the profile's scalar fields and replaces the unlocked-level
// set with the one on the entity.
// Returns store.ErrProfileNotFound if the profile does not exist.
func (s *PostgresProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during update",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}

	query := `
		UPDATE profiles
		SET username = $1, api_key = $2, api_valid = $3, level = $4,
			follow_me = $5, min_wk_stage = $6, max_wk_stage = $7,
			on_vacation = $8, vacation_date = $9, joined_at = $10,
			last_synced_at = $11, updated_at = $12
		WHERE id = $13
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		profile.Username,
		profile.APIKey,
		profile.APIValid,
		profile.Level,
		profile.FollowMe,
		profile.MinWKStage,
		profile.MaxWKStage,
		profile.OnVacation,
		profile.VacationDate,
		profile.JoinedAt,
		profile.LastSyncedAt,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		log.Error("failed to update profile",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("profile not found for update",
			slog.String("profile_id", profile.ID.String()))
		return store.ErrProfileNotFound
	}

	return s.replaceUnlockedLevels(ctx, profile.ID, profile.UnlockedLevels)
}

// ListSyncEligible implements store.ProfileStore.ListSyncEligible
// It returns profiles holding a valid credential that are not on vacation.
func (s *PostgresProfileStore) ListSyncEligible(ctx context.Context) ([]*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE api_valid = TRUE AND api_key <> '' AND on_vacation = FALSE
		ORDER BY created_at
	`, profileColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list sync-eligible profiles",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	var profiles []*domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			log.Error("failed to scan profile row",
				slog.String("error", err.Error()))
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning profile rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	for _, profile := range profiles {
		if err := s.loadUnlockedLevels(ctx, profile); err != nil {
			return nil, err
		}
	}

	return profiles, nil
}

func (s *PostgresProfileStore) loadUnlockedLevels(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT level FROM unlocked_levels WHERE profile_id = $1 ORDER BY level`,
		profile.ID,
	)
	if err != nil {
		log.Error("failed to load unlocked levels",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return MapError(err)
	}
	defer closeRows(rows, log)

	profile.UnlockedLevels = nil
	for rows.Next() {
		var level int
		if err := rows.Scan(&level); err != nil {
			return err
		}
		profile.UnlockedLevels = append(profile.UnlockedLevels, level)
	}
	return rows.Err()
}

func (s *PostgresProfileStore) replaceUnlockedLevels(ctx context.Context, profileID uuid.UUID, levels []int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM unlocked_levels WHERE profile_id = $1`, profileID); err != nil {
		log.Error("failed to clear unlocked levels",
			slog.String("error", err.Error()),
			slog.String("profile_id", profileID.String()))
		return MapError(err)
	}

	for _, level := range levels {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO unlocked_levels (profile_id, level)
			 VALUES ($1, $2)
			 ON CONFLICT (profile_id, level) DO NOTHING`,
			profileID, level); err != nil {
			log.Error("failed to insert unlocked level",
				slog.String("error", err.Error()),
				slog.String("profile_id", profileID.String()),
				slog.Int("level", level))
			return MapError(err)
		}
	}

	return nil
}

// rowScanner lets scanProfile work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var profile domain.Profile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Username,
		&profile.APIKey,
		&profile.APIValid,
		&profile.Level,
		&profile.FollowMe,
		&profile.MinWKStage,
		&profile.MaxWKStage,
		&profile.OnVacation,
		&profile.VacationDate,
		&profile.JoinedAt,
		&profile.LastSyncedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}

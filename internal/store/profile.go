package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
)

// ProfileStore defines the interface for profile data persistence.
type ProfileStore interface {
	// Create saves a new profile. It handles domain validation internally.
	// Returns ErrDuplicate if a profile already exists for the user.
	Create(ctx context.Context, profile *domain.Profile) error

	// GetByID retrieves a profile by its unique ID, including the
	// unlocked-level set.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// GetByUserID retrieves the profile belonging to a user.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	// Update modifies an existing profile, replacing the unlocked-level
	// set with the one on the entity.
	// Returns ErrProfileNotFound if the profile does not exist.
	Update(ctx context.Context, profile *domain.Profile) error

	// ListSyncEligible returns the profiles the periodic sync should run
	// for: those with a valid credential and not on vacation. A profile
	// whose key was rejected stays excluded until the user saves a new
	// key, which marks the credential valid again.
	ListSyncEligible(ctx context.Context) ([]*domain.Profile, error)

	// WithTx returns a ProfileStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ProfileStore
}

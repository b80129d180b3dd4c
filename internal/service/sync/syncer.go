package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/domain/srs"
	"github.com/kaniwani/kw-api/internal/platform/logger"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/redact"
	"github.com/kaniwani/kw-api/internal/store"
)

// ClientFactory builds a remote client bound to a profile's API key.
type ClientFactory func(apiKey string) wanikani.Client

// Result reports what a sync pass accomplished. A pass never returns an
// error: failures are absorbed into the result and the logs so one user's
// bad state cannot take down a batch of syncs.
type Result struct {
	// ProfileSynced is false when the remote profile could not be
	// fetched, including when the credential was rejected.
	ProfileSynced bool

	// NewReviews is the exact number of reviews created during this pass.
	NewReviews int
}

// Syncer runs synchronization passes for user profiles.
type Syncer struct {
	profiles store.ProfileStore
	vocab    store.VocabularyStore
	reviews  store.ReviewStore
	clients  ClientFactory
	srs      srs.Service
	logger   *slog.Logger
}

// NewSyncer creates a Syncer with its dependencies.
// Panics if any store or the client factory is nil.
// If logger is nil, a default logger will be used.
func NewSyncer(
	profiles store.ProfileStore,
	vocab store.VocabularyStore,
	reviews store.ReviewStore,
	clients ClientFactory,
	srsService srs.Service,
	logger *slog.Logger,
) *Syncer {
	if profiles == nil {
		panic("profiles store cannot be nil")
	}
	if vocab == nil {
		panic("vocabulary store cannot be nil")
	}
	if reviews == nil {
		panic("review store cannot be nil")
	}
	if clients == nil {
		panic("client factory cannot be nil")
	}
	if srsService == nil {
		panic("srs service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{
		profiles: profiles,
		vocab:    vocab,
		reviews:  reviews,
		clients:  clients,
		srs:      srsService,
		logger:   logger.With(slog.String("component", "syncer")),
	}
}

// SyncUser loads the user's profile and runs a sync pass for it.
// Returns store.ErrProfileNotFound if the user has no profile.
func (s *Syncer) SyncUser(ctx context.Context, userID uuid.UUID, full bool) (Result, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return s.SyncProfile(ctx, profile, full), nil
}

// SyncProfile runs a single sync pass for the profile. The profile is
// always refreshed first; assignment or study-material work only happens
// after a successful profile sync, so a rejected key never triggers
// further remote calls.
//
// The sync strategy is chosen once per pass from the profile's follow-me
// setting: follow-me users get assignment-driven review creation, opt-out
// users get a notes-only study-material merge and zero new reviews.
func (s *Syncer) SyncProfile(ctx context.Context, profile *domain.Profile, full bool) Result {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", profile.UserID.String()),
		slog.String("username", profile.Username))

	client := s.clients(profile.APIKey)

	if !s.syncProfileInfo(ctx, client, profile, log) {
		return Result{}
	}

	result := Result{ProfileSynced: true}
	if profile.FollowMe {
		result.NewReviews = s.syncAssignments(ctx, client, profile, full, log)
	} else {
		s.syncStudyMaterials(ctx, client, profile, log)
	}

	log.Info("sync pass finished",
		slog.Bool("full", full),
		slog.Int("new_reviews", result.NewReviews))
	return result
}

// syncProfileInfo refreshes the local profile from the remote snapshot.
// A rejected credential marks the profile invalid and is persisted; any
// success revalidates the credential, so a user who saved a fresh key is
// healed by the next pass.
func (s *Syncer) syncProfileInfo(
	ctx context.Context,
	client wanikani.Client,
	profile *domain.Profile,
	log *slog.Logger,
) bool {
	snapshot, err := client.UserInformation(ctx)
	if errors.Is(err, wanikani.ErrInvalidCredential) {
		s.invalidateCredential(ctx, profile, log)
		return false
	}
	if err != nil {
		log.Error("failed to fetch remote profile",
			slog.String("error", redact.Error(err)))
		return false
	}

	now := time.Now().UTC()

	profile.APIValid = true
	profile.Username = snapshot.Username
	if profile.JoinedAt == nil && !snapshot.StartedAt.IsZero() {
		joined := snapshot.StartedAt
		profile.JoinedAt = &joined
	}
	profile.LastSyncedAt = &now
	// Level tracking is opt-in: an opt-out profile keeps whatever level
	// it was left at.
	if profile.FollowMe {
		profile.HandleLevelChange(snapshot.Level)
		profile.UnlockLevel(snapshot.Level)
	}
	profile.UpdatedAt = now

	if err := s.profiles.Update(ctx, profile); err != nil {
		log.Error("failed to persist synced profile",
			slog.String("error", redact.Error(err)))
		return false
	}

	return true
}

// invalidateCredential records a rejected API key on the profile. While
// the flag is down no remote work runs for the profile; saving a new key
// clears it.
func (s *Syncer) invalidateCredential(ctx context.Context, profile *domain.Profile, log *slog.Logger) {
	log.Warn("remote provider rejected API key, disabling sync for profile")

	profile.APIValid = false
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		log.Error("failed to persist invalid credential flag",
			slog.String("error", redact.Error(err)))
	}
}

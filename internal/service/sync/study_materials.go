package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/reconcile"
	"github.com/kaniwani/kw-api/internal/redact"
	"github.com/kaniwani/kw-api/internal/store"
)

// syncStudyMaterials merges the account's remote study materials into the
// user's existing reviews: notes are overwritten and the meaning-synonym
// set replaced when the remote record is newer. This is the opt-out
// strategy: it never creates reviews and never touches assignment state.
func (s *Syncer) syncStudyMaterials(
	ctx context.Context,
	client wanikani.Client,
	profile *domain.Profile,
	log *slog.Logger,
) {
	// Fetches every study material on the account rather than a
	// per-subject batch. Records without a local review are skipped
	// below, so the wider scope only costs fetch volume.
	seq := client.StudyMaterials(ctx, nil)
	now := time.Now().UTC()

	for {
		material, err := seq.Next(ctx)
		if errors.Is(err, wanikani.Done) {
			break
		}
		if errors.Is(err, wanikani.ErrInvalidCredential) {
			s.invalidateCredential(ctx, profile, log)
			break
		}
		if err != nil {
			log.Error("study material fetch failed, stopping pass",
				slog.String("error", redact.Error(err)))
			break
		}

		if err := s.processStudyMaterial(ctx, profile, material, now); err != nil {
			log.Error("failed to process study material",
				slog.Int64("subject_id", material.SubjectID),
				slog.String("error", redact.Error(err)))
		}
	}
}

// processStudyMaterial merges one study-material record into the matching
// review, if the user has one. Materials for subjects the user has never
// reviewed are skipped.
func (s *Syncer) processStudyMaterial(
	ctx context.Context,
	profile *domain.Profile,
	material *wanikani.StudyMaterialSnapshot,
	now time.Time,
) error {
	vocab, err := s.vocab.GetBySubjectID(ctx, material.SubjectID)
	if errors.Is(err, store.ErrVocabularyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	review, err := s.reviews.Get(ctx, profile.UserID, vocab.ID)
	if errors.Is(err, store.ErrReviewNotFound) {
		return nil
	}
	if errors.Is(err, store.ErrIntegrityViolation) {
		s.logDuplicateReviews(ctx, profile.UserID, vocab.ID,
			s.logger.With(slog.String("user_id", profile.UserID.String())))
		return nil
	}
	if err != nil {
		return err
	}

	if !reconcile.StudyMaterialOutOfDate(review, material) {
		return nil
	}

	change := reconcile.StudyMaterial(review, material, now)
	if err := s.reviews.Update(ctx, change.Review); err != nil {
		return err
	}
	if change.MeaningSynonyms != nil {
		if err := s.reviews.ReplaceMeaningSynonyms(ctx, review.ID, change.MeaningSynonyms); err != nil {
			return err
		}
	}
	return nil
}

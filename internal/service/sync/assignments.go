package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/reconcile"
	"github.com/kaniwani/kw-api/internal/redact"
	"github.com/kaniwani/kw-api/internal/store"
)

// syncAssignments drains the profile's vocabulary assignments and creates
// or refreshes the matching reviews. Returns the exact number of reviews
// created.
//
// An incremental pass only covers the user's recent unlocked levels; when
// that set is empty there is no remote work to do at all. A full pass
// covers every vocabulary assignment on the account. Both passes drain
// every page of whatever the filter matches; full controls only the
// level scope, never the pagination.
func (s *Syncer) syncAssignments(
	ctx context.Context,
	client wanikani.Client,
	profile *domain.Profile,
	full bool,
	log *slog.Logger,
) int {
	filter := wanikani.AssignmentFilter{
		SubjectTypes: []string{wanikani.SubjectTypeVocabulary},
		FetchAll:     true,
	}
	if !full {
		filter.Levels = profile.RecentLevels()
		if len(filter.Levels) == 0 {
			log.Debug("no recent unlocked levels, skipping assignment sync")
			return 0
		}
	}

	seq := client.Assignments(ctx, filter)
	now := time.Now().UTC()

	newReviews := 0
	for {
		assignment, err := seq.Next(ctx)
		if errors.Is(err, wanikani.Done) {
			break
		}
		if errors.Is(err, wanikani.ErrInvalidCredential) {
			s.invalidateCredential(ctx, profile, log)
			break
		}
		if err != nil {
			log.Error("assignment fetch failed, stopping pass",
				slog.String("error", redact.Error(err)))
			break
		}

		created, err := s.processAssignment(ctx, profile, assignment, now, log)
		newReviews += created
		if err != nil {
			log.Error("failed to process assignment",
				slog.Int64("subject_id", assignment.SubjectID),
				slog.String("error", redact.Error(err)))
		}
	}

	return newReviews
}

// processAssignment handles one assignment record: look up the vocabulary,
// get or create the user's review for it, and mirror the remote SRS
// metadata onto the review when the remote record is newer.
//
// Returns how many reviews it created (0 or 1). A created review counts
// even when a follow-up write fails, so the result stays an exact creation
// count.
func (s *Syncer) processAssignment(
	ctx context.Context,
	profile *domain.Profile,
	assignment *wanikani.AssignmentSnapshot,
	now time.Time,
	log *slog.Logger,
) (int, error) {
	vocab, err := s.vocab.GetBySubjectID(ctx, assignment.SubjectID)
	if errors.Is(err, store.ErrVocabularyNotFound) {
		// Catalog gap. The assignment references a subject the catalog
		// refresh has not imported yet; skip it and let a later pass
		// pick it up.
		log.Warn("assignment references unknown vocabulary, skipping",
			slog.Int64("subject_id", assignment.SubjectID))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	review, created, err := s.reviews.GetOrCreate(ctx, profile.UserID, vocab.ID)
	if errors.Is(err, store.ErrIntegrityViolation) {
		s.logDuplicateReviews(ctx, profile.UserID, vocab.ID, log)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	if created {
		count = 1
		log.Debug("created review from assignment",
			slog.Int64("subject_id", assignment.SubjectID),
			slog.String("review_id", review.ID.String()))
	}

	if reconcile.AssignmentOutOfDate(review, assignment) {
		updated := reconcile.Assignment(review, assignment, now)
		if err := s.reviews.Update(ctx, updated); err != nil {
			return count, err
		}
	}

	return count, nil
}

// logDuplicateReviews records every offending row for a (user, vocabulary)
// pair that violates the one-review invariant. The violation is never
// repaired automatically; the item is a no-op until an operator resolves
// the duplicates.
func (s *Syncer) logDuplicateReviews(
	ctx context.Context,
	userID, vocabularyID uuid.UUID,
	log *slog.Logger,
) {
	log.Error("duplicate reviews for user and vocabulary, skipping item",
		slog.String("vocabulary_id", vocabularyID.String()))

	offenders, err := s.reviews.ListByUserAndVocabulary(ctx, userID, vocabularyID)
	if err != nil {
		log.Error("failed to list duplicate reviews",
			slog.String("vocabulary_id", vocabularyID.String()),
			slog.String("error", redact.Error(err)))
		return
	}

	for _, offender := range offenders {
		log.Error("duplicate review",
			slog.String("review_id", offender.ID.String()),
			slog.String("vocabulary_id", vocabularyID.String()),
			slog.Time("created_at", offender.CreatedAt))
	}
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/logger"
	"github.com/kaniwani/kw-api/internal/redact"
)

// ErrNotOnVacation is returned when a vacation return is requested for a
// profile that is not on vacation.
var ErrNotOnVacation = errors.New("profile is not on vacation")

// FlagDueReviews flags every review whose scheduled time has passed, for
// all users, and returns the number flagged. Meant to be run periodically.
func (s *Syncer) FlagDueReviews(ctx context.Context) (int64, error) {
	return s.reviews.MarkDueReviews(ctx, nil, time.Now().UTC())
}

// ReturnFromVacation ends the profile's vacation: every review's schedule
// is shifted forward by the vacation duration so no backlog of overdue
// items piles up, then reviews that are genuinely due again are flagged.
func (s *Syncer) ReturnFromVacation(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", profile.UserID.String()))

	if !profile.OnVacation || profile.VacationDate == nil {
		return ErrNotOnVacation
	}

	now := time.Now().UTC()
	duration := now.Sub(*profile.VacationDate)
	if duration < 0 {
		duration = 0
	}

	reviews, err := s.reviews.ListByUser(ctx, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to list reviews for vacation return: %w", err)
	}

	shifted := 0
	for _, review := range reviews {
		updated, err := s.srs.BringOutOfVacation(review, duration, now)
		if err != nil {
			return err
		}
		if err := s.reviews.Update(ctx, updated); err != nil {
			log.Error("failed to shift review schedule",
				slog.String("review_id", review.ID.String()),
				slog.String("error", redact.Error(err)))
			continue
		}
		shifted++
	}

	profile.OnVacation = false
	profile.VacationDate = nil
	profile.UpdatedAt = now
	if err := s.profiles.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist vacation return: %w", err)
	}

	flagged, err := s.reviews.MarkDueReviews(ctx, &profile.UserID, now)
	if err != nil {
		return err
	}

	log.Info("vacation return finished",
		slog.Duration("vacation_duration", duration),
		slog.Int("reviews_shifted", shifted),
		slog.Int64("reviews_due", flagged))
	return nil
}

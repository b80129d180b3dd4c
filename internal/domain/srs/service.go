package srs

import (
	"errors"
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
)

// Common errors
var (
	ErrNilReview       = errors.New("review cannot be nil")
	ErrInvalidDuration = errors.New("vacation duration cannot be negative")
)

// Service defines the interface for scheduling engine operations.
// All methods follow the immutable-update pattern: the input review is
// never modified and a new instance carrying the next state is returned.
type Service interface {
	// AnswerCorrect records a correct answer and schedules the next review.
	AnswerCorrect(review *domain.Review, firstAttempt bool, now time.Time) (*domain.Review, error)

	// AnswerIncorrect records an incorrect answer and demotes the streak.
	AnswerIncorrect(review *domain.Review, now time.Time) (*domain.Review, error)

	// Reset returns the review to the lowest review tier at the user's
	// explicit request. A reset item is immediately due, never a lesson.
	Reset(review *domain.Review, now time.Time) (*domain.Review, error)

	// BringOutOfVacation shifts the review's schedule forward by the
	// vacation duration.
	BringOutOfVacation(review *domain.Review, duration time.Duration, now time.Time) (*domain.Review, error)

	// NextReviewTime reports when an item with the given streak, last
	// studied at the given time, is next due. Nil means the streak is
	// terminal and no review will be scheduled.
	NextReviewTime(streak int, lastStudied time.Time) *time.Time
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

func (s *defaultService) AnswerCorrect(
	review *domain.Review,
	firstAttempt bool,
	now time.Time,
) (*domain.Review, error) {
	if review == nil {
		return nil, ErrNilReview
	}
	return answerCorrect(review, firstAttempt, now, s.params), nil
}

func (s *defaultService) AnswerIncorrect(
	review *domain.Review,
	now time.Time,
) (*domain.Review, error) {
	if review == nil {
		return nil, ErrNilReview
	}
	return answerIncorrect(review, now, s.params), nil
}

func (s *defaultService) Reset(review *domain.Review, now time.Time) (*domain.Review, error) {
	if review == nil {
		return nil, ErrNilReview
	}
	return reset(review, now), nil
}

func (s *defaultService) BringOutOfVacation(
	review *domain.Review,
	duration time.Duration,
	now time.Time,
) (*domain.Review, error) {
	if review == nil {
		return nil, ErrNilReview
	}
	if duration < 0 {
		return nil, ErrInvalidDuration
	}
	return bringOutOfVacation(review, duration, now, s.params), nil
}

func (s *defaultService) NextReviewTime(streak int, lastStudied time.Time) *time.Time {
	return nextReviewTime(streak, lastStudied, s.params)
}

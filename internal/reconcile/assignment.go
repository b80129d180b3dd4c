package reconcile

import (
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
)

// AssignmentOutOfDate reports whether the remote assignment is newer than
// the review's stored assignment timestamp.
func AssignmentOutOfDate(r *domain.Review, assignment *wanikani.AssignmentSnapshot) bool {
	return r.WKAssignmentLastModified == nil ||
		assignment.DataUpdatedAt.After(*r.WKAssignmentLastModified)
}

// Assignment returns an updated copy of the review mirroring the remote
// assignment's SRS progress. This path is metadata mirroring only: streak
// and the correct/incorrect counters are owned exclusively by the
// scheduling engine and are never touched here.
func Assignment(
	r *domain.Review,
	assignment *wanikani.AssignmentSnapshot,
	now time.Time,
) *domain.Review {
	next := r.Clone()

	next.WanikaniSRS = assignment.SRSStageName
	next.WanikaniSRSNumeric = assignment.SRSStage
	next.WanikaniBurned = assignment.BurnedAt != nil

	stamp := assignment.DataUpdatedAt
	next.WKAssignmentLastModified = &stamp
	next.UpdatedAt = now

	return next
}

package reconcile

import (
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
)

// StudyMaterialChange is the changeset produced by reconciling a review's
// notes and synonyms against a remote study-material record.
type StudyMaterialChange struct {
	// Review is the updated copy of the review's scalar fields.
	Review *domain.Review

	// MeaningSynonyms is the full replacement synonym list. Nil means the
	// remote record carried no list at all and the local set must be left
	// alone; an empty non-nil list clears it.
	MeaningSynonyms []string
}

// StudyMaterialOutOfDate reports whether the remote study material is
// newer than the review's stored study-material timestamp.
func StudyMaterialOutOfDate(r *domain.Review, material *wanikani.StudyMaterialSnapshot) bool {
	return r.WKStudyMaterialsLastModified == nil ||
		material.DataUpdatedAt.After(*r.WKStudyMaterialsLastModified)
}

// StudyMaterial builds the changeset merging the remote study material
// into the review: notes are overwritten and the meaning-synonym set is
// replaced wholesale when the remote record carries one.
func StudyMaterial(
	r *domain.Review,
	material *wanikani.StudyMaterialSnapshot,
	now time.Time,
) *StudyMaterialChange {
	next := r.Clone()

	next.MeaningNote = material.MeaningNote
	next.ReadingNote = material.ReadingNote

	stamp := material.DataUpdatedAt
	next.WKStudyMaterialsLastModified = &stamp
	next.UpdatedAt = now

	change := &StudyMaterialChange{Review: next}
	if material.MeaningSynonyms != nil {
		change.MeaningSynonyms = append([]string{}, material.MeaningSynonyms...)
	}

	return change
}

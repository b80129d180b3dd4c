package reconcile

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
)

// VocabularyChange is the changeset produced by reconciling a local
// vocabulary against a remote subject snapshot. It is applied as a single
// transactional update so concurrent reconciliations of the same
// vocabulary cannot interleave partial writes.
type VocabularyChange struct {
	// Vocabulary is the updated copy of the entity's scalar fields.
	Vocabulary *domain.Vocabulary

	// ReadingsToAdd are remote readings with no local counterpart.
	ReadingsToAdd []domain.Reading

	// ReadingIDsToDelete are local readings whose kana no longer appears
	// in the remote set. Readings present on both sides are untouched,
	// which keeps the write volume down.
	ReadingIDsToDelete []uuid.UUID

	// PartsOfSpeech is the full replacement tag set.
	PartsOfSpeech []string
}

// VocabularyOutOfDate reports whether the local vocabulary needs to be
// reconciled against the subject snapshot: either it has never been synced
// or the remote modification timestamp is strictly newer.
func VocabularyOutOfDate(v *domain.Vocabulary, subject *wanikani.SubjectSnapshot) bool {
	return v.WKLastModified == nil || subject.DataUpdatedAt.After(*v.WKLastModified)
}

// Vocabulary builds the changeset merging the subject snapshot into the
// local vocabulary. The remote side is authoritative for every catalog
// field; readings are merged by symmetric difference on kana.
func Vocabulary(
	v *domain.Vocabulary,
	subject *wanikani.SubjectSnapshot,
	now time.Time,
) *VocabularyChange {
	updated := *v
	updated.Readings = nil

	stamp := subject.DataUpdatedAt
	updated.WKLastModified = &stamp
	updated.Level = subject.Level

	if primary := subject.PrimaryMeaning(); primary != "" {
		updated.Meaning = primary
	}
	updated.AlternateMeanings = strings.Join(subject.AlternateMeanings(), ",")
	updated.AuxiliaryMeaningsWhitelist = strings.Join(subject.AuxiliaryMeanings, ",")
	updated.UpdatedAt = now

	change := &VocabularyChange{
		Vocabulary:    &updated,
		PartsOfSpeech: append([]string(nil), subject.PartsOfSpeech...),
	}

	remoteKanas := make(map[string]struct{})
	for _, kana := range subject.ReadingKanas() {
		remoteKanas[kana] = struct{}{}
	}

	localKanas := make(map[string]struct{})
	for _, reading := range v.Readings {
		localKanas[reading.Kana] = struct{}{}
		if _, ok := remoteKanas[reading.Kana]; !ok {
			change.ReadingIDsToDelete = append(change.ReadingIDsToDelete, reading.ID)
		}
	}

	added := make(map[string]struct{})
	for _, kana := range subject.ReadingKanas() {
		if _, ok := localKanas[kana]; ok {
			continue
		}
		if _, ok := added[kana]; ok {
			continue
		}
		added[kana] = struct{}{}
		change.ReadingsToAdd = append(change.ReadingsToAdd, domain.Reading{
			ID:           uuid.New(),
			VocabularyID: v.ID,
			Character:    subject.Characters,
			Kana:         kana,
			Level:        subject.Level,
			CreatedAt:    now,
		})
	}

	return change
}

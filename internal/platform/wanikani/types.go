package wanikani

import "time"

// SubjectTypeVocabulary is the subject type the sync engine works with.
const SubjectTypeVocabulary = "vocabulary"

// ProfileSnapshot is the remote provider's view of the user's account.
type ProfileSnapshot struct {
	Username      string
	Level         int
	StartedAt     time.Time
	DataUpdatedAt time.Time
}

// AssignmentSnapshot links the user to a subject together with the remote
// provider's own SRS progress for it.
type AssignmentSnapshot struct {
	SubjectID    int64
	SubjectType  string
	SRSStage     int
	SRSStageName string

	// BurnedAt is non-nil once the remote provider has burned the item.
	BurnedAt *time.Time

	DataUpdatedAt time.Time
}

// StudyMaterialSnapshot holds the user-authored notes and meaning synonyms
// the remote provider stores for a subject.
type StudyMaterialSnapshot struct {
	SubjectID   int64
	MeaningNote string
	ReadingNote string

	// MeaningSynonyms is nil when the remote record carries no synonym
	// list at all, which is distinct from an explicitly empty list.
	MeaningSynonyms []string

	DataUpdatedAt time.Time
}

// Meaning is one of a subject's meanings. Exactly one meaning per subject
// is flagged primary.
type Meaning struct {
	Text    string
	Primary bool
}

// SubjectReading is one of a subject's readings.
type SubjectReading struct {
	Reading *string // kana; nil for subjects without readings
	Primary bool
}

// SubjectSnapshot is a remote catalog entry for a single subject.
type SubjectSnapshot struct {
	SubjectID         int64
	Characters        string
	Level             int
	Meanings          []Meaning
	AuxiliaryMeanings []string
	Readings          []SubjectReading
	PartsOfSpeech     []string
	DataUpdatedAt     time.Time
}

// PrimaryMeaning returns the subject's flagged-primary meaning, or the
// empty string if the remote data carries none.
func (s *SubjectSnapshot) PrimaryMeaning() string {
	for _, m := range s.Meanings {
		if m.Primary {
			return m.Text
		}
	}
	return ""
}

// AlternateMeanings returns every non-primary meaning in remote order.
func (s *SubjectSnapshot) AlternateMeanings() []string {
	var alts []string
	for _, m := range s.Meanings {
		if !m.Primary {
			alts = append(alts, m.Text)
		}
	}
	return alts
}

// ReadingKanas returns the kana of every reading the remote data carries.
func (s *SubjectSnapshot) ReadingKanas() []string {
	var kanas []string
	for _, r := range s.Readings {
		if r.Reading != nil {
			kanas = append(kanas, *r.Reading)
		}
	}
	return kanas
}

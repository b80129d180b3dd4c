package wanikani

import (
	"context"
	"errors"
)

// Common remote client errors
var (
	// ErrInvalidCredential is returned when the remote provider rejects
	// the profile's API key. It is recoverable only by user action: the
	// caller must mark the credential invalid and stop all remote work
	// for the profile.
	ErrInvalidCredential = errors.New("wanikani API key rejected")

	// Done signals the end of a page sequence, in the manner of the
	// google.golang.org/api iterator convention.
	Done = errors.New("no more items in sequence")
)

// AssignmentFilter narrows an assignment fetch.
type AssignmentFilter struct {
	SubjectTypes []string

	// Levels restricts the fetch to the given levels. Empty means all.
	Levels []int

	// FetchAll drains every page rather than just the first.
	FetchAll bool
}

// SubjectFilter narrows a subject (catalog) fetch.
type SubjectFilter struct {
	Types  []string
	Levels []int
}

// AssignmentSeq is a lazy sequence of assignment pages. Next returns Done
// after the last item. A sequence is restartable only from scratch via a
// new fetch; an error mid-sequence means the whole fetch failed.
type AssignmentSeq interface {
	Next(ctx context.Context) (*AssignmentSnapshot, error)
}

// StudyMaterialSeq is a lazy sequence of study-material records.
type StudyMaterialSeq interface {
	Next(ctx context.Context) (*StudyMaterialSnapshot, error)
}

// SubjectSeq is a lazy sequence of subject catalog entries.
type SubjectSeq interface {
	Next(ctx context.Context) (*SubjectSnapshot, error)
}

// Client is the remote provider capability the sync engine is injected
// with. Every fetch may return ErrInvalidCredential, including from a
// sequence's Next, when the key is rejected mid-pass.
type Client interface {
	// UserInformation fetches the remote profile snapshot.
	UserInformation(ctx context.Context) (*ProfileSnapshot, error)

	// Assignments fetches assignment records matching the filter.
	Assignments(ctx context.Context, filter AssignmentFilter) AssignmentSeq

	// StudyMaterials fetches study-material records for the subject IDs.
	StudyMaterials(ctx context.Context, subjectIDs []int64) StudyMaterialSeq

	// Subjects fetches subject catalog entries matching the filter.
	Subjects(ctx context.Context, filter SubjectFilter) SubjectSeq
}

package mocks

import (
	"context"

	"github.com/kaniwani/kw-api/internal/platform/wanikani"
)

// MockWanikaniClient implements wanikani.Client for testing.
type MockWanikaniClient struct {
	UserInformationFn func(ctx context.Context) (*wanikani.ProfileSnapshot, error)
	AssignmentsFn     func(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq
	StudyMaterialsFn  func(ctx context.Context, subjectIDs []int64) wanikani.StudyMaterialSeq
	SubjectsFn        func(ctx context.Context, filter wanikani.SubjectFilter) wanikani.SubjectSeq
}

var _ wanikani.Client = (*MockWanikaniClient)(nil)

func (m *MockWanikaniClient) UserInformation(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
	if m.UserInformationFn != nil {
		return m.UserInformationFn(ctx)
	}
	return &wanikani.ProfileSnapshot{}, nil
}

func (m *MockWanikaniClient) Assignments(
	ctx context.Context,
	filter wanikani.AssignmentFilter,
) wanikani.AssignmentSeq {
	if m.AssignmentsFn != nil {
		return m.AssignmentsFn(ctx, filter)
	}
	return &AssignmentSeq{}
}

func (m *MockWanikaniClient) StudyMaterials(
	ctx context.Context,
	subjectIDs []int64,
) wanikani.StudyMaterialSeq {
	if m.StudyMaterialsFn != nil {
		return m.StudyMaterialsFn(ctx, subjectIDs)
	}
	return &StudyMaterialSeq{}
}

func (m *MockWanikaniClient) Subjects(
	ctx context.Context,
	filter wanikani.SubjectFilter,
) wanikani.SubjectSeq {
	if m.SubjectsFn != nil {
		return m.SubjectsFn(ctx, filter)
	}
	return &SubjectSeq{}
}

// AssignmentSeq is an in-memory wanikani.AssignmentSeq fed from a slice.
// Err, when set, is returned once the items are exhausted, in place of
// the end-of-sequence sentinel. This lets tests inject a mid-batch
// failure after any number of successful items.
type AssignmentSeq struct {
	Items []*wanikani.AssignmentSnapshot
	Err   error

	cursor int
}

var _ wanikani.AssignmentSeq = (*AssignmentSeq)(nil)

func (s *AssignmentSeq) Next(ctx context.Context) (*wanikani.AssignmentSnapshot, error) {
	if s.cursor >= len(s.Items) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, wanikani.Done
	}
	item := s.Items[s.cursor]
	s.cursor++
	return item, nil
}

// StudyMaterialSeq is an in-memory wanikani.StudyMaterialSeq fed from a slice.
type StudyMaterialSeq struct {
	Items []*wanikani.StudyMaterialSnapshot
	Err   error

	cursor int
}

var _ wanikani.StudyMaterialSeq = (*StudyMaterialSeq)(nil)

func (s *StudyMaterialSeq) Next(ctx context.Context) (*wanikani.StudyMaterialSnapshot, error) {
	if s.cursor >= len(s.Items) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, wanikani.Done
	}
	item := s.Items[s.cursor]
	s.cursor++
	return item, nil
}

// SubjectSeq is an in-memory wanikani.SubjectSeq fed from a slice.
type SubjectSeq struct {
	Items []*wanikani.SubjectSnapshot
	Err   error

	cursor int
}

var _ wanikani.SubjectSeq = (*SubjectSeq)(nil)

func (s *SubjectSeq) Next(ctx context.Context) (*wanikani.SubjectSnapshot, error) {
	if s.cursor >= len(s.Items) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, wanikani.Done
	}
	item := s.Items[s.cursor]
	s.cursor++
	return item, nil
}

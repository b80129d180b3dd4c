package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kaniwani/kw-api/internal/platform/wanikani"
)

// httpClient is a thin binding of the wanikani.Client capability onto the
// provider's REST API. The sync engine only ever sees the interface; this
// binding lives in the composition root with the rest of the external
// collaborators.
type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ wanikani.Client = (*httpClient)(nil)

func newHTTPClient(baseURL, apiKey string) *httpClient {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// get fetches one resource or collection page and decodes it into out.
// A 401 maps to the invalid-credential sentinel.
func (c *httpClient) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Wanikani-Revision", "20170710")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return wanikani.ErrInvalidCredential
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("wanikani API returned status %d for %s", resp.StatusCode, rawURL)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type userEnvelope struct {
	DataUpdatedAt time.Time `json:"data_updated_at"`
	Data          struct {
		Username  string    `json:"username"`
		Level     int       `json:"level"`
		StartedAt time.Time `json:"started_at"`
	} `json:"data"`
}

func (c *httpClient) UserInformation(ctx context.Context) (*wanikani.ProfileSnapshot, error) {
	var envelope userEnvelope
	if err := c.get(ctx, c.baseURL+"/user", &envelope); err != nil {
		return nil, err
	}
	return &wanikani.ProfileSnapshot{
		Username:      envelope.Data.Username,
		Level:         envelope.Data.Level,
		StartedAt:     envelope.Data.StartedAt,
		DataUpdatedAt: envelope.DataUpdatedAt,
	}, nil
}

// collectionPage is the provider's paged collection envelope. Item
// decoding is deferred to the sequence consuming the page.
type collectionPage struct {
	Pages struct {
		NextURL *string `json:"next_url"`
	} `json:"pages"`
	Data []json.RawMessage `json:"data"`
}

// pageSeq walks a paged collection lazily: the first page is fetched on
// the first Next call, later pages as the buffer drains. singlePage stops
// after the first page.
type pageSeq struct {
	client     *httpClient
	nextURL    *string
	started    bool
	singlePage bool
	buf        []json.RawMessage
	err        error
}

func (s *pageSeq) next(ctx context.Context) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}

	for len(s.buf) == 0 {
		if s.started && (s.nextURL == nil || s.singlePage) {
			return nil, wanikani.Done
		}

		pageURL := *s.nextURL
		s.started = true

		var page collectionPage
		if err := s.client.get(ctx, pageURL, &page); err != nil {
			s.err = err
			return nil, err
		}
		s.nextURL = page.Pages.NextURL
		s.buf = page.Data
	}

	item := s.buf[0]
	s.buf = s.buf[1:]
	return item, nil
}

func (c *httpClient) newPageSeq(path string, params url.Values, singlePage bool) *pageSeq {
	first := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		first += "?" + encoded
	}
	return &pageSeq{client: c, nextURL: &first, singlePage: singlePage}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func joinInt64s(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

type assignmentEnvelope struct {
	DataUpdatedAt time.Time `json:"data_updated_at"`
	Data          struct {
		SubjectID   int64      `json:"subject_id"`
		SubjectType string     `json:"subject_type"`
		SRSStage    int        `json:"srs_stage"`
		BurnedAt    *time.Time `json:"burned_at"`
	} `json:"data"`
}

// srsStageNames maps the provider's numeric stage to the display name the
// original API used to carry alongside it.
var srsStageNames = map[int]string{
	0: "initiate",
	1: "apprentice_1", 2: "apprentice_2", 3: "apprentice_3", 4: "apprentice_4",
	5: "guru_1", 6: "guru_2",
	7: "master",
	8: "enlightened",
	9: "burned",
}

type assignmentSeq struct {
	pages *pageSeq
}

func (s *assignmentSeq) Next(ctx context.Context) (*wanikani.AssignmentSnapshot, error) {
	raw, err := s.pages.next(ctx)
	if err != nil {
		return nil, err
	}

	var envelope assignmentEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode assignment: %w", err)
	}

	return &wanikani.AssignmentSnapshot{
		SubjectID:     envelope.Data.SubjectID,
		SubjectType:   envelope.Data.SubjectType,
		SRSStage:      envelope.Data.SRSStage,
		SRSStageName:  srsStageNames[envelope.Data.SRSStage],
		BurnedAt:      envelope.Data.BurnedAt,
		DataUpdatedAt: envelope.DataUpdatedAt,
	}, nil
}

func (c *httpClient) Assignments(ctx context.Context, filter wanikani.AssignmentFilter) wanikani.AssignmentSeq {
	params := url.Values{}
	if len(filter.SubjectTypes) > 0 {
		params.Set("subject_types", strings.Join(filter.SubjectTypes, ","))
	}
	if len(filter.Levels) > 0 {
		params.Set("levels", joinInts(filter.Levels))
	}
	return &assignmentSeq{pages: c.newPageSeq("/assignments", params, !filter.FetchAll)}
}

type studyMaterialEnvelope struct {
	DataUpdatedAt time.Time `json:"data_updated_at"`
	Data          struct {
		SubjectID       int64    `json:"subject_id"`
		MeaningNote     string   `json:"meaning_note"`
		ReadingNote     string   `json:"reading_note"`
		MeaningSynonyms []string `json:"meaning_synonyms"`
	} `json:"data"`
}

type studyMaterialSeq struct {
	pages *pageSeq
}

func (s *studyMaterialSeq) Next(ctx context.Context) (*wanikani.StudyMaterialSnapshot, error) {
	raw, err := s.pages.next(ctx)
	if err != nil {
		return nil, err
	}

	var envelope studyMaterialEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode study material: %w", err)
	}

	return &wanikani.StudyMaterialSnapshot{
		SubjectID:       envelope.Data.SubjectID,
		MeaningNote:     envelope.Data.MeaningNote,
		ReadingNote:     envelope.Data.ReadingNote,
		MeaningSynonyms: envelope.Data.MeaningSynonyms,
		DataUpdatedAt:   envelope.DataUpdatedAt,
	}, nil
}

func (c *httpClient) StudyMaterials(ctx context.Context, subjectIDs []int64) wanikani.StudyMaterialSeq {
	params := url.Values{}
	if len(subjectIDs) > 0 {
		params.Set("subject_ids", joinInt64s(subjectIDs))
	}
	return &studyMaterialSeq{pages: c.newPageSeq("/study_materials", params, false)}
}

type subjectEnvelope struct {
	ID            int64     `json:"id"`
	DataUpdatedAt time.Time `json:"data_updated_at"`
	Data          struct {
		Characters string `json:"characters"`
		Level      int    `json:"level"`
		Meanings   []struct {
			Meaning string `json:"meaning"`
			Primary bool   `json:"primary"`
		} `json:"meanings"`
		AuxiliaryMeanings []struct {
			Meaning string `json:"meaning"`
			Type    string `json:"type"`
		} `json:"auxiliary_meanings"`
		Readings []struct {
			Reading *string `json:"reading"`
			Primary bool    `json:"primary"`
		} `json:"readings"`
		PartsOfSpeech []string `json:"parts_of_speech"`
	} `json:"data"`
}

type subjectSeq struct {
	pages *pageSeq
}

func (s *subjectSeq) Next(ctx context.Context) (*wanikani.SubjectSnapshot, error) {
	raw, err := s.pages.next(ctx)
	if err != nil {
		return nil, err
	}

	var envelope subjectEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode subject: %w", err)
	}

	snapshot := &wanikani.SubjectSnapshot{
		SubjectID:     envelope.ID,
		Characters:    envelope.Data.Characters,
		Level:         envelope.Data.Level,
		PartsOfSpeech: envelope.Data.PartsOfSpeech,
		DataUpdatedAt: envelope.DataUpdatedAt,
	}
	for _, m := range envelope.Data.Meanings {
		snapshot.Meanings = append(snapshot.Meanings, wanikani.Meaning{
			Text:    m.Meaning,
			Primary: m.Primary,
		})
	}
	for _, aux := range envelope.Data.AuxiliaryMeanings {
		if aux.Type == "whitelist" {
			snapshot.AuxiliaryMeanings = append(snapshot.AuxiliaryMeanings, aux.Meaning)
		}
	}
	for _, r := range envelope.Data.Readings {
		snapshot.Readings = append(snapshot.Readings, wanikani.SubjectReading{
			Reading: r.Reading,
			Primary: r.Primary,
		})
	}
	return snapshot, nil
}

func (c *httpClient) Subjects(ctx context.Context, filter wanikani.SubjectFilter) wanikani.SubjectSeq {
	params := url.Values{}
	if len(filter.Types) > 0 {
		params.Set("types", strings.Join(filter.Types, ","))
	}
	if len(filter.Levels) > 0 {
		params.Set("levels", joinInts(filter.Levels))
	}
	return &subjectSeq{pages: c.newPageSeq("/subjects", params, false)}
}

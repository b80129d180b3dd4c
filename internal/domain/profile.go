package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Level bounds as reported by the remote provider.
const (
	LevelMin = 1
	LevelMax = 60
)

// Profile-specific validation errors
var (
	ErrEmptyProfileID     = errors.New("profile ID cannot be empty")
	ErrEmptyProfileUserID = errors.New("profile user ID cannot be empty")
	ErrEmptyAPIKey        = errors.New("profile API key cannot be empty")
)

// WKStage is a named remote SRS stage grouping, used for the review
// inclusion thresholds on a profile.
type WKStage string

// Remote SRS stage groups, in ascending order.
const (
	WKStageApprentice  WKStage = "apprentice"
	WKStageGuru        WKStage = "guru"
	WKStageMaster      WKStage = "master"
	WKStageEnlightened WKStage = "enlightened"
	WKStageBurned      WKStage = "burned"
)

// Profile holds a user's remote credential and sync settings.
//
// Invariant: when APIValid is false no remote calls may be made on behalf
// of this profile until the key is revalidated by a successful profile sync.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`

	APIKey   string `json:"-"` // Never expose the remote credential in JSON
	APIValid bool   `json:"api_valid"`

	Level          int   `json:"level"`
	UnlockedLevels []int `json:"unlocked_levels"`

	// FollowMe opts the user into automatic level tracking: new remote
	// assignments create local reviews and level-ups unlock levels here.
	FollowMe bool `json:"follow_me"`

	MinWKStage WKStage `json:"minimum_wk_srs_level_to_review"`
	MaxWKStage WKStage `json:"maximum_wk_srs_level_to_review"`

	OnVacation   bool       `json:"on_vacation"`
	VacationDate *time.Time `json:"vacation_date,omitempty"`

	JoinedAt     *time.Time `json:"join_date,omitempty"`
	LastSyncedAt *time.Time `json:"last_wanikani_sync_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates a Profile for the given user with default sync settings.
// New profiles follow the remote provider and review everything up to burned.
func NewProfile(userID uuid.UUID, username, apiKey string) (*Profile, error) {
	now := time.Now().UTC()
	profile := &Profile{
		ID:         uuid.New(),
		UserID:     userID,
		Username:   username,
		APIKey:     apiKey,
		APIValid:   true,
		FollowMe:   true,
		MinWKStage: WKStageApprentice,
		MaxWKStage: WKStageBurned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the Profile has valid data.
// Returns an error if any field fails validation.
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProfileID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyProfileUserID
	}

	if p.APIKey == "" {
		return ErrEmptyAPIKey
	}

	if p.Level != 0 && (p.Level < LevelMin || p.Level > LevelMax) {
		return ErrInvalidLevel
	}

	return nil
}

// HasUnlocked reports whether the given level is in the unlocked set.
func (p *Profile) HasUnlocked(level int) bool {
	return slices.Contains(p.UnlockedLevels, level)
}

// UnlockLevel adds a level to the unlocked set if it is not already present.
// The set stays sorted so storage and comparison are deterministic.
func (p *Profile) UnlockLevel(level int) {
	if p.HasUnlocked(level) {
		return
	}
	p.UnlockedLevels = append(p.UnlockedLevels, level)
	slices.Sort(p.UnlockedLevels)
}

// HandleLevelChange records a level reported by the remote provider.
func (p *Profile) HandleLevelChange(newLevel int) {
	p.Level = newLevel
}

// RecentLevels returns the user's current level and the two preceding
// levels, intersected with the levels the user has actually unlocked.
// An empty result means an incremental sync has no remote work to do.
func (p *Profile) RecentLevels() []int {
	var levels []int
	for level := p.Level - 2; level <= p.Level; level++ {
		if p.HasUnlocked(level) {
			levels = append(levels, level)
		}
	}
	return levels
}

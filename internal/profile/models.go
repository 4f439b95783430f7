// internal/profile/models.go

package profile

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// User is a member profile plus its pairing status flags.
// The user identifier is externally assigned and stable.
type User struct {
	UserID            int64          `json:"user_id" db:"user_id"`
	Username          *string        `json:"username,omitempty" db:"username"`
	Name              *string        `json:"name,omitempty" db:"name"`
	Age               *int           `json:"age,omitempty" db:"age"`
	City              *string        `json:"city,omitempty" db:"city"`
	Profession        *string        `json:"profession,omitempty" db:"profession"`
	Interests         pq.StringArray `json:"interests" db:"interests"`
	Goals             pq.StringArray `json:"goals" db:"goals"`
	About             *string        `json:"about,omitempty" db:"about"`
	ContactLink       *string        `json:"contact_link,omitempty" db:"contact_link"`
	ContactPreference *string        `json:"contact_preference,omitempty" db:"contact_preference"`
	IsActive          bool           `json:"is_active" db:"is_active"`
	ProfileCompleted  bool           `json:"profile_completed" db:"profile_completed"`
	MatchesCount      int            `json:"matches_count" db:"matches_count"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	LastActive        time.Time      `json:"last_active" db:"last_active"`
}

// Question is a questionnaire prompt shown during onboarding
type Question struct {
	ID            int    `json:"id" db:"id"`
	QuestionText  string `json:"question_text" db:"question_text"`
	QuestionOrder int    `json:"question_order" db:"question_order"`
	IsActive      bool   `json:"is_active" db:"is_active"`
}

// Stats aggregates the counters exposed to the admin dashboard
type Stats struct {
	TotalUsers        int64 `json:"total_users" db:"total_users"`
	ActiveUsers       int64 `json:"active_users" db:"active_users"`
	CompletedProfiles int64 `json:"completed_profiles" db:"completed_profiles"`
	SuccessfulMatches int64 `json:"successful_matches" db:"successful_matches"`
	PendingMatches    int64 `json:"pending_matches" db:"pending_matches"`
}

// RegisterRequest creates or refreshes a user record on first contact
type RegisterRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	Username string `json:"username" validate:"omitempty,max=100"`
}

// UpdateProfileRequest is the typed questionnaire submission. Every updatable
// field is enumerated; list fields arrive as comma-delimited free text and are
// parsed into sets at this boundary only.
type UpdateProfileRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=100"`
	Age               *int    `json:"age" validate:"omitempty,gt=0"`
	City              *string `json:"city" validate:"omitempty,max=100"`
	Profession        *string `json:"profession" validate:"omitempty,max=200"`
	Interests         *string `json:"interests" validate:"omitempty,max=1000"`
	Goals             *string `json:"goals" validate:"omitempty,max=1000"`
	About             *string `json:"about" validate:"omitempty,max=2000"`
	ContactLink       *string `json:"contact_link" validate:"omitempty,max=300"`
	ContactPreference *string `json:"contact_preference" validate:"omitempty,max=100"`
}

// IsEmpty reports whether the submission carries no fields at all
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.Age == nil && r.City == nil &&
		r.Profession == nil && r.Interests == nil && r.Goals == nil &&
		r.About == nil && r.ContactLink == nil && r.ContactPreference == nil
}

// SetActiveRequest toggles pairing eligibility
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// ProfilePatch is the validated, parsed form of UpdateProfileRequest
// that the repository persists. Nil fields are left unchanged.
type ProfilePatch struct {
	Name              *string
	Age               *int
	City              *string
	Profession        *string
	Interests         []string
	Goals             []string
	About             *string
	ContactLink       *string
	ContactPreference *string
}

// ParseList splits comma-delimited free text into a trimmed list with
// case-insensitive duplicates collapsed. The first spelling wins.
func ParseList(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	var out []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, part)
	}

	return out
}

// DisplayName returns the best available handle for notifications
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "someone"
}

// Contact returns the address notifications are delivered to,
// empty when the user has not shared one.
func (u *User) Contact() string {
	if u.ContactLink != nil {
		return *u.ContactLink
	}
	return ""
}

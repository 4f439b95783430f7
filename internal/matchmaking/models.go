package matchmaking

import (
	"time"

	"github.com/lib/pq"

	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

// Match statuses
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Mode selects the pairing algorithm for a round
type Mode string

const (
	ModeSmart  Mode = "smart"
	ModeForced Mode = "forced"
)

// Action kinds recorded in the audit log
const (
	ActionAccepted = "accepted_match"
	ActionRejected = "rejected_match"
	ActionOutcome  = "outcome_recorded"
)

// ForcedSharedPlaceholder stands in for shared attributes when a pair
// was created without scoring.
const ForcedSharedPlaceholder = "chance pairing"

// Match is a proposed pairing between two users. The pair is stored in
// canonical order (user1_id < user2_id); acceptance is tracked per side.
type Match struct {
	ID              int64          `json:"id" db:"id"`
	User1ID         int64          `json:"user1_id" db:"user1_id"`
	User2ID         int64          `json:"user2_id" db:"user2_id"`
	Score           int            `json:"score" db:"score"`
	SharedInterests pq.StringArray `json:"shared_interests" db:"shared_interests"`
	IsForced        bool           `json:"is_forced" db:"is_forced"`
	Status          string         `json:"status" db:"status"`
	User1Accepted   bool           `json:"user1_accepted" db:"user1_accepted"`
	User2Accepted   bool           `json:"user2_accepted" db:"user2_accepted"`
	Succeeded       *bool          `json:"succeeded,omitempty" db:"succeeded"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	AcceptedAt      *time.Time     `json:"accepted_at,omitempty" db:"accepted_at"`
	DecidedAt       *time.Time     `json:"decided_at,omitempty" db:"decided_at"`

	// Joined field, populated for pending listings
	Partner *profile.User `json:"partner,omitempty" db:"-"`
}

// ChatCreated reports whether both sides have accepted
func (m *Match) ChatCreated() bool {
	return m.User1Accepted && m.User2Accepted
}

// Involves reports whether the given user is a side of this match
func (m *Match) Involves(userID int64) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherSide returns the counterpart of the given user
func (m *Match) OtherSide(userID int64) int64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// SideAccepted reports whether the given user's side has accepted
func (m *Match) SideAccepted(userID int64) bool {
	if m.User1ID == userID {
		return m.User1Accepted
	}
	return m.User2Accepted
}

// Round is advisory bookkeeping for one pairing run
type Round struct {
	ID             int64     `json:"id" db:"id"`
	Mode           string    `json:"mode" db:"mode"`
	RequestedFor   time.Time `json:"requested_for" db:"requested_for"`
	MatchesCreated int       `json:"matches_created" db:"matches_created"`
	Completed      bool      `json:"completed" db:"completed"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Action is one append-only audit log entry
type Action struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	ActionType   string    `json:"action_type" db:"action_type"`
	TargetUserID *int64    `json:"target_user_id,omitempty" db:"target_user_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RunRoundRequest triggers a pairing round
type RunRoundRequest struct {
	Mode string `json:"mode" validate:"required,oneof=smart forced"`
}

// CreatePairRequest creates one explicit pair, bypassing partner search
type CreatePairRequest struct {
	User1ID int64 `json:"user1_id" validate:"required,gt=0"`
	User2ID int64 `json:"user2_id" validate:"required,gt=0,nefield=User1ID"`
}

// OutcomeRequest records whether the conversation worked out
type OutcomeRequest struct {
	Succeeded bool `json:"succeeded"`
}

// BroadcastRequest sends a message to all active users
type BroadcastRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// BroadcastResult reports per-recipient delivery counts
type BroadcastResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// PollStatus is the lifecycle state of a poll.
type PollStatus string

// Poll status constants
const (
	PollActive           PollStatus = "active"
	PollConsensusReached PollStatus = "consensus_reached"
	PollExpired          PollStatus = "expired"
	PollCancelled        PollStatus = "cancelled"
)

// Terminal reports whether no further votes or transitions are accepted.
func (s PollStatus) Terminal() bool {
	return s != PollActive
}

// EventState is the lifecycle state of a hangout.
type EventState string

// Event state constants
const (
	EventOpen      EventState = "open"
	EventConfirmed EventState = "confirmed"
	EventCompleted EventState = "completed"
	EventCancelled EventState = "cancelled"
)

// Frequency is how often two friends want to hang out.
type Frequency string

// Frequency constants
const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Notification types
const (
	NotifyPlanConfirmed = "plan_confirmed"
)

// Domain types

type PollConfig struct {
	ThresholdPercent          int        `json:"threshold_percent"`
	MinParticipants           int        `json:"min_participants"`
	AllowMultipleVotesPerUser bool       `json:"allow_multiple_votes_per_user"`
	AllowNewOptions           bool       `json:"allow_new_options"`
	ExpiresAt                 *time.Time `json:"expires_at,omitempty"`
}

type Poll struct {
	ID              string       `json:"id"`
	EventID         string       `json:"event_id"`
	Options         []PollOption `json:"options"`
	Status          PollStatus   `json:"status"`
	Config          PollConfig   `json:"config"`
	WinningOptionID *string      `json:"winning_option_id,omitempty"`
	Revision        int64        `json:"revision"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiresAt       *time.Time   `json:"expires_at,omitempty"`
	FinalizedAt     *time.Time   `json:"finalized_at,omitempty"`
	ClosedAt        *time.Time   `json:"closed_at,omitempty"`
}

// Option returns the option with the given id.
func (p Poll) Option(optionID string) (PollOption, bool) {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return PollOption{}, false
}

// Expired reports whether the poll's deadline has passed at now.
func (p Poll) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

type PollOption struct {
	ID       string     `json:"id"`
	PollID   string     `json:"poll_id"`
	Text     string     `json:"text"`
	Order    int        `json:"order"` // lower wins ties
	Location *string    `json:"location,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	OrganizerID       string     `json:"organizer_id"`
	State             EventState `json:"state"`
	FinalizedOptionID *string    `json:"finalized_option_id,omitempty"`
	Location          *string    `json:"location,omitempty"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type Friendship struct {
	ID               string     `json:"id"`
	UserA            string     `json:"user_a"`
	UserB            string     `json:"user_b"`
	DesiredFrequency *Frequency `json:"desired_frequency,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// Request types

type CreateEventRequest struct {
	Title        string   `json:"title"`
	OrganizerID  string   `json:"organizer_id"`
	Participants []string `json:"participants"`
}

type AddParticipantRequest struct {
	UserID string `json:"user_id"`
}

type OptionInput struct {
	Text     string     `json:"text"`
	Location *string    `json:"location,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

type CreatePollRequest struct {
	Config  PollConfig    `json:"config"`
	Options []OptionInput `json:"options"`
}

type SubmitVoteRequest struct {
	OptionID string `json:"option_id"`
}

type CreateFriendshipRequest struct {
	UserA            string     `json:"user_a"`
	UserB            string     `json:"user_b"`
	DesiredFrequency *Frequency `json:"desired_frequency,omitempty"`
}

type SetFrequencyRequest struct {
	DesiredFrequency *Frequency `json:"desired_frequency"`
}

// Response types

type CreateEventResponse struct {
	EventID  string `json:"event_id"`
	AdminKey string `json:"admin_key"`
}

type EventWithRoster struct {
	Event        Event    `json:"event"`
	Participants []string `json:"participants"`
}

type CreatePollResponse struct {
	PollID  string       `json:"poll_id"`
	Options []PollOption `json:"options"`
}

type AddOptionResponse struct {
	Option PollOption `json:"option"`
}

type FinalizeResponse struct {
	Outcome         string      `json:"outcome"`
	WinningOptionID *string     `json:"winning_option_id,omitempty"`
	Status          *PollStatus `json:"status,omitempty"`
}

// CancelResponse reports the poll's status after a cancel request. Cancelled
// is false when the poll had already left ACTIVE.
type CancelResponse struct {
	Cancelled bool       `json:"cancelled"`
	Status    PollStatus `json:"status"`
}

type SubmitVoteResponse struct {
	Vote            Vote             `json:"vote"`
	FinalizeOutcome FinalizeResponse `json:"finalize_outcome"`
	Finalized       bool             `json:"finalized"` // this vote tipped the poll
}

type PollStateResponse struct {
	PollID           string         `json:"poll_id"`
	EventID          string         `json:"event_id"`
	Status           PollStatus     `json:"status"`
	Options          []PollOption   `json:"options"`
	VoteCounts       map[string]int `json:"vote_counts"`
	TotalVotes       int            `json:"total_votes"`
	DistinctVoters   int            `json:"distinct_voters"`
	ConsensusPercent float64        `json:"consensus_percent"`
	WinningOptionID  *string        `json:"winning_option_id,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
}

type CreateFriendshipResponse struct {
	FriendshipID string `json:"friendship_id"`
}

type ReminderStatusResponse struct {
	FriendshipID       string `json:"friendship_id"`
	Status             string `json:"status"`
	DaysSince          *int   `json:"days_since"`
	ThresholdDays      *int   `json:"threshold_days"`
	DaysUntilThreshold *int   `json:"days_until_threshold"`
	Summary            string `json:"summary"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

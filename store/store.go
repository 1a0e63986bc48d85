// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/hangouts/models"
)

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrOptionNotFound     = errors.New("option not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrPollClosed         = errors.New("poll is closed")
	// ErrAlreadyFinalized means a transition lost the race: the poll had already
	// left ACTIVE when the conditional write ran.
	ErrAlreadyFinalized = errors.New("poll already finalized")
	// ErrStaleRevision means the poll is still ACTIVE but accepted a vote after
	// the caller read it.
	ErrStaleRevision = errors.New("poll revision changed")
	ErrInvalidConfig = errors.New("invalid poll config")
	// ErrEventNotOpen means the event is already confirmed, completed or
	// cancelled and takes no new polls.
	ErrEventNotOpen = errors.New("event is not open")
	// ErrPollInProgress means the event already has an active or finalized
	// poll. An event has at most one decision poll at a time.
	ErrPollInProgress = errors.New("event already has an open poll")
)

// PollStore persists polls and votes. Status transitions are conditional
// writes from ACTIVE and are the only synchronization between callers.
type PollStore interface {
	// CreatePoll fails with ErrEventNotOpen or ErrPollInProgress unless the
	// event is open and its earlier polls all expired or were cancelled.
	CreatePoll(ctx context.Context, eventID string, cfg models.PollConfig, options []models.OptionInput, at time.Time) (models.Poll, error)
	AddOption(ctx context.Context, pollID string, option models.OptionInput, at time.Time) (models.PollOption, error)
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)
	GetVotes(ctx context.Context, pollID string) ([]models.Vote, error)
	UpsertVote(ctx context.Context, pollID, userID, optionID string, at time.Time) (models.Vote, error)

	MarkConsensusReached(ctx context.Context, pollID, winningOptionID string, revision int64, at time.Time) error
	MarkExpired(ctx context.Context, pollID string, at time.Time) error
	MarkCancelled(ctx context.Context, pollID string, at time.Time) error

	// ListExpiredActive returns ACTIVE polls whose deadline has passed at now.
	ListExpiredActive(ctx context.Context, now time.Time) ([]string, error)
	// ListUnstamped returns CONSENSUS_REACHED polls finalized at or before
	// olderThan whose event has no finalized option.
	ListUnstamped(ctx context.Context, olderThan time.Time) ([]string, error)
}

// EventStore is the hangout side of finalization.
type EventStore interface {
	CreateEvent(ctx context.Context, title, organizerID string, participants []string, at time.Time) (models.Event, error)
	GetEvent(ctx context.Context, eventID string) (models.Event, error)
	AddParticipant(ctx context.Context, eventID, userID string, at time.Time) error
	GetParticipantRoster(ctx context.Context, eventID string) ([]string, error)

	// StampFinalized records the winning option on the event and confirms it.
	// It reports false without error when the event was already stamped.
	StampFinalized(ctx context.Context, eventID string, option models.PollOption) (bool, error)
}

// FriendshipStore backs the reminder calculator.
type FriendshipStore interface {
	CreateFriendship(ctx context.Context, userA, userB string, freq *models.Frequency, at time.Time) (models.Friendship, error)
	GetFriendship(ctx context.Context, friendshipID string) (models.Friendship, error)
	SetFrequency(ctx context.Context, friendshipID string, freq *models.Frequency) error
	// LastHangout returns the latest start time at or before asOf of a
	// confirmed or completed event both users are on.
	LastHangout(ctx context.Context, userA, userB string, asOf time.Time) (*time.Time, error)
}

// Store is everything the service needs from persistence.
type Store interface {
	PollStore
	EventStore
	FriendshipStore
}

// ValidateConfig checks a poll configuration before it is stored.
func ValidateConfig(cfg models.PollConfig, optionCount int) error {
	if cfg.ThresholdPercent < 0 || cfg.ThresholdPercent > 100 {
		return fmt.Errorf("%w: threshold_percent must be between 0 and 100", ErrInvalidConfig)
	}
	if cfg.MinParticipants < 1 {
		return fmt.Errorf("%w: min_participants must be at least 1", ErrInvalidConfig)
	}
	if optionCount < 1 {
		return fmt.Errorf("%w: at least one option is required", ErrInvalidConfig)
	}
	return nil
}

// voteSlot keys the per-user uniqueness of votes: one slot per user in
// single-vote polls, one per (user, option) in multi-vote polls.
func voteSlot(cfg models.PollConfig, optionID string) string {
	if cfg.AllowMultipleVotesPerUser {
		return optionID
	}
	return ""
}

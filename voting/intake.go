// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/danielhkuo/hangouts/consensus"
	"github.com/danielhkuo/hangouts/finalize"
	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/store"
)

var (
	ErrNotParticipant = errors.New("user is not a participant of this event")
	ErrOptionsLocked  = errors.New("poll does not accept new options")
	ErrInvalidVote    = errors.New("invalid vote")
)

// Finalizer is the part of the coordinator intake depends on.
type Finalizer interface {
	AttemptFinalize(ctx context.Context, pollID string) (finalize.Outcome, error)
}

// Submission is what a voter gets back: their vote and what it did to the poll.
type Submission struct {
	Vote    models.Vote
	Outcome finalize.Outcome
}

// Tipped reports whether this vote was the one that finalized the poll.
func (s Submission) Tipped() bool {
	_, ok := s.Outcome.(finalize.Finalized)
	return ok
}

// Intake validates and records votes and options, then checks for consensus.
type Intake struct {
	polls     store.PollStore
	events    store.EventStore
	finalizer Finalizer
	now       func() time.Time
}

func NewIntake(polls store.PollStore, events store.EventStore, finalizer Finalizer) *Intake {
	return &Intake{
		polls:     polls,
		events:    events,
		finalizer: finalizer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the intake that reads time from now.
func (i *Intake) WithClock(now func() time.Time) *Intake {
	c := *i
	c.now = now
	return &c
}

// SubmitVote records userID's vote and runs a finalize check before returning.
// A repeat vote in a single-vote poll replaces the earlier one.
func (i *Intake) SubmitVote(ctx context.Context, pollID, userID, optionID string) (Submission, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(optionID) == "" {
		return Submission{}, fmt.Errorf("%w: user_id and option_id are required", ErrInvalidVote)
	}

	poll, err := i.requireParticipant(ctx, pollID, userID)
	if err != nil {
		return Submission{}, err
	}

	vote, err := i.polls.UpsertVote(ctx, poll.ID, userID, optionID, i.now())
	if err != nil {
		return Submission{}, err
	}
	slog.Info("vote recorded", "poll_id", pollID, "user_id", userID, "option_id", optionID)

	outcome, err := i.finalizer.AttemptFinalize(ctx, pollID)
	if err != nil {
		return Submission{Vote: vote}, fmt.Errorf("vote recorded but finalize check failed: %w", err)
	}
	return Submission{Vote: vote, Outcome: outcome}, nil
}

// AddOption appends a participant's proposal to an open poll that allows it.
func (i *Intake) AddOption(ctx context.Context, pollID, userID string, in models.OptionInput) (models.PollOption, error) {
	if strings.TrimSpace(in.Text) == "" {
		return models.PollOption{}, fmt.Errorf("%w: text is required", ErrInvalidVote)
	}

	poll, err := i.requireParticipant(ctx, pollID, userID)
	if err != nil {
		return models.PollOption{}, err
	}
	if poll.Status != models.PollActive {
		return models.PollOption{}, store.ErrPollClosed
	}
	if !poll.Config.AllowNewOptions {
		return models.PollOption{}, ErrOptionsLocked
	}

	opt, err := i.polls.AddOption(ctx, pollID, in, i.now())
	if err != nil {
		return models.PollOption{}, err
	}
	slog.Info("option added", "poll_id", pollID, "option_id", opt.ID, "user_id", userID)
	return opt, nil
}

func (i *Intake) requireParticipant(ctx context.Context, pollID, userID string) (models.Poll, error) {
	poll, err := i.polls.GetPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	roster, err := i.events.GetParticipantRoster(ctx, poll.EventID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to load roster: %w", err)
	}
	if !lo.Contains(roster, userID) {
		return models.Poll{}, ErrNotParticipant
	}
	return poll, nil
}

// PollState is the read-only projection shown to participants.
func (i *Intake) PollState(ctx context.Context, pollID string) (models.PollStateResponse, error) {
	poll, err := i.polls.GetPoll(ctx, pollID)
	if err != nil {
		return models.PollStateResponse{}, err
	}
	votes, err := i.polls.GetVotes(ctx, pollID)
	if err != nil {
		return models.PollStateResponse{}, fmt.Errorf("failed to load votes: %w", err)
	}
	roster, err := i.events.GetParticipantRoster(ctx, poll.EventID)
	if err != nil {
		return models.PollStateResponse{}, fmt.Errorf("failed to load roster: %w", err)
	}

	result := consensus.Evaluate(poll, votes, len(roster))
	state := models.PollStateResponse{
		PollID:           poll.ID,
		EventID:          poll.EventID,
		Status:           poll.Status,
		Options:          poll.Options,
		VoteCounts:       result.VoteCounts,
		TotalVotes:       result.TotalVotes,
		DistinctVoters:   result.DistinctVoters,
		ConsensusPercent: result.ConsensusPercent,
		ExpiresAt:        poll.ExpiresAt,
	}
	// Only a recorded decision is reported as the winner.
	if poll.Status == models.PollConsensusReached {
		state.WinningOptionID = poll.WinningOptionID
	}
	return state, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package finalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/hangouts/consensus"
	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/notify"
	"github.com/danielhkuo/hangouts/store"
)

const defaultMaxAttempts = 5

// ErrEventConflict means the poll's event was confirmed with a different
// option, so the poll's decision never reached it.
var ErrEventConflict = errors.New("event confirmed with another option")

// Coordinator moves polls out of ACTIVE. It keeps no state between calls;
// the store's conditional writes decide which caller wins a transition.
type Coordinator struct {
	polls          store.PollStore
	events         store.EventStore
	notifier       notify.Notifier
	now            func() time.Time
	reconcileGrace time.Duration
	maxAttempts    int
}

type Option func(*Coordinator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithReconcileGrace sets how long a finalized poll may stay unstamped before
// Reconcile repairs it.
func WithReconcileGrace(d time.Duration) Option {
	return func(c *Coordinator) { c.reconcileGrace = d }
}

// WithMaxAttempts bounds re-evaluations after a revision conflict.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func NewCoordinator(polls store.PollStore, events store.EventStore, notifier notify.Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		polls:       polls,
		events:      events,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AttemptFinalize evaluates the poll and, if consensus is newly reached,
// records it and stamps the event. Safe to call any number of times.
func (c *Coordinator) AttemptFinalize(ctx context.Context, pollID string) (Outcome, error) {
	var last Outcome
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		outcome, err := c.attempt(ctx, pollID)
		if errors.Is(err, store.ErrStaleRevision) {
			slog.Debug("poll changed during evaluation, retrying", "poll_id", pollID, "attempt", attempt+1)
			last = outcome
			continue
		}
		return outcome, err
	}
	// The vote that kept changing the revision runs its own finalize check.
	return last, nil
}

func (c *Coordinator) attempt(ctx context.Context, pollID string) (Outcome, error) {
	poll, err := c.polls.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.Status != models.PollActive {
		return terminalOutcome(poll), nil
	}

	roster, err := c.events.GetParticipantRoster(ctx, poll.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	votes, err := c.polls.GetVotes(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	result := consensus.Evaluate(poll, votes, len(roster))
	now := c.now()

	if result.Reached {
		winner := *result.WinningOptionID
		err := c.polls.MarkConsensusReached(ctx, pollID, winner, poll.Revision, now)
		switch {
		case errors.Is(err, store.ErrStaleRevision):
			return NotReady{Result: result}, err
		case errors.Is(err, store.ErrAlreadyFinalized):
			slog.Debug("lost finalize race", "poll_id", pollID)
			return c.lostRace(ctx, pollID)
		case err != nil:
			return nil, err
		}

		slog.Info("poll finalized",
			"poll_id", pollID,
			"event_id", poll.EventID,
			"option_id", winner,
			"consensus_percent", result.ConsensusPercent,
		)

		option, _ := poll.Option(winner)
		err = c.publish(ctx, poll, option, roster)
		switch {
		case errors.Is(err, ErrEventConflict):
			slog.Error("finalized poll does not match its event", "poll_id", pollID, "event_id", poll.EventID, "error", err)
		case err != nil:
			// The decision is durable; Reconcile retries the stamp.
			slog.Error("failed to stamp finalized event", "poll_id", pollID, "event_id", poll.EventID, "error", err)
		}
		return Finalized{WinningOptionID: winner, Result: result}, nil
	}

	if poll.Expired(now) {
		err := c.polls.MarkExpired(ctx, pollID, now)
		if errors.Is(err, store.ErrAlreadyFinalized) {
			return c.lostRace(ctx, pollID)
		}
		if err != nil {
			return nil, err
		}
		slog.Info("poll expired", "poll_id", pollID, "event_id", poll.EventID, "distinct_voters", result.DistinctVoters)
		return Expired{}, nil
	}

	return NotReady{Result: result}, nil
}

func (c *Coordinator) lostRace(ctx context.Context, pollID string) (Outcome, error) {
	poll, err := c.polls.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return terminalOutcome(poll), nil
}

func terminalOutcome(poll models.Poll) Outcome {
	if poll.Status == models.PollConsensusReached {
		return AlreadyFinalized{WinningOptionID: poll.WinningOptionID}
	}
	return AlreadyTerminal{Status: poll.Status}
}

// publish stamps the event and notifies the roster. Only the caller whose
// stamp applied sends notifications.
func (c *Coordinator) publish(ctx context.Context, poll models.Poll, option models.PollOption, roster []string) error {
	stamped, err := c.events.StampFinalized(ctx, poll.EventID, option)
	if err != nil {
		return err
	}
	event, err := c.events.GetEvent(ctx, poll.EventID)
	if !stamped {
		if err != nil {
			return fmt.Errorf("failed to load stamped event: %w", err)
		}
		if event.FinalizedOptionID == nil || *event.FinalizedOptionID != option.ID {
			return fmt.Errorf("%w: poll %s chose %s", ErrEventConflict, poll.ID, option.ID)
		}
		slog.Debug("event already stamped", "event_id", poll.EventID)
		return nil
	}
	if err != nil {
		slog.Warn("failed to load event for notification", "event_id", poll.EventID, "error", err)
		event = models.Event{ID: poll.EventID}
	}

	now := c.now()

	payload := map[string]any{
		"event_id":    poll.EventID,
		"event_title": event.Title,
		"poll_id":     poll.ID,
		"option_id":   option.ID,
		"option_text": option.Text,
		"message":     confirmationMessage(event, option, now),
	}
	if option.Location != nil {
		payload["location"] = *option.Location
	}
	if option.StartsAt != nil {
		payload["starts_at"] = option.StartsAt.Format(time.RFC3339)
	}

	for _, userID := range roster {
		n := models.Notification{
			UserID:    userID,
			Type:      models.NotifyPlanConfirmed,
			Payload:   payload,
			CreatedAt: now,
		}
		if err := c.notifier.Notify(ctx, n); err != nil {
			slog.Warn("failed to notify participant", "event_id", poll.EventID, "user_id", userID, "error", err)
		}
	}
	return nil
}

func confirmationMessage(event models.Event, option models.PollOption, now time.Time) string {
	title := event.Title
	if title == "" {
		title = "Your hangout"
	}
	msg := fmt.Sprintf("%s is on: %s", title, option.Text)
	if option.Location != nil {
		msg += " at " + *option.Location
	}
	if option.StartsAt != nil {
		msg += " (" + humanize.RelTime(*option.StartsAt, now, "ago", "from now") + ")"
	}
	return msg
}

// Cancel closes an ACTIVE poll without a winner. Losing the race to another
// transition returns the poll's current status and store.ErrPollClosed.
func (c *Coordinator) Cancel(ctx context.Context, pollID string) (models.PollStatus, error) {
	err := c.polls.MarkCancelled(ctx, pollID, c.now())
	if errors.Is(err, store.ErrAlreadyFinalized) {
		poll, err := c.polls.GetPoll(ctx, pollID)
		if err != nil {
			return "", err
		}
		return poll.Status, store.ErrPollClosed
	}
	if err != nil {
		return "", err
	}
	slog.Info("poll cancelled", "poll_id", pollID)
	return models.PollCancelled, nil
}

// SweepExpired runs AttemptFinalize on every ACTIVE poll past its deadline
// and returns how many it expired.
func (c *Coordinator) SweepExpired(ctx context.Context) (int, error) {
	ids, err := c.polls.ListExpiredActive(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired polls: %w", err)
	}

	var errs []error
	expired := 0
	for _, id := range ids {
		outcome, err := c.AttemptFinalize(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("poll %s: %w", id, err))
			continue
		}
		if _, ok := outcome.(Expired); ok {
			expired++
		}
	}
	return expired, errors.Join(errs...)
}

// Reconcile repairs polls that reached consensus but whose event was never
// stamped. It re-runs only the stamp and notify step, never the evaluation.
func (c *Coordinator) Reconcile(ctx context.Context) (int, error) {
	ids, err := c.polls.ListUnstamped(ctx, c.now().Add(-c.reconcileGrace))
	if err != nil {
		return 0, fmt.Errorf("failed to list unstamped polls: %w", err)
	}

	var errs []error
	repaired := 0
	for _, id := range ids {
		if err := c.reconcileOne(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("poll %s: %w", id, err))
			continue
		}
		repaired++
	}
	return repaired, errors.Join(errs...)
}

func (c *Coordinator) reconcileOne(ctx context.Context, pollID string) error {
	poll, err := c.polls.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.Status != models.PollConsensusReached || poll.WinningOptionID == nil {
		return fmt.Errorf("poll is %s without a winner", poll.Status)
	}
	option, ok := poll.Option(*poll.WinningOptionID)
	if !ok {
		return store.ErrOptionNotFound
	}
	roster, err := c.events.GetParticipantRoster(ctx, poll.EventID)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}
	if err := c.publish(ctx, poll, option, roster); err != nil {
		return err
	}
	slog.Info("finalized event reconciled", "poll_id", pollID, "event_id", poll.EventID, "option_id", option.ID)
	return nil
}

// Sweep runs SweepExpired then Reconcile, logging rather than returning
// failures so a periodic caller keeps going.
func (c *Coordinator) Sweep(ctx context.Context) {
	expired, err := c.SweepExpired(ctx)
	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
	}
	repaired, err := c.Reconcile(ctx)
	if err != nil {
		slog.Error("reconciliation sweep failed", "error", err)
	}
	if expired > 0 || repaired > 0 {
		slog.Info("sweep finished", "expired", expired, "reconciled", repaired)
	}
}

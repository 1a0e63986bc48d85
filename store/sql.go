// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/danielhkuo/hangouts/models"
)

// SQLStore implements Store on database/sql. Queries use $N placeholders,
// which both lib/pq and modernc.org/sqlite accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const pollColumns = `id, event_id, status, threshold_percent, min_participants,
	allow_multiple_votes, allow_new_options, expires_at, winning_option_id,
	revision, created_at, finalized_at, closed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (models.Poll, error) {
	var p models.Poll
	var status string
	err := row.Scan(
		&p.ID, &p.EventID, &status, &p.Config.ThresholdPercent, &p.Config.MinParticipants,
		&p.Config.AllowMultipleVotesPerUser, &p.Config.AllowNewOptions, &p.ExpiresAt, &p.WinningOptionID,
		&p.Revision, &p.CreatedAt, &p.FinalizedAt, &p.ClosedAt,
	)
	if err != nil {
		return models.Poll{}, err
	}
	p.Status = models.PollStatus(status)
	p.Config.ExpiresAt = p.ExpiresAt
	return p, nil
}

func (s *SQLStore) CreatePoll(ctx context.Context, eventID string, cfg models.PollConfig, options []models.OptionInput, at time.Time) (models.Poll, error) {
	if err := ValidateConfig(cfg, len(options)); err != nil {
		return models.Poll{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockOpenEvent(ctx, tx, eventID); err != nil {
		return models.Poll{}, err
	}

	poll := models.Poll{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Status:    models.PollActive,
		Config:    cfg,
		CreatedAt: at,
		ExpiresAt: cfg.ExpiresAt,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, event_id, status, threshold_percent, min_participants,
			allow_multiple_votes, allow_new_options, expires_at, revision, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9)
	`, poll.ID, eventID, string(models.PollActive), cfg.ThresholdPercent, cfg.MinParticipants,
		cfg.AllowMultipleVotesPerUser, cfg.AllowNewOptions, cfg.ExpiresAt, at)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	for i, in := range options {
		opt := newOption(poll.ID, in, i)
		if err := insertOption(ctx, tx, opt); err != nil {
			return models.Poll{}, err
		}
		poll.Options = append(poll.Options, opt)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to commit poll: %w", err)
	}
	return poll, nil
}

// lockOpenEvent takes the event row for the rest of tx and checks that it can
// take a new poll.
func lockOpenEvent(ctx context.Context, tx *sql.Tx, eventID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE event SET state = state WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to lock event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to lock event: %w", err)
	}
	if n == 0 {
		return ErrEventNotFound
	}

	var state string
	var open int
	err = tx.QueryRowContext(ctx, `
		SELECT e.state,
			(SELECT COUNT(*) FROM poll p WHERE p.event_id = e.id AND p.status IN ($2, $3))
		FROM event e WHERE e.id = $1
	`, eventID, string(models.PollActive), string(models.PollConsensusReached)).Scan(&state, &open)
	if err != nil {
		return fmt.Errorf("failed to query event: %w", err)
	}
	if models.EventState(state) != models.EventOpen {
		return ErrEventNotOpen
	}
	if open > 0 {
		return ErrPollInProgress
	}
	return nil
}

func insertOption(ctx context.Context, tx *sql.Tx, opt models.PollOption) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO poll_option (id, poll_id, text, sort_order, location, starts_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, opt.ID, opt.PollID, opt.Text, opt.Order, opt.Location, opt.StartsAt)
	if err != nil {
		return fmt.Errorf("failed to insert option: %w", err)
	}
	return nil
}

// lockActivePoll bumps the revision of an ACTIVE, unexpired poll inside tx.
// The write takes the row lock, so a concurrent status transition waits for
// tx to finish and then sees the new revision.
func lockActivePoll(ctx context.Context, tx *sql.Tx, pollID string, at time.Time) (models.Poll, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE poll SET revision = revision + 1
		WHERE id = $1 AND status = $2
	`, pollID, string(models.PollActive))
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to lock poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to lock poll: %w", err)
	}

	poll, err := scanPoll(tx.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM poll WHERE id = $1`, pollID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	if n == 0 || poll.Expired(at) {
		return models.Poll{}, ErrPollClosed
	}
	return poll, nil
}

func (s *SQLStore) AddOption(ctx context.Context, pollID string, in models.OptionInput, at time.Time) (models.PollOption, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PollOption{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := lockActivePoll(ctx, tx, pollID, at); err != nil {
		return models.PollOption{}, err
	}

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order), -1) + 1 FROM poll_option WHERE poll_id = $1
	`, pollID).Scan(&next)
	if err != nil {
		return models.PollOption{}, fmt.Errorf("failed to query option order: %w", err)
	}

	opt := newOption(pollID, in, next)
	if err := insertOption(ctx, tx, opt); err != nil {
		return models.PollOption{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.PollOption{}, fmt.Errorf("failed to commit option: %w", err)
	}
	return opt, nil
}

func (s *SQLStore) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	poll, err := scanPoll(s.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM poll WHERE id = $1`, pollID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, text, sort_order, location, starts_at
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY sort_order, id
	`, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.PollOption{}
	for rows.Next() {
		var opt models.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Order, &opt.Location, &opt.StartsAt); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to read options: %w", err)
	}
	return poll, nil
}

func (s *SQLStore) GetVotes(ctx context.Context, pollID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, option_id, user_id, created_at, updated_at
		FROM vote
		WHERE poll_id = $1
		ORDER BY created_at, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.OptionID, &v.UserID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}
	return votes, nil
}

func (s *SQLStore) UpsertVote(ctx context.Context, pollID, userID, optionID string, at time.Time) (models.Vote, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	poll, err := lockActivePoll(ctx, tx, pollID, at)
	if err != nil {
		return models.Vote{}, err
	}

	var belongs bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll_option WHERE id = $1 AND poll_id = $2)
	`, optionID, pollID).Scan(&belongs)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query option: %w", err)
	}
	if !belongs {
		return models.Vote{}, ErrOptionNotFound
	}

	slot := voteSlot(poll.Config, optionID)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, option_id, user_id, slot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (poll_id, user_id, slot)
		DO UPDATE SET option_id = excluded.option_id, updated_at = excluded.updated_at
	`, uuid.NewString(), pollID, optionID, userID, slot, at, at)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to upsert vote: %w", err)
	}

	vote := models.Vote{PollID: pollID, OptionID: optionID, UserID: userID, UpdatedAt: at}
	err = tx.QueryRowContext(ctx, `
		SELECT id, created_at FROM vote WHERE poll_id = $1 AND user_id = $2 AND slot = $3
	`, pollID, userID, slot).Scan(&vote.ID, &vote.CreatedAt)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to read vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, fmt.Errorf("failed to commit vote: %w", err)
	}
	return vote, nil
}

func (s *SQLStore) MarkConsensusReached(ctx context.Context, pollID, winningOptionID string, revision int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll
		SET status = $1, winning_option_id = $2, finalized_at = $3, closed_at = $4
		WHERE id = $5 AND status = $6 AND revision = $7
	`, string(models.PollConsensusReached), winningOptionID, at, at, pollID, string(models.PollActive), revision)
	if err != nil {
		return fmt.Errorf("failed to mark consensus: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark consensus: %w", err)
	}
	if n == 1 {
		return nil
	}

	var status string
	var current int64
	err = s.db.QueryRowContext(ctx, `SELECT status, revision FROM poll WHERE id = $1`, pollID).Scan(&status, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPollNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if models.PollStatus(status) != models.PollActive {
		return ErrAlreadyFinalized
	}
	return ErrStaleRevision
}

func (s *SQLStore) MarkExpired(ctx context.Context, pollID string, at time.Time) error {
	return s.closeActive(ctx, pollID, models.PollExpired, at)
}

func (s *SQLStore) MarkCancelled(ctx context.Context, pollID string, at time.Time) error {
	return s.closeActive(ctx, pollID, models.PollCancelled, at)
}

func (s *SQLStore) closeActive(ctx context.Context, pollID string, status models.PollStatus, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET status = $1, closed_at = $2
		WHERE id = $3 AND status = $4
	`, string(status), at, pollID, string(models.PollActive))
	if err != nil {
		return fmt.Errorf("failed to mark poll %s: %w", status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark poll %s: %w", status, err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)`, pollID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if !exists {
		return ErrPollNotFound
	}
	return ErrAlreadyFinalized
}

// Deadline comparisons happen in Go; SQLite stores timestamps as text.
func (s *SQLStore) ListExpiredActive(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expires_at FROM poll
		WHERE status = $1 AND expires_at IS NOT NULL
	`, string(models.PollActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring polls: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var expiresAt time.Time
		if err := rows.Scan(&id, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		if !now.Before(expiresAt) {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *SQLStore) ListUnstamped(ctx context.Context, olderThan time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.finalized_at
		FROM poll p
		JOIN event e ON e.id = p.event_id
		WHERE p.status = $1 AND p.finalized_at IS NOT NULL AND e.finalized_option_id IS NULL
	`, string(models.PollConsensusReached))
	if err != nil {
		return nil, fmt.Errorf("failed to query unstamped polls: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var finalizedAt time.Time
		if err := rows.Scan(&id, &finalizedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		if !finalizedAt.After(olderThan) {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *SQLStore) CreateEvent(ctx context.Context, title, organizerID string, participants []string, at time.Time) (models.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       title,
		OrganizerID: organizerID,
		State:       models.EventOpen,
		CreatedAt:   at,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO event (id, title, organizer_id, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, title, organizerID, string(models.EventOpen), at)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}

	for _, userID := range lo.Uniq(append([]string{organizerID}, participants...)) {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_participant (event_id, user_id, joined_at)
			VALUES ($1, $2, $3)
		`, event.ID, userID, at)
		if err != nil {
			return models.Event{}, fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("failed to commit event: %w", err)
	}
	return event, nil
}

func (s *SQLStore) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	var e models.Event
	var state string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, organizer_id, state, finalized_option_id, location, starts_at, created_at
		FROM event
		WHERE id = $1
	`, eventID).Scan(&e.ID, &e.Title, &e.OrganizerID, &state, &e.FinalizedOptionID, &e.Location, &e.StartsAt, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to query event: %w", err)
	}
	e.State = models.EventState(state)
	return e, nil
}

func (s *SQLStore) eventExists(ctx context.Context, eventID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM event WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query event: %w", err)
	}
	if !exists {
		return ErrEventNotFound
	}
	return nil
}

func (s *SQLStore) AddParticipant(ctx context.Context, eventID, userID string, at time.Time) error {
	if err := s.eventExists(ctx, eventID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_participant (event_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, userID, at)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (s *SQLStore) GetParticipantRoster(ctx context.Context, eventID string) ([]string, error) {
	if err := s.eventExists(ctx, eventID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM event_participant
		WHERE event_id = $1
		ORDER BY joined_at, user_id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	roster := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		roster = append(roster, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return roster, nil
}

func (s *SQLStore) StampFinalized(ctx context.Context, eventID string, option models.PollOption) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE event
		SET finalized_option_id = $1, state = $2,
		    location = COALESCE($3, location), starts_at = COALESCE($4, starts_at)
		WHERE id = $5 AND finalized_option_id IS NULL
	`, option.ID, string(models.EventConfirmed), option.Location, option.StartsAt, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to stamp event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to stamp event: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	if err := s.eventExists(ctx, eventID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *SQLStore) CreateFriendship(ctx context.Context, userA, userB string, freq *models.Frequency, at time.Time) (models.Friendship, error) {
	f := models.Friendship{
		ID:               uuid.NewString(),
		UserA:            userA,
		UserB:            userB,
		DesiredFrequency: freq,
		CreatedAt:        at,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friendship (id, user_a, user_b, desired_frequency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, userA, userB, frequencyValue(freq), at)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("failed to insert friendship: %w", err)
	}
	return f, nil
}

func (s *SQLStore) GetFriendship(ctx context.Context, friendshipID string) (models.Friendship, error) {
	var f models.Friendship
	var freq sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_a, user_b, desired_frequency, created_at
		FROM friendship
		WHERE id = $1
	`, friendshipID).Scan(&f.ID, &f.UserA, &f.UserB, &freq, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friendship{}, ErrFriendshipNotFound
	}
	if err != nil {
		return models.Friendship{}, fmt.Errorf("failed to query friendship: %w", err)
	}
	if freq.Valid {
		fr := models.Frequency(freq.String)
		f.DesiredFrequency = &fr
	}
	return f, nil
}

func (s *SQLStore) SetFrequency(ctx context.Context, friendshipID string, freq *models.Frequency) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE friendship SET desired_frequency = $1 WHERE id = $2
	`, frequencyValue(freq), friendshipID)
	if err != nil {
		return fmt.Errorf("failed to update friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update friendship: %w", err)
	}
	if n == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

func (s *SQLStore) LastHangout(ctx context.Context, userA, userB string, asOf time.Time) (*time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.starts_at
		FROM event e
		JOIN event_participant a ON a.event_id = e.id AND a.user_id = $1
		JOIN event_participant b ON b.event_id = e.id AND b.user_id = $2
		WHERE e.state IN ($3, $4) AND e.starts_at IS NOT NULL
	`, userA, userB, string(models.EventConfirmed), string(models.EventCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query shared events: %w", err)
	}
	defer rows.Close()

	var last *time.Time
	for rows.Next() {
		var startsAt time.Time
		if err := rows.Scan(&startsAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if startsAt.After(asOf) {
			continue
		}
		if last == nil || startsAt.After(*last) {
			t := startsAt
			last = &t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return last, nil
}

// Notify writes a notification to the outbox table.
func (s *SQLStore) Notify(ctx context.Context, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification (id, user_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.UserID, n.Type, string(payload), n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// Notifications returns the outbox rows addressed to userID, oldest first.
func (s *SQLStore) Notifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, payload, created_at
		FROM notification
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var payload string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &payload, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &n.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode notification payload: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	return out, nil
}

func frequencyValue(freq *models.Frequency) any {
	if freq == nil {
		return nil
	}
	return string(*freq)
}

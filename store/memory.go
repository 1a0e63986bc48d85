// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/danielhkuo/hangouts/models"
)

type memVote struct {
	vote models.Vote
	slot string
}

// MemoryStore is an in-process Store. Every method holds one mutex, which makes
// each conditional write trivially atomic.
type MemoryStore struct {
	mu            sync.Mutex
	polls         map[string]*models.Poll
	votes         map[string][]*memVote
	events        map[string]*models.Event
	participants  map[string][]string
	friendships   map[string]*models.Friendship
	notifications []models.Notification
}

// NewMemoryStore initializes an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls:        make(map[string]*models.Poll),
		votes:        make(map[string][]*memVote),
		events:       make(map[string]*models.Event),
		participants: make(map[string][]string),
		friendships:  make(map[string]*models.Friendship),
	}
}

func (s *MemoryStore) CreatePoll(ctx context.Context, eventID string, cfg models.PollConfig, options []models.OptionInput, at time.Time) (models.Poll, error) {
	if err := ValidateConfig(cfg, len(options)); err != nil {
		return models.Poll{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return models.Poll{}, ErrEventNotFound
	}
	if event.State != models.EventOpen {
		return models.Poll{}, ErrEventNotOpen
	}
	for _, p := range s.polls {
		if p.EventID == eventID && (p.Status == models.PollActive || p.Status == models.PollConsensusReached) {
			return models.Poll{}, ErrPollInProgress
		}
	}

	poll := &models.Poll{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Status:    models.PollActive,
		Config:    cfg,
		CreatedAt: at,
		ExpiresAt: cfg.ExpiresAt,
	}
	for i, in := range options {
		poll.Options = append(poll.Options, newOption(poll.ID, in, i))
	}
	s.polls[poll.ID] = poll
	return clonePoll(poll), nil
}

func (s *MemoryStore) AddOption(ctx context.Context, pollID string, in models.OptionInput, at time.Time) (models.PollOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return models.PollOption{}, ErrPollNotFound
	}
	if poll.Status != models.PollActive || poll.Expired(at) {
		return models.PollOption{}, ErrPollClosed
	}

	order := 0
	for _, opt := range poll.Options {
		if opt.Order >= order {
			order = opt.Order + 1
		}
	}
	opt := newOption(poll.ID, in, order)
	poll.Options = append(poll.Options, opt)
	poll.Revision++
	return opt, nil
}

func (s *MemoryStore) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return models.Poll{}, ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (s *MemoryStore) GetVotes(ctx context.Context, pollID string) ([]models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[pollID]; !ok {
		return nil, ErrPollNotFound
	}
	votes := make([]models.Vote, 0, len(s.votes[pollID]))
	for _, mv := range s.votes[pollID] {
		votes = append(votes, mv.vote)
	}
	return votes, nil
}

func (s *MemoryStore) UpsertVote(ctx context.Context, pollID, userID, optionID string, at time.Time) (models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return models.Vote{}, ErrPollNotFound
	}
	if poll.Status != models.PollActive || poll.Expired(at) {
		return models.Vote{}, ErrPollClosed
	}
	if _, ok := poll.Option(optionID); !ok {
		return models.Vote{}, ErrOptionNotFound
	}

	slot := voteSlot(poll.Config, optionID)
	existing, found := lo.Find(s.votes[pollID], func(mv *memVote) bool {
		return mv.vote.UserID == userID && mv.slot == slot
	})
	poll.Revision++
	if found {
		existing.vote.OptionID = optionID
		existing.vote.UpdatedAt = at
		return existing.vote, nil
	}

	mv := &memVote{
		vote: models.Vote{
			ID:        uuid.NewString(),
			PollID:    pollID,
			OptionID:  optionID,
			UserID:    userID,
			CreatedAt: at,
			UpdatedAt: at,
		},
		slot: slot,
	}
	s.votes[pollID] = append(s.votes[pollID], mv)
	return mv.vote, nil
}

func (s *MemoryStore) MarkConsensusReached(ctx context.Context, pollID, winningOptionID string, revision int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return ErrPollNotFound
	}
	if poll.Status != models.PollActive {
		return ErrAlreadyFinalized
	}
	if poll.Revision != revision {
		return ErrStaleRevision
	}
	if _, ok := poll.Option(winningOptionID); !ok {
		return ErrOptionNotFound
	}

	winner := winningOptionID
	poll.Status = models.PollConsensusReached
	poll.WinningOptionID = &winner
	poll.FinalizedAt = &at
	poll.ClosedAt = &at
	return nil
}

func (s *MemoryStore) MarkExpired(ctx context.Context, pollID string, at time.Time) error {
	return s.closeActive(pollID, models.PollExpired, at)
}

func (s *MemoryStore) MarkCancelled(ctx context.Context, pollID string, at time.Time) error {
	return s.closeActive(pollID, models.PollCancelled, at)
}

func (s *MemoryStore) closeActive(pollID string, status models.PollStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return ErrPollNotFound
	}
	if poll.Status != models.PollActive {
		return ErrAlreadyFinalized
	}
	poll.Status = status
	poll.ClosedAt = &at
	return nil
}

func (s *MemoryStore) ListExpiredActive(ctx context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, poll := range s.polls {
		if poll.Status == models.PollActive && poll.Expired(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) ListUnstamped(ctx context.Context, olderThan time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, poll := range s.polls {
		if poll.Status != models.PollConsensusReached || poll.FinalizedAt == nil || poll.FinalizedAt.After(olderThan) {
			continue
		}
		if event, ok := s.events[poll.EventID]; ok && event.FinalizedOptionID == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) CreateEvent(ctx context.Context, title, organizerID string, participants []string, at time.Time) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       title,
		OrganizerID: organizerID,
		State:       models.EventOpen,
		CreatedAt:   at,
	}
	s.events[event.ID] = event
	s.participants[event.ID] = lo.Uniq(append([]string{organizerID}, participants...))
	return *event, nil
}

func (s *MemoryStore) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return models.Event{}, ErrEventNotFound
	}
	return *event, nil
}

func (s *MemoryStore) AddParticipant(ctx context.Context, eventID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[eventID]; !ok {
		return ErrEventNotFound
	}
	if !lo.Contains(s.participants[eventID], userID) {
		s.participants[eventID] = append(s.participants[eventID], userID)
	}
	return nil
}

func (s *MemoryStore) GetParticipantRoster(ctx context.Context, eventID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[eventID]; !ok {
		return nil, ErrEventNotFound
	}
	return append([]string(nil), s.participants[eventID]...), nil
}

func (s *MemoryStore) StampFinalized(ctx context.Context, eventID string, option models.PollOption) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return false, ErrEventNotFound
	}
	if event.FinalizedOptionID != nil {
		return false, nil
	}
	optionID := option.ID
	event.FinalizedOptionID = &optionID
	event.State = models.EventConfirmed
	if option.Location != nil {
		event.Location = option.Location
	}
	if option.StartsAt != nil {
		event.StartsAt = option.StartsAt
	}
	return true, nil
}

func (s *MemoryStore) CreateFriendship(ctx context.Context, userA, userB string, freq *models.Frequency, at time.Time) (models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &models.Friendship{
		ID:               uuid.NewString(),
		UserA:            userA,
		UserB:            userB,
		DesiredFrequency: freq,
		CreatedAt:        at,
	}
	s.friendships[f.ID] = f
	return *f, nil
}

func (s *MemoryStore) GetFriendship(ctx context.Context, friendshipID string) (models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[friendshipID]
	if !ok {
		return models.Friendship{}, ErrFriendshipNotFound
	}
	return *f, nil
}

func (s *MemoryStore) SetFrequency(ctx context.Context, friendshipID string, freq *models.Frequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[friendshipID]
	if !ok {
		return ErrFriendshipNotFound
	}
	f.DesiredFrequency = freq
	return nil
}

func (s *MemoryStore) LastHangout(ctx context.Context, userA, userB string, asOf time.Time) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *time.Time
	for id, event := range s.events {
		if event.State != models.EventConfirmed && event.State != models.EventCompleted {
			continue
		}
		if event.StartsAt == nil || event.StartsAt.After(asOf) {
			continue
		}
		roster := s.participants[id]
		if !lo.Contains(roster, userA) || !lo.Contains(roster, userB) {
			continue
		}
		if last == nil || event.StartsAt.After(*last) {
			t := *event.StartsAt
			last = &t
		}
	}
	return last, nil
}

// Notify appends to the in-memory outbox.
func (s *MemoryStore) Notify(ctx context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.notifications = append(s.notifications, n)
	return nil
}

// Notifications returns a copy of the outbox.
func (s *MemoryStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Notification(nil), s.notifications...)
}

func newOption(pollID string, in models.OptionInput, order int) models.PollOption {
	return models.PollOption{
		ID:       uuid.NewString(),
		PollID:   pollID,
		Text:     in.Text,
		Order:    order,
		Location: in.Location,
		StartsAt: in.StartsAt,
	}
}

func clonePoll(p *models.Poll) models.Poll {
	c := *p
	c.Options = append([]models.PollOption(nil), p.Options...)
	return c
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reminder

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/store"
)

// Status values
const (
	StatusNoGoal      = "no-goal"
	StatusOnTrack     = "on-track"
	StatusApproaching = "approaching"
	StatusOverdue     = "overdue"
)

// ApproachingWindow is how many days before the threshold a friendship counts
// as approaching.
const ApproachingWindow = 7

// ThresholdDays maps a desired frequency to its reminder threshold.
var ThresholdDays = map[models.Frequency]int{
	models.FrequencyWeekly:    7,
	models.FrequencyBiweekly:  14,
	models.FrequencyMonthly:   30,
	models.FrequencyQuarterly: 90,
}

type Result struct {
	Status             string `json:"status"`
	DaysSince          *int   `json:"days_since"`
	ThresholdDays      *int   `json:"threshold_days"`
	DaysUntilThreshold *int   `json:"days_until_threshold"`
}

// Calculate classifies a friendship from its last shared hangout and desired
// frequency. now is the only clock it reads.
func Calculate(lastHangout *time.Time, freq *models.Frequency, now time.Time) Result {
	if freq == nil {
		return Result{Status: StatusNoGoal}
	}
	threshold, ok := ThresholdDays[*freq]
	if !ok {
		return Result{Status: StatusNoGoal}
	}

	if lastHangout == nil {
		return Result{Status: StatusOverdue, ThresholdDays: &threshold}
	}

	since := int(math.Floor(now.Sub(*lastHangout).Hours() / 24))
	until := threshold - since
	result := Result{
		DaysSince:          &since,
		ThresholdDays:      &threshold,
		DaysUntilThreshold: &until,
	}

	switch {
	case since >= threshold:
		result.Status = StatusOverdue
	case until >= 0 && until <= ApproachingWindow:
		result.Status = StatusApproaching
	default:
		result.Status = StatusOnTrack
	}
	return result
}

// Summary renders a result as a short sentence for display.
func Summary(r Result, lastHangout *time.Time, now time.Time) string {
	switch r.Status {
	case StatusNoGoal:
		return "No hangout goal set"
	case StatusOverdue:
		if lastHangout == nil {
			return "You haven't hung out yet"
		}
		return "Overdue: last hangout was " + humanize.RelTime(*lastHangout, now, "ago", "from now")
	case StatusApproaching:
		return fmt.Sprintf("Plan something soon: %d days left", *r.DaysUntilThreshold)
	default:
		return "On track: last hangout was " + humanize.RelTime(*lastHangout, now, "ago", "from now")
	}
}

// Service loads a friendship and its last shared hangout and classifies it.
type Service struct {
	friendships store.FriendshipStore
	now         func() time.Time
}

func NewService(friendships store.FriendshipStore) *Service {
	return &Service{
		friendships: friendships,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

func (s *Service) Status(ctx context.Context, friendshipID string) (models.ReminderStatusResponse, error) {
	f, err := s.friendships.GetFriendship(ctx, friendshipID)
	if err != nil {
		return models.ReminderStatusResponse{}, err
	}

	now := s.now()
	last, err := s.friendships.LastHangout(ctx, f.UserA, f.UserB, now)
	if err != nil {
		return models.ReminderStatusResponse{}, fmt.Errorf("failed to load last hangout: %w", err)
	}

	r := Calculate(last, f.DesiredFrequency, now)
	return models.ReminderStatusResponse{
		FriendshipID:       f.ID,
		Status:             r.Status,
		DaysSince:          r.DaysSince,
		ThresholdDays:      r.ThresholdDays,
		DaysUntilThreshold: r.DaysUntilThreshold,
		Summary:            Summary(r, last, now),
	}, nil
}

// ValidFrequency reports whether freq is nil or a known frequency.
func ValidFrequency(freq *models.Frequency) bool {
	if freq == nil {
		return true
	}
	_, ok := ThresholdDays[*freq]
	return ok
}

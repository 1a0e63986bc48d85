// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"sort"

	"github.com/danielhkuo/hangouts/models"
)

// Result is the outcome of evaluating a poll's current votes.
type Result struct {
	Reached          bool           `json:"reached"`
	WinningOptionID  *string        `json:"winning_option_id,omitempty"`
	VoteCounts       map[string]int `json:"vote_counts"`
	TotalVotes       int            `json:"total_votes"`
	DistinctVoters   int            `json:"distinct_voters"`
	ConsensusPercent float64        `json:"consensus_percent"`
	// Leaders are the options tied for the most votes, in tie-break order.
	Leaders []string `json:"leaders,omitempty"`
}

// Evaluate decides whether the votes cast on a poll amount to consensus.
//
// The percentage is taken over distinct voters, not over the roster, so a poll
// whose invitees never respond can still finalize. rosterSize is accepted for a
// future roster quorum gate and is currently unused.
func Evaluate(poll models.Poll, votes []models.Vote, rosterSize int) Result {
	counts := make(map[string]int, len(poll.Options))
	for _, opt := range poll.Options {
		counts[opt.ID] = 0
	}

	// A voter counts once per option even if the store hands back duplicates.
	seen := make(map[[2]string]bool, len(votes))
	voters := make(map[string]bool)
	for _, v := range votes {
		if _, ok := counts[v.OptionID]; !ok {
			continue
		}
		key := [2]string{v.UserID, v.OptionID}
		if seen[key] {
			continue
		}
		seen[key] = true
		counts[v.OptionID]++
		voters[v.UserID] = true
	}

	result := Result{
		VoteCounts:     counts,
		DistinctVoters: len(voters),
	}
	for _, c := range counts {
		result.TotalVotes += c
	}

	minParticipants := poll.Config.MinParticipants
	if minParticipants < 1 {
		minParticipants = 1
	}

	ranked := tieBreakOrder(poll.Options)
	maxCount := 0
	for _, opt := range ranked {
		if counts[opt.ID] > maxCount {
			maxCount = counts[opt.ID]
		}
	}
	for _, opt := range ranked {
		if maxCount > 0 && counts[opt.ID] == maxCount {
			result.Leaders = append(result.Leaders, opt.ID)
		}
	}

	if result.DistinctVoters > 0 {
		result.ConsensusPercent = float64(maxCount) / float64(result.DistinctVoters) * 100
	}

	// Gate 1: participation
	if result.DistinctVoters < minParticipants {
		return result
	}

	// Gate 2: threshold, compared in integers so the boundary is exact
	if maxCount*100 < poll.Config.ThresholdPercent*result.DistinctVoters {
		return result
	}

	if len(result.Leaders) == 0 {
		return result
	}

	winner := result.Leaders[0]
	result.Reached = true
	result.WinningOptionID = &winner
	return result
}

// tieBreakOrder returns the options sorted by Order, then by listing position.
func tieBreakOrder(options []models.PollOption) []models.PollOption {
	ranked := make([]models.PollOption, len(options))
	copy(ranked, options)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Order < ranked[j].Order
	})
	return ranked
}

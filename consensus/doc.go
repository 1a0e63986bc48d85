// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package consensus decides when a hangout poll has reached agreement.

# Evaluation

Evaluate is a pure function over a poll, its active votes, and the roster size:

	result := consensus.Evaluate(poll, votes, len(roster))
	if result.Reached {
		winner := *result.WinningOptionID
	}

It tallies votes per option and applies two gates in order:

  - participation: distinct voters must be at least MinParticipants
  - threshold: the leading option's share of distinct voters must be at least
    ThresholdPercent (inclusive)

# Tie-break

When several options share the top count, the one with the lowest Order wins,
falling back to listing position. The result never depends on vote arrival order.

# Multi-vote Polls

With AllowMultipleVotesPerUser a voter may back several options. Each backing
counts toward that option's tally, but the participation gate and the
percentage denominator use distinct voters.
*/
package consensus

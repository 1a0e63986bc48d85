// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package finalize moves hangout polls from ACTIVE to a terminal state.

# Finalizing

	coord := finalize.NewCoordinator(st, st, notifier)
	outcome, err := coord.AttemptFinalize(ctx, pollID)

AttemptFinalize re-reads the poll, roster and votes on every call, asks
consensus.Evaluate for a decision, and tries the matching conditional write:

	ACTIVE, reached            → MarkConsensusReached → Finalized / AlreadyFinalized
	ACTIVE, not reached, late  → MarkExpired          → Expired / AlreadyTerminal
	ACTIVE, not reached        → NotReady
	not ACTIVE                 → AlreadyFinalized / AlreadyTerminal

Outcome is a closed set; switch on its concrete type. Only errors from the
store are returned as errors.

# Side Effects

The caller that wins MarkConsensusReached stamps the event with the winning
option and notifies every participant. Stamping is itself conditional, and
only the caller whose stamp applied notifies, so participants hear about a
plan once.

# Sweeps

SweepExpired closes polls whose deadline passed with no votes arriving to
trigger a check. Reconcile finds polls that reached consensus but whose event
was never stamped and re-runs only the stamp and notify step. Sweeper runs
both on an interval.
*/
package finalize

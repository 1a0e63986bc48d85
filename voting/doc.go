// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting accepts votes and proposals from event participants.

SubmitVote checks the caller is on the event roster, upserts the vote, and
runs a finalize check before returning, so a voter learns immediately whether
their vote settled the plan:

	sub, err := intake.SubmitVote(ctx, pollID, userID, optionID)
	if sub.Tipped() {
		// this vote finalized the poll
	}

Store errors pass through unchanged: store.ErrPollNotFound,
store.ErrOptionNotFound and store.ErrPollClosed are user-facing.
*/
package voting

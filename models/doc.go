// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Poll: the decision attached to one event, with ordered options and config
  - PollOption: a candidate plan (what/where/when); Order breaks ties
  - PollConfig: threshold, participation gate, multi-vote, expiry
  - Vote: one participant's choice, upserted per (poll, user)
  - Event: the hangout the poll decides
  - Friendship: two users and how often they want to meet
  - Notification: outbox row emitted on finalization

# Request Types

  - CreateEventRequest: title, organizer_id, participants
  - AddParticipantRequest: user_id
  - CreatePollRequest: config, options
  - SubmitVoteRequest: option_id
  - CreateFriendshipRequest, SetFrequencyRequest

# Response Types

  - CreateEventResponse: event_id, admin_key
  - CreatePollResponse: poll_id, options
  - SubmitVoteResponse: vote, finalize_outcome, finalized
  - FinalizeResponse: outcome, winning_option_id, status
  - CancelResponse: cancelled, status
  - PollStateResponse: status, vote_counts, consensus_percent, winning_option_id
  - ReminderStatusResponse: status, days_since, threshold_days
  - ErrorResponse: error, message

# Constants

Poll status values:

	PollActive           = "active"
	PollConsensusReached = "consensus_reached"
	PollExpired          = "expired"
	PollCancelled        = "cancelled"

Event states:

	EventOpen      = "open"
	EventConfirmed = "confirmed"
	EventCompleted = "completed"
	EventCancelled = "cancelled"

Hangout frequencies:

	FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly
*/
package models

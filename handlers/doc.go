// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the hangouts API.

# Handler Types

  - EventHandler: Events, rosters and poll creation
  - PollHandler: Poll state, options, votes, finalize and cancel
  - FriendshipHandler: Friendships and reminder status

Handlers take their stores and services, never a database handle:

	eventHandler := handlers.NewEventHandler(st, cfg)
	pollHandler := handlers.NewPollHandler(st, coord, intake, cfg)

# Identity

Participants are identified by X-User-ID. Organizer operations (adding
participants, creating and cancelling polls) require the X-Admin-Key returned
when the event was created.

# Errors

Domain errors map to status codes in one place (errors.go):

	not found               → 404
	poll closed / finalized → 409
	event not open / has a poll → 409
	not a participant       → 403
	validation              → 400
	bad admin key / caller  → 401
	anything else           → 500, logged

Finalize always answers 200 with the outcome in the body. Losing a race is
not an error.
*/
package handlers

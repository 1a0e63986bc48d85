// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the hangouts API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, coord, cfg)

The coordinator is shared with the background sweeper so that votes, manual
finalize calls and sweeps all go through the same conditional writes.

# Endpoints

Health:

	GET /health

Events (organizer operations require X-Admin-Key):

	POST /events                   - Create event, returns admin_key
	GET  /events/{id}              - Event and roster
	POST /events/{id}/participants - Add participant
	POST /events/{id}/polls        - Create poll

Polls (participant operations require X-User-ID):

	GET  /polls/{id}          - Tally and status
	POST /polls/{id}/options  - Propose an option
	POST /polls/{id}/votes    - Vote, then check consensus
	POST /polls/{id}/finalize - Check consensus
	POST /polls/{id}/cancel   - Close without a winner (X-Admin-Key)

Friendships:

	POST /friendships                  - Create
	PUT  /friendships/{id}/frequency   - Set or clear the hangout goal
	GET  /friendships/{id}/reminder    - Reminder status
*/
package router

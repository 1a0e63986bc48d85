// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the hangouts API server.

Hangouts lets a group of friends agree on a plan. An organizer creates an
event with a roster and a poll of candidate options; participants vote, and
the first vote that pushes one option past the poll's consensus threshold
confirms the plan for everyone, exactly once. Polls that never reach
consensus expire at their deadline. Friendships carry an optional hangout
goal, and the reminder endpoint reports how close a pair is to missing it.

# Starting the Server

The server reads environment variables (and a .env file if present) or CLI
flags:

	DATABASE_URL=postgres://... ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t sqlite -d "file:hangouts.db" -admin-salt dev

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite file
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: sqlite)
  - SWEEP_INTERVAL (--sweep-interval): Expiry and repair sweep period (default: 1m)
  - RECONCILE_GRACE (--reconcile-grace): Age before an unstamped finalized poll is repaired (default: 30s)

# Architecture

The HTTP server and the background sweeper run in one errgroup and stop
together on SIGINT or SIGTERM:

  - consensus: Pure tally and threshold evaluation
  - finalize: Exactly-once finalization, expiry and cancel; the sweeper
  - voting: Vote and option intake
  - reminder: Friendship reminder thresholds
  - store: Poll, event and friendship persistence (SQL and in-memory)
  - notify: Confirmation delivery
  - handlers, router, middleware: HTTP surface
  - auth: Admin keys and caller identity
  - db: Connections and schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main

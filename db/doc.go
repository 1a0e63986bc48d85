// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open maps the configured type to a driver and pings the connection:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "file:hangouts.db")

PostgreSQL uses lib/pq. SQLite uses modernc.org/sqlite with a busy timeout,
foreign keys on, and a single connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - event: the hangout, its state and finalized option
  - event_participant: the roster
  - poll: status, config, revision, winning option
  - poll_option: options in tie-break order (sort_order)
  - vote: one row per (poll, user, slot)
  - friendship: desired hangout frequency
  - notification: outbox of emitted notifications

# Relationships

	event 1──* event_participant
	event 1──* poll
	poll 1──* poll_option
	poll 1──* vote

Votes are not cascaded; they stay for audit after a poll closes.
*/
package db

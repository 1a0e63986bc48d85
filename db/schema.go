// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the configured database and verifies the connection.
// SQLite connections are limited to one so transactions serialize instead of
// failing with SQLITE_BUSY.
func Open(dbType, url string) (*sql.DB, error) {
	var conn *sql.DB
	var err error

	switch dbType {
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
	case TypeSQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(url))
		if err == nil {
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Statements are kept to the subset PostgreSQL and SQLite share.
var schema = []string{
	// Events
	`CREATE TABLE IF NOT EXISTS event (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		organizer_id TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT 'open' CHECK (state IN ('open', 'confirmed', 'completed', 'cancelled')),
		finalized_option_id TEXT,
		location TEXT,
		starts_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_state ON event(state)`,

	`CREATE TABLE IF NOT EXISTS event_participant (
		event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		joined_at TIMESTAMP NOT NULL,
		PRIMARY KEY (event_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_participant_user ON event_participant(user_id)`,

	// Polls
	`CREATE TABLE IF NOT EXISTS poll (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'consensus_reached', 'expired', 'cancelled')),
		threshold_percent INTEGER NOT NULL CHECK (threshold_percent >= 0 AND threshold_percent <= 100),
		min_participants INTEGER NOT NULL CHECK (min_participants >= 1),
		allow_multiple_votes BOOLEAN NOT NULL DEFAULT FALSE,
		allow_new_options BOOLEAN NOT NULL DEFAULT FALSE,
		expires_at TIMESTAMP,
		winning_option_id TEXT,
		revision BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		finalized_at TIMESTAMP,
		closed_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_event_id ON poll(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status)`,

	// Options
	`CREATE TABLE IF NOT EXISTS poll_option (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		location TEXT,
		starts_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id)`,

	// Votes outlive their poll's lifecycle; slot is '' for single-vote polls
	// and the option id for multi-vote polls.
	`CREATE TABLE IF NOT EXISTS vote (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL REFERENCES poll(id),
		option_id TEXT NOT NULL REFERENCES poll_option(id),
		user_id TEXT NOT NULL,
		slot TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (poll_id, user_id, slot)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vote_poll_id ON vote(poll_id)`,

	// Friendships
	`CREATE TABLE IF NOT EXISTS friendship (
		id TEXT PRIMARY KEY,
		user_a TEXT NOT NULL,
		user_b TEXT NOT NULL,
		desired_frequency TEXT CHECK (desired_frequency IN ('weekly', 'biweekly', 'monthly', 'quarterly')),
		created_at TIMESTAMP NOT NULL
	)`,

	// Notification outbox
	`CREATE TABLE IF NOT EXISTS notification (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notification_user_id ON notification(user_id)`,
}

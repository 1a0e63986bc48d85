// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for organizer key HMAC (required)
  - SweepInterval: Expiry and reconciliation period (default: 1m)
  - ReconcileGrace: Age before an unstamped finalized poll is repaired (default: 30s)

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-t                 Database type
	--admin-salt       Admin key salt
	--sweep-interval   Sweep period
	--reconcile-grace  Reconcile grace period
	--env-file         Env file to load

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	ADMIN_KEY_SALT  → --admin-salt
	SWEEP_INTERVAL  → --sweep-interval
	RECONCILE_GRACE → --reconcile-grace

CLI flags take precedence over environment variables, and variables already
set take precedence over the env file. Without --env-file, a .env in the
working directory is loaded if present.
*/
package cliparse

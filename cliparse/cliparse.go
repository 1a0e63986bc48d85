// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	AdminKeySalt   string
	SweepInterval  time.Duration
	ReconcileGrace time.Duration
}

const (
	defaultPort           = 3318
	defaultSweepInterval  = time.Minute
	defaultReconcileGrace = 30 * time.Second
)

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("hangouts", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&envFile, "env-file", "", "Load environment from this file (default .env if present)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Background work
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", 0, "How often to expire and reconcile polls")
	fs.DurationVar(&cfg.ReconcileGrace, "reconcile-grace", 0, "How long a finalized poll may stay unstamped")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already in the environment win over the file.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	var err error
	if cfg.SweepInterval, err = durationOr(cfg.SweepInterval, "SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileGrace, err = durationOr(cfg.ReconcileGrace, "RECONCILE_GRACE", defaultReconcileGrace); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval <= 0 {
		return Config{}, errors.New("sweep interval must be positive")
	}

	return cfg, nil
}

func durationOr(flagValue time.Duration, env string, def time.Duration) (time.Duration, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", env, err)
	}
	return d, nil
}

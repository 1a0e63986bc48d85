// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package finalize

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs Coordinator.Sweep on a fixed interval until its context ends.
type Sweeper struct {
	coord    *Coordinator
	interval time.Duration
}

func NewSweeper(coord *Coordinator, interval time.Duration) *Sweeper {
	return &Sweeper{coord: coord, interval: interval}
}

// Run sweeps once immediately, then on every tick. It returns nil when ctx is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	slog.Info("sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.coord.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			s.coord.Sweep(ctx)
		}
	}
}

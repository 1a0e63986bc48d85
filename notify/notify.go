// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify is the fire-and-forget notification boundary.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/hangouts/models"
)

// Notifier emits one notification to one user. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Log writes notifications to the structured log instead of delivering them.
type Log struct{}

func (Log) Notify(ctx context.Context, n models.Notification) error {
	slog.Info("notification",
		"user_id", n.UserID,
		"type", n.Type,
		"payload", n.Payload,
	)
	return nil
}

// Multi sends every notification to each notifier in turn and joins failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

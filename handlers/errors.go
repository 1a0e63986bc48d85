// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/hangouts/auth"
	"github.com/danielhkuo/hangouts/middleware"
	"github.com/danielhkuo/hangouts/store"
	"github.com/danielhkuo/hangouts/voting"
)

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrPollNotFound),
		errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrOptionNotFound),
		errors.Is(err, store.ErrFriendshipNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrPollClosed),
		errors.Is(err, store.ErrAlreadyFinalized),
		errors.Is(err, store.ErrEventNotOpen),
		errors.Is(err, store.ErrPollInProgress),
		errors.Is(err, voting.ErrOptionsLocked):
		return http.StatusConflict
	case errors.Is(err, voting.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, store.ErrInvalidConfig),
		errors.Is(err, voting.ErrInvalidVote):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidAdminKey),
		errors.Is(err, auth.ErrMissingCaller):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status for err. Internal errors are logged
// and replaced with fallback so store details do not leak.
func writeError(w http.ResponseWriter, err error, fallback string, attrs ...any) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error(fallback, append(attrs, "error", err)...)
		middleware.ErrorResponse(w, code, fallback)
		return
	}
	middleware.ErrorResponse(w, code, err.Error())
}

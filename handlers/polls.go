// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/hangouts/auth"
	"github.com/danielhkuo/hangouts/cliparse"
	"github.com/danielhkuo/hangouts/finalize"
	"github.com/danielhkuo/hangouts/middleware"
	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/store"
	"github.com/danielhkuo/hangouts/voting"
)

type PollHandler struct {
	polls  store.PollStore
	coord  *finalize.Coordinator
	intake *voting.Intake
	cfg    cliparse.Config
}

func NewPollHandler(polls store.PollStore, coord *finalize.Coordinator, intake *voting.Intake, cfg cliparse.Config) *PollHandler {
	return &PollHandler{polls: polls, coord: coord, intake: intake, cfg: cfg}
}

// GetPollState handles GET /polls/{id}
func (h *PollHandler) GetPollState(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	state, err := h.intake.PollState(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "Failed to load poll", "poll_id", pollID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, state)
}

// Finalize handles POST /polls/{id}/finalize. Every outcome is a 200; the
// body says which one happened.
func (h *PollHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	outcome, err := h.coord.AttemptFinalize(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "Failed to finalize poll", "poll_id", pollID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, finalize.Response(outcome))
}

// Cancel handles POST /polls/{id}/cancel
func (h *PollHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	poll, err := h.polls.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "Failed to load poll", "poll_id", pollID)
		return
	}
	if err := auth.RequireAdmin(r, poll.EventID, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	status, err := h.coord.Cancel(r.Context(), pollID)
	if errors.Is(err, store.ErrPollClosed) {
		middleware.JSONResponse(w, http.StatusConflict, models.CancelResponse{Status: status})
		return
	}
	if err != nil {
		writeError(w, err, "Failed to cancel poll", "poll_id", pollID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CancelResponse{Cancelled: true, Status: status})
}

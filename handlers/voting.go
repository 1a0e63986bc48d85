// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/hangouts/auth"
	"github.com/danielhkuo/hangouts/finalize"
	"github.com/danielhkuo/hangouts/middleware"
	"github.com/danielhkuo/hangouts/models"
)

// SubmitVote handles POST /polls/{id}/votes
func (h *PollHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	userID, err := auth.CallerID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sub, err := h.intake.SubmitVote(r.Context(), pollID, userID, req.OptionID)
	if err != nil {
		writeError(w, err, "Failed to submit vote", "poll_id", pollID, "user_id", userID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		Vote:            sub.Vote,
		FinalizeOutcome: finalize.Response(sub.Outcome),
		Finalized:       sub.Tipped(),
	})
}

// AddOption handles POST /polls/{id}/options
func (h *PollHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	userID, err := auth.CallerID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req models.OptionInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	opt, err := h.intake.AddOption(r.Context(), pollID, userID, req)
	if err != nil {
		writeError(w, err, "Failed to add option", "poll_id", pollID, "user_id", userID)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{Option: opt})
}

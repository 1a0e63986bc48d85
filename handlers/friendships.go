// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/hangouts/middleware"
	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/reminder"
	"github.com/danielhkuo/hangouts/store"
)

type FriendshipHandler struct {
	friendships store.FriendshipStore
	reminders   *reminder.Service
}

func NewFriendshipHandler(friendships store.FriendshipStore, reminders *reminder.Service) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships, reminders: reminders}
}

// CreateFriendship handles POST /friendships
func (h *FriendshipHandler) CreateFriendship(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFriendshipRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	userA, userB := strings.TrimSpace(req.UserA), strings.TrimSpace(req.UserB)
	if userA == "" || userB == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_a and user_b are required")
		return
	}
	if userA == userB {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_a and user_b must differ")
		return
	}
	if !reminder.ValidFrequency(req.DesiredFrequency) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "desired_frequency must be weekly, biweekly, monthly or quarterly")
		return
	}

	f, err := h.friendships.CreateFriendship(r.Context(), userA, userB, req.DesiredFrequency, time.Now().UTC())
	if err != nil {
		writeError(w, err, "Failed to create friendship")
		return
	}
	slog.Info("friendship created", "friendship_id", f.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateFriendshipResponse{FriendshipID: f.ID})
}

// SetFrequency handles PUT /friendships/{id}/frequency. A null frequency
// clears the goal.
func (h *FriendshipHandler) SetFrequency(w http.ResponseWriter, r *http.Request) {
	friendshipID := r.PathValue("id")

	var req models.SetFrequencyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !reminder.ValidFrequency(req.DesiredFrequency) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "desired_frequency must be weekly, biweekly, monthly or quarterly")
		return
	}

	if err := h.friendships.SetFrequency(r.Context(), friendshipID, req.DesiredFrequency); err != nil {
		writeError(w, err, "Failed to update friendship", "friendship_id", friendshipID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reminder handles GET /friendships/{id}/reminder
func (h *FriendshipHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	friendshipID := r.PathValue("id")

	status, err := h.reminders.Status(r.Context(), friendshipID)
	if err != nil {
		writeError(w, err, "Failed to compute reminder", "friendship_id", friendshipID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

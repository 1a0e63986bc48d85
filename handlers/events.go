// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/hangouts/auth"
	"github.com/danielhkuo/hangouts/cliparse"
	"github.com/danielhkuo/hangouts/middleware"
	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/store"
)

type EventHandler struct {
	store store.Store
	cfg   cliparse.Config
}

func NewEventHandler(st store.Store, cfg cliparse.Config) *EventHandler {
	return &EventHandler{store: st, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// The caller organizes unless the body names someone else.
	if req.OrganizerID == "" {
		req.OrganizerID, _ = auth.CallerID(r)
	}
	if strings.TrimSpace(req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.OrganizerID) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "organizer_id is required")
		return
	}

	event, err := h.store.CreateEvent(r.Context(), req.Title, req.OrganizerID, req.Participants, time.Now().UTC())
	if err != nil {
		writeError(w, err, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", event.ID, "organizer", event.OrganizerID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID:  event.ID,
		AdminKey: auth.GenerateAdminKey(event.ID, h.cfg.AdminKeySalt),
	})
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	event, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err, "Failed to load event", "event_id", eventID)
		return
	}
	roster, err := h.store.GetParticipantRoster(r.Context(), eventID)
	if err != nil {
		writeError(w, err, "Failed to load participants", "event_id", eventID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EventWithRoster{
		Event:        event,
		Participants: roster,
	})
}

// AddParticipant handles POST /events/{id}/participants
func (h *EventHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if err := auth.RequireAdmin(r, eventID, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.AddParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.store.AddParticipant(r.Context(), eventID, req.UserID, time.Now().UTC()); err != nil {
		writeError(w, err, "Failed to add participant", "event_id", eventID)
		return
	}
	slog.Info("participant added", "event_id", eventID, "user_id", req.UserID)

	h.GetEvent(w, r)
}

// CreatePoll handles POST /events/{id}/polls
func (h *EventHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if err := auth.RequireAdmin(r, eventID, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	for _, opt := range req.Options {
		if strings.TrimSpace(opt.Text) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option text is required")
			return
		}
	}
	now := time.Now().UTC()
	if req.Config.ExpiresAt != nil && !req.Config.ExpiresAt.After(now) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "expires_at must be in the future")
		return
	}

	poll, err := h.store.CreatePoll(r.Context(), eventID, req.Config, req.Options, now)
	if err != nil {
		writeError(w, err, "Failed to create poll", "event_id", eventID)
		return
	}

	slog.Info("poll created",
		"poll_id", poll.ID,
		"event_id", eventID,
		"options", len(poll.Options),
		"threshold_percent", poll.Config.ThresholdPercent,
		"min_participants", poll.Config.MinParticipants,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:  poll.ID,
		Options: poll.Options,
	})
}

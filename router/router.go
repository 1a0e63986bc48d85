// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/hangouts/cliparse"
	"github.com/danielhkuo/hangouts/finalize"
	"github.com/danielhkuo/hangouts/handlers"
	"github.com/danielhkuo/hangouts/middleware"
	"github.com/danielhkuo/hangouts/reminder"
	"github.com/danielhkuo/hangouts/store"
	"github.com/danielhkuo/hangouts/voting"
)

func NewRouter(st store.Store, coord *finalize.Coordinator, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	intake := voting.NewIntake(st, st, coord)
	eventHandler := handlers.NewEventHandler(st, cfg)
	pollHandler := handlers.NewPollHandler(st, coord, intake, cfg)
	friendshipHandler := handlers.NewFriendshipHandler(st, reminder.NewService(st))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Events (organizer operations take X-Admin-Key)
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("POST /events/{id}/participants", middleware.WithLogging(eventHandler.AddParticipant))
	mux.HandleFunc("POST /events/{id}/polls", middleware.WithLogging(eventHandler.CreatePoll))

	// Polls (participant operations take X-User-ID)
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPollState))
	mux.HandleFunc("POST /polls/{id}/options", middleware.WithLogging(pollHandler.AddOption))
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(pollHandler.SubmitVote))
	mux.HandleFunc("POST /polls/{id}/finalize", middleware.WithLogging(pollHandler.Finalize))
	mux.HandleFunc("POST /polls/{id}/cancel", middleware.WithLogging(pollHandler.Cancel))

	// Friendship reminders
	mux.HandleFunc("POST /friendships", middleware.WithLogging(friendshipHandler.CreateFriendship))
	mux.HandleFunc("PUT /friendships/{id}/frequency", middleware.WithLogging(friendshipHandler.SetFrequency))
	mux.HandleFunc("GET /friendships/{id}/reminder", middleware.WithLogging(friendshipHandler.Reminder))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hangouts API v1"))
	})

	return mux
}

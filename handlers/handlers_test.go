// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/hangouts/auth"
	"github.com/danielhkuo/hangouts/cliparse"
	"github.com/danielhkuo/hangouts/finalize"
	"github.com/danielhkuo/hangouts/models"
	"github.com/danielhkuo/hangouts/notify"
	"github.com/danielhkuo/hangouts/reminder"
	"github.com/danielhkuo/hangouts/store"
	"github.com/danielhkuo/hangouts/testutil"
	"github.com/danielhkuo/hangouts/voting"
)

type testEnv struct {
	db          *sql.DB
	store       *store.SQLStore
	cfg         cliparse.Config
	events      *EventHandler
	polls       *PollHandler
	friendships *FriendshipHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	st := store.NewSQLStore(conn)
	cfg := testutil.GetTestConfig()
	coord := finalize.NewCoordinator(st, st, notify.Multi{st, notify.Log{}})

	return &testEnv{
		db:          conn,
		store:       st,
		cfg:         cfg,
		events:      NewEventHandler(st, cfg),
		polls:       NewPollHandler(st, coord, voting.NewIntake(st, st, coord), cfg),
		friendships: NewFriendshipHandler(st, reminder.NewService(st)),
	}
}

func (e *testEnv) adminKey(eventID string) map[string]string {
	return map[string]string{auth.HeaderAdminKey: auth.GenerateAdminKey(eventID, e.cfg.AdminKeySalt)}
}

func caller(userID string) map[string]string {
	return map[string]string{auth.HeaderUserID: userID}
}

func serve(h http.HandlerFunc, req *http.Request, pathID string) *httptest.ResponseRecorder {
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)

	t.Run("success", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/events", models.CreateEventRequest{
			Title:        "Board games",
			OrganizerID:  "org",
			Participants: []string{"ana", "ben"},
		}, nil)
		w := serve(env.events.CreateEvent, req, "")
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateEventResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.EventID == "" {
			t.Fatal("Expected event_id")
		}
		if err := auth.ValidateAdminKey(resp.EventID, resp.AdminKey, env.cfg.AdminKeySalt); err != nil {
			t.Errorf("Returned admin key does not validate: %v", err)
		}

		roster, err := env.store.GetParticipantRoster(req.Context(), resp.EventID)
		if err != nil {
			t.Fatal(err)
		}
		if len(roster) != 3 {
			t.Errorf("Expected organizer plus 2 participants, got %v", roster)
		}
	})

	t.Run("organizer from caller", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/events", models.CreateEventRequest{Title: "Karaoke"}, caller("dee"))
		w := serve(env.events.CreateEvent, req, "")
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateEventResponse
		testutil.AssertJSON(t, w, &resp)
		event, err := env.store.GetEvent(req.Context(), resp.EventID)
		if err != nil {
			t.Fatal(err)
		}
		if event.OrganizerID != "dee" {
			t.Errorf("Expected organizer 'dee', got '%s'", event.OrganizerID)
		}
	})

	testCases := []struct {
		name string
		body interface{}
	}{
		{"missing title", models.CreateEventRequest{OrganizerID: "org"}},
		{"missing organizer", models.CreateEventRequest{Title: "Karaoke"}},
		{"not an object", []string{"x"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(env.events.CreateEvent, testutil.MakeRequest("POST", "/events", tc.body, nil), "")
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestGetEventAndAddParticipant(t *testing.T) {
	env := newTestEnv(t)
	eventID := testutil.CreateTestEvent(t, env.db, "org", "ana")

	w := serve(env.events.AddParticipant,
		testutil.MakeRequest("POST", "/events/"+eventID+"/participants", models.AddParticipantRequest{UserID: "ben"}, nil), eventID)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = serve(env.events.AddParticipant,
		testutil.MakeRequest("POST", "/events/"+eventID+"/participants", models.AddParticipantRequest{UserID: "ben"}, env.adminKey(eventID)), eventID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EventWithRoster
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Participants) != 3 {
		t.Errorf("Expected 3 participants, got %v", resp.Participants)
	}

	w = serve(env.events.GetEvent, testutil.MakeRequest("GET", "/events/missing", nil, nil), "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCreatePoll(t *testing.T) {
	env := newTestEnv(t)
	eventID := testutil.CreateTestEvent(t, env.db, "org", "ana", "ben")
	path := "/events/" + eventID + "/polls"

	valid := models.CreatePollRequest{
		Config:  models.PollConfig{ThresholdPercent: 60, MinParticipants: 2},
		Options: []models.OptionInput{{Text: "Friday"}, {Text: "Saturday"}},
	}

	w := serve(env.events.CreatePoll, testutil.MakeRequest("POST", path, valid, nil), eventID)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = serve(env.events.CreatePoll, testutil.MakeRequest("POST", path, valid, env.adminKey(eventID)), eventID)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.PollID == "" || len(resp.Options) != 2 {
		t.Errorf("Unexpected response: %+v", resp)
	}

	// One open poll per event.
	w = serve(env.events.CreatePoll, testutil.MakeRequest("POST", path, valid, env.adminKey(eventID)), eventID)
	testutil.AssertStatus(t, w, http.StatusConflict)

	past := time.Now().Add(-time.Hour)
	invalid := []struct {
		name string
		req  models.CreatePollRequest
	}{
		{"threshold out of range", models.CreatePollRequest{Config: models.PollConfig{ThresholdPercent: 120, MinParticipants: 1}, Options: valid.Options}},
		{"zero participants", models.CreatePollRequest{Config: models.PollConfig{ThresholdPercent: 50}, Options: valid.Options}},
		{"no options", models.CreatePollRequest{Config: valid.Config}},
		{"blank option", models.CreatePollRequest{Config: valid.Config, Options: []models.OptionInput{{Text: " "}}}},
		{"deadline passed", models.CreatePollRequest{Config: models.PollConfig{ThresholdPercent: 50, MinParticipants: 1, ExpiresAt: &past}, Options: valid.Options}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(env.events.CreatePoll, testutil.MakeRequest("POST", path, tc.req, env.adminKey(eventID)), eventID)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestSubmitVote(t *testing.T) {
	env := newTestEnv(t)
	eventID := testutil.CreateTestEvent(t, env.db, "org", "ana", "ben")
	pollID := testutil.CreateTestPoll(t, env.db, eventID, 60, 2)
	optA := testutil.AddTestOption(t, env.db, pollID, "Hike", 0)
	optB := testutil.AddTestOption(t, env.db, pollID, "Museum", 1)
	path := "/polls/" + pollID + "/votes"

	vote := func(userID, optionID string) *httptest.ResponseRecorder {
		headers := map[string]string{}
		if userID != "" {
			headers = caller(userID)
		}
		return serve(env.polls.SubmitVote, testutil.MakeRequest("POST", path, models.SubmitVoteRequest{OptionID: optionID}, headers), pollID)
	}

	testutil.AssertStatus(t, vote("", optA), http.StatusUnauthorized)
	testutil.AssertStatus(t, vote("mallory", optA), http.StatusForbidden)
	testutil.AssertStatus(t, vote("ana", "no-such-option"), http.StatusNotFound)
	testutil.AssertStatus(t, vote("ana", ""), http.StatusBadRequest)

	w := vote("ana", optA)
	testutil.AssertStatus(t, w, http.StatusOK)
	var first models.SubmitVoteResponse
	testutil.AssertJSON(t, w, &first)
	if first.Finalized || first.FinalizeOutcome.Outcome != "not_ready" {
		t.Errorf("Expected not_ready after one vote, got %+v", first.FinalizeOutcome)
	}

	// Changing a vote replaces it.
	testutil.AssertStatus(t, vote("ana", optB), http.StatusOK)
	if n := testutil.CountRows(t, env.db, "vote", "poll_id = $1", pollID); n != 1 {
		t.Errorf("Expected 1 vote row, got %d", n)
	}

	w = vote("ben", optB)
	testutil.AssertStatus(t, w, http.StatusOK)
	var tipped models.SubmitVoteResponse
	testutil.AssertJSON(t, w, &tipped)
	if !tipped.Finalized || tipped.FinalizeOutcome.Outcome != "finalized" {
		t.Errorf("Expected this vote to finalize, got %+v", tipped.FinalizeOutcome)
	}
	if tipped.FinalizeOutcome.WinningOptionID == nil || *tipped.FinalizeOutcome.WinningOptionID != optB {
		t.Errorf("Expected winner %s, got %v", optB, tipped.FinalizeOutcome.WinningOptionID)
	}

	// Every participant gets exactly one confirmation.
	if n := testutil.CountRows(t, env.db, "notification", "type = $1", models.NotifyPlanConfirmed); n != 3 {
		t.Errorf("Expected 3 notifications, got %d", n)
	}

	testutil.AssertStatus(t, vote("org", optA), http.StatusConflict)
	if n := testutil.CountRows(t, env.db, "vote", "poll_id = $1", pollID); n != 2 {
		t.Errorf("Expected 2 vote rows after rejected vote, got %d", n)
	}
}

func TestAddOption(t *testing.T) {
	env := newTestEnv(t)
	eventID := testutil.CreateTestEvent(t, env.db, "org", "ana")
	pollID := testutil.CreateTestPoll(t, env.db, eventID, 60, 2)
	testutil.AddTestOption(t, env.db, pollID, "Hike", 0)
	path := "/polls/" + pollID + "/options"

	w := serve(env.polls.AddOption, testutil.MakeRequest("POST", path, models.OptionInput{Text: "Picnic"}, caller("ana")), pollID)
	testutil.AssertStatus(t, w, http.StatusConflict)

	if _, err := env.db.Exec(`UPDATE poll SET allow_new_options = $1 WHERE id = $2`, true, pollID); err != nil {
		t.Fatal(err)
	}

	w = serve(env.polls.AddOption, testutil.MakeRequest("POST", path, models.OptionInput{Text: "Picnic"}, caller("ana")), pollID)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.AddOptionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Option.Text != "Picnic" || resp.Option.Order != 1 {
		t.Errorf("Unexpected option: %+v", resp.Option)
	}

	w = serve(env.polls.AddOption, testutil.MakeRequest("POST", path, models.OptionInput{Text: "Picnic"}, nil), pollID)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestGetPollStateAndFinalize(t *testing.T) {
	env := newTestEnv(t)
	eventID := testutil.CreateTestEvent(t, env.db, "org", "ana", "ben")
	pollID := testutil.CreateTestPoll(t, env.db, eventID, 100, 2)
	optA := testutil.AddTestOption(t, env.db, pollID, "Hike", 0)

	w := serve(env.polls.Finalize, testutil.MakeRequest("POST", "/polls/"+pollID+"/finalize", nil, nil), pollID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.FinalizeResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Outcome != "not_ready" {
		t.Errorf("Expected not_ready, got %s", resp.Outcome)
	}

	for _, user := range []string{"ana", "ben"} {
		if _, err := env.store.UpsertVote(t.Context(), pollID, user, optA, time.Now().UTC()); err != nil {
			t.Fatal(err)
		}
	}

	w = serve(env.polls.GetPollState, testutil.MakeRequest("GET", "/polls/"+pollID, nil, nil), pollID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var state models.PollStateResponse
	testutil.AssertJSON(t, w, &state)
	if state.Status != models.PollActive || state.WinningOptionID != nil {
		t.Errorf("Expected active poll without winner, got %+v", state)
	}
	if state.VoteCounts[optA] != 2 || state.ConsensusPercent != 100 {
		t.Errorf("Unexpected tally: %+v", state)
	}

	w = serve(env.polls.Finalize, testutil.MakeRequest("POST", "/polls/"+pollID+"/finalize", nil, nil), pollID)
	testutil.AssertJSON(t, w, &resp)
	if resp.Outcome != "finalized" {
		t.Errorf("Expected finalized, got %s", resp.Outcome)
	}

	w = serve(env.polls.Finalize, testutil.MakeRequest("POST", "/polls/"+pollID+"/finalize", nil, nil), pollID)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if resp.Outcome != "already_finalized" || resp.WinningOptionID == nil || *resp.WinningOptionID != optA {
		t.Errorf("Expected already_finalized with winner, got %+v", resp)
	}

	w = serve(env.polls.Finalize, testutil.MakeRequest("POST", "/polls/missing/finalize", nil, nil), "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	eventID := testutil.CreateTestEvent(t, env.db, "org", "ana")
	pollID := testutil.CreateTestPoll(t, env.db, eventID, 60, 2)
	testutil.AddTestOption(t, env.db, pollID, "Hike", 0)
	path := "/polls/" + pollID + "/cancel"

	w := serve(env.polls.Cancel, testutil.MakeRequest("POST", path, nil, map[string]string{auth.HeaderAdminKey: "wrong"}), pollID)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = serve(env.polls.Cancel, testutil.MakeRequest("POST", path, nil, env.adminKey(eventID)), pollID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.CancelResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Cancelled || resp.Status != models.PollCancelled {
		t.Errorf("Expected cancelled poll, got %+v", resp)
	}

	w = serve(env.polls.Cancel, testutil.MakeRequest("POST", path, nil, env.adminKey(eventID)), pollID)
	testutil.AssertStatus(t, w, http.StatusConflict)
	resp = models.CancelResponse{}
	testutil.AssertJSON(t, w, &resp)
	if resp.Cancelled || resp.Status != models.PollCancelled {
		t.Errorf("Expected current status without a cancel, got %+v", resp)
	}
}

func TestFriendships(t *testing.T) {
	env := newTestEnv(t)
	weekly := models.FrequencyWeekly
	bogus := models.Frequency("daily")

	invalid := []models.CreateFriendshipRequest{
		{UserA: "ana"},
		{UserA: "ana", UserB: "ana"},
		{UserA: "ana", UserB: "ben", DesiredFrequency: &bogus},
	}
	for _, body := range invalid {
		w := serve(env.friendships.CreateFriendship, testutil.MakeRequest("POST", "/friendships", body, nil), "")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}

	w := serve(env.friendships.CreateFriendship, testutil.MakeRequest("POST", "/friendships",
		models.CreateFriendshipRequest{UserA: "ana", UserB: "ben", DesiredFrequency: &weekly}, nil), "")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreateFriendshipResponse
	testutil.AssertJSON(t, w, &created)
	id := created.FriendshipID

	w = serve(env.friendships.Reminder, testutil.MakeRequest("GET", "/friendships/"+id+"/reminder", nil, nil), id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var status models.ReminderStatusResponse
	testutil.AssertJSON(t, w, &status)
	if status.Status != reminder.StatusOverdue {
		t.Errorf("Expected overdue for friends who never met, got %s", status.Status)
	}

	w = serve(env.friendships.SetFrequency, testutil.MakeRequest("PUT", "/friendships/"+id+"/frequency",
		models.SetFrequencyRequest{}, nil), id)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = serve(env.friendships.Reminder, testutil.MakeRequest("GET", "/friendships/"+id+"/reminder", nil, nil), id)
	testutil.AssertJSON(t, w, &status)
	if status.Status != reminder.StatusNoGoal {
		t.Errorf("Expected no-goal after clearing frequency, got %s", status.Status)
	}

	w = serve(env.friendships.SetFrequency, testutil.MakeRequest("PUT", "/friendships/missing/frequency",
		models.SetFrequencyRequest{DesiredFrequency: &weekly}, nil), "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = serve(env.friendships.Reminder, testutil.MakeRequest("GET", "/friendships/missing/reminder", nil, nil), "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/hangouts/cliparse"
	"github.com/danielhkuo/hangouts/db"
)

// SetupTestDB creates a fresh SQLite database with the full schema in the
// test's temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hangouts.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file::memory:",
		DatabaseType:   db.TypeSQLite,
		AdminKeySalt:   "test-admin-salt",
		SweepInterval:  time.Minute,
		ReconcileGrace: 30 * time.Second,
	}
}

// CreateTestEvent inserts an open event with the organizer and participants on
// its roster and returns its ID.
func CreateTestEvent(t *testing.T, conn *sql.DB, organizer string, participants ...string) string {
	t.Helper()

	eventID := uuid.NewString()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO event (id, title, organizer_id, state, created_at)
		VALUES ($1, 'Test Hangout', $2, 'open', $3)
	`, eventID, organizer, now)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	for _, userID := range append([]string{organizer}, participants...) {
		_, err := conn.Exec(`
			INSERT INTO event_participant (event_id, user_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id, user_id) DO NOTHING
		`, eventID, userID, now)
		if err != nil {
			t.Fatalf("Failed to add test participant: %v", err)
		}
	}
	return eventID
}

// CreateTestPoll inserts an active poll on the event and returns its ID.
func CreateTestPoll(t *testing.T, conn *sql.DB, eventID string, threshold, minParticipants int) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, event_id, status, threshold_percent, min_participants,
			allow_multiple_votes, allow_new_options, revision, created_at)
		VALUES ($1, $2, 'active', $3, $4, $5, $6, 0, $7)
	`, pollID, eventID, threshold, minParticipants, false, false, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return pollID
}

// AddTestOption adds an option with the given tie-break order and returns its ID.
func AddTestOption(t *testing.T, conn *sql.DB, pollID, text string, order int) string {
	t.Helper()

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_option (id, poll_id, text, sort_order)
		VALUES ($1, $2, $3, $4)
	`, optionID, pollID, text, order)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
	return optionID
}

// SetPollStatus forces a poll into status, bypassing the coordinator.
func SetPollStatus(t *testing.T, conn *sql.DB, pollID, status string) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE poll SET status = $1 WHERE id = $2`, status, pollID); err != nil {
		t.Fatalf("Failed to set poll status: %v", err)
	}
}

// CountRows returns the number of rows in table matching where.
func CountRows(t *testing.T, conn *sql.DB, table, where string, args ...any) int {
	t.Helper()

	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

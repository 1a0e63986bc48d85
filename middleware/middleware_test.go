// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/hangouts/models"
)

// captureLogs routes the default logger into a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// completionLine returns the "request completed" record from buf.
func completionLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("Bad log line %q: %v", line, err)
		}
		if rec["msg"] == "request completed" {
			return rec
		}
	}
	t.Fatalf("No completion line in logs: %s", buf.String())
	return nil
}

func TestWithLogging_StatusAndLevel(t *testing.T) {
	testCases := []struct {
		name      string
		handler   http.HandlerFunc
		wantCode  int
		wantLevel string
	}{
		{
			name:      "implicit 200",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) },
			wantCode:  http.StatusOK,
			wantLevel: "INFO",
		},
		{
			name: "conflict",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ErrorResponse(w, http.StatusConflict, "poll is closed")
			},
			wantCode:  http.StatusConflict,
			wantLevel: "INFO",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantCode:  http.StatusServiceUnavailable,
			wantLevel: "ERROR",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)

			req := httptest.NewRequest("POST", "/polls/p1/votes", nil)
			req.Header.Set("X-User-ID", "ana")
			w := httptest.NewRecorder()
			WithLogging(tc.handler)(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("Expected status %d to reach the client, got %d", tc.wantCode, w.Code)
			}

			rec := completionLine(t, logs)
			if rec["level"] != tc.wantLevel {
				t.Errorf("Expected level %s, got %v", tc.wantLevel, rec["level"])
			}
			if rec["status"] != float64(tc.wantCode) {
				t.Errorf("Expected logged status %d, got %v", tc.wantCode, rec["status"])
			}
			if rec["user_id"] != "ana" || rec["path"] != "/polls/p1/votes" {
				t.Errorf("Missing request attributes: %v", rec)
			}
		})
	}
}

func TestWithLogging_RequestID(t *testing.T) {
	logs := captureLogs(t)
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/health", nil))
	generated := w.Header().Get(HeaderRequestID)
	if generated == "" {
		t.Fatal("Expected a generated request id")
	}
	if rec := completionLine(t, logs); rec["request_id"] != generated {
		t.Errorf("Expected log request_id %s, got %v", generated, rec["request_id"])
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(HeaderRequestID, "upstream-42")
	w = httptest.NewRecorder()
	handler(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "upstream-42" {
		t.Errorf("Expected caller's request id to be reused, got %s", got)
	}
}

func TestErrorResponse_Shape(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusForbidden, "not a participant")

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "Forbidden" || resp.Message != "not a participant" {
		t.Errorf("Unexpected body: %+v", resp)
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/p1/votes", strings.NewReader(`{"option_id":"opt-1"}`))
		var v models.SubmitVoteRequest
		if err := ParseJSONBody(req, &v); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if v.OptionID != "opt-1" {
			t.Errorf("Expected opt-1, got %s", v.OptionID)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/p1/cancel", nil)
		var v models.SubmitVoteRequest
		if err := ParseJSONBody(req, &v); err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		text := strings.Repeat("x", maxBodyBytes)
		req := httptest.NewRequest("POST", "/polls/p1/options", strings.NewReader(`{"text":"`+text+`"}`))
		var v models.OptionInput
		if err := ParseJSONBody(req, &v); err == nil {
			t.Error("Expected error for body over the limit")
		}
	})

	t.Run("just under the limit", func(t *testing.T) {
		text := strings.Repeat("x", maxBodyBytes-len(`{"text":""}`)-1)
		req := httptest.NewRequest("POST", "/polls/p1/options", strings.NewReader(`{"text":"`+text+`"}`))
		var v models.OptionInput
		if err := ParseJSONBody(req, &v); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if len(v.Text) != len(text) {
			t.Errorf("Expected %d bytes of text, got %d", len(text), len(v.Text))
		}
	})
}

func TestCORS_IdentityHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("OPTIONS", "/polls/p1/votes", nil)
	req.Header.Set("Origin", "https://plans.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight 200, got %d", w.Code)
	}
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{"X-User-ID", "X-Admin-Key", HeaderRequestID} {
		if !strings.Contains(allowed, h) {
			t.Errorf("Expected %s in allowed headers %q", h, allowed)
		}
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != HeaderRequestID {
		t.Errorf("Expected request id to be exposed, got %q", got)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/polls/p1", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected non-preflight request to reach the handler, got %d", w.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"ipv4 with port", "192.0.2.7:51234", nil, "192.0.2.7"},
		{"ipv6 with port", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"no port", "192.0.2.7", nil, "192.0.2.7"},
		{"forwarded chain", "10.0.0.1:80", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.2"}, "203.0.113.5"},
		{"real ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

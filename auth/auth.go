// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Request headers
const (
	HeaderUserID   = "X-User-ID"
	HeaderAdminKey = "X-Admin-Key"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrMissingCaller   = errors.New("missing X-User-ID header")
)

// GenerateAdminKey creates an HMAC-based organizer key for an event
// This is deterministic and verifiable
func GenerateAdminKey(eventID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(eventID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the event
func ValidateAdminKey(eventID, adminKey, salt string) error {
	if adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(eventID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// CallerID returns the user the request acts for. The header is set by the
// gateway in front of this service and is trusted as-is.
func CallerID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return "", ErrMissingCaller
	}
	return id, nil
}

// RequireAdmin validates the request's X-Admin-Key against eventID.
func RequireAdmin(r *http.Request, eventID, salt string) error {
	return ValidateAdminKey(eventID, r.Header.Get(HeaderAdminKey), salt)
}

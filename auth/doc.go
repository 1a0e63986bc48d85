// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth identifies callers and authorizes organizer actions.

# Callers

Participants are identified by the X-User-ID header, which the gateway in
front of this service sets after authenticating the user:

	userID, err := auth.CallerID(r)

# Organizer Keys

Creating an event returns an organizer key. It is an HMAC-SHA256 of the event
ID, so it can be checked without storing it:

	adminKey := auth.GenerateAdminKey(eventID, salt)
	err := auth.RequireAdmin(r, eventID, salt) // reads X-Admin-Key

The key is URL-safe base64 encoded without padding. The same event ID and salt
always produce the same key.
*/
package auth

package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// userIDHeader carries the caller's identity. Verification happens upstream
// (reverse proxy / auth gateway); an empty header is rejected before any
// storage access.
const userIDHeader = "X-User-ID"

// requireUser validates the user id header shared by every authenticated
// huma input struct. Ids containing ':' are rejected; the character
// delimits storage keys.
func requireUser(userID string) (string, error) {
	if userID == "" {
		return "", huma.Error401Unauthorized("Missing " + userIDHeader + " header")
	}
	if strings.Contains(userID, ":") {
		return "", huma.Error401Unauthorized("Invalid " + userIDHeader + " header")
	}
	return userID, nil
}

// userIDFromRequest resolves the caller identity for plain-HTTP endpoints
// (the SSE stream), mirroring requireUser. Invalid ids resolve to "".
func userIDFromRequest(r *http.Request) string {
	userID, err := requireUser(r.Header.Get(userIDHeader))
	if err != nil {
		return ""
	}
	return userID
}

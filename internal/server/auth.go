package server

import (
	"net/http"
	"strings"
)

const playerHeader = "X-Player-ID"

// credentials reads the player id and bearer token from the request.
// Browsers cannot set headers on EventSource or WebSocket requests, so the
// "player" and "token" query parameters are accepted as a fallback.
func credentials(r *http.Request) (playerID, token string, ok bool) {
	playerID = r.Header.Get(playerHeader)
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if playerID == "" || !found || token == "" {
		q := r.URL.Query()
		playerID, token = q.Get("player"), q.Get("token")
	}
	return playerID, token, playerID != "" && token != ""
}

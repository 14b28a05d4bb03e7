package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// handleStream pushes the session view over a WebSocket. Clients send
// nothing; actions go through the REST endpoints.
func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := a.authenticateStream(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     a.origins,
		InsecureSkipVerify: len(a.origins) == 0,
	})
	if err != nil {
		a.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	err = a.follow(ctx, code, playerID,
		func(v SessionView) error {
			wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			defer cancel()
			return wsjson.Write(wctx, conn, v)
		},
		func() error { return conn.Ping(ctx) },
	)
	if !streamEnded(ctx, err) {
		a.logger.Warn("websocket stream failed", "code", code, "player", playerID, "error", err)
		conn.Close(websocket.StatusInternalError, "stream failed")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

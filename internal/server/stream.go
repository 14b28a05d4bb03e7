package server

import (
	"context"
	"net/http"
	"time"
)

const pingInterval = 30 * time.Second

// authenticateStream checks stream credentials, writing the error response
// itself when they are rejected.
func (a *API) authenticateStream(w http.ResponseWriter, r *http.Request) (code, playerID string, ok bool) {
	playerID, token, ok := credentials(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "player and token query parameters required")
		return "", "", false
	}
	code = sessionCode(r)
	if err := a.engine.Authenticate(r.Context(), code, playerID, token); err != nil {
		writeEngineError(w, a.logger, err)
		return "", "", false
	}
	return code, playerID, true
}

// follow marks playerID connected for as long as ctx lives and calls send
// with the session view once on start and again after every change.
// Notifications only say that something changed; the view is re-read so
// every subscriber gets the latest version and never an older one.
func (a *API) follow(ctx context.Context, code, playerID string, send func(SessionView) error, ping func() error) error {
	ch := a.broker.Subscribe(code)
	defer a.broker.Unsubscribe(code, ch)

	if _, err := a.engine.SetConnected(ctx, code, playerID, true); err != nil {
		return err
	}
	defer func() {
		if _, err := a.engine.SetConnected(context.WithoutCancel(ctx), code, playerID, false); err != nil {
			a.logger.Warn("marking player disconnected", "code", code, "player", playerID, "error", err)
		}
	}()

	var last int64
	push := func() error {
		s, err := a.engine.Session(ctx, code)
		if err != nil {
			return err
		}
		if s.Version <= last {
			return nil
		}
		last = s.Version
		return send(newSessionView(s))
	}
	if err := push(); err != nil {
		return err
	}

	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			if err := push(); err != nil {
				return err
			}
		case <-t.C:
			if err := ping(); err != nil {
				return err
			}
		}
	}
}

func streamEnded(ctx context.Context, err error) bool {
	return err == nil || ctx.Err() != nil
}

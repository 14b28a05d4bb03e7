package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizboard/internal/game"
)

type ctxKey int

const ctxKeyPlayer ctxKey = iota

// playerMiddleware authenticates the caller as a member of the session in
// the {code} path parameter.
func (a *API) playerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID, token, ok := credentials(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "player id and token required")
			return
		}
		if err := a.engine.Authenticate(r.Context(), sessionCode(r), playerID, token); err != nil {
			writeEngineError(w, a.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyPlayer, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFrom(r *http.Request) string {
	return r.Context().Value(ctxKeyPlayer).(string)
}

func sessionCode(r *http.Request) string {
	return game.NormalizeCode(chi.URLParam(r, "code"))
}

package server

import (
	"net/http"
)

type JoinRequest struct {
	Name string `json:"name"`
}

type JoinResponse struct {
	PlayerID string      `json:"playerId"`
	Token    string      `json:"token"`
	Session  SessionView `json:"session"`
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.engine.CreateSession(r.Context())
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(s))
}

func (a *API) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	s, ticket, err := a.engine.JoinSession(r.Context(), sessionCode(r), req.Name)
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, JoinResponse{
		PlayerID: ticket.PlayerID,
		Token:    ticket.Token,
		Session:  newSessionView(s),
	})
}

func (a *API) handleSessionState(w http.ResponseWriter, r *http.Request) {
	s, err := a.engine.Session(r.Context(), sessionCode(r))
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

func (a *API) handleStart(w http.ResponseWriter, r *http.Request) {
	s, err := a.engine.StartSession(r.Context(), sessionCode(r), playerFrom(r))
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

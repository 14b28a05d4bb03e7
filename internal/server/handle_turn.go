package server

import (
	"net/http"

	"github.com/playperu/quizboard/internal/questions"
)

type DirectionRequest struct {
	Direction *int `json:"direction"`
}

type AnswerRequest struct {
	QuestionID  string `json:"questionId,omitempty"`
	AnswerIndex *int   `json:"answerIndex"`
}

type AnswerResponse struct {
	Outcome questions.Outcome `json:"outcome"`
	Session SessionView       `json:"session"`
}

func (a *API) handleRoll(w http.ResponseWriter, r *http.Request) {
	s, err := a.engine.Roll(r.Context(), sessionCode(r), playerFrom(r))
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

func (a *API) handleDirection(w http.ResponseWriter, r *http.Request) {
	var req DirectionRequest
	if err := readJSON(r, &req); err != nil || req.Direction == nil {
		writeBadRequest(w, "direction is required")
		return
	}

	s, err := a.engine.ChooseDirection(r.Context(), sessionCode(r), playerFrom(r), *req.Direction)
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

func (a *API) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := readJSON(r, &req); err != nil || req.AnswerIndex == nil {
		writeBadRequest(w, "answerIndex is required")
		return
	}

	s, out, err := a.engine.AnswerQuestion(r.Context(), sessionCode(r), playerFrom(r), req.QuestionID, *req.AnswerIndex)
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Outcome: out, Session: newSessionView(s)})
}

func (a *API) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	s, err := a.engine.EndTurn(r.Context(), sessionCode(r), playerFrom(r))
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

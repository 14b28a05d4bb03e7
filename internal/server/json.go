package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/quizboard/internal/quizboard"
)

// ErrorResponse is returned for all error responses. Code is stable and
// machine readable; for rejected cards it is the rejection reason.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, "invalid_input", msg)
}

// writeEngineError maps a game error onto an HTTP status. Unrecognised
// errors are logged and reported as internal without detail.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := quizboard.ErrorCode(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, quizboard.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, quizboard.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, quizboard.ErrNotYourTurn), errors.Is(err, quizboard.ErrNotYourQuestion):
		status = http.StatusForbidden
	case errors.Is(err, quizboard.ErrInvalidInput), errors.Is(err, quizboard.ErrInvalidDirection):
		status = http.StatusBadRequest
	case errors.Is(err, quizboard.ErrCardRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, quizboard.ErrInvalidPhase),
		errors.Is(err, quizboard.ErrInvalidRoster),
		errors.Is(err, quizboard.ErrConflict),
		errors.Is(err, quizboard.ErrNoQuestionAvailable):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizboard/internal/cards"
	"github.com/playperu/quizboard/internal/game"
	"github.com/playperu/quizboard/internal/quizboard"
)

type BuyCardRequest struct {
	CardID quizboard.CardID `json:"cardId"`
}

func (a *API) handleCardCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cards.Catalog())
}

func (a *API) handleBuyCard(w http.ResponseWriter, r *http.Request) {
	var req BuyCardRequest
	if err := readJSON(r, &req); err != nil || req.CardID == "" {
		writeBadRequest(w, "cardId is required")
		return
	}

	s, err := a.engine.BuyCard(r.Context(), sessionCode(r), playerFrom(r), req.CardID)
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

func (a *API) handleCheckCard(w http.ResponseWriter, r *http.Request) {
	id := quizboard.CardID(chi.URLParam(r, "cardID"))
	v, err := a.engine.CanUseCard(r.Context(), sessionCode(r), playerFrom(r), id)
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleUseCard(w http.ResponseWriter, r *http.Request) {
	var req game.CardPlay
	if err := readJSON(r, &req); err != nil || req.Card == "" {
		writeBadRequest(w, "cardId is required")
		return
	}

	s, err := a.engine.UseCard(r.Context(), sessionCode(r), playerFrom(r), req)
	if err != nil {
		writeEngineError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

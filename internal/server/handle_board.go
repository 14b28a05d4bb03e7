package server

import (
	"net/http"

	"github.com/playperu/quizboard/internal/board"
)

type BoardResponse struct {
	StartTile int          `json:"startTile"`
	Tiles     []board.Tile `json:"tiles"`
}

func (a *API) handleBoard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BoardResponse{
		StartTile: board.StartTile,
		Tiles:     a.engine.Board().Tiles(),
	})
}

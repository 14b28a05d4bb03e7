package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizboard/internal/game"
	"github.com/playperu/quizboard/internal/notify"
)

// API serves the game endpoints under /api.
type API struct {
	engine  *game.Engine
	broker  *notify.Broker
	logger  *slog.Logger
	origins []string
}

// NewAPI wires the game engine to HTTP. broker delivers change
// notifications to streaming clients; origins limits which browser origins
// may open the WebSocket stream (empty allows any).
func NewAPI(engine *game.Engine, broker *notify.Broker, logger *slog.Logger, origins []string) *API {
	return &API{engine: engine, broker: broker, logger: logger, origins: origins}
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/board", a.handleBoard)
	r.Get("/cards", a.handleCardCatalog)
	r.Post("/sessions", a.handleCreateSession)

	r.Route("/sessions/{code}", func(r chi.Router) {
		r.Get("/", a.handleSessionState)
		r.Post("/join", a.handleJoin)

		// Streams authenticate themselves so they can accept query credentials.
		r.Get("/events", a.handleEvents)
		r.Get("/ws", a.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(a.playerMiddleware)
			r.Post("/start", a.handleStart)
			r.Post("/roll", a.handleRoll)
			r.Post("/direction", a.handleDirection)
			r.Post("/answer", a.handleAnswer)
			r.Post("/end-turn", a.handleEndTurn)
			r.Post("/cards/buy", a.handleBuyCard)
			r.Get("/cards/{cardID}", a.handleCheckCard)
			r.Post("/cards/use", a.handleUseCard)
		})
	})

	return r
}

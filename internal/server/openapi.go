package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/quizboard/internal/cards"
	"github.com/playperu/quizboard/internal/game"
)

// SessionPath documents the {code} path parameter.
type SessionPath struct {
	Code string `path:"code" description:"Session join code."`
}

// PlayerAuth documents the credentials of authenticated session routes.
type PlayerAuth struct {
	SessionPath
	PlayerID      string `header:"X-Player-ID" required:"true"`
	Authorization string `header:"Authorization" required:"true" description:"Bearer token returned by join."`
}

// StreamAuth documents stream credentials, passed as query parameters.
type StreamAuth struct {
	SessionPath
	Player string `query:"player" required:"true"`
	Token  string `query:"token" required:"true"`
}

type joinInput struct {
	SessionPath
	JoinRequest
}

type directionInput struct {
	PlayerAuth
	DirectionRequest
}

type answerInput struct {
	PlayerAuth
	AnswerRequest
}

type buyCardInput struct {
	PlayerAuth
	BuyCardRequest
}

type useCardInput struct {
	PlayerAuth
	game.CardPlay
}

type checkCardInput struct {
	PlayerAuth
	CardID string `path:"cardID"`
}

// HealthResponse maps each dependency to its status.
type HealthResponse map[string]struct {
	Status string `json:"status" enum:"ok,error,disabled"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Quizboard API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Authoritative session engine for the multiplayer trivia board game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/board
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/board")
	getBoard.SetSummary("Board topology")
	getBoard.SetDescription("Every tile with its kind, category, zone and neighbours.")
	getBoard.AddRespStructure(BoardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBoard)

	// GET /api/cards
	getCards, _ := r.NewOperationContext(http.MethodGet, "/api/cards")
	getCards.SetSummary("Card catalog")
	getCards.AddRespStructure([]cards.Card{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCards)

	// POST /api/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSession.SetSummary("Create session")
	postSession.SetDescription("Opens a lobby under a fresh join code.")
	postSession.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(postSession)

	// GET /api/sessions/{code}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{code}")
	getSession.SetSummary("Session state")
	getSession.SetDescription("The session as players see it. The correct answer is never included.")
	getSession.AddReqStructure(SessionPath{})
	getSession.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// POST /api/sessions/{code}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/join")
	postJoin.SetSummary("Join session")
	postJoin.SetDescription("Adds a player to the lobby. The returned token is shown once.")
	postJoin.AddReqStructure(joinInput{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// POST /api/sessions/{code}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/start")
	postStart.SetSummary("Start session")
	postStart.SetDescription("Freezes the roster and draws the turn order. Needs at least two players.")
	postStart.AddReqStructure(PlayerAuth{})
	postStart.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// POST /api/sessions/{code}/roll
	postRoll, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/roll")
	postRoll.SetSummary("Roll the die")
	postRoll.SetDescription("Rolls for the current player. currentMove carries the value and the directions.")
	postRoll.AddReqStructure(PlayerAuth{})
	postRoll.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postRoll.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postRoll.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postRoll)

	// POST /api/sessions/{code}/direction
	postDirection, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/direction")
	postDirection.SetSummary("Choose direction")
	postDirection.SetDescription("Walks the rolled distance and resolves the landing tile.")
	postDirection.AddReqStructure(directionInput{})
	postDirection.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postDirection.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postDirection.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postDirection.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postDirection)

	// POST /api/sessions/{code}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/answer")
	postAnswer.SetSummary("Answer question")
	postAnswer.SetDescription("Answers the open question. Answers after the deadline count as a timeout.")
	postAnswer.AddReqStructure(answerInput{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/sessions/{code}/end-turn
	postEndTurn, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/end-turn")
	postEndTurn.SetSummary("End turn")
	postEndTurn.SetDescription("Passes the turn after landing on a tile that asks no question.")
	postEndTurn.AddReqStructure(PlayerAuth{})
	postEndTurn.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postEndTurn.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postEndTurn)

	// POST /api/sessions/{code}/cards/buy
	postBuy, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/cards/buy")
	postBuy.SetSummary("Buy card")
	postBuy.SetDescription("Spends points on a card before rolling. A hand holds at most three cards.")
	postBuy.AddReqStructure(buyCardInput{})
	postBuy.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postBuy.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postBuy)

	// GET /api/sessions/{code}/cards/{cardID}
	getCard, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{code}/cards/{cardID}")
	getCard.SetSummary("Card legality")
	getCard.SetDescription("Whether the caller could play the card right now, and why not.")
	getCard.AddReqStructure(checkCardInput{})
	getCard.AddRespStructure(cards.Verdict{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCard)

	// POST /api/sessions/{code}/cards/use
	postUse, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{code}/cards/use")
	postUse.SetSummary("Play card")
	postUse.SetDescription("Validates and applies a card. Teleport and category swap need a category.")
	postUse.AddReqStructure(useCardInput{})
	postUse.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postUse.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postUse.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postUse)

	// GET /api/sessions/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{code}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events carrying the session view after every change. Marks the player connected while open.")
	getEvents.AddReqStructure(StreamAuth{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/sessions/{code}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{code}/ws")
	getWS.SetSummary("WebSocket stream")
	getWS.SetDescription("Upgrades to a WebSocket that receives the session view as JSON after every change.")
	getWS.AddReqStructure(StreamAuth{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

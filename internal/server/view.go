package server

import (
	"time"

	"github.com/playperu/quizboard/internal/quizboard"
)

// SessionView is the session as clients see it: the open question without
// its correct index and players without credentials.
type SessionView struct {
	Code             string                  `json:"code"`
	Version          int64                   `json:"version"`
	Status           quizboard.SessionStatus `json:"status"`
	Phase            quizboard.Phase         `json:"phase"`
	TurnOrder        []string                `json:"turnOrder"`
	CurrentTurnIndex int                     `json:"currentTurnIndex"`
	CurrentPlayerID  string                  `json:"currentPlayerId"`
	Players          []PlayerView            `json:"players"`
	CurrentQuestion  *QuestionView           `json:"currentQuestion"`
	CurrentMove      *quizboard.Move         `json:"currentMove"`
	OfferWindow      *quizboard.OfferWindow  `json:"offerWindow"`
	QuestionsUsed    int                     `json:"questionsUsed"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

type PlayerView struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	Points    int                         `json:"points"`
	Levels    map[quizboard.Category]int  `json:"levels"`
	Keys      map[quizboard.Category]bool `json:"keys"`
	Position  int                         `json:"position"`
	Cards     []quizboard.CardID          `json:"cards"`
	Connected bool                        `json:"connected"`
}

type QuestionView struct {
	ID              string                        `json:"id"`
	Category        quizboard.Category            `json:"category"`
	Level           quizboard.Level               `json:"level"`
	Text            string                        `json:"text"`
	Answers         [quizboard.AnswerCount]string `json:"answers"`
	ForPlayer       string                        `json:"forPlayer"`
	Tile            int                           `json:"tile"`
	DurationSeconds int                           `json:"durationSeconds"`
	StartedAt       time.Time                     `json:"startedAt"`
	ExpiresAt       time.Time                     `json:"expiresAt"`
	IsKeyQuestion   bool                          `json:"isKeyQuestion"`
	IsVaultQuestion bool                          `json:"isVaultQuestion"`
	Eliminated      []int                         `json:"eliminated,omitempty"`
}

func newSessionView(s quizboard.Session) SessionView {
	v := SessionView{
		Code:             s.Code,
		Version:          s.Version,
		Status:           s.Status,
		Phase:            s.Phase,
		TurnOrder:        s.TurnOrder,
		CurrentTurnIndex: s.CurrentTurnIndex,
		CurrentPlayerID:  s.CurrentPlayerID,
		Players:          make([]PlayerView, 0, len(s.Players)),
		CurrentMove:      s.CurrentMove,
		OfferWindow:      s.OfferWindow,
		QuestionsUsed:    len(s.UsedQuestionIDs),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	for _, p := range s.PlayersByJoin() {
		v.Players = append(v.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Points:    p.Points,
			Levels:    p.Levels,
			Keys:      p.Keys,
			Position:  p.Position,
			Cards:     p.Cards,
			Connected: p.Connected,
		})
	}
	if q := s.CurrentQuestion; q != nil {
		v.CurrentQuestion = &QuestionView{
			ID:              q.ID,
			Category:        q.Category,
			Level:           q.Level,
			Text:            q.Text,
			Answers:         q.Answers,
			ForPlayer:       q.ForPlayer,
			Tile:            q.Tile,
			DurationSeconds: q.DurationSeconds,
			StartedAt:       q.StartedAt,
			ExpiresAt:       q.Deadline(),
			IsKeyQuestion:   q.IsKeyQuestion,
			IsVaultQuestion: q.IsVaultQuestion,
			Eliminated:      q.Eliminated,
		}
	}
	return v
}

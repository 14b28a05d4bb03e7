package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/playperu/quizboard/internal/board"
	"github.com/playperu/quizboard/internal/quizboard"
)

const (
	codeLength    = 6
	codeAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeAttempts  = 5
	maxNameLength = 32
)

// CreateSession opens a new lobby under a fresh join code.
func (e *Engine) CreateSession(ctx context.Context) (quizboard.Session, error) {
	now := e.now().UTC()
	for range codeAttempts {
		code, err := newCode()
		if err != nil {
			return quizboard.Session{}, err
		}
		s, err := e.store.CreateSession(ctx, quizboard.Session{
			Code:            code,
			Status:          quizboard.StatusLobby,
			Players:         map[string]*quizboard.Player{},
			TurnOrder:       []string{},
			UsedQuestionIDs: []string{},
			CreatedAt:       now,
		})
		if errors.Is(err, quizboard.ErrConflict) {
			continue
		}
		if err != nil {
			return quizboard.Session{}, err
		}
		e.logger.Info("session created", "code", code)
		return s, nil
	}
	return quizboard.Session{}, fmt.Errorf("allocating session code: %w", quizboard.ErrConflict)
}

func newCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeCode upper-cases and trims a user-typed join code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Ticket is what a joining player keeps: their id and the bearer token that
// authenticates later actions. The token is never stored in clear.
type Ticket struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

// JoinSession adds a player named name to the lobby code.
func (e *Engine) JoinSession(ctx context.Context, code, name string) (quizboard.Session, Ticket, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return quizboard.Session{}, Ticket{}, fmt.Errorf("player name must be 1-%d characters: %w", maxNameLength, quizboard.ErrInvalidInput)
	}

	token, hash, err := e.issueToken()
	if err != nil {
		return quizboard.Session{}, Ticket{}, err
	}
	ticket := Ticket{PlayerID: uuid.NewString(), Token: token}

	s, _, err := e.apply(ctx, code, "join", func(s *quizboard.Session) error {
		if s.Status != quizboard.StatusLobby {
			return fmt.Errorf("session %s is %s: %w", s.Code, s.Status, quizboard.ErrInvalidPhase)
		}
		if len(s.Players) >= quizboard.MaxPlayers {
			return fmt.Errorf("session %s has %d players: %w", s.Code, len(s.Players), quizboard.ErrInvalidRoster)
		}
		if s.Players == nil {
			s.Players = map[string]*quizboard.Player{}
		}
		s.Players[ticket.PlayerID] = &quizboard.Player{
			ID:        ticket.PlayerID,
			Name:      name,
			Levels:    zeroLevels(),
			Keys:      map[quizboard.Category]bool{},
			Position:  board.StartTile,
			Cards:     []quizboard.CardID{},
			Connected: true,
			TokenHash: hash,
			JoinedAt:  e.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return quizboard.Session{}, Ticket{}, err
	}
	e.logger.Info("player joined", "code", s.Code, "player", ticket.PlayerID, "players", len(s.Players))
	return s, ticket, nil
}

func zeroLevels() map[quizboard.Category]int {
	levels := make(map[quizboard.Category]int, len(quizboard.Categories))
	for _, c := range quizboard.Categories {
		levels[c] = 0
	}
	return levels
}

// StartSession freezes the roster, draws a random turn order and resets
// every player to the start tile. Any member of the lobby may start it.
func (e *Engine) StartSession(ctx context.Context, code, playerID string) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "start", func(s *quizboard.Session) error {
		if s.Status != quizboard.StatusLobby {
			return fmt.Errorf("session %s is %s: %w", s.Code, s.Status, quizboard.ErrInvalidPhase)
		}
		if _, err := member(s, playerID); err != nil {
			return err
		}
		if len(s.Players) < quizboard.MinPlayers {
			return fmt.Errorf("session %s has %d players: %w", s.Code, len(s.Players), quizboard.ErrInvalidRoster)
		}

		order := make([]string, 0, len(s.Players))
		for _, p := range s.PlayersByJoin() {
			p.Points = 0
			p.Levels = zeroLevels()
			p.Keys = map[quizboard.Category]bool{}
			p.Position = board.StartTile
			p.Cards = []quizboard.CardID{}
			order = append(order, p.ID)
		}
		for i := len(order) - 1; i > 0; i-- {
			j := e.rand.IntN(i + 1)
			order[i], order[j] = order[j], order[i]
		}

		s.TurnOrder = order
		s.CurrentTurnIndex = 0
		s.CurrentPlayerID = order[0]
		s.Status = quizboard.StatusInProgress
		s.Phase = quizboard.PhaseWaitRoll
		s.CurrentQuestion = nil
		s.CurrentMove = nil
		s.OfferWindow = nil
		s.UsedQuestionIDs = []string{}
		return nil
	})
	if err != nil {
		return quizboard.Session{}, err
	}
	e.logger.Info("session started", "code", s.Code, "players", len(s.TurnOrder), "first", s.CurrentPlayerID)
	return s, nil
}

// SetConnected records whether playerID currently holds a live stream.
// Presence is informational: it never skips a turn.
func (e *Engine) SetConnected(ctx context.Context, code, playerID string, connected bool) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "presence", func(s *quizboard.Session) error {
		p, err := member(s, playerID)
		if err != nil {
			return err
		}
		if p.Connected == connected {
			return errNoChange
		}
		p.Connected = connected
		return nil
	})
	return s, err
}

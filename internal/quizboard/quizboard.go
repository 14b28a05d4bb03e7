// Package quizboard defines the core domain types shared by the board,
// question, card and game packages. It has zero external dependencies.
package quizboard

import (
	"slices"
	"strings"
	"time"
)

type Category string

const (
	CategoryHistory       Category = "history"
	CategoryScience       Category = "science"
	CategoryGeography     Category = "geography"
	CategoryArts          Category = "arts"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
)

// Categories lists the six categories in board order. Sector s of the ring
// is keyed to Categories[s].
var Categories = [6]Category{
	CategoryHistory,
	CategoryScience,
	CategoryGeography,
	CategoryArts,
	CategorySports,
	CategoryEntertainment,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

type SessionStatus string

const (
	StatusLobby      SessionStatus = "lobby"
	StatusInProgress SessionStatus = "in_progress"
	StatusFinished   SessionStatus = "finished"
)

// Phase is the sub-state of an in-progress session. Minigame, Duel and
// Vault are reserved: the engine never enters them yet, but card legality
// already accounts for them.
type Phase string

const (
	PhaseNone            Phase = ""
	PhaseWaitRoll        Phase = "wait_roll"
	PhaseChooseDirection Phase = "choose_direction"
	PhaseQuestion        Phase = "question"
	PhaseResolveTile     Phase = "resolve_tile"
	PhaseMinigame        Phase = "minigame"
	PhaseDuel            Phase = "duel"
	PhaseVault           Phase = "vault"
)

const (
	MaxPlayers  = 6
	MinPlayers  = 2
	MaxCards    = 3
	MaxLevel    = 3
	DiceFaces   = 6
	AnswerCount = 4
)

type Player struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Points    int               `json:"points"`
	Levels    map[Category]int  `json:"levels"`
	Keys      map[Category]bool `json:"keys"`
	Position  int               `json:"position"`
	Cards     []CardID          `json:"cards"`
	Connected bool              `json:"connected"`
	TokenHash string            `json:"tokenHash"`
	JoinedAt  time.Time         `json:"joinedAt"`
}

// Clone returns a deep copy so callers can mutate maps and slices freely.
func (p Player) Clone() Player {
	c := p
	c.Levels = make(map[Category]int, len(p.Levels))
	for k, v := range p.Levels {
		c.Levels[k] = v
	}
	c.Keys = make(map[Category]bool, len(p.Keys))
	for k, v := range p.Keys {
		c.Keys[k] = v
	}
	c.Cards = append([]CardID(nil), p.Cards...)
	return c
}

func (p Player) HasCard(id CardID) bool {
	for _, c := range p.Cards {
		if c == id {
			return true
		}
	}
	return false
}

// RemoveCard drops one instance of id from the hand.
func (p *Player) RemoveCard(id CardID) bool {
	for i, c := range p.Cards {
		if c == id {
			p.Cards = append(p.Cards[:i], p.Cards[i+1:]...)
			return true
		}
	}
	return false
}

// Question is the open question of a session. It is created when a player
// lands on a category or key tile and cleared once answered or timed out.
type Question struct {
	ID              string              `json:"id"`
	Category        Category            `json:"category"`
	Level           Level               `json:"level"`
	Text            string              `json:"text"`
	Answers         [AnswerCount]string `json:"answers"`
	CorrectIndex    int                 `json:"correctIndex"`
	ForPlayer       string              `json:"forPlayer"`
	Tile            int                 `json:"tile"`
	AdvancesLevel   bool                `json:"advancesLevel"`
	IsKeyQuestion   bool                `json:"isKeyQuestion"`
	IsVaultQuestion bool                `json:"isVaultQuestion"`
	DurationSeconds int                 `json:"durationSeconds"`
	StartedAt       time.Time           `json:"startedAt"`
	ExpiresAt       time.Time           `json:"expiresAt"`
	Eliminated      []int               `json:"eliminated,omitempty"`
}

// Ordinary reports whether q is a plain category/level question, the only
// kind in-question cards may act on.
func (q Question) Ordinary() bool {
	return !q.IsKeyQuestion && !q.IsVaultQuestion
}

// Deadline returns ExpiresAt, or StartedAt+DurationSeconds for records
// written without an explicit expiry.
func (q Question) Deadline() time.Time {
	if !q.ExpiresAt.IsZero() {
		return q.ExpiresAt
	}
	return q.StartedAt.Add(time.Duration(q.DurationSeconds) * time.Second)
}

// QuestionRecord is a question as stored by the content provider, before it
// is shuffled and bound to a player.
type QuestionRecord struct {
	ID           string              `json:"id"`
	Category     Category            `json:"category"`
	Level        Level               `json:"level"`
	Text         string              `json:"text"`
	Answers      [AnswerCount]string `json:"answers"`
	CorrectIndex int                 `json:"correctIndex"`
}

type Direction struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	To    int    `json:"to"`
}

// Move is the pending or just-completed movement of the current turn.
type Move struct {
	FromTile     int         `json:"fromTile"`
	DiceValue    int         `json:"diceValue"`
	Directions   []Direction `json:"directions"`
	Direction    *int        `json:"direction,omitempty"`
	PreviousTile *int        `json:"previousTile,omitempty"`
}

type WindowKind string

const (
	WindowPostMove        WindowKind = "post_move"
	WindowPostWrongAnswer WindowKind = "post_wrong_answer"
	WindowDefense         WindowKind = "defense"
)

// OfferWindow is a short-lived opportunity for one player to play a
// window-bound card. At most one is open per session. Rolling, moving,
// closing a question and ending a turn close it; so does expiry.
type OfferWindow struct {
	Kind      WindowKind `json:"kind"`
	PlayerID  string     `json:"playerId"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// OpenFor reports whether the window is of kind, owned by playerID and not
// yet expired at now.
func (w *OfferWindow) OpenFor(kind WindowKind, playerID string, now time.Time) bool {
	return w != nil && w.Kind == kind && w.PlayerID == playerID && now.Before(w.ExpiresAt)
}

// Session is the shared authoritative record. Version increases by one on
// every successful write and gates concurrent updates.
type Session struct {
	Code             string             `json:"code"`
	Version          int64              `json:"version"`
	Status           SessionStatus      `json:"status"`
	Phase            Phase              `json:"phase"`
	TurnOrder        []string           `json:"turnOrder"`
	CurrentTurnIndex int                `json:"currentTurnIndex"`
	CurrentPlayerID  string             `json:"currentPlayerId"`
	Players          map[string]*Player `json:"players"`
	CurrentQuestion  *Question          `json:"currentQuestion"`
	CurrentMove      *Move              `json:"currentMove"`
	UsedQuestionIDs  []string           `json:"usedQuestionIds"`
	OfferWindow      *OfferWindow       `json:"offerWindow"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// QuestionUsed reports whether id has already been served in this session.
func (s *Session) QuestionUsed(id string) bool {
	for _, u := range s.UsedQuestionIDs {
		if u == id {
			return true
		}
	}
	return false
}

// AdvanceTurn passes the turn to the next player in turn order.
func (s *Session) AdvanceTurn() {
	if len(s.TurnOrder) == 0 {
		return
	}
	s.CurrentTurnIndex = (s.CurrentTurnIndex + 1) % len(s.TurnOrder)
	s.CurrentPlayerID = s.TurnOrder[s.CurrentTurnIndex]
}

// PlayerNames returns player names in join order.
func (s *Session) PlayerNames() []string {
	ps := s.PlayersByJoin()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// PlayersByJoin returns the players sorted by join time, then id.
func (s *Session) PlayersByJoin() []*Player {
	ps := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		ps = append(ps, p)
	}
	slices.SortFunc(ps, func(a, b *Player) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return ps
}

// Package game is the authoritative session state machine. Every action is
// one read / compute / version-gated write cycle against the session store;
// nothing is applied partially and no client computes outcomes.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/quizboard/internal/board"
	"github.com/playperu/quizboard/internal/notify"
	"github.com/playperu/quizboard/internal/questions"
	"github.com/playperu/quizboard/internal/quizboard"
)

// SessionStore is the document store collaborator. ReplaceSession must
// reject a write whose Version no longer matches with ErrConflict.
type SessionStore interface {
	Session(ctx context.Context, code string) (quizboard.Session, error)
	CreateSession(ctx context.Context, s quizboard.Session) (quizboard.Session, error)
	ReplaceSession(ctx context.Context, s quizboard.Session) (quizboard.Session, error)
}

const (
	// OfferWindowDuration is how long a window-bound card stays playable.
	OfferWindowDuration = 10 * time.Second
	// ExtraTimeBonus is added to the open question by the extra-time card.
	ExtraTimeBonus = 15 * time.Second

	defaultMaxAttempts = 3
)

type Config struct {
	Store     SessionStore
	Questions questions.Source
	// Publisher is told about every successful write. Optional.
	Publisher notify.Publisher
	Logger    *slog.Logger
	// Board defaults to board.New().
	Board *board.Board
	// Rand and Now default to math/rand/v2 and time.Now.
	Rand questions.Rand
	Now  func() time.Time
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// MaxAttempts bounds in-process retries after a lost write race.
	MaxAttempts int
}

type Engine struct {
	store       SessionStore
	questions   *questions.Manager
	board       *board.Board
	publisher   notify.Publisher
	logger      *slog.Logger
	rand        questions.Rand
	now         func() time.Time
	bcryptCost  int
	maxAttempts int
}

func New(cfg Config) *Engine {
	e := &Engine{
		store:       cfg.Store,
		board:       cfg.Board,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger,
		rand:        cfg.Rand,
		now:         cfg.Now,
		bcryptCost:  cfg.BcryptCost,
		maxAttempts: cfg.MaxAttempts,
	}
	if e.board == nil {
		e.board = board.New()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.rand == nil {
		e.rand = defaultRand{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = defaultMaxAttempts
	}
	e.questions = questions.NewManager(cfg.Questions,
		questions.WithRand(e.rand),
		questions.WithClock(e.now),
	)
	return e
}

// Board returns the immutable board the engine plays on.
func (e *Engine) Board() *board.Board { return e.board }

// Session returns the current document for code.
func (e *Engine) Session(ctx context.Context, code string) (quizboard.Session, error) {
	return e.store.Session(ctx, code)
}

// errNoChange tells apply that the mutation found nothing to do.
var errNoChange = errors.New("no change")

// apply runs fn against the latest document and writes the result if the
// stored version has not moved in the meantime. A lost race re-reads and
// recomputes, up to maxAttempts times, before surfacing ErrConflict. fn may
// run several times and must only touch state reachable from s or locals it
// resets on entry. The boolean reports whether anything was written.
func (e *Engine) apply(ctx context.Context, code string, action string, fn func(s *quizboard.Session) error) (quizboard.Session, bool, error) {
	for attempt := 1; ; attempt++ {
		s, err := e.store.Session(ctx, code)
		if err != nil {
			return quizboard.Session{}, false, err
		}

		if err := fn(&s); err != nil {
			if errors.Is(err, errNoChange) {
				return s, false, nil
			}
			return quizboard.Session{}, false, err
		}

		written, err := e.store.ReplaceSession(ctx, s)
		if errors.Is(err, quizboard.ErrConflict) && attempt < e.maxAttempts {
			e.logger.Warn("session write lost race, retrying",
				"code", code, "action", action, "attempt", attempt)
			continue
		}
		if err != nil {
			if errors.Is(err, quizboard.ErrConflict) {
				e.logger.Warn("session write abandoned", "code", code, "action", action, "attempts", attempt)
			}
			return quizboard.Session{}, false, err
		}

		e.logger.Debug("session transition",
			"code", code, "action", action, "version", written.Version, "phase", written.Phase)
		e.publish(ctx, written)
		return written, true, nil
	}
}

// ChangeEvent is the payload published after every write. Subscribers
// re-read the session to render their own view of it.
type ChangeEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Version int64  `json:"version"`
}

func (e *Engine) publish(ctx context.Context, s quizboard.Session) {
	if e.publisher == nil {
		return
	}
	data, _ := json.Marshal(ChangeEvent{Type: "session_changed", Code: s.Code, Version: s.Version})
	if err := e.publisher.Publish(ctx, s.Code, data); err != nil {
		e.logger.Error("publishing session change", "code", s.Code, "error", err)
	}
}

// requireTurn checks that s is in progress, in phase, and that playerID is
// the player whose turn it is.
func requireTurn(s *quizboard.Session, playerID string, phase quizboard.Phase) (*quizboard.Player, error) {
	if s.Status != quizboard.StatusInProgress {
		return nil, fmt.Errorf("session %s is %s: %w", s.Code, s.Status, quizboard.ErrInvalidPhase)
	}
	p, err := member(s, playerID)
	if err != nil {
		return nil, err
	}
	if s.Phase != phase {
		return nil, fmt.Errorf("session %s is in %s, not %s: %w", s.Code, s.Phase, phase, quizboard.ErrInvalidPhase)
	}
	if s.CurrentPlayerID != playerID {
		return nil, fmt.Errorf("player %s: %w", playerID, quizboard.ErrNotYourTurn)
	}
	return p, nil
}

func member(s *quizboard.Session, playerID string) (*quizboard.Player, error) {
	p, ok := s.Players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s in session %s: %w", playerID, s.Code, quizboard.ErrNotFound)
	}
	return p, nil
}

// land resolves the tile p now stands on: a category or key tile opens a
// question, anything else leaves the turn in the pass-through resolve phase.
func (e *Engine) land(ctx context.Context, s *quizboard.Session, p *quizboard.Player) error {
	tile, err := e.board.Tile(p.Position)
	if err != nil {
		return err
	}
	if !tile.Asks() {
		s.CurrentQuestion = nil
		s.Phase = quizboard.PhaseResolveTile
		return nil
	}
	q, used, err := e.questions.Prepare(ctx, *s, *p, tile)
	if err != nil {
		return err
	}
	s.CurrentQuestion = &q
	s.UsedQuestionIDs = used
	s.Phase = quizboard.PhaseQuestion
	return nil
}

func (e *Engine) openWindow(s *quizboard.Session, kind quizboard.WindowKind, playerID string) {
	s.OfferWindow = &quizboard.OfferWindow{
		Kind:      kind,
		PlayerID:  playerID,
		ExpiresAt: e.now().UTC().Add(OfferWindowDuration),
	}
}

package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizboard/internal/database"
	"github.com/playperu/quizboard/internal/migrations"
	"github.com/playperu/quizboard/internal/quizboard"
	"github.com/playperu/quizboard/internal/store"
)

// bank is an in-memory question source with n questions per category and
// level. The correct answer is always stored first.
type bank int

func (n bank) QuestionsFor(_ context.Context, c quizboard.Category, l quizboard.Level, exclude []string) ([]quizboard.QuestionRecord, error) {
	var out []quizboard.QuestionRecord
	for i := range int(n) {
		id := fmt.Sprintf("%s-%s-%d", c, l, i)
		if slices.Contains(exclude, id) {
			continue
		}
		out = append(out, quizboard.QuestionRecord{
			ID:       id,
			Category: c,
			Level:    l,
			Text:     "question " + id,
			Answers:  [4]string{"right", "wrong a", "wrong b", "wrong c"},
		})
	}
	return out, nil
}

// scriptedRand returns queued die faces for six-sided draws and 0 for
// every other draw, so shuffles and question picks are stable.
type scriptedRand struct {
	mu   sync.Mutex
	dice []int
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == quizboard.DiceFaces && len(r.dice) > 0 {
		d := r.dice[0]
		r.dice = r.dice[1:]
		return d - 1
	}
	return 0
}

func (r *scriptedRand) queue(faces ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dice = append(r.dice, faces...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (r *recorder) Publish(_ context.Context, _ string, payload []byte) error {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Events() []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	sessions *store.Sessions
	clock    *clock
	rand     *scriptedRand
	events   *recorder
	engine   *Engine
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		sessions: store.NewSessions(openDB(t)),
		clock:    &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		rand:     &scriptedRand{},
		events:   &recorder{},
	}
	f.engine = f.newEngine(f.sessions)
	return f
}

func (f *fixture) newEngine(st SessionStore) *Engine {
	return New(Config{
		Store:      st,
		Questions:  bank(3),
		Publisher:  f.events,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:       f.rand,
		Now:        f.clock.Now,
		BcryptCost: bcrypt.MinCost,
	})
}

// lobby creates a session and joins one player per name.
func (f *fixture) lobby(names ...string) (quizboard.Session, []Ticket) {
	f.t.Helper()
	s, err := f.engine.CreateSession(f.ctx)
	if err != nil {
		f.t.Fatalf("CreateSession: %v", err)
	}
	var tickets []Ticket
	for _, n := range names {
		var tk Ticket
		s, tk, err = f.engine.JoinSession(f.ctx, s.Code, n)
		if err != nil {
			f.t.Fatalf("JoinSession(%s): %v", n, err)
		}
		tickets = append(tickets, tk)
	}
	return s, tickets
}

// started returns an in-progress session with two players.
func (f *fixture) started() quizboard.Session {
	f.t.Helper()
	s, tickets := f.lobby("ana", "beto")
	s, err := f.engine.StartSession(f.ctx, s.Code, tickets[0].PlayerID)
	if err != nil {
		f.t.Fatalf("StartSession: %v", err)
	}
	return s
}

// toQuestion rolls a one for the current player and steps right from the
// start tile onto tile 1, a science category tile.
func (f *fixture) toQuestion(code string) quizboard.Session {
	f.t.Helper()
	s := f.mustSession(code)
	f.rand.queue(1)
	if _, err := f.engine.Roll(f.ctx, code, s.CurrentPlayerID); err != nil {
		f.t.Fatalf("Roll: %v", err)
	}
	s, err := f.engine.ChooseDirection(f.ctx, code, s.CurrentPlayerID, 1)
	if err != nil {
		f.t.Fatalf("ChooseDirection: %v", err)
	}
	if s.Phase != quizboard.PhaseQuestion {
		f.t.Fatalf("phase = %s, want question", s.Phase)
	}
	return s
}

func (f *fixture) mustSession(code string) quizboard.Session {
	f.t.Helper()
	s, err := f.sessions.Session(f.ctx, code)
	if err != nil {
		f.t.Fatalf("Session(%s): %v", code, err)
	}
	return s
}

// edit changes the stored session directly, bypassing the engine.
func (f *fixture) edit(code string, fn func(s *quizboard.Session)) quizboard.Session {
	f.t.Helper()
	s := f.mustSession(code)
	fn(&s)
	s, err := f.sessions.ReplaceSession(f.ctx, s)
	if err != nil {
		f.t.Fatalf("ReplaceSession: %v", err)
	}
	return s
}

func (f *fixture) give(code, playerID string, ids ...quizboard.CardID) {
	f.t.Helper()
	f.edit(code, func(s *quizboard.Session) {
		s.Players[playerID].Cards = append(s.Players[playerID].Cards, ids...)
	})
}

func otherPlayer(s quizboard.Session) string {
	for _, id := range s.TurnOrder {
		if id != s.CurrentPlayerID {
			return id
		}
	}
	return ""
}

func wrongAnswer(q *quizboard.Question) int {
	return (q.CorrectIndex + 1) % quizboard.AnswerCount
}

// racingStore slips a competing write in before each of the next races
// replaces, so the engine's write loses the version check.
type racingStore struct {
	*store.Sessions
	mu    sync.Mutex
	races int
}

func (r *racingStore) ReplaceSession(ctx context.Context, s quizboard.Session) (quizboard.Session, error) {
	r.mu.Lock()
	race := r.races > 0
	if race {
		r.races--
	}
	r.mu.Unlock()
	if race {
		cur, err := r.Sessions.Session(ctx, s.Code)
		if err != nil {
			return quizboard.Session{}, err
		}
		if _, err := r.Sessions.ReplaceSession(ctx, cur); err != nil {
			return quizboard.Session{}, err
		}
	}
	return r.Sessions.ReplaceSession(ctx, s)
}

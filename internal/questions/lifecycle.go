// Package questions decides which question a player must answer, draws it
// from the content source and turns answers into progression and points.
package questions

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/playperu/quizboard/internal/board"
	"github.com/playperu/quizboard/internal/quizboard"
)

// Source is the content provider. QuestionsFor may return an empty slice.
type Source interface {
	QuestionsFor(ctx context.Context, category quizboard.Category, level quizboard.Level, exclude []string) ([]quizboard.QuestionRecord, error)
}

// Rand is the randomness the manager draws from. *rand.Rand satisfies it;
// the default uses the goroutine-safe top-level functions of math/rand/v2.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Durations by question kind, in seconds.
const (
	KeyDuration      = 30
	Level1Duration   = 15
	Level2Duration   = 15
	Level3Duration   = 20
	ReviewDuration   = 15
	FallbackDuration = 15

	// ReviewLevel is the tier served once a category is maxed out.
	ReviewLevel = 2
)

// Points awarded for correct answers.
const (
	KeyPoints  = 40
	FlatPoints = 20
)

var levelPoints = map[int]int{1: 15, 2: 20, 3: 25}

type Manager struct {
	source Source
	rand   Rand
	now    func() time.Time
}

type Option func(*Manager)

func WithRand(r Rand) Option { return func(m *Manager) { m.rand = r } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(source Source, opts ...Option) *Manager {
	m := &Manager{source: source, rand: globalRand{}, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Tier is what a player must answer on a tile: the level to draw and how a
// correct answer counts.
type Tier struct {
	Category      quizboard.Category
	Level         quizboard.Level
	AdvancesLevel bool
	IsKey         bool
}

// TierFor applies the decision table for player landing on a tile of kind
// with category.
//
//	           L < 3          L == 3, no key      L == 3, key held
//	category   L+1, advances  2, review           2, review
//	key        L+1, advances  key question        2, review
func TierFor(player quizboard.Player, kind board.Kind, category quizboard.Category) Tier {
	l := player.Levels[category]
	switch {
	case l < quizboard.MaxLevel:
		if l < 0 {
			l = 0
		}
		return Tier{Category: category, Level: quizboard.NumericLevel(l + 1), AdvancesLevel: true}
	case kind == board.KindKey && !player.Keys[category]:
		return Tier{Category: category, Level: quizboard.KeyLevel, IsKey: true}
	default:
		return Tier{Category: category, Level: quizboard.NumericLevel(ReviewLevel)}
	}
}

// Prepare draws the question player must answer on tile. The returned id
// list is the session's used set with the drawn id already added, so the
// question is never served twice even if the caller's action later fails.
func (m *Manager) Prepare(ctx context.Context, s quizboard.Session, player quizboard.Player, tile board.Tile) (quizboard.Question, []string, error) {
	if !tile.Asks() {
		return quizboard.Question{}, s.UsedQuestionIDs, fmt.Errorf("tile %d asks no question: %w", tile.ID, quizboard.ErrInvalidInput)
	}
	return m.Draw(ctx, s, player.ID, tile.ID, TierFor(player, tile.Kind, tile.Category))
}

// Draw picks a random unused question for tier and binds it to playerID.
func (m *Manager) Draw(ctx context.Context, s quizboard.Session, playerID string, tile int, tier Tier) (quizboard.Question, []string, error) {
	pool, err := m.source.QuestionsFor(ctx, tier.Category, tier.Level, s.UsedQuestionIDs)
	if err != nil {
		return quizboard.Question{}, s.UsedQuestionIDs, fmt.Errorf("loading %s/%s questions: %w", tier.Category, tier.Level, err)
	}
	// The source is trusted to filter, but a stale replica could still
	// return a used id.
	candidates := pool[:0:0]
	for _, r := range pool {
		if !s.QuestionUsed(r.ID) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return quizboard.Question{}, s.UsedQuestionIDs,
			fmt.Errorf("%s level %s: %w", tier.Category, tier.Level, quizboard.ErrNoQuestionAvailable)
	}

	rec := candidates[m.rand.IntN(len(candidates))]
	q := quizboard.Question{
		ID:            rec.ID,
		Category:      tier.Category,
		Level:         tier.Level,
		Text:          rec.Text,
		ForPlayer:     playerID,
		Tile:          tile,
		AdvancesLevel: tier.AdvancesLevel,
		IsKeyQuestion: tier.IsKey,
	}
	q.Answers, q.CorrectIndex = m.shuffle(rec.Answers, rec.CorrectIndex)
	q.DurationSeconds = Duration(q)
	q.StartedAt = m.now().UTC()
	q.ExpiresAt = q.StartedAt.Add(time.Duration(q.DurationSeconds) * time.Second)

	used := append(append([]string(nil), s.UsedQuestionIDs...), rec.ID)
	return q, used, nil
}

// Redraw replaces q with a fresh question of the same tier, keeping its
// owner, tile and timer.
func (m *Manager) Redraw(ctx context.Context, s quizboard.Session, q quizboard.Question, category quizboard.Category) (quizboard.Question, []string, error) {
	tier := Tier{Category: category, Level: q.Level, AdvancesLevel: q.AdvancesLevel, IsKey: q.IsKeyQuestion}
	next, used, err := m.Draw(ctx, s, q.ForPlayer, q.Tile, tier)
	if err != nil {
		return quizboard.Question{}, used, err
	}
	next.IsVaultQuestion = q.IsVaultQuestion
	next.DurationSeconds = q.DurationSeconds
	next.StartedAt = q.StartedAt
	next.ExpiresAt = q.ExpiresAt
	return next, used, nil
}

// shuffle permutes answers uniformly (Fisher-Yates) and returns where the
// correct answer ended up.
func (m *Manager) shuffle(answers [quizboard.AnswerCount]string, correct int) ([quizboard.AnswerCount]string, int) {
	order := [quizboard.AnswerCount]int{0, 1, 2, 3}
	for i := len(order) - 1; i > 0; i-- {
		j := m.rand.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	var out [quizboard.AnswerCount]string
	newCorrect := -1
	for i, src := range order {
		out[i] = answers[src]
		if src == correct {
			newCorrect = i
		}
	}
	return out, newCorrect
}

// Duration returns the answer time for q in seconds.
func Duration(q quizboard.Question) int {
	if q.IsKeyQuestion || q.Level.IsKey() {
		return KeyDuration
	}
	n, ok := q.Level.Number()
	if !ok {
		return FallbackDuration
	}
	if !q.AdvancesLevel {
		if n == ReviewLevel {
			return ReviewDuration
		}
		return FallbackDuration
	}
	switch n {
	case 1:
		return Level1Duration
	case 2:
		return Level2Duration
	case 3:
		return Level3Duration
	default:
		return FallbackDuration
	}
}

// Outcome is the result of closing a question.
type Outcome struct {
	Correct      bool             `json:"correct"`
	Points       int              `json:"points"`
	CorrectIndex int              `json:"correctIndex"`
	TimedOut     bool             `json:"timedOut"`
	Player       quizboard.Player `json:"-"`
}

// Resolve scores answerIndex against q for player. Any index that is not the
// correct one, including a negative index used for timeouts, is a plain
// wrong answer: no progression, no points. The returned player is a copy.
func Resolve(player quizboard.Player, q quizboard.Question, answerIndex int) Outcome {
	p := player.Clone()
	out := Outcome{CorrectIndex: q.CorrectIndex, Player: p}
	if answerIndex < 0 || answerIndex != q.CorrectIndex {
		return out
	}
	out.Correct = true

	n, numeric := q.Level.Number()
	switch {
	case q.IsKeyQuestion:
		p.Keys[q.Category] = true
		out.Points = KeyPoints
	case numeric && q.AdvancesLevel:
		if n > quizboard.MaxLevel {
			n = quizboard.MaxLevel
		}
		if p.Levels[q.Category] < n {
			p.Levels[q.Category] = n
		}
		out.Points = levelPoints[n]
	default:
		out.Points = FlatPoints
	}
	p.Points += out.Points
	out.Player = p
	return out
}

// Expired reports whether q can no longer be answered at now.
func Expired(q quizboard.Question, now time.Time) bool {
	return !now.Before(q.Deadline())
}

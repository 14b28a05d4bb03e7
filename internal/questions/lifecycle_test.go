package questions

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/playperu/quizboard/internal/board"
	"github.com/playperu/quizboard/internal/quizboard"
)

// bank is an in-memory Source holding n questions per category and tier.
type bank []quizboard.QuestionRecord

func newBank(n int) bank {
	var b bank
	levels := []quizboard.Level{quizboard.NumericLevel(1), quizboard.NumericLevel(2), quizboard.NumericLevel(3), quizboard.KeyLevel}
	for _, c := range quizboard.Categories {
		for _, l := range levels {
			for i := range n {
				b = append(b, quizboard.QuestionRecord{
					ID:           fmt.Sprintf("%s-%s-%d", c, l, i),
					Category:     c,
					Level:        l,
					Text:         fmt.Sprintf("%s question %d at %s", c, i, l),
					Answers:      [4]string{"right", "wrong a", "wrong b", "wrong c"},
					CorrectIndex: 0,
				})
			}
		}
	}
	return b
}

func (b bank) QuestionsFor(_ context.Context, c quizboard.Category, l quizboard.Level, exclude []string) ([]quizboard.QuestionRecord, error) {
	var out []quizboard.QuestionRecord
	for _, r := range b {
		if r.Category == c && r.Level == l && !slices.Contains(exclude, r.ID) {
			out = append(out, r)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(src Source) *Manager {
	return NewManager(src,
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func freshPlayer() quizboard.Player {
	return quizboard.Player{
		ID:     "p1",
		Levels: map[quizboard.Category]int{},
		Keys:   map[quizboard.Category]bool{},
	}
}

func categoryTile(t *testing.T, b *board.Board, c quizboard.Category) board.Tile {
	t.Helper()
	tile, ok := b.FirstRingTile(0, c)
	if !ok {
		t.Fatalf("no category tile for %s", c)
	}
	return tile
}

func TestTierFor(t *testing.T) {
	cat := quizboard.CategoryScience
	tests := []struct {
		name   string
		level  int
		hasKey bool
		kind   board.Kind
		want   Tier
	}{
		{"category fresh", 0, false, board.KindCategory, Tier{cat, quizboard.NumericLevel(1), true, false}},
		{"category level 2", 2, false, board.KindCategory, Tier{cat, quizboard.NumericLevel(3), true, false}},
		{"category maxed", 3, false, board.KindCategory, Tier{cat, quizboard.NumericLevel(2), false, false}},
		{"category maxed with key", 3, true, board.KindCategory, Tier{cat, quizboard.NumericLevel(2), false, false}},
		{"key fresh", 0, false, board.KindKey, Tier{cat, quizboard.NumericLevel(1), true, false}},
		{"key maxed", 3, false, board.KindKey, Tier{cat, quizboard.KeyLevel, false, true}},
		{"key maxed with key", 3, true, board.KindKey, Tier{cat, quizboard.NumericLevel(2), false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := freshPlayer()
			p.Levels[cat] = tt.level
			p.Keys[cat] = tt.hasKey
			if got := TierFor(p, tt.kind, cat); got != tt.want {
				t.Errorf("TierFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPrepareFreshAndMaxedPlayer(t *testing.T) {
	b := board.New()
	m := newTestManager(newBank(3))
	tile := categoryTile(t, b, quizboard.CategoryArts)
	p := freshPlayer()

	q, used, err := m.Prepare(context.Background(), quizboard.Session{}, p, tile)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if n, _ := q.Level.Number(); n != 1 || !q.AdvancesLevel {
		t.Errorf("fresh player: level %s advances %v, want 1 true", q.Level, q.AdvancesLevel)
	}
	if q.DurationSeconds != Level1Duration {
		t.Errorf("duration = %d, want %d", q.DurationSeconds, Level1Duration)
	}
	if !q.ExpiresAt.Equal(fixedNow.Add(15 * time.Second)) {
		t.Errorf("expiresAt = %v", q.ExpiresAt)
	}
	if len(used) != 1 || used[0] != q.ID {
		t.Errorf("used = %v, want [%s]", used, q.ID)
	}
	if q.Answers[q.CorrectIndex] != "right" {
		t.Errorf("correct index %d points at %q", q.CorrectIndex, q.Answers[q.CorrectIndex])
	}

	p.Levels[quizboard.CategoryArts] = 3
	q, _, err = m.Prepare(context.Background(), quizboard.Session{UsedQuestionIDs: used}, p, tile)
	if err != nil {
		t.Fatalf("prepare maxed: %v", err)
	}
	if n, _ := q.Level.Number(); n != 2 || q.AdvancesLevel {
		t.Errorf("maxed player: level %s advances %v, want 2 false", q.Level, q.AdvancesLevel)
	}
	if q.DurationSeconds != ReviewDuration {
		t.Errorf("review duration = %d, want %d", q.DurationSeconds, ReviewDuration)
	}
}

func TestPrepareKeyQuestion(t *testing.T) {
	b := board.New()
	m := newTestManager(newBank(2))
	key, err := b.Tile(0)
	if err != nil {
		t.Fatal(err)
	}
	p := freshPlayer()
	p.Levels[key.Category] = 3

	q, _, err := m.Prepare(context.Background(), quizboard.Session{}, p, key)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !q.IsKeyQuestion || !q.Level.IsKey() {
		t.Errorf("expected key question, got %+v", q)
	}
	if q.DurationSeconds != KeyDuration {
		t.Errorf("duration = %d, want %d", q.DurationSeconds, KeyDuration)
	}
}

func TestPrepareExhaustsPool(t *testing.T) {
	b := board.New()
	m := newTestManager(newBank(2))
	tile := categoryTile(t, b, quizboard.CategoryHistory)
	s := quizboard.Session{}
	p := freshPlayer()

	seen := map[string]bool{}
	for range 2 {
		q, used, err := m.Prepare(context.Background(), s, p, tile)
		if err != nil {
			t.Fatalf("prepare: %v", err)
		}
		if seen[q.ID] {
			t.Fatalf("question %s served twice", q.ID)
		}
		seen[q.ID] = true
		s.UsedQuestionIDs = used
	}

	_, used, err := m.Prepare(context.Background(), s, p, tile)
	if !errors.Is(err, quizboard.ErrNoQuestionAvailable) {
		t.Fatalf("err = %v, want ErrNoQuestionAvailable", err)
	}
	if len(used) != 2 {
		t.Errorf("used = %v, want unchanged", used)
	}
}

func TestPrepareRejectsSilentTile(t *testing.T) {
	b := board.New()
	m := newTestManager(newBank(1))
	event, _ := b.Tile(2)
	if _, _, err := m.Prepare(context.Background(), quizboard.Session{}, freshPlayer(), event); !errors.Is(err, quizboard.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestShuffleIsUniform(t *testing.T) {
	m := newTestManager(nil)
	counts := [4]int{}
	answers := [4]string{"a", "b", "c", "d"}
	const rounds = 8000
	for range rounds {
		out, idx := m.shuffle(answers, 0)
		if out[idx] != "a" {
			t.Fatalf("correct index %d points at %q", idx, out[idx])
		}
		counts[idx]++
	}
	for i, c := range counts {
		if c < rounds/4-400 || c > rounds/4+400 {
			t.Errorf("position %d chosen %d times out of %d", i, c, rounds)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		q    quizboard.Question
		want int
	}{
		{"key", quizboard.Question{Level: quizboard.KeyLevel, IsKeyQuestion: true}, 30},
		{"level 1", quizboard.Question{Level: quizboard.NumericLevel(1), AdvancesLevel: true}, 15},
		{"level 2", quizboard.Question{Level: quizboard.NumericLevel(2), AdvancesLevel: true}, 15},
		{"level 3", quizboard.Question{Level: quizboard.NumericLevel(3), AdvancesLevel: true}, 20},
		{"review", quizboard.Question{Level: quizboard.NumericLevel(2)}, 15},
		{"other", quizboard.Question{Level: quizboard.NumericLevel(3)}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.q); got != tt.want {
				t.Errorf("Duration = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cat := quizboard.CategoryGeography
	tests := []struct {
		name       string
		q          quizboard.Question
		level      int
		answer     int
		wantOK     bool
		wantPoints int
		wantLevel  int
	}{
		{"level 1 correct", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(1), AdvancesLevel: true, CorrectIndex: 2}, 0, 2, true, 15, 1},
		{"level 2 correct", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(2), AdvancesLevel: true, CorrectIndex: 1}, 1, 1, true, 20, 2},
		{"level 3 correct", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(3), AdvancesLevel: true, CorrectIndex: 0}, 2, 0, true, 25, 3},
		{"never lowers level", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(1), AdvancesLevel: true, CorrectIndex: 0}, 3, 0, true, 15, 3},
		{"review correct", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(2), CorrectIndex: 3}, 3, 3, true, 20, 3},
		{"wrong", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(1), AdvancesLevel: true, CorrectIndex: 3}, 0, 1, false, 0, 0},
		{"timeout", quizboard.Question{Category: cat, Level: quizboard.NumericLevel(1), AdvancesLevel: true, CorrectIndex: 0}, 0, -1, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := freshPlayer()
			p.Levels[cat] = tt.level
			out := Resolve(p, tt.q, tt.answer)
			if out.Correct != tt.wantOK {
				t.Errorf("correct = %v, want %v", out.Correct, tt.wantOK)
			}
			if out.Points != tt.wantPoints || out.Player.Points != tt.wantPoints {
				t.Errorf("points = %d (player %d), want %d", out.Points, out.Player.Points, tt.wantPoints)
			}
			if got := out.Player.Levels[cat]; got != tt.wantLevel {
				t.Errorf("level = %d, want %d", got, tt.wantLevel)
			}
			if p.Levels[cat] != tt.level || p.Points != 0 {
				t.Error("Resolve mutated the input player")
			}
		})
	}
}

func TestResolveKeyIsIdempotent(t *testing.T) {
	cat := quizboard.CategorySports
	q := quizboard.Question{Category: cat, Level: quizboard.KeyLevel, IsKeyQuestion: true, CorrectIndex: 1}
	p := freshPlayer()
	p.Levels[cat] = 3

	first := Resolve(p, q, 1)
	if !first.Player.Keys[cat] || first.Points != 40 {
		t.Fatalf("first key answer: keys %v points %d", first.Player.Keys, first.Points)
	}
	second := Resolve(first.Player, q, 1)
	if !second.Player.Keys[cat] || second.Points != 40 || second.Player.Points != 80 {
		t.Errorf("second key answer: keys %v points %d total %d", second.Player.Keys, second.Points, second.Player.Points)
	}
	if len(second.Player.Keys) != 1 {
		t.Errorf("keys = %v, want only %s", second.Player.Keys, cat)
	}
}

func TestExpired(t *testing.T) {
	q := quizboard.Question{StartedAt: fixedNow, DurationSeconds: 15}
	if Expired(q, fixedNow.Add(14*time.Second)) {
		t.Error("expired before duration elapsed")
	}
	if !Expired(q, fixedNow.Add(15*time.Second)) {
		t.Error("not expired once duration elapsed")
	}
	q.ExpiresAt = fixedNow.Add(time.Minute)
	if Expired(q, fixedNow.Add(30*time.Second)) {
		t.Error("explicit expiresAt should win over the derived deadline")
	}
}

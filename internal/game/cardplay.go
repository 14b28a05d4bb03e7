package game

import (
	"context"
	"fmt"
	"slices"

	"github.com/playperu/quizboard/internal/board"
	"github.com/playperu/quizboard/internal/cards"
	"github.com/playperu/quizboard/internal/questions"
	"github.com/playperu/quizboard/internal/quizboard"
)

// eliminateCount is how many wrong answers one eliminate card strikes.
const eliminateCount = 2

// BuyCard spends the card's cost from playerID's points and adds it to
// their hand.
func (e *Engine) BuyCard(ctx context.Context, code, playerID string, id quizboard.CardID) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "buy_card", func(s *quizboard.Session) error {
		if s.Status != quizboard.StatusInProgress {
			return fmt.Errorf("session %s is %s: %w", s.Code, s.Status, quizboard.ErrInvalidPhase)
		}
		p, err := member(s, playerID)
		if err != nil {
			return err
		}
		if err := cards.CanBuy(*s, *p, id).Err(id); err != nil {
			return err
		}
		card, _ := cards.Lookup(id)
		p.Points -= card.Cost
		p.Cards = append(p.Cards, id)
		return nil
	})
	return s, err
}

// CanUseCard reports whether playerID could play id right now.
func (e *Engine) CanUseCard(ctx context.Context, code, playerID string, id quizboard.CardID) (cards.Verdict, error) {
	s, err := e.store.Session(ctx, code)
	if err != nil {
		return cards.Verdict{}, err
	}
	p, err := member(&s, playerID)
	if err != nil {
		return cards.Verdict{}, err
	}
	return cards.CanUse(s, *p, id, e.now().UTC()), nil
}

// CardPlay is a request to play a card. Category is the target of the
// teleport and category-swap cards and ignored by the others.
type CardPlay struct {
	Card     quizboard.CardID   `json:"cardId"`
	Category quizboard.Category `json:"category,omitempty"`
}

// UseCard validates play against the current session and applies the
// card's effect. The card leaves the hand only if the effect applies.
func (e *Engine) UseCard(ctx context.Context, code, playerID string, play CardPlay) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "use_card", func(s *quizboard.Session) error {
		if s.Status != quizboard.StatusInProgress {
			return fmt.Errorf("session %s is %s: %w", s.Code, s.Status, quizboard.ErrInvalidPhase)
		}
		p, err := member(s, playerID)
		if err != nil {
			return err
		}
		if err := cards.CanUse(*s, *p, play.Card, e.now().UTC()).Err(play.Card); err != nil {
			return err
		}
		if err := e.playCard(ctx, s, p, play); err != nil {
			return err
		}
		p.RemoveCard(play.Card)
		return nil
	})
	if err != nil {
		return quizboard.Session{}, err
	}
	e.logger.Info("card played", "code", s.Code, "player", playerID, "card", play.Card)
	return s, nil
}

func (e *Engine) playCard(ctx context.Context, s *quizboard.Session, p *quizboard.Player, play CardPlay) error {
	switch play.Card {
	case quizboard.CardCategoryTeleport:
		return e.teleport(ctx, s, p, play.Category)
	case quizboard.CardExtraStep:
		return e.extraStep(ctx, s, p)
	case quizboard.CardEliminateAnswers:
		return e.eliminate(s.CurrentQuestion)
	case quizboard.CardSwapCategory:
		return e.swapCategory(ctx, s, p, play.Category)
	case quizboard.CardAlternateQuestion:
		q, used, err := e.questions.Redraw(ctx, *s, *s.CurrentQuestion, s.CurrentQuestion.Category)
		if err != nil {
			return err
		}
		s.CurrentQuestion = &q
		s.UsedQuestionIDs = used
		s.OfferWindow = nil
		return nil
	case quizboard.CardExtraTime:
		q := s.CurrentQuestion
		q.ExpiresAt = q.Deadline().Add(ExtraTimeBonus)
		q.DurationSeconds += int(ExtraTimeBonus.Seconds())
		return nil
	case quizboard.CardSalvation:
		return salvage(s, p)
	case quizboard.CardShield:
		// Duels are not played yet; the shield only closes its window.
		s.OfferWindow = nil
		return nil
	default:
		return cards.Verdict{Reason: cards.ReasonUnknownCard}.Err(play.Card)
	}
}

// teleport moves p to the first ring tile of category ahead of them and
// asks the question waiting there, in place of this turn's roll.
func (e *Engine) teleport(ctx context.Context, s *quizboard.Session, p *quizboard.Player, category quizboard.Category) error {
	if !category.Valid() {
		return fmt.Errorf("teleport target %q: %w", category, quizboard.ErrInvalidInput)
	}
	tile, ok := e.board.FirstRingTile(p.Position, category)
	if !ok {
		return fmt.Errorf("no %s tile on the ring: %w", category, quizboard.ErrInvalidInput)
	}
	p.Position = tile.ID
	s.CurrentMove = nil
	s.OfferWindow = nil
	return e.land(ctx, s, p)
}

// extraStep moves p one more tile along the direction of their last walk
// and resolves the new tile in place of the old one. The discarded question
// stays used.
func (e *Engine) extraStep(ctx context.Context, s *quizboard.Session, p *quizboard.Player) error {
	m := s.CurrentMove
	if m == nil || m.PreviousTile == nil {
		return fmt.Errorf("no walk to extend: %w", quizboard.ErrInvalidPhase)
	}
	next, ok := e.board.Step(*m.PreviousTile, p.Position)
	if !ok {
		return fmt.Errorf("tile %d is a dead end: %w", p.Position, quizboard.ErrInvalidDirection)
	}
	prev := p.Position
	p.Position = next
	m.PreviousTile = &prev
	s.OfferWindow = nil
	return e.land(ctx, s, p)
}

// eliminate strikes up to two wrong answers, always leaving one.
func (e *Engine) eliminate(q *quizboard.Question) error {
	var wrong []int
	for i := range quizboard.AnswerCount {
		if i != q.CorrectIndex && !slices.Contains(q.Eliminated, i) {
			wrong = append(wrong, i)
		}
	}
	if len(wrong) <= 1 {
		return fmt.Errorf("question %s has no answers left to eliminate: %w", q.ID, quizboard.ErrInvalidInput)
	}
	for n := 0; n < eliminateCount && len(wrong) > 1; n++ {
		i := e.rand.IntN(len(wrong))
		q.Eliminated = append(q.Eliminated, wrong[i])
		wrong = slices.Delete(wrong, i, i+1)
	}
	slices.Sort(q.Eliminated)
	return nil
}

// swapCategory replaces the open question with one from category at the
// tier p holds in that category. The timer keeps running.
func (e *Engine) swapCategory(ctx context.Context, s *quizboard.Session, p *quizboard.Player, category quizboard.Category) error {
	old := s.CurrentQuestion
	if !category.Valid() || category == old.Category {
		return fmt.Errorf("swap target %q: %w", category, quizboard.ErrInvalidInput)
	}
	tier := questions.TierFor(*p, board.KindCategory, category)
	q, used, err := e.questions.Draw(ctx, *s, p.ID, old.Tile, tier)
	if err != nil {
		return err
	}
	q.StartedAt = old.StartedAt
	q.ExpiresAt = old.Deadline()
	q.DurationSeconds = old.DurationSeconds
	s.CurrentQuestion = &q
	s.UsedQuestionIDs = used
	s.OfferWindow = nil
	return nil
}

// salvage gives the turn back to p after they lost it on a wrong answer.
func salvage(s *quizboard.Session, p *quizboard.Player) error {
	idx := slices.Index(s.TurnOrder, p.ID)
	if idx < 0 {
		return fmt.Errorf("player %s is not in the turn order: %w", p.ID, quizboard.ErrInvalidRoster)
	}
	s.CurrentTurnIndex = idx
	s.CurrentPlayerID = p.ID
	s.Phase = quizboard.PhaseWaitRoll
	s.CurrentMove = nil
	s.OfferWindow = nil
	return nil
}

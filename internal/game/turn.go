package game

import (
	"context"
	"fmt"

	"github.com/playperu/quizboard/internal/quizboard"
)

// Roll throws the die for the current player and offers the directions
// leaving their tile.
func (e *Engine) Roll(ctx context.Context, code, playerID string) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "roll", func(s *quizboard.Session) error {
		p, err := requireTurn(s, playerID, quizboard.PhaseWaitRoll)
		if err != nil {
			return err
		}
		dirs, err := e.board.Directions(p.Position)
		if err != nil {
			return err
		}
		s.CurrentMove = &quizboard.Move{
			FromTile:   p.Position,
			DiceValue:  1 + e.rand.IntN(quizboard.DiceFaces),
			Directions: dirs,
		}
		s.Phase = quizboard.PhaseChooseDirection
		s.OfferWindow = nil
		return nil
	})
	return s, err
}

// ChooseDirection walks the rolled distance along direction and resolves
// the landing tile.
func (e *Engine) ChooseDirection(ctx context.Context, code, playerID string, direction int) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "choose_direction", func(s *quizboard.Session) error {
		p, err := requireTurn(s, playerID, quizboard.PhaseChooseDirection)
		if err != nil {
			return err
		}
		m := s.CurrentMove
		if m == nil {
			return fmt.Errorf("session %s has no pending roll: %w", s.Code, quizboard.ErrInvalidPhase)
		}
		if direction < 0 || direction >= len(m.Directions) {
			return fmt.Errorf("direction %d of %d: %w", direction, len(m.Directions), quizboard.ErrInvalidDirection)
		}

		walk, err := e.board.Resolve(m.FromTile, m.DiceValue, direction)
		if err != nil {
			return err
		}
		p.Position = walk.Destination
		m.Direction = &direction
		m.PreviousTile = &walk.Previous

		if err := e.land(ctx, s, p); err != nil {
			return err
		}
		s.OfferWindow = nil
		if p.HasCard(quizboard.CardExtraStep) {
			e.openWindow(s, quizboard.WindowPostMove, p.ID)
		}
		return nil
	})
	return s, err
}

// EndTurn passes the turn after landing on a tile that asks nothing.
func (e *Engine) EndTurn(ctx context.Context, code, playerID string) (quizboard.Session, error) {
	s, _, err := e.apply(ctx, code, "end_turn", func(s *quizboard.Session) error {
		if _, err := requireTurn(s, playerID, quizboard.PhaseResolveTile); err != nil {
			return err
		}
		s.AdvanceTurn()
		s.Phase = quizboard.PhaseWaitRoll
		s.CurrentMove = nil
		s.OfferWindow = nil
		return nil
	})
	return s, err
}

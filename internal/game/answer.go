package game

import (
	"context"
	"fmt"

	"github.com/playperu/quizboard/internal/questions"
	"github.com/playperu/quizboard/internal/quizboard"
)

// AnswerQuestion scores answer against the open question. questionID may be
// empty; when given it must match the open question, so a stale client
// cannot answer a question that has already been replaced. An answer that
// arrives after the deadline is recorded as a timeout.
func (e *Engine) AnswerQuestion(ctx context.Context, code, playerID, questionID string, answer int) (quizboard.Session, questions.Outcome, error) {
	var out questions.Outcome
	s, _, err := e.apply(ctx, code, "answer", func(s *quizboard.Session) error {
		if s.Status != quizboard.StatusInProgress {
			return fmt.Errorf("session %s is %s: %w", s.Code, s.Status, quizboard.ErrInvalidPhase)
		}
		if _, err := member(s, playerID); err != nil {
			return err
		}
		q := s.CurrentQuestion
		if s.Phase != quizboard.PhaseQuestion || q == nil {
			return fmt.Errorf("session %s has no open question: %w", s.Code, quizboard.ErrInvalidPhase)
		}
		if questionID != "" && questionID != q.ID {
			return fmt.Errorf("question %s is closed: %w", questionID, quizboard.ErrNotFound)
		}
		if q.ForPlayer != playerID {
			return fmt.Errorf("question %s: %w", q.ID, quizboard.ErrNotYourQuestion)
		}
		if answer < 0 || answer >= quizboard.AnswerCount {
			return fmt.Errorf("answer %d: %w", answer, quizboard.ErrInvalidInput)
		}

		now := e.now().UTC()
		if questions.Expired(*q, now) {
			answer = -1
		}
		out = e.closeQuestion(s, answer)
		return nil
	})
	if err != nil {
		return quizboard.Session{}, questions.Outcome{}, err
	}
	e.logger.Info("question answered",
		"code", s.Code, "player", playerID, "correct", out.Correct, "timed_out", out.TimedOut, "points", out.Points)
	return s, out, nil
}

// QuestionTimeoutTick closes the open question of code as a wrong answer if
// its deadline has passed. It is safe to call any number of times from any
// number of processes: the boolean reports whether this call was the one
// that closed it.
func (e *Engine) QuestionTimeoutTick(ctx context.Context, code string) (quizboard.Session, bool, error) {
	s, handled, err := e.apply(ctx, code, "timeout", func(s *quizboard.Session) error {
		q := s.CurrentQuestion
		if s.Status != quizboard.StatusInProgress || s.Phase != quizboard.PhaseQuestion || q == nil {
			return errNoChange
		}
		if !questions.Expired(*q, e.now().UTC()) {
			return errNoChange
		}
		e.closeQuestion(s, -1)
		return nil
	})
	if err != nil {
		return quizboard.Session{}, false, err
	}
	if handled {
		e.logger.Info("question timed out", "code", s.Code)
	}
	return s, handled, nil
}

// closeQuestion is the single path that resolves the open question, whether
// by answer or by timeout. A negative answer is a timeout. A correct answer
// keeps the turn; anything else passes it on.
func (e *Engine) closeQuestion(s *quizboard.Session, answer int) questions.Outcome {
	q := s.CurrentQuestion
	p := s.Players[q.ForPlayer]

	out := questions.Resolve(*p, *q, answer)
	out.TimedOut = answer < 0
	*p = out.Player

	s.CurrentQuestion = nil
	s.CurrentMove = nil
	s.OfferWindow = nil
	s.Phase = quizboard.PhaseWaitRoll
	if !out.Correct {
		s.AdvanceTurn()
		if p.HasCard(quizboard.CardSalvation) {
			e.openWindow(s, quizboard.WindowPostWrongAnswer, p.ID)
		}
	}
	return out
}


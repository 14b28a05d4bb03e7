package quizboard

import (
	"errors"
	"fmt"
)

// Every action error leaves the session unchanged. ErrConflict is the only
// one where re-reading and retrying is the right response.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidPhase        = errors.New("invalid phase")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrNotYourQuestion     = errors.New("not your question")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrNoQuestionAvailable = errors.New("no question available")
	ErrConflict            = errors.New("conflict")
	ErrInvalidRoster       = errors.New("invalid roster")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrCardRejected        = errors.New("card rejected")
)

// CardRejectedError carries the reason a card could not be bought or played.
// It matches ErrCardRejected with errors.Is.
type CardRejectedError struct {
	Card   CardID
	Reason string
}

func (e *CardRejectedError) Error() string {
	return fmt.Sprintf("card %s rejected: %s", e.Card, e.Reason)
}

func (e *CardRejectedError) Unwrap() error { return ErrCardRejected }

// ErrorCode maps an error to the stable code reported to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrNotYourQuestion):
		return "not_your_question"
	case errors.Is(err, ErrInvalidDirection):
		return "invalid_direction"
	case errors.Is(err, ErrNoQuestionAvailable):
		return "no_question_available"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidRoster):
		return "invalid_roster"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrCardRejected):
		var ce *CardRejectedError
		if errors.As(err, &ce) {
			return ce.Reason
		}
		return "card_rejected"
	default:
		return "internal"
	}
}

// Package cards holds the card catalog and decides whether a card may be
// played right now. It never mutates anything.
package cards

import (
	"slices"
	"time"

	"github.com/playperu/quizboard/internal/quizboard"
)

// Rule names the legality rule a card follows beyond the global blocks.
type Rule string

const (
	RulePreRoll    Rule = "pre_roll"
	RuleInQuestion Rule = "in_question"
	RuleWindow     Rule = "window"
)

type Card struct {
	ID     quizboard.CardID     `json:"id"`
	Tag    quizboard.CardTag    `json:"tag"`
	Cost   int                  `json:"cost"`
	Rule   Rule                 `json:"rule"`
	Window quizboard.WindowKind `json:"window,omitempty"`
}

var catalog = []Card{
	{ID: quizboard.CardCategoryTeleport, Tag: quizboard.TagMovement, Cost: 30, Rule: RulePreRoll},
	{ID: quizboard.CardExtraStep, Tag: quizboard.TagMovement, Cost: 15, Rule: RuleWindow, Window: quizboard.WindowPostMove},
	{ID: quizboard.CardEliminateAnswers, Tag: quizboard.TagQuestion, Cost: 20, Rule: RuleInQuestion},
	{ID: quizboard.CardSwapCategory, Tag: quizboard.TagQuestion, Cost: 25, Rule: RuleInQuestion},
	{ID: quizboard.CardAlternateQuestion, Tag: quizboard.TagQuestion, Cost: 15, Rule: RuleInQuestion},
	{ID: quizboard.CardExtraTime, Tag: quizboard.TagQuestion, Cost: 10, Rule: RuleInQuestion},
	{ID: quizboard.CardSalvation, Tag: quizboard.TagProtection, Cost: 35, Rule: RuleWindow, Window: quizboard.WindowPostWrongAnswer},
	{ID: quizboard.CardShield, Tag: quizboard.TagProtection, Cost: 25, Rule: RuleWindow, Window: quizboard.WindowDefense},
}

// Catalog returns every card in display order.
func Catalog() []Card {
	return slices.Clone(catalog)
}

// Lookup returns the catalog entry for id.
func Lookup(id quizboard.CardID) (Card, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Reason explains a rejection. Reasons are stable and reported to clients.
type Reason string

const (
	ReasonUnknownCard         Reason = "unknown_card"
	ReasonNotHeld             Reason = "not_held"
	ReasonMinigamePhase       Reason = "minigame_phase"
	ReasonDuelPhase           Reason = "duel_phase"
	ReasonQuestionLocked      Reason = "question_locked"
	ReasonWrongPhase          Reason = "wrong_phase"
	ReasonNotOrdinaryQuestion Reason = "not_ordinary_question"
	ReasonNotYourQuestion     Reason = "not_your_question"
	ReasonQuestionExpired     Reason = "question_expired"
	ReasonWindowNotOpen       Reason = "window_not_open"
	ReasonHandFull            Reason = "hand_full"
	ReasonInsufficientPoints  Reason = "insufficient_points"
)

type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

func allow() Verdict { return Verdict{Allowed: true} }

func deny(r Reason) Verdict { return Verdict{Reason: r} }

// Err converts a rejection into a *quizboard.CardRejectedError, or nil.
func (v Verdict) Err(id quizboard.CardID) error {
	if v.Allowed {
		return nil
	}
	return &quizboard.CardRejectedError{Card: id, Reason: string(v.Reason)}
}

// CanUse reports whether player may play id in s at now.
//
// Global blocks come first: a minigame phase blocks every card, a duel phase
// blocks everything but the shield, and an open key or vault question blocks
// every card. Then the player must hold the card, and the card's own rule
// applies. In-question cards are refused once the question's deadline has
// passed; only the timeout may resolve it then. Window-bound cards report
// ReasonWindowNotOpen rather than ReasonWrongPhase so callers can tell "not
// offered yet" from "never legal here".
func CanUse(s quizboard.Session, player quizboard.Player, id quizboard.CardID, now time.Time) Verdict {
	card, ok := Lookup(id)
	if !ok {
		return deny(ReasonUnknownCard)
	}
	switch s.Phase {
	case quizboard.PhaseMinigame:
		return deny(ReasonMinigamePhase)
	case quizboard.PhaseDuel:
		if id != quizboard.CardShield {
			return deny(ReasonDuelPhase)
		}
	}
	if q := s.CurrentQuestion; q != nil && !q.Ordinary() {
		return deny(ReasonQuestionLocked)
	}
	if !player.HasCard(id) {
		return deny(ReasonNotHeld)
	}

	switch card.Rule {
	case RulePreRoll:
		if s.Phase != quizboard.PhaseWaitRoll || s.CurrentPlayerID != player.ID {
			return deny(ReasonWrongPhase)
		}
	case RuleInQuestion:
		if s.Phase != quizboard.PhaseQuestion || s.CurrentQuestion == nil {
			return deny(ReasonWrongPhase)
		}
		if !s.CurrentQuestion.Ordinary() {
			return deny(ReasonNotOrdinaryQuestion)
		}
		if s.CurrentQuestion.ForPlayer != player.ID {
			return deny(ReasonNotYourQuestion)
		}
		if !now.Before(s.CurrentQuestion.Deadline()) {
			return deny(ReasonQuestionExpired)
		}
	case RuleWindow:
		if !s.OfferWindow.OpenFor(card.Window, player.ID, now) {
			return deny(ReasonWindowNotOpen)
		}
	}
	return allow()
}

// CanBuy reports whether player may buy id in s. Cards are bought by the
// current player before rolling.
func CanBuy(s quizboard.Session, player quizboard.Player, id quizboard.CardID) Verdict {
	card, ok := Lookup(id)
	switch {
	case !ok:
		return deny(ReasonUnknownCard)
	case s.Phase != quizboard.PhaseWaitRoll || s.CurrentPlayerID != player.ID:
		return deny(ReasonWrongPhase)
	case len(player.Cards) >= quizboard.MaxCards:
		return deny(ReasonHandFull)
	case player.Points < card.Cost:
		return deny(ReasonInsufficientPoints)
	}
	return allow()
}

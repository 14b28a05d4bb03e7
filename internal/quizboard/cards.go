package quizboard

type CardID string

const (
	CardCategoryTeleport  CardID = "category_teleport"
	CardExtraStep         CardID = "extra_step"
	CardEliminateAnswers  CardID = "eliminate_answers"
	CardSwapCategory      CardID = "swap_category"
	CardAlternateQuestion CardID = "alternate_question"
	CardExtraTime         CardID = "extra_time"
	CardSalvation         CardID = "salvation"
	CardShield            CardID = "shield"
)

type CardTag string

const (
	TagMovement   CardTag = "movement"
	TagQuestion   CardTag = "question"
	TagProtection CardTag = "protection"
)

package model

type DecisionState string

const (
	StateQuestionnaire  DecisionState = "questionnaire"
	StateSwiping        DecisionState = "swiping"
	StatePicking        DecisionState = "picking"
	StateWinnerSelected DecisionState = "winner-selected"
)

type Decision string

const (
	DecisionNone Decision = ""
	DecisionLike Decision = "like"
	DecisionNope Decision = "nope"
)

func (d Decision) Valid() bool {
	return d == DecisionLike || d == DecisionNope
}

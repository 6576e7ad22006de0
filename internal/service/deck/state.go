// Package deck is the decision engine: filter evaluation, deck building, the
// like goal and the swipe state machine. Everything here is pure; reducers take
// a State value and return the next one without touching the input.
package deck

import (
	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
)

type State struct {
	Phase model.DecisionState

	// Pool is the candidate pool as loaded from the store. Shared, read-only.
	Pool []model.CandidateEntry

	// Filters is editable in questionnaire and frozen once swiping starts.
	Filters model.FilterSelection

	Deck  []model.CandidateEntry
	Liked []model.CandidateEntry
	Goal  int

	Winner *model.CandidateEntry

	// Set between a committed decision and its settle event. While set,
	// no other decision may be committed on the same head.
	Committing bool
	Pending    model.Decision

	// Terminal display: filtered pool was empty, or the deck ran out
	// without a single like.
	NoMatches bool
}

// New opens a session in questionnaire over pool.
func New(pool []model.CandidateEntry) State {
	return State{
		Phase: model.StateQuestionnaire,
		Pool:  pool,
	}
}

// Reload swaps the pool and resets to an empty questionnaire.
func Reload(_ State, pool []model.CandidateEntry) State {
	return New(pool)
}

// StartOver drops filters, deck, likes and winner. The pool is kept.
func StartOver(s State) State {
	return New(s.Pool)
}

func SetFilters(s State, f model.FilterSelection) State {
	if s.Phase != model.StateQuestionnaire {
		return s
	}
	s.Filters = f.Clone()
	s.NoMatches = false
	return s
}

// Start submits the questionnaire. The goal comes from the filtered pool size
// before shuffling. A filtered-to-empty pool never leaves questionnaire.
func Start(s State, rng Shuffler) State {
	if s.Phase != model.StateQuestionnaire {
		return s
	}

	d := Build(s.Pool, s.Filters, rng)
	goal := LikeGoal(len(d))

	s.Liked = nil
	s.Winner = nil
	s.Committing = false
	s.Pending = model.DecisionNone

	if goal == 0 {
		s.Deck = nil
		s.Goal = 0
		s.NoMatches = true
		return s
	}

	s.Phase = model.StateSwiping
	s.Deck = d
	s.Goal = goal
	s.NoMatches = false
	return s
}

// CanCommit reports whether a decision on the head would be accepted.
func CanCommit(s State) bool {
	return s.Phase == model.StateSwiping &&
		!s.NoMatches &&
		!s.Committing &&
		len(s.Deck) > 0 &&
		len(s.Liked) < s.Goal
}

// Commit records d against the head of the deck. The head is removed only
// when the commit settles.
func Commit(s State, d model.Decision) State {
	if !d.Valid() || !CanCommit(s) {
		return s
	}
	s.Committing = true
	s.Pending = d
	return s
}

// Settle applies the pending decision and runs the swiping transitions.
func Settle(s State) State {
	if !s.Committing {
		return s
	}

	d := s.Pending
	s.Committing = false
	s.Pending = model.DecisionNone

	if s.Phase != model.StateSwiping || len(s.Deck) == 0 {
		return s
	}

	head := s.Deck[0]
	s.Deck = s.Deck[1:]

	// A like past the goal is discarded, not recorded.
	if d == model.DecisionLike && len(s.Liked) < s.Goal {
		s.Liked = appendEntry(s.Liked, head)
	}

	return advance(s)
}

// Decide commits and settles in one step, for callers with no exit animation.
func Decide(s State, d model.Decision) State {
	return Settle(Commit(s, d))
}

func advance(s State) State {
	switch {
	case len(s.Liked) == s.Goal:
		return enterPicking(s)

	case len(s.Deck) == 0 && len(s.Liked) > 0:
		// Ran out of cards short of the goal. Same target state as the goal
		// path, but reached with fewer likes: the user still gets to choose.
		return enterPicking(s)

	case len(s.Deck) == 0:
		s.NoMatches = true
	}
	return s
}

// A single liked entry wins without asking.
func enterPicking(s State) State {
	s.Phase = model.StatePicking
	if len(s.Liked) == 1 {
		return selectWinner(s, s.Liked[0])
	}
	return s
}

// Pick chooses the winner among the liked entries.
func Pick(s State, id uuid.UUID) State {
	if s.Phase != model.StatePicking {
		return s
	}
	for _, e := range s.Liked {
		if e.ID == id {
			return selectWinner(s, e)
		}
	}
	return s
}

func selectWinner(s State, e model.CandidateEntry) State {
	w := e
	s.Winner = &w
	s.Phase = model.StateWinnerSelected
	return s
}

// BackToCards discards the winner and resumes the remaining deck where it was
// left. Unlike a plain return to the pre-picking deck, it also clears the
// liked set: kept full, the goal guard would refuse every further decision and
// the user could never reach picking again. The cleared likes are not
// restored; the remaining cards are triaged toward the same goal.
func BackToCards(s State) State {
	if s.Phase != model.StateWinnerSelected {
		return s
	}
	s.Phase = model.StateSwiping
	s.Winner = nil
	s.Liked = nil
	s.Committing = false
	s.Pending = model.DecisionNone
	if len(s.Deck) == 0 {
		s.NoMatches = true
	}
	return s
}

// Head is the card currently shown.
func Head(s State) (model.CandidateEntry, bool) {
	if s.Phase != model.StateSwiping || len(s.Deck) == 0 {
		return model.CandidateEntry{}, false
	}
	return s.Deck[0], true
}

func appendEntry(list []model.CandidateEntry, e model.CandidateEntry) []model.CandidateEntry {
	out := make([]model.CandidateEntry, len(list), len(list)+1)
	copy(out, list)
	return append(out, e)
}

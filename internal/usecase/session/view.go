package usecase_session

import (
	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
	"github.com/humanbelnik/watchlist/internal/service/deck"
)

// View is a snapshot of a session for rendering.
type View struct {
	ID      uuid.UUID
	GroupID uuid.UUID
	State   model.DecisionState
	// Increases with every snapshot of the same session.
	Version uint64

	Filters       model.FilterSelection
	AvailableTags []string
	PoolSize      int
	MatchCount    int

	Head      *model.CandidateEntry
	Remaining int
	Liked     []model.CandidateEntry
	Goal      int
	Winner    *model.CandidateEntry

	Committing bool
	CanDecide  bool
	NoMatches  bool

	Loading    bool
	LoadError  string
	WatchError string
}

// view must be called with s.mu held.
func (s *session) view() View {
	s.version++
	st := s.state
	v := View{
		ID:            s.id,
		GroupID:       s.groupID,
		State:         st.Phase,
		Version:       s.version,
		Filters:       st.Filters.Clone(),
		AvailableTags: deck.AvailableTags(st.Pool),
		PoolSize:      len(st.Pool),
		MatchCount:    deck.CountMatches(st.Pool, st.Filters),
		Remaining:     len(st.Deck),
		Liked:         st.Liked,
		Goal:          st.Goal,
		Committing:    st.Committing,
		CanDecide:     deck.CanCommit(st),
		NoMatches:     st.NoMatches,
		Loading:       s.loading,
		LoadError:     s.loadErr,
		WatchError:    s.watchErr,
	}
	if head, ok := deck.Head(st); ok {
		v.Head = &head
	}
	if st.Winner != nil {
		w := *st.Winner
		v.Winner = &w
	}
	return v
}

package deck

import (
	"testing"

	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type StateSuite struct {
	suite.Suite
}

func started(t provider.T, n int) State {
	s := Start(New(validPool(n)), seeded())
	require.Equal(t, model.StateSwiping, s.Phase)
	return s
}

func decideAll(s State, decisions ...model.Decision) State {
	for _, d := range decisions {
		s = Decide(s, d)
	}
	return s
}

const (
	like = model.DecisionLike
	nope = model.DecisionNope
)

func (s *StateSuite) TestStart(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		pool          []model.CandidateEntry
		filters       model.FilterSelection
		expectedPhase model.DecisionState
		expectedGoal  int
		expectedDeck  int
		noMatches     bool
	}{
		{
			name:          "Pool of four asks for three likes",
			pool:          validPool(4),
			expectedPhase: model.StateSwiping,
			expectedGoal:  3,
			expectedDeck:  4,
		},
		{
			name:          "Pool of two asks for one like",
			pool:          validPool(2),
			expectedPhase: model.StateSwiping,
			expectedGoal:  1,
			expectedDeck:  2,
		},
		{
			name:          "Empty pool never leaves questionnaire",
			pool:          nil,
			filters:       model.FilterSelection{Tags: []string{"cozy"}},
			expectedPhase: model.StateQuestionnaire,
			noMatches:     true,
		},
		{
			name:          "Filtered to empty never leaves questionnaire",
			pool:          validPool(5),
			filters:       model.FilterSelection{TimeTypes: []model.TimeType{model.TimeLongShow}},
			expectedPhase: model.StateQuestionnaire,
			noMatches:     true,
		},
		{
			name: "Goal comes from the filtered pool",
			pool: append(validPool(5), NewEntryBuilder().Show(40).Build()),
			filters: model.FilterSelection{
				TimeTypes: []model.TimeType{model.TimeLongShow},
			},
			expectedPhase: model.StateSwiping,
			expectedGoal:  1,
			expectedDeck:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			st := SetFilters(New(tc.pool), tc.filters)
			st = Start(st, seeded())

			assert.Equal(t, tc.expectedPhase, st.Phase)
			assert.Equal(t, tc.expectedGoal, st.Goal)
			assert.Len(t, st.Deck, tc.expectedDeck)
			assert.Empty(t, st.Liked)
			assert.Equal(t, tc.noMatches, st.NoMatches)
		})
	}
}

func (s *StateSuite) TestScenarios(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		poolSize      int
		decisions     []model.Decision
		expectedPhase model.DecisionState
		expectedLiked int
		expectWinner  bool
		noMatches     bool
	}{
		{
			name:          "Goal reached enters picking",
			poolSize:      4,
			decisions:     []model.Decision{like, like, like},
			expectedPhase: model.StatePicking,
			expectedLiked: 3,
		},
		{
			name:          "Exhausted with two likes enters picking",
			poolSize:      4,
			decisions:     []model.Decision{like, nope, like, nope},
			expectedPhase: model.StatePicking,
			expectedLiked: 2,
		},
		{
			name:          "Exhausted with one like selects it",
			poolSize:      4,
			decisions:     []model.Decision{nope, like, nope, nope},
			expectedPhase: model.StateWinnerSelected,
			expectedLiked: 1,
			expectWinner:  true,
		},
		{
			name:          "Small pool winner on first like",
			poolSize:      2,
			decisions:     []model.Decision{like},
			expectedPhase: model.StateWinnerSelected,
			expectedLiked: 1,
			expectWinner:  true,
		},
		{
			name:          "Exhausted without likes is no matches",
			poolSize:      3,
			decisions:     []model.Decision{nope, nope, nope},
			expectedPhase: model.StateSwiping,
			noMatches:     true,
		},
		{
			name:          "Still swiping below goal",
			poolSize:      5,
			decisions:     []model.Decision{like, nope, like},
			expectedPhase: model.StateSwiping,
			expectedLiked: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			st := decideAll(started(t, tc.poolSize), tc.decisions...)

			assert.Equal(t, tc.expectedPhase, st.Phase)
			assert.Len(t, st.Liked, tc.expectedLiked)
			assert.Equal(t, tc.noMatches, st.NoMatches)
			if tc.expectWinner {
				require.NotNil(t, st.Winner)
				assert.Equal(t, st.Liked[0].ID, st.Winner.ID)
			} else {
				assert.Nil(t, st.Winner)
			}
		})
	}
}

func (s *StateSuite) TestLikedNeverExceedsGoal(t provider.T) {
	t.Parallel()

	rng := seeded()
	for poolSize := 1; poolSize <= 8; poolSize++ {
		for range 20 {
			st := started(t, poolSize)
			for st.Phase == model.StateSwiping && !st.NoMatches {
				d := nope
				if rng.IntN(2) == 0 {
					d = like
				}
				st = Commit(st, d)
				assert.LessOrEqual(t, len(st.Liked), st.Goal)
				st = Settle(st)
				assert.LessOrEqual(t, len(st.Liked), st.Goal)
			}
		}
	}
}

func (s *StateSuite) TestCommitGuards(t provider.T) {
	t.Parallel()

	t.Run("Second commit while settling is refused", func(t provider.T) {
		st := started(t, 4)
		head := st.Deck[0]

		st = Commit(st, like)
		require.True(t, st.Committing)
		st = Commit(st, nope)
		assert.Equal(t, like, st.Pending)
		assert.Len(t, st.Deck, 4)

		st = Settle(st)
		assert.False(t, st.Committing)
		assert.Len(t, st.Deck, 3)
		require.Len(t, st.Liked, 1)
		assert.Equal(t, head.ID, st.Liked[0].ID)
	})

	t.Run("Settle without commit is a no-op", func(t provider.T) {
		st := started(t, 4)
		assert.Equal(t, st, Settle(st))
	})

	t.Run("Invalid decision is a no-op", func(t provider.T) {
		st := started(t, 4)
		assert.Equal(t, st, Commit(st, model.Decision("maybe")))
	})

	t.Run("Commit outside swiping is a no-op", func(t provider.T) {
		st := New(validPool(4))
		assert.Equal(t, st, Commit(st, like))
		assert.False(t, CanCommit(st))
	})

	t.Run("Commit at goal is refused", func(t provider.T) {
		st := started(t, 4)
		st.Liked = st.Deck[:3]
		assert.False(t, CanCommit(st))
		assert.Equal(t, st, Commit(st, like))
	})

	t.Run("Like settled at goal is discarded", func(t provider.T) {
		st := started(t, 4)
		st.Committing = true
		st.Pending = like
		st.Liked = []model.CandidateEntry{NewEntryBuilder().Build(), NewEntryBuilder().Build(), NewEntryBuilder().Build()}

		st = Settle(st)
		assert.Len(t, st.Liked, 3)
		assert.Len(t, st.Deck, 3)
	})
}

func (s *StateSuite) TestReducersDoNotMutateInput(t provider.T) {
	t.Parallel()

	st := started(t, 5)
	st = Decide(st, like)
	before := ids(st.Liked)
	deckBefore := ids(st.Deck)

	a := Decide(st, like)
	b := Decide(st, nope)

	assert.Equal(t, before, ids(st.Liked))
	assert.Equal(t, deckBefore, ids(st.Deck))
	assert.Len(t, a.Liked, 2)
	assert.Len(t, b.Liked, 1)
}

func (s *StateSuite) TestPick(t provider.T) {
	t.Parallel()

	st := decideAll(started(t, 4), like, like, like)
	require.Equal(t, model.StatePicking, st.Phase)

	t.Run("Unknown entry is ignored", func(t provider.T) {
		assert.Equal(t, st, Pick(st, uuid.New()))
	})

	t.Run("Liked entry wins", func(t provider.T) {
		chosen := st.Liked[1]
		next := Pick(st, chosen.ID)
		assert.Equal(t, model.StateWinnerSelected, next.Phase)
		require.NotNil(t, next.Winner)
		assert.Equal(t, chosen.ID, next.Winner.ID)
	})

	t.Run("Pick outside picking is ignored", func(t provider.T) {
		sw := started(t, 4)
		assert.Equal(t, sw, Pick(sw, sw.Deck[0].ID))
	})
}

func (s *StateSuite) TestBackToCards(t provider.T) {
	t.Parallel()

	t.Run("Resumes the remaining deck", func(t provider.T) {
		st := decideAll(started(t, 5), like, like, like)
		st = Pick(st, st.Liked[0].ID)
		remaining := ids(st.Deck)

		st = BackToCards(st)
		assert.Equal(t, model.StateSwiping, st.Phase)
		assert.Nil(t, st.Winner)
		assert.Empty(t, st.Liked)
		assert.Equal(t, remaining, ids(st.Deck))
		assert.True(t, CanCommit(st))
	})

	t.Run("Empty remaining deck is no matches", func(t provider.T) {
		st := decideAll(started(t, 2), nope, like)
		require.Equal(t, model.StateWinnerSelected, st.Phase)

		st = BackToCards(st)
		assert.Equal(t, model.StateSwiping, st.Phase)
		assert.True(t, st.NoMatches)
		assert.False(t, CanCommit(st))
	})

	t.Run("Only from winner selected", func(t provider.T) {
		st := started(t, 4)
		assert.Equal(t, st, BackToCards(st))
	})
}

func (s *StateSuite) TestStartOver(t provider.T) {
	t.Parallel()

	pool := validPool(4)
	st := SetFilters(New(pool), model.FilterSelection{Tags: nil, TimeTypes: []model.TimeType{model.TimeMovie}})
	st = decideAll(Start(st, seeded()), like, like, like)
	require.Equal(t, model.StatePicking, st.Phase)

	st = StartOver(st)
	assert.Equal(t, model.StateQuestionnaire, st.Phase)
	assert.True(t, st.Filters.IsEmpty())
	assert.Empty(t, st.Deck)
	assert.Empty(t, st.Liked)
	assert.Nil(t, st.Winner)
	assert.Equal(t, ids(pool), ids(st.Pool))

	// a fresh shuffle on re-entry
	st = Start(st, seeded())
	assert.Equal(t, model.StateSwiping, st.Phase)
	assert.Len(t, st.Deck, 4)
}

func (s *StateSuite) TestSetFiltersOnlyInQuestionnaire(t provider.T) {
	t.Parallel()

	f := model.FilterSelection{Tags: []string{"cozy"}}
	st := SetFilters(New(validPool(3)), f)
	assert.Equal(t, []string{"cozy"}, st.Filters.Tags)

	f.Tags[0] = "mutated"
	assert.Equal(t, []string{"cozy"}, st.Filters.Tags)

	sw := started(t, 3)
	assert.Equal(t, sw, SetFilters(sw, model.FilterSelection{Tags: []string{"x"}}))
}

func (s *StateSuite) TestHead(t provider.T) {
	t.Parallel()

	st := started(t, 3)
	head, ok := Head(st)
	assert.True(t, ok)
	assert.Equal(t, st.Deck[0].ID, head.ID)

	_, ok = Head(New(validPool(3)))
	assert.False(t, ok)
}

func TestStateSuite(t *testing.T) {
	suite.RunSuite(t, new(StateSuite))
}

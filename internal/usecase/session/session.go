package usecase_session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/metrics"
	"github.com/humanbelnik/watchlist/internal/model"
	"github.com/humanbelnik/watchlist/internal/service/deck"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrLoadFailed        = errors.New("failed to load candidate pool")
	ErrMarkWatchedFailed = errors.New("failed to mark watched")
	ErrNoWinner          = errors.New("no winner selected")
	ErrStaleResult       = errors.New("superseded by a newer request")
)

//go:generate mockery --name=Store --output=./mocks/session/store --filename=store.go
type Store interface {
	LoadCandidatePool(ctx context.Context, groupID uuid.UUID) ([]model.CandidateEntry, error)
	SetWatched(ctx context.Context, entryID uuid.UUID) error
}

// Scheduler runs f once after d. time.AfterFunc in production.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Observer is told about every session change.
type Observer interface {
	SessionChanged(v View)
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type session struct {
	mu sync.Mutex

	id      uuid.UUID
	groupID uuid.UUID
	state   deck.State

	loaded   bool
	loading  bool
	loadErr  string
	watchErr string

	// Last issued store request. Results carrying an older token are dropped.
	token uint64
	// Incremented per commit so a late settle cannot hit a newer commit.
	commitSeq uint64
	// Stamped on every snapshot, so observers can drop out-of-order views.
	version uint64

	lastSeen time.Time
}

type Usecase struct {
	store       Store
	commitDelay time.Duration

	scheduler Scheduler
	shuffler  deck.Shuffler
	observers []Observer
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	// Idle sessions are dropped on every Nth create
	cleanupPeriod int
	idleTTL       time.Duration
	createsCount  int
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithScheduler(s Scheduler) Option {
	return func(u *Usecase) {
		u.scheduler = s
	}
}

func WithShuffler(s deck.Shuffler) Option {
	return func(u *Usecase) {
		u.shuffler = s
	}
}

func WithObserver(o Observer) Option {
	return func(u *Usecase) {
		u.observers = append(u.observers, o)
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func WithIdleCleanup(period int, ttl time.Duration) Option {
	return func(u *Usecase) {
		u.cleanupPeriod = period
		u.idleTTL = ttl
	}
}

func New(
	store Store,
	commitDelay time.Duration,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		store:         store,
		commitDelay:   commitDelay,
		scheduler:     timeScheduler{},
		shuffler:      deck.DefaultShuffler,
		logger:        slog.Default(),
		now:           time.Now,
		sessions:      make(map[uuid.UUID]*session),
		cleanupPeriod: 20, /* default */
		idleTTL:       2 * time.Hour,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.cleanupPeriod <= 0 {
		u.cleanupPeriod = 20
	}
	return u
}

// Create opens a session for the group and loads its candidate pool.
// The session exists even when the load fails; Reload retries it.
func (u *Usecase) Create(ctx context.Context, groupID uuid.UUID) (View, error) {
	s := &session{
		id:       uuid.New(),
		groupID:  groupID,
		state:    deck.New(nil),
		lastSeen: u.now(),
	}

	u.mu.Lock()
	u.createsCount++
	if u.createsCount%u.cleanupPeriod == 0 {
		u.cleanupIdleLocked()
	}
	u.sessions[s.id] = s
	metrics.SessionsActive.Set(float64(len(u.sessions)))
	u.mu.Unlock()

	u.logger.Info("session created",
		slog.String("session_id", s.id.String()),
		slog.String("group_id", groupID.String()))

	return u.load(ctx, s)
}

func (u *Usecase) cleanupIdleLocked() {
	deadline := u.now().Add(-u.idleTTL)
	for id, s := range u.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(deadline)
		s.mu.Unlock()
		if idle {
			delete(u.sessions, id)
			u.logger.Info("idle session dropped", slog.String("session_id", id.String()))
		}
	}
}

func (u *Usecase) Get(id uuid.UUID) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

func (u *Usecase) Delete(id uuid.UUID) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(u.sessions, id)
	metrics.SessionsActive.Set(float64(len(u.sessions)))
	return nil
}

// Reload re-fetches the pool and resets to an empty questionnaire.
func (u *Usecase) Reload(ctx context.Context, id uuid.UUID) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}
	return u.load(ctx, s)
}

func (u *Usecase) load(ctx context.Context, s *session) (View, error) {
	s.mu.Lock()
	s.token++
	token := s.token
	s.loading = true
	v := s.view()
	s.mu.Unlock()
	u.notify(v)

	pool, err := u.store.LoadCandidatePool(ctx, s.groupID)

	s.mu.Lock()
	if token != s.token {
		v = s.view()
		s.mu.Unlock()
		u.logger.Debug("stale pool load dropped", slog.String("session_id", s.id.String()))
		return v, ErrStaleResult
	}

	s.loading = false
	if err != nil {
		metrics.StoreCalls.WithLabelValues("load", "error").Inc()
		s.loadErr = err.Error()
		v = s.view()
		s.mu.Unlock()
		u.notify(v)

		u.logger.Error("failed to load candidate pool",
			slog.String("session_id", s.id.String()),
			slog.String("error", err.Error()))
		return v, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	metrics.StoreCalls.WithLabelValues("load", "ok").Inc()
	s.loaded = true
	s.loadErr = ""
	s.watchErr = ""
	s.state = deck.Reload(s.state, pool)
	v = s.view()
	s.mu.Unlock()
	u.notify(v)

	return v, nil
}

func (u *Usecase) SetFilters(id uuid.UUID, f model.FilterSelection) (View, error) {
	return u.apply(id, func(st deck.State) deck.State {
		return deck.SetFilters(st, f)
	})
}

// Start submits the questionnaire: builds a freshly shuffled deck. Without a
// loaded pool there is nothing to build from.
func (u *Usecase) Start(id uuid.UUID) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if s.loaded {
		s.state = deck.Start(s.state, u.shuffler)
	}
	v := s.view()
	s.mu.Unlock()

	u.notify(v)
	return v, nil
}

// Commit records a decision on the current card. The card leaves the deck when
// the commit settles: on an explicit Settle, or after the commit delay.
// A refused decision is not an error; the returned view tells what happened.
func (u *Usecase) Commit(id uuid.UUID, d model.Decision) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if !d.Valid() || !deck.CanCommit(s.state) {
		v := s.view()
		s.mu.Unlock()
		return v, nil
	}
	s.state = deck.Commit(s.state, d)
	s.commitSeq++
	seq := s.commitSeq
	v := s.view()
	s.mu.Unlock()

	metrics.Decisions.WithLabelValues(string(d)).Inc()
	u.notify(v)

	if u.commitDelay <= 0 {
		return u.settle(s, seq), nil
	}
	u.scheduler.AfterFunc(u.commitDelay, func() {
		u.settle(s, seq)
	})
	return v, nil
}

// Settle finishes whatever commit is pending.
func (u *Usecase) Settle(id uuid.UUID) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	seq := s.commitSeq
	s.mu.Unlock()
	return u.settle(s, seq), nil
}

func (u *Usecase) settle(s *session, seq uint64) View {
	s.mu.Lock()
	if seq != s.commitSeq || !s.state.Committing {
		v := s.view()
		s.mu.Unlock()
		return v
	}
	before := s.state.Phase
	s.state = deck.Settle(s.state)
	after := s.state.Phase
	auto := before == model.StateSwiping && after == model.StateWinnerSelected
	v := s.view()
	s.mu.Unlock()

	if auto {
		metrics.Winners.WithLabelValues("auto").Inc()
	}
	u.notify(v)
	return v
}

func (u *Usecase) Pick(id uuid.UUID, entryID uuid.UUID) (View, error) {
	v, err := u.apply(id, func(st deck.State) deck.State {
		return deck.Pick(st, entryID)
	})
	if err == nil && v.Winner != nil && v.Winner.ID == entryID {
		metrics.Winners.WithLabelValues("manual").Inc()
	}
	return v, err
}

func (u *Usecase) BackToCards(id uuid.UUID) (View, error) {
	return u.apply(id, deck.BackToCards)
}

// StartOver resets to an empty questionnaire without contacting the store.
func (u *Usecase) StartOver(id uuid.UUID) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	s.state = deck.StartOver(s.state)
	s.watchErr = ""
	v := s.view()
	s.mu.Unlock()

	u.notify(v)
	return v, nil
}

// MarkWatched persists the winner as watched, then reloads the pool and returns
// to questionnaire. On failure the winner stays selected with the error
// attached, and the call may be retried.
func (u *Usecase) MarkWatched(ctx context.Context, id uuid.UUID) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if s.state.Phase != model.StateWinnerSelected || s.state.Winner == nil {
		v := s.view()
		s.mu.Unlock()
		return v, ErrNoWinner
	}
	winner := *s.state.Winner
	token := s.token
	s.mu.Unlock()

	err = u.store.SetWatched(ctx, winner.ID)

	s.mu.Lock()
	if token != s.token {
		v := s.view()
		s.mu.Unlock()
		return v, ErrStaleResult
	}

	if err != nil {
		metrics.StoreCalls.WithLabelValues("set_watched", "error").Inc()
		s.watchErr = err.Error()
		v := s.view()
		s.mu.Unlock()
		u.notify(v)

		u.logger.Error("failed to mark watched",
			slog.String("session_id", s.id.String()),
			slog.String("entry_id", winner.ID.String()),
			slog.String("error", err.Error()))
		return v, fmt.Errorf("%w: %w", ErrMarkWatchedFailed, err)
	}

	metrics.StoreCalls.WithLabelValues("set_watched", "ok").Inc()
	s.watchErr = ""
	// The store confirmed the write; drop the winner locally until the
	// reload replaces the pool.
	s.state = deck.StartOver(deck.Reload(s.state, without(s.state.Pool, winner.ID)))
	s.mu.Unlock()

	u.logger.Info("marked watched",
		slog.String("session_id", s.id.String()),
		slog.String("entry_id", winner.ID.String()))

	return u.load(ctx, s)
}

func (u *Usecase) apply(id uuid.UUID, reduce func(deck.State) deck.State) (View, error) {
	s, err := u.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	s.state = reduce(s.state)
	v := s.view()
	s.mu.Unlock()

	u.notify(v)
	return v, nil
}

func (u *Usecase) session(id uuid.UUID) (*session, error) {
	u.mu.RLock()
	s, ok := u.sessions[id]
	u.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	s.lastSeen = u.now()
	s.mu.Unlock()
	return s, nil
}

func (u *Usecase) notify(v View) {
	for _, o := range u.observers {
		o.SessionChanged(v)
	}
}

func without(pool []model.CandidateEntry, id uuid.UUID) []model.CandidateEntry {
	out := make([]model.CandidateEntry, 0, len(pool))
	for _, e := range pool {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

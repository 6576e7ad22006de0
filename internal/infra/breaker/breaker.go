package infra_breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/metrics"
	"github.com/humanbelnik/watchlist/internal/model"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	ErrStoreUnavailable = errors.New("entry store unavailable")
)

type Store interface {
	LoadCandidatePool(ctx context.Context, groupID uuid.UUID) ([]model.CandidateEntry, error)
	SetWatched(ctx context.Context, entryID uuid.UUID) error
}

type Settings struct {
	Name string
	// Requests let through while half-open
	MaxRequests uint32
	// Time spent open before probing again
	Timeout time.Duration
	// Consecutive failures that open the circuit
	Failures uint32
	// Errors that are answers, not outages (e.g. not found)
	Ignore []error
}

// Driver guards the entry store with a circuit breaker, so a dead database
// fails fast instead of hanging every session on its pool load.
type Driver struct {
	next   Store
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

func New(next Store, s Settings) *Driver {
	d := &Driver{
		next:   next,
		logger: slog.Default(),
	}

	if s.Name == "" {
		s.Name = "entry-store"
	}
	if s.Failures == 0 {
		s.Failures = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	d.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.Failures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			for _, ignored := range s.Ignore {
				if errors.Is(err, ignored) {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn("circuit breaker state change",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return d
}

func (d *Driver) LoadCandidatePool(ctx context.Context, groupID uuid.UUID) ([]model.CandidateEntry, error) {
	res, err := d.cb.Execute(func() (any, error) {
		return d.next.LoadCandidatePool(ctx, groupID)
	})
	if err != nil {
		return nil, wrap(err)
	}
	pool, _ := res.([]model.CandidateEntry)
	return pool, nil
}

func (d *Driver) SetWatched(ctx context.Context, entryID uuid.UUID) error {
	_, err := d.cb.Execute(func() (any, error) {
		return nil, d.next.SetWatched(ctx, entryID)
	})
	return wrap(err)
}

func (d *Driver) State() gobreaker.State {
	return d.cb.State()
}

func wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

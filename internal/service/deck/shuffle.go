package deck

import (
	"math/rand/v2"

	"github.com/humanbelnik/watchlist/internal/model"
)

// Shuffler is the randomness source of the deck builder.
// *rand.Rand satisfies it.
type Shuffler interface {
	IntN(n int) int
}

type globalShuffler struct{}

func (globalShuffler) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultShuffler draws from the process-wide generator.
var DefaultShuffler Shuffler = globalShuffler{}

// Build filters the pool and returns it in uniformly random order.
func Build(pool []model.CandidateEntry, f model.FilterSelection, rng Shuffler) []model.CandidateEntry {
	d := Filter(pool, f)
	shuffle(d, rng)
	return d
}

// Fisher-Yates, in place.
func shuffle(d []model.CandidateEntry, rng Shuffler) {
	if rng == nil {
		rng = DefaultShuffler
	}
	for i := len(d) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

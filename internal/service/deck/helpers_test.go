package deck

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
)

/*
'Object Mother' for candidate entries.
*/
type EntryBuilder struct {
	e model.CandidateEntry
}

func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		e: model.CandidateEntry{
			ID:        uuid.New(),
			Title:     "Test Entry",
			MediaType: model.MediaMovie,
		},
	}
}

func (b *EntryBuilder) Show(runtime int) *EntryBuilder {
	b.e.MediaType = model.MediaTV
	b.e.RuntimeMinutes = &runtime
	return b
}

func (b *EntryBuilder) ShowWithoutRuntime() *EntryBuilder {
	b.e.MediaType = model.MediaTV
	b.e.RuntimeMinutes = nil
	return b
}

func (b *EntryBuilder) WithTags(tags ...string) *EntryBuilder {
	b.e.Tags = tags
	return b
}

func (b *EntryBuilder) Build() model.CandidateEntry {
	return b.e
}

func validPool(n int) []model.CandidateEntry {
	pool := make([]model.CandidateEntry, n)
	for i := range n {
		pool[i] = NewEntryBuilder().Build()
	}
	return pool
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1024))
}

func ids(entries []model.CandidateEntry) []uuid.UUID {
	out := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

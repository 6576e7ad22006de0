package infra_postgres_entry

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
	"github.com/lib/pq"
)

type EntryDB struct {
	ID             uuid.UUID      `db:"id"`
	Title          string         `db:"title"`
	MediaType      string         `db:"media_type"`
	RuntimeMinutes sql.NullInt64  `db:"runtime_minutes"`
	Tags           pq.StringArray `db:"tags"`
}

func (e *EntryDB) ToDomain() model.CandidateEntry {
	entry := model.CandidateEntry{
		ID:        e.ID,
		Title:     e.Title,
		MediaType: model.MediaType(e.MediaType),
		Tags:      []string(e.Tags),
	}
	if e.RuntimeMinutes.Valid {
		runtime := int(e.RuntimeMinutes.Int64)
		entry.RuntimeMinutes = &runtime
	}
	return entry
}

package infra_postgres_entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
)

type Repository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func New(db *sqlx.DB) *Repository {
	return &Repository{
		db:     db,
		logger: slog.Default(),
	}
}

// LoadCandidatePool returns the unwatched entries of the group with their tag names.
func (r *Repository) LoadCandidatePool(ctx context.Context, groupID uuid.UUID) ([]model.CandidateEntry, error) {
	query := `
		SELECT e.id, e.title, e.media_type, e.runtime_minutes,
			COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags
		FROM entries e
		LEFT JOIN entry_tags et ON et.entry_id = e.id
		LEFT JOIN tags t ON t.id = et.tag_id
		WHERE e.group_id = $1 AND e.watched_at IS NULL
		GROUP BY e.id
	`

	var entriesDB []EntryDB
	if err := r.db.SelectContext(ctx, &entriesDB, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %w", err)
	}

	entries := make([]model.CandidateEntry, 0, len(entriesDB))
	for _, entryDB := range entriesDB {
		entry := entryDB.ToDomain()
		if !entry.MediaType.Valid() {
			r.logger.Warn("skipping entry with unknown media type",
				slog.String("entry_id", entry.ID.String()),
				slog.String("media_type", entryDB.MediaType))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// SetWatched stamps the entry watched now through the set_entry_watched
// procedure. Marking an already watched entry again is fine.
func (r *Repository) SetWatched(ctx context.Context, entryID uuid.UUID) error {
	query := `SELECT set_entry_watched($1)`

	var found bool
	if err := r.db.GetContext(ctx, &found, query, entryID); err != nil {
		return fmt.Errorf("failed to set watched: %w", err)
	}

	if !found {
		return ErrEntryNotFound
	}

	return nil
}

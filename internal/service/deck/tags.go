package deck

import (
	"slices"

	"github.com/humanbelnik/watchlist/internal/model"
)

// AvailableTags lists the distinct tags of the pool, sorted.
func AvailableTags(pool []model.CandidateEntry) []string {
	seen := make(map[string]struct{})
	for _, e := range pool {
		for _, t := range e.Tags {
			seen[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

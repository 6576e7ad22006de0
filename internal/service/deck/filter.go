package deck

import "github.com/humanbelnik/watchlist/internal/model"

// Shows shorter than this many minutes count as short.
const shortShowLimit = 30

// Matches reports whether e passes both the time and the tag predicate of f.
func Matches(e model.CandidateEntry, f model.FilterSelection) bool {
	return matchesTime(e, f.TimeTypes) && matchesTags(e, f.Tags)
}

// Filter keeps the entries matching f, preserving pool order.
func Filter(pool []model.CandidateEntry, f model.FilterSelection) []model.CandidateEntry {
	out := make([]model.CandidateEntry, 0, len(pool))
	for _, e := range pool {
		if Matches(e, f) {
			out = append(out, e)
		}
	}
	return out
}

// CountMatches is Filter without the allocation.
func CountMatches(pool []model.CandidateEntry, f model.FilterSelection) int {
	n := 0
	for _, e := range pool {
		if Matches(e, f) {
			n++
		}
	}
	return n
}

func matchesTime(e model.CandidateEntry, types []model.TimeType) bool {
	if len(types) == 0 {
		return true
	}

	for _, t := range types {
		switch t {
		case model.TimeMovie:
			if e.MediaType == model.MediaMovie {
				return true
			}
		case model.TimeShortShow:
			// Unknown runtime is treated as 0, so runtime-less shows land here.
			if e.MediaType == model.MediaTV && e.Runtime() < shortShowLimit {
				return true
			}
		case model.TimeLongShow:
			if e.MediaType == model.MediaTV && e.Runtime() >= shortShowLimit {
				return true
			}
		}
	}
	return false
}

func matchesTags(e model.CandidateEntry, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	for _, t := range tags {
		if e.HasTag(t) {
			return true
		}
	}
	return false
}

package model

import "github.com/google/uuid"

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

func (m MediaType) Valid() bool {
	return m == MediaMovie || m == MediaTV
}

// CandidateEntry is an unwatched list entry eligible for a decision session.
// Entries are owned by the store and never mutated by the engine.
type CandidateEntry struct {
	ID        uuid.UUID
	Title     string
	MediaType MediaType

	// nil when the metadata provider had no runtime
	RuntimeMinutes *int
	Tags           []string
}

// Runtime returns the runtime in minutes, 0 when unknown.
func (e CandidateEntry) Runtime() int {
	if e.RuntimeMinutes == nil {
		return 0
	}
	return *e.RuntimeMinutes
}

func (e CandidateEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type TimeType string

const (
	TimeMovie     TimeType = "movie"
	TimeShortShow TimeType = "short-show"
	TimeLongShow  TimeType = "long-show"
)

func (t TimeType) Valid() bool {
	switch t {
	case TimeMovie, TimeShortShow, TimeLongShow:
		return true
	}
	return false
}

// FilterSelection is the mood/time questionnaire answer.
// Empty slices mean "no constraint".
type FilterSelection struct {
	TimeTypes []TimeType
	Tags      []string
}

func (f FilterSelection) IsEmpty() bool {
	return len(f.TimeTypes) == 0 && len(f.Tags) == 0
}

// Clone detaches the selection from the caller's slices.
func (f FilterSelection) Clone() FilterSelection {
	out := FilterSelection{}
	if len(f.TimeTypes) > 0 {
		out.TimeTypes = append([]TimeType(nil), f.TimeTypes...)
	}
	if len(f.Tags) > 0 {
		out.Tags = append([]string(nil), f.Tags...)
	}
	return out
}

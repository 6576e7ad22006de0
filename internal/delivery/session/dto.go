package delivery_session

import (
	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/model"
	usecase_session "github.com/humanbelnik/watchlist/internal/usecase/session"
)

// EntryResponse DTO карточки фильма или сериала
type EntryResponse struct {
	ID             uuid.UUID `json:"id" swaggertype:"string" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title          string    `json:"title" example:"Heat"`
	MediaType      string    `json:"media_type" example:"movie" enums:"movie,tv"`
	RuntimeMinutes *int      `json:"runtime_minutes,omitempty" example:"170"`
	Tags           []string  `json:"tags" example:"crime,drama"`
}

// FiltersDTO DTO анкеты
type FiltersDTO struct {
	TimeTypes []string `json:"time_types" example:"movie,short-show" enums:"movie,short-show,long-show"`
	Tags      []string `json:"tags" example:"comedy"`
}

// SessionResponse DTO состояния сессии выбора
type SessionResponse struct {
	ID      uuid.UUID `json:"id" swaggertype:"string"`
	GroupID uuid.UUID `json:"group_id" swaggertype:"string"`
	State   string    `json:"state" example:"swiping" enums:"questionnaire,swiping,picking,winner-selected"`
	Version uint64    `json:"version" example:"12"`

	Filters       FiltersDTO `json:"filters"`
	AvailableTags []string   `json:"available_tags"`
	PoolSize      int        `json:"pool_size" example:"12"`
	MatchCount    int        `json:"match_count" example:"7"`

	Current   *EntryResponse  `json:"current,omitempty"`
	Remaining int             `json:"remaining" example:"6"`
	Liked     []EntryResponse `json:"liked"`
	Goal      int             `json:"goal" example:"3"`
	Winner    *EntryResponse  `json:"winner,omitempty"`

	Committing bool `json:"committing"`
	CanDecide  bool `json:"can_decide"`
	NoMatches  bool `json:"no_matches"`

	Loading    bool   `json:"loading"`
	LoadError  string `json:"load_error,omitempty"`
	WatchError string `json:"watch_error,omitempty"`
}

func (f FiltersDTO) ConvertToFilterSelection() (model.FilterSelection, bool) {
	out := model.FilterSelection{
		TimeTypes: make([]model.TimeType, 0, len(f.TimeTypes)),
		Tags:      append([]string(nil), f.Tags...),
	}
	for _, raw := range f.TimeTypes {
		tt := model.TimeType(raw)
		if !tt.Valid() {
			return model.FilterSelection{}, false
		}
		out.TimeTypes = append(out.TimeTypes, tt)
	}
	return out, true
}

func ConvertFromEntry(e model.CandidateEntry) EntryResponse {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EntryResponse{
		ID:             e.ID,
		Title:          e.Title,
		MediaType:      string(e.MediaType),
		RuntimeMinutes: e.RuntimeMinutes,
		Tags:           tags,
	}
}

func ConvertFromView(v usecase_session.View) SessionResponse {
	resp := SessionResponse{
		ID:      v.ID,
		GroupID: v.GroupID,
		State:   string(v.State),
		Version: v.Version,
		Filters: FiltersDTO{
			TimeTypes: make([]string, 0, len(v.Filters.TimeTypes)),
			Tags:      append([]string{}, v.Filters.Tags...),
		},
		AvailableTags: append([]string{}, v.AvailableTags...),
		PoolSize:      v.PoolSize,
		MatchCount:    v.MatchCount,
		Remaining:     v.Remaining,
		Liked:         make([]EntryResponse, len(v.Liked)),
		Goal:          v.Goal,
		Committing:    v.Committing,
		CanDecide:     v.CanDecide,
		NoMatches:     v.NoMatches,
		Loading:       v.Loading,
		LoadError:     v.LoadError,
		WatchError:    v.WatchError,
	}
	for _, tt := range v.Filters.TimeTypes {
		resp.Filters.TimeTypes = append(resp.Filters.TimeTypes, string(tt))
	}
	for i, e := range v.Liked {
		resp.Liked[i] = ConvertFromEntry(e)
	}
	if v.Head != nil {
		head := ConvertFromEntry(*v.Head)
		resp.Current = &head
	}
	if v.Winner != nil {
		winner := ConvertFromEntry(*v.Winner)
		resp.Winner = &winner
	}
	return resp
}

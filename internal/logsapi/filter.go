package logsapi

import (
	"fmt"

	"arkscrape/internal/raids"
)

type SortKey string

const (
	SortID         SortKey = "id"
	SortDps        SortKey = "dps"
	SortDuration   SortKey = "duration"
	SortFightStart SortKey = "fight_start"
)

type SortOrder int

const (
	OrderAscending  SortOrder = 1
	OrderDescending SortOrder = 2
)

// Filter describes one encounter query. It is immutable once built: the
// same filter always produces the same request shape and the same cache
// key, so incremental runs keep targeting the same stored table.
type Filter struct {
	boss       string
	gate       int
	difficulty raids.Difficulty
	// bosses is the resolved encounter-name variant list for boss+gate
	bosses  []string
	classes []string
	sort    SortKey
	order   SortOrder
	regions []string
}

type FilterOption func(*Filter)

func WithClasses(classes ...string) FilterOption {
	return func(f *Filter) { f.classes = classes }
}

func WithRegions(regions ...string) FilterOption {
	return func(f *Filter) { f.regions = regions }
}

func WithSort(key SortKey, order SortOrder) FilterOption {
	return func(f *Filter) {
		f.sort = key
		f.order = order
	}
}

// NewFilter resolves boss name variants through the static raid table.
// A gated boss must exist in the table at that gate, and the difficulty
// must be one the gate actually runs at.
func NewFilter(boss string, gate int, difficulty raids.Difficulty, opts ...FilterOption) (Filter, error) {
	f := Filter{
		boss:       boss,
		gate:       gate,
		difficulty: difficulty,
		sort:       SortID,
		order:      OrderAscending,
	}

	if gate == 0 {
		f.bosses = []string{boss}
	} else {
		raid, err := raids.Lookup(boss, gate)
		if err != nil {
			return Filter{}, err
		}
		if difficulty != raids.DifficultyNone {
			ok := false
			for _, d := range raid.Difficulties {
				if d == difficulty {
					ok = true
					break
				}
			}
			if !ok {
				return Filter{}, fmt.Errorf("%s G%d does not run at difficulty %q", boss, gate, difficulty)
			}
		}
		f.bosses = raid.Names
	}

	for _, opt := range opts {
		opt(&f)
	}
	return f, nil
}

type requestFilter struct {
	Bosses     []string `json:"bosses"`
	Difficulty string   `json:"difficulty"`
	Sort       SortKey  `json:"sort"`
	Order      int      `json:"order"`
	Regions    []string `json:"regions"`
	Classes    []string `json:"classes"`
}

// RequestBody is the wire shape of one ID-listing request.
type RequestBody struct {
	Filter   requestFilter `json:"filter"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Search   string        `json:"search"`
}

// RequestBody builds the request payload for one listing page. Pure.
func (f Filter) RequestBody(page, pageSize int, search string) RequestBody {
	classes := f.classes
	if classes == nil {
		classes = []string{}
	}
	regions := f.regions
	if regions == nil {
		regions = []string{}
	}
	return RequestBody{
		Filter: requestFilter{
			Bosses:     f.bosses,
			Difficulty: string(f.difficulty),
			Sort:       f.sort,
			Order:      int(f.order),
			Regions:    regions,
			Classes:    classes,
		},
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	}
}

// CacheKey names the stored table this filter accumulates into. It is a
// pure function of (boss, gate, difficulty).
func (f Filter) CacheKey() string {
	if f.gate == 0 {
		return f.boss
	}
	return fmt.Sprintf("%s_G%d_%s", f.boss, f.gate, f.difficulty)
}

func (f Filter) String() string {
	return raids.Selection{Boss: f.boss, Gate: f.gate, Difficulty: f.difficulty}.String()
}

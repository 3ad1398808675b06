package store

// Criteria is the request envelope understood by the Store API search
// endpoints. Only the subset this adapter sends is modeled; the upstream
// ignores absent fields.
type Criteria struct {
	Page           int                 `json:"page,omitempty"`
	Limit          int                 `json:"limit,omitempty"`
	Term           string              `json:"term,omitempty"`
	IDs            []string            `json:"ids,omitempty"`
	Filter         []Filter            `json:"filter,omitempty"`
	Sort           []SortField         `json:"sort,omitempty"`
	Associations   map[string]Criteria `json:"associations,omitempty"`
	TotalCountMode int                 `json:"total-count-mode,omitempty"`
}

// ExactTotalCount asks the upstream for a precise total instead of the
// default "next page exists" heuristic. Listing handlers need it for their
// pagination math.
const ExactTotalCount = 1

// Filter is one entry of a criteria filter list.
type Filter struct {
	Type       string             `json:"type"`
	Field      string             `json:"field"`
	Value      any                `json:"value,omitempty"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

// EqualsFilter matches records whose field equals value.
func EqualsFilter(field string, value any) Filter {
	return Filter{Type: "equals", Field: field, Value: value}
}

// RangeFilter bounds a numeric field. Nil bounds are omitted; callers must
// pass at least one.
func RangeFilter(field string, gte, lte *float64) Filter {
	params := make(map[string]float64, 2)
	if gte != nil {
		params["gte"] = *gte
	}
	if lte != nil {
		params["lte"] = *lte
	}
	return Filter{Type: "range", Field: field, Parameters: params}
}

// SortField is one entry of a criteria sort list.
type SortField struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

const (
	SortAscending  = "ASC"
	SortDescending = "DESC"
)

package viewstate

import "maps"

// ViewType is the display mode of a paginated page.
type ViewType string

const (
	ViewList  ViewType = "list"
	ViewTable ViewType = "table"
)

// DefaultRowsPerPage is the page size a page starts with.
const DefaultRowsPerPage = "5"

// TabState is the pagination cursor of one tab within a page.
type TabState struct {
	Name         string         `json:"name"`
	PaginationID string         `json:"pagination_id"`
	PageInfo     map[string]any `json:"page_info"`
	CurrentPage  int            `json:"current_page"`
	Active       bool           `json:"active"`
}

// PageState is the set of UI preferences tracked for one page.
// Tabs are kept in the order they were first addressed.
type PageState struct {
	Name               string     `json:"name"`
	RowsPerPage        string     `json:"rows_per_page"`
	RowsPerPageOptions []int      `json:"rows_per_page_options,omitempty"`
	Filter             string     `json:"filter"`
	Sort               string     `json:"sort"`
	SortDescending     bool       `json:"sort_descending"`
	ViewType           ViewType   `json:"view_type"`
	ActiveTab          string     `json:"active_tab"`
	Tabs               []TabState `json:"tabs"`
}

// Tab returns the named tab if the page has one.
func (p PageState) Tab(name string) (TabState, bool) {
	for _, t := range p.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return TabState{}, false
}

// Defaults overrides the values a page is created with. Zero fields keep the
// built-in defaults.
type Defaults struct {
	RowsPerPage string
	ViewType    ViewType
}

// PaginationID is the handle a pagination widget uses for a page's tab.
func PaginationID(page, tab string) string {
	return page + "_" + tab
}

func sortIsDescending(sort string) bool {
	return len(sort) > 0 && sort[0] == '-'
}

func (t *TabState) clone() TabState {
	out := *t
	out.PageInfo = maps.Clone(t.PageInfo)
	if out.PageInfo == nil {
		out.PageInfo = map[string]any{}
	}
	return out
}

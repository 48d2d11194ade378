package viewstate

import (
	"maps"
	"slices"
	"time"
)

// Snapshot is a detached copy of every page in a registry, in creation order.
type Snapshot struct {
	Session string      `json:"session"`
	TakenAt time.Time   `json:"taken_at"`
	Pages   []PageState `json:"pages"`
}

// Snapshot copies the registry's state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		Session: r.session,
		TakenAt: time.Now().UTC().Truncate(time.Second),
		Pages:   make([]PageState, 0, len(r.order)),
	}
	for _, name := range r.order {
		s.Pages = append(s.Pages, r.pages[name].state())
	}
	return s
}

// Restore replaces the registry's pages with those in s. The registry keeps
// its own session id.
//
// Snapshots may come from disk, so pages and tabs without a name are dropped,
// later duplicates are ignored, pagination ids are re-derived, current pages
// below 1 become 1 and only the first active tab of a page stays active.
func (r *Registry) Restore(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = map[string]*page{}
	r.order = nil
	for _, ps := range s.Pages {
		if ps.Name == "" {
			continue
		}
		if _, dup := r.pages[ps.Name]; dup {
			continue
		}
		p := &page{
			name:               ps.Name,
			rowsPerPage:        ps.RowsPerPage,
			rowsPerPageOptions: slices.Clone(ps.RowsPerPageOptions),
			filter:             ps.Filter,
			sort:               ps.Sort,
			sortDescending:     sortIsDescending(ps.Sort),
			viewType:           ps.ViewType,
			activeTab:          ps.ActiveTab,
			tabIndex:           map[string]int{},
		}
		if p.viewType == "" {
			p.viewType = r.defaults.ViewType
		}
		if p.activeTab == "" {
			p.activeTab = p.name
		}
		seenActive := false
		for _, ts := range ps.Tabs {
			if ts.Name == "" {
				continue
			}
			if _, dup := p.tabIndex[ts.Name]; dup {
				continue
			}
			t := &TabState{
				Name:         ts.Name,
				PaginationID: PaginationID(p.name, ts.Name),
				PageInfo:     maps.Clone(ts.PageInfo),
				CurrentPage:  max(ts.CurrentPage, 1),
				Active:       ts.Active && !seenActive,
			}
			if t.PageInfo == nil {
				t.PageInfo = map[string]any{}
			}
			seenActive = seenActive || t.Active
			p.tabIndex[t.Name] = len(p.tabs)
			p.tabs = append(p.tabs, t)
		}
		r.pages[p.name] = p
		r.order = append(r.order, p.name)
	}
	r.log.Debug().Int("pages", len(r.order)).Str("from_session", s.Session).Msg("registry restored")
}

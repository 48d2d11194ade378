// Package viewstate keeps per-page UI preferences for paginated views:
// rows per page, filter text, sort order, view type and, per tab, the
// pagination cursor and activation flag.
//
// State is created lazily on first access and lives until the Registry is
// Reset or discarded. A Registry is safe for concurrent use.
package viewstate

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type page struct {
	name               string
	rowsPerPage        string
	rowsPerPageOptions []int
	filter             string
	sort               string
	sortDescending     bool
	viewType           ViewType
	activeTab          string
	tabs               []*TabState
	tabIndex           map[string]int
}

// Registry maps page names to their view state.
type Registry struct {
	mu       sync.Mutex
	session  string
	pages    map[string]*page
	order    []string
	defaults Defaults
	log      zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger makes the registry log page and tab creation at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l.With().Str("component", "viewstate").Logger() }
}

// WithDefaults overrides the rows per page and view type new pages get.
func WithDefaults(d Defaults) Option {
	return func(r *Registry) {
		if d.RowsPerPage != "" {
			r.defaults.RowsPerPage = d.RowsPerPage
		}
		if d.ViewType != "" {
			r.defaults.ViewType = d.ViewType
		}
	}
}

// New returns an empty registry with a fresh session id.
func New(opts ...Option) *Registry {
	r := &Registry{
		session:  uuid.NewString(),
		pages:    map[string]*page{},
		defaults: Defaults{RowsPerPage: DefaultRowsPerPage, ViewType: ViewList},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session identifies this registry's lifetime.
func (r *Registry) Session() string {
	return r.session
}

// pageLocked returns the page, creating it with defaults if absent, and makes
// sure the tab exists. An empty tab means the page's own tab.
func (r *Registry) pageLocked(name, tab string) (*page, *TabState, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("%w: page name is empty", ErrInvalidArgument)
	}
	p, ok := r.pages[name]
	if !ok {
		// activeTab takes the tab as given, before it falls back to the page name.
		p = &page{
			name:        name,
			rowsPerPage: r.defaults.RowsPerPage,
			viewType:    r.defaults.ViewType,
			activeTab:   tab,
			tabIndex:    map[string]int{},
		}
		if p.activeTab == "" {
			p.activeTab = name
		}
		r.pages[name] = p
		r.order = append(r.order, name)
		r.log.Debug().Str("page", name).Msg("page created")
	}
	if tab == "" {
		tab = name
	}
	return p, r.tabLocked(p, tab), nil
}

func (r *Registry) tabLocked(p *page, name string) *TabState {
	if i, ok := p.tabIndex[name]; ok {
		return p.tabs[i]
	}
	t := &TabState{
		Name:         name,
		PaginationID: PaginationID(p.name, name),
		PageInfo:     map[string]any{},
		CurrentPage:  1,
	}
	p.tabIndex[name] = len(p.tabs)
	p.tabs = append(p.tabs, t)
	r.log.Debug().Str("page", p.name).Str("tab", name).Msg("tab created")
	return t
}

func (p *page) state() PageState {
	out := PageState{
		Name:               p.name,
		RowsPerPage:        p.rowsPerPage,
		RowsPerPageOptions: slices.Clone(p.rowsPerPageOptions),
		Filter:             p.filter,
		Sort:               p.sort,
		SortDescending:     p.sortDescending,
		ViewType:           p.viewType,
		ActiveTab:          p.activeTab,
		Tabs:               make([]TabState, 0, len(p.tabs)),
	}
	for _, t := range p.tabs {
		out.Tabs = append(out.Tabs, t.clone())
	}
	return out
}

// Page returns a copy of the page's state, creating the page and the tab
// (the page's own tab when tab is empty) if needed.
func (r *Registry) Page(name, tab string) (PageState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, tab)
	if err != nil {
		return PageState{}, err
	}
	return p.state(), nil
}

// Pages lists page names in creation order.
func (r *Registry) Pages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Tabs returns the page's tabs in the order they were created.
func (r *Registry) Tabs(name string) ([]TabState, error) {
	st, err := r.Page(name, "")
	if err != nil {
		return nil, err
	}
	return st.Tabs, nil
}

// SetRowsPerPageOptions stores the selectable page sizes as given.
func (r *Registry) SetRowsPerPageOptions(name string, options []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return err
	}
	p.rowsPerPageOptions = slices.Clone(options)
	return nil
}

// RowsPerPageOptions returns the selectable page sizes, nil if never set.
func (r *Registry) RowsPerPageOptions(name string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.rowsPerPageOptions), nil
}

// ViewType returns the page's view type.
func (r *Registry) ViewType(name string) (ViewType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	return p.viewType, nil
}

// SetViewType stores v verbatim. Values other than list and table are kept
// but only those two are rendered distinctly.
func (r *Registry) SetViewType(name string, v ViewType) (ViewType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	p.viewType = v
	return p.viewType, nil
}

// ToggleViewType switches list to table and anything else to list.
func (r *Registry) ToggleViewType(name string) (ViewType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	if p.viewType == ViewList {
		p.viewType = ViewTable
	} else {
		p.viewType = ViewList
	}
	return p.viewType, nil
}

// ActivateTab marks tab as the page's only active tab, creating it if needed.
func (r *Registry) ActivateTab(name, tab string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, target, err := r.pageLocked(name, tab)
	if err != nil {
		return err
	}
	for _, t := range p.tabs {
		t.Active = false
	}
	target.Active = true
	p.activeTab = target.Name
	return nil
}

// ActiveTab returns the first active tab in creation order, or a zero
// TabState when no tab is active.
func (r *Registry) ActiveTab(name string) (TabState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return TabState{}, err
	}
	for _, t := range p.tabs {
		if t.Active {
			return t.clone(), nil
		}
	}
	return TabState{}, nil
}

// Filter returns the page's filter text.
func (r *Registry) Filter(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	return p.filter, nil
}

// SetFilter stores the filter text. An empty value clears it.
func (r *Registry) SetFilter(name, value string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	p.filter = value
	return p.filter, nil
}

// RowsPerPage returns the page size.
func (r *Registry) RowsPerPage(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	return p.rowsPerPage, nil
}

// SetRowsPerPage stores the page size verbatim.
func (r *Registry) SetRowsPerPage(name, value string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	p.rowsPerPage = value
	return p.rowsPerPage, nil
}

// Sort returns the page's sort order.
func (r *Registry) Sort(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	return p.sort, nil
}

// SetSort stores a sort order; a leading "-" marks it descending. An empty
// value leaves both the order and the direction unchanged.
func (r *Registry) SetSort(name, value string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return "", err
	}
	if value != "" {
		p.sort = value
		p.sortDescending = sortIsDescending(value)
	}
	return p.sort, nil
}

// IsSortDescending reports whether the last non-empty sort began with "-".
func (r *Registry) IsSortDescending(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _, err := r.pageLocked(name, "")
	if err != nil {
		return false, err
	}
	return p.sortDescending, nil
}

// PaginationID returns the tab's pagination handle, creating state as needed.
func (r *Registry) PaginationID(name, tab string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, t, err := r.pageLocked(name, tab)
	if err != nil {
		return "", err
	}
	return t.PaginationID, nil
}

// CurrentPage returns the tab's 1-based page number.
func (r *Registry) CurrentPage(name, tab string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, t, err := r.pageLocked(name, tab)
	if err != nil {
		return 0, err
	}
	return t.CurrentPage, nil
}

// SetCurrentPage moves the tab to page n and returns the resulting page.
//
// n <= 0 is ignored, so there is no way to store page 0. Ignoring 0 is kept
// from the behaviour this registry replaces and is probably a latent bug
// there. Callers that need a reset should set 1.
func (r *Registry) SetCurrentPage(name, tab string, n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, t, err := r.pageLocked(name, tab)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.CurrentPage = n
	}
	return t.CurrentPage, nil
}

// SetPageInfo replaces the opaque pagination metadata kept for a tab.
func (r *Registry) SetPageInfo(name, tab string, info map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, t, err := r.pageLocked(name, tab)
	if err != nil {
		return err
	}
	t.PageInfo = maps.Clone(info)
	if t.PageInfo == nil {
		t.PageInfo = map[string]any{}
	}
	return nil
}

// Reset drops every page.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = map[string]*page{}
	r.order = nil
	r.log.Debug().Msg("registry reset")
}

package tui

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/jask/tablebrowser/internal/catalog"
	"github.com/jask/tablebrowser/internal/viewstate"
)

var defaultRowsPerPageOptions = []int{5, 10, 25, 50}

// pager binds one registry page to the view rendering it. Page names are
// never empty here, so registry errors are ignored.
type pager struct {
	reg  *viewstate.Registry
	page string
	tabs []string
}

func newPager(reg *viewstate.Registry, page string, tabs []string, options []int) pager {
	p := pager{reg: reg, page: page, tabs: tabs}
	if opts, _ := reg.RowsPerPageOptions(page); opts == nil {
		if len(options) == 0 {
			options = defaultRowsPerPageOptions
		}
		_ = reg.SetRowsPerPageOptions(page, options)
	}
	if active, _ := reg.ActiveTab(page); active.Name == "" || !slices.Contains(tabs, active.Name) {
		_ = reg.ActivateTab(page, tabs[0])
	}
	return p
}

func (p pager) rowsPerPage() int {
	s, _ := p.reg.RowsPerPage(p.page)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		n, _ = strconv.Atoi(viewstate.DefaultRowsPerPage)
	}
	return n
}

func (p pager) activeTab() string {
	t, _ := p.reg.ActiveTab(p.page)
	if t.Name == "" {
		return p.tabs[0]
	}
	return t.Name
}

func (p pager) nextTab() string {
	i := slices.Index(p.tabs, p.activeTab())
	next := p.tabs[(i+1)%len(p.tabs)]
	_ = p.reg.ActivateTab(p.page, next)
	return next
}

// window returns the visible slice of n items for tab without touching the
// registry.
func (p pager) window(tab string, n int) catalog.Window {
	cur, _ := p.reg.CurrentPage(p.page, tab)
	return catalog.Paginate(n, p.rowsPerPage(), cur)
}

// clamp pulls tab's stored page back into range for n items.
func (p pager) clamp(tab string, n int) {
	cur, _ := p.reg.CurrentPage(p.page, tab)
	if w := catalog.Paginate(n, p.rowsPerPage(), cur); w.Page != cur {
		_, _ = p.reg.SetCurrentPage(p.page, tab, w.Page)
	}
}

// peek returns tab's window without clamping it, for use before the items
// behind it have loaded.
func (p pager) peek(tab string) catalog.Window {
	cur, _ := p.reg.CurrentPage(p.page, tab)
	return catalog.Window{Page: cur, Pages: cur}
}

// turn moves tab by delta pages within [1, pages] and reports whether the
// page changed.
func (p pager) turn(tab string, delta, pages int) bool {
	cur, _ := p.reg.CurrentPage(p.page, tab)
	next := min(max(cur+delta, 1), max(pages, 1))
	if next == cur {
		return false
	}
	_, _ = p.reg.SetCurrentPage(p.page, tab, next)
	return true
}

// cycleRows steps through the page's rows-per-page options and sends every
// tab back to its first page.
func (p pager) cycleRows(delta int) {
	opts, _ := p.reg.RowsPerPageOptions(p.page)
	if len(opts) == 0 {
		opts = defaultRowsPerPageOptions
	}
	cur := p.rowsPerPage()
	var next int
	if i := slices.Index(opts, cur); i >= 0 {
		next = opts[min(max(i+delta, 0), len(opts)-1)]
	} else {
		next = nearestOption(opts, cur, delta)
	}
	_, _ = p.reg.SetRowsPerPage(p.page, strconv.Itoa(next))
	for _, t := range p.tabs {
		_, _ = p.reg.SetCurrentPage(p.page, t, 1)
	}
}

// nearestOption picks the closest option past cur in the direction of delta,
// or the outermost option when there is none.
func nearestOption(opts []int, cur, delta int) int {
	best, found := 0, false
	for _, o := range opts {
		switch {
		case delta > 0 && o > cur && (!found || o < best):
			best, found = o, true
		case delta < 0 && o < cur && (!found || o > best):
			best, found = o, true
		}
	}
	if found {
		return best
	}
	if delta > 0 {
		return slices.Max(opts)
	}
	return slices.Min(opts)
}

func (p pager) viewType() viewstate.ViewType {
	v, _ := p.reg.ViewType(p.page)
	return v
}

func (p pager) toggleView() viewstate.ViewType {
	v, _ := p.reg.ToggleViewType(p.page)
	return v
}

func (p pager) footer(tab string, w catalog.Window, total int) string {
	id, _ := p.reg.PaginationID(p.page, tab)
	return fmt.Sprintf("page %d/%d · %d rows · %d per page · %s", w.Page, w.Pages, total, p.rowsPerPage(), id)
}

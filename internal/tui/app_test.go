package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/tablebrowser/internal/catalog"
	"github.com/jask/tablebrowser/internal/database"
	"github.com/jask/tablebrowser/internal/testdata"
	"github.com/jask/tablebrowser/internal/viewstate"
)

const seedRows = 12

func newTestApp(t *testing.T, reg *viewstate.Registry, start string) *App {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "sample.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, testdata.Seed(context.Background(), db, seedRows, 7))
	if reg == nil {
		reg = viewstate.New()
	}
	a := New(context.Background(), Deps{
		Registry:  reg,
		Catalog:   catalog.New(db),
		Log:       zerolog.Nop(),
		StartPath: start,
	})
	drain(t, a, a.Init())
	return a
}

// drain runs cmd and every command it produces, feeding the messages back
// into the app the way the bubbletea runtime would.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for i := 0; len(queue) > 0; i++ {
		require.Less(t, i, 200, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(tea.QuitMsg); ok || msg == nil {
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, next)
	}
}

func press(t *testing.T, a *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := a.Update(msg)
		drain(t, a, cmd)
	}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		press(t, a, string(r))
	}
}

func TestStartsOnTableList(t *testing.T) {
	a := newTestApp(t, nil, "")
	assert.Equal(t, "/tables", a.Path())

	out := a.View()
	assert.Contains(t, out, "audit_log")
	assert.Contains(t, out, "page 1/3")
	assert.Contains(t, out, "tables_tables")
	assert.NotContains(t, out, "order_items")

	active, err := a.deps.Registry.ActiveTab(TablesPage)
	require.NoError(t, err)
	assert.Equal(t, "tables", active.Name)
	opts, _ := a.deps.Registry.RowsPerPageOptions(TablesPage)
	assert.Equal(t, defaultRowsPerPageOptions, opts)
}

func TestPagingWritesRegistry(t *testing.T) {
	a := newTestApp(t, nil, "")
	reg := a.deps.Registry

	press(t, a, "l")
	n, _ := reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 2, n)
	assert.Contains(t, a.View(), "order_items")

	press(t, a, "l", "l", "l")
	n, _ = reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 3, n, "paging stops at the last page")

	press(t, a, "h", "h", "h", "h")
	n, _ = reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 1, n)
}

func TestTabsPageIndependently(t *testing.T) {
	a := newTestApp(t, nil, "")
	reg := a.deps.Registry

	press(t, a, "l", "tab")
	active, _ := reg.ActiveTab(TablesPage)
	assert.Equal(t, "views", active.Name)
	assert.Equal(t, "tables_views", active.PaginationID)

	out := a.View()
	assert.Contains(t, out, "customer_totals")
	assert.Contains(t, out, "recent_orders")
	assert.Contains(t, out, "page 1/1")

	n, _ := reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 2, n, "switching tabs keeps the other tab's page")
}

func TestFilterResetsPaging(t *testing.T) {
	a := newTestApp(t, nil, "")
	reg := a.deps.Registry

	press(t, a, "l", "/")
	typeText(t, a, "cust")
	press(t, a, "enter")

	f, _ := reg.Filter(TablesPage)
	assert.Equal(t, "cust", f)
	n, _ := reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 1, n)

	out := a.View()
	assert.Contains(t, out, "customers")
	assert.NotContains(t, out, "audit_log")
}

func TestSortAndViewToggle(t *testing.T) {
	a := newTestApp(t, nil, "")
	reg := a.deps.Registry

	s, _ := reg.Sort(TablesPage)
	assert.Equal(t, "name", s)
	press(t, a, "S")
	s, _ = reg.Sort(TablesPage)
	assert.Equal(t, "-name", s)
	desc, _ := reg.IsSortDescending(TablesPage)
	assert.True(t, desc)
	assert.Contains(t, a.View(), "warehouses")

	press(t, a, "s")
	s, _ = reg.Sort(TablesPage)
	assert.Equal(t, "-kind", s)

	press(t, a, "v")
	vt, _ := reg.ViewType(TablesPage)
	assert.Equal(t, viewstate.ViewTable, vt)
	assert.Contains(t, a.View(), "COLUMNS")
}

func TestRowsPerPageCycles(t *testing.T) {
	a := newTestApp(t, nil, "")
	reg := a.deps.Registry

	press(t, a, "l", "+")
	rows, _ := reg.RowsPerPage(TablesPage)
	assert.Equal(t, "10", rows)
	n, _ := reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 1, n)
	assert.Contains(t, a.View(), "page 1/2")

	press(t, a, "-", "-")
	rows, _ = reg.RowsPerPage(TablesPage)
	assert.Equal(t, "5", rows)
}

func TestOpenTableAndBack(t *testing.T) {
	a := newTestApp(t, nil, "")
	reg := a.deps.Registry

	press(t, a, "j", "enter")
	assert.Equal(t, "/tables/main/customers", a.Path())
	page := TablePage("main", "customers")
	assert.Contains(t, reg.Pages(), page)
	out := a.View()
	assert.Contains(t, out, "Table Details")
	assert.Contains(t, out, "region")

	press(t, a, "tab")
	st, err := reg.Page(page, "rows")
	require.NoError(t, err)
	tab, ok := st.Tab("rows")
	require.True(t, ok)
	assert.Equal(t, seedRows, tab.PageInfo["total"])
	assert.Equal(t, 3, tab.PageInfo["pages"])
	assert.Contains(t, a.View(), "table/main/customers_rows")

	press(t, a, "l")
	n, _ := reg.CurrentPage(page, "rows")
	assert.Equal(t, 2, n)
	st, _ = reg.Page(page, "")
	tab, _ = st.Tab("rows")
	assert.Equal(t, 2, tab.PageInfo["page"])

	press(t, a, "esc")
	assert.Equal(t, "/tables", a.Path())
	n, _ = reg.CurrentPage(page, "rows")
	assert.Equal(t, 2, n, "leaving a page keeps its state")
}

func TestRestoredStateIsShown(t *testing.T) {
	reg := viewstate.New()
	_, _ = reg.SetCurrentPage(TablesPage, "tables", 3)
	_ = reg.ActivateTab(TablesPage, "tables")
	_, _ = reg.SetRowsPerPage(TablesPage, "5")

	a := newTestApp(t, reg, "")
	out := a.View()
	assert.Contains(t, out, "page 3/3")
	assert.Contains(t, out, "warehouses")
}

func TestStartPathOpensTable(t *testing.T) {
	a := newTestApp(t, nil, "/tables/main/orders/")
	assert.Equal(t, "/tables/main/orders", a.Path())
	assert.Contains(t, a.View(), "placed_on")

	press(t, a, "esc")
	assert.Equal(t, "/tables/main/orders", a.Path(), "nothing to go back to")
}

func TestUnknownRouteReportsError(t *testing.T) {
	a := newTestApp(t, nil, "/tables/other/orders")
	assert.Empty(t, a.Path())
	assert.Contains(t, a.View(), "error:")

	_, cmd := a.Update(navigateMsg{path: "/nowhere"})
	assert.Nil(t, cmd)
	assert.Contains(t, a.View(), "route not found")
}

func TestQuitUnlessCapturing(t *testing.T) {
	a := newTestApp(t, nil, "")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	press(t, a, "/")
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		assert.NotEqual(t, tea.QuitMsg{}, cmd())
	}
	f, _ := a.deps.Registry.Filter(TablesPage)
	assert.Equal(t, "q", f)
}

func TestUnknownTableIsNotRouted(t *testing.T) {
	a := newTestApp(t, nil, "/tables/main/nope")
	assert.Empty(t, a.Path())
	out := a.View()
	assert.Contains(t, out, "route not found")
	assert.Contains(t, out, "no such table")
	assert.NotContains(t, a.deps.Registry.Pages(), TablePage("main", "nope"))

	drain(t, a, navigate("/tables"))
	drain(t, a, navigate("/tables/main/nope"))
	assert.Equal(t, "/tables", a.Path())
	assert.NotContains(t, a.deps.Registry.Pages(), TablePage("main", "nope"))
}

func TestRowFilterNarrowsRows(t *testing.T) {
	a := newTestApp(t, nil, "/tables/main/audit_log")
	reg := a.deps.Registry
	page := TablePage("main", "audit_log")

	press(t, a, "/")
	active, _ := reg.ActiveTab(page)
	assert.Equal(t, "rows", active.Name, "filtering switches to the rows tab")

	typeText(t, a, "id<=3")
	f, _ := reg.Filter(page)
	assert.Empty(t, f, "the filter applies on enter")

	press(t, a, "enter")
	f, _ = reg.Filter(page)
	assert.Equal(t, "id<=3", f)
	st, err := reg.Page(page, "")
	require.NoError(t, err)
	tab, ok := st.Tab("rows")
	require.True(t, ok)
	assert.Equal(t, 3, tab.PageInfo["total"])
	assert.Equal(t, 1, tab.PageInfo["pages"])
	assert.Contains(t, a.View(), "where id<=3")

	press(t, a, "/")
	typeText(t, a, "xx")
	press(t, a, "esc")
	f, _ = reg.Filter(page)
	assert.Equal(t, "id<=3", f, "esc discards the edit")
	assert.Equal(t, "/tables/main/audit_log", a.Path(), "esc inside the filter does not go back")
}

func TestBadRowFilterReportsError(t *testing.T) {
	a := newTestApp(t, nil, "/tables/main/audit_log")
	press(t, a, "/")
	typeText(t, a, "nosuchcol=1")
	press(t, a, "enter")
	assert.Contains(t, a.View(), "error:")
}

func TestLoadClampsRestoredPage(t *testing.T) {
	reg := viewstate.New()
	_, _ = reg.SetCurrentPage(TablesPage, "tables", 9)

	a := newTestApp(t, reg, "")
	n, _ := reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 3, n)

	_, _ = reg.SetCurrentPage(TablesPage, "tables", 7)
	assert.Contains(t, a.View(), "page 3/3")
	n, _ = reg.CurrentPage(TablesPage, "tables")
	assert.Equal(t, 7, n, "rendering leaves the registry alone")
}

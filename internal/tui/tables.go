package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tablebrowser/internal/catalog"
	"github.com/jask/tablebrowser/internal/routes"
	"github.com/jask/tablebrowser/internal/viewstate"
)

// TablesPage is the registry page of the table list.
const TablesPage = "tables"

var tablesTabs = []tabLabel{{name: "tables", title: "Tables"}, {name: "views", title: "Views"}}

var tabKinds = map[string]catalog.Kind{"tables": catalog.KindTable, "views": catalog.KindView}

// tablesView lists the tables of the open database, one tab per kind.
type tablesView struct {
	ctx    context.Context
	deps   Deps
	keys   keyMap
	pg     pager
	filter textinput.Model
	all    []catalog.Table
	loaded bool
	cursor int
}

func newTablesView(ctx context.Context, deps Deps, keys keyMap) *tablesView {
	names := make([]string, len(tablesTabs))
	for i, t := range tablesTabs {
		names[i] = t.name
	}
	pg := newPager(deps.Registry, TablesPage, names, deps.RowsPerPageOptions)
	if s, _ := deps.Registry.Sort(TablesPage); s == "" {
		_, _ = deps.Registry.SetSort(TablesPage, catalog.SortKeys[0])
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter tables"
	ti.CharLimit = 64
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	f, _ := deps.Registry.Filter(TablesPage)
	ti.SetValue(f)

	return &tablesView{ctx: ctx, deps: deps, keys: keys, pg: pg, filter: ti}
}

func (v *tablesView) Init() tea.Cmd {
	return func() tea.Msg {
		tables, err := v.deps.Catalog.List(v.ctx)
		if err != nil {
			return errMsg{err}
		}
		return tablesMsg(tables)
	}
}

func (v *tablesView) Capturing() bool { return v.filter.Focused() }

// matching returns the filtered, sorted tables of tab.
func (v *tablesView) matching(tab string) []catalog.Table {
	q, _ := v.deps.Registry.Filter(TablesPage)
	order, _ := v.deps.Registry.Sort(TablesPage)
	var rows []catalog.Table
	for _, t := range catalog.Filter(v.all, q) {
		if t.Kind == tabKinds[tab] {
			rows = append(rows, t)
		}
	}
	return catalog.SortTables(rows, order)
}

// visible returns the tables of the active tab and the window of them on the
// current page.
func (v *tablesView) visible() ([]catalog.Table, catalog.Window) {
	tab := v.pg.activeTab()
	if !v.loaded {
		return nil, v.pg.peek(tab)
	}
	rows := v.matching(tab)
	return rows, v.pg.window(tab, len(rows))
}

// clampPages keeps every tab's stored page within its result set.
func (v *tablesView) clampPages() {
	for _, t := range tablesTabs {
		v.pg.clamp(t.name, len(v.matching(t.name)))
	}
}

func (v *tablesView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tablesMsg:
		v.all = m
		v.loaded = true
		v.clampPages()
		v.clampCursor()
		v.deps.Log.Debug().Int("tables", len(m)).Msg("catalog loaded")
		return nil
	case tea.KeyMsg:
		if v.filter.Focused() {
			return v.updateFilter(m)
		}
		return v.handleKey(m)
	}
	return nil
}

func (v *tablesView) updateFilter(m tea.KeyMsg) tea.Cmd {
	switch m.Type {
	case tea.KeyEnter, tea.KeyEsc:
		v.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(m)
	if prev, _ := v.deps.Registry.Filter(TablesPage); prev != v.filter.Value() {
		_, _ = v.deps.Registry.SetFilter(TablesPage, v.filter.Value())
		for _, t := range tablesTabs {
			_, _ = v.deps.Registry.SetCurrentPage(TablesPage, t.name, 1)
		}
		v.cursor = 0
	}
	return cmd
}

func (v *tablesView) handleKey(m tea.KeyMsg) tea.Cmd {
	reg := v.deps.Registry
	rows, w := v.visible()
	switch {
	case key.Matches(m, v.keys.Filter):
		return v.filter.Focus()
	case key.Matches(m, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(m, v.keys.Down):
		v.cursor = min(v.cursor+1, max(w.End-w.Start-1, 0))
	case key.Matches(m, v.keys.PrevPage):
		if v.pg.turn(v.pg.activeTab(), -1, w.Pages) {
			v.cursor = 0
		}
	case key.Matches(m, v.keys.NextPage):
		if v.pg.turn(v.pg.activeTab(), 1, w.Pages) {
			v.cursor = 0
		}
	case key.Matches(m, v.keys.NextTab):
		v.pg.nextTab()
		v.cursor = 0
	case key.Matches(m, v.keys.Sort):
		order, _ := reg.Sort(TablesPage)
		desc := strings.HasPrefix(order, "-")
		i := slices.Index(catalog.SortKeys, strings.TrimPrefix(order, "-"))
		next := catalog.SortKeys[(i+1)%len(catalog.SortKeys)]
		if desc {
			next = "-" + next
		}
		_, _ = reg.SetSort(TablesPage, next)
	case key.Matches(m, v.keys.SortDir):
		order, _ := reg.Sort(TablesPage)
		if desc, _ := reg.IsSortDescending(TablesPage); desc {
			order = strings.TrimPrefix(order, "-")
		} else {
			order = "-" + order
		}
		_, _ = reg.SetSort(TablesPage, order)
	case key.Matches(m, v.keys.ToggleView):
		v.pg.toggleView()
	case key.Matches(m, v.keys.MoreRows):
		v.pg.cycleRows(1)
		v.cursor = 0
	case key.Matches(m, v.keys.FewerRows):
		v.pg.cycleRows(-1)
		v.cursor = 0
	case key.Matches(m, v.keys.Open):
		i := w.Start + v.cursor
		if i >= w.End {
			return nil
		}
		t := rows[i]
		path, err := routes.Default().Href(routes.Table.Name, routes.Params{"schema": t.Schema, "tableName": t.Name})
		if err != nil {
			return func() tea.Msg { return errMsg{err} }
		}
		return navigate(path)
	}
	v.clampCursor()
	return nil
}

func (v *tablesView) clampCursor() {
	_, w := v.visible()
	v.cursor = min(max(v.cursor, 0), max(w.End-w.Start-1, 0))
}

func (v *tablesView) View(width, height int) string {
	tab := v.pg.activeTab()
	rows, w := v.visible()

	var b strings.Builder
	b.WriteString(renderTabs(tablesTabs, tab))
	b.WriteString("\n")
	b.WriteString(v.filter.View())
	order, _ := v.deps.Registry.Sort(TablesPage)
	b.WriteString(dimStyle.Render("   sort: " + order))
	b.WriteString("\n\n")

	switch {
	case !v.loaded:
		b.WriteString(dimStyle.Render("Loading…"))
	case len(rows) == 0:
		b.WriteString(dimStyle.Render("No " + tab + " match the filter."))
	case v.pg.viewType() == viewstate.ViewTable:
		grid := make([][]string, 0, w.End-w.Start)
		for _, t := range rows[w.Start:w.End] {
			grid = append(grid, []string{t.Name, t.Schema, string(t.Kind), columnCount(t)})
		}
		b.WriteString(renderGrid([]string{"NAME", "SCHEMA", "KIND", "COLUMNS"}, grid, v.cursor, width-2))
	default:
		for i, t := range rows[w.Start:w.End] {
			line := fmt.Sprintf("%s %s", tableLabel(t), dimStyle.Render(fmt.Sprintf("(%s · %s columns)", t.Kind, columnCount(t))))
			if i == v.cursor {
				b.WriteString(selectedStyle.Render("▸ ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(v.pg.footer(tab, w, len(rows))))
	return b.String()
}

// tableLabel qualifies names outside the main schema.
func tableLabel(t catalog.Table) string {
	if t.Schema == "" || t.Schema == "main" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

func columnCount(t catalog.Table) string {
	if t.Columns < 0 {
		return "?"
	}
	return strconv.Itoa(t.Columns)
}

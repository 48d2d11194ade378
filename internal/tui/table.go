package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tablebrowser/internal/catalog"
	"github.com/jask/tablebrowser/internal/viewstate"
)

var tableTabs = []tabLabel{{name: "columns", title: "Columns"}, {name: "rows", title: "Rows"}}

// TablePage returns the registry page holding a table's detail view.
func TablePage(schema, name string) string {
	return "table/" + schema + "/" + name
}

// tableView shows the columns and rows of one table. The rows tab can be
// narrowed by an SQL filter kept as the page's registry filter.
type tableView struct {
	ctx    context.Context
	deps   Deps
	keys   keyMap
	pg     pager
	schema string
	table  string
	filter textinput.Model
	cols   []catalog.Column
	loaded bool

	total   int
	headers []string
	rows    [][]string
	cursor  int
}

func newTableView(ctx context.Context, deps Deps, keys keyMap, schema, name string) *tableView {
	names := make([]string, len(tableTabs))
	for i, t := range tableTabs {
		names[i] = t.name
	}
	page := TablePage(schema, name)
	pg := newPager(deps.Registry, page, names, deps.RowsPerPageOptions)

	ti := textinput.New()
	ti.Prompt = "where "
	ti.Placeholder = "SQL filter, enter to apply"
	ti.CharLimit = 256
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	f, _ := deps.Registry.Filter(page)
	ti.SetValue(f)

	return &tableView{ctx: ctx, deps: deps, keys: keys, pg: pg, schema: schema, table: name, filter: ti}
}

func (v *tableView) Init() tea.Cmd {
	load := func() tea.Msg {
		cols, err := v.deps.Catalog.Columns(v.ctx, v.schema, v.table)
		if err != nil {
			return errMsg{err}
		}
		return columnsMsg{table: v.table, cols: cols}
	}
	cur, _ := v.deps.Registry.CurrentPage(v.pg.page, "rows")
	return tea.Batch(load, v.fetchRows(cur, v.pg.rowsPerPage()))
}

func (v *tableView) Capturing() bool { return v.filter.Focused() }

func (v *tableView) where() string {
	f, _ := v.deps.Registry.Filter(v.pg.page)
	return f
}

// fetchRows counts the matching rows and loads one page of them. The page is
// clamped against the fresh count so a shrunken table still shows its last
// page.
func (v *tableView) fetchRows(page, per int) tea.Cmd {
	where := v.where()
	return func() tea.Msg {
		total, err := v.deps.Catalog.Count(v.ctx, v.schema, v.table, where)
		if err != nil {
			return errMsg{err}
		}
		w := catalog.Paginate(total, per, page)
		headers, rows, err := v.deps.Catalog.Browse(v.ctx, v.schema, v.table, catalog.Query{Where: where, Limit: per, Offset: w.Start})
		if err != nil {
			return errMsg{err}
		}
		return previewMsg{table: v.table, where: where, page: w.Page, per: per, total: total, headers: headers, rows: rows}
	}
}

func (v *tableView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case columnsMsg:
		if m.table != v.table {
			return nil
		}
		v.cols = m.cols
		v.loaded = true
		v.pg.clamp("columns", len(v.cols))
		v.clampCursor()
	case previewMsg:
		if m.table != v.table || m.per != v.pg.rowsPerPage() || m.where != v.where() {
			return nil
		}
		v.total, v.headers, v.rows = m.total, m.headers, m.rows
		_, _ = v.deps.Registry.SetCurrentPage(v.pg.page, "rows", m.page)
		_ = v.deps.Registry.SetPageInfo(v.pg.page, "rows", map[string]any{
			"total":   m.total,
			"page":    m.page,
			"pages":   catalog.Paginate(m.total, m.per, m.page).Pages,
			"columns": len(m.headers),
		})
		v.clampCursor()
	case tea.KeyMsg:
		if v.filter.Focused() {
			return v.updateFilter(m)
		}
		return v.handleKey(m)
	}
	return nil
}

// updateFilter edits the row filter. It only takes effect on enter, since a
// half-typed expression is rarely valid SQL.
func (v *tableView) updateFilter(m tea.KeyMsg) tea.Cmd {
	switch m.Type {
	case tea.KeyEsc:
		v.filter.SetValue(v.where())
		v.filter.Blur()
		return nil
	case tea.KeyEnter:
		v.filter.Blur()
		next := strings.TrimSpace(v.filter.Value())
		if next == v.where() {
			return nil
		}
		_, _ = v.deps.Registry.SetFilter(v.pg.page, next)
		_, _ = v.deps.Registry.SetCurrentPage(v.pg.page, "rows", 1)
		v.cursor = 0
		return v.fetchRows(1, v.pg.rowsPerPage())
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(m)
	return cmd
}

func (v *tableView) handleKey(m tea.KeyMsg) tea.Cmd {
	tab := v.pg.activeTab()
	w := v.windowFor(tab)
	switch {
	case key.Matches(m, v.keys.Filter):
		if tab != "rows" {
			_ = v.deps.Registry.ActivateTab(v.pg.page, "rows")
			v.cursor = 0
		}
		return v.filter.Focus()
	case key.Matches(m, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(m, v.keys.Down):
		v.cursor++
	case key.Matches(m, v.keys.PrevPage):
		if v.pg.turn(tab, -1, w.Pages) {
			v.cursor = 0
			return v.refresh(tab)
		}
	case key.Matches(m, v.keys.NextPage):
		if v.pg.turn(tab, 1, w.Pages) {
			v.cursor = 0
			return v.refresh(tab)
		}
	case key.Matches(m, v.keys.NextTab):
		v.pg.nextTab()
		v.cursor = 0
	case key.Matches(m, v.keys.ToggleView):
		v.pg.toggleView()
	case key.Matches(m, v.keys.MoreRows):
		v.pg.cycleRows(1)
		v.cursor = 0
		return v.fetchRows(1, v.pg.rowsPerPage())
	case key.Matches(m, v.keys.FewerRows):
		v.pg.cycleRows(-1)
		v.cursor = 0
		return v.fetchRows(1, v.pg.rowsPerPage())
	}
	v.clampCursor()
	return nil
}

func (v *tableView) refresh(tab string) tea.Cmd {
	if tab != "rows" {
		return nil
	}
	cur, _ := v.deps.Registry.CurrentPage(v.pg.page, tab)
	return v.fetchRows(cur, v.pg.rowsPerPage())
}

// windowFor returns the current window of tab. Rows are paged by the
// database, so their page number is only written back once a fetch lands.
func (v *tableView) windowFor(tab string) catalog.Window {
	if tab == "rows" {
		cur, _ := v.deps.Registry.CurrentPage(v.pg.page, tab)
		return catalog.Paginate(v.total, v.pg.rowsPerPage(), cur)
	}
	if !v.loaded {
		return v.pg.peek(tab)
	}
	return v.pg.window(tab, len(v.cols))
}

// count is the size of the result set behind tab.
func (v *tableView) count(tab string) int {
	if tab == "rows" {
		return v.total
	}
	return len(v.cols)
}

// shown is how many lines the active tab displays on its current page.
func (v *tableView) shown() int {
	tab := v.pg.activeTab()
	if tab == "rows" {
		return len(v.rows)
	}
	w := v.windowFor(tab)
	return w.End - w.Start
}

func (v *tableView) clampCursor() {
	v.cursor = min(max(v.cursor, 0), max(v.shown()-1, 0))
}

func (v *tableView) View(width, height int) string {
	tab := v.pg.activeTab()
	var b strings.Builder
	b.WriteString(titleStyle.Render(tableLabel(catalog.Table{Schema: v.schema, Name: v.table})))
	b.WriteString("\n")
	b.WriteString(renderTabs(tableTabs, tab))
	b.WriteString("\n\n")

	w := v.windowFor(tab)
	if tab == "rows" {
		if v.filter.Focused() || v.filter.Value() != "" {
			b.WriteString(v.filter.View())
			b.WriteString("\n\n")
		}
		b.WriteString(v.renderRows(width))
	} else {
		b.WriteString(v.renderColumns(w, width))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(v.pg.footer(tab, w, v.count(tab))))
	return b.String()
}

func (v *tableView) renderColumns(w catalog.Window, width int) string {
	if !v.loaded {
		return dimStyle.Render("Loading…")
	}
	if len(v.cols) == 0 {
		return dimStyle.Render("No columns.")
	}
	cols := v.cols[w.Start:w.End]
	if v.pg.viewType() != viewstate.ViewTable {
		lines := make([]string, 0, len(cols))
		for i, c := range cols {
			line := c.Name + " " + dimStyle.Render(columnType(c))
			if i == v.cursor {
				lines = append(lines, selectedStyle.Render("▸ ")+line)
			} else {
				lines = append(lines, "  "+line)
			}
		}
		return strings.Join(lines, "\n")
	}
	grid := make([][]string, 0, len(cols))
	for _, c := range cols {
		pk := ""
		if c.PK > 0 {
			pk = strconv.Itoa(c.PK)
		}
		grid = append(grid, []string{strconv.Itoa(c.Position), c.Name, c.Type, yesNo(c.NotNull), c.Default, pk})
	}
	return renderGrid([]string{"#", "NAME", "TYPE", "NOT NULL", "DEFAULT", "PK"}, grid, v.cursor, width-2)
}

func (v *tableView) renderRows(width int) string {
	if v.headers == nil {
		return dimStyle.Render("Loading…")
	}
	if len(v.rows) == 0 {
		if v.where() != "" {
			return dimStyle.Render("No rows match the filter.")
		}
		return dimStyle.Render("Table is empty.")
	}
	if v.pg.viewType() != viewstate.ViewTable {
		var b strings.Builder
		for i, r := range v.rows {
			marker := "  "
			if i == v.cursor {
				marker = selectedStyle.Render("▸ ")
			}
			pairs := make([]string, 0, len(r))
			for j, cell := range r {
				pairs = append(pairs, v.headers[j]+"="+cell)
			}
			b.WriteString(marker + truncate(strings.Join(pairs, " "), width-2))
			if i < len(v.rows)-1 {
				b.WriteString("\n")
			}
		}
		return b.String()
	}
	return renderGrid(v.headers, v.rows, v.cursor, width-2)
}

func columnType(c catalog.Column) string {
	var parts []string
	if c.Type != "" {
		parts = append(parts, c.Type)
	}
	if c.PK > 0 {
		parts = append(parts, "primary key")
	}
	if c.NotNull {
		parts = append(parts, "not null")
	}
	if c.Default != "" {
		parts = append(parts, "default "+c.Default)
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

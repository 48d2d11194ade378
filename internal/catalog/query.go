package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyMinLen is the shortest query that also matches by edit distance.
const fuzzyMinLen = 4

// Filter keeps tables whose name contains query, ignoring case. Queries of
// fuzzyMinLen or more characters also match names within two edits, so
// "custmers" still finds customers.
func Filter(tables []Table, query string) []Table {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(tables)
	}
	out := make([]Table, 0, len(tables))
	for _, t := range tables {
		name := strings.ToLower(t.Name)
		if strings.Contains(name, q) {
			out = append(out, t)
			continue
		}
		if len(q) >= fuzzyMinLen && levenshtein.ComputeDistance(name, q) <= 2 {
			out = append(out, t)
		}
	}
	return out
}

// SortKeys lists the keys SortTables understands, in cycling order.
var SortKeys = []string{"name", "kind", "columns"}

// SortTables returns a sorted copy of tables. order is a key from SortKeys, optionally
// prefixed with "-" for descending. Unknown keys sort by name. Ties break on
// name then schema, ascending.
func SortTables(tables []Table, order string) []Table {
	out := slices.Clone(tables)
	desc := strings.HasPrefix(order, "-")
	key := strings.TrimPrefix(order, "-")
	slices.SortStableFunc(out, func(a, b Table) int {
		var c int
		switch key {
		case "kind":
			c = cmp.Compare(a.Kind, b.Kind)
		case "columns":
			c = cmp.Compare(a.Columns, b.Columns)
		default:
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.Name, b.Name)
		}
		if c == 0 {
			c = cmp.Compare(a.Schema, b.Schema)
		}
		return c
	})
	return out
}

// Window is the slice of a result set shown on one page.
type Window struct {
	Start, End  int
	Page, Pages int
}

// Paginate computes the window for n items. Pages are 1-based and page is
// clamped into range; a non-positive rowsPerPage shows everything.
func Paginate(n, rowsPerPage, page int) Window {
	if rowsPerPage <= 0 {
		rowsPerPage = max(n, 1)
	}
	pages := max((n+rowsPerPage-1)/rowsPerPage, 1)
	page = min(max(page, 1), pages)
	start := min((page-1)*rowsPerPage, n)
	return Window{Start: start, End: min(start+rowsPerPage, n), Page: page, Pages: pages}
}

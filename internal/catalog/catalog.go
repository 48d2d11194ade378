// Package catalog reads the tables and views of a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned for a schema or table the database does not have.
var ErrNotFound = errors.New("no such table")

// Kind distinguishes tables from views.
type Kind string

const (
	KindTable Kind = "table"
	KindView  Kind = "view"
)

// Table is one entry of a schema. Columns is -1 when the entry cannot be
// inspected, for example a view over a dropped table.
type Table struct {
	Schema  string
	Name    string
	Kind    Kind
	Columns int
	SQL     string
}

// Column describes a column as reported by PRAGMA table_info.
type Column struct {
	Position int
	Name     string
	Type     string
	NotNull  bool
	Default  string
	PK       int
}

// Query selects rows for Browse. Where is an SQL expression applied as is,
// with or without a leading WHERE.
type Query struct {
	Where  string
	Limit  int
	Offset int
}

// Catalog reads schema information from db.
type Catalog struct {
	db  *sql.DB
	log zerolog.Logger
}

type Option func(*Catalog)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

func New(db *sql.DB, opts ...Option) *Catalog {
	c := &Catalog{db: db, log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Attach makes the database file at path readable as schema name. db must
// hold a single connection for the attachment to stick.
func (c *Catalog) Attach(ctx context.Context, name, path string) error {
	if _, err := c.db.ExecContext(ctx, `ATTACH DATABASE ? AS `+quoteIdent(name), path); err != nil {
		return fmt.Errorf("attach %s: %w", name, err)
	}
	return nil
}

// Schemas lists main, temp and attached databases in PRAGMA database_list
// order.
func (c *Catalog) Schemas(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM pragma_database_list ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// List returns the tables and views of every schema.
func (c *Catalog) List(ctx context.Context) ([]Table, error) {
	schemas, err := c.Schemas(ctx)
	if err != nil {
		return nil, err
	}
	var out []Table
	for _, s := range schemas {
		tables, err := c.Tables(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, tables...)
	}
	return out, nil
}

// Tables returns user tables and views of schema ordered by name.
func (c *Catalog) Tables(ctx context.Context, schema string) ([]Table, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT name, type, COALESCE(sql, '')
	FROM `+quoteIdent(schema)+`.sqlite_master
	WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
	ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables of %s: %w", schema, err)
	}
	var out []Table
	for rows.Next() {
		t := Table{Schema: schema}
		var kind string
		if err := rows.Scan(&t.Name, &kind, &t.SQL); err != nil {
			rows.Close()
			return nil, err
		}
		t.Kind = Kind(kind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		t := &out[i]
		err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info(?, ?)`, t.Name, schema).Scan(&t.Columns)
		if err != nil {
			c.log.Warn().Err(err).Str("schema", schema).Str("table", t.Name).Msg("cannot read columns")
			t.Columns = -1
		}
	}
	return out, nil
}

// Lookup returns one table or view, or ErrNotFound.
func (c *Catalog) Lookup(ctx context.Context, schema, name string) (Table, error) {
	schemas, err := c.Schemas(ctx)
	if err != nil {
		return Table{}, err
	}
	if !slices.Contains(schemas, schema) {
		return Table{}, fmt.Errorf("%w: unknown schema %s", ErrNotFound, schema)
	}
	t := Table{Schema: schema, Name: name, Columns: -1}
	var kind string
	err = c.db.QueryRowContext(ctx, `
	SELECT type, COALESCE(sql, '')
	FROM `+quoteIdent(schema)+`.sqlite_master
	WHERE type IN ('table', 'view') AND name = ?`, name).Scan(&kind, &t.SQL)
	if errors.Is(err, sql.ErrNoRows) {
		return Table{}, fmt.Errorf("%w: %s.%s", ErrNotFound, schema, name)
	}
	if err != nil {
		return Table{}, fmt.Errorf("lookup %s.%s: %w", schema, name, err)
	}
	t.Kind = Kind(kind)
	return t, nil
}

// Columns returns the columns of a table in declaration order. A table
// without columns does not exist.
func (c *Catalog) Columns(ctx context.Context, schema, table string) ([]Column, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT cid, name, type, "notnull", COALESCE(dflt_value, ''), pk
	FROM pragma_table_info(?, ?)
	ORDER BY cid`, table, schema)
	if err != nil {
		return nil, fmt.Errorf("columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()
	var out []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Position, &col.Name, &col.Type, &col.NotNull, &col.Default, &col.PK); err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotFound, schema, table)
	}
	return out, nil
}

// Count returns the number of rows in a table matching where.
func (c *Catalog) Count(ctx context.Context, schema, table, where string) (int, error) {
	var n int
	q := `SELECT COUNT(*) FROM ` + qualified(schema, table) + whereClause(where)
	if err := c.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", schema, table, err)
	}
	return n, nil
}

// Browse returns the rows selected by q, rendered as strings.
func (c *Catalog) Browse(ctx context.Context, schema, table string, q Query) ([]string, [][]string, error) {
	stmt := `SELECT * FROM ` + qualified(schema, table) + whereClause(q.Where) + ` LIMIT ? OFFSET ?`
	rows, err := c.db.QueryContext(ctx, stmt, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, fmt.Errorf("browse %s.%s: %w", schema, table, err)
	}
	defer rows.Close()
	headers, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(headers))
		ptrs := make([]any, len(headers))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	return headers, out, rows.Err()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func whereClause(where string) string {
	w := strings.TrimSpace(where)
	if len(w) >= 6 && strings.EqualFold(w[:6], "where ") {
		w = strings.TrimSpace(w[6:])
	}
	if w == "" {
		return ""
	}
	return ` WHERE (` + w + `)`
}

func qualified(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/tablebrowser/internal/database"
	"github.com/jask/tablebrowser/internal/viewstate"
)

// ViewStateRepo stores registry snapshots. Only the latest session is kept.
type ViewStateRepo struct {
	db *sql.DB
}

func NewViewStateRepo(db *sql.DB) *ViewStateRepo {
	return &ViewStateRepo{db: db}
}

// Save replaces the stored session with s.
func (r *ViewStateRepo) Save(ctx context.Context, s viewstate.Snapshot) error {
	if s.Session == "" {
		s.Session = uuid.NewString()
	}
	savedAt := s.TakenAt
	if savedAt.IsZero() {
		savedAt = database.Now()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearTx(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO view_sessions(id, saved_at) VALUES (?, ?)`, s.Session, savedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for i, p := range s.Pages {
		opts, err := json.Marshal(p.RowsPerPageOptions)
		if err != nil {
			return fmt.Errorf("encode options for %s: %w", p.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO view_pages(session_id, name, position, rows_per_page, rows_per_page_options, filter, sort, view_type, active_tab)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.Session, p.Name, i, p.RowsPerPage, string(opts), p.Filter, p.Sort, string(p.ViewType), p.ActiveTab); err != nil {
			return fmt.Errorf("insert page %s: %w", p.Name, err)
		}
		for j, t := range p.Tabs {
			info, err := json.Marshal(t.PageInfo)
			if err != nil {
				return fmt.Errorf("encode page info for %s/%s: %w", p.Name, t.Name, err)
			}
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO view_tabs(session_id, page_name, name, position, current_page, active, page_info)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
				s.Session, p.Name, t.Name, j, max(t.CurrentPage, 1), t.Active, string(info)); err != nil {
				return fmt.Errorf("insert tab %s/%s: %w", p.Name, t.Name, err)
			}
		}
	}
	return tx.Commit()
}

// Latest loads the stored session. Page info numbers come back as float64.
func (r *ViewStateRepo) Latest(ctx context.Context) (viewstate.Snapshot, error) {
	var s viewstate.Snapshot
	err := r.db.QueryRowContext(ctx, `SELECT id, saved_at FROM view_sessions ORDER BY saved_at DESC LIMIT 1`).Scan(&s.Session, &s.TakenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return viewstate.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return viewstate.Snapshot{}, fmt.Errorf("load session: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT name, rows_per_page, rows_per_page_options, filter, sort, view_type, active_tab
	FROM view_pages WHERE session_id = ? ORDER BY position`, s.Session)
	if err != nil {
		return viewstate.Snapshot{}, fmt.Errorf("load pages: %w", err)
	}
	defer rows.Close()
	index := map[string]int{}
	for rows.Next() {
		var p viewstate.PageState
		var opts, viewType string
		if err := rows.Scan(&p.Name, &p.RowsPerPage, &opts, &p.Filter, &p.Sort, &viewType, &p.ActiveTab); err != nil {
			return viewstate.Snapshot{}, err
		}
		if opts != "" && opts != "null" {
			if err := json.Unmarshal([]byte(opts), &p.RowsPerPageOptions); err != nil {
				return viewstate.Snapshot{}, fmt.Errorf("decode options for %s: %w", p.Name, err)
			}
		}
		p.ViewType = viewstate.ViewType(viewType)
		p.SortDescending = len(p.Sort) > 0 && p.Sort[0] == '-'
		index[p.Name] = len(s.Pages)
		s.Pages = append(s.Pages, p)
	}
	if err := rows.Err(); err != nil {
		return viewstate.Snapshot{}, err
	}

	tabRows, err := r.db.QueryContext(ctx, `
	SELECT page_name, name, current_page, active, page_info
	FROM view_tabs WHERE session_id = ? ORDER BY page_name, position`, s.Session)
	if err != nil {
		return viewstate.Snapshot{}, fmt.Errorf("load tabs: %w", err)
	}
	defer tabRows.Close()
	for tabRows.Next() {
		var pageName, info string
		var t viewstate.TabState
		if err := tabRows.Scan(&pageName, &t.Name, &t.CurrentPage, &t.Active, &info); err != nil {
			return viewstate.Snapshot{}, err
		}
		if err := json.Unmarshal([]byte(info), &t.PageInfo); err != nil {
			return viewstate.Snapshot{}, fmt.Errorf("decode page info for %s/%s: %w", pageName, t.Name, err)
		}
		if t.PageInfo == nil {
			t.PageInfo = map[string]any{}
		}
		t.PaginationID = viewstate.PaginationID(pageName, t.Name)
		i, ok := index[pageName]
		if !ok {
			continue
		}
		s.Pages[i].Tabs = append(s.Pages[i].Tabs, t)
	}
	return s, tabRows.Err()
}

// Info summarises the stored session.
func (r *ViewStateRepo) Info(ctx context.Context) (Session, error) {
	var out Session
	err := r.db.QueryRowContext(ctx, `
	SELECT s.id, s.saved_at,
	 (SELECT COUNT(*) FROM view_pages p WHERE p.session_id = s.id),
	 (SELECT COUNT(*) FROM view_tabs t WHERE t.session_id = s.id)
	FROM view_sessions s ORDER BY s.saved_at DESC LIMIT 1`).Scan(&out.ID, &out.SavedAt, &out.Pages, &out.Tabs)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSnapshot
	}
	return out, err
}

// Clear removes all saved view state.
func (r *ViewStateRepo) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := clearTx(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearTx(ctx context.Context, tx *sql.Tx) error {
	for _, t := range []string{"view_tabs", "view_pages", "view_sessions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return nil
}

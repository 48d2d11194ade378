package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jask/tablebrowser/internal/catalog"
	"github.com/jask/tablebrowser/internal/routes"
	"github.com/jask/tablebrowser/internal/viewstate"
)

// Deps are the collaborators the browser needs.
type Deps struct {
	Registry           *viewstate.Registry
	Catalog            *catalog.Catalog
	Log                zerolog.Logger
	RowsPerPageOptions []int
	// StartPath is the first location shown. Defaults to the table list.
	StartPath string
}

// view is one routed screen. Views keep their own UI state in the registry
// so they can be rebuilt from it.
type view interface {
	Init() tea.Cmd
	Update(tea.Msg) tea.Cmd
	View(width, height int) string
	// Capturing reports whether the view is consuming raw key input.
	Capturing() bool
}

// App ties together views.
type App struct {
	ctx     context.Context
	deps    Deps
	keys    keyMap
	help    help.Model
	router  *routes.Router[view]
	current view
	built   view
	width   int
	height  int
	status  string
	failed  bool
}

func New(ctx context.Context, deps Deps) *App {
	if deps.Registry == nil {
		deps.Registry = viewstate.New(viewstate.WithLogger(deps.Log))
	}
	if deps.StartPath == "" {
		deps.StartPath = routes.Tables.URL
	}
	a := &App{
		ctx:    ctx,
		deps:   deps,
		keys:   newKeyMap(),
		help:   help.New(),
		router: routes.NewRouter[view](routes.Default()),
		width:  80,
		height: 24,
	}
	a.router.Register(routes.Tables.Name, func(routes.Route, routes.Params) (view, error) {
		v := newTablesView(a.ctx, a.deps, a.keys)
		a.built = v
		return v, nil
	})
	a.router.Register(routes.Table.Name, func(_ routes.Route, p routes.Params) (view, error) {
		// Checked before the view exists so no registry page is created.
		if _, err := a.deps.Catalog.Lookup(a.ctx, p["schema"], p["tableName"]); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", routes.ErrNotFound, err)
			}
			return nil, err
		}
		v := newTableView(a.ctx, a.deps, a.keys, p["schema"], p["tableName"])
		a.built = v
		return v, nil
	})
	return a
}

func (a *App) Init() tea.Cmd {
	return navigate(a.deps.StartPath)
}

// Path is the current location, empty before the first navigation.
func (a *App) Path() string {
	loc, _ := a.router.Current()
	return loc.Path
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		return a, nil
	case navigateMsg:
		return a, a.navigate(m.path)
	case errMsg:
		a.deps.Log.Error().Err(m.err).Str("path", a.Path()).Msg("view error")
		a.status, a.failed = m.Error(), true
		return a, nil
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.current == nil || !a.current.Capturing() {
			switch {
			case key.Matches(m, a.keys.Quit):
				return a, tea.Quit
			case key.Matches(m, a.keys.Back):
				if v, ok := a.router.Back(); ok {
					a.current = v
					a.status, a.failed = "", false
					a.deps.Log.Debug().Str("path", a.Path()).Msg("back")
				}
				return a, nil
			}
			a.status, a.failed = "", false
		}
	}
	if a.current == nil {
		return a, nil
	}
	return a, a.current.Update(msg)
}

func (a *App) navigate(path string) tea.Cmd {
	a.built = nil
	v, err := a.router.Navigate(path)
	if err != nil {
		a.deps.Log.Warn().Err(err).Str("path", path).Msg("navigate")
		a.status, a.failed = err.Error(), true
		return nil
	}
	a.current = v
	a.status, a.failed = "", false
	a.deps.Log.Debug().Str("path", a.Path()).Bool("built", a.built != nil).Msg("navigate")
	if a.built != nil {
		a.built = nil
		return v.Init()
	}
	return nil
}

func (a *App) View() string {
	header := a.renderCrumbs()
	footer := a.renderStatus() + "\n" + a.help.View(a.keys)
	if a.current == nil {
		return header + "\n\n" + dimStyle.Render("Loading…") + "\n\n" + footer
	}
	body := a.current.View(a.width, max(a.height-lipgloss.Height(header)-lipgloss.Height(footer)-2, 1))
	return header + "\n\n" + body + "\n\n" + footer
}

func (a *App) renderCrumbs() string {
	crumbs := a.router.Breadcrumbs()
	if len(crumbs) == 0 {
		return titleStyle.Render("Tables")
	}
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		parts[i] = c
		if i == len(crumbs)-1 {
			parts[i] = titleStyle.Render(c)
		}
	}
	return strings.Join(parts, crumbSepStyle.Render(" › "))
}

func (a *App) renderStatus() string {
	if a.status == "" {
		return statusStyle.Render(a.Path())
	}
	if a.failed {
		return errorStyle.Render("error: " + a.status)
	}
	return statusStyle.Render(a.status)
}

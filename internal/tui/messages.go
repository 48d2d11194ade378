package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tablebrowser/internal/catalog"
)

type navigateMsg struct{ path string }

type tablesMsg []catalog.Table

type columnsMsg struct {
	table string
	cols  []catalog.Column
}

type previewMsg struct {
	table   string
	where   string
	page    int
	per     int
	total   int
	headers []string
	rows    [][]string
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tabLabel struct {
	name  string
	title string
}

func renderTabs(tabs []tabLabel, active string) string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.name == active {
			parts = append(parts, activeTabStyle.Render(t.title))
		} else {
			parts = append(parts, tabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderGrid lays rows out in columns sized to their widest cell, truncating
// the last column to width. selected < 0 highlights nothing.
func renderGrid(headers []string, rows [][]string, selected, width int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(r[i]))
		}
	}
	line := func(cells []string) string {
		var b strings.Builder
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", w-lipgloss.Width(cell)))
			}
		}
		return truncate(b.String(), width)
	}

	lines := []string{"  " + headerStyle.Render(line(headers))}
	for i, r := range rows {
		l := line(r)
		if i == selected {
			lines = append(lines, selectedStyle.Render("▸ "+l))
		} else {
			lines = append(lines, "  "+l)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 1 || len(r) <= 1 {
		return "…"
	}
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

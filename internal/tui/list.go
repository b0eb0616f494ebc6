package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"agentview/internal/hub"
	"agentview/internal/session"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// renderList renders the left panel: session list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No sessions")
		return empty
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatResultLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats a single result as two lines:
//
//	line 1: [>] provider  date  title
//	line 2:    snippet (dimmed)
func formatResultLine(r hub.Result, width int, selected bool) []string {
	d := r.Descriptor
	prov := providerLabel(d.Provider)

	date := ""
	if d.LastUpdated > 0 {
		date = time.UnixMilli(d.LastUpdated).Format("01-02")
	}

	title := resultTitle(d)
	title = strings.ReplaceAll(title, "\n", " ")
	titleMax := width - 2 - 9 - 6 - 2 // cursor + provider + date + padding
	if titleMax < 0 {
		titleMax = 0
	}
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	var marks []string
	if d.IsActive {
		marks = append(marks, "*")
	}
	if d.IsSubagent {
		marks = append(marks, "sub")
	}
	if d.IsDeleted {
		marks = append(marks, "del")
	}
	mark := ""
	if len(marks) > 0 {
		mark = " " + lipgloss.NewStyle().Foreground(colorDim).Render("["+strings.Join(marks, ",")+"]")
	}

	line1 := fmt.Sprintf("%s %s %s%s", prov, date, title, mark)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	// Line 2: snippet or preview (dimmed, indented)
	snippet := r.Snippet
	if snippet == "" {
		snippet = d.Preview
	}
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

func resultTitle(d session.Descriptor) string {
	if d.Title != "" {
		return d.Title
	}
	if d.Preview != "" {
		return d.Preview
	}
	return d.SessionID
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}

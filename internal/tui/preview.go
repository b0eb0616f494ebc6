package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"agentview/internal/hub"
	"agentview/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	sessionID string
	content   string
	hitLine   int
	err       error
}

// loadPreviewCmd returns a tea.Cmd that fetches and renders one
// session's transcript async.
func loadPreviewCmd(h *hub.Hub, r hub.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		d := r.Descriptor
		msgs, err := h.Messages(d.Provider, d.SessionID)
		if err != nil {
			return previewRenderedMsg{sessionID: d.SessionID, err: err}
		}
		content, hitLine := render.Transcript(d, msgs, render.Options{
			Width: width,
			Query: query,
		})
		return previewRenderedMsg{
			sessionID: d.SessionID,
			content:   content,
			hitLine:   hitLine,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}

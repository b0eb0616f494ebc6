package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agentview/internal/jsonl"
	"agentview/internal/session"
)

// Claude scans Claude Code project transcripts. Layout:
//
//	<root>/<project>/<session-id>.jsonl
//	<root>/<project>/<parent-id>/subagents/<child-id>.jsonl
//
// Subagent transcripts link back to their parent; the parent's records
// carry the team context windows used to attribute each child to a team.
type Claude struct {
	root string
}

func NewClaude(root string) *Claude {
	return &Claude{root: root}
}

func (s *Claude) Provider() session.Provider {
	return session.ProviderClaude
}

type claudeRecord struct {
	Type        string          `json:"type"`
	IsMeta      bool            `json:"isMeta"`
	IsSidechain bool            `json:"isSidechain"`
	Timestamp   string          `json:"timestamp"`
	Cwd         string          `json:"cwd"`
	TeamName    string          `json:"teamName"`
	Message     json.RawMessage `json:"message"`
	Summary     string          `json:"summary"` // type="summary" records
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

func (s *Claude) Sessions() ([]session.Descriptor, error) {
	projects, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil // missing root means no sessions
	}

	var descs []session.Descriptor
	for _, proj := range projects {
		if !proj.IsDir() {
			continue
		}
		projDir := filepath.Join(s.root, proj.Name())
		entries, err := os.ReadDir(projDir)
		if err != nil {
			continue
		}

		parentIdx := make(map[string]int) // session id -> index in descs
		for _, e := range entries {
			if e.IsDir() || !isClaudeSession(e.Name()) {
				continue
			}
			path := filepath.Join(projDir, e.Name())
			desc, _ := s.describe(path, "")
			parentIdx[desc.SessionID] = len(descs)
			descs = append(descs, desc)
		}

		// Subagent transcripts live next to their parent's file, in
		// <parent-id>/subagents/.
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			subDir := filepath.Join(projDir, e.Name(), "subagents")
			children, err := os.ReadDir(subDir)
			if err != nil {
				continue
			}
			parentID := e.Name()
			var windows []TeamWindow
			if pi, ok := parentIdx[parentID]; ok {
				windows = s.teamWindowsFor(descs[pi].FilePath)
				if hasChild(children) {
					descs[pi].HasSubagents = true
				}
			}
			for _, c := range children {
				if c.IsDir() || !isClaudeSession(c.Name()) {
					continue
				}
				path := filepath.Join(subDir, c.Name())
				desc, startTS := s.describe(path, parentID)
				desc.TeamName = resolveTeam(windows, startTS.firstTS)
				descs = append(descs, desc)
			}
		}
	}
	return descs, nil
}

func hasChild(entries []os.DirEntry) bool {
	for _, e := range entries {
		if !e.IsDir() && isClaudeSession(e.Name()) {
			return true
		}
	}
	return false
}

func isClaudeSession(name string) bool {
	if filepath.Ext(name) != ".jsonl" || isArtifact(name) {
		return false
	}
	return !strings.Contains(name, "sessions-index")
}

type claudeScanState struct {
	firstTS time.Time
}

// describe builds the descriptor for one transcript without keeping its
// messages.
func (s *Claude) describe(path, parentID string) (session.Descriptor, claudeScanState) {
	desc := session.Descriptor{
		SessionID:       stem(filepath.Base(path)),
		Provider:        session.ProviderClaude,
		FilePath:        path,
		LastUpdated:     mtimeMillis(path),
		IsActive:        true,
		IsSubagent:      parentID != "",
		ParentSessionID: parentID,
	}
	desc.Key = desc.SessionID

	var state claudeScanState
	msgs := s.normalizeFile(path, func(rec *claudeRecord, msg *claudeMessage) {
		if rec.Cwd != "" && desc.Cwd == "" {
			desc.Cwd = rec.Cwd
		}
		if rec.Type == "summary" && rec.Summary != "" {
			desc.Title = rec.Summary
		}
		if rec.IsSidechain {
			desc.IsSidechain = true
		}
		if msg != nil && msg.Model != "" && desc.Model == "" {
			desc.Model = msg.Model
		}
	})

	for _, m := range msgs {
		if m.Message.Role == session.RoleUser || m.Message.Role == session.RoleAssistant {
			desc.MessageCount++
		}
		// The session starts at its first real message; meta records may
		// carry earlier timestamps.
		if state.firstTS.IsZero() && m.Timestamp != "" {
			state.firstTS = session.ParseTimestamp(m.Timestamp)
		}
	}
	desc.Preview = session.PreviewFromMessages(msgs)
	if !state.firstTS.IsZero() {
		desc.StartedAt = state.firstTS.UnixMilli()
	}
	return desc, state
}

// teamWindowsFor extracts the team context windows from a parent
// transcript's records, in file order.
func (s *Claude) teamWindowsFor(path string) []TeamWindow {
	var stamps []teamStamp
	for _, raw := range jsonl.ReadRecords(path) {
		var rec claudeRecord
		if !jsonl.Decode(raw, &rec) {
			continue
		}
		stamps = append(stamps, teamStamp{
			name: rec.TeamName,
			ts:   session.ParseTimestamp(rec.Timestamp),
		})
	}
	return buildTeamWindows(stamps)
}

func (s *Claude) Messages(sessionID string) ([]session.Message, error) {
	path, ok := s.locate(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: claude %s", ErrSessionNotFound, sessionID)
	}
	msgs := s.normalizeFile(path, nil)
	session.BackfillToolNames(msgs)
	session.SortMessages(msgs)
	return msgs, nil
}

// locate finds the transcript owning a session id by the same rule the
// scanner derives ids: the filename stem, at either nesting level.
func (s *Claude) locate(sessionID string) (string, bool) {
	want := sessionID + ".jsonl"
	var found string
	filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || found != "" {
			return nil
		}
		if filepath.Base(path) == want && isClaudeSession(info.Name()) {
			found = path
		}
		return nil
	})
	return found, found != ""
}

// normalizeFile reads a transcript and converts each record, invoking
// observe (when non-nil) on every decoded record for metadata capture.
func (s *Claude) normalizeFile(path string, observe func(*claudeRecord, *claudeMessage)) []session.Message {
	var msgs []session.Message
	for _, raw := range jsonl.ReadRecords(path) {
		var rec claudeRecord
		if !jsonl.Decode(raw, &rec) {
			continue
		}

		var msg *claudeMessage
		if len(rec.Message) > 0 {
			var m claudeMessage
			if jsonl.Decode(rec.Message, &m) {
				msg = &m
			}
		}
		if observe != nil {
			observe(&rec, msg)
		}

		msgs = append(msgs, normalizeClaudeRecord(&rec, msg)...)
	}
	return msgs
}

// normalizeClaudeRecord converts one raw record to zero or more
// canonical messages. A record bundling a textual reply with tool
// results expands into the textual message followed by one toolResult
// message per result block.
func normalizeClaudeRecord(rec *claudeRecord, msg *claudeMessage) []session.Message {
	if rec.IsMeta || msg == nil {
		return nil
	}
	if rec.Type != "user" && rec.Type != "assistant" {
		return nil
	}
	role := rec.Type

	// Plain string content is a complete turn on its own.
	var text string
	if jsonl.Decode(msg.Content, &text) {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []session.Message{{
			Type:      "message",
			Timestamp: rec.Timestamp,
			Message:   session.Body{Role: role, Content: session.TextContent(text)},
		}}
	}

	var blocks []claudeBlock
	if !jsonl.Decode(msg.Content, &blocks) {
		return nil
	}

	var turn []session.Block
	var results []session.Message
	for i := range blocks {
		b := &blocks[i]
		switch b.Type {
		case "text":
			turn = append(turn, session.Block{Type: session.BlockText, Text: b.Text})
		case "thinking":
			thought := b.Thinking
			if thought == "" {
				thought = b.Text
			}
			turn = append(turn, session.Block{Type: session.BlockThinking, Text: thought})
		case "tool_use":
			turn = append(turn, session.Block{
				Type:  session.BlockToolUse,
				ID:    b.ID,
				Name:  b.Name,
				Input: toolInput(b.Input),
			})
		case "tool_result":
			results = append(results, session.Message{
				Type:      "message",
				Timestamp: rec.Timestamp,
				Message: session.Body{
					Role:       session.RoleToolResult,
					ToolCallID: b.ToolUseID,
					IsError:    b.IsError,
					Content: session.BlocksContent(session.Block{
						Type:      session.BlockToolResult,
						ToolUseID: b.ToolUseID,
						Content:   session.ExtractText(b.Content),
						IsError:   b.IsError,
					}),
				},
			})
		default:
			// Unknown block shapes degrade to text so nothing silently
			// disappears from the transcript.
			if stringified := stringifyBlock(b); stringified != "" {
				turn = append(turn, session.Block{Type: session.BlockText, Text: stringified})
			}
		}
	}

	var out []session.Message
	if len(turn) > 0 {
		out = append(out, session.Message{
			Type:      "message",
			Timestamp: rec.Timestamp,
			Message:   session.Body{Role: role, Content: session.BlocksContent(turn...)},
		})
	}
	return append(out, results...)
}

// toolInput passes structured input through and wraps anything invalid
// as a raw JSON string instead of failing the record.
func toolInput(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return quoted
}

func stringifyBlock(b *claudeBlock) string {
	if b.Text != "" {
		return b.Text
	}
	data, err := json.Marshal(b)
	if err != nil {
		return ""
	}
	return string(data)
}

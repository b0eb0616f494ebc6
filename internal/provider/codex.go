package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"agentview/internal/jsonl"
	"agentview/internal/session"
)

// Codex scans Codex CLI rollout logs, which are sharded by date:
//
//	<root>/YYYY/MM/DD/rollout-<timestamp>-<uuid>.jsonl
//
// The session id is taken from the embedded session_meta record when
// present, else from the UUID in the filename.
type Codex struct {
	root string
}

func NewCodex(root string) *Codex {
	return &Codex{root: root}
}

func (s *Codex) Provider() session.Provider {
	return session.ProviderCodex
}

type codexRecord struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type codexSessionMeta struct {
	ID  string `json:"id"`
	Cwd string `json:"cwd"`
}

// event_msg payloads are flat.
type codexEventPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"` // user_message
	Text    string `json:"text"`    // agent_reasoning / agent_message
}

type codexResponsePayload struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	CallID    string `json:"call_id"`
	Arguments string `json:"arguments"`
	Output    string `json:"output"`
	Content   []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func (s *Codex) Sessions() ([]session.Descriptor, error) {
	var descs []session.Descriptor
	filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !isCodexSession(filepath.Base(path)) {
			return nil
		}
		descs = append(descs, s.describe(path))
		return nil
	})
	return descs, nil
}

func isCodexSession(name string) bool {
	return strings.HasPrefix(name, "rollout-") &&
		filepath.Ext(name) == ".jsonl" &&
		!isArtifact(name)
}

func (s *Codex) describe(path string) session.Descriptor {
	desc := session.Descriptor{
		SessionID:   codexFileID(path),
		Provider:    session.ProviderCodex,
		FilePath:    path,
		LastUpdated: mtimeMillis(path),
		IsActive:    true,
	}
	desc.Key = desc.SessionID

	msgs := s.normalizeFile(path, func(rec *codexRecord) {
		if rec.Type != "session_meta" {
			return
		}
		var meta codexSessionMeta
		if jsonl.Decode(rec.Payload, &meta) {
			if meta.ID != "" {
				desc.SessionID = meta.ID
				desc.Key = meta.ID
			}
			desc.Cwd = meta.Cwd
		}
	})

	for _, m := range msgs {
		switch m.Message.Role {
		case session.RoleUser, session.RoleAssistant:
			desc.MessageCount++
		}
		if desc.StartedAt == 0 && m.Timestamp != "" {
			if ts := session.ParseTimestamp(m.Timestamp); !ts.IsZero() {
				desc.StartedAt = ts.UnixMilli()
			}
		}
	}
	desc.Preview = session.PreviewFromMessages(msgs)
	return desc
}

// codexFileID extracts the UUID from a rollout filename, falling back to
// the whole stem.
func codexFileID(path string) string {
	name := stem(filepath.Base(path))
	if m := uuidRe.FindString(name); m != "" {
		return m
	}
	return name
}

func (s *Codex) Messages(sessionID string) ([]session.Message, error) {
	path, ok := s.locate(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: codex %s", ErrSessionNotFound, sessionID)
	}
	msgs := s.normalizeFile(path, nil)
	session.BackfillToolNames(msgs)
	session.SortMessages(msgs)
	return msgs, nil
}

func (s *Codex) locate(sessionID string) (string, bool) {
	var found string
	filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || found != "" {
			return nil
		}
		name := filepath.Base(path)
		if !isCodexSession(name) {
			return nil
		}
		if codexFileID(path) == sessionID || stem(name) == sessionID {
			found = path
			return nil
		}
		// The embedded meta id wins over the filename when they differ.
		recs := jsonl.ReadRecords(path)
		if len(recs) > 3 {
			recs = recs[:3]
		}
		for _, raw := range recs {
			var rec codexRecord
			if !jsonl.Decode(raw, &rec) || rec.Type != "session_meta" {
				continue
			}
			var meta codexSessionMeta
			if jsonl.Decode(rec.Payload, &meta) && meta.ID == sessionID {
				found = path
			}
		}
		return nil
	})
	return found, found != ""
}

func (s *Codex) normalizeFile(path string, observe func(*codexRecord)) []session.Message {
	var msgs []session.Message
	for _, raw := range jsonl.ReadRecords(path) {
		var rec codexRecord
		if !jsonl.Decode(raw, &rec) {
			continue
		}
		if observe != nil {
			observe(&rec)
		}
		msgs = append(msgs, normalizeCodexRecord(&rec)...)
	}
	return msgs
}

func normalizeCodexRecord(rec *codexRecord) []session.Message {
	switch rec.Type {
	case "event_msg":
		var evt codexEventPayload
		if !jsonl.Decode(rec.Payload, &evt) {
			return nil
		}
		switch evt.Type {
		case "user_message":
			if strings.TrimSpace(evt.Message) == "" {
				return nil
			}
			return []session.Message{textMessage(session.RoleUser, rec.Timestamp, evt.Message)}
		case "agent_message":
			if strings.TrimSpace(evt.Text) == "" {
				return nil
			}
			return []session.Message{textMessage(session.RoleAssistant, rec.Timestamp, evt.Text)}
		case "agent_reasoning":
			if strings.TrimSpace(evt.Text) == "" {
				return nil
			}
			return []session.Message{{
				Type:      "message",
				Timestamp: rec.Timestamp,
				Message: session.Body{
					Role:    session.RoleAssistant,
					Content: session.BlocksContent(session.Block{Type: session.BlockThinking, Text: evt.Text}),
				},
			}}
		}
		return nil

	case "response_item":
		var item codexResponsePayload
		if !jsonl.Decode(rec.Payload, &item) {
			return nil
		}
		return normalizeCodexItem(rec.Timestamp, &item)
	}
	return nil
}

func normalizeCodexItem(ts string, item *codexResponsePayload) []session.Message {
	switch item.Type {
	case "message":
		role := item.Role
		switch role {
		case "user", "assistant":
		case "":
			role = "assistant"
		default:
			return nil // developer/system items are internal bookkeeping
		}
		var parts []string
		for _, c := range item.Content {
			if (c.Type == "input_text" || c.Type == "output_text" || c.Type == "text") && c.Text != "" {
				parts = append(parts, c.Text)
			}
		}
		text := strings.TrimSpace(strings.Join(parts, "\n"))
		if text == "" {
			return nil
		}
		return []session.Message{textMessage(role, ts, text)}

	case "function_call":
		return []session.Message{{
			Type:      "message",
			Timestamp: ts,
			Message: session.Body{
				Role: session.RoleAssistant,
				Content: session.BlocksContent(session.Block{
					Type:  session.BlockToolUse,
					ID:    item.CallID,
					Name:  item.Name,
					Input: toolInput(json.RawMessage(item.Arguments)),
				}),
			},
		}}

	case "function_call_output":
		return []session.Message{{
			Type:      "message",
			Timestamp: ts,
			Message: session.Body{
				Role:       session.RoleToolResult,
				ToolCallID: item.CallID,
				Content: session.BlocksContent(session.Block{
					Type:      session.BlockToolResult,
					ToolUseID: item.CallID,
					Content:   item.Output,
				}),
			},
		}}
	}
	return nil
}

func textMessage(role, ts, text string) session.Message {
	return session.Message{
		Type:      "message",
		Timestamp: ts,
		Message:   session.Body{Role: role, Content: session.TextContent(text)},
	}
}

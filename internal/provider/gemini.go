package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"agentview/internal/session"
)

// Gemini scans Gemini CLI chat files:
//
//	<root>/<project-hash>/chats/*.json
//
// Each file is a single JSON document: a bare message array, or an
// object wrapping the array under "messages" or "history". A file whose
// JSON does not parse is skipped entirely and the scan continues.
type Gemini struct {
	root string
}

func NewGemini(root string) *Gemini {
	return &Gemini{root: root}
}

func (s *Gemini) Provider() session.Provider {
	return session.ProviderGemini
}

type geminiFile struct {
	SessionID   string          `json:"sessionId"`
	StartTime   string          `json:"startTime"`
	LastUpdated string          `json:"lastUpdated"`
	Messages    []geminiMessage `json:"messages"`
	History     []geminiMessage `json:"history"`
}

type geminiMessage struct {
	Role      string          `json:"role"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
	Parts     []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

func (s *Gemini) Sessions() ([]session.Descriptor, error) {
	var descs []session.Descriptor
	filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !isGeminiChat(path) {
			return nil
		}
		doc, ok := readGeminiFile(path)
		if !ok {
			return nil
		}
		descs = append(descs, s.describe(path, doc))
		return nil
	})
	return descs, nil
}

func isGeminiChat(path string) bool {
	name := filepath.Base(path)
	return filepath.Ext(name) == ".json" &&
		!isArtifact(name) &&
		filepath.Base(filepath.Dir(path)) == "chats"
}

// readGeminiFile decodes one chat document, accepting the bare-array and
// wrapped-object shapes.
func readGeminiFile(path string) (*geminiFile, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var arr []geminiMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		return &geminiFile{Messages: arr}, true
	}

	var doc geminiFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	if doc.Messages == nil {
		doc.Messages = doc.History
	}
	return &doc, true
}

func (s *Gemini) describe(path string, doc *geminiFile) session.Descriptor {
	desc := session.Descriptor{
		SessionID:   doc.SessionID,
		Provider:    session.ProviderGemini,
		FilePath:    path,
		LastUpdated: mtimeMillis(path),
		IsActive:    true,
	}
	if desc.SessionID == "" {
		desc.SessionID = stem(filepath.Base(path))
	}
	desc.Key = desc.SessionID

	if ts := session.ParseTimestamp(doc.LastUpdated); !ts.IsZero() {
		desc.LastUpdated = ts.UnixMilli()
	}
	if ts := session.ParseTimestamp(doc.StartTime); !ts.IsZero() {
		desc.StartedAt = ts.UnixMilli()
	}

	msgs := normalizeGeminiMessages(doc.Messages)
	desc.MessageCount = len(msgs)
	desc.Preview = session.PreviewFromMessages(msgs)
	return desc
}

func (s *Gemini) Messages(sessionID string) ([]session.Message, error) {
	var msgs []session.Message
	found := false
	filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || found {
			return nil
		}
		if !isGeminiChat(path) {
			return nil
		}
		doc, ok := readGeminiFile(path)
		if !ok {
			return nil
		}
		id := doc.SessionID
		if id == "" {
			id = stem(filepath.Base(path))
		}
		if id != sessionID {
			return nil
		}
		found = true
		msgs = normalizeGeminiMessages(doc.Messages)
		return nil
	})
	if !found {
		return nil, fmt.Errorf("%w: gemini %s", ErrSessionNotFound, sessionID)
	}
	session.SortMessages(msgs)
	return msgs, nil
}

func normalizeGeminiMessages(raw []geminiMessage) []session.Message {
	var msgs []session.Message
	for i := range raw {
		if m := normalizeGeminiMessage(&raw[i]); m != nil {
			msgs = append(msgs, *m)
		}
	}
	return msgs
}

// normalizeGeminiMessage maps the role vocabulary ("model" and "gemini"
// both mean assistant) and unwraps content from either the content field
// or a parts array.
func normalizeGeminiMessage(m *geminiMessage) *session.Message {
	role := m.Role
	if role == "" {
		role = m.Type
	}
	switch role {
	case "user":
		role = session.RoleUser
	case "assistant", "model", "gemini":
		role = session.RoleAssistant
	default:
		return nil
	}

	text := session.ExtractText(m.Content)
	if text == "" {
		var parts []string
		for _, p := range m.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		if len(parts) > 0 {
			text = parts[0]
			for _, p := range parts[1:] {
				text += "\n" + p
			}
		}
	}
	if text == "" {
		return nil
	}

	msg := textMessage(role, m.Timestamp, text)
	return &msg
}

package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"agentview/internal/jsonl"
	"agentview/internal/session"
)

// OpenClaw scans OpenClaw agent session stores:
//
//	<root>/<agent-id>/sessions/<session-id>.jsonl
//	<root>/<agent-id>/sessions/<session-id>.deleted.jsonl
//	<root>/<agent-id>/sessions/<session-id>.reset.jsonl
//	<root>/<agent-id>/sessions/sessions.json        (optional index)
//
// Lifecycle state lives in the filename: several variants can map to the
// same logical session id, and the active (unsuffixed) variant wins when
// present, else the most recently modified one. The sessions.json index,
// when present, enriches descriptors with a label and an update time the
// transcript itself does not carry.
type OpenClaw struct {
	root string
}

func NewOpenClaw(root string) *OpenClaw {
	return &OpenClaw{root: root}
}

func (s *OpenClaw) Provider() session.Provider {
	return session.ProviderOpenClaw
}

// openclawIndexEntry is one value of the sessions.json object, keyed by
// session key (e.g. "agent:main:subagent:<id>").
type openclawIndexEntry struct {
	SessionID string `json:"sessionId"`
	UpdatedAt int64  `json:"updatedAt"` // epoch ms
	Label     string `json:"label"`
}

// Two transcript generations exist. The format is decided once per file
// by sniffing a sample of records, in fixed priority order, and the
// chosen normalizer applies to the whole transcript.
type openclawFormat int

const (
	formatUnknown  openclawFormat = iota
	formatEnvelope                // {"type":"message","message":{"role":...,"content":[blocks]}}
	formatLegacy                  // {"role":...,"content":"plain string"}
)

type openclawEnvelope struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

type openclawLegacy struct {
	Role      string          `json:"role"`
	Timestamp string          `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
}

const sniffSample = 5

func sniffOpenClawFormat(records []json.RawMessage) openclawFormat {
	n := len(records)
	if n > sniffSample {
		n = sniffSample
	}
	for _, raw := range records[:n] {
		var env openclawEnvelope
		if jsonl.Decode(raw, &env) && env.Type == "message" && len(env.Message) > 0 {
			return formatEnvelope
		}
	}
	for _, raw := range records[:n] {
		var leg openclawLegacy
		if jsonl.Decode(raw, &leg) && leg.Role != "" {
			return formatLegacy
		}
	}
	return formatUnknown
}

// variant is one on-disk file for a logical session id.
type variant struct {
	path    string
	deleted bool
	reset   bool
	mtime   int64
}

func (s *OpenClaw) Sessions() ([]session.Descriptor, error) {
	agents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil
	}

	var descs []session.Descriptor
	for _, agent := range agents {
		if !agent.IsDir() {
			continue
		}
		sessDir := filepath.Join(s.root, agent.Name(), "sessions")
		groups := collectVariants(sessDir)
		index := readOpenClawIndex(filepath.Join(sessDir, "sessions.json"))

		// Map order is random; keep discovery order stable across scans
		// so equal-recency sessions tie-break consistently downstream.
		ids := make([]string, 0, len(groups))
		for id := range groups {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			v := chooseVariant(groups[id])
			desc := s.describe(v.path, agent.Name(), id)
			desc.IsDeleted = v.deleted
			desc.IsActive = !v.deleted && !v.reset

			if key, entry := lookupIndex(index, id); entry != nil {
				desc.Key = key
				desc.Title = entry.Label
				if entry.UpdatedAt > 0 {
					desc.LastUpdated = entry.UpdatedAt
				}
			}
			descs = append(descs, desc)
		}
	}
	return descs, nil
}

// collectVariants groups the session files in a directory by logical id,
// stripping the lifecycle marker segment from the filename.
func collectVariants(dir string) map[string][]variant {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	groups := make(map[string][]variant)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".jsonl" || isArtifact(name) {
			continue
		}
		id := stem(name)
		v := variant{path: filepath.Join(dir, name), mtime: mtimeMillis(filepath.Join(dir, name))}
		switch {
		case strings.HasSuffix(id, ".deleted"):
			id = strings.TrimSuffix(id, ".deleted")
			v.deleted = true
		case strings.HasSuffix(id, ".reset"):
			id = strings.TrimSuffix(id, ".reset")
			v.reset = true
		}
		groups[id] = append(groups[id], v)
	}
	return groups
}

// chooseVariant picks the file that represents a logical session: the
// active variant if present, else the most recently seen one.
func chooseVariant(vars []variant) variant {
	best := vars[0]
	for _, v := range vars[1:] {
		bestActive := !best.deleted && !best.reset
		vActive := !v.deleted && !v.reset
		switch {
		case vActive && !bestActive:
			best = v
		case vActive == bestActive && v.mtime > best.mtime:
			best = v
		}
	}
	return best
}

func readOpenClawIndex(path string) map[string]openclawIndexEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var index map[string]openclawIndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil
	}
	return index
}

func lookupIndex(index map[string]openclawIndexEntry, sessionID string) (string, *openclawIndexEntry) {
	for key, entry := range index {
		if entry.SessionID == sessionID {
			e := entry
			return key, &e
		}
	}
	return "", nil
}

func (s *OpenClaw) describe(path, agentID, id string) session.Descriptor {
	desc := session.Descriptor{
		SessionID:   id,
		Key:         "agent:" + agentID + ":" + id,
		Provider:    session.ProviderOpenClaw,
		FilePath:    path,
		LastUpdated: mtimeMillis(path),
	}

	msgs := normalizeOpenClawFile(path)
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

func (s *OpenClaw) Messages(sessionID string) ([]session.Message, error) {
	agents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: openclaw %s", ErrSessionNotFound, sessionID)
	}
	for _, agent := range agents {
		if !agent.IsDir() {
			continue
		}
		groups := collectVariants(filepath.Join(s.root, agent.Name(), "sessions"))
		if vars, ok := groups[sessionID]; ok {
			msgs := normalizeOpenClawFile(chooseVariant(vars).path)
			session.BackfillToolNames(msgs)
			session.SortMessages(msgs)
			return msgs, nil
		}
	}
	return nil, fmt.Errorf("%w: openclaw %s", ErrSessionNotFound, sessionID)
}

func normalizeOpenClawFile(path string) []session.Message {
	records := jsonl.ReadRecords(path)
	format := sniffOpenClawFormat(records)

	var msgs []session.Message
	for _, raw := range records {
		switch format {
		case formatEnvelope:
			var env openclawEnvelope
			if !jsonl.Decode(raw, &env) || env.Type != "message" {
				continue
			}
			var m claudeMessage
			if !jsonl.Decode(env.Message, &m) {
				continue
			}
			rec := claudeRecord{Type: m.Role, Timestamp: env.Timestamp, Message: env.Message}
			msgs = append(msgs, normalizeClaudeRecord(&rec, &m)...)

		case formatLegacy:
			var leg openclawLegacy
			if !jsonl.Decode(raw, &leg) {
				continue
			}
			var role string
			switch leg.Role {
			case "user":
				role = session.RoleUser
			case "assistant", "model":
				role = session.RoleAssistant
			default:
				continue
			}
			text := session.ExtractText(leg.Content)
			if strings.TrimSpace(text) == "" {
				continue
			}
			msgs = append(msgs, textMessage(role, leg.Timestamp, text))
		}
	}
	return msgs
}

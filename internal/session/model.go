// Package session defines the canonical session and message model shared
// by every provider, plus the derivation passes (preview cleaning,
// tool-name backfill) that operate on it.
package session

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Provider identifies one tool whose on-disk log format is understood.
// The set is closed: adding a provider means extending this enumeration
// and registering a scanner for it.
type Provider string

const (
	ProviderClaude   Provider = "claude"
	ProviderCodex    Provider = "codex"
	ProviderGemini   Provider = "gemini"
	ProviderOpenClaw Provider = "openclaw"
	ProviderAider    Provider = "aider"
	ProviderCursor   Provider = "cursor"
)

// AllProviders lists every known provider in scan order.
var AllProviders = []Provider{
	ProviderClaude,
	ProviderCodex,
	ProviderGemini,
	ProviderOpenClaw,
	ProviderAider,
	ProviderCursor,
}

// ParseProvider maps a string to a known provider.
func ParseProvider(s string) (Provider, bool) {
	for _, p := range AllProviders {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Descriptor is the lightweight metadata record for one discovered
// transcript. It never holds message content beyond the preview; the
// file path is a read-only reference used for later fetches.
type Descriptor struct {
	SessionID    string   `json:"sessionId"`
	Key          string   `json:"key"`
	Title        string   `json:"title,omitempty"`
	LastUpdated  int64    `json:"lastUpdated"` // epoch ms
	StartedAt    int64    `json:"startedAt,omitempty"`
	Provider     Provider `json:"provider"`
	MessageCount int      `json:"messageCount"`
	Preview      string   `json:"preview,omitempty"`

	IsActive  bool `json:"isActive"`
	IsDeleted bool `json:"isDeleted,omitempty"`

	IsSubagent      bool   `json:"isSubagent,omitempty"`
	ParentSessionID string `json:"parentSessionId,omitempty"`
	HasSubagents    bool   `json:"hasSubagents,omitempty"`

	FilePath string `json:"filePath"`

	Model       string `json:"model,omitempty"`
	Cwd         string `json:"cwd,omitempty"`
	TeamName    string `json:"teamName,omitempty"`
	IsSidechain bool   `json:"isSidechain,omitempty"`
}

// Canonical roles for Body.Role.
const (
	RoleUser       = "user"
	RoleAssistant  = "assistant"
	RoleToolResult = "toolResult"
)

// Content block types.
const (
	BlockText       = "text"
	BlockThinking   = "thinking"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Message is the canonical unit of the unified transcript.
type Message struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   Body   `json:"message"`
}

// Body carries the role and content of one turn. ToolCallID, ToolName
// and IsError are only meaningful when Role is RoleToolResult.
type Body struct {
	Role       string  `json:"role"`
	Content    Content `json:"content"`
	ToolCallID string  `json:"toolCallId,omitempty"`
	ToolName   string  `json:"toolName,omitempty"`
	IsError    bool    `json:"isError,omitempty"`
}

// Block is one element of structured message content.
type Block struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use fields
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result fields
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Content is either a plain string or an ordered block sequence. The
// duality is part of the output contract: a plain-text turn marshals as
// a JSON string, a structured turn marshals as a block array.
type Content struct {
	Text   string
	Blocks []Block
}

// TextContent returns a plain-text content value.
func TextContent(s string) Content {
	return Content{Text: s}
}

// BlocksContent returns a structured content value.
func BlocksContent(blocks ...Block) Content {
	return Content{Blocks: blocks}
}

// IsBlocks reports whether the content is the structured form.
func (c Content) IsBlocks() bool {
	return c.Blocks != nil
}

// Plain renders the content as a single display string: the text itself,
// or all text-bearing block payloads joined with spaces. Used by search
// and preview extraction.
func (c Content) Plain() string {
	if !c.IsBlocks() {
		return c.Text
	}
	var parts []string
	for _, b := range c.Blocks {
		switch b.Type {
		case BlockText, BlockThinking:
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case BlockToolResult:
			if b.Content != "" {
				parts = append(parts, b.Content)
			}
		}
	}
	return strings.Join(parts, " ")
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsBlocks() {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Content{Text: s}
		return nil
	}
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	*c = Content{Blocks: blocks}
	return nil
}

// ParseTimestamp parses the timestamp formats seen across provider logs.
// The zero time is returned for anything unrecognized.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// SortMessages orders messages chronologically. Messages without a
// parseable timestamp sort earliest; the sort is stable so provider
// file order breaks ties.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		ti := ParseTimestamp(msgs[i].Timestamp)
		tj := ParseTimestamp(msgs[j].Timestamp)
		return ti.Before(tj)
	})
}

// SortDescriptors orders sessions by lastUpdated descending. The sort is
// stable: ties keep original discovery order.
func SortDescriptors(descs []Descriptor) {
	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].LastUpdated > descs[j].LastUpdated
	})
}

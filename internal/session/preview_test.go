package session

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"fix the bug"`, "fix the bug"},
		{"text blocks", `[{"type":"text","text":"one"},{"type":"text","text":"two"}]`, "one two"},
		{"input_text synonym", `[{"type":"input_text","text":"hello"}]`, "hello"},
		{"non-text blocks dropped", `[{"type":"image","text":"x"},{"type":"text","text":"kept"}]`, "kept"},
		{"unknown shape", `{"foo":1}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(json.RawMessage(tt.raw)))
		})
	}
}

func TestCleanPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"attachment marker stripped",
			"[media attached: photo.jpg] check this out",
			"check this out",
		},
		{
			"timestamp prefix stripped",
			"[2026-02-11 09:15] what changed here?",
			"what changed here?",
		},
		{
			"stacked prefixes stripped",
			"[2026-02-11 09:15] [media attached: a.png] look",
			"look",
		},
		{
			"leading fenced banner removed",
			"```session-context\nbanner line\n```\nreal question",
			"real question",
		},
		{
			"hex identifier discarded",
			"019bf9a3d4337fc18214b826",
			"",
		},
		{
			"teammate summary extracted",
			`<teammate-message from="planner" summary="needs a retry loop">raw body</teammate-message>`,
			"needs a retry loop",
		},
		{
			"task notification payload extracted",
			"<task-notification>subtask finished</task-notification>",
			"subtask finished",
		},
		{
			"other markup stripped",
			"<system-hint>please</system-hint> do the thing",
			"please do the thing",
		},
		{
			"whitespace collapsed",
			"a\n\n  b\tc",
			"a b c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPreview(tt.in))
		})
	}
}

func TestCleanPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := CleanPreview(long)
	assert.Len(t, got, PreviewLength)
}

func TestPreviewFromMessagesPicksLatestUserTurn(t *testing.T) {
	msgs := []Message{
		{Type: "message", Message: Body{Role: RoleUser, Content: TextContent("first ask")}},
		{Type: "message", Message: Body{Role: RoleAssistant, Content: TextContent("answer")}},
		{Type: "message", Message: Body{Role: RoleUser, Content: TextContent("second ask")}},
		{Type: "message", Message: Body{Role: RoleToolResult, Content: TextContent("tool noise")}},
	}
	assert.Equal(t, "second ask", PreviewFromMessages(msgs))
}

func TestPreviewFromMessagesSkipsEmptyUserTurns(t *testing.T) {
	msgs := []Message{
		{Type: "message", Message: Body{Role: RoleUser, Content: TextContent("real content")}},
		{Type: "message", Message: Body{Role: RoleUser, Content: TextContent("019bf9a3d4337fc18214b826")}},
	}
	assert.Equal(t, "real content", PreviewFromMessages(msgs))
}

package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentview/internal/session"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestClaudeMissingRoot(t *testing.T) {
	s := NewClaude(filepath.Join(t.TempDir(), "does-not-exist"))
	descs, err := s.Sessions()
	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestClaudeSessions(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "aaaa-1111.jsonl"),
		`{"type":"summary","summary":"refactor the scanner"}`,
		`{"type":"user","timestamp":"2026-02-10T09:00:00Z","cwd":"/home/x/proj","message":{"role":"user","content":"fix the bug"}}`,
		`{"type":"assistant","timestamp":"2026-02-10T09:00:05Z","message":{"role":"assistant","model":"sona-4","content":[{"type":"text","text":"on it"}]}}`,
		`{"type":"user","timestamp":"2026-02-10T09:01:00Z","message":{"role":"user","content":"now add tests"}}`,
	)
	// a lock artifact and an index file must be excluded
	writeLines(t, filepath.Join(root, "proj", "sessions-index.jsonl"), `{"x":1}`)
	writeLines(t, filepath.Join(root, "proj", "aaaa-1111.jsonl.lock"), `{}`)

	descs, err := NewClaude(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "aaaa-1111", d.SessionID)
	assert.Equal(t, session.ProviderClaude, d.Provider)
	assert.Equal(t, "refactor the scanner", d.Title)
	assert.Equal(t, 3, d.MessageCount)
	assert.Equal(t, "now add tests", d.Preview)
	assert.Equal(t, "/home/x/proj", d.Cwd)
	assert.Equal(t, "sona-4", d.Model)
	assert.True(t, d.IsActive)
	assert.False(t, d.IsSubagent)
	assert.Positive(t, d.StartedAt)
}

func TestClaudeSubagentLinking(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "parent-1.jsonl"),
		`{"type":"user","timestamp":"2026-02-10T10:00:00Z","teamName":"builders","message":{"role":"user","content":"spin up the team"}}`,
		`{"type":"assistant","timestamp":"2026-02-10T10:05:00Z","teamName":"builders","message":{"role":"assistant","content":"done"}}`,
	)
	writeLines(t, filepath.Join(root, "proj", "parent-1", "subagents", "child-1.jsonl"),
		`{"type":"user","timestamp":"2026-02-10T10:00:30Z","message":{"role":"user","content":"child task"}}`,
	)

	descs, err := NewClaude(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 2)

	byID := map[string]session.Descriptor{}
	for _, d := range descs {
		byID[d.SessionID] = d
	}

	parent := byID["parent-1"]
	assert.True(t, parent.HasSubagents)
	assert.False(t, parent.IsSubagent)

	child := byID["child-1"]
	assert.True(t, child.IsSubagent)
	assert.Equal(t, "parent-1", child.ParentSessionID)
	assert.Equal(t, "builders", child.TeamName)
}

// The canonical three-message expansion: a user text turn, an assistant
// tool invocation, and a bundled tool result that becomes its own
// toolResult message with the name backfilled from the invocation.
func TestClaudeMessagesToolFlow(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "sess-1.jsonl"),
		`{"type":"user","message":{"role":"user","content":"fix the bug"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{}}]}}`,
		`{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"done"}]}}`,
	)

	msgs, err := NewClaude(root).Messages("sess-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, session.RoleUser, msgs[0].Message.Role)
	assert.Equal(t, "fix the bug", msgs[0].Message.Content.Text)

	assert.Equal(t, session.RoleAssistant, msgs[1].Message.Role)
	require.True(t, msgs[1].Message.Content.IsBlocks())
	assert.Equal(t, session.BlockToolUse, msgs[1].Message.Content.Blocks[0].Type)
	assert.Equal(t, "Bash", msgs[1].Message.Content.Blocks[0].Name)

	res := msgs[2].Message
	assert.Equal(t, session.RoleToolResult, res.Role)
	assert.Equal(t, "t1", res.ToolCallID)
	assert.Equal(t, "Bash", res.ToolName)
	require.True(t, res.Content.IsBlocks())
	assert.Equal(t, "done", res.Content.Blocks[0].Content)
}

// A record bundling text with tool results expands to the text message
// first, then one toolResult per result block.
func TestClaudeBundledRecordExpansion(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "sess-2.jsonl"),
		`{"type":"user","message":{"role":"user","content":[{"type":"text","text":"here are results"},{"type":"tool_result","tool_use_id":"a","content":"out-a"},{"type":"tool_result","tool_use_id":"b","content":"out-b"}]}}`,
	)

	msgs, err := NewClaude(root).Messages("sess-2")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, session.RoleUser, msgs[0].Message.Role)
	assert.Equal(t, session.RoleToolResult, msgs[1].Message.Role)
	assert.Equal(t, "a", msgs[1].Message.ToolCallID)
	assert.Equal(t, "b", msgs[2].Message.ToolCallID)
}

func TestClaudeMetaAndUnknownTypesFiltered(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "sess-3.jsonl"),
		`{"type":"user","isMeta":true,"message":{"role":"user","content":"internal"}}`,
		`{"type":"progress","message":{"role":"user","content":"tick"}}`,
		`{"type":"user","message":{"role":"user","content":"real"}}`,
	)

	msgs, err := NewClaude(root).Messages("sess-3")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "real", msgs[0].Message.Content.Text)
}

func TestClaudeUnknownBlockDegradesToText(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "sess-4.jsonl"),
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"mystery","text":"still visible"}]}}`,
	)

	msgs, err := NewClaude(root).Messages("sess-4")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.True(t, msgs[0].Message.Content.IsBlocks())
	assert.Equal(t, "still visible", msgs[0].Message.Content.Blocks[0].Text)
}

func TestClaudeStartedAtSkipsMetaRecords(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "sess-6.jsonl"),
		`{"type":"user","isMeta":true,"timestamp":"2026-02-10T08:00:00Z","message":{"role":"user","content":"bootstrap"}}`,
		`{"type":"user","timestamp":"2026-02-10T09:30:00Z","message":{"role":"user","content":"first real turn"}}`,
	)

	descs, err := NewClaude(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	want := session.ParseTimestamp("2026-02-10T09:30:00Z").UnixMilli()
	assert.Equal(t, want, descs[0].StartedAt)
}

func TestClaudeMessagesNotFound(t *testing.T) {
	_, err := NewClaude(t.TempDir()).Messages("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClaudeNormalizationIdempotent(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "proj", "sess-5.jsonl"),
		`{"type":"user","timestamp":"2026-02-10T09:00:00Z","message":{"role":"user","content":"hello"}}`,
		`{"type":"assistant","timestamp":"2026-02-10T09:00:01Z","message":{"role":"assistant","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"hi"}]}}`,
	)

	s := NewClaude(root)
	first, err := s.Messages("sess-5")
	require.NoError(t, err)
	second, err := s.Messages("sess-5")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentview/internal/session"
)

func writeGeminiChat(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "a1b2c3", "chats")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestGeminiWrappedMessages(t *testing.T) {
	root := t.TempDir()
	writeGeminiChat(t, root, "session-1.json", `{
		"sessionId": "g-123",
		"startTime": "2026-02-10T08:00:00Z",
		"lastUpdated": "2026-02-10T08:30:00Z",
		"messages": [
			{"role": "user", "content": "hello gemini"},
			{"role": "model", "content": "hello human"}
		]
	}`)

	descs, err := NewGemini(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "g-123", d.SessionID)
	assert.Equal(t, session.ProviderGemini, d.Provider)
	assert.Equal(t, 2, d.MessageCount)
	assert.Equal(t, "hello gemini", d.Preview)
	assert.Equal(t, session.ParseTimestamp("2026-02-10T08:30:00Z").UnixMilli(), d.LastUpdated)

	msgs, err := NewGemini(root).Messages("g-123")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, session.RoleAssistant, msgs[1].Message.Role)
}

func TestGeminiHistoryAndArrayShapes(t *testing.T) {
	root := t.TempDir()
	writeGeminiChat(t, root, "hist.json", `{"history":[{"type":"user","content":"from history"}]}`)
	writeGeminiChat(t, root, "bare.json", `[{"role":"gemini","parts":[{"text":"part one"},{"text":"part two"}]}]`)

	descs, err := NewGemini(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 2)

	// ids fall back to the filename stem when not embedded
	ids := []string{descs[0].SessionID, descs[1].SessionID}
	assert.ElementsMatch(t, []string{"hist", "bare"}, ids)

	msgs, err := NewGemini(root).Messages("bare")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "part one\npart two", msgs[0].Message.Content.Text)
}

func TestGeminiMalformedFileSkipped(t *testing.T) {
	root := t.TempDir()
	writeGeminiChat(t, root, "broken.json", `{"messages": [`)
	writeGeminiChat(t, root, "ok.json", `[{"role":"user","content":"fine"}]`)

	descs, err := NewGemini(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "ok", descs[0].SessionID)
}

func TestGeminiIgnoresFilesOutsideChats(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a1b2c3"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a1b2c3", "logs.json"), []byte(`[]`), 0o644))

	descs, err := NewGemini(root).Sessions()
	require.NoError(t, err)
	assert.Empty(t, descs)
}

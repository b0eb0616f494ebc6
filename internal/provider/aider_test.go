package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentview/internal/session"
)

const aiderHistory = `# aider chat started at 2026-02-09 14:30:00

#### fix the import cycle
#### in the config package

I moved the shared types into their own package.

#### now run the tests

All 42 tests pass.
`

func writeAiderHistory(t *testing.T, root, project string) string {
	t.Helper()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, aiderHistoryName)
	require.NoError(t, os.WriteFile(path, []byte(aiderHistory), 0o644))
	return path
}

func TestAiderSessions(t *testing.T) {
	root := t.TempDir()
	writeAiderHistory(t, root, "myproj")

	descs, err := NewAider(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, session.ProviderAider, d.Provider)
	assert.Equal(t, "myproj", d.Title)
	assert.Equal(t, 4, d.MessageCount)
	assert.Equal(t, "now run the tests", d.Preview)
	assert.NotZero(t, d.StartedAt)
	assert.NotEmpty(t, d.SessionID)
}

func TestAiderSessionIDStable(t *testing.T) {
	root := t.TempDir()
	path := writeAiderHistory(t, root, "myproj")

	first, err := NewAider(root).Sessions()
	require.NoError(t, err)
	second, err := NewAider(root).Sessions()
	require.NoError(t, err)
	assert.Equal(t, first[0].SessionID, second[0].SessionID)
	assert.Equal(t, aiderSessionID(path), first[0].SessionID)
}

func TestAiderTurnSplitting(t *testing.T) {
	root := t.TempDir()
	writeAiderHistory(t, root, "myproj")

	descs, err := NewAider(root).Sessions()
	require.NoError(t, err)
	msgs, err := NewAider(root).Messages(descs[0].SessionID)
	require.NoError(t, err)

	require.Len(t, msgs, 4)
	assert.Equal(t, session.RoleUser, msgs[0].Message.Role)
	assert.Equal(t, "fix the import cycle\nin the config package", msgs[0].Message.Content.Text)
	assert.Equal(t, session.RoleAssistant, msgs[1].Message.Role)
	assert.Contains(t, msgs[1].Message.Content.Text, "shared types")
	assert.Equal(t, "now run the tests", msgs[2].Message.Content.Text)
	assert.Equal(t, "All 42 tests pass.", msgs[3].Message.Content.Text)
}

func TestAiderMissingRoot(t *testing.T) {
	descs, err := NewAider(filepath.Join(t.TempDir(), "nope")).Sessions()
	require.NoError(t, err)
	assert.Empty(t, descs)
}

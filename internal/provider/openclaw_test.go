package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentview/internal/session"
)

func TestOpenClawEnvelopeFormat(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "main", "sessions", "s1.jsonl"),
		`{"type":"message","timestamp":"2026-02-10T12:00:00Z","message":{"role":"user","content":"deploy it"}}`,
		`{"type":"message","timestamp":"2026-02-10T12:00:05Z","message":{"role":"assistant","content":[{"type":"thinking","thinking":"checking"},{"type":"text","text":"deploying"}]}}`,
	)

	descs, err := NewOpenClaw(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "s1", d.SessionID)
	assert.Equal(t, "agent:main:s1", d.Key)
	assert.True(t, d.IsActive)
	assert.Equal(t, 2, d.MessageCount)
	assert.Equal(t, "deploy it", d.Preview)

	msgs, err := NewOpenClaw(root).Messages("s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.True(t, msgs[1].Message.Content.IsBlocks())
	assert.Equal(t, session.BlockThinking, msgs[1].Message.Content.Blocks[0].Type)
}

func TestOpenClawLegacyFormatSniffed(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "main", "sessions", "old.jsonl"),
		`{"role":"user","timestamp":"2026-01-01T00:00:00Z","content":"plain question"}`,
		`{"role":"assistant","timestamp":"2026-01-01T00:00:01Z","content":"plain answer"}`,
		`{"role":"system","content":"internal"}`,
	)

	msgs, err := NewOpenClaw(root).Messages("old")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "plain question", msgs[0].Message.Content.Text)
	assert.Equal(t, "plain answer", msgs[1].Message.Content.Text)
}

func TestOpenClawDeletedVariantLoses(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "main", "sessions")
	writeLines(t, filepath.Join(dir, "s2.jsonl"),
		`{"type":"message","message":{"role":"user","content":"live copy"}}`,
	)
	writeLines(t, filepath.Join(dir, "s2.deleted.jsonl"),
		`{"type":"message","message":{"role":"user","content":"old copy"}}`,
	)

	descs, err := NewOpenClaw(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "s2", descs[0].SessionID)
	assert.True(t, descs[0].IsActive)
	assert.False(t, descs[0].IsDeleted)
	assert.Equal(t, "live copy", descs[0].Preview)
}

func TestOpenClawOnlyDeletedVariant(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "main", "sessions", "s3.deleted.jsonl"),
		`{"type":"message","message":{"role":"user","content":"was removed"}}`,
	)

	descs, err := NewOpenClaw(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "s3", descs[0].SessionID)
	assert.True(t, descs[0].IsDeleted)
	assert.False(t, descs[0].IsActive)
}

func TestOpenClawIndexEnrichment(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "main", "sessions")
	writeLines(t, filepath.Join(dir, "s4.jsonl"),
		`{"type":"message","message":{"role":"user","content":"indexed session"}}`,
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sessions.json"), []byte(
		`{"agent:main:subagent:s4":{"sessionId":"s4","updatedAt":1770000000000,"label":"release helper"}}`,
	), 0o644))

	descs, err := NewOpenClaw(root).Sessions()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "agent:main:subagent:s4", d.Key)
	assert.Equal(t, "release helper", d.Title)
	assert.EqualValues(t, 1770000000000, d.LastUpdated)
}

func TestOpenClawDiscoveryOrderStable(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "main", "sessions")
	for _, id := range []string{"zeta", "alpha", "mid"} {
		writeLines(t, filepath.Join(dir, id+".jsonl"),
			`{"type":"message","message":{"role":"user","content":"same content"}}`,
		)
	}

	s := NewOpenClaw(root)
	first, err := s.Sessions()
	require.NoError(t, err)
	require.Len(t, first, 3)

	var ids []string
	for _, d := range first {
		ids = append(ids, d.SessionID)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)

	second, err := s.Sessions()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOpenClawMissingRoot(t *testing.T) {
	descs, err := NewOpenClaw(filepath.Join(t.TempDir(), "nope")).Sessions()
	require.NoError(t, err)
	assert.Empty(t, descs)
}

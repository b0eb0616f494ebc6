package provider

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"agentview/internal/session"
)

// Cursor reads Cursor's global-storage SQLite database. This is an
// input format, not an index of ours: the database belongs to Cursor and
// is opened read-only on every call. Composer conversations live in the
// cursorDiskKV table under "composerData:<id>" keys.
type Cursor struct {
	root string
}

func NewCursor(root string) *Cursor {
	return &Cursor{root: root}
}

func (s *Cursor) Provider() session.Provider {
	return session.ProviderCursor
}

const cursorDBName = "state.vscdb"

func (s *Cursor) dbPath() string {
	return filepath.Join(s.root, cursorDBName)
}

type cursorComposer struct {
	ComposerID    string         `json:"composerId"`
	Name          string         `json:"name"`
	CreatedAt     int64          `json:"createdAt"`     // epoch ms
	LastUpdatedAt int64          `json:"lastUpdatedAt"` // epoch ms
	Conversation  []cursorBubble `json:"conversation"`
}

type cursorBubble struct {
	Type int    `json:"type"` // 1 = user, 2 = assistant
	Text string `json:"text"`
}

// loadComposers queries every composer record. Any failure (missing
// database, locked file, schema drift) yields an empty result; Cursor
// may be running and writing while we read.
func (s *Cursor) loadComposers() []cursorComposer {
	db, err := sql.Open("sqlite", s.dbPath()+"?mode=ro")
	if err != nil {
		return nil
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT value FROM cursorDiskKV WHERE key LIKE 'composerData:%' AND value IS NOT NULL",
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var composers []cursorComposer
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			continue
		}
		var c cursorComposer
		if err := json.Unmarshal([]byte(value), &c); err != nil {
			continue
		}
		if c.ComposerID == "" {
			continue
		}
		composers = append(composers, c)
	}
	return composers
}

func (s *Cursor) Sessions() ([]session.Descriptor, error) {
	composers := s.loadComposers()
	var descs []session.Descriptor
	for i := range composers {
		descs = append(descs, s.describe(&composers[i]))
	}
	return descs, nil
}

func (s *Cursor) describe(c *cursorComposer) session.Descriptor {
	desc := session.Descriptor{
		SessionID:   c.ComposerID,
		Key:         c.ComposerID,
		Title:       c.Name,
		Provider:    session.ProviderCursor,
		FilePath:    s.dbPath(),
		LastUpdated: c.LastUpdatedAt,
		StartedAt:   c.CreatedAt,
		IsActive:    true,
	}
	if desc.LastUpdated == 0 {
		desc.LastUpdated = mtimeMillis(s.dbPath())
	}

	msgs := normalizeCursorBubbles(c)
	desc.MessageCount = len(msgs)
	desc.Preview = session.PreviewFromMessages(msgs)
	return desc
}

func (s *Cursor) Messages(sessionID string) ([]session.Message, error) {
	for _, c := range s.loadComposers() {
		if c.ComposerID == sessionID {
			return normalizeCursorBubbles(&c), nil
		}
	}
	return nil, fmt.Errorf("%w: cursor %s", ErrSessionNotFound, sessionID)
}

// SearchContent scans one composer's own bubbles. The database file is
// shared by every composer, so a raw file scan would leak other
// sessions' conversations into this one's search results.
func (s *Cursor) SearchContent(sessionID, needle string) (string, bool) {
	for _, c := range s.loadComposers() {
		if c.ComposerID != sessionID {
			continue
		}
		for _, b := range c.Conversation {
			if strings.Contains(strings.ToLower(b.Text), needle) {
				return b.Text, true
			}
		}
		return "", false
	}
	return "", false
}

func normalizeCursorBubbles(c *cursorComposer) []session.Message {
	var ts string
	if c.CreatedAt > 0 {
		ts = time.UnixMilli(c.CreatedAt).UTC().Format(time.RFC3339)
	}
	var msgs []session.Message
	for _, b := range c.Conversation {
		if b.Text == "" {
			continue
		}
		switch b.Type {
		case 1:
			msgs = append(msgs, textMessage(session.RoleUser, ts, b.Text))
		case 2:
			msgs = append(msgs, textMessage(session.RoleAssistant, ts, b.Text))
		}
	}
	return msgs
}

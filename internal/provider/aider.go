package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"agentview/internal/session"
)

// Aider scans aider's per-project markdown history files. Each project
// directory under the root may hold one flat ".aider.chat.history.md";
// user turns are delimited by "#### " level-4 headings and the remainder
// of each block is the assistant reply. The file has no embedded id, so
// a deterministic UUID is synthesized from the path, keeping the id
// stable across scans.
type Aider struct {
	root string
}

func NewAider(root string) *Aider {
	return &Aider{root: root}
}

func (s *Aider) Provider() session.Provider {
	return session.ProviderAider
}

const (
	aiderHistoryName = ".aider.chat.history.md"
	aiderWalkDepth   = 3
	aiderUserMark    = "#### "
	aiderStartMark   = "# aider chat started at "
)

func (s *Aider) Sessions() ([]session.Descriptor, error) {
	var descs []session.Descriptor
	for _, path := range s.historyFiles() {
		descs = append(descs, s.describe(path))
	}
	return descs, nil
}

// historyFiles walks the root a bounded number of levels deep looking
// for history files. The walk is bounded because the root is typically a
// projects directory, not a whole home tree.
func (s *Aider) historyFiles() []string {
	var files []string
	root := filepath.Clean(s.root)
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		depth := strings.Count(strings.TrimPrefix(path, root), string(filepath.Separator))
		if info.IsDir() {
			if depth > aiderWalkDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) == aiderHistoryName {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func aiderSessionID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

func (s *Aider) describe(path string) session.Descriptor {
	desc := session.Descriptor{
		SessionID:   aiderSessionID(path),
		Provider:    session.ProviderAider,
		FilePath:    path,
		LastUpdated: mtimeMillis(path),
		IsActive:    true,
		Cwd:         filepath.Dir(path),
		Title:       filepath.Base(filepath.Dir(path)),
	}
	desc.Key = desc.SessionID

	msgs, startedAt := parseAiderHistory(path)
	desc.MessageCount = len(msgs)
	desc.Preview = session.PreviewFromMessages(msgs)
	if !startedAt.IsZero() {
		desc.StartedAt = startedAt.UnixMilli()
	}
	return desc
}

func (s *Aider) Messages(sessionID string) ([]session.Message, error) {
	for _, path := range s.historyFiles() {
		if aiderSessionID(path) != sessionID {
			continue
		}
		msgs, _ := parseAiderHistory(path)
		return msgs, nil
	}
	return nil, fmt.Errorf("%w: aider %s", ErrSessionNotFound, sessionID)
}

// parseAiderHistory splits the markdown into alternating user and
// assistant turns. Consecutive "#### " lines belong to one user turn;
// everything up to the next user heading is the assistant reply.
func parseAiderHistory(path string) ([]session.Message, time.Time) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}
	}

	var msgs []session.Message
	var startedAt time.Time
	var user, assistant []string

	flushUser := func() {
		text := strings.TrimSpace(strings.Join(user, "\n"))
		user = nil
		if text != "" {
			msgs = append(msgs, textMessage(session.RoleUser, "", text))
		}
	}
	flushAssistant := func() {
		text := strings.TrimSpace(strings.Join(assistant, "\n"))
		assistant = nil
		if text != "" {
			msgs = append(msgs, textMessage(session.RoleAssistant, "", text))
		}
	}

	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, aiderStartMark):
			if startedAt.IsZero() {
				raw := strings.TrimSpace(strings.TrimPrefix(line, aiderStartMark))
				if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
					startedAt = t
				}
			}
		case strings.HasPrefix(line, aiderUserMark):
			// A heading after assistant output starts a new turn pair;
			// a heading right after another heading continues the same
			// user message.
			if hasContent(assistant) {
				flushUser()
				flushAssistant()
			}
			user = append(user, strings.TrimPrefix(line, aiderUserMark))
		default:
			if len(user) > 0 {
				assistant = append(assistant, line)
			}
		}
	}
	flushUser()
	flushAssistant()
	return msgs, startedAt
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

// Package provider implements one discovery scanner and entry
// normalizer per supported tool. The provider set is a closed
// enumeration (session.AllProviders); every scanner is constructed with
// its root path so tests can point it at fixture directories.
package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentview/internal/session"
)

// Scanner is implemented by each provider. Sessions enumerates
// descriptors for every transcript under the scanner's root; a missing
// root yields an empty slice, and a corrupt candidate file is skipped
// without aborting its siblings. Messages re-reads and re-normalizes one
// transcript on every call.
type Scanner interface {
	Provider() session.Provider
	Sessions() ([]session.Descriptor, error)
	Messages(sessionID string) ([]session.Message, error)
}

// ErrSessionNotFound is wrapped by Messages when no transcript under the
// root matches the requested id.
var ErrSessionNotFound = fmt.Errorf("session not found")

// ContentSearcher is implemented by scanners whose sessions do not own a
// dedicated file, so a raw scan of Descriptor.FilePath would read shared
// storage and attribute other sessions' content to this one. SearchContent
// reports the first piece of this session's own normalized content
// containing needle (lowercase).
type ContentSearcher interface {
	SearchContent(sessionID, needle string) (string, bool)
}

// New constructs the scanner for a provider rooted at the given path.
func New(p session.Provider, root string) (Scanner, error) {
	switch p {
	case session.ProviderClaude:
		return NewClaude(root), nil
	case session.ProviderCodex:
		return NewCodex(root), nil
	case session.ProviderGemini:
		return NewGemini(root), nil
	case session.ProviderOpenClaw:
		return NewOpenClaw(root), nil
	case session.ProviderAider:
		return NewAider(root), nil
	case session.ProviderCursor:
		return NewCursor(root), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
}

// lockSuffixes marks partially-written or editor-artifact files that
// every scanner excludes.
var lockSuffixes = []string{".lock", ".tmp", ".bak", ".swp"}

func isArtifact(name string) bool {
	for _, suf := range lockSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

// mtimeMillis returns the file's last-modified time in epoch
// milliseconds, or 0 when the file cannot be stat'd. UnixMilli truncates
// toward zero, which matches the rounding the descriptor contract wants.
func mtimeMillis(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}

// stem strips the extension from a filename.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

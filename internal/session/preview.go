package session

import (
	"encoding/json"
	"regexp"
	"strings"
)

// PreviewLength is the maximum preview size in characters.
const PreviewLength = 120

var (
	bracketPrefixRe = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)
	hexIDRe         = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	teammateRe      = regexp.MustCompile(`<teammate-message[^>]*\bsummary="([^"]*)"[^>]*>`)
	taskNotifyRe    = regexp.MustCompile(`(?s)<task-notification[^>]*>(.*?)</task-notification>`)
	tagRe           = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// ExtractText unwraps the content shapes providers use for a turn: a
// plain string, an array of typed blocks (only text-typed blocks are
// kept, joined with single spaces), or blocks using the input_text /
// output_text synonyms. Anything else yields "".
func ExtractText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			switch b.Type {
			case "text", "input_text", "output_text":
				if b.Text != "" {
					parts = append(parts, b.Text)
				}
			}
		}
		return strings.Join(parts, " ")
	}

	return ""
}

// CleanPreview normalizes a user turn into display text. The steps are
// order-sensitive: the leading banner fence and bracket prefixes must go
// before markup extraction, or a timestamped teammate message would keep
// its raw prefix.
func CleanPreview(text string) string {
	text = strings.TrimSpace(text)
	text = stripLeadingFence(text)

	// Leading [timestamp] / [media attached: ...] markers, possibly stacked.
	for {
		stripped := bracketPrefixRe.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}

	text = strings.TrimSpace(text)

	// A bare hex identifier is bookkeeping, not content.
	if hexIDRe.MatchString(text) {
		return ""
	}

	if m := teammateRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if m := taskNotifyRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else {
		text = tagRe.ReplaceAllString(text, "")
	}

	text = spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	return Truncate(text, PreviewLength)
}

// stripLeadingFence removes a structural banner block that opens the
// text: a fenced marker line followed by arbitrary lines up to the
// closing fence. Everything after the first closing fence survives.
func stripLeadingFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			return strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}
	return text
}

// Truncate cuts s to at most n characters, rune-safe.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// PreviewFromMessages derives the preview for a normalized transcript:
// the most recent user-authored turn, cleaned. Tool results never feed
// the preview even though they share the user channel in several raw
// formats.
func PreviewFromMessages(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Message.Role != RoleUser {
			continue
		}
		if p := CleanPreview(msgs[i].Message.Content.Plain()); p != "" {
			return p
		}
	}
	return ""
}

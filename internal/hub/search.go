package hub

import (
	"bufio"
	"os"
	"strings"

	"agentview/internal/provider"
	"agentview/internal/session"
)

// snippetLength is the approximate size of a search snippet.
const snippetLength = 120

// Result pairs a matching session with a bounded snippet around the
// first match. LineNumber is the 1-based line of a raw-content hit, 0
// for a metadata hit.
type Result struct {
	Descriptor session.Descriptor
	Snippet    string
	LineNumber int
}

// Search does a case-insensitive substring scan across all sessions,
// newest first. Cached metadata (title, preview, key) is checked first
// and short-circuits without touching the file; otherwise the raw file
// content is scanned line by line. The walk stops as soon as limit
// results are collected. Ordering follows session recency, not
// relevance.
func (h *Hub) Search(query string, limit int) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = 50
	}
	needle := strings.ToLower(query)

	var results []Result
	for _, desc := range h.ListSessions("") {
		if len(results) >= limit {
			break
		}

		if field, ok := metadataMatch(desc, needle); ok {
			results = append(results, Result{
				Descriptor: desc,
				Snippet:    makeSnippet(field, query),
			})
			continue
		}

		// Scanners whose sessions share one storage file search their own
		// normalized content; a raw file scan would match every session in
		// the file.
		if cs, ok := h.scanners[desc.Provider].(provider.ContentSearcher); ok {
			if text, ok := cs.SearchContent(desc.SessionID, needle); ok {
				results = append(results, Result{
					Descriptor: desc,
					Snippet:    makeSnippet(text, query),
				})
			}
			continue
		}

		if line, lineNum := rawMatch(desc.FilePath, needle); lineNum > 0 {
			results = append(results, Result{
				Descriptor: desc,
				Snippet:    makeSnippet(line, query),
				LineNumber: lineNum,
			})
		}
	}
	return results
}

func metadataMatch(desc session.Descriptor, needle string) (string, bool) {
	for _, field := range []string{desc.Title, desc.Preview, desc.Key} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return field, true
		}
	}
	return "", false
}

// rawMatch scans a file's lines for the needle, returning the matching
// line and its 1-based number, or 0 when absent or unreadable.
func rawMatch(path, needle string) (string, int) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.Contains(strings.ToLower(line), needle) {
			return line, lineNum
		}
	}
	return "", 0
}

// makeSnippet extracts ~snippetLength characters centered on the first
// occurrence of query, with ellipsis markers on any truncated edge, and
// structural noise characters replaced by spaces for readability. The
// match is located in the raw text before noise cleaning, since the
// query itself may contain noise characters.
func makeSnippet(text, query string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(query))

	if idx < 0 {
		cleaned := []rune(cleanSnippet(text))
		if len(cleaned) > snippetLength {
			return string(cleaned[:snippetLength]) + "..."
		}
		return string(cleaned)
	}

	runes := []rune(text)
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))
	context := (snippetLength - qLen) / 2
	if context < 0 {
		context = 0
	}

	start := runePos - context
	if start < 0 {
		start = 0
	}
	end := runePos + qLen + context
	if end > len(runes) {
		end = len(runes)
	}

	snippet := cleanSnippet(string(runes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

var snippetNoise = strings.NewReplacer(
	"{", " ", "}", " ",
	"[", " ", "]", " ",
	`"`, " ", "\\", " ",
	"\t", " ", "\n", " ",
)

func cleanSnippet(text string) string {
	return strings.Join(strings.Fields(snippetNoise.Replace(text)), " ")
}

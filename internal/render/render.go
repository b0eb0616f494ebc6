// Package render draws a normalized transcript for terminal display.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"agentview/internal/session"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorThink   = "\033[2;35m" // dim magenta
	colorTool    = "\033[1;33m" // bold yellow
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m"
)

type Options struct {
	Width int    // wrap width (0 = no wrap)
	Query string // search query for keyword highlighting
}

// highlightKeywords wraps case-insensitive matches of query terms in
// bold red ANSI codes.
func highlightKeywords(text, query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return text
	}
	for _, term := range terms {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into lines that fit maxWidth visible
// columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Transcript renders a session's messages and returns the content plus
// the 0-based line of the first query match (-1 when no query or no
// match), so a viewport can jump straight to it.
func Transcript(desc session.Descriptor, msgs []session.Message, opts Options) (string, int) {
	if len(msgs) == 0 {
		return "(empty session)", -1
	}

	var b strings.Builder
	matchLine := -1
	lineCount := 0
	separator := colorDim + "--------------------------------------------------" + colorReset
	queryLower := strings.ToLower(strings.TrimSpace(opts.Query))

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	header := fmt.Sprintf("%s--- %s [%s]", colorDim, desc.SessionID, desc.Provider)
	if desc.Cwd != "" {
		header += " " + desc.Cwd
	}
	writeLine(header + " ---" + colorReset)

	for i, m := range msgs {
		if i > 0 {
			writeLine(separator)
		}
		for _, part := range renderMessage(m) {
			if matchLine < 0 && queryLower != "" &&
				strings.Contains(strings.ToLower(part), queryLower) {
				matchLine = lineCount
			}
			part = highlightKeywords(part, opts.Query)
			for _, tl := range strings.Split(indentLines(part, "  "), "\n") {
				writeLine(tl)
			}
		}
		writeLine("")
	}

	return b.String(), matchLine
}

// renderMessage flattens one canonical message into role-labelled text
// parts, one per content block.
func renderMessage(m session.Message) []string {
	var parts []string
	label := roleHeader(m)
	parts = append(parts, label)

	if !m.Message.Content.IsBlocks() {
		parts = append(parts, m.Message.Content.Text)
		return parts
	}

	for _, blk := range m.Message.Content.Blocks {
		switch blk.Type {
		case session.BlockText:
			parts = append(parts, blk.Text)
		case session.BlockThinking:
			parts = append(parts, colorThink+blk.Text+colorReset)
		case session.BlockToolUse:
			line := colorTool + "* " + blk.Name + colorReset
			if len(blk.Input) > 0 {
				line += " " + colorDim + string(blk.Input) + colorReset
			}
			parts = append(parts, line)
		case session.BlockToolResult:
			parts = append(parts, blk.Content)
		}
	}
	return parts
}

func roleHeader(m session.Message) string {
	var color, label string
	switch m.Message.Role {
	case session.RoleUser:
		color, label = colorUser, "USER"
	case session.RoleAssistant:
		color, label = colorAssist, "ASST"
	case session.RoleToolResult:
		color, label = colorTool, "TOOL"
		if m.Message.ToolName != "" {
			label += " " + m.Message.ToolName
		}
		if m.Message.IsError {
			label += " (error)"
		}
	default:
		color, label = colorDim, strings.ToUpper(m.Message.Role)
	}
	header := fmt.Sprintf("%s%s >%s", color, label, colorReset)
	if m.Timestamp != "" {
		header += fmt.Sprintf(" %s%s%s", colorDim, m.Timestamp, colorReset)
	}
	return header
}

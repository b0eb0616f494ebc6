package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"agentview/internal/tui"
)

const (
	sColorReset = "\033[0m"
	sColorDim   = "\033[2m"
)

var providerColors = map[string]string{
	"claude":   "\033[1;34m", // blue
	"codex":    "\033[1;32m", // green
	"gemini":   "\033[1;35m", // magenta
	"openclaw": "\033[1;36m", // cyan
	"aider":    "\033[1;33m", // yellow
	"cursor":   "\033[1;31m", // red
}

func colorizeProvider(p string) string {
	if c, ok := providerColors[p]; ok {
		return c + p + sColorReset
	}
	return p
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search all transcripts for a substring",
		Long: `Case-insensitive substring search across every provider's sessions,
newest first. Interactive TUI when stdout is a terminal; otherwise TSV
for fzf integration:
  sessionId, provider, line, updatedAt, title, snippet

Recommended shell function (add to .zshrc):
  avf() {
    agentview search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=2.. \
      --preview 'agentview show {1} --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(agentview open {1} --line {3})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHub()
			if err != nil {
				return err
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(h, args[0])
			}

			results := h.Search(args[0], limit)
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				d := r.Descriptor
				updated := ""
				if d.LastUpdated > 0 {
					updated = time.UnixMilli(d.LastUpdated).Format("2006-01-02 15:04")
				}
				title := d.Title
				if title == "" {
					title = d.Preview
				}
				title = strings.ReplaceAll(title, "\t", " ")
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				// sessionId and line stay plain for fzf {1} {3}
				fmt.Printf("%s\t%s\t%d\t%s%s%s\t%s\t%s\n",
					d.SessionID,
					colorizeProvider(string(d.Provider)),
					r.LineNumber,
					sColorDim, updated, sColorReset,
					title,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")

	return cmd
}

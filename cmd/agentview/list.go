package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"agentview/internal/tui"
)

func listCmd() *cobra.Command {
	var provider string
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all sessions sorted by update time",
		Long:  `Opens a TUI panel showing every discovered session, newest first. Type to filter with a full-content search. When stdout is not a terminal (or with --json), prints the list instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, err := parseProviderFlag(provider)
			if err != nil {
				return err
			}

			h, err := loadHub()
			if err != nil {
				return err
			}

			if !asJSON && term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(h, prov)
			}

			descs := h.ListSessions(prov)
			if limit > 0 && len(descs) > limit {
				descs = descs[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(descs)
			}

			for _, d := range descs {
				updated := ""
				if d.LastUpdated > 0 {
					updated = time.UnixMilli(d.LastUpdated).Format("2006-01-02 15:04")
				}
				title := d.Title
				if title == "" {
					title = d.Preview
				}
				title = strings.ReplaceAll(title, "\t", " ")
				fmt.Printf("%s\t%s\t%s\t%d\t%s\n",
					d.SessionID, d.Provider, updated, d.MessageCount, title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Only one provider (claude/codex/gemini/openclaw/aider/cursor)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print descriptors as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max sessions to print (0 = no limit)")

	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"agentview/internal/render"
)

func showCmd() *cobra.Command {
	var provider, query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <sessionId>",
		Short: "Print a session's normalized transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, err := parseProviderFlag(provider)
			if err != nil {
				return err
			}

			h, err := loadHub()
			if err != nil {
				return err
			}

			desc, ok := h.Find(prov, args[0])
			if !ok {
				return fmt.Errorf("session not found: %s", args[0])
			}

			msgs, err := h.Messages(desc.Provider, desc.SessionID)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(msgs)
			}

			width := 100
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}

			content, _ := render.Transcript(desc, msgs, render.Options{
				Width: width,
				Query: query,
			})
			fmt.Print(content)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Restrict the lookup to one provider")
	cmd.Flags().StringVar(&query, "query", "", "Highlight matches of this query")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print canonical messages as JSON")

	return cmd
}

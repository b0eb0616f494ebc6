package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentview/internal/open"
)

func openCmd() *cobra.Command {
	var provider string
	var line int

	cmd := &cobra.Command{
		Use:   "open <sessionId>",
		Short: "Open the original transcript file in $EDITOR",
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

			return open.Session(desc, line)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Restrict the lookup to one provider")
	cmd.Flags().IntVar(&line, "line", 0, "Line number to jump to")

	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agentview/internal/config"
	"agentview/internal/hub"
	"agentview/internal/session"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify provider roots and show session counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Roots ===")
			for _, p := range session.AllProviders {
				root := cfg.RootFor(p)
				if root == "" {
					fmt.Printf("  %-9s (disabled, no root configured)\n", p)
					continue
				}
				checkDir(string(p), root)
			}

			h := hub.New(cfg.ProviderRoots(), nil)

			fmt.Println("\n=== Sessions ===")
			total := 0
			for _, p := range h.Providers() {
				descs := h.ListSessions(p)
				active := 0
				for _, d := range descs {
					if d.IsActive {
						active++
					}
				}
				total += len(descs)
				fmt.Printf("  %-9s %d sessions (%d active)\n", p, len(descs), active)
			}
			fmt.Printf("  total     %d sessions\n", total)

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %-9s %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %-9s %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %-9s %s (OK)\n", name, path)
	}
}

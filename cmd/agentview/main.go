package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agentview/internal/config"
	"agentview/internal/hub"
	"agentview/internal/session"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "agentview",
		Short:   "Browse and search local AI assistant chat transcripts",
		Version: version,
	}

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadHub builds a hub from the config file's provider roots.
func loadHub() (*hub.Hub, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return hub.New(cfg.ProviderRoots(), nil), nil
}

// parseProviderFlag validates an optional --provider value.
func parseProviderFlag(s string) (session.Provider, error) {
	if s == "" {
		return "", nil
	}
	p, ok := session.ParseProvider(s)
	if !ok {
		return "", fmt.Errorf("unknown provider %q (known: %v)", s, session.AllProviders)
	}
	return p, nil
}

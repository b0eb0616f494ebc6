// Package config loads the agentview configuration: a mapping from
// provider name to the root path its scanner reads. Roots are always
// passed into scanners at construction time so tests can substitute
// fixture directories for the real home-directory layouts.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"agentview/internal/session"
)

type Config struct {
	Roots map[string]string `toml:"roots"`
}

// Load reads ~/.config/agentview/config.toml, filling in the default
// root for any provider the file does not mention. The aider root has no
// canonical location and defaults to empty (disabled) until configured.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{Roots: defaultRoots(home)}

	cfgPath := filepath.Join(home, ".config", "agentview", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		var fileCfg Config
		if _, err := toml.DecodeFile(cfgPath, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		for name, root := range fileCfg.Roots {
			cfg.Roots[name] = root
		}
	}

	for name, root := range cfg.Roots {
		cfg.Roots[name] = expandHome(root, home)
	}

	return cfg, nil
}

func defaultRoots(home string) map[string]string {
	return map[string]string{
		string(session.ProviderClaude):   filepath.Join(home, ".claude", "projects"),
		string(session.ProviderCodex):    filepath.Join(home, ".codex", "sessions"),
		string(session.ProviderGemini):   filepath.Join(home, ".gemini", "tmp"),
		string(session.ProviderOpenClaw): filepath.Join(home, ".openclaw", "agents"),
		string(session.ProviderAider):    "",
		string(session.ProviderCursor):   filepath.Join(home, ".config", "Cursor", "User", "globalStorage"),
	}
}

// RootFor returns the configured root for a provider; empty means the
// provider is disabled.
func (c *Config) RootFor(p session.Provider) string {
	return c.Roots[string(p)]
}

// ProviderRoots converts the configured roots into the typed map the
// hub consumes, dropping keys that name no known provider.
func (c *Config) ProviderRoots() map[session.Provider]string {
	roots := make(map[session.Provider]string, len(c.Roots))
	for name, root := range c.Roots {
		if p, ok := session.ParseProvider(name); ok {
			roots[p] = root
		}
	}
	return roots
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

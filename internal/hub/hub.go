// Package hub unions every provider scanner into one query surface: the
// unified session list, per-session normalized transcripts, and search.
// Nothing is cached; every call re-reads the filesystem, trading
// recomputation for immunity to staleness while external tools keep
// appending to their own transcripts.
package hub

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"agentview/internal/provider"
	"agentview/internal/session"
)

type Hub struct {
	scanners map[session.Provider]provider.Scanner
	order    []session.Provider
	log      *log.Logger
}

// New builds a hub from a provider-to-root mapping. Providers with an
// empty root are disabled. A nil logger falls back to a quiet stderr
// logger.
func New(roots map[session.Provider]string, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	}
	h := &Hub{
		scanners: make(map[session.Provider]provider.Scanner),
		log:      logger,
	}
	for _, p := range session.AllProviders {
		root, ok := roots[p]
		if !ok || root == "" {
			continue
		}
		sc, err := provider.New(p, root)
		if err != nil {
			logger.Warn("skipping provider", "provider", p, "err", err)
			continue
		}
		h.scanners[p] = sc
		h.order = append(h.order, p)
	}
	return h
}

// Providers lists the enabled providers in scan order.
func (h *Hub) Providers() []session.Provider {
	return h.order
}

// ListSessions returns every discovered session, newest first. Pass an
// empty provider for the union of all scanners. A scanner failure drops
// that provider's sessions from the result, never the whole listing.
func (h *Hub) ListSessions(p session.Provider) []session.Descriptor {
	var descs []session.Descriptor
	for _, name := range h.order {
		if p != "" && p != name {
			continue
		}
		got, err := h.scanners[name].Sessions()
		if err != nil {
			h.log.Debug("scan failed", "provider", name, "err", err)
			continue
		}
		descs = append(descs, got...)
	}
	session.SortDescriptors(descs)
	return descs
}

// Messages re-reads and re-normalizes one session's transcript. There is
// no cache: the file may have grown since the last call.
func (h *Hub) Messages(p session.Provider, sessionID string) ([]session.Message, error) {
	sc, ok := h.scanners[p]
	if !ok {
		return nil, fmt.Errorf("provider %q not enabled", p)
	}
	return sc.Messages(sessionID)
}

// Find locates a session's descriptor by id, searching the given
// provider or all of them when empty.
func (h *Hub) Find(p session.Provider, sessionID string) (session.Descriptor, bool) {
	for _, desc := range h.ListSessions(p) {
		if desc.SessionID == sessionID {
			return desc, true
		}
	}
	return session.Descriptor{}, false
}

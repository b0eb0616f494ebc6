package provider

import "time"

// Subagents spawn slightly after the parent establishes a team context,
// and log clocks are not perfectly synchronized, so window matching
// carries slack. Boundary slack admits a timestamp just outside a
// window; the wider nearest-window slack is a fallback when no window
// admits it. The values are empirically tuned, not guaranteed semantics.
const (
	teamBoundarySlack = 90 * time.Second
	teamNearestSlack  = 5 * time.Minute
)

// TeamWindow is a contiguous time range during which a parent session
// operated under one named team context.
type TeamWindow struct {
	Name  string
	Start time.Time
	End   time.Time
}

// teamStamp is one (team name, timestamp) observation from a parent
// transcript, in record order.
type teamStamp struct {
	name string
	ts   time.Time
}

// buildTeamWindows folds ordered observations into windows: a run of
// records with the same team name widens one window, a different name
// starts the next. Records without a team name do not break a run.
func buildTeamWindows(stamps []teamStamp) []TeamWindow {
	var windows []TeamWindow
	for _, s := range stamps {
		if s.name == "" || s.ts.IsZero() {
			continue
		}
		if n := len(windows); n > 0 && windows[n-1].Name == s.name {
			if s.ts.After(windows[n-1].End) {
				windows[n-1].End = s.ts
			}
			continue
		}
		windows = append(windows, TeamWindow{Name: s.name, Start: s.ts, End: s.ts})
	}
	return windows
}

// resolveTeam attributes a child session's start time to a team window.
// A window whose slack-padded range contains the timestamp wins; failing
// that, the nearest window within teamNearestSlack; failing that, "".
func resolveTeam(windows []TeamWindow, ts time.Time) string {
	if ts.IsZero() || len(windows) == 0 {
		return ""
	}

	for _, w := range windows {
		if !ts.Before(w.Start.Add(-teamBoundarySlack)) && !ts.After(w.End.Add(teamBoundarySlack)) {
			return w.Name
		}
	}

	best := ""
	bestDist := teamNearestSlack + 1
	for _, w := range windows {
		var d time.Duration
		switch {
		case ts.Before(w.Start):
			d = w.Start.Sub(ts)
		case ts.After(w.End):
			d = ts.Sub(w.End)
		default:
			d = 0
		}
		if d < bestDist {
			bestDist = d
			best = w.Name
		}
	}
	if bestDist <= teamNearestSlack {
		return best
	}
	return ""
}

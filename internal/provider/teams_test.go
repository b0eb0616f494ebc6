package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildTeamWindows(t *testing.T) {
	stamps := []teamStamp{
		{name: "alpha", ts: ts("2026-02-10T10:00:00Z")},
		{name: "alpha", ts: ts("2026-02-10T10:04:00Z")},
		{name: "", ts: ts("2026-02-10T10:05:00Z")}, // no team name, run continues
		{name: "alpha", ts: ts("2026-02-10T10:06:00Z")},
		{name: "beta", ts: ts("2026-02-10T10:10:00Z")},
		{name: "beta", ts: ts("2026-02-10T10:12:00Z")},
	}

	windows := buildTeamWindows(stamps)
	assert.Equal(t, []TeamWindow{
		{Name: "alpha", Start: ts("2026-02-10T10:00:00Z"), End: ts("2026-02-10T10:06:00Z")},
		{Name: "beta", Start: ts("2026-02-10T10:10:00Z"), End: ts("2026-02-10T10:12:00Z")},
	}, windows)
}

func TestResolveTeam(t *testing.T) {
	windows := []TeamWindow{
		{Name: "alpha", Start: ts("2026-02-10T10:00:00Z"), End: ts("2026-02-10T10:05:00Z")},
		{Name: "beta", Start: ts("2026-02-10T10:20:00Z"), End: ts("2026-02-10T10:30:00Z")},
	}

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"inside window", ts("2026-02-10T10:02:00Z"), "alpha"},
		{"within boundary slack before start", ts("2026-02-10T09:58:45Z"), "alpha"},
		{"within boundary slack after end", ts("2026-02-10T10:06:15Z"), "alpha"},
		{"nearest window fallback", ts("2026-02-10T10:09:00Z"), "alpha"},
		{"nearest prefers closer window", ts("2026-02-10T10:16:00Z"), "beta"},
		{"beyond nearest tolerance", ts("2026-02-10T11:00:00Z"), ""},
		{"zero timestamp", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveTeam(windows, tt.at))
		})
	}
}

func TestResolveTeamNoWindows(t *testing.T) {
	assert.Equal(t, "", resolveTeam(nil, ts("2026-02-10T10:00:00Z")))
}

package engine

import (
	"strings"
	"testing"
)

func TestRenderDrawsTheGrid(t *testing.T) {
	g := newTestGame(t, "rows 2\ncols 3\nplayers 2\nm .B%\nm *0.", defaultCfg)

	var buf strings.Builder
	g.Render(&buf)
	out := buf.String()

	if !strings.Contains(out, "Players: 2") || !strings.Contains(out, "Turn: 0") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, ".B%") || !strings.Contains(out, "*0.") {
		t.Fatalf("missing grid rows:\n%s", out)
	}
}

func TestRenderShowsRazedHillsAndHidesDeadAnts(t *testing.T) {
	g := newTestGame(t, "rows 1\ncols 3\nplayers 2\nm a0b", defaultCfg)
	g.World().Get(0, 0).Alive = false
	g.World().Get(0, 1).Alive = false

	var buf strings.Builder
	g.Render(&buf)

	if !strings.Contains(buf.String(), ".Xb") {
		t.Fatalf("expected dead ant as '.' and razed hill as 'X':\n%s", buf.String())
	}
}

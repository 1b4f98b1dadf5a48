package engine

import "testing"

func mustParse(t *testing.T, contents string) *World {
	t.Helper()
	w, err := ParseMap(contents)
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	return w
}

func TestParseMapDimensionsAndPlayers(t *testing.T) {
	w := mustParse(t, `rows 2
cols 2
players 1
m ..
m .0`)

	if w.Width() != 2 || w.Height() != 2 || w.Players() != 1 {
		t.Fatalf("got %dx%d players=%d, want 2x2 players=1", w.Width(), w.Height(), w.Players())
	}
}

func TestGetReturnsTheCorrectEntity(t *testing.T) {
	w := mustParse(t, `rows 2
cols 3
players 2
m .b.
m *0%`)

	if w.Get(0, 0) != nil {
		t.Fatalf("expected land at (0,0)")
	}
	ant := w.Get(0, 1)
	if ant == nil || ant.Kind != KindAnt || ant.Player != 1 || !ant.Alive {
		t.Fatalf("expected live ant of player 1 at (0,1), got %+v", ant)
	}
	if e := w.Get(1, 0); e == nil || e.Kind != KindFood {
		t.Fatalf("expected food at (1,0), got %+v", e)
	}
	if e := w.Get(1, 1); e == nil || e.Kind != KindHill || e.Player != 0 {
		t.Fatalf("expected hill of player 0 at (1,1), got %+v", e)
	}
	if e := w.Get(1, 2); e == nil || e.Kind != KindWater {
		t.Fatalf("expected water at (1,2), got %+v", e)
	}
}

func TestSetAndRemove(t *testing.T) {
	w := mustParse(t, `rows 2
cols 2
players 1
m ..
m .0`)

	w.Set(1, 1, &Entity{Kind: KindWater})
	if e := w.Get(1, 1); e == nil || e.Kind != KindWater {
		t.Fatalf("expected water after Set, got %+v", e)
	}

	w.Remove(1, 1)
	if w.Get(1, 1) != nil {
		t.Fatalf("expected empty cell after Remove")
	}
}

func TestScansReturnRowMajorPositions(t *testing.T) {
	w := mustParse(t, `rows 3
cols 3
players 3
m .0a
m b*.
m .c2`)

	hills := w.Hills()
	if len(hills) != 2 {
		t.Fatalf("expected 2 hills, got %d", len(hills))
	}
	if hills[0].Row != 0 || hills[0].Col != 1 || hills[0].E.Player != 0 {
		t.Fatalf("unexpected first hill %+v", hills[0])
	}
	if hills[1].Row != 2 || hills[1].Col != 2 || hills[1].E.Player != 2 {
		t.Fatalf("unexpected second hill %+v", hills[1])
	}

	ants := w.Ants()
	if len(ants) != 3 {
		t.Fatalf("expected 3 ants, got %d", len(ants))
	}
	for i, want := range []struct{ row, col, player int }{{0, 2, 0}, {1, 0, 1}, {2, 1, 2}} {
		a := ants[i]
		if a.Row != want.row || a.Col != want.col || a.E.Player != want.player {
			t.Fatalf("ant %d: got (%d,%d) player %d, want %+v", i, a.Row, a.Col, a.E.Player, want)
		}
	}

	food := w.Food()
	if len(food) != 1 || food[0] != (Loc{Row: 1, Col: 1}) {
		t.Fatalf("unexpected food %v", food)
	}

	land := w.Land()
	wantLand := []Loc{{0, 0}, {1, 2}, {2, 0}}
	if len(land) != len(wantLand) {
		t.Fatalf("expected %d land cells, got %d", len(wantLand), len(land))
	}
	for i, l := range land {
		if l != wantLand[i] {
			t.Fatalf("land[%d] = %v, want %v", i, l, wantLand[i])
		}
	}
}

func TestLandAround(t *testing.T) {
	cases := []struct {
		name string
		m    string
		row  int
		col  int
		want []Loc
	}{
		{
			name: "middle cell",
			m:    "rows 3\ncols 3\nplayers 1\nm ...\nm .0.\nm ...",
			row:  1, col: 1,
			want: []Loc{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}, {2, 2}},
		},
		{
			name: "edge cell",
			m:    "rows 3\ncols 3\nplayers 1\nm ...\nm ...\nm .0.",
			row:  2, col: 1,
			want: []Loc{{1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 2}},
		},
		{
			name: "corner cell",
			m:    "rows 3\ncols 3\nplayers 1\nm 0..\nm ...\nm ...",
			row:  0, col: 0,
			want: []Loc{{0, 1}, {1, 0}, {1, 1}},
		},
		{
			name: "no land",
			m:    "rows 3\ncols 3\nplayers 1\nm .*0\nm .**\nm ...",
			row:  0, col: 2,
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := mustParse(t, tc.m)
			got := w.LandAround(tc.row, tc.col)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFieldOfVisionYieldsEntitiesWithinRadius(t *testing.T) {
	w := mustParse(t, `rows 5
cols 5
players 2
m ..*..
m ..*%.
m .*A.%
m .1...
m ..*..`)

	fov := w.FieldOfVision(2, 2, 4)
	if len(fov) != 8 {
		t.Fatalf("expected 8 entities in view, got %d", len(fov))
	}

	want := []struct {
		kind Kind
		row  int
		col  int
	}{
		{KindFood, 0, 2},
		{KindFood, 1, 2},
		{KindWater, 1, 3},
		{KindFood, 2, 1},
		{KindHill, 2, 2}, // the hill under the viewing ant, not the ant itself
		{KindWater, 2, 4},
		{KindHill, 3, 1},
		{KindFood, 4, 2},
	}
	for i, p := range fov {
		if p.E.Kind != want[i].kind || p.Row != want[i].row || p.Col != want[i].col {
			t.Fatalf("fov[%d] = %s at (%d,%d), want %s at (%d,%d)",
				i, p.E.Kind.Name(), p.Row, p.Col, want[i].kind.Name(), want[i].row, want[i].col)
		}
	}
	if fov[4].E.Player != 0 {
		t.Fatalf("underlying hill should belong to player 0, got %d", fov[4].E.Player)
	}
	if fov[6].E.Player != 1 {
		t.Fatalf("hill at (3,1) should belong to player 1, got %d", fov[6].E.Player)
	}
}

func TestMoveEntityToEmptyCell(t *testing.T) {
	w := mustParse(t, "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm ...")

	if !w.MoveEntity(Loc{1, 1}, Loc{0, 1}) {
		t.Fatalf("expected move to succeed")
	}
	if w.Get(1, 1) != nil {
		t.Fatalf("source cell should be empty")
	}
	if e := w.Get(0, 1); e == nil || e.Kind != KindAnt {
		t.Fatalf("ant should be at destination, got %+v", e)
	}
}

func TestMoveEntityOffAHillRestoresTheHill(t *testing.T) {
	w := mustParse(t, "rows 3\ncols 3\nplayers 1\nm ...\nm .A.\nm ...")

	if !w.MoveEntity(Loc{1, 1}, Loc{0, 1}) {
		t.Fatalf("expected move to succeed")
	}
	ant := w.Get(0, 1)
	if ant == nil || ant.Kind != KindAnt || ant.OnHill != nil {
		t.Fatalf("moved ant should have no hill snapshot, got %+v", ant)
	}
	hill := w.Get(1, 1)
	if hill == nil || hill.Kind != KindHill || hill.Player != 0 || !hill.Alive {
		t.Fatalf("hill should be restored at source, got %+v", hill)
	}
}

func TestMoveEntityOntoAHillCapturesTheSnapshot(t *testing.T) {
	w := mustParse(t, "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm .0.")

	if !w.MoveEntity(Loc{1, 1}, Loc{2, 1}) {
		t.Fatalf("expected move to succeed")
	}
	if w.Get(1, 1) != nil {
		t.Fatalf("source cell should be empty")
	}
	ant := w.Get(2, 1)
	if ant == nil || ant.Kind != KindAnt {
		t.Fatalf("ant should be at destination, got %+v", ant)
	}
	if ant.OnHill == nil || ant.OnHill.Player != 0 || !ant.OnHill.Alive {
		t.Fatalf("ant should carry the hill snapshot, got %+v", ant.OnHill)
	}
}

func TestMoveEntityPreservesIdentity(t *testing.T) {
	w := mustParse(t, "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm ...")
	id := w.Get(1, 1).ID

	w.MoveEntity(Loc{1, 1}, Loc{0, 1})
	if got := w.Get(0, 1).ID; got != id {
		t.Fatalf("id changed across move: %q -> %q", id, got)
	}
}

func TestMoveEntityRejectsInvalidMoves(t *testing.T) {
	cases := []struct {
		name string
		m    string
		mut  func(w *World)
		from Loc
		to   Loc
	}{
		{"empty source", "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm ...", nil, Loc{0, 1}, Loc{0, 2}},
		{"non-ant source", "rows 3\ncols 3\nplayers 1\nm %..\nm .a.\nm ...", nil, Loc{0, 0}, Loc{1, 0}},
		{"dead ant source", "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm ...",
			func(w *World) { w.Get(1, 1).Alive = false }, Loc{1, 1}, Loc{0, 1}},
		{"into water", "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm .%.", nil, Loc{1, 1}, Loc{2, 1}},
		{"into food", "rows 3\ncols 3\nplayers 1\nm ...\nm .a*\nm ...", nil, Loc{1, 1}, Loc{1, 2}},
		{"onto dead ant", "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm .a.",
			func(w *World) { w.Get(2, 1).Alive = false }, Loc{1, 1}, Loc{2, 1}},
		{"off the right side", "rows 3\ncols 3\nplayers 1\nm ...\nm ..a\nm ...", nil, Loc{1, 2}, Loc{1, 3}},
		{"off the bottom side", "rows 3\ncols 3\nplayers 1\nm ...\nm ...\nm ..a", nil, Loc{2, 2}, Loc{3, 2}},
		{"same cell", "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm ...", nil, Loc{1, 1}, Loc{1, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := mustParse(t, tc.m)
			if tc.mut != nil {
				tc.mut(w)
			}
			src := w.Get(tc.from.Row, tc.from.Col)
			if w.MoveEntity(tc.from, tc.to) {
				t.Fatalf("expected move to be rejected")
			}
			if w.Get(tc.from.Row, tc.from.Col) != src {
				t.Fatalf("source cell changed despite rejected move")
			}
		})
	}
}

func TestMoveEntityCollisionKillsBothAnts(t *testing.T) {
	w := mustParse(t, "rows 3\ncols 3\nplayers 2\nm ...\nm .a.\nm .b.")

	if !w.MoveEntity(Loc{1, 1}, Loc{2, 1}) {
		t.Fatalf("a collision still counts as a move")
	}
	if e := w.Get(1, 1); e == nil || e.Alive {
		t.Fatalf("mover should be dead in place, got %+v", e)
	}
	if e := w.Get(2, 1); e == nil || e.Alive {
		t.Fatalf("occupant should be dead, got %+v", e)
	}
}

func TestMoveEntityCollisionKillsSamePlayerAnts(t *testing.T) {
	w := mustParse(t, "rows 3\ncols 3\nplayers 1\nm ...\nm .a.\nm .a.")

	if !w.MoveEntity(Loc{1, 1}, Loc{2, 1}) {
		t.Fatalf("a collision still counts as a move")
	}
	if w.Get(1, 1).Alive || w.Get(2, 1).Alive {
		t.Fatalf("both ants should be dead, even for the same player")
	}
}

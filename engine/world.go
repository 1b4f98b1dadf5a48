package engine

import (
	"fmt"
	"math"
)

// Loc is a 0-indexed (row, col) grid coordinate.
type Loc struct {
	Row int
	Col int
}

// Placed pairs an entity with the cell it occupies.
type Placed struct {
	E   *Entity
	Row int
	Col int
}

// World is a dense H×W grid of optional entities stored in a flat row-major
// buffer. Cell (r,c) lives at index r*width + c; nil means land.
type World struct {
	width   int
	height  int
	players int
	grid    []*Entity
	nextID  int // monotonically increasing ant id counter
}

// NewWorld creates an empty world of the given extents.
func NewWorld(width, height, players int) *World {
	return &World{
		width:   width,
		height:  height,
		players: players,
		grid:    make([]*Entity, width*height),
	}
}

func (w *World) Width() int   { return w.width }
func (w *World) Height() int  { return w.height }
func (w *World) Players() int { return w.players }

func (w *World) index(row, col int) int {
	return row*w.width + col
}

func (w *World) inBounds(row, col int) bool {
	return row >= 0 && row < w.height && col >= 0 && col < w.width
}

// Get returns the entity at (row, col), or nil for land.
func (w *World) Get(row, col int) *Entity {
	return w.grid[w.index(row, col)]
}

// Set places an entity at (row, col), replacing any occupant.
func (w *World) Set(row, col int, e *Entity) {
	w.grid[w.index(row, col)] = e
}

// Remove empties the cell at (row, col).
func (w *World) Remove(row, col int) {
	w.grid[w.index(row, col)] = nil
}

// newAntID mints the next ant identifier. IDs are assigned in row-major
// parse order and then in spawn order, so a seeded game reproduces the
// exact same id stream run after run.
func (w *World) newAntID() string {
	w.nextID++
	return fmt.Sprintf("a%d", w.nextID)
}

// all scans the grid in row-major order and returns every occupant the
// filter accepts. Linear scans are fine at the map sizes this engine
// targets (~15k cells).
func (w *World) all(filter func(*Entity) bool) []Placed {
	var out []Placed
	for i, e := range w.grid {
		if e != nil && filter(e) {
			out = append(out, Placed{E: e, Row: i / w.width, Col: i % w.width})
		}
	}
	return out
}

// Ants returns all ants on the grid, dead ones included.
func (w *World) Ants() []Placed {
	return w.all(func(e *Entity) bool { return e.Kind == KindAnt })
}

// Hills returns all hills currently on the grid. Hills underneath ants are
// not included; those are only reachable through the ant's OnHill snapshot.
func (w *World) Hills() []Placed {
	return w.all(func(e *Entity) bool { return e.Kind == KindHill })
}

// Food returns the positions of all food on the grid.
func (w *World) Food() []Loc {
	var out []Loc
	for i, e := range w.grid {
		if e != nil && e.Kind == KindFood {
			out = append(out, Loc{Row: i / w.width, Col: i % w.width})
		}
	}
	return out
}

// Land returns the positions of all empty cells.
func (w *World) Land() []Loc {
	var out []Loc
	for i, e := range w.grid {
		if e == nil {
			out = append(out, Loc{Row: i / w.width, Col: i % w.width})
		}
	}
	return out
}

// LandAround returns the empty cells in the 3×3 block around (row, col),
// clipped to the grid, in row-major order. The center cell is excluded.
func (w *World) LandAround(row, col int) []Loc {
	var out []Loc
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := row+dr, col+dc
			if (dr == 0 && dc == 0) || !w.inBounds(r, c) {
				continue
			}
			if w.Get(r, c) == nil {
				out = append(out, Loc{Row: r, Col: c})
			}
		}
	}
	return out
}

// FieldOfVision returns every entity within squared Euclidean distance
// radius2 of the center, scanning the clipped bounding square with an exact
// distance test per cell. The occupant of the center cell itself is
// excluded, but if that occupant is an ant on a hill the hill is yielded.
// An ant standing on a hill elsewhere in range yields both: hill first,
// then the ant.
func (w *World) FieldOfVision(row, col, radius2 int) []Placed {
	radius := int(math.Sqrt(float64(radius2)))
	var fov []Placed

	minRow := max(row-radius, 0)
	maxRow := min(row+radius, w.height-1)
	minCol := max(col-radius, 0)
	maxCol := min(col+radius, w.width-1)

	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			dr, dc := r-row, c-col
			if dr*dr+dc*dc > radius2 {
				continue
			}
			e := w.Get(r, c)
			if e == nil {
				continue
			}
			if e.OnHill != nil {
				hill := &Entity{Kind: KindHill, Player: e.OnHill.Player, Alive: e.OnHill.Alive}
				fov = append(fov, Placed{E: hill, Row: r, Col: c})
			}
			if r == row && c == col {
				continue
			}
			fov = append(fov, Placed{E: e, Row: r, Col: c})
		}
	}
	return fov
}

// MoveEntity moves the ant at from to to. It returns false without touching
// the grid when the move is invalid: from == to, either endpoint out of
// bounds, no live ant at the source, or the destination blocked by water,
// food, or a dead ant.
//
// Moving onto a live ant (of any player) kills both ants in place without
// relocating anything, and still counts as a move. Otherwise the ant is
// relocated: a hill at the destination is captured into the ant's OnHill
// snapshot, and a hill snapshot at the source is written back onto the grid.
func (w *World) MoveEntity(from, to Loc) bool {
	if !w.isValidMove(from, to) {
		return false
	}

	src := w.Get(from.Row, from.Col)
	dst := w.Get(to.Row, to.Col)

	// Collision: both ants die where they stand.
	if dst != nil && dst.Kind == KindAnt && dst.Alive {
		src.Alive = false
		dst.Alive = false
		return true
	}

	prev := src.OnHill
	src.OnHill = nil
	if dst != nil && dst.Kind == KindHill {
		src.OnHill = &HillRef{Player: dst.Player, Alive: dst.Alive}
	}
	w.Set(to.Row, to.Col, src)

	// Restore the hill the ant was standing on, if any.
	if prev != nil {
		w.Set(from.Row, from.Col, &Entity{Kind: KindHill, Player: prev.Player, Alive: prev.Alive})
	} else {
		w.Remove(from.Row, from.Col)
	}
	return true
}

func (w *World) isValidMove(from, to Loc) bool {
	if from == to {
		return false
	}
	if !w.inBounds(from.Row, from.Col) || !w.inBounds(to.Row, to.Col) {
		return false
	}

	src := w.Get(from.Row, from.Col)
	if src == nil || src.Kind != KindAnt || !src.Alive {
		return false
	}

	if dst := w.Get(to.Row, to.Col); dst != nil {
		// Water, food, and dead ants block movement.
		if dst.Kind == KindWater || dst.Kind == KindFood {
			return false
		}
		if dst.Kind == KindAnt && !dst.Alive {
			return false
		}
	}
	return true
}

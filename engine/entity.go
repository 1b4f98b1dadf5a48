package engine

// Kind discriminates the entity variants that can occupy a grid cell.
type Kind int

const (
	KindAnt Kind = iota
	KindHill
	KindFood
	KindWater
)

// Name returns the stable serialized name used in observations and replays.
func (k Kind) Name() string {
	switch k {
	case KindAnt:
		return "Ant"
	case KindHill:
		return "Hill"
	case KindFood:
		return "Food"
	case KindWater:
		return "Water"
	}
	return "Unknown"
}

// HillRef is a snapshot of the hill an ant is standing on. The hill leaves
// the grid while the ant occupies its cell; this snapshot is the only record
// of it until the ant moves off or dies.
type HillRef struct {
	Player int
	Alive  bool
}

// Entity is a tagged variant stored directly in the world grid.
// ID is set for ants only; Player and Alive apply to ants and hills;
// OnHill is set for an ant standing on a hill.
type Entity struct {
	Kind   Kind
	ID     string
	Player int
	Alive  bool
	OnHill *HillRef
}

// HasPlayer reports whether the entity belongs to a player.
func (e *Entity) HasPlayer() bool {
	return e.Kind == KindAnt || e.Kind == KindHill
}

// HasLiveness reports whether the entity carries an alive flag.
func (e *Entity) HasLiveness() bool {
	return e.Kind == KindAnt || e.Kind == KindHill
}

// Rune returns the map character for the entity, the same alphabet the
// parser consumes. Dead ants render as land; razed hills as 'X'.
func (e *Entity) Rune() rune {
	switch e.Kind {
	case KindAnt:
		if !e.Alive {
			return '.'
		}
		if e.OnHill != nil {
			return rune('A' + e.Player)
		}
		return rune('a' + e.Player)
	case KindHill:
		if !e.Alive {
			return 'X'
		}
		return rune('0' + e.Player)
	case KindFood:
		return '*'
	case KindWater:
		return '%'
	}
	return '!'
}

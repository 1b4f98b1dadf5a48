package engine

import (
	"errors"
	"math/rand"
)

// Misuse errors. Everything else inside a turn is either a configuration
// error caught at construction or a soft condition that is silently ignored.
var (
	ErrNotStarted = errors.New("game has not started: call Start first")
	ErrFinished   = errors.New("game is finished: call Start to begin a new game")
)

// Game runs one Ants match: it owns the world, the scores, the hive, and the
// seeded random source. A Game is not safe for concurrent use; drive it from
// a single caller.
type Game struct {
	world       *World
	mapContents string

	viewRadius2   int
	attackRadius2 int
	foodRadius2   int
	foodPerTurn   int
	maxTurns      int

	turn    int
	scores  []int
	hive    []int
	started bool

	finished       bool
	finishedReason FinishedReason

	cutoffThreshold      int
	turnsWithTooMuchFood int

	replay ReplaySink
	seed   int64
	rng    *rand.Rand
}

// NewGame validates the map and builds a game. The map is reparsed on every
// Start so the same Game can be replayed from scratch.
func NewGame(mapContents string, cfg Config) (*Game, error) {
	world, err := ParseMap(mapContents)
	if err != nil {
		return nil, err
	}

	replay := cfg.Replay
	if replay == nil {
		replay = NoopSink{}
	}

	return &Game{
		world:           world,
		mapContents:     mapContents,
		viewRadius2:     cfg.ViewRadius2,
		attackRadius2:   cfg.AttackRadius2,
		foodRadius2:     cfg.FoodRadius2,
		foodPerTurn:     cfg.FoodRate * world.Players(),
		maxTurns:        cfg.MaxTurns,
		scores:          make([]int, world.Players()),
		hive:            make([]int, world.Players()),
		cutoffThreshold: CutoffThreshold,
		replay:          replay,
		seed:            cfg.Seed,
		rng:             rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// World exposes the grid for rendering and tests.
func (g *Game) World() *World { return g.world }

// Turn returns the current turn number.
func (g *Game) Turn() int { return g.turn }

// Scores returns a copy of the per-player scores.
func (g *Game) Scores() []int { return append([]int(nil), g.scores...) }

// Hive returns a copy of the per-player food reserves.
func (g *Game) Hive() []int { return append([]int(nil), g.hive...) }

// Finished reports whether the game has ended, and why.
func (g *Game) Finished() (bool, FinishedReason) { return g.finished, g.finishedReason }

// Start resets the game to turn 0 and returns the initial observation:
// the map is reparsed, each player scores one point per live hill, up to
// three food items land around every hill, and one ant spawns on each hill.
// Start is idempotent; calling it again abandons the current match.
func (g *Game) Start() Observation {
	g.turn = 0
	g.started = true
	g.finished = false
	g.finishedReason = ""
	g.turnsWithTooMuchFood = 0
	g.scores = make([]int, g.world.Players())
	g.hive = make([]int, g.world.Players())
	g.rng = rand.New(rand.NewSource(g.seed))
	g.world, _ = ParseMap(g.mapContents) // validated at NewGame
	g.replay.Clear()

	g.computeInitialScores()
	g.spawnFoodAroundHills()
	g.spawnAnts(g.liveHills())

	g.replay.OnTurn(g.turn, g.liveAntCounts(), g.Hive(), g.Scores())

	return g.observation()
}

// Update advances the game one turn, applying every action in order and then
// resolving combat, razing, respawning, harvesting, replenishment, and the
// end-game check. The returned observation still contains this turn's dead
// ants; they are swept from the grid before the next turn.
func (g *Game) Update(actions []Action) (Observation, error) {
	if !g.started {
		return Observation{}, ErrNotStarted
	}
	if g.finished {
		return Observation{}, ErrFinished
	}

	g.turn++

	g.moveAnts(actions)
	g.attack()
	g.razeHills()
	g.spawnFromHive()
	g.harvestFood()
	g.replenishFood()
	g.checkEndgame()

	// Build the observation before sweeping the dead so agents see this
	// turn's casualties.
	obs := g.observation()
	g.removeDeadAnts()

	g.replay.OnTurn(g.turn, g.liveAntCounts(), g.Hive(), g.Scores())
	if g.finished {
		g.replay.OnEnd(g.finishedReason)
		_ = g.replay.Save()
	}

	return obs, nil
}

// --- start helpers ---

func (g *Game) computeInitialScores() {
	for player, hills := range g.liveHillsByPlayer() {
		g.scores[player] = len(hills)
	}
}

// spawnFoodAroundHills drops food on up to three random empty cells in each
// live hill's 3×3 neighborhood. Cells are collected before any food lands,
// so hills with overlapping neighborhoods may pick the same cell twice.
func (g *Game) spawnFoodAroundHills() {
	var picks []Loc
	for _, hill := range g.liveHills() {
		picks = append(picks, g.chooseLocs(g.world.LandAround(hill.Row, hill.Col), foodPerHillAtStart)...)
	}
	g.spawnFood(picks)
}

func (g *Game) spawnFood(locs []Loc) {
	for _, l := range locs {
		g.world.Set(l.Row, l.Col, &Entity{Kind: KindFood})
		g.replay.OnEvent(g.turn, spawnFoodEvent(l))
	}
}

func (g *Game) spawnAnts(hills []Placed) {
	for _, h := range hills {
		ant := &Entity{
			Kind:   KindAnt,
			ID:     g.world.newAntID(),
			Player: h.E.Player,
			Alive:  true,
			OnHill: &HillRef{Player: h.E.Player, Alive: true},
		}
		g.world.Set(h.Row, h.Col, ant)
		g.replay.OnEvent(g.turn, spawnAntEvent(ant.ID, ant.Player, Loc{Row: h.Row, Col: h.Col}))
	}
}

// --- turn phases, in resolution order ---

// moveAnts applies actions sequentially. An action naming an empty or
// non-ant cell is dropped; everything else goes through the movement
// primitive, which models simultaneous moves onto one cell as a collision
// that kills both ants.
func (g *Game) moveAnts(actions []Action) {
	for _, a := range actions {
		if !g.world.inBounds(a.Row, a.Col) {
			continue
		}
		occupant := g.world.Get(a.Row, a.Col)
		if occupant == nil || occupant.Kind != KindAnt {
			continue
		}

		from := Loc{Row: a.Row, Col: a.Col}
		to := from
		switch a.Direction {
		case North:
			if to.Row > 0 {
				to.Row--
			}
		case East:
			to.Col++
		case South:
			to.Row++
		case West:
			if to.Col > 0 {
				to.Col--
			}
		}

		id := occupant.ID
		if g.world.MoveEntity(from, to) {
			g.replay.OnEvent(g.turn, moveAntEvent(id, from, to))
		}
	}
}

// attack resolves combat with the focus rule as one atomic decision: every
// ant's enemy set is computed from the phase-start grid, then all deaths are
// applied together. An ant dies when it is focused on at least as many
// enemies as its least-focused enemy is.
func (g *Game) attack() {
	ants := g.liveAnts()

	enemies := make(map[string][]Placed, len(ants))
	for _, a := range ants {
		enemies[a.E.ID] = g.enemiesOf(a)
	}

	var toKill []Loc
	var attacks [][2]Loc

	for _, a := range ants {
		antEnemies := enemies[a.E.ID]
		focus := len(antEnemies)
		if focus == 0 {
			continue
		}

		// The enemy with the most attention to spare is the one with the
		// fewest enemies of its own.
		minEnemyFocus := len(enemies[antEnemies[0].E.ID])
		for _, e := range antEnemies[1:] {
			if n := len(enemies[e.E.ID]); n < minEnemyFocus {
				minEnemyFocus = n
			}
		}

		if focus >= minEnemyFocus {
			at := Loc{Row: a.Row, Col: a.Col}
			toKill = append(toKill, at)
			for _, e := range antEnemies {
				attacks = append(attacks, [2]Loc{{Row: e.Row, Col: e.Col}, at})
			}
		}
	}

	for _, l := range toKill {
		g.world.Get(l.Row, l.Col).Alive = false
	}
	for _, pair := range attacks {
		g.replay.OnEvent(g.turn, attackEvent(pair[0], pair[1]))
	}
}

func (g *Game) enemiesOf(a Placed) []Placed {
	var out []Placed
	for _, p := range g.world.FieldOfVision(a.Row, a.Col, g.attackRadius2) {
		if p.E.Kind == KindAnt && p.E.Alive && p.E.Player != a.E.Player {
			out = append(out, p)
		}
	}
	return out
}

// razeHills scores every live ant standing on a live enemy hill and flips
// the hill's snapshot to razed. The grid cell still holds the ant; the razed
// state flows back onto the grid when the ant leaves or dies.
func (g *Game) razeHills() {
	for _, a := range g.liveAnts() {
		hill := a.E.OnHill
		if hill == nil || !hill.Alive || hill.Player == a.E.Player {
			continue
		}
		g.scores[a.E.Player] += RazePoints
		g.scores[hill.Player] -= LossPoints
		hill.Alive = false
		g.replay.OnEvent(g.turn, removeHillEvent(Loc{Row: a.Row, Col: a.Col}))
	}
}

// spawnFromHive converts banked food into ants: each player spawns on up to
// hive[p] of their live hills, chosen at random without replacement.
func (g *Game) spawnFromHive() {
	for player, hills := range g.liveHillsByPlayer() {
		available := g.hive[player]
		if available == 0 || len(hills) == 0 {
			continue
		}
		chosen := g.choosePlaced(hills, available)
		g.hive[player] -= len(chosen)
		g.spawnAnts(chosen)
	}
}

// harvestFood resolves every food cell against the live ants around it.
// A single surrounding player consumes it into their hive through one ant
// that has not harvested yet this turn; multiple players destroy it
// uncredited; a lone player whose nearby ants have all harvested already
// leaves it in place.
func (g *Game) harvestFood() {
	harvested := make(map[Loc]bool)

	for _, f := range g.world.Food() {
		var around []Placed
		for _, p := range g.world.FieldOfVision(f.Row, f.Col, g.foodRadius2) {
			if p.E.Kind == KindAnt && p.E.Alive {
				around = append(around, p)
			}
		}
		if len(around) == 0 {
			continue
		}

		players := make(map[int]bool)
		for _, a := range around {
			players[a.E.Player] = true
		}

		if len(players) == 1 {
			canHarvest := false
			for _, a := range around {
				at := Loc{Row: a.Row, Col: a.Col}
				if harvested[at] {
					continue
				}
				g.hive[a.E.Player]++
				harvested[at] = true
				canHarvest = true
				break
			}
			if !canHarvest {
				continue
			}
		}

		g.world.Remove(f.Row, f.Col)
		g.replay.OnEvent(g.turn, removeFoodEvent(f))
	}
}

// replenishFood tops the map back up to foodPerTurn food, scattering the
// deficit over random land cells.
func (g *Game) replenishFood() {
	current := len(g.world.Food())
	if current >= g.foodPerTurn {
		return
	}
	g.spawnFood(g.chooseLocs(g.world.Land(), g.foodPerTurn-current))
}

// checkEndgame evaluates the four termination predicates in order; the
// first that holds ends the game.
func (g *Game) checkEndgame() {
	g.countTooMuchFood()

	switch {
	case g.turnsWithTooMuchFood >= g.cutoffThreshold:
		g.finish(TooMuchFood)
	case g.remainingPlayers() == 1:
		g.finish(LoneSurvivor)
	case g.rankStabilized():
		g.finish(RankStabilized)
	case g.turn >= g.maxTurns:
		g.finish(TurnLimitReached)
	}
}

func (g *Game) finish(reason FinishedReason) {
	g.finished = true
	g.finishedReason = reason
}

// countTooMuchFood tracks consecutive turns where food makes up 85% or more
// of everything edible-or-hungry on the map. Dead ants still on the grid
// count; they have not been swept yet.
func (g *Game) countTooMuchFood() {
	totalFood := len(g.world.Food())
	totalAnts := len(g.world.Ants())
	if totalFood+totalAnts > 0 && float64(totalFood)/float64(totalFood+totalAnts) >= TooMuchFoodRatio {
		g.turnsWithTooMuchFood++
	} else {
		g.turnsWithTooMuchFood = 0
	}
}

func (g *Game) remainingPlayers() int {
	players := make(map[int]bool)
	for _, a := range g.liveAnts() {
		players[a.E.Player] = true
	}
	return len(players)
}

// rankStabilized reports whether no trailing player could surpass the leader
// even in the best hypothetical: razing every other player's hills while
// keeping their own. The hypothetical overstates the challenger's upside, so
// ending on it is safely conservative.
func (g *Game) rankStabilized() bool {
	hillsByPlayer := g.liveHillsByPlayer()

	allTied := true
	for _, s := range g.scores[1:] {
		if s != g.scores[0] {
			allTied = false
			break
		}
	}
	if allTied {
		return false
	}

	leader, leaderScore := 0, g.scores[0]
	for p, s := range g.scores {
		if s > leaderScore {
			leader, leaderScore = p, s
		}
	}

	for player := 0; player < g.world.Players(); player++ {
		if player == leader {
			continue
		}
		score := g.scores[player]
		for other, hills := range hillsByPlayer {
			if other == player {
				continue
			}
			score += len(hills) * RazePoints
		}
		if score > leaderScore {
			return false
		}
	}
	return true
}

// removeDeadAnts sweeps last turn's casualties off the grid, restoring any
// hill a dead ant was standing on.
func (g *Game) removeDeadAnts() {
	for _, a := range g.world.Ants() {
		if a.E.Alive {
			continue
		}
		if hill := a.E.OnHill; hill != nil {
			g.world.Set(a.Row, a.Col, &Entity{Kind: KindHill, Player: hill.Player, Alive: hill.Alive})
		} else {
			g.world.Remove(a.Row, a.Col)
		}
		g.replay.OnEvent(g.turn, removeAntEvent(a.E.ID))
	}
}

// --- observation ---

// observation snapshots every live ant with its field of vision, grouped by
// player.
func (g *Game) observation() Observation {
	ants := make([][]AntView, g.world.Players())
	for i := range ants {
		ants[i] = []AntView{}
	}

	for _, a := range g.liveAnts() {
		fov := g.world.FieldOfVision(a.Row, a.Col, g.viewRadius2)
		views := make([]EntityView, 0, len(fov))
		for _, p := range fov {
			views = append(views, viewOf(p))
		}
		ants[a.E.Player] = append(ants[a.E.Player], AntView{
			ID:            a.E.ID,
			Row:           a.Row,
			Col:           a.Col,
			Player:        a.E.Player,
			Alive:         a.E.Alive,
			FieldOfVision: views,
		})
	}

	return Observation{
		Turn:           g.turn,
		Scores:         g.Scores(),
		Ants:           ants,
		Finished:       g.finished,
		FinishedReason: g.finishedReason,
	}
}

// --- scan helpers ---

func (g *Game) liveAnts() []Placed {
	return g.world.all(func(e *Entity) bool { return e.Kind == KindAnt && e.Alive })
}

func (g *Game) liveHills() []Placed {
	return g.world.all(func(e *Entity) bool { return e.Kind == KindHill && e.Alive })
}

func (g *Game) liveHillsByPlayer() [][]Placed {
	byPlayer := make([][]Placed, g.world.Players())
	for _, h := range g.liveHills() {
		byPlayer[h.E.Player] = append(byPlayer[h.E.Player], h)
	}
	return byPlayer
}

func (g *Game) liveAntCounts() []int {
	counts := make([]int, g.world.Players())
	for _, a := range g.liveAnts() {
		counts[a.E.Player]++
	}
	return counts
}

// chooseLocs picks up to n locations without replacement.
func (g *Game) chooseLocs(from []Loc, n int) []Loc {
	if n > len(from) {
		n = len(from)
	}
	out := make([]Loc, 0, n)
	for _, i := range g.rng.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}

// choosePlaced picks up to n placed entities without replacement.
func (g *Game) choosePlaced(from []Placed, n int) []Placed {
	if n > len(from) {
		n = len(from)
	}
	out := make([]Placed, 0, n)
	for _, i := range g.rng.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}

package engine

import (
	"fmt"
	"io"
)

// Render writes a plain-text frame of the game: a per-player summary line
// followed by the rune grid, using the same cell alphabet the parser reads.
func (g *Game) Render(w io.Writer) {
	fmt.Fprintf(w, "Players: %d\nTurn: %d\n", g.world.Players(), g.turn)

	counts := g.liveAntCounts()
	for player := 0; player < g.world.Players(); player++ {
		fmt.Fprintf(w, "Player %d: Score = %d, Ants = %d, Hive = %d\n",
			player, g.scores[player], counts[player], g.hive[player])
	}
	fmt.Fprintln(w)

	for row := 0; row < g.world.Height(); row++ {
		for col := 0; col < g.world.Width(); col++ {
			ch := '.'
			if e := g.world.Get(row, col); e != nil {
				ch = e.Rune()
			}
			fmt.Fprintf(w, "%c", ch)
		}
		fmt.Fprintln(w)
	}
}

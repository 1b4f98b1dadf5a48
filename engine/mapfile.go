package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Map text format:
//
//	rows <H>
//	cols <W>
//	players <P>
//	m <row 0 chars, length W>
//	m <row 1 chars, length W>
//	...
//
// Cell alphabet: '.' land, '%' water, '*' food, '0'..'9' hill of that player,
// 'a'..'j' ant of player 0..9, 'A'..'J' ant of player 0..9 on its own hill.

var (
	dimsRe    = regexp.MustCompile(`rows (\d+)\s+cols (\d+)`)
	playersRe = regexp.MustCompile(`players (\d+)`)
	rowRe     = regexp.MustCompile(`m (.*)`)
)

// parseHeader extracts the rows/cols/players header from map contents.
func parseHeader(contents string) (rows, cols, players int, err error) {
	dims := dimsRe.FindStringSubmatch(contents)
	if dims == nil {
		return 0, 0, 0, fmt.Errorf("map header missing rows/cols")
	}
	rows, _ = strconv.Atoi(dims[1])
	cols, _ = strconv.Atoi(dims[2])

	p := playersRe.FindStringSubmatch(contents)
	if p == nil {
		return 0, 0, 0, fmt.Errorf("map header missing players")
	}
	players, _ = strconv.Atoi(p[1])

	if rows <= 0 || cols <= 0 {
		return 0, 0, 0, fmt.Errorf("map dimensions must be positive, got %dx%d", rows, cols)
	}
	if players < 1 || players > MaxPlayers {
		return 0, 0, 0, fmt.Errorf("players must be between 1 and %d, got %d", MaxPlayers, players)
	}
	return rows, cols, players, nil
}

// ParseMap builds a World from map text. It returns an error for a malformed
// header, a grid that does not match the declared dimensions, an unknown cell
// character, or an entity owned by a player outside the declared range.
func ParseMap(contents string) (*World, error) {
	rows, cols, players, err := parseHeader(contents)
	if err != nil {
		return nil, err
	}

	lines := rowRe.FindAllStringSubmatch(contents, -1)
	if len(lines) != rows {
		return nil, fmt.Errorf("map declares %d rows but has %d", rows, len(lines))
	}

	w := NewWorld(cols, rows, players)
	for row, m := range lines {
		line := strings.TrimSpace(m[1])
		if len(line) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d", row, len(line), cols)
		}
		for col, ch := range line {
			e, err := w.entityFromRune(ch)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", row, col, err)
			}
			if e == nil {
				continue
			}
			if e.HasPlayer() && e.Player >= players {
				return nil, fmt.Errorf("row %d col %d: player %d out of range for %d players", row, col, e.Player, players)
			}
			w.Set(row, col, e)
		}
	}
	return w, nil
}

// entityFromRune decodes one map character. Land decodes to nil.
func (w *World) entityFromRune(ch rune) (*Entity, error) {
	switch {
	case ch == '.':
		return nil, nil
	case ch == '%':
		return &Entity{Kind: KindWater}, nil
	case ch == '*':
		return &Entity{Kind: KindFood}, nil
	case ch >= '0' && ch <= '9':
		return &Entity{Kind: KindHill, Player: int(ch - '0'), Alive: true}, nil
	case ch >= 'a' && ch <= 'j':
		return &Entity{Kind: KindAnt, ID: w.newAntID(), Player: int(ch - 'a'), Alive: true}, nil
	case ch >= 'A' && ch <= 'J':
		player := int(ch - 'A')
		return &Entity{
			Kind:   KindAnt,
			ID:     w.newAntID(),
			Player: player,
			Alive:  true,
			OnHill: &HillRef{Player: player, Alive: true},
		}, nil
	}
	return nil, fmt.Errorf("unknown map character %q", ch)
}

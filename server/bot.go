package main

import (
	"math/rand"

	"ants-server/engine"
)

// Bot drives one player's colony with a greedy food walk: every ant heads
// toward the nearest food it can see, or wanders randomly when none is in
// view. The engine silently rejects blocked moves, so bots don't need to
// reason about water or each other.
type Bot struct {
	player int
	rng    *rand.Rand
}

// NewBot creates a bot for the given player. Seeding per player keeps the
// whole match reproducible alongside the engine's own seed.
func NewBot(player int, seed int64) *Bot {
	return &Bot{
		player: player,
		rng:    rand.New(rand.NewSource(seed + int64(player))),
	}
}

// Act returns one action per live ant of the bot's player.
func (b *Bot) Act(obs engine.Observation) []engine.Action {
	if b.player >= len(obs.Ants) {
		return nil
	}

	actions := make([]engine.Action, 0, len(obs.Ants[b.player]))
	for _, ant := range obs.Ants[b.player] {
		actions = append(actions, engine.Action{
			Row:       ant.Row,
			Col:       ant.Col,
			Direction: b.direction(ant),
		})
	}
	return actions
}

// direction picks the step for one ant: toward the closest visible food,
// otherwise a uniformly random compass direction.
func (b *Bot) direction(ant engine.AntView) engine.Direction {
	bestDist := -1
	var target *engine.EntityView
	for i, v := range ant.FieldOfVision {
		if v.Name != "Food" {
			continue
		}
		dr, dc := v.Row-ant.Row, v.Col-ant.Col
		if d := dr*dr + dc*dc; bestDist < 0 || d < bestDist {
			bestDist = d
			target = &ant.FieldOfVision[i]
		}
	}

	if target != nil {
		switch {
		case target.Row < ant.Row:
			return engine.North
		case target.Row > ant.Row:
			return engine.South
		case target.Col > ant.Col:
			return engine.East
		case target.Col < ant.Col:
			return engine.West
		}
	}

	return engine.Direction(b.rng.Intn(4))
}

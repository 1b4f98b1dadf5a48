package main

import (
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/sirupsen/logrus"

	"ants-server/engine"
)

// Match drives one game at a fixed tick rate and broadcasts each turn's
// observation to spectators. The engine instance is confined to the match
// goroutine; spectator reads go through the lastObs snapshot.
type Match struct {
	game     *engine.Game
	bots     []*Bot
	conns    *ConnManager
	interval time.Duration

	mu      sync.RWMutex
	lastObs engine.Observation
}

// NewMatch creates a match bound to a game and spectator pool, with one bot
// per player.
func NewMatch(game *engine.Game, conns *ConnManager, players int, seed int64, interval time.Duration) *Match {
	bots := make([]*Bot, players)
	for p := range bots {
		bots[p] = NewBot(p, seed)
	}
	return &Match{
		game:     game,
		bots:     bots,
		conns:    conns,
		interval: interval,
	}
}

// Run plays the match to completion. Blocks until the game finishes or done
// closes.
func (m *Match) Run(done <-chan struct{}) {
	obs := m.game.Start()
	m.store(obs)
	m.broadcast(obs)
	logrus.WithFields(logrus.Fields{
		"players": len(m.bots),
		"tick":    m.interval,
	}).Info("match started")

	for range channerics.NewTicker(done, m.interval) {
		obs, err := m.tick()
		if err != nil {
			logrus.WithError(err).Error("match update failed")
			return
		}
		if obs.Finished {
			m.finish(obs)
			return
		}
	}
}

// tick collects every bot's actions against the last observation and
// advances the game one turn.
func (m *Match) tick() (engine.Observation, error) {
	var actions []engine.Action
	for _, bot := range m.bots {
		actions = append(actions, bot.Act(m.snapshot())...)
	}

	obs, err := m.game.Update(actions)
	if err != nil {
		return engine.Observation{}, err
	}

	m.store(obs)
	m.broadcast(obs)
	return obs, nil
}

func (m *Match) finish(obs engine.Observation) {
	logrus.WithFields(logrus.Fields{
		"turn":   obs.Turn,
		"reason": obs.FinishedReason,
		"scores": obs.Scores,
	}).Info("match finished")

	for _, c := range m.conns.Snapshot() {
		_ = c.Send(EndMsg{
			Type:   MsgEnd,
			Reason: string(obs.FinishedReason),
			Scores: obs.Scores,
		})
	}
}

func (m *Match) store(obs engine.Observation) {
	m.mu.Lock()
	m.lastObs = obs
	m.mu.Unlock()
}

// snapshot returns the most recent observation.
func (m *Match) snapshot() engine.Observation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastObs
}

// Status reports the match state for the HTTP status endpoint.
func (m *Match) Status() StatusResponse {
	obs := m.snapshot()
	return StatusResponse{
		Turn:       obs.Turn,
		Scores:     obs.Scores,
		Finished:   obs.Finished,
		Reason:     string(obs.FinishedReason),
		Spectators: m.conns.Count(),
	}
}

// broadcast sends the observation to every connected spectator.
func (m *Match) broadcast(obs engine.Observation) {
	for _, c := range m.conns.Snapshot() {
		if err := c.Send(StateMsg{Type: MsgState, Observation: obs}); err != nil {
			logrus.WithField("spectator", c.ID).WithError(err).Warn("send error")
		}
	}
}

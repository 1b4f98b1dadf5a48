package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/emirpasic/gods/maps/treemap"
)

// EventType names a replay event kind.
type EventType string

const (
	EventSpawn  EventType = "Spawn"
	EventRemove EventType = "Remove"
	EventMove   EventType = "Move"
	EventAttack EventType = "Attack"
)

// Event is a single structured replay entry. Locations serialize as
// [row, col] pairs.
type Event struct {
	Type        EventType `json:"event_type"`
	Entity      string    `json:"entity"`
	EntityID    string    `json:"entity_id,omitempty"`
	Player      *int      `json:"player,omitempty"`
	Location    *[2]int   `json:"location,omitempty"`
	Destination *[2]int   `json:"destination,omitempty"`
}

func locPair(l Loc) *[2]int {
	return &[2]int{l.Row, l.Col}
}

func spawnAntEvent(id string, player int, at Loc) Event {
	return Event{Type: EventSpawn, Entity: "Ant", EntityID: id, Player: &player, Location: locPair(at)}
}

func spawnFoodEvent(at Loc) Event {
	return Event{Type: EventSpawn, Entity: "Food", Location: locPair(at)}
}

func removeAntEvent(id string) Event {
	return Event{Type: EventRemove, Entity: "Ant", EntityID: id}
}

func removeHillEvent(at Loc) Event {
	return Event{Type: EventRemove, Entity: "Hill", Location: locPair(at)}
}

func removeFoodEvent(at Loc) Event {
	return Event{Type: EventRemove, Entity: "Food", Location: locPair(at)}
}

func moveAntEvent(id string, from, to Loc) Event {
	return Event{Type: EventMove, Entity: "Ant", EntityID: id, Location: locPair(from), Destination: locPair(to)}
}

func attackEvent(from, to Loc) Event {
	return Event{Type: EventAttack, Entity: "Ant", Location: locPair(from), Destination: locPair(to)}
}

// ReplaySink receives the structured history of a game. Implementations must
// tolerate being driven from Start over and over: Clear resets any buffered
// state. Save is called once, after the final turn of a finished game.
type ReplaySink interface {
	OnTurn(turn int, antsPerPlayer, hive, scores []int)
	OnEvent(turn int, ev Event)
	OnEnd(reason FinishedReason)
	Clear()
	Save() error
}

// NoopSink discards everything.
type NoopSink struct{}

func (NoopSink) OnTurn(int, []int, []int, []int) {}
func (NoopSink) OnEvent(int, Event)              {}
func (NoopSink) OnEnd(FinishedReason)            {}
func (NoopSink) Clear()                          {}
func (NoopSink) Save() error                     { return nil }

// turnRecord is one saved turn: the per-player tallies plus every event the
// turn produced.
type turnRecord struct {
	Turn   int     `json:"turn"`
	Ants   []int   `json:"ants"`
	Hive   []int   `json:"hive"`
	Scores []int   `json:"scores"`
	Events []Event `json:"events"`
}

// JSONSink buffers the whole game in memory and writes a single JSON replay
// file on Save. Events are bucketed per turn in an ordered map so the saved
// output is stable.
type JSONSink struct {
	path        string
	players     int
	rows, cols  int
	mapContents string

	turns  []turnRecord
	events *treemap.Map // turn -> []Event, ordered by turn
	reason FinishedReason
}

// NewJSONSink creates a sink writing to path. The map contents are parsed for
// the header so the replay is self-describing.
func NewJSONSink(path, mapContents string) (*JSONSink, error) {
	rows, cols, players, err := parseHeader(mapContents)
	if err != nil {
		return nil, fmt.Errorf("replay sink: %w", err)
	}
	return &JSONSink{
		path:        path,
		players:     players,
		rows:        rows,
		cols:        cols,
		mapContents: mapContents,
		events:      treemap.NewWithIntComparator(),
	}, nil
}

func (s *JSONSink) OnTurn(turn int, antsPerPlayer, hive, scores []int) {
	s.turns = append(s.turns, turnRecord{Turn: turn, Ants: antsPerPlayer, Hive: hive, Scores: scores})
}

func (s *JSONSink) OnEvent(turn int, ev Event) {
	var bucket []Event
	if v, ok := s.events.Get(turn); ok {
		bucket = v.([]Event)
	}
	s.events.Put(turn, append(bucket, ev))
}

func (s *JSONSink) OnEnd(reason FinishedReason) {
	s.reason = reason
}

func (s *JSONSink) Clear() {
	s.turns = nil
	s.events = treemap.NewWithIntComparator()
	s.reason = ""
}

// Save writes the buffered replay to the sink's path.
func (s *JSONSink) Save() error {
	type mapInfo struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Contents string `json:"contents"`
	}
	type replayFile struct {
		Players        int          `json:"players"`
		Map            mapInfo      `json:"map"`
		Turns          []turnRecord `json:"turns"`
		FinishedReason string       `json:"finished_reason,omitempty"`
	}

	turns := make([]turnRecord, len(s.turns))
	for i, t := range s.turns {
		t.Events = []Event{}
		if v, ok := s.events.Get(t.Turn); ok {
			t.Events = v.([]Event)
		}
		turns[i] = t
	}

	data, err := json.MarshalIndent(replayFile{
		Players:        s.players,
		Map:            mapInfo{Width: s.cols, Height: s.rows, Contents: s.mapContents},
		Turns:          turns,
		FinishedReason: string(s.reason),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

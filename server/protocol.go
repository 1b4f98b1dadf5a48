package main

import "ants-server/engine"

// Protocol uses a single-character "t" field to tag message types.
//
//	Server → Client:
//	  "w" = welcome {"t":"w","i":"id","r":rows,"c":cols,"p":players}
//	  "s" = state   {"t":"s","o":{observation}}
//	  "e" = end     {"t":"e","r":"LoneSurvivor","s":[scores]}
//
// Spectators never send messages; anything received is discarded.

// Message type identifiers
const (
	MsgWelcome = "w"
	MsgState   = "s"
	MsgEnd     = "e"
)

// WelcomeMsg is sent to a spectator immediately on connect.
type WelcomeMsg struct {
	Type    string `json:"t"`
	ID      string `json:"i"`
	Rows    int    `json:"r"`
	Cols    int    `json:"c"`
	Players int    `json:"p"`
}

// StateMsg is the per-turn update carrying the full observation.
type StateMsg struct {
	Type        string             `json:"t"`
	Observation engine.Observation `json:"o"`
}

// EndMsg is sent once when the match finishes.
type EndMsg struct {
	Type   string `json:"t"`
	Reason string `json:"r"`
	Scores []int  `json:"s"`
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	Turn       int    `json:"turn"`
	Scores     []int  `json:"scores"`
	Finished   bool   `json:"finished"`
	Reason     string `json:"reason,omitempty"`
	Spectators int    `json:"spectators"`
}

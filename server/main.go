package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ants-server/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Spectators are read-only; any origin may watch
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type options struct {
	addr          string
	mapPath       string
	seed          int64
	viewRadius2   int
	attackRadius2 int
	foodRadius2   int
	foodRate      int
	maxTurns      int
	tick          time.Duration
	replayPath    string
	verbose       bool
}

func main() {
	var opts options

	root := &cobra.Command{
		Use:   "ants-server",
		Short: "Run a seeded ants match and stream it to WebSocket spectators",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
		SilenceUsage: true,
	}

	root.Flags().StringVar(&opts.addr, "addr", DefaultAddr, "listen address")
	root.Flags().StringVar(&opts.mapPath, "map", "", "path to the map file (required)")
	root.Flags().Int64Var(&opts.seed, "seed", 0, "random seed for the match")
	root.Flags().IntVar(&opts.viewRadius2, "view-radius2", DefaultViewRadius2, "field of vision radius, squared")
	root.Flags().IntVar(&opts.attackRadius2, "attack-radius2", DefaultAttackRadius2, "attack radius, squared")
	root.Flags().IntVar(&opts.foodRadius2, "food-radius2", DefaultFoodRadius2, "harvest radius, squared")
	root.Flags().IntVar(&opts.foodRate, "food-rate", DefaultFoodRate, "food per player kept on the map")
	root.Flags().IntVar(&opts.maxTurns, "max-turns", DefaultMaxTurns, "turn limit")
	root.Flags().DurationVar(&opts.tick, "tick", DefaultTickInterval, "time between turns")
	root.Flags().StringVar(&opts.replayPath, "replay", "", "write a JSON replay to this path")
	root.Flags().BoolVar(&opts.verbose, "verbose", false, "debug logging")
	_ = root.MarkFlagRequired("map")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	mapContents, err := os.ReadFile(opts.mapPath)
	if err != nil {
		return err
	}

	cfg := engine.Config{
		ViewRadius2:   opts.viewRadius2,
		AttackRadius2: opts.attackRadius2,
		FoodRadius2:   opts.foodRadius2,
		FoodRate:      opts.foodRate,
		MaxTurns:      opts.maxTurns,
		Seed:          opts.seed,
	}
	if opts.replayPath != "" {
		sink, err := engine.NewJSONSink(opts.replayPath, string(mapContents))
		if err != nil {
			return err
		}
		cfg.Replay = sink
	}

	game, err := engine.NewGame(string(mapContents), cfg)
	if err != nil {
		return err
	}

	// Capture the grid shape up front: the world is rebuilt on Start, and the
	// match goroutine owns the game from then on.
	rows, cols, players := game.World().Height(), game.World().Width(), game.World().Players()

	conns := NewConnManager()
	match := NewMatch(game, conns, players, opts.seed, opts.tick)

	router := mux.NewRouter()
	router.HandleFunc(WebSocketPath, func(w http.ResponseWriter, r *http.Request) {
		serveSpectator(w, r, rows, cols, players, conns)
	})
	router.HandleFunc(StatusPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(match.Status())
	}).Methods(http.MethodGet)
	router.HandleFunc(ReplayPath, func(w http.ResponseWriter, r *http.Request) {
		if opts.replayPath == "" {
			http.Error(w, "replays disabled", http.StatusNotFound)
			return
		}
		if _, err := os.Stat(opts.replayPath); err != nil {
			http.Error(w, "replay not written yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, opts.replayPath)
	}).Methods(http.MethodGet)

	done := make(chan struct{})
	defer close(done)
	go match.Run(done)

	logrus.WithFields(logrus.Fields{
		"addr": opts.addr,
		"map":  opts.mapPath,
		"seed": opts.seed,
	}).Info("server listening")

	return http.ListenAndServe(opts.addr, handlers.CombinedLoggingHandler(logrus.StandardLogger().Writer(), router))
}

// serveSpectator upgrades the request, sends the welcome frame, and blocks
// until the spectator disconnects.
func serveSpectator(w http.ResponseWriter, r *http.Request, rows, cols, players int, conns *ConnManager) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws upgrade error")
		return
	}

	if conns.Count() >= MaxSpectators {
		ws.Close()
		return
	}

	conn := NewConn(ws)
	conns.Add(conn)
	logrus.WithField("spectator", conn.ID).Info("spectator connected")

	_ = conn.Send(WelcomeMsg{
		Type:    MsgWelcome,
		ID:      conn.ID,
		Rows:    rows,
		Cols:    cols,
		Players: players,
	})

	conn.ReadLoop(func(c *Conn) {
		conns.Remove(c.ID)
		logrus.WithField("spectator", c.ID).Info("spectator disconnected")
	})
}

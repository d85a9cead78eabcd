package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridscout/agent"
	"github.com/lixenwraith/gridscout/audio"
	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/config"
	"github.com/lixenwraith/gridscout/engine"
	"github.com/lixenwraith/gridscout/eventlog"
	"github.com/lixenwraith/gridscout/grid"
	"github.com/lixenwraith/gridscout/maze"
	"github.com/lixenwraith/gridscout/remote"
	"github.com/lixenwraith/gridscout/render"
)

var (
	configFlag = flag.String("config", "", "YAML configuration file")
	mapFlag    = flag.String("map", "", "Map document (overrides config)")
	agentFlag  = flag.String("agent", "", "Agent: walker, script, remote, none")
	scriptFlag = flag.String("script", "", "Lua agent script (implies -agent script)")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/gridscout.log")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridscout: %v\n", err)
		os.Exit(1)
	}

	logDir = cfg.Log.Dir
	maxLogSize = int64(cfg.Log.MaxSizeMB) * 1024 * 1024
	if logFile := setupLogging(cfg.Log.Debug); logFile != nil {
		defer logFile.Close()
	}

	if err := run(cfg); err != nil {
		log.Printf("exit: %v", err)
		fmt.Fprintf(os.Stderr, "gridscout: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, GRIDSCOUT_* variables and flags
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.Getenv)

	if *mapFlag != "" {
		cfg.Map.Path = *mapFlag
	}
	if *scriptFlag != "" {
		cfg.Agent.Script = *scriptFlag
		cfg.Agent.Mode = config.AgentScript
	}
	if *agentFlag != "" {
		cfg.Agent.Mode = *agentFlag
	}
	if *debugFlag {
		cfg.Log.Debug = true
	}
	return cfg, cfg.Validate()
}

// loadLayout reads the configured map or generates a maze
func loadLayout(cfg config.Config) (*grid.Layout, error) {
	if cfg.Map.Path != "" {
		return grid.LoadLayout(cfg.Map.Path)
	}
	res, err := maze.Generate(maze.Config{
		Width:    cfg.Map.Maze.Width,
		Height:   cfg.Map.Maze.Height,
		Braiding: cfg.Map.Maze.Braiding,
		Seed:     cfg.Map.Maze.Seed,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("generated maze %q seed %d", res.Layout.Name(), res.Seed)
	return res.Layout, nil
}

// newPathfinder builds the agent collaborator for cfg.Agent.Mode
// The returned stop function releases listeners and is always non-nil
func newPathfinder(cfg config.Config, layout *grid.Layout) (engine.Pathfinder, func(), error) {
	noop := func() {}
	walkerCfg := agent.WalkerConfig{
		Interval: cfg.Agent.Interval,
		Energy:   cfg.Agent.Energy,
		Diagonal: cfg.Agent.Diagonal,
	}

	switch cfg.Agent.Mode {
	case config.AgentWalker:
		return agent.NewWalker(layout, walkerCfg), noop, nil

	case config.AgentScript:
		s, err := agent.LoadScript(layout, cfg.Agent.Script, walkerCfg)
		if err != nil {
			return nil, noop, err
		}
		if err := s.Validate(); err != nil {
			return nil, noop, err
		}
		log.Printf("script agent %q loaded", s.Name())
		return s, noop, nil

	case config.AgentRemote:
		hub := remote.NewHub(layout, newLogger("[remote] "))
		mux := http.NewServeMux()
		mux.Handle(cfg.Remote.Path, hub.Handler())

		ln, err := net.Listen("tcp", cfg.Remote.Listen)
		if err != nil {
			return nil, noop, fmt.Errorf("remote listen: %w", err)
		}
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("remote server: %v", err)
			}
		}()
		log.Printf("waiting for agents on ws://%s%s", ln.Addr(), cfg.Remote.Path)

		stop := func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}
		return hub, stop, nil

	default:
		return nil, noop, nil
	}
}

// alerts fans a rejection out to every sink
type alerts []engine.Alerter

func (a alerts) Alert(msg string) {
	for _, s := range a {
		s.Alert(msg)
	}
}

func run(cfg config.Config) error {
	layout, err := loadLayout(cfg)
	if err != nil {
		return err
	}
	finder, stopFinder, err := newPathfinder(cfg, layout)
	if err != nil {
		return err
	}
	defer stopFinder()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	// Normal exit terminal cleanup
	defer screen.Fini()

	// Restore the terminal before reporting a crash
	defer func() {
		if r := recover(); r != nil {
			crash(screen, "GRIDSCOUT CRASHED", r)
		}
	}()

	events := eventlog.New(eventlog.DefaultCapacity, newLogger("[board] "))
	b := board.New(layout, nil, events)
	view := render.NewView(screen, b, events, fmt.Sprintf("gridscout: %s (%s)", layout.Name(), cfg.Agent.Mode))
	b.SetRenderer(view)

	cues := audio.NewCues(cfg.Audio, newLogger("[audio] "))
	if err := cues.Init(); err != nil {
		log.Printf("continuing without audio: %v", err)
	}
	defer cues.Close()

	events.Subscribe(func(e eventlog.Entry) {
		view.Log(e.Notice)
		cues.Log(e.Notice)
	})

	eng := engine.New(b, engine.Options{
		QueueSize:  cfg.Queue.Size,
		Pathfinder: finder,
		Alerter:    alerts{view, cues},
		View:       view,
		Logger:     newLogger("[engine] "),
	})
	view.Redraw()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Input polling uses a raw goroutine as it interacts directly with the terminal
	go func() {
		defer func() {
			if r := recover(); r != nil {
				crash(screen, "EVENT POLLER CRASHED", r)
			}
		}()
		in := &input{view: view}
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// Screen finalized
				cancel()
				return
			}
			if e, ok := in.translate(ev); ok {
				// Wait out a full queue so Reset and Quit are never lost
				if err := eng.PostWait(ctx, e); err != nil {
					return
				}
			}
		}
	}()

	err = eng.Run(ctx)
	log.Printf("engine stopped after %d runs, %d events dropped", eng.Generation(), eng.Dropped())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func crash(screen tcell.Screen, what string, r any) {
	screen.Fini()
	log.Printf("%s: %v\n%s", what, r, debug.Stack())
	fmt.Fprintf(os.Stderr, "\n\x1b[31m%s: %v\x1b[0m\n", what, r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Exit(1)
}

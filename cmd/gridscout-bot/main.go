package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/gridscout/agent"
	"github.com/lixenwraith/gridscout/remote"
)

func main() {
	url := flag.String("url", "ws://127.0.0.1:8765/agent", "gridscout hub URL")
	name := flag.String("name", "gridscout-bot", "Agent name sent in HELLO")
	interval := flag.Duration("interval", agent.DefaultInterval, "Delay between steps")
	energy := flag.Int("energy", agent.DefaultEnergy, "Step budget per run")
	diagonal := flag.Bool("diagonal", false, "Allow diagonal moves")
	script := flag.String("script", "", "Lua step script instead of the flow-field walker")
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := remote.Dial(dialCtx, *url, *name, logger)
	cancel()
	if err != nil {
		logger.Fatalf("connect %s: %v", *url, err)
	}
	defer client.Close()

	cfg := agent.WalkerConfig{Interval: *interval, Energy: *energy, Diagonal: *diagonal}
	var driver remote.Driver = agent.NewWalker(client.Layout(), cfg)
	if *script != "" {
		s, err := agent.LoadScript(client.Layout(), *script, cfg)
		if err != nil {
			logger.Fatalf("script: %v", err)
		}
		if err := s.Validate(); err != nil {
			logger.Fatalf("script: %v", err)
		}
		driver = s
	}

	err = client.Serve(ctx, driver)
	switch {
	case err == nil:
		logger.Printf("hub closed the session")
	case errors.Is(err, context.Canceled):
		logger.Printf("interrupted")
	default:
		logger.Fatalf("session: %v", err)
	}
}

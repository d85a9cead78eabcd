package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/grid"
	"github.com/lixenwraith/gridscout/navigation"
)

var (
	ErrUnreachable = errors.New("target unreachable from start")
	ErrExhausted   = errors.New("agent ran out of energy")
)

// Default walker tuning
const (
	DefaultInterval = 120 * time.Millisecond
	DefaultEnergy   = 1000
)

// WalkerConfig tunes a Walker; zero fields take defaults
type WalkerConfig struct {
	Interval time.Duration // Delay between steps
	Energy   int           // Step budget, one unit per move
	Diagonal bool
}

// Walker follows a flow field toward the target one cell per tick
type Walker struct {
	m   grid.Map
	cfg WalkerConfig
}

// NewWalker creates a walker over m
func NewWalker(m grid.Map, cfg WalkerConfig) *Walker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Energy <= 0 {
		cfg.Energy = DefaultEnergy
	}
	return &Walker{m: m, cfg: cfg}
}

// Start walks from start to end, reporting each step to obs
// The final step carries targetReached=true exactly once
func (w *Walker) Start(ctx context.Context, start, end grid.Coord, obs board.PositionObserver) error {
	field := navigation.NewFlowField(w.m, w.cfg.Diagonal)
	if !field.Compute(end) || field.Distance(start) < 0 {
		return fmt.Errorf("%w: %s -> %s", ErrUnreachable, start, end)
	}

	energy := w.cfg.Energy
	if start == end {
		obs.OnPositionUpdated(start, end, true, energy)
		return nil
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	cur := start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if energy == 0 {
			return fmt.Errorf("%w at %s", ErrExhausted, cur)
		}
		next, ok := field.Next(cur)
		if !ok {
			return fmt.Errorf("%w: stuck at %s", ErrUnreachable, cur)
		}
		energy--

		reached := next == end
		obs.OnPositionUpdated(cur, next, reached, energy)
		if reached {
			return nil
		}
		cur = next
	}
}

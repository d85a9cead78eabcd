package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/event"
	"github.com/lixenwraith/gridscout/grid"
)

// Pathfinder drives an agent from start to end, reporting each step to obs
// Start blocks until the agent finishes, fails or ctx is cancelled
// obs may be called from any goroutine
type Pathfinder interface {
	Start(ctx context.Context, start, end grid.Coord, obs board.PositionObserver) error
}

// ErrBadPayload rejects an event whose payload does not match its type
var ErrBadPayload = errors.New("event payload does not match type")

// Alerter shows a rejected operation to the user
type Alerter interface {
	Alert(msg string)
}

// Options configures an Engine; zero values are usable
type Options struct {
	QueueSize  int
	Pathfinder Pathfinder     // Nil runs without an agent
	Alerter    Alerter        // Nil drops alerts after logging
	View       board.Renderer // Receives full redraws on EventRefresh
	Logger     *log.Logger
}

// Engine owns the board and serializes every mutation onto the goroutine running Run
//
// Architecture:
//   - Producers (input loop, pathfinder goroutines, websocket readers) only Post
//   - Run drains the queue and routes events to handlers in FIFO order
//   - Each successful Run event starts a new generation; updates from older
//     generations are dropped before reaching the board
type Engine struct {
	board  *board.Board
	queue  *event.Queue
	router *event.Router[*Engine]

	finder Pathfinder
	alert  Alerter
	view   board.Renderer
	logger *log.Logger

	parent     context.Context
	generation uint64
	cancel     context.CancelFunc
	failed     chan runFailure
	wg         sync.WaitGroup
	quit       bool
}

type runFailure struct {
	generation uint64
	err        error
}

// New creates an engine around b and registers the default handlers
func New(b *board.Board, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	q := event.NewQueue(opts.QueueSize)
	e := &Engine{
		board:  b,
		queue:  q,
		router: event.NewRouter[*Engine](q),
		finder: opts.Pathfinder,
		alert:  opts.Alerter,
		view:   opts.View,
		logger: logger,
		parent: context.Background(),
		failed: make(chan runFailure, 4),
	}

	e.router.Register(placementHandler{})
	e.router.Register(updateHandler{})
	e.router.Register(event.HandlerFunc[*Engine]{
		Types: []event.EventType{event.EventRefresh},
		Fn:    func(e *Engine, _ event.Event) { e.refresh() },
	})
	e.router.Register(event.HandlerFunc[*Engine]{
		Types: []event.EventType{event.EventQuit},
		Fn:    func(e *Engine, _ event.Event) { e.quit = true },
	})
	return e
}

// Board returns the owned board; only touch it from handlers or after Run returns
func (e *Engine) Board() *board.Board { return e.board }

// Generation returns the current run generation
func (e *Engine) Generation() uint64 { return e.generation }

// Dropped returns the number of events rejected by a full queue
func (e *Engine) Dropped() uint64 { return e.queue.Dropped() }

// Post enqueues ev from any goroutine without blocking
// Returns false when the payload does not match the type or the queue is full
func (e *Engine) Post(ev event.Event) bool {
	if !event.ValidPayload(ev.Type, ev.Payload) {
		e.logger.Printf("rejected %s: payload %T", ev.Type, ev.Payload)
		return false
	}
	if !e.queue.Push(ev) {
		e.logger.Printf("queue full, dropped %s", ev.Type)
		return false
	}
	return true
}

// PostWait enqueues ev, waiting for space while the queue is full
// Returns ctx.Err() if ctx ends before the event is queued
func (e *Engine) PostWait(ctx context.Context, ev event.Event) error {
	if !event.ValidPayload(ev.Type, ev.Payload) {
		e.logger.Printf("rejected %s: payload %T", ev.Type, ev.Payload)
		return fmt.Errorf("%w: %s carries %T", ErrBadPayload, ev.Type, ev.Payload)
	}
	return e.queue.PushWait(ctx, ev)
}

// Run dispatches events until ctx is cancelled or EventQuit is handled
// The active pathfinder is cancelled and awaited before returning
func (e *Engine) Run(ctx context.Context) error {
	e.parent = ctx
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.queue.Ready():
			e.router.DispatchAll(e)
		case f := <-e.failed:
			e.runFailed(f)
		}
		if e.quit {
			return nil
		}
	}
}

// Step dispatches everything pending without blocking
// Returns the number of events handled; used by tests and single-threaded drivers
func (e *Engine) Step() int {
	n := e.router.DispatchAll(e)
	for {
		select {
		case f := <-e.failed:
			e.runFailed(f)
		default:
			return n
		}
	}
}

// Quitting reports whether EventQuit has been handled
func (e *Engine) Quitting() bool { return e.quit }

// Close cancels the active pathfinder and waits for it
func (e *Engine) Close() { e.shutdown() }

func (e *Engine) shutdown() {
	e.stopRun()
	e.wg.Wait()
}

func (e *Engine) stopRun() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) refresh() {
	if e.view != nil {
		e.view.Redraw()
	}
}

func (e *Engine) reject(err error) {
	e.logger.Printf("rejected: %v", err)
	if e.alert != nil {
		e.alert.Alert(err.Error())
	}
}

// startRun launches the pathfinder for the current generation
func (e *Engine) startRun() {
	e.stopRun()
	e.generation++
	gen := e.generation

	if e.finder == nil {
		e.logger.Printf("run %d: no pathfinder attached", gen)
		return
	}

	start, _ := e.board.StartPos()
	end, _ := e.board.EndPos()
	ctx, cancel := context.WithCancel(e.parent)
	e.cancel = cancel
	obs := &runObserver{engine: e, ctx: ctx, generation: gen}

	e.logger.Printf("run %d: %s -> %s", gen, start, end)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.finder.Start(ctx, start, end, obs)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		select {
		case e.failed <- runFailure{generation: gen, err: err}:
		case <-ctx.Done():
		}
	}()
}

// runFailed halts the board if the failing run is still current
func (e *Engine) runFailed(f runFailure) {
	if f.generation != e.generation {
		return
	}
	e.logger.Printf("run %d failed: %v", f.generation, f.err)
	e.stopRun()
	e.board.Halt(f.err)
	if e.alert != nil {
		e.alert.Alert(f.err.Error())
	}
}

// runObserver stamps updates with the generation that created it
// A full queue blocks the reporting agent until the dispatcher catches up or the run ends
type runObserver struct {
	engine     *Engine
	ctx        context.Context
	generation uint64
}

func (o *runObserver) OnPositionUpdated(old, current grid.Coord, targetReached bool, energy int) {
	err := o.engine.PostWait(o.ctx, event.Event{
		Type: event.EventPositionUpdate,
		Payload: &event.PositionUpdatePayload{
			Generation:    o.generation,
			Old:           old,
			Current:       current,
			TargetReached: targetReached,
			Energy:        energy,
		},
	})
	if err != nil {
		o.engine.logger.Printf("run %d: update %s -> %s not queued: %v", o.generation, old, current, err)
	}
}

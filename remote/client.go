package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/grid"
)

// Driver moves an agent; agent.Walker and agent.Script satisfy it
type Driver interface {
	Start(ctx context.Context, start, end grid.Coord, obs board.PositionObserver) error
}

// Client is the agent side of the hub protocol
type Client struct {
	conn   *websocket.Conn
	layout *grid.Layout
	log    *log.Logger

	writeMu sync.Mutex
}

// Dial connects to url, sends HELLO and waits for WELCOME
func Dial(ctx context.Context, url, name string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	c := &Client{conn: conn, log: logger}
	hello := HelloMsg{Type: TypeHello, ProtocolVersion: Version, AgentName: name}
	if err := c.write(hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send HELLO: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read WELCOME: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var w WelcomeMsg
	if err := json.Unmarshal(msg, &w); err != nil || w.Type != TypeWelcome {
		conn.Close()
		return nil, fmt.Errorf("expected WELCOME, got %q", msg)
	}
	layout, err := grid.LayoutFromRows(w.Name, w.Rows)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if layout.Width() != w.Width || layout.Height() != w.Height {
		conn.Close()
		return nil, fmt.Errorf("WELCOME size %dx%d does not match rows %dx%d", w.Width, w.Height, layout.Width(), layout.Height())
	}
	c.layout = layout
	logger.Printf("WELCOME map=%q %dx%d", w.Name, w.Width, w.Height)
	return c, nil
}

// Layout returns the map sent by the hub
func (c *Client) Layout() *grid.Layout { return c.layout }

// Close closes the connection
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Serve answers RUN frames with d until ctx ends or the hub closes the connection
// A new RUN or a STOP cancels the search in progress
func (c *Client) Serve(ctx context.Context, d Driver) error {
	var (
		mu     sync.Mutex
		cancel context.CancelFunc = func() {}
		runID  uint64
		wg     sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		cancel()
		mu.Unlock()
		wg.Wait()
	}()

	// Unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return err
		}
		base, err := DecodeBase(msg)
		if err != nil {
			continue
		}

		switch base.Type {
		case TypeRun:
			var run RunMsg
			if err := json.Unmarshal(msg, &run); err != nil {
				continue
			}
			mu.Lock()
			cancel()
			runCtx, runCancel := context.WithCancel(ctx)
			cancel, runID = runCancel, run.Run
			mu.Unlock()

			c.log.Printf("RUN %d %s -> %s", run.Run, run.Start.Coord(), run.Target.Coord())
			obs := &posWriter{client: c, run: run.Run}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := d.Start(runCtx, run.Start.Coord(), run.Target.Coord(), obs); err != nil && !errors.Is(err, context.Canceled) {
					c.log.Printf("run %d: %v", run.Run, err)
				}
			}()

		case TypeStop:
			var s StopMsg
			if err := json.Unmarshal(msg, &s); err != nil {
				continue
			}
			mu.Lock()
			if s.Run == runID {
				cancel()
			}
			mu.Unlock()
			c.log.Printf("STOP %d", s.Run)
		}
	}
}

// posWriter turns observer callbacks into POS frames
type posWriter struct {
	client *Client
	run    uint64
}

func (p *posWriter) OnPositionUpdated(old, current grid.Coord, targetReached bool, energy int) {
	err := p.client.write(PosMsg{
		Type:            TypePos,
		ProtocolVersion: Version,
		Run:             p.run,
		Old:             cellOf(old),
		Current:         cellOf(current),
		Reached:         targetReached,
		Energy:          energy,
	})
	if err != nil {
		p.client.log.Printf("send POS: %v", err)
	}
}

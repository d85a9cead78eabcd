package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/grid"
)

var (
	ErrNoAgent   = errors.New("no remote agent connected")
	ErrAgentGone = errors.New("remote agent disconnected")
	ErrAgentSlow = errors.New("remote agent not reading frames")
)

const (
	writeTimeout     = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	readTimeout      = 60 * time.Second
	outQueue         = 16
)

// Hub accepts one websocket agent at a time and drives it as a pathfinder
//
// Frames: the agent sends HELLO, receives WELCOME with the map, then RUN and
// STOP; it answers with POS frames tagged with the run number
type Hub struct {
	layout *grid.Layout
	log    *log.Logger

	upgrader websocket.Upgrader

	mu     sync.Mutex
	sess   *session
	runSeq uint64
	active *activeRun
}

// session is one connected agent
type session struct {
	name        string
	out         chan []byte
	closed      chan struct{}
	once        sync.Once
	sendTimeout time.Duration // How long send waits on a full out queue
}

func (s *session) close() { s.once.Do(func() { close(s.closed) }) }

// send queues a frame, waiting up to sendTimeout for room in the out queue
// Returns ErrAgentGone once the connection closed and ErrAgentSlow when the writer stays backed up
func (s *session) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-s.closed:
		return ErrAgentGone
	default:
	}

	timer := time.NewTimer(s.sendTimeout)
	defer timer.Stop()
	select {
	case s.out <- b:
		return nil
	case <-s.closed:
		return ErrAgentGone
	case <-timer.C:
		return ErrAgentSlow
	}
}

type activeRun struct {
	id   uint64
	sess *session
	obs  board.PositionObserver
	done chan struct{} // Closed when the agent reports reached
	once sync.Once
}

func (r *activeRun) finish() { r.once.Do(func() { close(r.done) }) }

// NewHub serves l to remote agents
func NewHub(l *grid.Layout, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		layout: l,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connected reports whether an agent is attached
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess != nil
}

// Handler upgrades and serves one agent connection
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess, err := h.handshake(conn)
		if err != nil {
			h.log.Printf("handshake: %v", err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(time.Second))
			return
		}
		h.log.Printf("agent %q connected", sess.name)
		defer h.detach(sess)

		// Writer goroutine
		go func() {
			for {
				select {
				case <-sess.closed:
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						sess.close()
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				sess.close()
				return
			}
			base, err := DecodeBase(msg)
			if err != nil || base.Type != TypePos {
				continue
			}
			pos, err := DecodePos(msg)
			if err != nil {
				h.log.Printf("agent %q: %v", sess.name, err)
				continue
			}
			h.deliver(sess, pos)
		}
	}
}

func (h *Hub) handshake(conn *websocket.Conn) (*session, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	hello, err := DecodeHello(msg)
	if err != nil {
		return nil, err
	}
	if hello.ProtocolVersion != Version {
		return nil, fmt.Errorf("bad protocol_version %q", hello.ProtocolVersion)
	}
	if hello.AgentName == "" {
		hello.AgentName = "agent"
	}

	sess := &session{
		name:   hello.AgentName,
		out:         make(chan []byte, outQueue),
		closed:      make(chan struct{}),
		sendTimeout: writeTimeout,
	}

	h.mu.Lock()
	if h.sess != nil {
		h.mu.Unlock()
		return nil, errors.New("agent already connected")
	}
	h.sess = sess
	h.mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(welcomeFor(h.layout)); err != nil {
		h.detach(sess)
		return nil, err
	}
	return sess, nil
}

func (h *Hub) detach(sess *session) {
	sess.close()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess == sess {
		h.sess = nil
		h.log.Printf("agent %q disconnected", sess.name)
	}
}

// deliver forwards a POS frame of the active run to its observer
func (h *Hub) deliver(sess *session, pos PosMsg) {
	h.mu.Lock()
	run := h.active
	h.mu.Unlock()

	if run == nil || run.sess != sess || run.id != pos.Run {
		return
	}
	run.obs.OnPositionUpdated(pos.Old.Coord(), pos.Current.Coord(), pos.Reached, pos.Energy)
	if pos.Reached {
		run.finish()
	}
}

// Start sends RUN to the connected agent and relays its POS frames to obs
// Returns nil once the agent reports reached, ctx.Err() after sending STOP on cancel
func (h *Hub) Start(ctx context.Context, start, end grid.Coord, obs board.PositionObserver) error {
	h.mu.Lock()
	sess := h.sess
	if sess == nil {
		h.mu.Unlock()
		return ErrNoAgent
	}
	h.runSeq++
	run := &activeRun{id: h.runSeq, sess: sess, obs: obs, done: make(chan struct{})}
	h.active = run
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.active == run {
			h.active = nil
		}
		h.mu.Unlock()
	}()

	err := sess.send(RunMsg{
		Type:            TypeRun,
		ProtocolVersion: Version,
		Run:             run.id,
		Start:           cellOf(start),
		Target:          cellOf(end),
	})
	if err != nil {
		return fmt.Errorf("send RUN %d to %q: %w", run.id, sess.name, err)
	}

	select {
	case <-run.done:
		return nil
	case <-sess.closed:
		return ErrAgentGone
	case <-ctx.Done():
		if err := sess.send(StopMsg{Type: TypeStop, ProtocolVersion: Version, Run: run.id}); err != nil {
			h.log.Printf("send STOP %d: %v", run.id, err)
		}
		return ctx.Err()
	}
}

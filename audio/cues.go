package audio

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/gridscout/board"
)

// Cue is one short sound
type Cue int

const (
	CuePlaceStart Cue = iota
	CuePlaceTarget
	CueRun
	CueStep
	CueReached
	CueReset
	CueError
	cueCount
)

var cueNames = [cueCount]string{"place-start", "place-target", "run", "step", "reached", "reset", "error"}

func (c Cue) String() string {
	if c >= 0 && c < cueCount {
		return cueNames[c]
	}
	return fmt.Sprintf("Cue(%d)", int(c))
}

// cueFor maps a board notice to its sound
func cueFor(k board.NoticeKind) (Cue, bool) {
	switch k {
	case board.NoticeStartSet:
		return CuePlaceStart, true
	case board.NoticeTargetSet:
		return CuePlaceTarget, true
	case board.NoticeSearchStarted:
		return CueRun, true
	case board.NoticeMoved:
		return CueStep, true
	case board.NoticeTargetReached:
		return CueReached, true
	case board.NoticeReset:
		return CueReset, true
	case board.NoticeRunAborted:
		return CueError, true
	}
	return 0, false
}

// Cues plays a sound per board notice and a buzz per alert
// Implements board.LogSink and engine.Alerter; silent until Init succeeds
type Cues struct {
	mu     sync.Mutex
	cfg    Config
	mixer  *beep.Mixer
	play   func(beep.Streamer) // Nil while silent
	last   [cueCount]time.Time
	played [cueCount]int
	now    func() time.Time
	logger *log.Logger
}

// NewCues creates a silent cue player
func NewCues(cfg Config, logger *log.Logger) *Cues {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cues{
		cfg:    cfg.clamp(),
		mixer:  &beep.Mixer{},
		now:    time.Now,
		logger: logger,
	}
}

// Init opens the speaker when audio is enabled
// On failure the player stays silent; callers continue without sound
func (c *Cues) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled || c.play != nil {
		return nil
	}

	rate := beep.SampleRate(c.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		c.logger.Printf("audio disabled: %v", err)
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(c.mixer)
	c.play = func(s beep.Streamer) {
		speaker.Lock()
		c.mixer.Add(s)
		speaker.Unlock()
	}
	c.logger.Printf("audio ready at %d Hz", c.cfg.SampleRate)
	return nil
}

// Close drops anything still playing
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.play == nil {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.play = nil
}

// Log plays the cue for n
func (c *Cues) Log(n board.Notice) {
	cue, ok := cueFor(n.Kind)
	if !ok || (cue == CueStep && !c.cfg.StepSounds) {
		return
	}
	c.Play(cue)
}

// Alert buzzes for a rejected operation
func (c *Cues) Alert(string) { c.Play(CueError) }

// Play queues cue unless the same cue fired within MinGap
func (c *Cues) Play(cue Cue) {
	if cue < 0 || cue >= cueCount {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.last[cue].IsZero() && now.Sub(c.last[cue]) < c.cfg.MinGap {
		return
	}
	c.last[cue] = now
	c.played[cue]++

	if c.play != nil {
		c.play(Sound(cue, c.cfg))
	}
}

// Played returns how many times cue was accepted for playback
func (c *Cues) Played(cue Cue) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cue < 0 || cue >= cueCount {
		return 0
	}
	return c.played[cue]
}

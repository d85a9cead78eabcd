package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a finite tone of the given shape
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack/release shaping
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope wraps s with attack and release ramps over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		} else if e.releaseSamples > 0 && e.position >= releaseStart {
			vol = math.Max(0, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; math.Log2(0) is -Inf so zero is made silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// note is one shaped tone inside a cue
type note struct {
	freq     float64
	wave     WaveType
	duration time.Duration
	gain     float64
}

const (
	noteAttack  = 5 * time.Millisecond
	noteRelease = 40 * time.Millisecond
)

// Cue recipes played in sequence
var cueNotes = [cueCount][]note{
	CuePlaceStart:  {{freq: 523.25, wave: WaveSine, duration: 90 * time.Millisecond, gain: 0.8}},
	CuePlaceTarget: {{freq: 659.25, wave: WaveSine, duration: 90 * time.Millisecond, gain: 0.8}},
	CueRun: {
		{freq: 523.25, wave: WaveSquare, duration: 60 * time.Millisecond, gain: 0.4},
		{freq: 783.99, wave: WaveSquare, duration: 90 * time.Millisecond, gain: 0.4},
	},
	CueStep: {{freq: 1200, wave: WaveSine, duration: 25 * time.Millisecond, gain: 0.3}},
	CueReached: {
		{freq: 987.77, wave: WaveSquare, duration: 80 * time.Millisecond, gain: 0.5},
		{freq: 1318.51, wave: WaveSquare, duration: 220 * time.Millisecond, gain: 0.5},
	},
	CueReset: {{freq: 0, wave: WaveNoise, duration: 120 * time.Millisecond, gain: 0.3}},
	CueError: {{freq: 100, wave: WaveSaw, duration: 150 * time.Millisecond, gain: 0.8}},
}

// Sound builds the streamer for c at the configured volume, nil for unknown cues
func Sound(c Cue, cfg Config) beep.Streamer {
	if c < 0 || c >= cueCount {
		return nil
	}
	cfg = cfg.clamp()
	rate := beep.SampleRate(cfg.SampleRate)

	parts := make([]beep.Streamer, 0, len(cueNotes[c]))
	for _, n := range cueNotes[c] {
		osc := NewOscillator(n.freq, n.duration, n.wave, rate)
		shaped := NewEnvelope(osc, n.duration, noteAttack, noteRelease, rate)
		parts = append(parts, newVolume(shaped, n.gain))
	}
	return newVolume(beep.Seq(parts...), cfg.MasterVolume)
}

// Duration is the total length of c
func Duration(c Cue) time.Duration {
	if c < 0 || c >= cueCount {
		return 0
	}
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.duration
	}
	return d
}

package audio

import "time"

// Config controls notice cues
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	MasterVolume float64       `yaml:"master_volume"` // 0.0 - 1.0
	SampleRate   int           `yaml:"sample_rate"`
	StepSounds   bool          `yaml:"step_sounds"` // Tick on every agent move
	MinGap       time.Duration `yaml:"min_gap"`     // Same cue is dropped if repeated sooner
}

// DefaultConfig returns audio off with sensible levels for when it is turned on
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		MasterVolume: 0.5,
		SampleRate:   44100,
		StepSounds:   true,
		MinGap:       50 * time.Millisecond,
	}
}

// clamp keeps values inside playable ranges
func (c Config) clamp() Config {
	if c.MasterVolume < 0 {
		c.MasterVolume = 0
	}
	if c.MasterVolume > 1 {
		c.MasterVolume = 1
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.MinGap < 0 {
		c.MinGap = 0
	}
	return c
}

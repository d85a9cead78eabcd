package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gridscout/audio"
)

// Agent modes
const (
	AgentWalker = "walker"
	AgentScript = "script"
	AgentRemote = "remote"
	AgentNone   = "none"
)

// Config is the full program configuration
type Config struct {
	Map    MapConfig    `yaml:"map"`
	Agent  AgentConfig  `yaml:"agent"`
	Remote RemoteConfig `yaml:"remote"`
	Audio  audio.Config `yaml:"audio"`
	Log    LogConfig    `yaml:"log"`
	Queue  QueueConfig  `yaml:"queue"`
}

// MapConfig selects the map; Path wins over the generated maze
type MapConfig struct {
	Path string     `yaml:"path"`
	Maze MazeConfig `yaml:"maze"`
}

type MazeConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Braiding float64 `yaml:"braiding"`
	Seed     int64   `yaml:"seed"`
}

type AgentConfig struct {
	Mode     string        `yaml:"mode"`
	Interval time.Duration `yaml:"interval"`
	Energy   int           `yaml:"energy"`
	Diagonal bool          `yaml:"diagonal"`
	Script   string        `yaml:"script"` // Lua file for mode "script"
}

type RemoteConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Debug     bool   `yaml:"debug"`
	Dir       string `yaml:"dir"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

type QueueConfig struct {
	Size int `yaml:"size"`
}

// Default returns a runnable configuration: generated maze, local walker, audio off
func Default() Config {
	return Config{
		Map: MapConfig{
			Maze: MazeConfig{Width: 31, Height: 15, Braiding: 0.2},
		},
		Agent: AgentConfig{
			Mode:     AgentWalker,
			Interval: 120 * time.Millisecond,
			Energy:   1000,
		},
		Remote: RemoteConfig{Listen: "127.0.0.1:8765", Path: "/agent"},
		Audio:  audio.DefaultConfig(),
		Log:    LogConfig{Dir: "logs", MaxSizeMB: 10},
		Queue:  QueueConfig{Size: 256},
	}
}

// Load reads path over the defaults; unknown keys are rejected
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays YAML onto cfg
func Decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from GRIDSCOUT_* variables
// Unparseable values are ignored
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("GRIDSCOUT_MAP"); v != "" {
		c.Map.Path = v
	}
	if v := getenv("GRIDSCOUT_AGENT"); v != "" {
		c.Agent.Mode = v
	}
	if v := getenv("GRIDSCOUT_AGENT_SCRIPT"); v != "" {
		c.Agent.Script = v
	}
	if v := getenv("GRIDSCOUT_AGENT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Agent.Interval = d
		}
	}
	if v := getenv("GRIDSCOUT_AGENT_ENERGY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Agent.Energy = n
		}
	}
	if v := getenv("GRIDSCOUT_REMOTE_LISTEN"); v != "" {
		c.Remote.Listen = v
	}
	if v := getenv("GRIDSCOUT_AUDIO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Audio.Enabled = b
		}
	}

	// Master volume 0-100 converted to 0.0-1.0
	if v := getenv("GRIDSCOUT_MASTER_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audio.MasterVolume = min(max(float64(n)/100.0, 0), 1)
		}
	}
	if v := getenv("GRIDSCOUT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}
	if v := getenv("GRIDSCOUT_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Queue.Size = n
		}
	}
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.Agent.Mode {
	case AgentWalker, AgentRemote, AgentNone:
	case AgentScript:
		if c.Agent.Script == "" {
			return errors.New("agent mode script needs agent.script")
		}
	default:
		return fmt.Errorf("unknown agent mode %q", c.Agent.Mode)
	}
	if c.Map.Path == "" && (c.Map.Maze.Width < 3 || c.Map.Maze.Height < 3) {
		return fmt.Errorf("maze must be at least 3x3, got %dx%d", c.Map.Maze.Width, c.Map.Maze.Height)
	}
	if c.Agent.Interval <= 0 {
		return errors.New("agent.interval must be positive")
	}
	if c.Agent.Mode == AgentRemote && c.Remote.Listen == "" {
		return errors.New("agent mode remote needs remote.listen")
	}
	return nil
}

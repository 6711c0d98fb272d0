// Package config loads vorb settings.
//
// Settings come from, in increasing priority: built-in defaults, a YAML file
// (--config, or os.UserConfigDir()/vorb/config.yaml when present), VORB_*
// environment variables, and command line flags applied by the caller.
//
//	input:
//	  source: mic          # mic | file | none
//	  device: ""           # capture device, platform specific
//	  file: ""             # audio file for source: file
//	  sample_rate: 48000
//	thresholds:
//	  listening_enter: 0.05
//	  speaking_enter: 0.12
//	  fallback_margin: 0.02
//	motion:
//	  camera_damping: 3
//	  particle_damping: 5
//	render:
//	  fps: 30
//	  background: "#070b14"
//	  particles: 420
//	  seed: 1
//	  pixel_ratio: 1
//	  color: auto          # auto | truecolor | 256 | 16 | off
//	log:
//	  level: info
//	  file: ""
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/olivier-w/vorb/internal/orb"
	"github.com/olivier-w/vorb/internal/render"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "vorb"

	// fileName is the config file inside appDir.
	fileName = "config.yaml"
)

// Input sources.
const (
	SourceMic  = "mic"
	SourceFile = "file"
	SourceNone = "none"
)

// Config is the full set of settings.
type Config struct {
	Input      Input          `yaml:"input"`
	Thresholds orb.Thresholds `yaml:"thresholds"`
	Motion     orb.Tuning     `yaml:"motion"`
	Render     Render         `yaml:"render"`
	Log        Log            `yaml:"log"`
}

// Input selects where audio comes from.
type Input struct {
	Source     string `yaml:"source"`
	Device     string `yaml:"device"`
	File       string `yaml:"file"`
	SampleRate int    `yaml:"sample_rate"`
}

// Render configures the terminal renderer and frame rate.
type Render struct {
	FPS        int     `yaml:"fps"`
	Background string  `yaml:"background"`
	Particles  int     `yaml:"particles"`
	Seed       int64   `yaml:"seed"`
	PixelRatio float64 `yaml:"pixel_ratio"`
	Color      string  `yaml:"color"`
}

// Log configures logging. An empty file discards logs in the TUI.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	ro := render.DefaultOptions()
	return Config{
		Input: Input{
			Source:     SourceMic,
			SampleRate: 48000,
		},
		Thresholds: orb.DefaultThresholds(),
		Motion:     orb.DefaultTuning(),
		Render: Render{
			FPS:        30,
			Background: ro.Background,
			Particles:  ro.Particles,
			Seed:       ro.Seed,
			PixelRatio: ro.PixelRatio,
			Color:      "auto",
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns os.UserConfigDir()/vorb/config.yaml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads path over the defaults. An empty path tries the default
// location and silently skips it when the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	// an empty or comment-only document decodes to a zero Config
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(doc) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from VORB_DEVICE, VORB_LOG_LEVEL and VORB_LOG_FILE.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup("VORB_DEVICE"); ok {
		c.Input.Device = v
	}
	if v, ok := lookup("VORB_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("VORB_LOG_FILE"); ok {
		c.Log.File = v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Input.Source {
	case SourceMic, SourceNone:
	case SourceFile:
		if c.Input.File == "" {
			return errors.New("input.file is required when input.source is file")
		}
	default:
		return fmt.Errorf("input.source must be mic, file or none, got %q", c.Input.Source)
	}
	if c.Input.SampleRate <= 0 {
		return fmt.Errorf("input.sample_rate must be > 0, got %d", c.Input.SampleRate)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := c.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %w", err)
	}
	if c.Render.FPS < 1 || c.Render.FPS > 120 {
		return fmt.Errorf("render.fps must be within 1..120, got %d", c.Render.FPS)
	}
	if c.Render.Particles < 0 {
		return fmt.Errorf("render.particles must be >= 0, got %d", c.Render.Particles)
	}
	if _, err := render.ParseColorMode(c.Render.Color); err != nil {
		return fmt.Errorf("render.color: %w", err)
	}
	if _, err := c.SceneOptions(); err != nil {
		return err
	}
	return nil
}

// FrameInterval is the time between frames at the configured rate.
func (c Config) FrameInterval() time.Duration {
	fps := c.Render.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// SceneOptions converts the render section.
func (c Config) SceneOptions() (render.Options, error) {
	mode, err := render.ParseColorMode(c.Render.Color)
	if err != nil {
		return render.Options{}, fmt.Errorf("render.color: %w", err)
	}
	bg := strings.TrimSpace(c.Render.Background)
	if !strings.HasPrefix(bg, "#") || (len(bg) != 7 && len(bg) != 4) {
		return render.Options{}, fmt.Errorf("render.background must be a #rgb or #rrggbb colour, got %q", c.Render.Background)
	}
	return render.Options{
		Background: bg,
		Particles:  c.Render.Particles,
		Seed:       c.Render.Seed,
		PixelRatio: c.Render.PixelRatio,
		ColorMode:  mode,
	}, nil
}

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"nescore/internal/graphics"
	"nescore/internal/input"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Title      string `json:"title"`
	Scale      int    `json:"scale"` // NES resolution multiplier
	Fullscreen bool   `json:"fullscreen"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "terminal", "headless"
	VSync   bool   `json:"vsync"`
	Filter  string `json:"filter"` // "nearest", "linear"
}

// InputConfig contains input configuration
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
}

// KeyMapping represents keyboard key mappings for NES controller
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// Bindings returns the mapping keyed by button name, skipping unbound buttons.
func (m KeyMapping) Bindings() map[string]string {
	keys := map[string]string{
		input.ButtonUp.String():     m.Up,
		input.ButtonDown.String():   m.Down,
		input.ButtonLeft.String():   m.Left,
		input.ButtonRight.String():  m.Right,
		input.ButtonA.String():      m.A,
		input.ButtonB.String():      m.B,
		input.ButtonStart.String():  m.Start,
		input.ButtonSelect.String(): m.Select,
	}
	for button, key := range keys {
		if key == "" {
			delete(keys, button)
		}
	}
	return keys
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	FrameLimit uint64 `json:"frame_limit"` // 0 runs until stopped
	FrameRate  int    `json:"frame_rate"`  // 0 runs unpaced
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging bool   `json:"enable_logging"`
	Trace         bool   `json:"trace"`
	TraceFile     string `json:"trace_file"` // empty writes to stderr
	DumpFramesDir string `json:"dump_frames_dir"`
	DumpEvery     int    `json:"dump_every"`
	DumpScale     int    `json:"dump_scale"`
	StateGraph    string `json:"state_graph"` // written when the run ends
	Statsview     bool   `json:"statsview"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "nescore",
			Scale:      2, // 512x480 (256x240 * 2)
			Fullscreen: false,
		},
		Video: VideoConfig{
			Backend: string(graphics.BackendTerminal),
			VSync:   true,
			Filter:  "nearest",
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up:     "W",
				Down:   "S",
				Left:   "A",
				Right:  "D",
				A:      "J",
				B:      "K",
				Start:  "Enter",
				Select: "Space",
			},
		},
		Emulation: EmulationConfig{
			FrameLimit: 0,
			FrameRate:  60,
		},
		Debug: DebugConfig{
			DumpEvery: 60,
			DumpScale: 1,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// Validate checks the configuration after command line overrides.
func (c *Config) Validate() error {
	return c.validate()
}

// validate repairs out of range values and rejects values it cannot repair.
func (c *Config) validate() error {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	c.Video.Backend = strings.ToLower(c.Video.Backend)
	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendTerminal, graphics.BackendHeadless:
	case "":
		c.Video.Backend = string(graphics.BackendTerminal)
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: errUnknownBackend}
	}

	if c.Video.Filter != "nearest" && c.Video.Filter != "linear" {
		log.Printf("[CONFIG] unknown filter %q, using nearest", c.Video.Filter)
		c.Video.Filter = "nearest"
	}

	if c.Emulation.FrameRate < 0 {
		c.Emulation.FrameRate = 0
	}

	if c.Debug.DumpEvery <= 0 {
		c.Debug.DumpEvery = 1
	}

	if c.Debug.DumpScale <= 0 {
		c.Debug.DumpScale = 1
	}

	return nil
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nescore.json"
}

var errUnknownBackend = errors.New("unknown video backend")

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

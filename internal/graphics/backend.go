// Package graphics provides the frame sinks the emulator can render to and
// the host loops that drive it.
package graphics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"nescore/internal/input"
	"nescore/internal/ppu"
)

// ErrBackendUnavailable is returned for a backend compiled out of this build.
var ErrBackendUnavailable = errors.New("graphics backend not available in this build")

// Backend renders frames and owns the host loop.
type Backend interface {
	ppu.Renderer

	// Run calls step once per host frame until ctx is cancelled, step fails
	// or the user closes the output. Closing the output is not an error.
	Run(ctx context.Context, step func() error) error

	// Name returns the backend name for identification
	Name() string

	// Cleanup releases all resources
	Cleanup() error
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle string
	Scale       int
	Fullscreen  bool
	VSync       bool

	// Rendering configuration
	Filter    string // "nearest", "linear"
	FrameRate int    // host frames per second, 0 runs unpaced

	// Keys binds button names to ebitengine key names.
	Keys map[string]string

	// Output receives terminal frames. Defaults to stdout.
	Output io.Writer
}

// CreateBackend creates a graphics backend of the specified type. keypad
// receives keyboard input from backends that have a window.
func CreateBackend(backendType BackendType, config Config, keypad *input.Keypad) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		backend, err := NewEbitengineBackend(config, keypad)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case BackendHeadless:
		return NewHeadlessBackend(config.FrameRate), nil
	case BackendTerminal:
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		return NewTerminalBackend(out, config.FrameRate), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}

// runLoop calls step until it fails or ctx ends, pacing calls at frameRate
// when it is positive.
func runLoop(ctx context.Context, frameRate int, step func() error) error {
	var tick <-chan time.Time
	if frameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(frameRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := step(); err != nil {
			return err
		}

		if tick == nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
}

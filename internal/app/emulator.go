package app

import (
	"context"
	"errors"
	"log"
	"time"

	"nescore/internal/bus"
)

var (
	// ErrFrameLimit is returned by StepFrame once the configured number of
	// frames has run.
	ErrFrameLimit = errors.New("frame limit reached")

	// ErrInterrupted is returned by StepFrame after Ctrl-C on a raw terminal.
	ErrInterrupted = errors.New("interrupted from terminal")
)

const fpsLogInterval = 5 * time.Second

// KeySource feeds host keys into a keypad between frames.
type KeySource interface {
	Poll()
	Interrupted() <-chan struct{}
}

// Emulator advances the machine one frame per host frame and tracks timing.
type Emulator struct {
	bus        *bus.Bus
	keys       KeySource
	frameLimit uint64
	logging    bool

	// Performance tracking
	startTime       time.Time
	frameCount      uint64
	emulationTime   time.Duration
	lastFPSLog      time.Time
	framesAtLastLog uint64
}

// EmulatorStats is a summary of the run so far.
type EmulatorStats struct {
	Frames           uint64
	Cycles           uint64
	Uptime           time.Duration
	AverageFrameTime time.Duration
	FPS              float64
}

// NewEmulator creates an emulator for b using the emulation and debug settings
// of config.
func NewEmulator(b *bus.Bus, config *Config) *Emulator {
	now := time.Now()
	return &Emulator{
		bus:        b,
		frameLimit: config.Emulation.FrameLimit,
		logging:    config.Debug.EnableLogging,
		startTime:  now,
		lastFPSLog: now,
	}
}

// SetKeySource installs a source polled before every frame.
func (e *Emulator) SetKeySource(keys KeySource) {
	e.keys = keys
}

// StepFrame polls input and runs the machine until the next frame is
// delivered.
func (e *Emulator) StepFrame(ctx context.Context) error {
	if e.frameLimit > 0 && e.frameCount >= e.frameLimit {
		return ErrFrameLimit
	}

	if e.keys != nil {
		select {
		case <-e.keys.Interrupted():
			return ErrInterrupted
		default:
		}
		e.keys.Poll()
	}

	start := time.Now()
	if err := e.bus.RunFrames(ctx, 1); err != nil {
		return err
	}
	e.emulationTime += time.Since(start)
	e.frameCount++

	if e.logging {
		e.logFPS()
	}
	return nil
}

func (e *Emulator) logFPS() {
	now := time.Now()
	elapsed := now.Sub(e.lastFPSLog)
	if elapsed < fpsLogInterval {
		return
	}

	fps := float64(e.frameCount-e.framesAtLastLog) / elapsed.Seconds()
	log.Printf("[FPS] Current: %.1f FPS | Frame: %d | Emulator: %.2fms/frame",
		fps, e.frameCount, float64(e.averageFrameTime().Microseconds())/1000)

	e.lastFPSLog = now
	e.framesAtLastLog = e.frameCount
}

func (e *Emulator) averageFrameTime() time.Duration {
	if e.frameCount == 0 {
		return 0
	}
	return e.emulationTime / time.Duration(e.frameCount)
}

// FrameCount returns the frames run by this emulator.
func (e *Emulator) FrameCount() uint64 {
	return e.frameCount
}

// Stats returns timing figures for the run so far.
func (e *Emulator) Stats() EmulatorStats {
	uptime := time.Since(e.startTime)
	stats := EmulatorStats{
		Frames:           e.frameCount,
		Cycles:           e.bus.Cycles(),
		Uptime:           uptime,
		AverageFrameTime: e.averageFrameTime(),
	}
	if uptime > 0 {
		stats.FPS = float64(e.frameCount) / uptime.Seconds()
	}
	return stats
}

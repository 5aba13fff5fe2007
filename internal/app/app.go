// Package app assembles the emulator from its configuration and runs it.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"nescore/internal/bus"
	"nescore/internal/cartridge"
	"nescore/internal/debug"
	"nescore/internal/graphics"
	"nescore/internal/input"
	"nescore/internal/ppu"
	"nescore/internal/statsview"
	"nescore/internal/trace"
	"nescore/internal/version"
)

// Application represents the main emulator application
type Application struct {
	config *Config

	// Core emulation components
	bus      *bus.Bus
	emulator *Emulator
	keypad   *input.Keypad

	// Graphics backend
	backend graphics.Backend
	dumper  *debug.FrameDumper

	// Terminal keyboard, only with the terminal backend
	terminal *input.TerminalSource

	// Instruction trace
	tracer    *trace.Logger
	traceOut  *bufio.Writer
	traceFile *os.File

	// ROM management
	romPath   string
	cartridge *cartridge.Cartridge
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

var errNoROM = errors.New("no ROM loaded")

// NewApplication builds the machine, the graphics backend and the debug
// outputs described by config.
func NewApplication(config *Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		config: config,
		keypad: input.New(),
	}
	app.keypad.EnableDebug(config.Debug.EnableLogging)

	if err := app.initializeGraphicsBackend(); err != nil {
		return nil, &ApplicationError{Component: "graphics", Operation: "backend setup", Err: err}
	}

	var renderer ppu.Renderer = app.backend
	if dir := config.Debug.DumpFramesDir; dir != "" {
		app.dumper = debug.NewFrameDumper(app.backend, dir)
		app.dumper.SetDumpInterval(config.Debug.DumpEvery)
		app.dumper.SetScale(config.Debug.DumpScale)
		renderer = app.dumper
	}

	app.bus = bus.New(renderer, app.keypad, nil)
	app.emulator = NewEmulator(app.bus, config)

	if config.Debug.Trace {
		if err := app.initializeTrace(); err != nil {
			app.Cleanup()
			return nil, &ApplicationError{Component: "trace", Operation: "open output", Err: err}
		}
	}

	if graphics.BackendType(config.Video.Backend) == graphics.BackendTerminal {
		app.terminal = input.NewTerminalSource(app.keypad)
	}

	return app, nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend() error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	backend, err := graphics.CreateBackend(backendType, graphics.Config{
		WindowTitle: app.config.Window.Title,
		Scale:       app.config.Window.Scale,
		Fullscreen:  app.config.Window.Fullscreen,
		VSync:       app.config.Video.VSync,
		Filter:      app.config.Video.Filter,
		FrameRate:   app.config.Emulation.FrameRate,
		Keys:        app.config.Input.Player1Keys.Bindings(),
	}, app.keypad)
	if err != nil {
		return err
	}

	app.backend = backend
	if app.config.Debug.EnableLogging {
		log.Printf("[APP_DEBUG] using %s backend", backend.Name())
	}
	return nil
}

func (app *Application) initializeTrace() error {
	var w io.Writer = os.Stderr
	if path := app.config.Debug.TraceFile; path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		app.traceFile = file
		w = file
	}

	app.traceOut = bufio.NewWriter(w)
	app.tracer = trace.New(app.traceOut, app.bus.CPU, app.bus.PPU)
	app.bus.SetTracer(app.tracer)
	return nil
}

// LoadROM loads a ROM file into the emulator
func (app *Application) LoadROM(romPath string) error {
	cart, err := cartridge.LoadFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	if err := app.bus.LoadROM(cart); err != nil {
		return &ApplicationError{Component: "bus", Operation: "load ROM", Err: err}
	}

	app.cartridge = cart
	app.romPath = romPath
	log.Printf("[APP] nescore %s loaded %s: %d PRG bank(s), %d CHR bank(s), mapper %d",
		version.Read().Short(), filepath.Base(romPath), cart.Header.PRGBanks, cart.Header.CHRBanks, cart.Mapper())
	return nil
}

// Run drives the backend loop until ctx ends, the frame limit is reached,
// the user quits or the emulator fails. Only the last is returned as an
// error.
func (app *Application) Run(ctx context.Context) error {
	if app.cartridge == nil {
		return &ApplicationError{Component: "cartridge", Operation: "run", Err: errNoROM}
	}

	if app.config.Debug.Statsview {
		if err := statsview.Launch(ctx, os.Stderr); err != nil {
			log.Printf("[APP_WARNING] statsview: %v", err)
		}
	}

	if app.terminal != nil {
		if err := app.terminal.Start(); err != nil {
			log.Printf("[APP_WARNING] keyboard input disabled: %v", err)
		} else {
			defer app.terminal.Stop()
			app.emulator.SetKeySource(app.terminal)
		}
	}

	err := app.backend.Run(ctx, func() error {
		return app.emulator.StepFrame(ctx)
	})

	switch {
	case errors.Is(err, ErrFrameLimit), errors.Is(err, ErrInterrupted), errors.Is(err, context.Canceled):
		log.Printf("[APP] stopped after %d frames: %v", app.emulator.FrameCount(), err)
		err = nil
	case err != nil:
		log.Printf("[APP_ERROR] emulation stopped at frame %d", app.bus.Frames())
	}

	if path := app.config.Debug.StateGraph; path != "" {
		if gerr := debug.SaveStateGraph(path, app.bus); gerr != nil {
			err = errors.Join(err, gerr)
		}
	}
	return err
}

// Bus returns the assembled machine.
func (app *Application) Bus() *bus.Bus {
	return app.bus
}

// Emulator returns the frame stepper.
func (app *Application) Emulator() *Emulator {
	return app.emulator
}

// Keypad returns player one's keypad.
func (app *Application) Keypad() *input.Keypad {
	return app.keypad
}

// ROMPath returns the path of the loaded ROM.
func (app *Application) ROMPath() string {
	return app.romPath
}

// Cleanup flushes the trace and releases the backend.
func (app *Application) Cleanup() error {
	var errs []error

	if app.traceOut != nil {
		if err := app.traceOut.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush trace: %w", err))
		}
	}
	if app.traceFile != nil {
		if err := app.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace: %w", err))
		}
		app.traceFile = nil
	}

	if app.backend != nil {
		if err := app.backend.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("graphics cleanup: %w", err))
		}
	}

	if app.config.Debug.EnableLogging {
		log.Printf("[APP_DEBUG] cleanup complete")
	}
	return errors.Join(errs...)
}

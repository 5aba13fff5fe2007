// Package main implements the nescore emulator executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nescore/internal/app"
	"nescore/internal/version"
)

// options holds the command line. set records which flags were given so
// that only those override the config file.
type options struct {
	rom        string
	config     string
	renderer   string
	frames     uint64
	trace      bool
	traceFile  string
	dumpFrames string
	stateGraph string
	statsview  bool
	debug      bool
	version    bool
	help       bool

	set map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("nescore", flag.ContinueOnError)
	opts, err := parseFlags(fs, args, stderr)
	if err != nil {
		return err
	}

	if opts.help {
		printUsage(fs, stdout)
		return nil
	}
	if opts.version {
		version.PrintBuildInfo(stdout)
		return nil
	}
	if opts.rom == "" {
		return errors.New("no ROM given, use -rom <file>")
	}

	configPath := opts.config
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v", configPath, err)
		config = app.NewConfig()
	}
	opts.apply(config)

	application, err := app.NewApplication(config)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("[APP_ERROR] cleanup: %v", err)
		}
	}()

	if err := application.LoadROM(opts.rom); err != nil {
		return err
	}
	return application.Run(ctx)
}

func parseFlags(fs *flag.FlagSet, args []string, output io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs.SetOutput(output)
	fs.Usage = func() { printUsage(fs, output) }
	fs.StringVar(&opts.rom, "rom", "", "Path to NES ROM file")
	fs.StringVar(&opts.config, "config", "", "Path to configuration file")
	fs.StringVar(&opts.renderer, "renderer", "", "Video backend: terminal, ebitengine or headless")
	fs.Uint64Var(&opts.frames, "frames", 0, "Stop after N frames (0 runs until stopped)")
	fs.BoolVar(&opts.trace, "trace", false, "Log every instruction")
	fs.StringVar(&opts.traceFile, "trace-file", "", "Write the instruction trace to a file (implies -trace)")
	fs.StringVar(&opts.dumpFrames, "dump-frames", "", "Save frames as PNG files in this directory")
	fs.StringVar(&opts.stateGraph, "state-graph", "", "Write a Graphviz graph of the machine state on exit")
	fs.BoolVar(&opts.statsview, "statsview", false, "Serve runtime statistics (statsview builds only)")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.BoolVar(&opts.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.rom == "" && fs.NArg() > 0 {
		opts.rom = fs.Arg(0)
	}
	return opts, nil
}

// apply overrides config with the flags that were given.
func (o *options) apply(config *app.Config) {
	if o.set["renderer"] {
		config.Video.Backend = o.renderer
	}
	if o.set["frames"] {
		config.Emulation.FrameLimit = o.frames
	}
	if o.set["trace"] {
		config.Debug.Trace = o.trace
	}
	if o.set["trace-file"] {
		config.Debug.Trace = true
		config.Debug.TraceFile = o.traceFile
	}
	if o.set["dump-frames"] {
		config.Debug.DumpFramesDir = o.dumpFrames
	}
	if o.set["state-graph"] {
		config.Debug.StateGraph = o.stateGraph
	}
	if o.set["statsview"] {
		config.Debug.Statsview = o.statsview
	}
	if o.set["debug"] {
		config.Debug.EnableLogging = o.debug
	}
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "nescore - NES emulator core")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  nescore -rom <file> [options]")
	fmt.Fprintln(w, "  nescore [options] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  nescore game.nes                          # Play in the terminal")
	fmt.Fprintln(w, "  nescore -renderer ebitengine game.nes     # Play in a window")
	fmt.Fprintln(w, "  nescore -renderer headless -frames 600 \\")
	fmt.Fprintln(w, "          -dump-frames out game.nes         # Render 10 seconds to PNG")
	fmt.Fprintln(w, "  nescore -frames 1 -trace-file cpu.log game.nes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONTROLS (Default):")
	fmt.Fprintln(w, "  Terminal:   . A   , B   n Select   m Start   w/a/s/d D-Pad   Ctrl-C Quit")
	fmt.Fprintln(w, "  Ebitengine: J A   K B   Space Select   Enter Start   W/A/S/D D-Pad")
	fmt.Fprintln(w, "              Escape Quit   P Pause")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONFIGURATION:")
	fmt.Fprintf(w, "  Config file: %s (created on first run)\n", app.GetDefaultConfigPath())
}

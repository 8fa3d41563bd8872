package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/ecs"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ExitError carries the process exit code requested by a script or by
// flag parsing.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// options holds the parsed command line.
type options struct {
	root      string
	logLevel  string
	logFormat string
	debug     bool
	headless  bool
	frames    int
	events    bool
	showFPS   bool
}

// main is the entrypoint for the bramble runtime.
func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, bool, error) {
	var o options
	flagSet := flag.NewFlagSet("bramble", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
bramble - a scriptable 2D game runtime.

Usage:
  bramble [options] [ROOT]

Arguments:
  ROOT
    Game directory containing main.lua and an optional bramble.yaml.
    Defaults to the current directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&o.logLevel, "log-level", "", "Override the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&o.logFormat, "log-format", "", "Override the log output format. Options: 'text' or 'json'.")
	flagSet.BoolVar(&o.debug, "debug", false, "Log per-frame timing stats.")
	flagSet.BoolVar(&o.headless, "headless", false, "Run without a window or audio device.")
	flagSet.IntVar(&o.frames, "frames", 60, "Number of frames to run in headless mode.")
	flagSet.BoolVar(&o.events, "events", false, "Log scene lifecycle events.")
	flagSet.BoolVar(&o.showFPS, "fps", false, "Show an FPS counter.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return o, true, nil
		}
		return o, false, &ExitError{Code: 2, Message: err.Error()}
	}
	o.root = "."
	if flagSet.NArg() > 0 {
		o.root = flagSet.Arg(0)
	}
	if o.frames < 0 {
		return o, false, &ExitError{Code: 2, Message: "-frames must not be negative"}
	}
	return o, false, nil
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	o, shouldExit, err := parseFlags(args, outW)
	if err != nil || shouldExit {
		return err
	}

	cfg, err := bramble.LoadConfig(o.root)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if o.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	logger := bramble.NewLogger(cfg.LogLevel, cfg.LogFormat, outW)

	var (
		backends bramble.Backends
		eb       *bramble.EbitenBackend
	)
	if o.headless {
		backends = bramble.NewHeadlessBackends(cfg.Width, cfg.Height)
	} else {
		eb = bramble.NewEbitenBackend(cfg.Width, cfg.Height, cfg.AudioSampleRate)
		backends = eb.Backends()
	}

	world := donburi.NewWorld()
	opts := []bramble.Option{bramble.WithLogger(logger)}
	if o.events {
		mirror := ecs.NewMirror(world)
		subscribeEventLog(world, logger, mirror)
		opts = append(opts,
			bramble.WithEventSink(ecs.NewDonburiSink(world)),
			bramble.WithAfterFrame(func(uint64) { events.ProcessAllEvents(world) }))
	}
	if o.headless {
		// A headless run reports die() through its return value.
		opts = append(opts, bramble.WithExitFunc(func(int) {}))
	}

	rt, err := bramble.NewRuntime(o.root, cfg, backends, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Start(); err != nil {
		return err
	}
	if o.events {
		events.ProcessAllEvents(world)
	}

	if o.headless {
		return runHeadless(rt, o.frames, logger)
	}
	return bramble.Run(rt, eb, bramble.RunConfig{
		Title:   cfg.Title,
		Width:   cfg.Width,
		Height:  cfg.Height,
		ShowFPS: o.showFPS,
	})
}

// runHeadless steps the runtime at the configured tick rate without a window.
func runHeadless(rt *bramble.Runtime, frames int, logger *slog.Logger) error {
	dt := 1.0 / float64(rt.Config().TPS)
	for range frames {
		if code, exited := rt.Exited(); exited {
			return exitResult(code)
		}
		rt.Frame(dt)
	}
	if code, exited := rt.Exited(); exited {
		return exitResult(code)
	}
	logger.Info("headless run finished", "frames", rt.Frames(), "entities", rt.Scene().Len())
	return nil
}

func exitResult(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

func subscribeEventLog(world donburi.World, logger *slog.Logger, mirror *ecs.Mirror) {
	ecs.SceneEventType.Subscribe(world, func(w donburi.World, e bramble.SceneEvent) {
		logger.Debug("scene event",
			"type", e.Type.String(),
			"entity", e.EntityID,
			"parent", e.ParentID,
			"name", e.Name,
			"component", e.Component,
			"mirrored", mirror.Len())
	})
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/integrii/flaggy"

	"shadowlife/src/config"
	"shadowlife/src/source"
	"shadowlife/src/universe"
	"shadowlife/src/view"
)

type EnvOptions struct {
	configPath  string
	interactive bool
	verbose     bool
	noMirror    bool
}

func main() {
	eo, cfg := initOptions()

	level, _ := cfg.Level()
	if eo.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if !eo.interactive {
		universe.SetLogger(logger)
	}

	params := cfg.SourceParams()
	if !eo.interactive {
		params.Logger = logger
	}
	src, err := source.New(cfg.Input.Source, params)
	if err != nil {
		logger.Error("cannot open frame source", "source", cfg.Input.Source, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	if eo.interactive {
		runInteractive(cfg, src)
	} else {
		if err := runHeadless(cfg, src); err != nil {
			logger.Error("simulation failed", "error", err)
			os.Exit(1)
		}
	}
}

//runInteractive starts the terminal UI; the background is captured with the B key
func runInteractive(cfg *config.Config, src source.Source) {
	u := universe.NewBaseUniverse(cfg.UniverseOptions(), src, nil)
	v := view.NewViewTerminal(cfg.Display.ShowRaw, cfg.Display.ShowShadow)
	u.RegisterViewer(v)
	v.Start()
	u.Close()
}

//runHeadless runs until the simulation finishes and prints the progress
func runHeadless(cfg *config.Config, src source.Source) error {
	stateCh := make(chan universe.Status, 10) //the buffered channel to getting the universe status
	u := universe.NewBaseUniverse(cfg.UniverseOptions(), src, stateCh)
	defer func() {
		u.Close()
	}()

	c := view.NewConsoleOut()
	u.RegisterViewer(c)
	c.Start()

	u.Run()
	for {
		st := <-stateCh
		if st.RunningMode == universe.RunningStateFinished {
			return st.Err
		}
	}
}

func initOptions() (eo *EnvOptions, cfg *config.Config) {
	eo = &EnvOptions{}
	flags := config.Default()

	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configPath, "c", "config", "YAML configuration file")
	flaggy.Int(&flags.Width, "x", "width", "Width of the frames and the Life field")
	flaggy.Int(&flags.Height, "y", "height", "Height of the frames and the Life field")
	flaggy.Duration(&flags.Interval, "i", "interval", "Pause between ticks in format the number with 'ms' suffix, for example 30ms")
	flaggy.Int(&flags.MaxSteps, "s", "maxSteps", "Stop after maxSteps processed ticks (0 = unlimited)")
	flaggy.Float64(&flags.ShadowThreshold, "t", "threshold", "Grayscale distance from the background marking foreground")
	flaggy.Float64(&flags.BackgroundAlpha, "a", "alpha", "Background adaptation rate between 0 and 1")
	flaggy.Int(&flags.StackBlurRadius, "b", "blur", "Noise filter radius (0 disables it)")
	flaggy.String(&flags.Input.Source, "e", "source", "Frame source ["+strings.Join(source.Names(), "|")+"]")
	flaggy.String(&flags.Input.Dir, "d", "dir", "Image directory for the images source")
	flaggy.Bool(&eo.noMirror, "m", "noMirror", "Do not mirror the frames horizontally")
	flaggy.Int(&flags.Workers, "w", "workers", "Goroutines computing one generation")
	flaggy.Bool(&flags.AutoCapture, "", "autoCapture", "Capture the background from the first frame")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.verbose, "v", "verbose", "Debug logging")

	flaggy.Parse()
	if eo.noMirror {
		flags.Input.Mirror = false
	}

	cfg, err := mergeConfig(eo.configPath, flags)
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	//a headless run has no key to capture the background
	if !eo.interactive {
		cfg.AutoCapture = true
	}
	return
}

//mergeConfig loads the config file and applies the flags that differ from the defaults
func mergeConfig(path string, flags *config.Config) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	def := config.Default()
	if flags.Width != def.Width {
		cfg.Width = flags.Width
	}
	if flags.Height != def.Height {
		cfg.Height = flags.Height
	}
	if flags.Interval != def.Interval {
		cfg.Interval = flags.Interval
	}
	if flags.MaxSteps != def.MaxSteps {
		cfg.MaxSteps = flags.MaxSteps
	}
	if flags.ShadowThreshold != def.ShadowThreshold {
		cfg.ShadowThreshold = flags.ShadowThreshold
	}
	if flags.BackgroundAlpha != def.BackgroundAlpha {
		cfg.BackgroundAlpha = flags.BackgroundAlpha
	}
	if flags.StackBlurRadius != def.StackBlurRadius {
		cfg.StackBlurRadius = flags.StackBlurRadius
	}
	if flags.Input.Source != def.Input.Source {
		cfg.Input.Source = flags.Input.Source
	}
	if flags.Input.Dir != def.Input.Dir {
		cfg.Input.Dir = flags.Input.Dir
	}
	if flags.Input.Mirror != def.Input.Mirror {
		cfg.Input.Mirror = flags.Input.Mirror
	}
	if flags.Workers != def.Workers {
		cfg.Workers = flags.Workers
	}
	if flags.AutoCapture != def.AutoCapture {
		cfg.AutoCapture = flags.AutoCapture
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

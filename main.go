package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/bouncebits/config"
	"github.com/pthm-cable/bouncebits/game"
	"github.com/pthm-cable/bouncebits/render"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without display or frame pacing")
	console := flag.Bool("console", false, "Print frames to stdout instead of a full-screen terminal")
	sound := flag.Bool("sound", false, "Play a tone for every decoded character")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	maxTicks := flag.Int("max-ticks", -1, "Stop after N ticks (0 = unlimited, -1 = use config)")

	flag.Parse()

	// Terminal modes draw on stdout, so logs go to stderr there
	logOut := os.Stderr
	if *headless {
		logOut = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	ticks := cfg.Run.MaxTicks
	if *maxTicks >= 0 {
		ticks = *maxTicks
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Run.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.New(cfg, game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Sound:     *sound && !*headless,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"rows", cfg.World.Rows,
		"cols", cfg.World.Cols,
		"max_ticks", ticks,
		"headless", *headless,
	)

	switch {
	case *headless:
		for ticks == 0 || int(g.Tick()) < ticks {
			g.UpdateHeadless()
		}
		slog.Info("max ticks reached", "tick", g.Tick())

	case *console:
		c := render.NewConsole(os.Stdout)
		run(g, cfg, ticks, c.Draw, nil)

	default:
		scr, err := render.NewScreen()
		if err != nil {
			slog.Error("failed to open terminal", "error", err)
			g.Close()
			os.Exit(1)
		}
		run(g, cfg, ticks, scr.Draw, scr.Quit())
		scr.Close()
	}

	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
}

// run steps g at the configured frame rate, drawing every frame, until the
// tick limit is reached or quit is closed.
func run(g *game.Game, cfg *config.Config, ticks int, draw func([]string) error, quit <-chan struct{}) {
	if err := draw(g.Frame()); err != nil {
		slog.Error("failed to draw frame", "error", err)
		return
	}

	for ticks == 0 || int(g.Tick()) < ticks {
		select {
		case <-quit:
			slog.Info("quit requested", "tick", g.Tick())
			return
		default:
		}

		start := time.Now()
		g.Step()
		if err := draw(g.Frame()); err != nil {
			slog.Error("failed to draw frame", "error", err)
			return
		}

		// Sleep off the rest of the frame budget
		if remaining := cfg.Derived.FrameDuration - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// Package game drives the simulation: it builds the world from config, steps
// it once per frame and feeds telemetry, sound and frame output.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/bouncebits/config"
	"github.com/pthm-cable/bouncebits/render"
	"github.com/pthm-cable/bouncebits/systems"
	"github.com/pthm-cable/bouncebits/telemetry"
)

// Options configures a Game beyond what config holds.
type Options struct {
	Seed      int64  // RNG seed for the random kick
	LogStats  bool   // Log window stats via slog
	OutputDir string // Directory for CSV output (empty = disabled)
	Sound     bool   // Play a tone for every decoded character

	// StatsCallback is called with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config

	ws *systems.WorldSpace
	ps *systems.ParticleSystem

	tick  int32
	frame []string

	// Side-channel progress seen by the previous step
	decodedLen int
	dropped    int

	// Totals over the whole run
	totals systems.UpdateStats

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	speeds        []float64

	sound *Sound
}

// New builds the world described by cfg, spawns the configured particles,
// renders the initial frame and applies the random kick.
func New(cfg *config.Config, opts Options) (*Game, error) {
	var worldOpts []systems.WorldOption
	if cfg.Message.FakeText != "" {
		worldOpts = append(worldOpts, systems.WithFakeText(cfg.Message.FakeText))
	}
	ws, err := systems.NewWorldSpace(cfg.World.Rows, cfg.World.Cols, worldOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	quirks := systems.Quirks{
		DoubleStepY:         cfg.Quirks.DoubleStepY,
		MirroredRandomForce: cfg.Quirks.MirroredRandomForce,
	}
	ps := systems.NewParticleSystem(opts.Seed, quirks)
	ws.AddParticleSystem(ps)

	g := &Game{
		cfg:           cfg,
		ws:            ws,
		ps:            ps,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if opts.Sound {
		g.sound = NewSound()
		if err := g.sound.Initialize(); err != nil {
			// Non-fatal, the run continues silently
			slog.Warn("audio initialization failed", "error", err)
			g.sound = nil
		}
	}

	g.spawnParticles()

	g.frame = render.Frame(ws, 0)
	ps.ApplyRandomForce(cfg.Run.KickMax, cfg.Run.KickMin)

	return g, nil
}

// spawnParticles adds every configured spawn group in order.
func (g *Game) spawnParticles() {
	for _, s := range g.cfg.Spawns {
		g.ps.AddParticles(s.Count, g.cfg.SpawnX(s), s.Y, s.Value)
	}
}

// Tick returns the number of steps taken.
func (g *Game) Tick() int32 {
	return g.tick
}

// Frame returns the most recently rendered frame.
func (g *Game) Frame() []string {
	return g.frame
}

// Message returns the text decoded so far.
func (g *Game) Message() string {
	return g.ws.CharBuffer()
}

// WorldSpace returns the simulated world.
func (g *Game) WorldSpace() *systems.WorldSpace {
	return g.ws
}

// Totals returns the step results accumulated over the run.
func (g *Game) Totals() systems.UpdateStats {
	return g.totals
}

// Close flushes the final partial stats window, saves the message and
// releases output files and audio.
func (g *Game) Close() error {
	if g.tick > g.collector.WindowStartTick() {
		g.writeStats(g.collector.Flush(g.tick, g.ps.Speeds(g.speeds[:0]), g.ws))
	}
	g.logSummary()

	if g.sound != nil {
		g.sound.Cleanup()
	}

	if err := g.outputManager.WriteMessage(g.Message()); err != nil {
		g.outputManager.Close()
		return err
	}
	return g.outputManager.Close()
}

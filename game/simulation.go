package game

import (
	"log/slog"

	"github.com/pthm-cable/bouncebits/render"
	"github.com/pthm-cable/bouncebits/telemetry"
)

// Step advances the simulation one frame: clear the grid, apply the uniform
// force, integrate, render and record telemetry.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseReset)
	g.ws.ResetRenderData()

	g.perfCollector.StartPhase(telemetry.PhaseForces)
	g.ps.ApplyForce(g.cfg.Run.ForceX, g.cfg.Run.ForceY)

	g.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	stats := g.ps.UpdateParticles()

	g.perfCollector.StartPhase(telemetry.PhaseRasterize)
	g.frame = render.Frame(g.ws, int(g.tick))

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.totals.Add(stats)
	g.collector.Record(stats)
	g.recordDecodes()

	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// recordDecodes emits an event for every character decoded or dropped since
// the previous step.
func (g *Game) recordDecodes() {
	dec := g.ws.Decoder()
	msg := dec.Message()

	var events []telemetry.DecodeEvent
	for i := g.decodedLen; i < len(msg); i++ {
		ev := telemetry.NewDecodeEvent(g.tick, i, msg[i])
		slog.Debug("decoded", "event", ev)
		events = append(events, ev)
		g.sound.PlayChar(msg[i])
	}
	for i := g.dropped; i < dec.Dropped(); i++ {
		ev := telemetry.NewDropEvent(g.tick)
		slog.Debug("decoded", "event", ev)
		events = append(events, ev)
	}
	g.decodedLen = len(msg)
	g.dropped = dec.Dropped()

	if err := g.outputManager.WriteDecode(events...); err != nil {
		slog.Error("failed to write decode events", "error", err)
	}
}

// UpdateHeadless runs one step without pacing or display.
func (g *Game) UpdateHeadless() {
	g.Step()
}

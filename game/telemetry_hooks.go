package game

import (
	"log/slog"

	"github.com/pthm-cable/bouncebits/telemetry"
)

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.speeds = g.ps.Speeds(g.speeds[:0])
	g.writeStats(g.collector.Flush(g.tick, g.speeds, g.ws))
}

// writeStats hands a flushed window to the callback, the log and the CSV
// output.
func (g *Game) writeStats(stats telemetry.WindowStats) {
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

package game

import "log/slog"

// logSummary logs run totals and the decoded message.
func (g *Game) logSummary() {
	slog.Info("run summary",
		"ticks", g.tick,
		"particles", g.ps.Len(),
		"floor_bounces", g.totals.FloorBounces,
		"ceiling_bounces", g.totals.CeilingBounces,
		"wall_bounces", g.totals.WallBounces,
		"decoded", g.totals.Decoded,
		"dropped", g.totals.Dropped,
		"pending_bits", g.ws.BufferCount(),
		"message", g.Message(),
	)
}

package telemetry

import "github.com/pthm-cable/bouncebits/systems"

// Collector accumulates step results within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	integrated     int
	unbound        int
	floorBounces   int
	ceilingBounces int
	wallBounces    int
	bits           int
	ones           int
	decoded        int
	dropped        int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one UpdateParticles result to the current window.
func (c *Collector) Record(s systems.UpdateStats) {
	c.integrated += s.Integrated
	c.unbound += s.Unbound
	c.floorBounces += s.FloorBounces
	c.ceilingBounces += s.CeilingBounces
	c.wallBounces += s.WallBounces
	c.bits += s.FloorBounces
	c.ones += s.OneBits
	c.decoded += s.Decoded
	c.dropped += s.Dropped
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds are the particle speeds sampled at window end; ws supplies the
// side-channel state.
func (c *Collector) Flush(currentTick int32, speeds []float64, ws *systems.WorldSpace) WindowStats {
	mean, std, p50, p90 := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Particles: len(speeds),
		Steps:     c.integrated,
		Unbound:   c.unbound,

		FloorBounces:   c.floorBounces,
		CeilingBounces: c.ceilingBounces,
		WallBounces:    c.wallBounces,

		Bits:      c.bits,
		Ones:      c.ones,
		OnesRatio: BitBalance(c.bits, c.ones),
		Decoded:   c.decoded,
		Dropped:   c.dropped,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP50:  p50,
		SpeedP90:  p90,
	}
	if ws != nil {
		stats.MessageLen = len(ws.CharBuffer())
		stats.PendingBits = ws.BufferCount()
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.integrated = 0
	c.unbound = 0
	c.floorBounces = 0
	c.ceilingBounces = 0
	c.wallBounces = 0
	c.bits = 0
	c.ones = 0
	c.decoded = 0
	c.dropped = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// WindowStartTick returns the tick the current window started at.
func (c *Collector) WindowStartTick() int32 {
	return c.windowStartTick
}

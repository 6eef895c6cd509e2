package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Particles int `csv:"particles"`
	Steps     int `csv:"steps"`
	Unbound   int `csv:"unbound"`

	// Collisions during window
	FloorBounces   int `csv:"floor_bounces"`
	CeilingBounces int `csv:"ceiling_bounces"`
	WallBounces    int `csv:"wall_bounces"`

	// Side channel
	Bits        int     `csv:"bits"`
	Ones        int     `csv:"ones"`
	OnesRatio   float64 `csv:"ones_ratio"`
	Decoded     int     `csv:"decoded"`
	Dropped     int     `csv:"dropped"`
	MessageLen  int     `csv:"message_len"`
	PendingBits int     `csv:"pending_bits"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// ComputeSpeedStats calculates mean, sample standard deviation and the
// empirical 50th/90th percentiles. Std is 0 for fewer than two values.
func ComputeSpeedStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	// Quantile needs sorted input
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)

	return mean, std, p50, p90
}

// BitBalance returns the fraction of emitted bits that were ones, or 0 when
// no bits were emitted.
func BitBalance(bits, ones int) float64 {
	if bits == 0 {
		return 0
	}
	return float64(ones) / float64(bits)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("steps", s.Steps),
		slog.Int("unbound", s.Unbound),
		slog.Int("floor_bounces", s.FloorBounces),
		slog.Int("ceiling_bounces", s.CeilingBounces),
		slog.Int("wall_bounces", s.WallBounces),
		slog.Int("bits", s.Bits),
		slog.Float64("ones_ratio", s.OnesRatio),
		slog.Int("decoded", s.Decoded),
		slog.Int("dropped", s.Dropped),
		slog.Int("message_len", s.MessageLen),
		slog.Int("pending_bits", s.PendingBits),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"floor_bounces", s.FloorBounces,
		"ceiling_bounces", s.CeilingBounces,
		"wall_bounces", s.WallBounces,
		"bits", s.Bits,
		"ones_ratio", s.OnesRatio,
		"decoded", s.Decoded,
		"dropped", s.Dropped,
		"message_len", s.MessageLen,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
	)
}

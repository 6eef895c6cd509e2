package telemetry

import (
	"testing"

	"github.com/pthm-cable/bouncebits/systems"
)

func TestCollectorWindowLength(t *testing.T) {
	c := NewCollector(2.0, 1.0/60.0)
	if c.WindowDurationTicks() != 120 {
		t.Errorf("ticks per window = %d, want 120", c.WindowDurationTicks())
	}
	if c.ShouldFlush(119) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(120) {
		t.Error("should flush when the window ends")
	}

	// Windows shorter than a tick still flush every tick
	if short := NewCollector(0.001, 1.0/60.0); short.WindowDurationTicks() != 1 {
		t.Errorf("short window ticks = %d, want 1", short.WindowDurationTicks())
	}
}

func TestCollectorFlush(t *testing.T) {
	ws, err := systems.NewWorldSpace(15, 33)
	if err != nil {
		t.Fatal(err)
	}
	for _, bit := range []int{1, 0, 1} {
		ws.AddToBuffer(bit)
	}

	c := NewCollector(1.0, 0.5)
	c.Record(systems.UpdateStats{Integrated: 4, FloorBounces: 3, OneBits: 2, WallBounces: 1})
	c.Record(systems.UpdateStats{Integrated: 4, FloorBounces: 1, OneBits: 0, CeilingBounces: 2, Decoded: 1, Unbound: 1})

	stats := c.Flush(2, []float64{1, 2, 3, 4}, ws)

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 2 {
		t.Errorf("window = [%d, %d], want [0, 2]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.SimTimeSec != 1.0 {
		t.Errorf("sim_time = %v, want 1", stats.SimTimeSec)
	}
	if stats.Steps != 8 || stats.Unbound != 1 || stats.Particles != 4 {
		t.Errorf("steps/unbound/particles = %d/%d/%d, want 8/1/4", stats.Steps, stats.Unbound, stats.Particles)
	}
	if stats.FloorBounces != 4 || stats.CeilingBounces != 2 || stats.WallBounces != 1 {
		t.Errorf("bounces = %d/%d/%d, want 4/2/1", stats.FloorBounces, stats.CeilingBounces, stats.WallBounces)
	}
	if stats.Bits != 4 || stats.Ones != 2 || stats.OnesRatio != 0.5 {
		t.Errorf("bits/ones/ratio = %d/%d/%v, want 4/2/0.5", stats.Bits, stats.Ones, stats.OnesRatio)
	}
	if stats.Decoded != 1 {
		t.Errorf("decoded = %d, want 1", stats.Decoded)
	}
	if stats.PendingBits != 3 || stats.MessageLen != 0 {
		t.Errorf("pending/message_len = %d/%d, want 3/0", stats.PendingBits, stats.MessageLen)
	}
	if stats.SpeedMean != 2.5 {
		t.Errorf("speed_mean = %v, want 2.5", stats.SpeedMean)
	}

	// Counters reset and the next window starts at the flush tick
	next := c.Flush(4, nil, nil)
	if next.WindowStartTick != 2 {
		t.Errorf("next window start = %d, want 2", next.WindowStartTick)
	}
	if next.Bits != 0 || next.FloorBounces != 0 || next.Steps != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestDecodeEvents(t *testing.T) {
	e := NewDecodeEvent(30, 4, 'k')
	if e.Tick != 30 || e.Index != 4 || e.Code != 'k' || e.Char != "k" || e.Dropped {
		t.Errorf("decode event = %+v", e)
	}

	d := NewDropEvent(31)
	if !d.Dropped || d.Index != -1 {
		t.Errorf("drop event = %+v", d)
	}
}

package systems

import (
	"strings"
	"testing"
)

// runGravityScenario drops ten tag-2 particles from (1, 1) in a 15×33 world
// under a constant downward force for 1200 ticks, checking bounds every tick.
func runGravityScenario(t *testing.T, q Quirks) (*WorldSpace, UpdateStats) {
	t.Helper()
	ws, err := NewWorldSpace(15, 33)
	if err != nil {
		t.Fatal(err)
	}
	ps := NewParticleSystem(1, q)
	ws.AddParticleSystem(ps)
	ps.AddParticles(10, 1, 1, 2)

	var total UpdateStats
	for tick := 0; tick < 1200; tick++ {
		ws.ResetRenderData()
		ps.ApplyForce(0, 0.09)
		total.Add(ps.UpdateParticles())
		ws.RenderData()

		ps.Each(func(i int, p Particle) {
			if p.X() < 0 || p.X() > ws.Width() || p.Y() < 0 || p.Y() > ws.Height() {
				t.Fatalf("tick %d: particle %d at (%v, %v) left the world", tick, i, p.X(), p.Y())
			}
		})
	}
	return ws, total
}

func TestGravityScenarioLegacy(t *testing.T) {
	ws, stats := runGravityScenario(t, LegacyQuirks())

	// Each particle hits the floor 83 times; every bit is (2-1)&1 = 1.
	if stats.FloorBounces != 830 {
		t.Errorf("floor bounces = %d, want 830", stats.FloorBounces)
	}
	if stats.CeilingBounces != 0 {
		t.Errorf("ceiling bounces = %d, want 0", stats.CeilingBounces)
	}
	if stats.Decoded != 118 || stats.Dropped != 0 {
		t.Errorf("decoded/dropped = %d/%d, want 118/0", stats.Decoded, stats.Dropped)
	}

	msg := ws.CharBuffer()
	if msg != strings.Repeat("\x7f", 118) {
		t.Errorf("message = %q", msg)
	}
	// 830 = 118*7 + 4 leftover ones
	if ws.BufferCount() != 4 || ws.Buffer() != 0b1111 {
		t.Errorf("buffer = %b (count %d), want 1111 (count 4)", ws.Buffer(), ws.BufferCount())
	}
}

func TestGravityScenarioSingleStep(t *testing.T) {
	ws, stats := runGravityScenario(t, Quirks{})

	if stats.FloorBounces != 1700 {
		t.Errorf("floor bounces = %d, want 1700", stats.FloorBounces)
	}
	// 1700 bits decode into 242 characters, of which 127 fit
	if stats.Decoded != 127 || stats.Dropped != 115 {
		t.Errorf("decoded/dropped = %d/%d, want 127/115", stats.Decoded, stats.Dropped)
	}
	if len(ws.CharBuffer()) != MessageCapacity-1 {
		t.Errorf("message length = %d, want %d", len(ws.CharBuffer()), MessageCapacity-1)
	}
	if ws.Dropped() != 115 {
		t.Errorf("Dropped() = %d, want 115", ws.Dropped())
	}
	if ws.BufferCount() != 6 || ws.Buffer() != 0b111111 {
		t.Errorf("buffer = %b (count %d), want 111111 (count 6)", ws.Buffer(), ws.BufferCount())
	}
}

func TestMixedScenarioStaysPrintable(t *testing.T) {
	ws, err := NewWorldSpace(15, 33)
	if err != nil {
		t.Fatal(err)
	}
	ps := NewParticleSystem(2024, LegacyQuirks())
	ws.AddParticleSystem(ps)
	ps.AddParticles(10, 1, 1, 2)
	ps.AddParticles(10, float64(ws.Cols()-1), 1, 1)

	ws.RenderData()
	ps.ApplyRandomForce(1.0, 1.0)

	for tick := 0; tick < 1200; tick++ {
		ws.ResetRenderData()
		ps.ApplyForce(0, 0.09)
		ps.UpdateParticles()
		grid := ws.RenderData()

		ps.Each(func(i int, p Particle) {
			if p.X() < 0 || p.X() > 33 || p.Y() < 0 || p.Y() > ws.Height() {
				t.Fatalf("tick %d: particle %d at (%v, %v) left the world", tick, i, p.X(), p.Y())
			}
		})
		if grid.Occupied() == 0 {
			t.Fatalf("tick %d: nothing rendered", tick)
		}
	}

	msg := ws.CharBuffer()
	if len(msg) > MessageCapacity-1 {
		t.Errorf("message length %d exceeds capacity", len(msg))
	}
	for i := 0; i < len(msg); i++ {
		if msg[i] < ' ' {
			t.Errorf("message[%d] = %d is a control character", i, msg[i])
		}
	}
}

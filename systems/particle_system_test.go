package systems

import (
	"math"
	"testing"
)

func TestAddParticles(t *testing.T) {
	_, ps := newTestSystem(t, Quirks{})
	ps.AddParticles(10, 1, 1, 2)
	ps.AddParticle(32, 1, 1)

	if ps.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", ps.Len())
	}
	for i := 0; i < 10; i++ {
		p := mustParticle(t, ps, i)
		if p.X() != 1 || p.Y() != 1 || p.Value() != 2 {
			t.Errorf("particle %d = (%v, %v, %d), want (1, 1, 2)", i, p.X(), p.Y(), p.Value())
		}
		if p.VX() != 0 || p.VY() != 0 {
			t.Errorf("particle %d not at rest", i)
		}
	}
	if last := mustParticle(t, ps, 10); last.Value() != 1 {
		t.Errorf("last value = %d, want 1", last.Value())
	}
}

func TestAddParticlesZeroCount(t *testing.T) {
	_, ps := newTestSystem(t, Quirks{})
	ps.AddParticles(0, 1, 1, 2)
	ps.AddParticles(-3, 1, 1, 2)
	if ps.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ps.Len())
	}
}

func TestParticleAtOutOfRange(t *testing.T) {
	_, ps := newTestSystem(t, Quirks{})
	ps.AddParticles(3, 1, 1, 1)

	for _, i := range []int{-1, 3, 100} {
		if _, ok := ps.ParticleAt(i); ok {
			t.Errorf("ParticleAt(%d) should be absent", i)
		}
	}
	if _, ok := ps.ParticleAt(2); !ok {
		t.Error("ParticleAt(2) should be present")
	}
}

func TestApplyForceBroadcast(t *testing.T) {
	_, ps := newTestSystem(t, Quirks{})
	ps.AddParticles(5, 10, 10, 1)

	ps.ApplyForce(0.5, -0.25)
	ps.ApplyForce(0.5, -0.25)
	stats := ps.UpdateParticles()

	if stats.Integrated != 5 {
		t.Errorf("integrated = %d, want 5", stats.Integrated)
	}
	ps.Each(func(i int, p Particle) {
		if p.VX() != 1 || p.VY() != -0.5 {
			t.Errorf("particle %d v = (%v, %v), want (1, -0.5)", i, p.VX(), p.VY())
		}
	})
}

func TestApplyRandomForce(t *testing.T) {
	tests := []struct {
		name     string
		quirks   Quirks
		mirrored bool
	}{
		{"mirrored cos/cos", Quirks{MirroredRandomForce: true}, true},
		{"cos/sin", Quirks{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ps := newTestSystem(t, tt.quirks)
			// Centre of the world so a unit kick cannot reach a wall
			ps.AddParticles(50, 16, 16, 1)

			ps.ApplyRandomForce(1.0, 1.0)
			ps.UpdateParticles()

			var differs bool
			ps.Each(func(i int, p Particle) {
				if tt.mirrored {
					if p.VX() != p.VY() {
						t.Errorf("particle %d: vx %v != vy %v", i, p.VX(), p.VY())
					}
					if math.Abs(p.VX()) > 1+eps {
						t.Errorf("particle %d: |vx| = %v exceeds magnitude", i, math.Abs(p.VX()))
					}
				} else {
					if speed := math.Hypot(p.VX(), p.VY()); math.Abs(speed-1) > eps {
						t.Errorf("particle %d: speed = %v, want 1", i, speed)
					}
				}
				if first := mustParticle(t, ps, 0); p.VX() != first.VX() {
					differs = true
				}
			})
			if !differs {
				t.Error("every particle got the same random force")
			}
		})
	}
}

func TestApplyRandomForceMagnitudeRange(t *testing.T) {
	_, ps := newTestSystem(t, Quirks{})
	ps.AddParticles(200, 16, 16, 1)

	ps.ApplyRandomForce(0.8, 0.2)
	ps.UpdateParticles()

	ps.Each(func(i int, p Particle) {
		speed := math.Hypot(p.VX(), p.VY())
		if speed < 0.2-eps || speed > 0.8+eps {
			t.Errorf("particle %d: speed %v outside [0.2, 0.8]", i, speed)
		}
	})
}

func TestApplyRandomForceDeterministicBySeed(t *testing.T) {
	run := func(seed int64) []float64 {
		ws, err := NewWorldSpace(15, 33)
		if err != nil {
			t.Fatal(err)
		}
		ps := NewParticleSystem(seed, LegacyQuirks())
		ws.AddParticleSystem(ps)
		ps.AddParticles(8, 16, 16, 2)
		ps.ApplyRandomForce(1, 0.5)
		ps.ApplyRandomForce(1, 0.5)
		ps.UpdateParticles()

		var out []float64
		ps.Each(func(_ int, p Particle) { out = append(out, p.VX(), p.VY()) })
		return out
	}

	a, b := run(7), run(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}

	c := run(8)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical forces")
	}
}

func TestUpdateStatsCountsBounces(t *testing.T) {
	ws, ps := newTestSystem(t, Quirks{})
	ps.AddParticle(10, 33.2, 2) // floor
	ps.AddParticle(10, 0.1, 2)  // ceiling
	ps.AddParticle(32.9, 10, 2) // right wall

	p0 := mustParticle(t, ps, 0)
	p0.ApplyForce(0, 1)
	p1 := mustParticle(t, ps, 1)
	p1.ApplyForce(0, -1)
	p2 := mustParticle(t, ps, 2)
	p2.ApplyForce(1, 0)

	stats := ps.UpdateParticles()
	want := UpdateStats{Integrated: 3, FloorBounces: 1, OneBits: 1, CeilingBounces: 1, WallBounces: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if ws.BufferCount() != 1 {
		t.Errorf("buffer count = %d, want 1", ws.BufferCount())
	}
}

func TestUpdateStatsAdd(t *testing.T) {
	s := UpdateStats{Integrated: 1, FloorBounces: 2, Decoded: 1}
	s.Add(UpdateStats{Integrated: 2, Unbound: 1, CeilingBounces: 3, WallBounces: 4, Dropped: 5})
	want := UpdateStats{Integrated: 3, Unbound: 1, FloorBounces: 2, CeilingBounces: 3, WallBounces: 4, Decoded: 1, Dropped: 5}
	if s != want {
		t.Errorf("sum = %+v, want %+v", s, want)
	}
}

func TestSpeeds(t *testing.T) {
	_, ps := newTestSystem(t, Quirks{})
	ps.AddParticles(2, 10, 10, 1)
	ps.ApplyForce(3, 4)
	ps.UpdateParticles()

	speeds := ps.Speeds(nil)
	if len(speeds) != 2 {
		t.Fatalf("len = %d, want 2", len(speeds))
	}
	for _, s := range speeds {
		if math.Abs(s-5) > eps {
			t.Errorf("speed = %v, want 5", s)
		}
	}
}

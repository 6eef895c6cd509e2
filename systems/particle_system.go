package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bouncebits/components"
)

// UpdateStats summarizes one UpdateParticles call.
type UpdateStats struct {
	Integrated     int // particles stepped
	Unbound        int // particles skipped for lack of a world
	FloorBounces   int
	OneBits        int // floor bounces that emitted a 1
	CeilingBounces int
	WallBounces    int
	Decoded        int // characters appended to the message
	Dropped        int // characters decoded while the message was full
}

// Add accumulates another call's stats.
func (s *UpdateStats) Add(o UpdateStats) {
	s.Integrated += o.Integrated
	s.Unbound += o.Unbound
	s.FloorBounces += o.FloorBounces
	s.OneBits += o.OneBits
	s.CeilingBounces += o.CeilingBounces
	s.WallBounces += o.WallBounces
	s.Decoded += o.Decoded
	s.Dropped += o.Dropped
}

// ParticleSystem owns an insertion-ordered set of particles. Particles live
// as entities in the system's own ECS world; the entity slice keeps their
// order.
type ParticleSystem struct {
	world    *ecs.World
	mapper   *ecs.Map5[components.Position, components.Velocity, components.Acceleration, components.Tag, anchor]
	accel    *ecs.Filter1[components.Acceleration]
	entities []ecs.Entity

	ws     *WorldSpace
	rng    *rand.Rand
	quirks Quirks
}

// NewParticleSystem creates an empty system. The seed drives ApplyRandomForce
// and is used once, here.
func NewParticleSystem(seed int64, q Quirks) *ParticleSystem {
	world := ecs.NewWorld()
	return &ParticleSystem{
		world:  world,
		mapper: ecs.NewMap5[components.Position, components.Velocity, components.Acceleration, components.Tag, anchor](world),
		accel:  ecs.NewFilter1[components.Acceleration](world),
		rng:    rand.New(rand.NewSource(seed)),
		quirks: q,
	}
}

// SetWorldSpace sets the world that particles added from now on are bound to.
// Particles already in the system keep the world they were created with.
func (ps *ParticleSystem) SetWorldSpace(ws *WorldSpace) {
	ps.ws = ws
}

// WorldSpace returns the world the system is registered with, or nil.
func (ps *ParticleSystem) WorldSpace() *WorldSpace {
	return ps.ws
}

// Quirks returns the integration behavior the system uses.
func (ps *ParticleSystem) Quirks() Quirks {
	return ps.quirks
}

// Len returns the number of particles.
func (ps *ParticleSystem) Len() int {
	return len(ps.entities)
}

// AddParticle appends a particle at rest at (x, y) bound to the system's
// current world. Adding before the system is registered is allowed; such a
// particle is never integrated.
func (ps *ParticleSystem) AddParticle(x, y float64, value int) {
	e := ps.mapper.NewEntity(
		&components.Position{X: x, Y: y},
		&components.Velocity{},
		&components.Acceleration{},
		&components.Tag{Value: value},
		&anchor{space: ps.ws},
	)
	ps.entities = append(ps.entities, e)
}

// AddParticles appends count identical particles.
func (ps *ParticleSystem) AddParticles(count int, x, y float64, value int) {
	for i := 0; i < count; i++ {
		ps.AddParticle(x, y, value)
	}
}

// ParticleAt returns the i-th particle in insertion order. ok is false when
// i is out of range.
func (ps *ParticleSystem) ParticleAt(i int) (Particle, bool) {
	if i < 0 || i >= len(ps.entities) {
		return Particle{}, false
	}
	return ps.particle(ps.entities[i]), true
}

func (ps *ParticleSystem) particle(e ecs.Entity) Particle {
	pos, vel, acc, tag, anc := ps.mapper.Get(e)
	return Particle{pos: pos, vel: vel, acc: acc, tag: tag, anchor: anc}
}

// Each calls fn for every particle in insertion order.
func (ps *ParticleSystem) Each(fn func(i int, p Particle)) {
	for i, e := range ps.entities {
		fn(i, ps.particle(e))
	}
}

// ApplyForce adds the same force to every particle.
func (ps *ParticleSystem) ApplyForce(fx, fy float64) {
	query := ps.accel.Query()
	for query.Next() {
		acc := query.Get()
		acc.Add(fx, fy)
	}
}

// ApplyRandomForce gives each particle a force with a uniform random angle in
// [0, 2π) and magnitude in [minMag, maxMag].
func (ps *ParticleSystem) ApplyRandomForce(maxMag, minMag float64) {
	for _, e := range ps.entities {
		theta := ps.rng.Float64() * 2 * math.Pi
		mag := ps.rng.Float64()*(maxMag-minMag) + minMag

		fx := math.Cos(theta) * mag
		fy := math.Sin(theta) * mag
		if ps.quirks.MirroredRandomForce {
			fy = fx
		}
		ps.particle(e).ApplyForce(fx, fy)
	}
}

// UpdateParticles integrates every particle once, in insertion order, so the
// bits they emit reach the world's buffer in a stable order.
func (ps *ParticleSystem) UpdateParticles() UpdateStats {
	var stats UpdateStats
	for _, e := range ps.entities {
		p := ps.particle(e)
		hit, res, ok := p.Update(ps.quirks)
		if !ok {
			stats.Unbound++
			continue
		}
		stats.Integrated++
		if hit.Has(BounceFloor) {
			stats.FloorBounces++
			stats.OneBits += p.tag.Bit()
			switch res {
			case BufferDecoded:
				stats.Decoded++
			case BufferCapacityExceeded:
				stats.Dropped++
			}
		}
		if hit.Has(BounceCeiling) {
			stats.CeilingBounces++
		}
		if hit&(BounceLeft|BounceRight) != 0 {
			stats.WallBounces++
		}
	}
	return stats
}

// Speeds appends the speed of every particle to dst and returns it.
func (ps *ParticleSystem) Speeds(dst []float64) []float64 {
	for _, e := range ps.entities {
		p := ps.particle(e)
		dst = append(dst, math.Hypot(p.VX(), p.VY()))
	}
	return dst
}

// Package systems contains the particle integration, world space and
// side-channel decoding for the simulation.
package systems

import "github.com/pthm-cable/bouncebits/components"

// CollisionDamping scales the reflected velocity on every bounce.
const CollisionDamping = 0.85

// Bounce is a bitmask of the edges a particle hit during one update.
type Bounce uint8

const (
	BounceFloor   Bounce = 1 << iota // y passed height, emits a bit
	BounceCeiling                    // y passed 0
	BounceRight                      // x passed width
	BounceLeft                       // x passed 0

	BounceNone Bounce = 0
)

// Has reports whether all edges in o are set.
func (b Bounce) Has(o Bounce) bool { return b&o == o && o != 0 }

// Quirks selects between the simulator's legacy integration behavior and the
// corrected one.
type Quirks struct {
	// DoubleStepY adds vy to y a second time after the y-axis branch, on
	// every path, as the first version of the simulator did.
	DoubleStepY bool
	// MirroredRandomForce makes ApplyRandomForce use cos(θ) for both force
	// components instead of (cos θ, sin θ).
	MirroredRandomForce bool
}

// LegacyQuirks reproduces the first version's output exactly.
func LegacyQuirks() Quirks {
	return Quirks{DoubleStepY: true, MirroredRandomForce: true}
}

// anchor is the particle's non-owning link to the world it was created in.
type anchor struct {
	space *WorldSpace
}

// Particle is a handle to one point mass stored in a ParticleSystem.
// It stays valid until the next particle is added to the same system.
type Particle struct {
	pos    *components.Position
	vel    *components.Velocity
	acc    *components.Acceleration
	tag    *components.Tag
	anchor *anchor
}

// X returns the x position in world units.
func (p Particle) X() float64 { return p.pos.X }

// Y returns the y position in world units.
func (p Particle) Y() float64 { return p.pos.Y }

// VX returns the x velocity.
func (p Particle) VX() float64 { return p.vel.X }

// VY returns the y velocity.
func (p Particle) VY() float64 { return p.vel.Y }

// Value returns the particle's tag.
func (p Particle) Value() int { return p.tag.Value }

// WorldSpace returns the world the particle is anchored to, or nil.
func (p Particle) WorldSpace() *WorldSpace { return p.anchor.space }

// ApplyForce adds to the pending acceleration. Calls before the next Update sum.
func (p Particle) ApplyForce(fx, fy float64) {
	p.acc.Add(fx, fy)
}

// Update integrates one tick against the anchored world's bounds. A floor
// bounce pushes the tag's bit into the world's buffer; the result of that
// push is returned alongside the edges hit. Unanchored particles are left
// untouched and ok is false.
func (p Particle) Update(q Quirks) (hit Bounce, res BufferResult, ok bool) {
	ws := p.anchor.space
	if ws == nil {
		return BounceNone, BufferPending, false
	}
	width, height := ws.Width(), ws.Height()

	// x
	p.vel.X += p.acc.X
	var edge int
	p.pos.X, p.vel.X, edge = stepAxis(p.pos.X, p.vel.X, width)
	switch edge {
	case edgeUpper:
		hit |= BounceRight
	case edgeLower:
		hit |= BounceLeft
	}
	p.pos.X = clampAxis(p.pos.X, width)

	// y
	p.vel.Y += p.acc.Y
	p.pos.Y, p.vel.Y, edge = stepAxis(p.pos.Y, p.vel.Y, height)
	switch edge {
	case edgeUpper:
		hit |= BounceFloor
		res = ws.AddToBuffer(p.tag.Bit())
	case edgeLower:
		hit |= BounceCeiling
	}
	if q.DoubleStepY {
		p.pos.Y += p.vel.Y
	}
	p.pos.Y = clampAxis(p.pos.Y, height)

	p.acc.Reset()
	return hit, res, true
}

const (
	edgeNone = iota
	edgeUpper
	edgeLower
)

// stepAxis advances one axis by vel inside [0, bound], reflecting and
// damping the velocity when the tentative position leaves the range.
func stepAxis(pos, vel, bound float64) (float64, float64, int) {
	next := pos + vel
	switch {
	case next > bound:
		return bound + (bound - pos) - vel, -vel * CollisionDamping, edgeUpper
	case next < 0:
		return -pos - vel, -vel * CollisionDamping, edgeLower
	default:
		return next, vel, edgeNone
	}
}

func clampAxis(pos, bound float64) float64 {
	if pos > bound {
		return bound
	}
	if pos < 0 {
		return 0
	}
	return pos
}

package components

// Position is a particle's location in world units.
type Position struct {
	X, Y float64
}

// Velocity is the per-tick displacement of a particle.
type Velocity struct {
	X, Y float64
}

// Acceleration is the force accumulated since the last integration step.
// It is consumed and zeroed by every update.
type Acceleration struct {
	X, Y float64
}

// Add accumulates a force.
func (a *Acceleration) Add(fx, fy float64) {
	a.X += fx
	a.Y += fy
}

// Reset zeroes the pending acceleration.
func (a *Acceleration) Reset() {
	a.X, a.Y = 0, 0
}

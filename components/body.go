// Package components defines ECS components for particles.
package components

// Tag is the integer a particle carries. It selects the glyph the particle is
// drawn with and is the payload of the bit it emits on a floor bounce.
type Tag struct {
	Value int
}

// Bit returns the side-channel bit for this tag: (value - 1) & 1.
func (t Tag) Bit() int {
	return (t.Value - 1) & 1
}

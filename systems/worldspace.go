package systems

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// RowAspect converts grid rows into the finer y coordinate space:
// height = rows * RowAspect.
const RowAspect = 2.222

// ErrInvalidDimension is returned when a world is created with a
// non-positive row or column count.
var ErrInvalidDimension = errors.New("invalid world dimension")

// WorldSpace owns the render grid, the bit buffer and message decoded from
// floor bounces, and the list of particle systems drawn onto the grid.
type WorldSpace struct {
	rows, cols    int
	width, height float64

	grid    *Grid
	systems []*ParticleSystem
	decoder BitDecoder
}

// WorldOption configures a WorldSpace.
type WorldOption func(*WorldSpace)

// WithFakeText makes the decoder store text[i] as the i-th message
// character instead of the decoded one, for as long as text lasts.
func WithFakeText(text string) WorldOption {
	return func(ws *WorldSpace) {
		ws.decoder.fakeText = text
	}
}

// NewWorldSpace creates a world with a rows×cols grid.
func NewWorldSpace(rows, cols int, opts ...WorldOption) (*WorldSpace, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: rows=%d cols=%d", ErrInvalidDimension, rows, cols)
	}
	ws := &WorldSpace{
		rows:   rows,
		cols:   cols,
		width:  float64(cols),
		height: float64(rows) * RowAspect,
		grid:   newGrid(rows, cols),
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws, nil
}

// Rows returns the grid row count.
func (ws *WorldSpace) Rows() int { return ws.rows }

// Cols returns the grid column count.
func (ws *WorldSpace) Cols() int { return ws.cols }

// Width returns the x extent in world units.
func (ws *WorldSpace) Width() float64 { return ws.width }

// Height returns the y extent in world units.
func (ws *WorldSpace) Height() float64 { return ws.height }

// Systems returns the registered particle systems.
func (ws *WorldSpace) Systems() []*ParticleSystem { return ws.systems }

// AddParticleSystem binds ps to this world and registers it for rendering.
// A system registered with another world is moved here.
func (ws *WorldSpace) AddParticleSystem(ps *ParticleSystem) {
	if prev := ps.WorldSpace(); prev != nil && prev != ws {
		prev.removeParticleSystem(ps)
	}
	ps.SetWorldSpace(ws)
	if !slices.Contains(ws.systems, ps) {
		ws.systems = append(ws.systems, ps)
	}
}

func (ws *WorldSpace) removeParticleSystem(ps *ParticleSystem) {
	ws.systems = slices.DeleteFunc(ws.systems, func(s *ParticleSystem) bool { return s == ps })
}

// Cell maps a world position to its grid cell, clamped into the grid.
func (ws *WorldSpace) Cell(x, y float64) (row, col int) {
	col = clampIndex(math.Floor(x), ws.cols)
	row = clampIndex(math.Floor(y/RowAspect), ws.rows)
	return row, col
}

func clampIndex(v float64, n int) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > float64(n-1) {
		return n - 1
	}
	return int(v)
}

// RenderData paints every registered particle's tag onto the grid and
// returns it. Later particles overwrite earlier ones in the same cell. The
// grid is owned by the world and is not copied.
func (ws *WorldSpace) RenderData() *Grid {
	for _, ps := range ws.systems {
		ps.Each(func(_ int, p Particle) {
			row, col := ws.Cell(p.X(), p.Y())
			ws.grid.set(row, col, p.Value())
		})
	}
	return ws.grid
}

// ResetRenderData zeroes the grid. Call it once per tick before RenderData
// so cells a particle has left do not keep its tag.
func (ws *WorldSpace) ResetRenderData() {
	ws.grid.clear()
}

// AddToBuffer pushes one bit into the side channel. The seventh bit decodes
// a character and clears the buffer in the same call.
func (ws *WorldSpace) AddToBuffer(bit int) BufferResult {
	return ws.decoder.Push(bit)
}

// ProcessBuffer decodes the current buffer into the message.
func (ws *WorldSpace) ProcessBuffer() BufferResult {
	return ws.decoder.Process()
}

// ClearBuffer resets the bit buffer and counter.
func (ws *WorldSpace) ClearBuffer() {
	ws.decoder.Clear()
}

// Buffer returns the partial bit accumulation (0..127).
func (ws *WorldSpace) Buffer() int { return ws.decoder.Buffer() }

// BufferCount returns how many bits are waiting (0..6).
func (ws *WorldSpace) BufferCount() int { return ws.decoder.Count() }

// CharBuffer returns the decoded message.
func (ws *WorldSpace) CharBuffer() string { return ws.decoder.Message() }

// Dropped returns how many decoded characters were discarded because the
// message was full.
func (ws *WorldSpace) Dropped() int { return ws.decoder.Dropped() }

// Decoder exposes the side-channel state for telemetry.
func (ws *WorldSpace) Decoder() *BitDecoder { return &ws.decoder }

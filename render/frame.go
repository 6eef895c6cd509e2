// Package render turns a WorldSpace into text frames and shows them on a
// terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/bouncebits/systems"
)

// frameNumberWidth is the width of the frame counter in the header.
const frameNumberWidth = 4

// Glyph maps a cell value to the character drawn for it.
func Glyph(value int) byte {
	switch value {
	case 2:
		return '1'
	case 1:
		return '0'
	default:
		return ' '
	}
}

// LineCount returns the number of lines Frame produces for a grid with the
// given number of rows.
func LineCount(rows int) int {
	return rows + 4
}

// Frame rasterizes ws and returns the frame as lines: a header carrying the
// frame number, one bordered line per grid row, a footer, the pending bit
// buffer in hex and the decoded message.
func Frame(ws *systems.WorldSpace, frame int) []string {
	grid := ws.RenderData()
	rows, cols := grid.Rows(), grid.Cols()

	lines := make([]string, 0, LineCount(rows))

	var sb strings.Builder
	sb.WriteByte('*')
	fmt.Fprintf(&sb, "%*d", frameNumberWidth, frame)
	sb.WriteString(strings.Repeat("-", max(cols-frameNumberWidth, 0)))
	sb.WriteByte('*')
	lines = append(lines, sb.String())

	row := make([]int, 0, cols)
	line := make([]byte, cols+2)
	line[0], line[cols+1] = '|', '|'
	for r := 0; r < rows; r++ {
		row = grid.Row(r, row)
		for c, v := range row {
			line[c+1] = Glyph(v)
		}
		lines = append(lines, string(line))
	}

	lines = append(lines, "*"+strings.Repeat("-", cols)+"*")
	lines = append(lines, fmt.Sprintf("%x", ws.Buffer()))
	lines = append(lines, ws.CharBuffer())

	return lines
}

package render

import (
	"bufio"
	"fmt"
	"io"
)

// clearLine moves the cursor up one line, erases it and returns to column 0.
const clearLine = "\033[A\033[2K\r"

// Console prints frames to a plain terminal, overwriting the previous frame
// in place with ANSI cursor movement.
type Console struct {
	w     *bufio.Writer
	shown int // lines printed by the last frame
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: bufio.NewWriter(w)}
}

// Draw erases the previous frame and prints lines.
func (c *Console) Draw(lines []string) error {
	for i := 0; i < c.shown; i++ {
		c.w.WriteString(clearLine)
	}
	for _, l := range lines {
		c.w.WriteString(l)
		c.w.WriteByte('\n')
	}
	c.shown = len(lines)
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Screen draws frames on a full-screen tcell terminal.
type Screen struct {
	screen tcell.Screen
	style  tcell.Style
	quit   chan struct{}
}

// NewScreen initializes the terminal.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	return newScreen(s)
}

func newScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	s.HideCursor()
	s.Clear()

	scr := &Screen{
		screen: s,
		style:  tcell.StyleDefault,
		quit:   make(chan struct{}),
	}
	go scr.pollEvents()
	return scr, nil
}

// pollEvents watches for quit keys until the screen is finalized.
func (s *Screen) pollEvents() {
	for {
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				close(s.quit)
				return
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

// Quit is closed once the user presses Esc, Ctrl-C or q.
func (s *Screen) Quit() <-chan struct{} {
	return s.quit
}

// Draw replaces the screen contents with lines, clipped to the terminal.
func (s *Screen) Draw(lines []string) error {
	s.screen.Clear()
	width, height := s.screen.Size()
	for y, line := range lines {
		if y >= height {
			break
		}
		for x, r := range []rune(line) {
			if x >= width {
				break
			}
			s.screen.SetContent(x, y, r, nil, s.style)
		}
	}
	s.screen.Show()
	return nil
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.screen.Fini()
}

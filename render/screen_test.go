package render

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestScreenDraw(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	scr, err := newScreen(sim)
	if err != nil {
		t.Fatal(err)
	}
	defer scr.Close()
	sim.SetSize(6, 2)

	if err := scr.Draw([]string{"*  1*", "|01|", "clipped"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, '*'},
		{3, 0, '1'},
		{1, 1, '0'},
		{2, 1, '1'},
		{3, 1, '|'},
	}
	for _, tt := range tests {
		got, _, _, _ := sim.GetContent(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestScreenQuitKey(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	scr, err := newScreen(sim)
	if err != nil {
		t.Fatal(err)
	}
	defer scr.Close()

	sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case <-scr.Quit():
	case <-time.After(2 * time.Second):
		t.Fatal("escape did not signal quit")
	}
}

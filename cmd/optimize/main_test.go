package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestEvalLogWritesHeaderOnceAndTracksBest(t *testing.T) {
	var buf bytes.Buffer
	l := newEvalLog(&buf)

	evals := []struct {
		fitness, decoded, quality float64
		x                         []float64
	}{
		{-10, 8, 0.25, []float64{0, 0.09, 1, 1}},
		{-30, 20, 0.5, []float64{0.01, 0.12, 0.5, 1.5}},
		{-5, 4, 0.25, []float64{0, 0.2, 0, 2}},
	}
	for _, e := range evals {
		if _, err := l.add(e.fitness, e.decoded, e.quality, e.x); err != nil {
			t.Fatal(err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "eval,fitness,decoded,quality,force_x,force_y,kick_min,kick_max" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "2,-30,20,0.5,") {
		t.Errorf("row 2 = %q", lines[2])
	}

	if l.count != 3 {
		t.Errorf("count = %d, want 3", l.count)
	}
	if l.best.Eval != 2 || l.best.Decoded != 20 {
		t.Errorf("best = %+v, want eval 2", l.best)
	}
	if l.bestX[3] != 1.5 {
		t.Errorf("best kick_max = %v, want 1.5", l.bestX[3])
	}
}

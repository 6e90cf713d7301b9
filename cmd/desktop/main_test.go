package main

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
)

func TestRGBA(t *testing.T) {
	c := rgba("#7ef3c5", 1)
	if c.R != 0x7e || c.G != 0xf3 || c.B != 0xc5 || c.A != 0xff {
		t.Errorf("opaque = %+v", c)
	}
	half := rgba("#ffffff", 0.5)
	if half.A != 127 || half.R != 127 {
		t.Errorf("half alpha should be premultiplied, got %+v", half)
	}
	if z := rgba("#ffffff", -1); z.A != 0 {
		t.Errorf("negative alpha should clamp to 0, got %+v", z)
	}
}

func TestTrackGameOver(t *testing.T) {
	s := loop.NewSession(loop.SessionOptions{Seed: 1, Logger: log.New(io.Discard)})
	g := newGame(s)

	st := loop.NewGameState(500, loop.ControlToggle)
	st.Status = loop.StatusGameOver
	st.Score = 500
	st.LastTick = 3
	g.trackGameOver(st)
	if g.gameOverMsg != gameOverMessages[3] {
		t.Errorf("message = %q", g.gameOverMsg)
	}
	if g.newRecord {
		t.Error("matching the record is not a new high score")
	}

	// Staying in game over keeps the first pick.
	st.LastTick = 4
	g.trackGameOver(st)
	if g.gameOverMsg != gameOverMessages[3] {
		t.Error("message should only change on the transition")
	}
}

func TestLayout(t *testing.T) {
	g := newGame(loop.NewSession(loop.SessionOptions{Seed: 1, Logger: log.New(io.Discard)}))
	w, h := g.Layout(1920, 1080)
	if w != config.FieldWidth || h != config.FieldHeight {
		t.Errorf("Layout = %dx%d", w, h)
	}
}

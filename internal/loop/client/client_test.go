package client

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/tomz197/cryptosurvivor/internal/draw"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/loop/server"
	"github.com/tomz197/cryptosurvivor/internal/object"
	"github.com/tomz197/cryptosurvivor/internal/physics"
	"github.com/tomz197/cryptosurvivor/internal/store"
)

func fixedSize(w, h int) draw.TermSizeFunc {
	return func() (int, int, error) { return w, h, nil }
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakeServer hands out one controllable handle.
type fakeServer struct {
	mu           sync.Mutex
	handle       *server.ClientHandle
	unregistered []int
}

func (f *fakeServer) RegisterClient(username string) *server.ClientHandle {
	f.handle = &server.ClientHandle{ID: 7, Username: username, EventsCh: make(chan server.ClientEvent, 4)}
	return f.handle
}

func (f *fakeServer) UnregisterClient(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = append(f.unregistered, id)
}

func (f *fakeServer) GetSnapshot() *server.LobbySnapshot {
	return &server.LobbySnapshot{Players: 1, TopScores: []server.TopScoreEntry{{Username: "alice", Score: 42}}}
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		rw, rh, oc, or int
	}{
		{"fits", 80, 24, 80, 24, 0, 0},
		{"too wide", config.MaxTermWidth + 40, 24, config.MaxTermWidth, 24, 20, 0},
		{"too tall", 80, config.MaxTermHeight + 11, 80, config.MaxTermHeight, 0, 5},
		{"zero", 0, 0, 1, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw, rh, oc, or := clampTermSize(tt.w, tt.h)
			if rw != tt.rw || rh != tt.rh || oc != tt.oc || or != tt.or {
				t.Errorf("clampTermSize(%d, %d) = %d %d %d %d, want %d %d %d %d",
					tt.w, tt.h, rw, rh, oc, or, tt.rw, tt.rh, tt.oc, tt.or)
			}
		})
	}
}

func TestRunExitsOnQuit(t *testing.T) {
	var out bytes.Buffer
	c := NewClient(nil, strings.NewReader("q"), &out, ClientOptions{
		TermSizeFunc: fixedSize(80, 24),
		Username:     "bob",
		Seed:         1,
		Logger:       quietLogger(),
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not exit on q")
	}
	if !c.Session().Closed() {
		t.Error("session should be closed after Run")
	}
	if !strings.Contains(out.String(), "\033[?25l") {
		t.Error("expected cursor to be hidden during the run")
	}
}

func TestRunStartsGameOnSpace(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	mem := store.NewMemory()
	if err := mem.SetHighScore(context.Background(), "carol", 77); err != nil {
		t.Fatal(err)
	}
	c := NewClient(nil, pr, io.Discard, ClientOptions{
		TermSizeFunc: fixedSize(80, 24),
		Username:     "carol",
		Store:        mem,
		Seed:         3,
		Logger:       quietLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go pw.Write([]byte(" "))

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	st := c.Session().State()
	if st.Status != loop.StatusPlaying {
		t.Fatalf("status = %s, want playing", st.Status)
	}
	if st.HighScore != 77 {
		t.Errorf("high score = %d, want stored 77", st.HighScore)
	}
}

func TestRunSwitchesControlMode(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	c := NewClient(nil, pr, io.Discard, ClientOptions{
		TermSizeFunc: fixedSize(80, 24),
		Seed:         5,
		Logger:       quietLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go pw.Write([]byte("\t"))

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got := c.Session().State().ControlMode; got != loop.ControlSteer {
		t.Errorf("control mode = %s, want steer", got)
	}
}

func TestServerEvents(t *testing.T) {
	t.Run("shutdown shows notice", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		fs := &fakeServer{}
		c := NewClient(fs, pr, io.Discard, ClientOptions{TermSizeFunc: fixedSize(80, 24), Seed: 1, Logger: quietLogger()})
		fs.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}

		c.processServerEvents()
		if !c.state.Shutdown {
			t.Fatal("expected shutdown state")
		}
		if c.state.shutdownTimer != config.ShutdownDisplaySeconds {
			t.Errorf("shutdown timer = %v", c.state.shutdownTimer)
		}
	})

	t.Run("closed events end the run", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		fs := &fakeServer{}
		c := NewClient(fs, pr, io.Discard, ClientOptions{TermSizeFunc: fixedSize(80, 24), Seed: 1, Logger: quietLogger()})
		close(fs.handle.EventsCh)

		done := make(chan error, 1)
		go func() { done <- c.Run(context.Background()) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("client did not exit when events closed")
		}
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if len(fs.unregistered) != 1 || fs.unregistered[0] != 7 {
			t.Errorf("unregistered = %v, want [7]", fs.unregistered)
		}
	})
}

func TestLeaderLine(t *testing.T) {
	if got := leaderLine(&server.LobbySnapshot{}); got != "" {
		t.Errorf("empty lobby leader = %q", got)
	}
	long := strings.Repeat("x", config.MaxUsernameLength+5)
	got := leaderLine(&server.LobbySnapshot{TopScores: []server.TopScoreEntry{{Username: long, Score: 9}}})
	if strings.Contains(got, long) {
		t.Errorf("leader name should be truncated: %q", got)
	}
	if !strings.HasSuffix(got, "       9") {
		t.Errorf("leader score should be right-aligned: %q", got)
	}
}

func TestDrawField(t *testing.T) {
	screen := object.NewScreen(config.FieldWidth, config.FieldHeight)
	cv := draw.NewCanvas(config.FieldWidth, config.FieldHeight/2, config.FieldWidth, config.FieldHeight)
	cx, cy := screen.Center()
	px, py := physics.OrbitPosition(cx, cy, config.PlayerStartAngle, config.PlayerOrbitRadius)

	st := loop.NewGameState(0, loop.ControlToggle)
	st.Status = loop.StatusPlaying
	drawField(cv, st, screen, 0, 0, 0)

	if col, ok := cv.Pixel(px, py); !ok || col.Hex() != draw.Hex(playerColor).Hex() {
		t.Errorf("player pixel = %s (set %v), want %s", col.Hex(), ok, playerColor)
	}
	if col, ok := cv.Pixel(3, 3); !ok || col.Hex() != draw.Hex(backgroundColor).Hex() {
		t.Errorf("corner pixel = %s (set %v), want background", col.Hex(), ok)
	}

	cv.Clear()
	st.Status = loop.StatusGameOver
	drawField(cv, st, screen, 0, 0, 0)
	if col, _ := cv.Pixel(px, py); col.Hex() == draw.Hex(playerColor).Hex() {
		t.Error("player should not be drawn after game over")
	}
}

func TestDirection(t *testing.T) {
	st := loop.NewGameState(0, loop.ControlToggle)
	st.PlayerDirection = -1
	if direction(st) != -1 {
		t.Error("toggle mode should follow PlayerDirection")
	}
	st.ControlMode = loop.ControlSteer
	st.TargetAngle = st.PlayerAngle + 0.5
	if direction(st) != 1 {
		t.Error("steer mode should head toward the target")
	}
}

func TestDrawFieldSmallTerminalKeepsShipVisible(t *testing.T) {
	screen := object.NewScreen(config.FieldWidth, config.FieldHeight)
	cv := draw.NewCanvas(45, 30, config.FieldWidth, config.FieldHeight)
	cx, cy := screen.Center()
	px, py := physics.OrbitPosition(cx, cy, config.PlayerStartAngle, config.PlayerOrbitRadius)

	st := loop.NewGameState(0, loop.ControlToggle)
	st.Status = loop.StatusPlaying
	drawField(cv, st, screen, 0, 0, 0)

	if col, ok := cv.Pixel(px, py); !ok || col.Hex() != draw.Hex(playerColor).Hex() {
		t.Errorf("ship pixel on a small canvas = %s (set %v)", col.Hex(), ok)
	}
}

func TestDrawObstacleCorePulses(t *testing.T) {
	screen := object.NewScreen(config.FieldWidth, config.FieldHeight)
	cv := draw.NewCanvas(config.FieldWidth, config.FieldHeight/2, config.FieldWidth, config.FieldHeight)
	cx, cy := screen.Center()
	o := object.Obstacle{Angle: 0, Span: 1, Radius: 150, Thickness: 10, Color: "#ff7b7b", Type: object.ObstacleNormal}

	drawObstacle(cv, o, cx, cy, 0)
	want := draw.Dim(draw.Hex(o.Color), object.ObstacleGlow(o, 0)).Hex()
	if col, ok := cv.Pixel(cx+150, cy); !ok || col.Hex() != want {
		t.Errorf("core pixel = %s (set %v), want %s", col.Hex(), ok, want)
	}
}

func TestDrawPopupsTakeFieldBackground(t *testing.T) {
	var out bytes.Buffer
	renderer := lipgloss.NewRenderer(&out)
	renderer.SetColorProfile(termenv.TrueColor)
	c := &Client{
		canvas:      draw.NewCanvas(100, 50, config.FieldWidth, config.FieldHeight),
		chunkWriter: draw.NewChunkWriter(&out, 0, 0),
		styles:      newStyles(renderer),
	}
	x, y := float64(config.FieldWidth)/2, float64(config.FieldHeight)/2
	c.canvas.Set(x, y, draw.Hex("#ff0000"))

	st := loop.NewGameState(0, loop.ControlToggle)
	st.ScorePopups = []object.ScorePopup{{Text: "+50", X: x, Y: y, Life: 10, MaxLife: 10, Color: "#ffdd99"}}
	c.drawPopups(st)
	if err := c.chunkWriter.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "+50") {
		t.Fatalf("popup text missing: %q", got)
	}
	if !strings.Contains(got, "48;2;255;0;0") {
		t.Errorf("popup should take the red field background: %q", got)
	}
}

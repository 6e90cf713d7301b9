package server

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/spectate"
)

type recordingPublisher struct {
	mu     sync.Mutex
	frames []spectate.Frame
}

func (p *recordingPublisher) Publish(f spectate.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, f)
	return nil
}

func (p *recordingPublisher) last() (spectate.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return spectate.Frame{}, false
	}
	return p.frames[len(p.frames)-1], true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newTestServer(t *testing.T, pub Publisher) *Server {
	t.Helper()
	s := NewServer(Options{Publisher: pub, Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s
}

func stateWithScore(score int) loop.GameState {
	st := loop.NewGameState(0, loop.ControlToggle)
	st.Status = loop.StatusPlaying
	st.Score = score
	return st
}

func TestServerTracksPlayersAndScores(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestServer(t, pub)

	a := s.RegisterClient("alice")
	b := s.RegisterClient("bob")
	c := s.RegisterClient("carol")
	a.Publish(stateWithScore(100))
	b.Publish(stateWithScore(300))
	c.Publish(stateWithScore(100))

	waitFor(t, func() bool {
		snap := s.GetSnapshot()
		return snap.Players == 3 && len(snap.TopScores) == 3
	})
	top := s.GetSnapshot().TopScores
	if top[0].Username != "bob" || top[1].Username != "alice" || top[2].Username != "carol" {
		t.Fatalf("leaderboard order = %+v", top)
	}

	waitFor(t, func() bool {
		f, ok := pub.last()
		return ok && len(f.Sessions) == 3
	})
	f, _ := pub.last()
	if f.Sessions[0].Player != "alice" || f.Players != 3 {
		t.Fatalf("frame = %+v", f)
	}

	s.UnregisterClient(b.ID)
	waitFor(t, func() bool { return s.GetSnapshot().Players == 2 })
	if _, ok := <-b.EventsCh; ok {
		t.Fatal("events channel should be closed on unregister")
	}
}

func TestServerShutdownNotifiesClients(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.RegisterClient("alice")
	waitFor(t, func() bool { return s.GetSnapshot().Players == 1 })

	done := make(chan struct{})
	go func() {
		s.Shutdown(5 * time.Second)
		close(done)
	}()

	select {
	case ev := <-h.EventsCh:
		if ev.Type != EventServerShutdown {
			t.Fatalf("event = %v", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no shutdown event")
	}
	s.UnregisterClient(h.ID)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Shutdown did not return after the last client left")
	}
}

func TestShutdownTimesOut(t *testing.T) {
	s := newTestServer(t, nil)
	s.RegisterClient("stubborn")
	waitFor(t, func() bool { return s.GetSnapshot().Players == 1 })

	start := time.Now()
	s.Shutdown(300 * time.Millisecond)
	if time.Since(start) > 2*time.Second {
		t.Fatal("Shutdown ignored its timeout")
	}
}

func TestTopScoresLimit(t *testing.T) {
	var entries []TopScoreEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, TopScoreEntry{Score: i, clientID: i})
	}
	top := topScores(entries, topScoreCount)
	if len(top) != topScoreCount || top[0].Score != 7 {
		t.Fatalf("top = %+v", top)
	}
}

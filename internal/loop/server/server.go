package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/spectate"
)

// GameServer is the interface clients use to communicate with the server.
// Decouples the Client from the concrete Server implementation.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	GetSnapshot() *LobbySnapshot
}

// Publisher receives a frame of every live session.
type Publisher interface {
	Publish(spectate.Frame) error
}

// Server tracks live sessions, keeps a lobby snapshot for their HUDs and
// forwards their state to spectators.
type Server struct {
	snapshot     atomic.Pointer[LobbySnapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex
	publisher    Publisher
	log          *log.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string
	EventsCh chan ClientEvent // Events sent to client (shutdown)
	latest   atomic.Pointer[spectate.Snapshot]
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// Options configures a Server.
type Options struct {
	Publisher Publisher // Optional spectator sink
	Logger    *log.Logger
}

// NewServer creates a new session server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		publisher:    opts.Publisher,
		log:          logger,
	}
	s.snapshot.Store(&LobbySnapshot{})
	return s
}

// Publish records the latest state of the client's session.
func (h *ClientHandle) Publish(state loop.GameState) {
	snap := spectate.FromState(h.Username, state)
	h.latest.Store(&snap)
}

// Latest returns the last published state, or nil.
func (h *ClientHandle) Latest() *spectate.Snapshot {
	return h.latest.Load()
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	interval := config.TickTime * config.SpectatorPublishEvery
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.processRegistrations()
		frame := s.createSnapshot()
		if s.publisher != nil {
			if err := s.publisher.Publish(frame); err != nil {
				s.log.Warn("publish spectator frame", "err", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// GetSnapshot returns the current lobby snapshot.
func (s *Server) GetSnapshot() *LobbySnapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.log.Info("player joined", "user", handle.Username, "id", handle.ID)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
				s.log.Info("player left", "user", handle.Username, "id", handle.ID)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// createSnapshot stores a new lobby snapshot and returns the spectator frame.
func (s *Server) createSnapshot() spectate.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frame := spectate.Frame{Time: time.Now().UnixMilli(), Players: len(s.clients)}
	entries := make([]TopScoreEntry, 0, len(s.clients))
	for _, handle := range s.clients {
		snap := handle.Latest()
		if snap == nil {
			continue
		}
		frame.Sessions = append(frame.Sessions, *snap)
		entries = append(entries, TopScoreEntry{Username: handle.Username, Score: snap.Score, clientID: handle.ID})
	}
	sortSessions(frame.Sessions)

	s.snapshot.Store(&LobbySnapshot{
		Players:   len(s.clients),
		TopScores: topScores(entries, topScoreCount),
	})
	return frame
}

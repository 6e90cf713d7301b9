package client

import (
	"time"

	"github.com/tomz197/cryptosurvivor/internal/loop"
)

// ClientState holds per-connection host state. The game itself lives in the
// client's loop.Session.
type ClientState struct {
	Running       bool          // Client loop running
	Shutdown      bool          // Server is shutting down
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	delta         time.Duration // Frame delta time
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool
	prevStatus    loop.Status
	gameOverMsg   string // Picked once per game over
	newRecord     bool
	tick          int
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:    true,
		prevStatus: loop.StatusStart,
	}
}

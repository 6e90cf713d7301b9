package loop

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

// HighScoreStore persists the best score per player.
type HighScoreStore interface {
	GetHighScore(ctx context.Context, player string) (int, error)
	SetHighScore(ctx context.Context, player string, score int) error
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	Player string
	Store  HighScoreStore // Optional
	Screen object.Screen
	Mode   ControlMode
	Seed   int64 // 0 picks a time-based seed
	Logger *log.Logger
}

// Session drives one player's game: it owns the state, the randomness and
// the high-score persistence. A Session is not safe for concurrent use;
// input handlers and Tick must run on the same goroutine.
type Session struct {
	player string
	store  HighScoreStore
	screen object.Screen
	rng    *rand.Rand
	log    *log.Logger

	state       GameState
	knownHigh   int
	highAtStart int // Record when the current game began
	closed      bool
	persist     sync.WaitGroup
}

// NewSession creates a session on the start screen.
func NewSession(opts SessionOptions) *Session {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	screen := opts.Screen
	if screen.Width <= 0 || screen.Height <= 0 {
		screen = object.NewScreen(config.FieldWidth, config.FieldHeight)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		player: opts.Player,
		store:  opts.Store,
		screen: screen,
		rng:    rand.New(rand.NewSource(seed)),
		log:    logger,
		state:  NewGameState(0, opts.Mode),
	}
}

// LoadHighScore reads the stored record. Any failure counts as no record.
func (s *Session) LoadHighScore(ctx context.Context) int {
	if s.store == nil {
		return s.state.HighScore
	}
	score, err := s.store.GetHighScore(ctx, s.player)
	if err != nil {
		s.log.Warn("load high score", "player", s.player, "err", err)
		score = 0
	}
	if score < 0 {
		score = 0
	}
	if score > s.state.HighScore {
		s.state.HighScore = score
	}
	s.knownHigh = s.state.HighScore
	return s.state.HighScore
}

// State returns a copy of the current state.
func (s *Session) State() GameState { return s.state.Clone() }

// Status returns the current phase.
func (s *Session) Status() Status { return s.state.Status }

// Screen returns the logical field the session simulates in.
func (s *Session) Screen() object.Screen { return s.screen }

// Player returns the player name scores are stored under.
func (s *Session) Player() string { return s.player }

func (s *Session) frame(now int64) Frame {
	return Frame{Now: now, Screen: s.screen, Rand: s.rng}
}

// Start begins a new game from the start screen.
func (s *Session) Start(now int64) bool {
	if s.closed || s.state.Status != StatusStart {
		return false
	}
	s.highAtStart = s.state.HighScore
	s.state = StartGame(s.state, s.frame(now))
	return true
}

// NewRecord reports whether the finished game beat the record that stood
// when it started. Tying the record does not count.
func (s *Session) NewRecord() bool {
	return s.state.Status == StatusGameOver && s.state.Score > 0 && s.state.Score > s.highAtStart
}

// Restart returns to the start screen after a game over.
func (s *Session) Restart() bool {
	if s.closed || s.state.Status != StatusGameOver {
		return false
	}
	s.state.Status = StatusStart
	s.state.Combo = 0
	return true
}

// Primary handles the main action (click, tap, Space or Enter): start on
// the title screen, reverse direction while playing in toggle mode, and
// return to the title screen after a game over.
func (s *Session) Primary(now int64) {
	switch s.state.Status {
	case StatusStart:
		s.Start(now)
	case StatusPlaying:
		if s.state.ControlMode == ControlToggle {
			s.ToggleDirection()
		}
	case StatusGameOver:
		s.Restart()
	}
}

// ToggleDirection reverses the rotation sense in toggle mode.
func (s *Session) ToggleDirection() {
	if s.state.Status != StatusPlaying {
		return
	}
	if s.state.PlayerDirection >= 0 {
		s.state.PlayerDirection = -1
	} else {
		s.state.PlayerDirection = 1
	}
}

// SetControlMode switches between toggle and steer control.
func (s *Session) SetControlMode(m ControlMode) {
	s.state.ControlMode = m
	s.state.TargetAngle = s.state.PlayerAngle
}

// SteerTo sets the steer mode target angle.
func (s *Session) SteerTo(angle float64) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return
	}
	s.state.TargetAngle = physics.NormalizeAngle(angle)
}

// SteerToPoint aims at a point in field coordinates.
// Points inside the dead zone around the center are ignored; their angle
// jumps with every pixel of pointer jitter.
func (s *Session) SteerToPoint(x, y float64) {
	cx, cy := s.screen.Center()
	if physics.PointInCircle(x, y, cx, cy, config.SteerDeadZone) {
		return
	}
	s.SteerTo(math.Atan2(y-cy, x-cx))
}

// Nudge aims the steer target delta radians away from the player, for
// keyboard steering.
func (s *Session) Nudge(delta float64) {
	s.SteerTo(s.state.PlayerAngle + delta)
}

// SetDirection sets the toggle mode rotation sense; dir is -1 or 1.
func (s *Session) SetDirection(dir int) {
	if s.state.Status != StatusPlaying || dir == 0 {
		return
	}
	if dir < 0 {
		s.state.PlayerDirection = -1
	} else {
		s.state.PlayerDirection = 1
	}
}

// Close stops the session. Subsequent ticks do nothing.
func (s *Session) Close() { s.closed = true }

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed }

// Tick advances the session to now. Obstacles and power-ups are spawned
// after the update so new entities appear on the next frame.
func (s *Session) Tick(now int64) {
	if s.closed {
		return
	}
	f := s.frame(now)
	switch s.state.Status {
	case StatusPlaying:
		next := UpdateGame(s.state, f)
		if next.Status == StatusPlaying {
			next = SpawnHazards(next, f)
		}
		s.state = next
		if next.Status == StatusGameOver {
			s.recordScore(next.Score)
		}
	default:
		s.state = AdvanceEffects(s.state, f)
	}
}

// recordScore persists score when it beats the record this session knows of.
func (s *Session) recordScore(score int) {
	if score <= s.knownHigh {
		return
	}
	s.knownHigh = score
	if s.store == nil {
		return
	}
	player, store := s.player, s.store
	s.persist.Add(1)
	go func() {
		defer s.persist.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SetHighScore(ctx, player, score); err != nil {
			s.log.Warn("save high score", "player", player, "score", score, "err", err)
			return
		}
		s.log.Debug("high score saved", "player", player, "score", score)
	}()
}

// Wait blocks until pending high-score writes finish.
func (s *Session) Wait() { s.persist.Wait() }

package loop

import (
	"math"
	"math/rand"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

// Status represents the current game phase of a session.
type Status string

const (
	StatusStart    Status = "start"    // Title screen
	StatusPlaying  Status = "playing"  // Active gameplay
	StatusGameOver Status = "gameover" // Player was hit, show restart prompt
)

// ControlMode selects how the player moves around the orbit.
type ControlMode int

const (
	ControlToggle ControlMode = iota // Constant speed, click/Space reverses direction
	ControlSteer                     // Player eases toward a pointer-driven target angle
)

// ParseControlMode maps "steer" to ControlSteer and anything else to ControlToggle.
func ParseControlMode(s string) ControlMode {
	if s == "steer" {
		return ControlSteer
	}
	return ControlToggle
}

// String returns the config name of the mode.
func (m ControlMode) String() string {
	if m == ControlSteer {
		return "steer"
	}
	return "toggle"
}

// GameState is the authoritative snapshot of one session.
// Timestamps are milliseconds since the Unix epoch.
type GameState struct {
	Status          Status
	Score           int
	HighScore       int
	PlayerAngle     float64
	TargetAngle     float64 // Steer mode target
	PlayerDirection int     // Toggle mode rotation sense, ±1
	ControlMode     ControlMode

	Obstacles      []object.Obstacle
	Particles      []object.Particle
	PowerUps       []object.PowerUp
	ActivePowerUps []object.ActivePowerUp
	ScorePopups    []object.ScorePopup

	Wave  int
	Combo int

	StartTime        int64
	LastTick         int64
	LastSpawnTime    int64
	LastBossSpawn    int64
	LastPowerUpSpawn int64
	NextPowerUpSpawn int64
	LastNearMissTime int64

	ScreenShake float64
	TimeScore   float64 // Accumulated time points (multiplier applied per tick)
	BonusScore  int     // Accumulated near-miss points
}

// Frame is the per-tick context handed to the update engine.
// Rand is the only source of randomness the engine uses.
type Frame struct {
	Now    int64
	Screen object.Screen
	Rand   *rand.Rand
}

// NewGameState creates an idle session state on the start screen.
func NewGameState(highScore int, mode ControlMode) GameState {
	return GameState{
		Status:          StatusStart,
		HighScore:       highScore,
		PlayerAngle:     config.PlayerStartAngle,
		TargetAngle:     config.PlayerStartAngle,
		PlayerDirection: 1,
		ControlMode:     mode,
		Wave:            1,
	}
}

// Clone returns a deep copy so callers on other goroutines can read it safely.
func (s GameState) Clone() GameState {
	s.Obstacles = cloneSlice(s.Obstacles)
	s.Particles = cloneSlice(s.Particles)
	s.PowerUps = cloneSlice(s.PowerUps)
	s.ActivePowerUps = cloneSlice(s.ActivePowerUps)
	s.ScorePopups = cloneSlice(s.ScorePopups)
	return s
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// ElapsedSeconds returns play time at now, never negative.
func (s GameState) ElapsedSeconds(now int64) float64 {
	if now <= s.StartTime {
		return 0
	}
	return float64(now-s.StartTime) / 1000
}

// PlayerPosition resolves the player's screen position.
func (s GameState) PlayerPosition(screen object.Screen) (float64, float64) {
	cx, cy := screen.Center()
	return physics.OrbitPosition(cx, cy, s.PlayerAngle, config.PlayerOrbitRadius)
}

// HasPowerUp reports whether effect t is active.
func (s GameState) HasPowerUp(t object.PowerUpType) bool {
	return object.HasActivePowerUp(s.ActivePowerUps, t)
}

// PowerUpRemaining returns the seconds left on a timed effect (0 if inactive).
func (s GameState) PowerUpRemaining(t object.PowerUpType, now int64) float64 {
	var best int64
	for _, a := range s.ActivePowerUps {
		if a.Type == t && a.EndTime > best {
			best = a.EndTime
		}
	}
	if best <= now {
		return 0
	}
	return float64(best-now) / 1000
}

// modifiers are the power-up effects in force for one tick.
type modifiers struct {
	speedFactor     float64
	sizeMultiplier  float64
	scoreMultiplier float64
	magnet          bool
}

func activeModifiers(active []object.ActivePowerUp) modifiers {
	m := modifiers{speedFactor: 1, sizeMultiplier: 1, scoreMultiplier: 1}
	if object.HasActivePowerUp(active, object.PowerUpSlowMo) {
		m.speedFactor = config.SlowMoFactor
	}
	if object.HasActivePowerUp(active, object.PowerUpMini) {
		m.sizeMultiplier = config.MiniSizeMultiplier
	}
	if object.HasActivePowerUp(active, object.PowerUpDouble) {
		m.scoreMultiplier = config.DoubleScoreMultiplier
	}
	m.magnet = object.HasActivePowerUp(active, object.PowerUpMagnet)
	return m
}

// advancePlayer moves the player one tick according to the control mode.
func advancePlayer(s GameState) float64 {
	switch s.ControlMode {
	case ControlSteer:
		diff := physics.NormalizeAngle(s.TargetAngle - s.PlayerAngle)
		step := physics.Clamp(diff*config.PlayerSteerEase, -config.PlayerMaxSteerStep, config.PlayerMaxSteerStep)
		return physics.NormalizeAngle(s.PlayerAngle + step)
	default:
		dir := s.PlayerDirection
		if dir == 0 {
			dir = 1
		}
		return physics.NormalizeAngle(s.PlayerAngle + config.PlayerSpeed*float64(dir))
	}
}

// scoreAt computes the displayed score without ever going backwards.
func scoreAt(s GameState) int {
	score := int(math.Floor(s.TimeScore)) + s.BonusScore
	if score < s.Score {
		return s.Score
	}
	return score
}

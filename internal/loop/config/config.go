// Package config centralizes all tunable game parameters.
package config

import (
	"math"
	"time"
)

// Play field - the logical resolution every host simulates in.
// Actual rendering scales to fit the terminal or window.
const (
	FieldWidth  = 360
	FieldHeight = 480
)

// Player
const (
	PlayerOrbitRadius  = 80.0 // px from field center
	PlayerSpeed        = 0.05 // rad/tick in toggle mode
	PlayerSteerEase    = 0.15 // fraction of the remaining angle covered per tick in steer mode
	PlayerMaxSteerStep = 0.12 // rad/tick cap in steer mode
	PlayerNudgeStep    = 0.15 // rad per held-key tick when steering with the keyboard
	SteerDeadZone      = 12.0 // px around the center where pointer positions are ignored
	PlayerStartAngle   = -math.Pi / 2
	MiniSizeMultiplier = 0.7
)

// Collision and near-miss tolerances
const (
	CollisionRadialBuffer  = 5.0 // px, scaled by the size multiplier
	CollisionAngleBuffer   = 0.1 // rad, scaled by the size multiplier
	NearMissMinDistance    = -30.0
	NearMissMaxDistance    = -20.0
	NearMissAngleBuffer    = 0.3
	NearMissBonus          = 50
	ComboTimeoutMs         = 3000
	ObstacleRemoveRadius   = 20.0
	SlowMoFactor           = 0.5
	DoubleScoreMultiplier  = 2.0
	PointsPerSecond        = 100.0
	WaveLengthSeconds      = 20.0
	ScreenShakeDecay       = 0.5
	ScreenShakeNearMiss    = 3.0
	ScreenShakeShieldBreak = 10.0
	ScreenShakeGameOver    = 15.0
	ScreenShakeMax         = 20.0
)

// Obstacle spawning
const (
	BaseSpawnIntervalMs      = 1500
	MinSpawnIntervalMs       = 500
	WaveDifficultyMultiplier = 0.1
	MinWaveIntervalFactor    = 0.5
	TimeDifficultyMsPerSec   = 15.0 // ms of interval removed per elapsed second
	DifficultyRampSeconds    = 30.0
	MaxDifficulty            = 2.0
	SpawnRadiusJitter        = 20.0
	SpawnRadiusMinMargin     = 60.0 // spawn radius is at least this far outside the orbit
	FastObstacleWave         = 3
	FastObstacleChance       = 0.20
	WideObstacleWave         = 4
	WideObstacleChance       = 0.15
	BossIntervalMs           = 30000
	BossMinElapsedMs         = 30000
	BossGapHalfWidth         = 0.2 // rad
)

// Power-ups
const (
	PowerUpOrbitOffset          = 25.0 // px outside the player orbit
	PowerUpRotation             = 0.01 // rad/tick
	PowerUpCollectAngle         = 0.3
	PowerUpCollectRadius        = 30.0
	MagnetCollectMultiplier     = 2.0
	PowerUpSpawnIntervalMinMs   = 10000
	PowerUpSpawnIntervalRangeMs = 5000
	MaxPowerUps                 = 3
	CollectParticleCount        = 15
)

// Power-up durations
const (
	SlowMoDuration = 5000 * time.Millisecond
	MiniDuration   = 10000 * time.Millisecond
	MagnetDuration = 5000 * time.Millisecond
	DoubleDuration = 10000 * time.Millisecond
)

// Particles and popups
const (
	TrailParticleChance    = 0.3
	MinStarParticles       = 30
	ExplosionParticleCount = 30
	ScorePopupLife         = 60
	ScorePopupDrift        = 1.0
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	MaxTermWidth          = 160
	MaxTermHeight         = 60
	MaxUsernameLength     = 16
	SpectatorPublishEvery = 3 // ticks between spectator snapshots (20Hz at 60Hz)
)

// Tick rate
const (
	TickRate = 60
	TickTime = time.Second / TickRate
)

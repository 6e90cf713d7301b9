package object

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

// ObstacleType categorizes a hazard.
type ObstacleType string

const (
	ObstacleNormal ObstacleType = "normal"
	ObstacleFast   ObstacleType = "fast"
	ObstacleWide   ObstacleType = "wide"
	ObstacleBoss   ObstacleType = "boss"
)

var obstacleColors = []string{"#ff7b7b", "#ffdd99", "#4be1a1"}

const (
	fastObstacleColor = "#ff4d6d"
	wideObstacleColor = "#ffa94d"
	bossObstacleColor = "#b57bff"
)

// Obstacle is an arc-shaped hazard sweeping inward toward the center.
type Obstacle struct {
	ID          string
	Angle       float64      // Center angle (radians)
	Span        float64      // Angular width (radians)
	Radius      float64      // Current distance from center
	StartRadius float64      // Radius at spawn
	RadialSpeed float64      // Inward px per tick
	Spin        float64      // Rotation rad per tick
	Thickness   float64      // Band thickness (px)
	Color       string       // Hex color
	Type        ObstacleType // Category
	Gaps        []float64    // Escape-window centers relative to Angle (boss only)
	NearMissed  bool         // Already awarded a near-miss bonus
}

// Difficulty converts elapsed play time into the obstacle speed factor, capped at MaxDifficulty.
func Difficulty(elapsedSeconds float64) float64 {
	return physics.Clamp(elapsedSeconds/config.DifficultyRampSeconds, 0, config.MaxDifficulty)
}

// SpawnObstacle creates a regular hazard at the outer edge of the field.
// Faster and wider variants unlock as the wave number grows.
func SpawnObstacle(rng *rand.Rand, screen Screen, difficulty float64, wave int) Obstacle {
	difficulty = physics.Clamp(difficulty, 0, config.MaxDifficulty)
	if wave < 1 {
		wave = 1
	}

	radius := ObstacleSpawnRadius(screen) + rng.Float64()*config.SpawnRadiusJitter
	waveSpin := 1 + float64(wave-1)*0.1

	o := Obstacle{
		ID:          NewID(rng),
		Angle:       rng.Float64() * physics.TwoPi,
		Span:        randRange(rng, 0.4, 1.5),
		Radius:      radius,
		StartRadius: radius,
		RadialSpeed: 1 + difficulty*0.5 + rng.Float64()*1.5,
		Spin:        (rng.Float64() - 0.5) * 0.04 * waveSpin,
		Thickness:   randRange(rng, 14, 24),
		Color:       pick(rng, obstacleColors),
		Type:        ObstacleNormal,
	}

	roll := rng.Float64()
	switch {
	case wave >= config.FastObstacleWave && roll < config.FastObstacleChance:
		o.Type = ObstacleFast
		o.RadialSpeed *= 1.5
		o.Span *= 0.7
		o.Thickness *= 0.8
		o.Color = fastObstacleColor
	case wave >= config.WideObstacleWave && roll < config.FastObstacleChance+config.WideObstacleChance:
		o.Type = ObstacleWide
		o.Span = math.Min(o.Span*1.5, 2.2)
		o.Thickness *= 1.3
		o.RadialSpeed *= 0.8
		o.Color = wideObstacleColor
	}
	return o
}

// SpawnBossObstacle creates a slow half-circle hazard with two escape gaps.
func SpawnBossObstacle(rng *rand.Rand, screen Screen) Obstacle {
	radius := ObstacleSpawnRadius(screen) + config.SpawnRadiusJitter
	spin := 0.005
	if rng.Intn(2) == 0 {
		spin = -spin
	}
	return Obstacle{
		ID:          NewID(rng),
		Angle:       rng.Float64() * physics.TwoPi,
		Span:        math.Pi,
		Radius:      radius,
		StartRadius: radius,
		RadialSpeed: 0.8,
		Spin:        spin,
		Thickness:   28,
		Color:       bossObstacleColor,
		Type:        ObstacleBoss,
		Gaps:        []float64{-math.Pi / 4, math.Pi / 4},
	}
}

// InGap reports whether angle falls inside one of the obstacle's escape windows.
func (o Obstacle) InGap(angle float64) bool {
	if len(o.Gaps) == 0 {
		return false
	}
	rel := physics.NormalizeAngle(angle - o.Angle)
	for _, g := range o.Gaps {
		if physics.AngularDistance(rel, g) < config.BossGapHalfWidth {
			return true
		}
	}
	return false
}

// Covers reports whether angle is within the arc widened by buffer, outside any gap.
func (o Obstacle) Covers(angle, buffer float64) bool {
	if physics.AngularDistance(angle, o.Angle) >= o.Span/2+buffer {
		return false
	}
	return !o.InGap(angle)
}

// Segments returns the drawn parts of the arc as [start, end] angle pairs,
// with escape gaps cut out. Angles are not normalized.
func (o Obstacle) Segments() [][2]float64 {
	start, end := o.Angle-o.Span/2, o.Angle+o.Span/2
	if len(o.Gaps) == 0 {
		return [][2]float64{{start, end}}
	}
	cuts := make([][2]float64, 0, len(o.Gaps))
	for _, g := range o.Gaps {
		c := o.Angle + g
		cuts = append(cuts, [2]float64{c - config.BossGapHalfWidth, c + config.BossGapHalfWidth})
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i][0] < cuts[j][0] })

	var segments [][2]float64
	cursor := start
	for _, cut := range cuts {
		if cut[0] > cursor {
			segments = append(segments, [2]float64{cursor, math.Min(cut[0], end)})
		}
		cursor = math.Max(cursor, cut[1])
		if cursor >= end {
			break
		}
	}
	if cursor < end {
		segments = append(segments, [2]float64{cursor, end})
	}
	return segments
}

// UpdateObstacles moves every obstacle inward (scaled by speedFactor) and applies
// its spin. Obstacles that reach the center are dropped.
func UpdateObstacles(obstacles []Obstacle, speedFactor float64) []Obstacle {
	kept := make([]Obstacle, 0, len(obstacles))
	for _, o := range obstacles {
		o.Radius -= o.RadialSpeed * speedFactor
		o.Angle = physics.NormalizeAngle(o.Angle + o.Spin)
		if o.Radius <= config.ObstacleRemoveRadius {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// SpawnInterval returns the delay before the next obstacle. The interval shrinks
// multiplicatively with the wave (down to half the base) and linearly with elapsed
// time, and never drops below MinSpawnIntervalMs.
func SpawnInterval(elapsedSeconds float64, wave int) time.Duration {
	if math.IsNaN(elapsedSeconds) || elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	if wave < 1 {
		wave = 1
	}
	factor := math.Max(config.MinWaveIntervalFactor, 1-float64(wave-1)*config.WaveDifficultyMultiplier)
	ms := config.BaseSpawnIntervalMs*factor - elapsedSeconds*config.TimeDifficultyMsPerSec
	if ms < config.MinSpawnIntervalMs {
		ms = config.MinSpawnIntervalMs
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// ObstacleGlow returns a pulsing brightness factor for rendering; boss and fast
// hazards pulse harder.
func ObstacleGlow(o Obstacle, timeMs int64) float64 {
	t := float64(timeMs)
	switch o.Type {
	case ObstacleBoss:
		return 1.0 + 0.5*math.Sin(t/100)
	case ObstacleFast:
		return 0.9 + 0.4*math.Sin(t/80)
	default:
		return 0.8 + 0.2*math.Sin(t/200)
	}
}

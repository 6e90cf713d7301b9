// Package object holds the transient entities of the play field (obstacles,
// particles, power-ups, score popups) and the functions that spawn and
// advance them. Every random choice is drawn from a caller-supplied
// *rand.Rand so seeded sessions replay identically.
package object

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
)

// Screen represents the play-field dimensions supplied by the host.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen creates a screen of the given size with its derived center.
// Non-positive sizes fall back to the default field.
func NewScreen(width, height int) Screen {
	if width <= 0 {
		width = config.FieldWidth
	}
	if height <= 0 {
		height = config.FieldHeight
	}
	return Screen{
		Width:   width,
		Height:  height,
		CenterX: width / 2,
		CenterY: height / 2,
	}
}

// Center returns the field center as floats.
func (s Screen) Center() (float64, float64) {
	return float64(s.CenterX), float64(s.CenterY)
}

// ObstacleSpawnRadius is the distance from the center at which hazards appear:
// the outer edge of the field, and never closer than a margin outside the orbit.
func ObstacleSpawnRadius(s Screen) float64 {
	edge := float64(max(s.Width, s.Height)) / 2
	return math.Max(edge, config.PlayerOrbitRadius+config.SpawnRadiusMinMargin)
}

// PowerUpOrbitRadius is the orbit collectibles ride on, between the player and the hazards.
func PowerUpOrbitRadius() float64 {
	return config.PlayerOrbitRadius + config.PowerUpOrbitOffset
}

// NewID returns a UUID drawn from rng.
func NewID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// randRange returns a uniform value in [lo, hi).
func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// pick returns a uniformly chosen element of values.
func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.Intn(len(values))]
}

package loop

import (
	"math"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

// CheckCollision reports whether the player at playerAngle overlaps any obstacle.
// sizeMultiplier shrinks both tolerances while the mini power-up is active.
func CheckCollision(playerAngle float64, obstacles []object.Obstacle, sizeMultiplier float64) bool {
	return FindCollision(playerAngle, obstacles, sizeMultiplier) >= 0
}

// FindCollision returns the index of the first obstacle the player overlaps, or -1.
func FindCollision(playerAngle float64, obstacles []object.Obstacle, sizeMultiplier float64) int {
	if sizeMultiplier <= 0 || math.IsNaN(sizeMultiplier) {
		sizeMultiplier = 1
	}
	for i, o := range obstacles {
		radial := math.Abs(o.Radius - config.PlayerOrbitRadius)
		if radial > o.Thickness/2+config.CollisionRadialBuffer*sizeMultiplier {
			continue
		}
		if o.Covers(playerAngle, config.CollisionAngleBuffer*sizeMultiplier) {
			return i
		}
	}
	return -1
}

// NearMiss describes the outcome of a near-miss check.
type NearMiss struct {
	Hit   bool
	Index int // Obstacle index when Hit
	Bonus int // Base bonus before the combo multiplier
}

// CheckNearMiss finds the first obstacle sitting just inside the orbit and
// angularly close to the player. Obstacles already credited are skipped.
func CheckNearMiss(playerAngle float64, obstacles []object.Obstacle) NearMiss {
	for i, o := range obstacles {
		if o.NearMissed {
			continue
		}
		diff := o.Radius - config.PlayerOrbitRadius
		if diff <= config.NearMissMinDistance || diff >= config.NearMissMaxDistance {
			continue
		}
		if physics.AngularDistance(playerAngle, o.Angle) < o.Span/2+config.NearMissAngleBuffer {
			return NearMiss{Hit: true, Index: i, Bonus: config.NearMissBonus}
		}
	}
	return NearMiss{Index: -1}
}

// UpdateCombo advances the combo counter. A near miss inside the timeout
// window extends the streak, one outside it restarts at 1, and no near miss
// for longer than the window resets the streak to 0.
func UpdateCombo(combo int, lastNearMiss int64, hit bool, now int64) (int, int64) {
	since := now - lastNearMiss
	if hit {
		if combo > 0 && since <= config.ComboTimeoutMs {
			return combo + 1, now
		}
		return 1, now
	}
	if combo > 0 && since > config.ComboTimeoutMs {
		return 0, lastNearMiss
	}
	return combo, lastNearMiss
}

// addShake adds a screen shake pulse without exceeding the cap.
func addShake(current, pulse float64) float64 {
	return math.Min(current+pulse, config.ScreenShakeMax)
}

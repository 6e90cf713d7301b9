package object

import (
	"math/rand"
	"time"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

// PowerUpType names a collectible effect.
type PowerUpType string

const (
	PowerUpShield PowerUpType = "shield"
	PowerUpSlowMo PowerUpType = "slowmo"
	PowerUpMini   PowerUpType = "mini"
	PowerUpMagnet PowerUpType = "magnet"
	PowerUpDouble PowerUpType = "double"
)

// PowerUpTypes lists every collectible in spawn order.
var PowerUpTypes = []PowerUpType{PowerUpShield, PowerUpSlowMo, PowerUpMini, PowerUpMagnet, PowerUpDouble}

// PowerUpInfo is the display metadata of a power-up type.
type PowerUpInfo struct {
	Name  string
	Color string
	Glyph rune
}

var powerUpInfo = map[PowerUpType]PowerUpInfo{
	PowerUpShield: {Name: "Diamond Hands", Color: "#4be1a1", Glyph: 'S'},
	PowerUpSlowMo: {Name: "HODL Mode", Color: "#ffdd99", Glyph: 'H'},
	PowerUpMini:   {Name: "Smol Bean", Color: "#7ef3c5", Glyph: 'm'},
	PowerUpMagnet: {Name: "Magnet", Color: "#ff7bff", Glyph: 'M'},
	PowerUpDouble: {Name: "Moon Bonus", Color: "#ffdd99", Glyph: '2'},
}

// Info returns the display metadata for t.
func (t PowerUpType) Info() PowerUpInfo {
	if info, ok := powerUpInfo[t]; ok {
		return info
	}
	return PowerUpInfo{Name: string(t), Color: "#ffffff", Glyph: '?'}
}

// Duration returns how long the effect lasts once activated. Shields have no
// duration; they last until consumed.
func (t PowerUpType) Duration() time.Duration {
	switch t {
	case PowerUpSlowMo:
		return config.SlowMoDuration
	case PowerUpMini:
		return config.MiniDuration
	case PowerUpMagnet:
		return config.MagnetDuration
	case PowerUpDouble:
		return config.DoubleDuration
	default:
		return 0
	}
}

// PowerUp is a collectible orbiting between the player and the hazards.
type PowerUp struct {
	ID        string
	Type      PowerUpType
	X, Y      float64 // Resolved screen position
	Angle     float64
	Radius    float64
	Collected bool
}

// ActivePowerUp is an effect currently applied to the player.
// EndTime is in ms since epoch; shields ignore it and use Used instead.
type ActivePowerUp struct {
	Type    PowerUpType
	EndTime int64
	Used    bool
}

// SpawnPowerUp creates a random power-up on the power-up orbit.
func SpawnPowerUp(rng *rand.Rand, screen Screen) PowerUp {
	pu := PowerUp{
		ID:     NewID(rng),
		Type:   pick(rng, PowerUpTypes),
		Angle:  rng.Float64() * physics.TwoPi,
		Radius: PowerUpOrbitRadius(),
	}
	cx, cy := screen.Center()
	pu.X, pu.Y = physics.OrbitPosition(cx, cy, pu.Angle, pu.Radius)
	return pu
}

// UpdatePowerUpPositions rotates every uncollected power-up a little and
// recomputes its position around (centerX, centerY).
func UpdatePowerUpPositions(powerUps []PowerUp, centerX, centerY float64) []PowerUp {
	updated := make([]PowerUp, 0, len(powerUps))
	for _, pu := range powerUps {
		if !pu.Collected {
			pu.Angle = physics.NormalizeAngle(pu.Angle + config.PowerUpRotation)
			pu.X, pu.Y = physics.OrbitPosition(centerX, centerY, pu.Angle, pu.Radius)
		}
		updated = append(updated, pu)
	}
	return updated
}

// CheckPowerUpCollection splits powerUps into the ones the player touches this
// tick and the rest. Magnet widens both tolerances. Already-collected entries
// are never collected twice.
func CheckPowerUpCollection(playerAngle, playerRadius float64, powerUps []PowerUp, magnet bool) (collected, remaining []PowerUp) {
	angleTol := config.PowerUpCollectAngle
	radiusTol := config.PowerUpCollectRadius
	if magnet {
		angleTol *= config.MagnetCollectMultiplier
		radiusTol *= config.MagnetCollectMultiplier
	}

	for _, pu := range powerUps {
		if pu.Collected {
			remaining = append(remaining, pu)
			continue
		}
		angleDiff := physics.AngularDistance(playerAngle, pu.Angle)
		radiusDiff := playerRadius - pu.Radius
		if radiusDiff < 0 {
			radiusDiff = -radiusDiff
		}
		if angleDiff < angleTol && radiusDiff < radiusTol {
			pu.Collected = true
			collected = append(collected, pu)
		} else {
			remaining = append(remaining, pu)
		}
	}
	return collected, remaining
}

// ActivatePowerUp turns a collected power-up into an active effect.
func ActivatePowerUp(t PowerUpType, now int64) ActivePowerUp {
	if t == PowerUpShield {
		return ActivePowerUp{Type: t}
	}
	return ActivePowerUp{Type: t, EndTime: now + t.Duration().Milliseconds()}
}

// UpdateActivePowerUps keeps unused shields and timed effects that have not expired.
func UpdateActivePowerUps(active []ActivePowerUp, now int64) []ActivePowerUp {
	kept := make([]ActivePowerUp, 0, len(active))
	for _, a := range active {
		if a.Type == PowerUpShield {
			if !a.Used {
				kept = append(kept, a)
			}
			continue
		}
		if a.EndTime > now {
			kept = append(kept, a)
		}
	}
	return kept
}

// HasActivePowerUp reports whether an effect of type t is in force.
// Consumed shields do not count.
func HasActivePowerUp(active []ActivePowerUp, t PowerUpType) bool {
	for _, a := range active {
		if a.Type == t && !(a.Type == PowerUpShield && a.Used) {
			return true
		}
	}
	return false
}

// UseShield marks exactly one unused shield as used. It reports false when
// there was no shield to consume. The input slice is not modified.
func UseShield(active []ActivePowerUp) ([]ActivePowerUp, bool) {
	out := make([]ActivePowerUp, len(active))
	copy(out, active)
	for i := range out {
		if out[i].Type == PowerUpShield && !out[i].Used {
			out[i].Used = true
			return out, true
		}
	}
	return out, false
}

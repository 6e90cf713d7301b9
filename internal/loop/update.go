package loop

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
)

const (
	nearMissColor     = "#ffdd99"
	shieldBrokenColor = "#4be1a1"
	comboColor        = "#ff7bff"
)

// UpdateGame advances a playing session by one tick and returns the new state.
// The input state is not modified. States that are not playing are returned as is.
func UpdateGame(s GameState, f Frame) GameState {
	if s.Status != StatusPlaying {
		return s
	}
	rng := frameRand(f)
	now := f.Now

	delta := now - s.LastTick
	if s.LastTick == 0 {
		delta = now - s.StartTime
	}
	if delta < 0 {
		delta = 0
	}

	mods := activeModifiers(s.ActivePowerUps)

	s.PlayerAngle = advancePlayer(s)
	s.Obstacles = object.UpdateObstacles(s.Obstacles, mods.speedFactor)

	cx, cy := f.Screen.Center()
	px, py := s.PlayerPosition(f.Screen)

	s.Particles = object.UpdateParticles(s.Particles)
	if rng.Float64() < config.TrailParticleChance {
		s.Particles = append(s.Particles, object.TrailParticle(rng, px, py))
	}
	for stars := object.CountKind(s.Particles, object.ParticleStar); stars < config.MinStarParticles; stars++ {
		s.Particles = append(s.Particles, object.StarParticle(rng, f.Screen))
	}

	s.PowerUps = object.UpdatePowerUpPositions(s.PowerUps, cx, cy)
	collected, remaining := object.CheckPowerUpCollection(s.PlayerAngle, config.PlayerOrbitRadius, s.PowerUps, mods.magnet)
	s.PowerUps = remaining
	active := cloneSlice(s.ActivePowerUps)
	for _, pu := range collected {
		info := pu.Type.Info()
		active = append(active, object.ActivatePowerUp(pu.Type, now))
		s.Particles = append(s.Particles, object.CollectParticles(rng, pu.X, pu.Y, info.Color, config.CollectParticleCount)...)
		s.ScorePopups = append(s.ScorePopups, object.NewScorePopup(rng, info.Name, pu.X, pu.Y-10, info.Color))
	}
	s.ActivePowerUps = object.UpdateActivePowerUps(active, now)

	// Effects picked up this tick apply to the rest of it.
	mods = activeModifiers(s.ActivePowerUps)

	nm := CheckNearMiss(s.PlayerAngle, s.Obstacles)
	s.Combo, s.LastNearMissTime = UpdateCombo(s.Combo, s.LastNearMissTime, nm.Hit, now)
	if nm.Hit {
		s.Obstacles[nm.Index].NearMissed = true
		bonus := nm.Bonus * s.Combo
		s.BonusScore += bonus
		text := fmt.Sprintf("+%d", bonus)
		color := nearMissColor
		if s.Combo > 1 {
			text = fmt.Sprintf("+%d x%d", bonus, s.Combo)
			color = comboColor
		}
		s.ScorePopups = append(s.ScorePopups, object.NewScorePopup(rng, text, px, py-20, color))
		s.ScreenShake = addShake(s.ScreenShake, config.ScreenShakeNearMiss)
	}

	if idx := FindCollision(s.PlayerAngle, s.Obstacles, mods.sizeMultiplier); idx >= 0 {
		var shielded bool
		s.ActivePowerUps, shielded = object.UseShield(s.ActivePowerUps)
		if !shielded {
			s.Status = StatusGameOver
			if s.Score > s.HighScore {
				s.HighScore = s.Score
			}
			s.Particles = append(s.Particles, object.ExplosionParticles(rng, px, py, config.ExplosionParticleCount)...)
			s.ScreenShake = config.ScreenShakeGameOver
			s.LastTick = now
			return s
		}
		s.Obstacles = removeObstacle(s.Obstacles, idx)
		s.Particles = append(s.Particles, object.CollectParticles(rng, px, py, shieldBrokenColor, config.CollectParticleCount)...)
		s.ScorePopups = append(s.ScorePopups, object.NewScorePopup(rng, "SHIELD BROKEN", px, py-20, shieldBrokenColor))
		s.ScreenShake = addShake(s.ScreenShake, config.ScreenShakeShieldBreak)
	}

	s.TimeScore += float64(delta) / 1000 * config.PointsPerSecond * mods.scoreMultiplier
	s.Score = scoreAt(s)

	s.ScorePopups = object.UpdateScorePopups(s.ScorePopups)

	if wave := int(s.ElapsedSeconds(now)/config.WaveLengthSeconds) + 1; wave > s.Wave {
		s.Wave = wave
	}

	s.ScreenShake = math.Max(0, s.ScreenShake-config.ScreenShakeDecay)
	s.LastTick = now
	return s
}

// AdvanceEffects keeps cosmetic effects alive outside of play, so the game
// over explosion finishes and the screen shake settles.
func AdvanceEffects(s GameState, f Frame) GameState {
	s.Particles = object.UpdateParticles(s.Particles)
	s.ScorePopups = object.UpdateScorePopups(s.ScorePopups)
	s.ScreenShake = math.Max(0, s.ScreenShake-config.ScreenShakeDecay)
	if s.Status != StatusPlaying {
		s.LastTick = f.Now
	}
	return s
}

func removeObstacle(obstacles []object.Obstacle, idx int) []object.Obstacle {
	out := make([]object.Obstacle, 0, len(obstacles)-1)
	out = append(out, obstacles[:idx]...)
	return append(out, obstacles[idx+1:]...)
}

func frameRand(f Frame) *rand.Rand {
	if f.Rand != nil {
		return f.Rand
	}
	return rand.New(rand.NewSource(f.Now))
}

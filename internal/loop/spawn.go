package loop

import (
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
)

// SpawnHazards adds any obstacle, boss or power-up that is due at f.Now.
// Only one obstacle spawns per tick; a due boss replaces the regular one.
func SpawnHazards(s GameState, f Frame) GameState {
	if s.Status != StatusPlaying {
		return s
	}
	rng := frameRand(f)
	now := f.Now
	elapsed := s.ElapsedSeconds(now)

	interval := object.SpawnInterval(elapsed, s.Wave).Milliseconds()
	if now-s.LastSpawnTime > interval {
		if now-s.StartTime >= config.BossMinElapsedMs && now-s.LastBossSpawn >= config.BossIntervalMs {
			s.Obstacles = append(cloneSlice(s.Obstacles), object.SpawnBossObstacle(rng, f.Screen))
			s.LastBossSpawn = now
		} else {
			o := object.SpawnObstacle(rng, f.Screen, object.Difficulty(elapsed), s.Wave)
			s.Obstacles = append(cloneSlice(s.Obstacles), o)
		}
		s.LastSpawnTime = now
	}

	if now >= s.NextPowerUpSpawn {
		if len(s.PowerUps) < config.MaxPowerUps {
			s.PowerUps = append(cloneSlice(s.PowerUps), object.SpawnPowerUp(rng, f.Screen))
		}
		s.LastPowerUpSpawn = now
		s.NextPowerUpSpawn = now + nextPowerUpDelay(f)
	}
	return s
}

// nextPowerUpDelay picks the wait until the next power-up, in milliseconds.
func nextPowerUpDelay(f Frame) int64 {
	return config.PowerUpSpawnIntervalMinMs + frameRand(f).Int63n(config.PowerUpSpawnIntervalRangeMs+1)
}

// StartGame returns a fresh playing state that keeps the high score and control mode.
func StartGame(prev GameState, f Frame) GameState {
	s := NewGameState(prev.HighScore, prev.ControlMode)
	s.Status = StatusPlaying
	s.StartTime = f.Now
	s.LastTick = f.Now
	s.LastSpawnTime = f.Now
	s.LastBossSpawn = f.Now
	s.LastPowerUpSpawn = f.Now
	s.NextPowerUpSpawn = f.Now + nextPowerUpDelay(f)
	for _, p := range prev.Particles {
		if p.Kind == object.ParticleStar {
			s.Particles = append(s.Particles, p)
		}
	}
	return s
}

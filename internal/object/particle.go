package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/cryptosurvivor/internal/physics"
)

// ParticleKind identifies which effect spawned a particle.
type ParticleKind int

const (
	ParticleTrail ParticleKind = iota
	ParticleExplosion
	ParticleCollect
	ParticleStar
)

// Particle lifetimes in ticks.
const (
	trailLife     = 30
	explosionLife = 40
	collectLife   = 30
	starLife      = 200
)

const trailColor = "#7ef3c5"

var explosionColors = []string{"#ff7b7b", "#ffdd99", "#7ef3c5"}

// Particle is a short-lived visual effect.
type Particle struct {
	X, Y       float64 // Position
	VX, VY     float64 // Velocity (px per tick)
	Life       int     // Ticks remaining
	MaxLife    int     // Initial lifetime (for fade calculation)
	Color      string
	Size       float64
	Alpha      float64 // Brightness * Life/MaxLife after each update
	Brightness float64 // Peak alpha; zero means 1
	Kind       ParticleKind
}

// burst creates a particle at (x, y) moving in direction angle.
func burst(x, y, angle, speed float64, life int, color string, size float64, kind ParticleKind) Particle {
	return Particle{
		X:       x,
		Y:       y,
		VX:      math.Cos(angle) * speed,
		VY:      math.Sin(angle) * speed,
		Life:    life,
		MaxLife: life,
		Color:   color,
		Size:    size,
		Alpha:   1,
		Kind:    kind,
	}
}

// TrailParticle creates a slow drifting particle behind the player.
func TrailParticle(rng *rand.Rand, x, y float64) Particle {
	angle := rng.Float64() * physics.TwoPi
	speed := randRange(rng, 0.5, 1.5)
	size := randRange(rng, 2, 5)
	return burst(x, y, angle, speed, trailLife, trailColor, size, ParticleTrail)
}

// ExplosionParticles creates count particles spread evenly around (x, y).
func ExplosionParticles(rng *rand.Rand, x, y float64, count int) []Particle {
	if count < 0 {
		count = 0
	}
	particles := make([]Particle, 0, count)
	for i := 0; i < count; i++ {
		angle := physics.TwoPi*float64(i)/float64(count) + rng.Float64()*0.5
		speed := randRange(rng, 2, 5)
		color := pick(rng, explosionColors)
		size := randRange(rng, 3, 7)
		particles = append(particles, burst(x, y, angle, speed, explosionLife, color, size, ParticleExplosion))
	}
	return particles
}

// CollectParticles creates count particles in the collected power-up's color.
func CollectParticles(rng *rand.Rand, x, y float64, color string, count int) []Particle {
	if count < 0 {
		count = 0
	}
	particles := make([]Particle, 0, count)
	for i := 0; i < count; i++ {
		angle := rng.Float64() * physics.TwoPi
		speed := randRange(rng, 1, 3)
		size := randRange(rng, 2, 5)
		particles = append(particles, burst(x, y, angle, speed, collectLife, color, size, ParticleCollect))
	}
	return particles
}

// StarParticle creates a background star somewhere on the screen, falling slowly.
func StarParticle(rng *rand.Rand, screen Screen) Particle {
	brightness := randRange(rng, 0.3, 0.7)
	return Particle{
		X:          rng.Float64() * float64(screen.Width),
		Y:          rng.Float64() * float64(screen.Height),
		VY:         randRange(rng, 0.2, 0.5),
		Life:       starLife,
		MaxLife:    starLife,
		Color:      "#ffffff",
		Size:       randRange(rng, 1, 3),
		Alpha:      brightness,
		Brightness: brightness,
		Kind:       ParticleStar,
	}
}

// UpdateParticles advances every particle one tick and drops the expired ones.
func UpdateParticles(particles []Particle) []Particle {
	kept := make([]Particle, 0, len(particles))
	for _, p := range particles {
		p.X += p.VX
		p.Y += p.VY
		p.Life--
		if p.Life <= 0 || p.MaxLife <= 0 {
			continue
		}
		p.Alpha = float64(p.Life) / float64(p.MaxLife)
		if p.Brightness > 0 {
			p.Alpha *= p.Brightness
		}
		kept = append(kept, p)
	}
	return kept
}

// CountKind returns how many particles of the given kind are alive.
func CountKind(particles []Particle, kind ParticleKind) int {
	n := 0
	for _, p := range particles {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

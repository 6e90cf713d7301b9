package object

import (
	"math"
	"math/rand"
	"testing"
)

func TestUpdateParticlesLifetime(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	screen := testScreen()

	particles := ExplosionParticles(rng, 10, 10, 20)
	particles = append(particles, CollectParticles(rng, 0, 0, "#4be1a1", 15)...)
	particles = append(particles, TrailParticle(rng, 5, 5), StarParticle(rng, screen))

	for tick := 0; tick < 250; tick++ {
		particles = UpdateParticles(particles)
		for _, p := range particles {
			if p.Life <= 0 || p.Life > p.MaxLife {
				t.Fatalf("tick %d: particle life %d outside (0, %d]", tick, p.Life, p.MaxLife)
			}
			want := float64(p.Life) / float64(p.MaxLife)
			if p.Brightness > 0 {
				want *= p.Brightness
			}
			if p.Alpha != want {
				t.Fatalf("tick %d: alpha %v, want %v", tick, p.Alpha, want)
			}
		}
	}
	if len(particles) != 0 {
		t.Errorf("all particles should have expired, %d left", len(particles))
	}
}

func TestStarBrightnessSurvivesUpdate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	star := StarParticle(rng, testScreen())
	if star.Brightness < 0.3 || star.Brightness > 0.7 {
		t.Fatalf("star brightness %v outside [0.3, 0.7]", star.Brightness)
	}
	if star.Alpha != star.Brightness {
		t.Errorf("new star alpha %v, want %v", star.Alpha, star.Brightness)
	}

	out := UpdateParticles([]Particle{star})
	if len(out) != 1 {
		t.Fatalf("star should survive one tick")
	}
	want := star.Brightness * float64(star.MaxLife-1) / float64(star.MaxLife)
	if math.Abs(out[0].Alpha-want) > 1e-12 {
		t.Errorf("star alpha after update %v, want %v", out[0].Alpha, want)
	}
	if out[0].Alpha >= 0.7 {
		t.Errorf("star alpha %v should stay dimmer than its peak brightness", out[0].Alpha)
	}
}

func TestUpdateParticlesMoves(t *testing.T) {
	in := []Particle{{X: 1, Y: 2, VX: 0.5, VY: -1, Life: 3, MaxLife: 3}}
	out := UpdateParticles(in)
	if len(out) != 1 {
		t.Fatalf("expected particle to survive, got %d", len(out))
	}
	if out[0].X != 1.5 || out[0].Y != 1 || out[0].Life != 2 {
		t.Errorf("unexpected particle after update: %+v", out[0])
	}
	if in[0].Life != 3 {
		t.Error("UpdateParticles must not mutate its input")
	}
	if got := UpdateParticles([]Particle{{Life: 1, MaxLife: 10}}); len(got) != 0 {
		t.Error("particle reaching zero life must be removed")
	}
}

func TestSpawnParticleCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	if n := len(ExplosionParticles(rng, 0, 0, 12)); n != 12 {
		t.Errorf("explosion count = %d, want 12", n)
	}
	if n := len(CollectParticles(rng, 0, 0, "#fff", -3)); n != 0 {
		t.Errorf("negative count should yield no particles, got %d", n)
	}
	star := StarParticle(rng, testScreen())
	if star.Kind != ParticleStar || star.X < 0 || star.X > float64(testScreen().Width) {
		t.Errorf("unexpected star %+v", star)
	}
	ps := []Particle{star, TrailParticle(rng, 0, 0)}
	if CountKind(ps, ParticleStar) != 1 || CountKind(ps, ParticleTrail) != 1 {
		t.Error("CountKind miscounted")
	}
}

package loop

import (
	"testing"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
)

func arc(angle, span, radius, thickness float64) object.Obstacle {
	return object.Obstacle{Angle: angle, Span: span, Radius: radius, Thickness: thickness}
}

func TestCheckCollisionOnOrbit(t *testing.T) {
	obs := []object.Obstacle{arc(0, 1.0, config.PlayerOrbitRadius, 10)}
	if !CheckCollision(0, obs, 1) {
		t.Fatal("expected collision at arc center")
	}
	if !CheckCollision(0.55, obs, 1) {
		t.Fatal("expected collision inside angular buffer")
	}
	if CheckCollision(0.5+config.CollisionAngleBuffer+0.01, obs, 1) {
		t.Fatal("unexpected collision beyond span/2 + buffer")
	}
	if CheckCollision(-0.61, obs, 1) {
		t.Fatal("unexpected collision beyond span/2 + buffer on the other side")
	}
}

func TestCheckCollisionRadialBand(t *testing.T) {
	// thickness/2 + buffer = 10
	inside := []object.Obstacle{arc(0, 1, config.PlayerOrbitRadius+9.5, 10)}
	outside := []object.Obstacle{arc(0, 1, config.PlayerOrbitRadius+10.5, 10)}
	if !CheckCollision(0, inside, 1) {
		t.Fatal("expected collision inside radial band")
	}
	if CheckCollision(0, outside, 1) {
		t.Fatal("unexpected collision outside radial band")
	}
}

func TestMiniShrinksTolerances(t *testing.T) {
	// Normal band is 10, mini band is 5 + 3.5 = 8.5.
	obs := []object.Obstacle{arc(0, 1, config.PlayerOrbitRadius+9, 10)}
	if !CheckCollision(0, obs, 1) {
		t.Fatal("expected collision at normal size")
	}
	if CheckCollision(0, obs, config.MiniSizeMultiplier) {
		t.Fatal("unexpected collision while mini")
	}
}

func TestCheckCollisionWrapsAngles(t *testing.T) {
	obs := []object.Obstacle{arc(3.1, 0.4, config.PlayerOrbitRadius, 10)}
	if !CheckCollision(-3.1, obs, 1) {
		t.Fatal("expected collision across the ±π seam")
	}
}

func TestCheckCollisionHonorsBossGaps(t *testing.T) {
	boss := object.Obstacle{
		Angle:     0,
		Span:      6,
		Radius:    config.PlayerOrbitRadius,
		Thickness: 28,
		Type:      object.ObstacleBoss,
		Gaps:      []float64{-0.785, 0.785},
	}
	if CheckCollision(0.785, []object.Obstacle{boss}, 1) {
		t.Fatal("player inside gap must survive")
	}
	if !CheckCollision(0, []object.Obstacle{boss}, 1) {
		t.Fatal("player outside gap must collide")
	}
}

func TestFindCollisionIndex(t *testing.T) {
	obs := []object.Obstacle{
		arc(2, 0.5, config.PlayerOrbitRadius, 10),
		arc(0, 0.5, config.PlayerOrbitRadius, 10),
	}
	if got := FindCollision(0, obs, 1); got != 1 {
		t.Fatalf("FindCollision = %d, want 1", got)
	}
	if got := FindCollision(1, obs, 1); got != -1 {
		t.Fatalf("FindCollision = %d, want -1", got)
	}
	if got := FindCollision(0, nil, 1); got != -1 {
		t.Fatalf("FindCollision(nil) = %d, want -1", got)
	}
}

func TestCheckNearMiss(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		angle  float64
		want   bool
	}{
		{"in band", config.PlayerOrbitRadius - 25, 0, true},
		{"band lower edge excluded", config.PlayerOrbitRadius - 30, 0, false},
		{"band upper edge excluded", config.PlayerOrbitRadius - 20, 0, false},
		{"outside orbit", config.PlayerOrbitRadius + 25, 0, false},
		{"within angle buffer", config.PlayerOrbitRadius - 25, 0.5 + 0.29, true},
		{"beyond angle buffer", config.PlayerOrbitRadius - 25, 0.5 + 0.31, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := CheckNearMiss(tt.angle, []object.Obstacle{arc(0, 1, tt.radius, 10)})
			if nm.Hit != tt.want {
				t.Fatalf("Hit = %v, want %v", nm.Hit, tt.want)
			}
			if nm.Hit && (nm.Index != 0 || nm.Bonus != config.NearMissBonus) {
				t.Fatalf("unexpected near miss %+v", nm)
			}
		})
	}
}

func TestCheckNearMissSkipsCredited(t *testing.T) {
	o := arc(0, 1, config.PlayerOrbitRadius-25, 10)
	o.NearMissed = true
	second := arc(0, 1, config.PlayerOrbitRadius-24, 10)
	nm := CheckNearMiss(0, []object.Obstacle{o, second})
	if !nm.Hit || nm.Index != 1 {
		t.Fatalf("expected second obstacle, got %+v", nm)
	}
}

func TestUpdateCombo(t *testing.T) {
	combo, last := UpdateCombo(0, 0, true, 10_000)
	if combo != 1 || last != 10_000 {
		t.Fatalf("first near miss: combo=%d last=%d", combo, last)
	}
	combo, last = UpdateCombo(combo, last, true, 12_000)
	if combo != 2 {
		t.Fatalf("within window combo = %d, want 2", combo)
	}
	combo, last = UpdateCombo(combo, last, false, 14_000)
	if combo != 2 {
		t.Fatalf("combo reset too early: %d", combo)
	}
	combo, _ = UpdateCombo(combo, last, false, 15_001)
	if combo != 0 {
		t.Fatalf("combo after timeout = %d, want 0", combo)
	}
	combo, _ = UpdateCombo(2, 1_000, true, 10_000)
	if combo != 1 {
		t.Fatalf("stale streak restarted at %d, want 1", combo)
	}
}

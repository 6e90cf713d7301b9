package client

import (
	"math"

	"github.com/tomz197/cryptosurvivor/internal/draw"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

const (
	backgroundColor    = "#0b0f17"
	playerColor        = "#7ef3c5"
	shieldColor        = "#4be1a1"
	orbitAlpha         = 0.2
	playerSize         = 10.0
	minPlayerSubPixels = 4.0
)

// drawField paints the play field for st onto cv. offX and offY shift the
// whole field for screen shake.
func drawField(cv *draw.Canvas, st loop.GameState, screen object.Screen, now int64, offX, offY float64) {
	w, h := float64(screen.Width), float64(screen.Height)
	cv.DrawPolygon([]draw.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}, draw.Hex(backgroundColor), true)

	cx, cy := screen.Center()
	cx += offX
	cy += offY

	// Center glow
	for i, r := range []float64{24, 16, 8} {
		cv.DrawCircleAlpha(cx, cy, r, draw.Hex(playerColor), 0.06*float64(i+1), true)
	}
	cv.DrawCircleAlpha(cx, cy, config.PlayerOrbitRadius, draw.Hex(playerColor), orbitAlpha, false)

	for _, p := range st.Particles {
		col := draw.Hex(p.Color)
		if p.Kind == object.ParticleStar {
			cv.SetAlpha(p.X, p.Y, col, p.Alpha)
			continue
		}
		cv.DrawCircleAlpha(p.X+offX, p.Y+offY, p.Size/2, col, p.Alpha, true)
	}

	for _, o := range st.Obstacles {
		drawObstacle(cv, o, cx, cy, now)
	}

	for _, pu := range st.PowerUps {
		info := pu.Type.Info()
		col := draw.Hex(info.Color)
		pulse := 0.5 + 0.3*math.Sin(float64(now)/150)
		cv.DrawCircleAlpha(pu.X+offX, pu.Y+offY, 14, col, pulse*0.4, true)
		cv.DrawCircle(pu.X+offX, pu.Y+offY, 9, col, true)
	}

	if st.Status != loop.StatusGameOver {
		drawPlayer(cv, st, cx, cy, now)
	}
}

// drawObstacle draws a hazard's solid segments with a soft glow band around
// them. The core is opaque and pulses in brightness.
func drawObstacle(cv *draw.Canvas, o object.Obstacle, cx, cy float64, now int64) {
	glow := object.ObstacleGlow(o, now)
	col := draw.Hex(o.Color)
	core := draw.Dim(col, glow)
	for _, seg := range o.Segments() {
		cv.DrawArcAlpha(cx, cy, o.Radius, o.Thickness+6, seg[0], seg[1], col, math.Min(0.35*glow, 1))
		cv.DrawArc(cx, cy, o.Radius, o.Thickness, seg[0], seg[1], core)
	}
}

// drawPlayer draws the ship as a triangle pointing along its travel direction,
// plus the shield ring when one is held.
func drawPlayer(cv *draw.Canvas, st loop.GameState, cx, cy float64, now int64) {
	x, y := physics.OrbitPosition(cx, cy, st.PlayerAngle, config.PlayerOrbitRadius)
	size := playerSize
	if st.HasPowerUp(object.PowerUpMini) {
		size *= config.MiniSizeMultiplier
	}
	// Small terminals would shrink the ship below a recognizable triangle.
	if cv.Scale() > 0 {
		size = math.Max(size, minPlayerSubPixels/cv.Scale())
	}

	heading := st.PlayerAngle + math.Pi/2*float64(direction(st))
	tip := draw.Point{X: x + math.Cos(heading)*size, Y: y + math.Sin(heading)*size}
	left := draw.Point{X: x + math.Cos(heading+2.5)*size*0.8, Y: y + math.Sin(heading+2.5)*size*0.8}
	right := draw.Point{X: x + math.Cos(heading-2.5)*size*0.8, Y: y + math.Sin(heading-2.5)*size*0.8}

	col := draw.Hex(playerColor)
	cv.DrawCircleAlpha(x, y, size*1.4, col, 0.25, true)
	cv.DrawPolygon([]draw.Point{tip, left, right}, col, true)

	if st.HasPowerUp(object.PowerUpShield) {
		alpha := 0.6 + 0.3*math.Sin(float64(now)/120)
		cv.DrawCircleAlpha(x, y, size+6, draw.Hex(shieldColor), alpha, false)
	}
}

// direction is the sign the ship is traveling in. In steer mode it follows the
// remaining distance to the target.
func direction(st loop.GameState) int {
	if st.ControlMode == loop.ControlSteer {
		diff := physics.NormalizeAngle(st.TargetAngle - st.PlayerAngle)
		if diff < 0 {
			return -1
		}
		return 1
	}
	if st.PlayerDirection < 0 {
		return -1
	}
	return 1
}

package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/tomz197/cryptosurvivor/internal/draw"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/object"
	"github.com/tomz197/cryptosurvivor/internal/physics"
)

const (
	backgroundColor = "#0b0f17"
	playerColor     = "#7ef3c5"
	shieldColor     = "#4be1a1"
	playerSize      = 10.0
	arcStep         = 0.04 // rad per line segment
	charWidth       = 6    // debug font glyph width
)

var gameOverMessages = []string{
	"You got REKT!",
	"Paper hands detected",
	"The FUD was too strong!",
	"Should've diamond handed",
	"NGMI this time",
}

// rgba converts a hex color to a premultiplied color with the given alpha.
func rgba(hex string, alpha float64) color.RGBA {
	alpha = physics.Clamp(alpha, 0, 1)
	r, g, b := draw.Hex(hex).Clamped().RGB255()
	return color.RGBA{
		R: uint8(float64(r) * alpha),
		G: uint8(float64(g) * alpha),
		B: uint8(float64(b) * alpha),
		A: uint8(255 * alpha),
	}
}

// Draw renders the session state.
func (g *Game) Draw(screen *ebiten.Image) {
	st := g.session.State()
	field := g.session.Screen()
	now := g.now().UnixMilli()
	screen.Fill(rgba(backgroundColor, 1))

	var offX, offY float64
	if st.ScreenShake > 0 {
		offX = math.Sin(float64(now)/17) * st.ScreenShake / 2
		offY = math.Cos(float64(now)/23) * st.ScreenShake / 2
	}
	cx, cy := field.Center()
	cx += offX
	cy += offY

	for i, r := range []float32{24, 16, 8} {
		vector.DrawFilledCircle(screen, float32(cx), float32(cy), r, rgba(playerColor, 0.06*float64(i+1)), true)
	}
	vector.StrokeCircle(screen, float32(cx), float32(cy), config.PlayerOrbitRadius, 1, rgba(playerColor, 0.2), true)

	for _, p := range st.Particles {
		vector.DrawFilledCircle(screen, float32(p.X+offX), float32(p.Y+offY), float32(math.Max(p.Size/2, 0.5)), rgba(p.Color, p.Alpha), true)
	}

	for _, o := range st.Obstacles {
		glow := object.ObstacleGlow(o, now)
		for _, seg := range o.Segments() {
			strokeArc(screen, cx, cy, o.Radius, seg[0], seg[1], o.Thickness+6, rgba(o.Color, 0.35*glow))
			strokeArc(screen, cx, cy, o.Radius, seg[0], seg[1], o.Thickness, rgba(o.Color, glow))
		}
	}

	for _, pu := range st.PowerUps {
		info := pu.Type.Info()
		pulse := 0.5 + 0.3*math.Sin(float64(now)/150)
		vector.DrawFilledCircle(screen, float32(pu.X+offX), float32(pu.Y+offY), 14, rgba(info.Color, pulse*0.4), true)
		vector.DrawFilledCircle(screen, float32(pu.X+offX), float32(pu.Y+offY), 9, rgba(info.Color, 1), true)
		ebitenutil.DebugPrintAt(screen, string(info.Glyph), int(pu.X+offX)-3, int(pu.Y+offY)-8)
	}

	if st.Status != loop.StatusGameOver {
		drawPlayer(screen, st, cx, cy, now)
	}

	for _, p := range st.ScorePopups {
		ebitenutil.DebugPrintAt(screen, p.Text, int(p.X)-len(p.Text)*charWidth/2, int(p.Y))
	}

	g.drawOverlay(screen, st, field, now)
}

// strokeArc approximates an arc band with short line segments.
func strokeArc(screen *ebiten.Image, cx, cy, r, start, end, width float64, clr color.Color) {
	prevX, prevY := physics.OrbitPosition(cx, cy, start, r)
	for a := start + arcStep; ; a += arcStep {
		a = math.Min(a, end)
		x, y := physics.OrbitPosition(cx, cy, a, r)
		vector.StrokeLine(screen, float32(prevX), float32(prevY), float32(x), float32(y), float32(width), clr, true)
		prevX, prevY = x, y
		if a >= end {
			return
		}
	}
}

func drawPlayer(screen *ebiten.Image, st loop.GameState, cx, cy float64, now int64) {
	x, y := physics.OrbitPosition(cx, cy, st.PlayerAngle, config.PlayerOrbitRadius)
	size := playerSize
	if st.HasPowerUp(object.PowerUpMini) {
		size *= config.MiniSizeMultiplier
	}
	sign := 1.0
	if st.ControlMode == loop.ControlSteer {
		if physics.NormalizeAngle(st.TargetAngle-st.PlayerAngle) < 0 {
			sign = -1
		}
	} else if st.PlayerDirection < 0 {
		sign = -1
	}
	heading := st.PlayerAngle + math.Pi/2*sign

	vector.DrawFilledCircle(screen, float32(x), float32(y), float32(size*1.4), rgba(playerColor, 0.25), true)

	var path vector.Path
	path.MoveTo(float32(x+math.Cos(heading)*size), float32(y+math.Sin(heading)*size))
	path.LineTo(float32(x+math.Cos(heading+2.5)*size*0.8), float32(y+math.Sin(heading+2.5)*size*0.8))
	path.LineTo(float32(x+math.Cos(heading-2.5)*size*0.8), float32(y+math.Sin(heading-2.5)*size*0.8))
	path.Close()
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	c := rgba(playerColor, 1)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(c.R) / 255
		vs[i].ColorG = float32(c.G) / 255
		vs[i].ColorB = float32(c.B) / 255
		vs[i].ColorA = 1
	}
	screen.DrawTriangles(vs, is, whitePixel(), &ebiten.DrawTrianglesOptions{AntiAlias: true})

	if st.HasPowerUp(object.PowerUpShield) {
		alpha := 0.6 + 0.3*math.Sin(float64(now)/120)
		vector.StrokeCircle(screen, float32(x), float32(y), float32(size+6), 2, rgba(shieldColor, alpha), true)
	}
}

// whitePixel is the source image for filled paths.
var whitePixel = sync.OnceValue(func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
})

// drawOverlay prints the text for the current phase.
func (g *Game) drawOverlay(screen *ebiten.Image, st loop.GameState, field object.Screen, now int64) {
	centered := func(y int, s string) {
		ebitenutil.DebugPrintAt(screen, s, (field.Width-len(s)*charWidth)/2, y)
	}
	mid := field.Height / 2

	switch st.Status {
	case loop.StatusStart:
		centered(mid-60, "CRYPTO SURVIVOR")
		centered(mid-44, "Dodge the FUD!")
		if st.ControlMode == loop.ControlSteer {
			centered(mid+20, "Move the mouse to steer")
		} else {
			centered(mid+20, "Click or Space to toggle direction")
		}
		centered(mid+36, "Tab = Switch Mode | Esc = Close")
		if st.HighScore > 0 {
			centered(mid+56, fmt.Sprintf("Best HODL: %d", st.HighScore))
		}
		if now/600%2 == 0 {
			centered(mid+76, "Click to Start")
		}
	case loop.StatusPlaying:
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("HODL TIME %d", st.Score), 8, 8)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Wave %d", st.Wave), field.Width-60, 8)
		if st.Combo > 1 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Combo x%d", st.Combo), field.Width-60, 24)
		}
		for i, ap := range st.ActivePowerUps {
			label := ap.Type.Info().Name
			if ap.Type != object.PowerUpShield {
				label = fmt.Sprintf("%s %.1fs", label, st.PowerUpRemaining(ap.Type, now))
			}
			ebitenutil.DebugPrintAt(screen, label, 8, 28+i*16)
		}
	case loop.StatusGameOver:
		centered(mid-60, "GAME OVER")
		centered(mid-44, g.gameOverMsg)
		centered(mid-12, fmt.Sprintf("HODL TIME: %d", st.Score))
		centered(mid+4, fmt.Sprintf("Best HODL: %d", st.HighScore))
		if g.newRecord {
			centered(mid+24, "NEW HIGH SCORE!")
		}
		centered(mid+56, "Click to Retry")
	}
}

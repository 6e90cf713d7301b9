package draw

import (
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	colorCacheMu sync.RWMutex
	colorCache   = map[string]colorful.Color{}
)

// Hex parses a "#rrggbb" color, falling back to white for bad input.
// Results are cached since entity colors repeat every frame.
func Hex(s string) colorful.Color {
	colorCacheMu.RLock()
	c, ok := colorCache[s]
	colorCacheMu.RUnlock()
	if ok {
		return c
	}
	c, err := colorful.Hex(s)
	if err != nil {
		c = colorful.Color{R: 1, G: 1, B: 1}
	}
	colorCacheMu.Lock()
	colorCache[s] = c
	colorCacheMu.Unlock()
	return c
}

// Dim scales a color toward black by factor in [0, 1].
func Dim(c colorful.Color, factor float64) colorful.Color {
	return colorful.Color{}.BlendRgb(c, math.Max(0, math.Min(1, factor)))
}

// DrawCircle draws a circle of logical radius r around (cx, cy).
func (c *Canvas) DrawCircle(cx, cy, r float64, col colorful.Color, filled bool) {
	c.DrawCircleAlpha(cx, cy, r, col, 1, filled)
}

// DrawCircleAlpha is DrawCircle with alpha blending.
func (c *Canvas) DrawCircleAlpha(cx, cy, r float64, col colorful.Color, alpha float64, filled bool) {
	if r <= 0 || alpha <= 0 {
		return
	}
	pcx, pcy := c.toPixel(cx, cy)
	pr := r * c.scale
	if pr < 0.5 {
		c.setPixel(int(math.Floor(pcx)), int(math.Floor(pcy)), col, alpha)
		return
	}
	minX, maxX := int(math.Floor(pcx-pr)), int(math.Ceil(pcx+pr))
	minY, maxY := int(math.Floor(pcy-pr)), int(math.Ceil(pcy+pr))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := math.Hypot(float64(x)+0.5-pcx, float64(y)+0.5-pcy)
			if d > pr {
				continue
			}
			if !filled && d < pr-1 {
				continue
			}
			c.setPixel(x, y, col, alpha)
		}
	}
}

// DrawArc draws a band of the given logical thickness centered on radius r,
// from angle start to end (radians, clockwise in screen space).
func (c *Canvas) DrawArc(cx, cy, r, thickness, start, end float64, col colorful.Color) {
	c.DrawArcAlpha(cx, cy, r, thickness, start, end, col, 1)
}

// DrawArcAlpha is DrawArc with alpha blending.
func (c *Canvas) DrawArcAlpha(cx, cy, r, thickness, start, end float64, col colorful.Color, alpha float64) {
	if end < start {
		start, end = end, start
	}
	if r <= 0 || end-start <= 0 {
		return
	}
	thickness = math.Max(thickness, 1/c.scale)
	inner := math.Max(0, r-thickness/2)
	outer := r + thickness/2

	// Step in logical units small enough to hit every sub-pixel.
	step := 0.5 / c.scale
	for rr := inner; rr <= outer; rr += step {
		da := step / math.Max(rr, step)
		for a := start; a <= end; a += da {
			c.SetAlpha(cx+math.Cos(a)*rr, cy+math.Sin(a)*rr, col, alpha)
		}
		c.SetAlpha(cx+math.Cos(end)*rr, cy+math.Sin(end)*rr, col, alpha)
	}
}

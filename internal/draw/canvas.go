package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// pixel is one sub-pixel of the canvas.
type pixel struct {
	set   bool
	color colorful.Color
}

// cell is what a terminal cell showed after the last Render.
type cell struct {
	ch     rune
	fg, bg colorful.Color
	hasBg  bool
	dirty  bool
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Logical coordinates are scaled uniformly, so circles stay round, and the
// logical area is centered inside the terminal area.
type Canvas struct {
	termWidth      int // Actual terminal columns
	termHeight     int // Actual terminal rows
	subPixelHeight int // termHeight * 2
	pixels         []pixel
	prev           []cell // Last rendered frame, for diffing

	logicalWidth  float64
	logicalHeight float64
	scale         float64 // Sub-pixels per logical unit
	originX       float64 // Sub-pixel position of logical (0, 0)
	originY       float64

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
}

// NewCanvas creates a canvas for the given terminal dimensions that renders
// the logicalWidth x logicalHeight field.
func NewCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]pixel, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termHeight*termWidth)
		c.ForceRedraw()
	}

	sx := float64(c.termWidth) / c.logicalWidth
	sy := float64(c.subPixelHeight) / c.logicalHeight
	c.scale = math.Min(sx, sy)
	c.originX = (float64(c.termWidth) - c.logicalWidth*c.scale) / 2
	c.originY = (float64(c.subPixelHeight) - c.logicalHeight*c.scale) / 2
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// Scale returns sub-pixels per logical unit.
func (c *Canvas) Scale() float64 { return c.scale }

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render rewrite every cell.
func (c *Canvas) ForceRedraw() {
	for i := range c.prev {
		c.prev[i] = cell{dirty: true}
	}
}

// MarkTextDirty marks n cells starting at 1-based (col, row) as overwritten
// by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	row--
	col--
	if row < 0 || row >= c.termHeight {
		return
	}
	for x := max(col, 0); x < col+n && x < c.termWidth; x++ {
		c.prev[row*c.termWidth+x].dirty = true
	}
}

// toPixel converts logical coordinates to sub-pixel coordinates.
func (c *Canvas) toPixel(x, y float64) (float64, float64) {
	return c.originX + x*c.scale, c.originY + y*c.scale
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return int(math.Floor(px)) + 1, int(math.Floor(py))/2 + 1
}

// TerminalToLogical converts a 1-based terminal position (including the
// render offset) to the logical coordinates at the center of that cell.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64) {
	px := float64(col-c.offsetCol-1) + 0.5
	py := float64(row-c.offsetRow-1)*2 + 1
	if c.scale == 0 {
		return 0, 0
	}
	return (px - c.originX) / c.scale, (py - c.originY) / c.scale
}

// setPixel sets a sub-pixel (no scaling). alpha blends over what is there.
func (c *Canvas) setPixel(x, y int, col colorful.Color, alpha float64) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight || alpha <= 0 {
		return
	}
	p := &c.pixels[y*c.termWidth+x]
	if alpha >= 1 {
		p.set = true
		p.color = col
		return
	}
	base := colorful.Color{}
	if p.set {
		base = p.color
	}
	p.set = true
	p.color = base.BlendRgb(col, alpha).Clamped()
}

// Set sets a pixel at logical coordinates.
func (c *Canvas) Set(x, y float64, col colorful.Color) {
	c.SetAlpha(x, y, col, 1)
}

// SetAlpha blends a pixel at logical coordinates.
func (c *Canvas) SetAlpha(x, y float64, col colorful.Color, alpha float64) {
	px, py := c.toPixel(x, y)
	c.setPixel(int(math.Floor(px)), int(math.Floor(py)), col, alpha)
}

// Pixel reports whether the sub-pixel under logical (x, y) is set, and its color.
func (c *Canvas) Pixel(x, y float64) (colorful.Color, bool) {
	px, py := c.toPixel(x, y)
	ix, iy := int(math.Floor(px)), int(math.Floor(py))
	if ix < 0 || ix >= c.termWidth || iy < 0 || iy >= c.subPixelHeight {
		return colorful.Color{}, false
	}
	p := c.pixels[iy*c.termWidth+ix]
	return p.color, p.set
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point, col colorful.Color) {
	fx1, fy1 := c.toPixel(p1.X, p1.Y)
	fx2, fy2 := c.toPixel(p2.X, p2.Y)
	x1, y1 := int(math.Floor(fx1)), int(math.Floor(fy1))
	x2, y2 := int(math.Floor(fx2)), int(math.Floor(fy2))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col, 1)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon on the canvas.
// If filled is true, the interior is filled using scanline algorithm.
func (c *Canvas) DrawPolygon(points []Point, col colorful.Color, filled bool) {
	if len(points) < 3 {
		return
	}

	if filled {
		c.fillPolygon(points, col)
	}

	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], col)
	}
}

// fillPolygon fills a polygon using scanline algorithm in pixel space.
func (c *Canvas) fillPolygon(points []Point, col colorful.Color) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		x, y := c.toPixel(p.X, p.Y)
		scaled[i] = Point{X: x, Y: y}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections

		sort.Float64s(intersections)
		for i := 0; i+1 < len(intersections); i += 2 {
			for x := int(math.Floor(intersections[i])); x <= int(math.Floor(intersections[i+1])); x++ {
				c.setPixel(x, y, col, 1)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render outputs the changed cells to w using truecolor half-block characters.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := (row*2 + 1) * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]

			next := cell{ch: ' '}
			switch {
			case top.set && bottom.set:
				next = cell{ch: BlockUpperHalf, fg: top.color, bg: bottom.color, hasBg: true}
			case top.set:
				next = cell{ch: BlockUpperHalf, fg: top.color}
			case bottom.set:
				next = cell{ch: BlockLowerHalf, fg: bottom.color}
			}

			idx := row*c.termWidth + col
			if prev := c.prev[idx]; !prev.dirty && sameCell(prev, next) {
				continue
			}
			c.prev[idx] = next
			c.writeCell(row, col, next)
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func sameCell(a, b cell) bool {
	if a.ch != b.ch || a.hasBg != b.hasBg {
		return false
	}
	if a.ch == ' ' {
		return true
	}
	if a.hasBg && a.bg.Hex() != b.bg.Hex() {
		return false
	}
	return a.fg.Hex() == b.fg.Hex()
}

func (c *Canvas) writeCell(row, col int, v cell) {
	b := &c.renderBuf
	b.WriteString("\033[")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(row+1+c.offsetRow), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(col+1+c.offsetCol), 10))
	b.WriteByte('H')
	if v.ch == ' ' {
		b.WriteString("\033[0m ")
		return
	}
	c.writeColor(38, v.fg)
	if v.hasBg {
		c.writeColor(48, v.bg)
	} else {
		b.WriteString("\033[49m")
	}
	b.WriteRune(v.ch)
	b.WriteString("\033[0m")
}

// writeColor appends a truecolor SGR sequence; layer is 38 (fg) or 48 (bg).
func (c *Canvas) writeColor(layer int, col colorful.Color) {
	r, g, bl := col.Clamped().RGB255()
	b := &c.renderBuf
	b.WriteString("\033[")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(layer), 10))
	b.WriteString(";2;")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(r), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(g), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(bl), 10))
	b.WriteByte('m')
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	moveTo := func(row, col int) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
	}
	line := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			moveTo(top, left)
			buf.WriteString("┌" + line + "┐")
			moveTo(bottom, left)
			buf.WriteString("└" + line + "┘")
		} else {
			moveTo(top, c.offsetCol+1)
			buf.WriteString(line)
			moveTo(bottom, c.offsetCol+1)
			buf.WriteString(line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			moveTo(row, left)
			buf.WriteString("│")
			moveTo(row, right)
			buf.WriteString("│")
		}
	}

	io.WriteString(w, buf.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

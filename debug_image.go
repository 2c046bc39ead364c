package viamtictactoe

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	regionColor = colorful.Hsv(120, 1, 0.9)
	gridColor   = colorful.Hsv(60, 1, 1)
	// marks are outlined in a hue that reads against the piece color
	blackMarkColor = colorful.Hsv(30, 1, 1)
	whiteMarkColor = colorful.Hsv(210, 1, 0.8)
	textColor      = color.RGBA{255, 0, 0, 255}
	centerColor    = colorful.Hsv(300, 1, 1)
)

// BoardDebugImage draws the board region, the cell grid, every detected circle and
// the symbol read for each cell on top of frame.
// With an empty region it only prints a notice.
func BoardDebugImage(frame image.Image, region image.Rectangle, gridSize int) (*image.RGBA, Board, bool) {
	bounds := frame.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, frame, bounds.Min, draw.Src)

	if region.Empty() || gridSize <= 0 {
		drawString(dst, bounds.Min.X+5, bounds.Min.Y+15, "no board", textColor)
		return dst, Board{}, false
	}

	board, marks, ok := ReadRegion(frame, region, gridSize)

	drawRect(dst, region, regionColor)
	pitch := region.Dy() / gridSize
	for i := 1; i < gridSize; i++ {
		x := region.Min.X + i*pitch
		y := region.Min.Y + i*pitch
		drawLine(dst, image.Pt(x, region.Min.Y), image.Pt(x, region.Max.Y-1), gridColor)
		drawLine(dst, image.Pt(region.Min.X, y), image.Pt(region.Max.X-1, y), gridColor)
	}

	for _, m := range marks {
		center := m.Center.Add(region.Min)
		c := blackMarkColor
		if ok {
			if cell, inside := assignCell(m.Center, pitch, gridSize); inside && board.At(cell.Row, cell.Col) == White {
				c = whiteMarkColor
			}
		}
		drawCircle(dst, center.X, center.Y, m.Radius, c)
		drawCross(dst, center.X, center.Y, max(m.Radius/4, 2), c)
	}

	if !ok {
		drawString(dst, region.Min.X+5, region.Min.Y+15, "undetermined", textColor)
		return dst, Board{}, false
	}

	for r := 0; r < gridSize; r++ {
		for c := 0; c < gridSize; c++ {
			label := fmt.Sprintf("%d%d-%s", r, c, board.At(r, c))
			x := region.Min.X + c*pitch + pitch/2 - len(label)*3
			y := region.Min.Y + r*pitch + pitch/2 + 3
			drawString(dst, x, y, label, textColor)
		}
	}

	return dst, board, true
}

// DrawCenterLines draws a crosshair through the middle of img.
func DrawCenterLines(img *image.RGBA) {
	b := img.Bounds()
	mid := image.Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
	drawLine(img, image.Pt(mid.X, b.Min.Y), image.Pt(mid.X, b.Max.Y-1), centerColor)
	drawLine(img, image.Pt(b.Min.X, mid.Y), image.Pt(b.Max.X-1, mid.Y), centerColor)
}

func drawString(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func setIfInside(img *image.RGBA, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}

func drawCircle(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for angle := 0.0; angle < 360; angle++ {
		x := cx + int(float64(radius)*math.Cos(angle*math.Pi/180))
		y := cy + int(float64(radius)*math.Sin(angle*math.Pi/180))
		setIfInside(img, x, y, c)
	}
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.Color) {
	for d := -size; d <= size; d++ {
		setIfInside(img, cx+d, cy, c)
		setIfInside(img, cx, cy+d, c)
	}
}

// drawLine handles horizontal and vertical lines only.
func drawLine(img *image.RGBA, from, to image.Point, c color.Color) {
	for x := min(from.X, to.X); x <= max(from.X, to.X); x++ {
		for y := min(from.Y, to.Y); y <= max(from.Y, to.Y); y++ {
			setIfInside(img, x, y, c)
		}
	}
}

func drawRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	drawLine(img, r.Min, image.Pt(r.Max.X-1, r.Min.Y), c)
	drawLine(img, image.Pt(r.Min.X, r.Max.Y-1), image.Pt(r.Max.X-1, r.Max.Y-1), c)
	drawLine(img, r.Min, image.Pt(r.Min.X, r.Max.Y-1), c)
	drawLine(img, image.Pt(r.Max.X-1, r.Min.Y), image.Pt(r.Max.X-1, r.Max.Y-1), c)
}

package viamtictactoe

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"go.viam.com/test"
)

// synthetic scene: a 180x180 mid-gray board on a dark background, with pieces
// drawn as filled discs at the cell centers
const (
	frameW, frameH  = 300, 260
	boardX, boardY  = 50, 40
	boardSide       = 180
	cellSide        = boardSide / 3
	pieceRadius     = 18
	backgroundLevel = 40
	boardLevel      = 110
	blackPieceLevel = 20
	whitePieceLevel = 240
)

var boardRect = image.Rect(boardX, boardY, boardX+boardSide, boardY+boardSide)

func grayColor(v uint8) color.RGBA {
	return color.RGBA{v, v, v, 255}
}

func fillDisc(img *image.RGBA, center image.Point, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

func cellCenter(row, col int) image.Point {
	return image.Pt(boardX+col*cellSide+cellSide/2, boardY+row*cellSide+cellSide/2)
}

// drawScene renders a board given in the compact form, e.g. "B-B/-B-/B-B".
func drawScene(t *testing.T, layout string) *image.RGBA {
	t.Helper()
	b, err := ParseBoard(layout)
	test.That(t, err, test.ShouldBeNil)

	img := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	draw.Draw(img, img.Bounds(), image.NewUniform(grayColor(backgroundLevel)), image.Point{}, draw.Src)
	draw.Draw(img, boardRect, image.NewUniform(grayColor(boardLevel)), image.Point{}, draw.Src)

	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			switch b.At(r, c) {
			case Black:
				fillDisc(img, cellCenter(r, c), pieceRadius, grayColor(blackPieceLevel))
			case White:
				fillDisc(img, cellCenter(r, c), pieceRadius, grayColor(whitePieceLevel))
			}
		}
	}
	return img
}

func near(a, b, tolerance int) bool {
	d := a - b
	return d >= -tolerance && d <= tolerance
}

func rectNear(a, b image.Rectangle, tolerance int) bool {
	return near(a.Min.X, b.Min.X, tolerance) && near(a.Min.Y, b.Min.Y, tolerance) &&
		near(a.Max.X, b.Max.X, tolerance) && near(a.Max.Y, b.Max.Y, tolerance)
}

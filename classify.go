package viamtictactoe

import (
	"image"
)

// whiteLevel is the midpoint of the 8-bit intensity range. A piece at or above it is White.
const whiteLevel = 127.5

// Classify turns the marks found in a board crop into a board.
// ok is false when two marks land in the same cell; the frame then says nothing reliable.
func Classify(sub image.Image, marks []PieceMark, gridSize int) (Board, bool) {
	if gridSize <= 0 {
		return Board{}, false
	}
	board := NewBoard(gridSize)
	bounds := sub.Bounds()
	pitch := bounds.Dy() / gridSize
	if pitch <= 0 {
		return board, true
	}

	gray := makeGrayImage(sub)
	for _, m := range marks {
		center := m.Center.Sub(bounds.Min)
		cell, ok := assignCell(center, pitch, gridSize)
		if !ok {
			continue
		}
		if board.At(cell.Row, cell.Col) != Empty {
			return Board{}, false
		}

		radius := max(1, m.Radius/2)
		if meanIntensity(gray, center, radius) >= whiteLevel {
			board = board.With(cell.Row, cell.Col, White)
		} else {
			board = board.With(cell.Row, cell.Col, Black)
		}
	}

	return board, true
}

// assignCell maps a crop-relative center to its cell. Centers sitting exactly on a
// grid line, or outside the grid, belong to no cell.
func assignCell(center image.Point, pitch, gridSize int) (Cell, bool) {
	if pitch <= 0 || center.X < 0 || center.Y < 0 {
		return Cell{}, false
	}
	if center.X%pitch == 0 || center.Y%pitch == 0 {
		return Cell{}, false
	}
	c := Cell{Row: center.Y / pitch, Col: center.X / pitch}
	if c.Row >= gridSize || c.Col >= gridSize {
		return Cell{}, false
	}
	return c, true
}

// meanIntensity averages gray over the disc of the given radius, clipped to the image.
func meanIntensity(gray [][]int, center image.Point, radius int) float64 {
	sum, n := 0, 0
	for dy := -radius; dy <= radius; dy++ {
		y := center.Y + dy
		if y < 0 || y >= len(gray) {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := center.X + dx
			if x < 0 || x >= len(gray[y]) || dx*dx+dy*dy > radius*radius {
				continue
			}
			sum += gray[y][x]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

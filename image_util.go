package viamtictactoe

import (
	"image"
	"math"
)

// channelPlanes splits an image into R, G and B grids indexed [y][x].
func channelPlanes(img *image.NRGBA) [3][][]int {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var out [3][][]int
	for c := range out {
		out[c] = make([][]int, height)
		for y := range height {
			out[c][y] = make([]int, width)
		}
	}

	for y := range height {
		row := img.Pix[y*img.Stride:]
		for x := range width {
			out[0][y][x] = int(row[x*4])
			out[1][y][x] = int(row[x*4+1])
			out[2][y][x] = int(row[x*4+2])
		}
	}
	return out
}

func makeGrayImage(img image.Image) [][]int {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	gray := make([][]int, height)
	for y := range height {
		gray[y] = make([]int, width)
		for x := range width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, _ := c.RGBA()
			gray[y][x] = (int(r>>8) + int(g>>8) + int(b>>8)) / 3
		}
	}
	return gray
}

// sobelGradients returns the x and y Sobel responses and the clamped magnitude.
func sobelGradients(gray [][]int, width, height int) (gx, gy, mag [][]int) {
	gx = make([][]int, height)
	gy = make([][]int, height)
	mag = make([][]int, height)
	for y := range height {
		gx[y] = make([]int, width)
		gy[y] = make([]int, width)
		mag[y] = make([]int, width)
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			sx := -gray[y-1][x-1] + gray[y-1][x+1] +
				-2*gray[y][x-1] + 2*gray[y][x+1] +
				-gray[y+1][x-1] + gray[y+1][x+1]

			sy := -gray[y-1][x-1] - 2*gray[y-1][x] - gray[y-1][x+1] +
				gray[y+1][x-1] + 2*gray[y+1][x] + gray[y+1][x+1]

			m := int(math.Sqrt(float64(sx*sx + sy*sy)))
			if m > 255 {
				m = 255
			}
			gx[y][x] = sx
			gy[y][x] = sy
			mag[y][x] = m
		}
	}

	return gx, gy, mag
}

func thresholdMask(plane [][]int, width, height, level int) [][]bool {
	mask := make([][]bool, height)
	for y := range height {
		mask[y] = make([]bool, width)
		for x := range width {
			mask[y][x] = plane[y][x] > level
		}
	}
	return mask
}

// edgeMask marks strong gradients and thickens them so the outline closes.
func edgeMask(plane [][]int, width, height, level int) [][]bool {
	_, _, mag := sobelGradients(plane, width, height)
	mask := thresholdMask(mag, width, height, level-1)
	return dilateMask(mask, width, height, 1)
}

func invertMask(mask [][]bool, width, height int) [][]bool {
	out := make([][]bool, height)
	for y := range height {
		out[y] = make([]bool, width)
		for x := range width {
			out[y][x] = !mask[y][x]
		}
	}
	return out
}

func dilateMask(mask [][]bool, width, height, radius int) [][]bool {
	result := make([][]bool, height)
	for y := range height {
		result[y] = make([]bool, width)
	}

	for y := range height {
		for x := range width {
			anySet := false
			for dy := -radius; dy <= radius && !anySet; dy++ {
				for dx := -radius; dx <= radius && !anySet; dx++ {
					ny, nx := y+dy, x+dx
					if ny >= 0 && ny < height && nx >= 0 && nx < width && mask[ny][nx] {
						anySet = true
					}
				}
			}
			result[y][x] = anySet
		}
	}

	return result
}

type component struct {
	label  int
	start  image.Point // first pixel in raster order
	bounds image.Rectangle
}

// labelComponents labels 4-connected regions of mask, numbering from 1.
func labelComponents(mask [][]bool, width, height int) ([][]int, []component) {
	labels := make([][]int, height)
	for y := range height {
		labels[y] = make([]int, width)
	}

	var comps []component
	currentLabel := 0
	for y := range height {
		for x := range width {
			if mask[y][x] && labels[y][x] == 0 {
				currentLabel++
				bounds := floodFill(mask, labels, x, y, width, height, currentLabel)
				comps = append(comps, component{
					label:  currentLabel,
					start:  image.Point{x, y},
					bounds: bounds,
				})
			}
		}
	}
	return labels, comps
}

// floodFill labels one region and returns its bounding box.
func floodFill(mask [][]bool, labels [][]int, startX, startY, width, height, label int) image.Rectangle {
	stack := []image.Point{{startX, startY}}
	bounds := image.Rect(startX, startY, startX+1, startY+1)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if !mask[p.Y][p.X] || labels[p.Y][p.X] != 0 {
			continue
		}

		labels[p.Y][p.X] = label
		bounds = bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		stack = append(stack, image.Point{p.X + 1, p.Y})
		stack = append(stack, image.Point{p.X - 1, p.Y})
		stack = append(stack, image.Point{p.X, p.Y + 1})
		stack = append(stack, image.Point{p.X, p.Y - 1})
	}

	return bounds
}

// clockwise in image coordinates (y grows downward), starting east
var mooreDirs = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func mooreIndex(d image.Point) int {
	for i, m := range mooreDirs {
		if m == d {
			return i
		}
	}
	return 0
}

// traceBoundary walks the outer boundary of a labelled region clockwise
// (Moore neighbour tracing). start must be the region's first pixel in raster order.
func traceBoundary(labels [][]int, width, height int, c component) []image.Point {
	in := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && labels[p.Y][p.X] == c.label
	}

	contour := []image.Point{c.start}
	cur := c.start
	back := 4 // west of the first raster pixel is never in the region
	maxSteps := 4*c.bounds.Dx()*c.bounds.Dy() + 16

	for step := 0; step < maxSteps; step++ {
		next, nextBack, found := image.Point{}, 0, false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			n := cur.Add(mooreDirs[d])
			if in(n) {
				behind := cur.Add(mooreDirs[(d+7)%8])
				next, nextBack, found = n, mooreIndex(behind.Sub(n)), true
				break
			}
		}
		if !found {
			break // single pixel
		}
		if cur == c.start && len(contour) > 1 && next == contour[1] {
			break
		}
		contour = append(contour, next)
		cur, back = next, nextBack
	}

	if len(contour) > 1 && contour[len(contour)-1] == c.start {
		contour = contour[:len(contour)-1]
	}
	return contour
}

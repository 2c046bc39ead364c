package viamtictactoe

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// PieceMark is a circle found on the board image.
type PieceMark struct {
	Center image.Point
	Radius int
	Votes  int
}

// CircleParams tunes FindCircles. The radius band scales with the cell size so
// pieces are found whatever distance the camera is from the board.
type CircleParams struct {
	MinRadius, MaxRadius int
	MinDist              int // centers closer than this are the same circle
	MinVotes             int
	EdgeLevel            int
	BlurSigma            float64
}

// RadiusHint is the expected piece radius for a cell of the given size.
func RadiusHint(cellSize int) int {
	return cellSize * 3 / 8
}

// CircleParamsFor derives the search band from a radius hint: the band is [2/3, 4/3] of the hint.
func CircleParamsFor(radiusHint int) CircleParams {
	minR := max(radiusHint*2/3, 2)
	maxR := max(radiusHint*4/3, minR+1)
	return CircleParams{
		MinRadius: minR,
		MaxRadius: maxR,
		MinDist:   maxR,
		MinVotes:  int(2 * math.Pi * float64(minR)),
		EdgeLevel: 100,
		BlurSigma: 1.5,
	}
}

// FindCircles runs a gradient Hough search for circles of about radiusHint pixels.
// Marks come back strongest first; an empty slice means nothing was found.
func FindCircles(img image.Image, radiusHint int) []PieceMark {
	return CircleParamsFor(radiusHint).Find(img)
}

func (p CircleParams) Find(img image.Image) []PieceMark {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 || p.MaxRadius <= 0 {
		return []PieceMark{}
	}

	gray := makeGrayImage(imaging.Grayscale(imaging.Blur(img, p.BlurSigma)))
	gx, gy, mag := sobelGradients(gray, width, height)

	// every edge pixel votes along its gradient, both ways, at every radius in the band
	acc := make([][]int, height)
	for y := range height {
		acc[y] = make([]int, width)
	}
	edges := []image.Point{}
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if mag[y][x] < p.EdgeLevel {
				continue
			}
			edges = append(edges, image.Point{x, y})

			n := math.Hypot(float64(gx[y][x]), float64(gy[y][x]))
			ux, uy := float64(gx[y][x])/n, float64(gy[y][x])/n
			for r := p.MinRadius; r <= p.MaxRadius; r++ {
				for _, sign := range []float64{-1, 1} {
					cx := int(math.Round(float64(x) + sign*ux*float64(r)))
					cy := int(math.Round(float64(y) + sign*uy*float64(r)))
					if cx >= 0 && cx < width && cy >= 0 && cy < height {
						acc[cy][cx]++
					}
				}
			}
		}
	}

	type peak struct {
		at    image.Point
		score int
	}
	var peaks []peak
	for y := range height {
		for x := range width {
			if acc[y][x] == 0 {
				continue
			}
			score := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := y+dy, x+dx
					if ny >= 0 && ny < height && nx >= 0 && nx < width {
						score += acc[ny][nx]
					}
				}
			}
			if score >= p.MinVotes {
				peaks = append(peaks, peak{image.Point{x, y}, score})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].score != peaks[j].score {
			return peaks[i].score > peaks[j].score
		}
		if peaks[i].at.Y != peaks[j].at.Y {
			return peaks[i].at.Y < peaks[j].at.Y
		}
		return peaks[i].at.X < peaks[j].at.X
	})

	marks := []PieceMark{}
	for _, pk := range peaks {
		tooClose := false
		for _, m := range marks {
			d := pk.at.Sub(m.Center.Sub(bounds.Min))
			if d.X*d.X+d.Y*d.Y < p.MinDist*p.MinDist {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		marks = append(marks, PieceMark{
			Center: pk.at.Add(bounds.Min),
			Radius: p.estimateRadius(pk.at, edges),
			Votes:  pk.score,
		})
	}

	return marks
}

// estimateRadius picks the most common edge distance from center within the band.
func (p CircleParams) estimateRadius(center image.Point, edges []image.Point) int {
	hist := make([]int, p.MaxRadius+1)
	for _, e := range edges {
		d := int(math.Round(math.Hypot(float64(e.X-center.X), float64(e.Y-center.Y))))
		if d >= p.MinRadius && d <= p.MaxRadius {
			hist[d]++
		}
	}

	best, bestCount := (p.MinRadius+p.MaxRadius)/2, 0
	for r := p.MinRadius; r <= p.MaxRadius; r++ {
		if hist[r] > bestCount {
			best, bestCount = r, hist[r]
		}
	}
	return best
}

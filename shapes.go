package viamtictactoe

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
)

// Contour is a closed polygon in pixel coordinates.
type Contour []image.Point

// ShapeParams tunes FindQuadrilaterals.
type ShapeParams struct {
	MinArea            float64 // polygon area must be strictly above this
	MaxAspectDeviation float64 // bounding box width/height must be within 1 +- this
	MaxCornerCos       float64 // every corner's |cos| must be below this
	BlurSigma          float64
	ThresholdStep      int     // binarization levels are step, 2*step, ... below 255
	EdgeLevel          int     // Sobel magnitude for the edge pass
	ApproxEpsilon      float64 // polygon simplification tolerance as a fraction of the perimeter
}

func DefaultShapeParams() ShapeParams {
	return ShapeParams{
		MinArea:            1000,
		MaxAspectDeviation: 0.1,
		MaxCornerCos:       0.1,
		BlurSigma:          1.0,
		ThresholdStep:      26,
		EdgeLevel:          50,
		ApproxEpsilon:      0.02,
	}
}

// FindQuadrilaterals returns every near-square convex quadrilateral with area above minArea.
// The same outline usually shows up several times, once per channel and threshold.
func FindQuadrilaterals(img image.Image, minArea, maxAspectDeviation float64) []Contour {
	p := DefaultShapeParams()
	p.MinArea = minArea
	p.MaxAspectDeviation = maxAspectDeviation
	return p.Find(img)
}

func (p ShapeParams) Find(img image.Image) []Contour {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil
	}

	blurred := imaging.Blur(img, p.BlurSigma)
	found := []Contour{}

	step := p.ThresholdStep
	if step <= 0 {
		step = 26
	}

	for _, plane := range channelPlanes(blurred) {
		// level 0 is the edge pass, the rest are plain binarizations
		for level := 0; level < 255; level += step {
			var mask [][]bool
			if level == 0 {
				mask = edgeMask(plane, width, height, p.EdgeLevel)
			} else {
				mask = thresholdMask(plane, width, height, level)
			}

			// outlines of both polarities, so a board drawn as a frame is found from the inside too
			found = append(found, p.quadsInMask(mask, width, height, bounds.Min)...)
			found = append(found, p.quadsInMask(invertMask(mask, width, height), width, height, bounds.Min)...)
		}
	}

	return found
}

func (p ShapeParams) quadsInMask(mask [][]bool, width, height int, origin image.Point) []Contour {
	labels, comps := labelComponents(mask, width, height)

	var quads []Contour
	for _, c := range comps {
		// a polygon can never be larger than its component's bounding box
		if float64(c.bounds.Dx()*c.bounds.Dy()) <= p.MinArea {
			continue
		}
		outline := traceBoundary(labels, width, height, c)
		if len(outline) < 4 {
			continue
		}

		poly := approxPolygon(outline, p.ApproxEpsilon*Contour(outline).ArcLength())
		if !p.accept(poly) {
			continue
		}

		shifted := make(Contour, len(poly))
		for i, pt := range poly {
			shifted[i] = pt.Add(origin)
		}
		quads = append(quads, shifted)
	}
	return quads
}

func (p ShapeParams) accept(poly Contour) bool {
	if len(poly) != 4 || !poly.IsConvex() {
		return false
	}
	if poly.Area() <= p.MinArea {
		return false
	}

	b := poly.Bounds()
	aspect := float64(b.Dx()) / float64(b.Dy())
	if aspect >= 1+p.MaxAspectDeviation || aspect <= 1-p.MaxAspectDeviation {
		return false
	}

	return poly.MaxCornerCos() < p.MaxCornerCos
}

// Area is the absolute shoelace area.
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	sum := 0.0
	for i := range c {
		a := toR2(c[i])
		b := toR2(c[(i+1)%len(c)])
		sum += a.Cross(b)
	}
	return math.Abs(sum) / 2
}

// ArcLength is the closed perimeter.
func (c Contour) ArcLength() float64 {
	total := 0.0
	for i := range c {
		total += toR2(c[(i+1)%len(c)]).Sub(toR2(c[i])).Norm()
	}
	return total
}

// Bounds is the pixel bounding box; Max is exclusive, so a contour spanning x=10..19 is 10 wide.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(c[0].X, c[0].Y, c[0].X+1, c[0].Y+1)
	for _, pt := range c[1:] {
		r = r.Union(image.Rect(pt.X, pt.Y, pt.X+1, pt.Y+1))
	}
	return r
}

func (c Contour) IsConvex() bool {
	if len(c) < 3 {
		return false
	}
	sign := 0
	for i := range c {
		a := toR2(c[i])
		b := toR2(c[(i+1)%len(c)])
		d := toR2(c[(i+2)%len(c)])
		cross := b.Sub(a).Cross(d.Sub(b))
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// MaxCornerCos is the largest |cos| of the interior angles; 0 for a perfect rectangle.
func (c Contour) MaxCornerCos() float64 {
	worst := 0.0
	for i := range c {
		worst = math.Max(worst, angleCos(c[i], c[(i+1)%len(c)], c[(i+2)%len(c)]))
	}
	return worst
}

// angleCos is |cos| of the angle at p1 between p0 and p2.
func angleCos(p0, p1, p2 image.Point) float64 {
	d1 := toR2(p0).Sub(toR2(p1))
	d2 := toR2(p2).Sub(toR2(p1))
	n := d1.Norm() * d2.Norm()
	if n == 0 {
		return 1
	}
	return math.Abs(d1.Dot(d2) / n)
}

func toR2(p image.Point) r2.Point {
	return r2.Point{X: float64(p.X), Y: float64(p.Y)}
}

// approxPolygon simplifies a closed outline with Douglas-Peucker.
func approxPolygon(outline []image.Point, epsilon float64) Contour {
	n := len(outline)
	if n < 3 {
		return Contour(outline)
	}

	// split at the point farthest from the first one
	far, best := 0, -1.0
	for i, pt := range outline {
		if d := toR2(pt).Sub(toR2(outline[0])).Norm(); d > best {
			far, best = i, d
		}
	}
	if far == 0 {
		return Contour{outline[0]}
	}

	first := douglasPeucker(outline[:far+1], epsilon)
	second := douglasPeucker(append(append([]image.Point{}, outline[far:]...), outline[0]), epsilon)

	poly := append(Contour{}, first[:len(first)-1]...)
	poly = append(poly, second[:len(second)-1]...)

	return dropCollinear(poly, epsilon)
}

func douglasPeucker(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point{}, pts...)
	}

	a, b := toR2(pts[0]), toR2(pts[len(pts)-1])
	idx, maxDist := 0, -1.0
	for i := 1; i < len(pts)-1; i++ {
		if d := lineDistance(toR2(pts[i]), a, b); d > maxDist {
			idx, maxDist = i, d
		}
	}

	if maxDist <= epsilon {
		return []image.Point{pts[0], pts[len(pts)-1]}
	}

	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	out := make([]image.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// dropCollinear removes vertices that sit within epsilon of the line through their neighbours.
// The two split points of approxPolygon are forced vertices and often land mid-edge.
func dropCollinear(poly Contour, epsilon float64) Contour {
	for changed := true; changed && len(poly) > 3; {
		changed = false
		for i := range poly {
			prev := toR2(poly[(i+len(poly)-1)%len(poly)])
			next := toR2(poly[(i+1)%len(poly)])
			if lineDistance(toR2(poly[i]), prev, next) <= epsilon {
				poly = append(poly[:i:i], poly[i+1:]...)
				changed = true
				break
			}
		}
	}
	return poly
}

func lineDistance(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	l := ab.Norm()
	if l == 0 {
		return p.Sub(a).Norm()
	}
	return math.Abs(ab.Cross(p.Sub(a))) / l
}

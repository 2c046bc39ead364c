package viamtictactoe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"go.viam.com/rdk/logging"
)

var (
	// ErrCalibrationExhausted means the area search reached the whole frame without a fixture match.
	ErrCalibrationExhausted = errors.New("calibration exhausted: no fixture found on the board")
	ErrNotCalibrated        = errors.New("board region not calibrated")
)

// AcquireState is where the acquirer is in its lifecycle.
type AcquireState int

const (
	Uncalibrated AcquireState = iota
	Calibrating
	Locked
	Reading
)

func (s AcquireState) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Calibrating:
		return "calibrating"
	case Locked:
		return "locked"
	case Reading:
		return "reading"
	}
	return fmt.Sprintf("AcquireState(%d)", int(s))
}

type AcquireParams struct {
	GridSize           int
	SeedArea           float64 // first minimum contour area
	AreaGrowth         float64 // factor applied to the area after every failed pass
	MaxAspectDeviation float64
}

func DefaultAcquireParams() AcquireParams {
	return AcquireParams{
		GridSize:           defaultGridSize,
		SeedArea:           1000,
		AreaGrowth:         1.5,
		MaxAspectDeviation: 0.1,
	}
}

var findQuads = FindQuadrilaterals

// Acquirer finds the board once and then reads it each turn from the same region.
type Acquirer struct {
	params AcquireParams
	logger logging.Logger

	mu     sync.Mutex
	state  AcquireState
	region image.Rectangle
}

func NewAcquirer(params AcquireParams, logger logging.Logger) *Acquirer {
	return &Acquirer{
		params: params,
		logger: logger,
		state:  Uncalibrated,
	}
}

func (a *Acquirer) State() AcquireState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Region returns the locked board rectangle, or false when there is none.
func (a *Acquirer) Region() (image.Rectangle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.region, a.state == Locked || a.state == Reading
}

// Invalidate forgets the region; the next Read fails until Calibrate succeeds again.
func (a *Acquirer) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Uncalibrated
	a.region = image.Rectangle{}
}

// calibrationAreas lists the minimum areas tried in order. The list grows geometrically
// from seed and its last entry is always frameArea, so the search is bounded.
func calibrationAreas(seed, growth, frameArea float64) ([]float64, error) {
	if seed <= 0 {
		return nil, fmt.Errorf("seed area must be positive, got %v", seed)
	}
	if growth <= 1 {
		return nil, fmt.Errorf("area growth must be above 1, got %v", growth)
	}
	if frameArea <= 0 {
		return nil, nil
	}

	areas := []float64{}
	for area := seed; area < frameArea; area *= growth {
		areas = append(areas, area)
	}
	return append(areas, frameArea), nil
}

// Calibrate searches frame for the board with a fixture laid out on it and locks onto it.
// On failure the acquirer goes back to Uncalibrated.
func (a *Acquirer) Calibrate(ctx context.Context, frame image.Image) (image.Rectangle, error) {
	ctx, span := startSpan(ctx, "Acquirer", "Calibrate")
	defer span.End()

	a.mu.Lock()
	a.state = Calibrating
	a.region = image.Rectangle{}
	a.mu.Unlock()

	region, err := a.search(ctx, frame)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = Uncalibrated
		return image.Rectangle{}, err
	}
	a.state = Locked
	a.region = region
	a.logger.Infof("board locked at %v", region)
	return region, nil
}

func (a *Acquirer) search(ctx context.Context, frame image.Image) (image.Rectangle, error) {
	bounds := frame.Bounds()
	frameArea := float64(bounds.Dx() * bounds.Dy())

	areas, err := calibrationAreas(a.params.SeedArea, a.params.AreaGrowth, frameArea)
	if err != nil {
		return image.Rectangle{}, err
	}
	if len(areas) == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: empty frame", ErrCalibrationExhausted)
	}

	if err := ctx.Err(); err != nil {
		return image.Rectangle{}, err
	}
	// the quads only depend on the frame; each pass just raises the area floor
	quads := findQuads(frame, areas[0], a.params.MaxAspectDeviation)
	a.logger.Debugf("%d candidate quads above area %0.0f", len(quads), areas[0])

	tried := map[image.Rectangle]bool{}
	for _, area := range areas {
		if err := ctx.Err(); err != nil {
			return image.Rectangle{}, err
		}
		a.logger.Debugf("trying to find the board with area > %0.0f", area)

		for _, q := range quads {
			if q.Area() <= area {
				continue
			}
			region := q.Bounds().Intersect(bounds)
			if tried[region] {
				continue
			}
			tried[region] = true

			board, _, ok := ReadRegion(frame, region, a.params.GridSize)
			if !ok {
				continue
			}
			if MatchesFixture(board) {
				return region, nil
			}
		}
	}

	return image.Rectangle{}, fmt.Errorf("%w after %d passes", ErrCalibrationExhausted, len(areas))
}

// Read classifies the locked region of frame. ok is false when the frame was ambiguous;
// that is not an error, the caller polls again.
func (a *Acquirer) Read(ctx context.Context, frame image.Image) (Board, bool, error) {
	_, span := startSpan(ctx, "Acquirer", "Read")
	defer span.End()

	a.mu.Lock()
	if a.state != Locked {
		a.mu.Unlock()
		return Board{}, false, ErrNotCalibrated
	}
	a.state = Reading
	region := a.region
	a.mu.Unlock()

	board, _, ok := ReadRegion(frame, region, a.params.GridSize)

	a.mu.Lock()
	if a.state == Reading {
		a.state = Locked
	}
	a.mu.Unlock()

	return board, ok, nil
}

// ReadRegion crops frame to region, finds the pieces and classifies them.
// Marks are in crop coordinates.
func ReadRegion(frame image.Image, region image.Rectangle, gridSize int) (Board, []PieceMark, bool) {
	if region.Empty() || gridSize <= 0 {
		return Board{}, nil, false
	}
	sub := imaging.Crop(frame, region)
	cell := sub.Bounds().Dy() / gridSize
	marks := FindCircles(sub, RadiusHint(cell))
	board, ok := Classify(sub, marks, gridSize)
	return board, marks, ok
}

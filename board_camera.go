package viamtictactoe

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
)

func init() {
	resource.RegisterComponent(camera.API, BoardCameraModel,
		resource.Registration[camera.Camera, *BoardCameraConfig]{
			Constructor: newBoardCamera,
		},
	)
}

type BoardCameraConfig struct {
	Input      string  // the camera that watches the board
	GridSize   int     `json:"grid-size"`
	SeedArea   float64 `json:"seed-area"`
	CenterLine bool    `json:"center-line"` // crosshair through the frame center, for aiming the camera
}

func (cfg *BoardCameraConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Input == "" {
		return nil, nil, fmt.Errorf("need an input")
	}
	return []string{cfg.Input}, nil, nil
}

func newBoardCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*BoardCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewBoardCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewBoardCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *BoardCameraConfig, logger logging.Logger) (camera.Camera, error) {
	var err error

	params := DefaultAcquireParams()
	if conf.GridSize > 0 {
		params.GridSize = conf.GridSize
	}
	if conf.SeedArea > 0 {
		params.SeedArea = conf.SeedArea
	}

	bc := &BoardCamera{
		name:     name,
		conf:     conf,
		logger:   logger,
		acquirer: NewAcquirer(params, logger),
		gridSize: params.GridSize,
	}
	bc.centerLine.Store(conf.CenterLine)

	bc.input, err = camera.FromProvider(deps, conf.Input)
	if err != nil {
		return nil, err
	}

	return bc, nil
}

// BoardCamera shows what the game sees: the locked region, the grid, the circles and the read symbols.
// Images never searches for the board; send {"calibrate": true} with the fixture laid out.
type BoardCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *BoardCameraConfig
	logger logging.Logger

	input      camera.Camera
	acquirer   *Acquirer
	gridSize   int
	centerLine atomic.Bool
}

func (bc *BoardCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return camera.GetImageFromGetImages(ctx, nil, bc, extra, nil)
}

func (bc *BoardCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	ni, rm, err := bc.input.Images(ctx, nil, extra)
	if err != nil {
		return nil, rm, err
	}

	if len(ni) == 0 {
		return nil, rm, fmt.Errorf("no images returned from input camera")
	}

	srcImg, err := ni[0].Image(ctx)
	if err != nil {
		return nil, rm, err
	}

	region, _ := bc.acquirer.Region()
	dst, _, _ := BoardDebugImage(srcImg, region, bc.gridSize)
	if bc.centerLine.Load() {
		DrawCenterLines(dst)
	}

	result, err := camera.NamedImageFromImage(dst, ni[0].SourceName, "", data.Annotations{})
	if err != nil {
		return nil, rm, err
	}
	return []camera.NamedImage{result}, rm, nil
}

func (bc *BoardCamera) frame(ctx context.Context) (image.Image, error) {
	ni, _, err := bc.input.Images(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(ni) == 0 {
		return nil, fmt.Errorf("no images returned from input camera")
	}
	return ni[0].Image(ctx)
}

type boardCameraCmd struct {
	Calibrate   bool
	Recalibrate bool
	CenterLine  bool `mapstructure:"center-line"`
}

func (bc *BoardCamera) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd boardCameraCmd
	if err := mapstructure.Decode(cmdMap, &cmd); err != nil {
		return nil, err
	}

	switch {
	case cmd.Calibrate:
		img, err := bc.frame(ctx)
		if err != nil {
			return nil, err
		}
		region, err := bc.acquirer.Calibrate(ctx, img)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"region": regionMap(region)}, nil

	case cmd.Recalibrate:
		bc.acquirer.Invalidate()
		return map[string]interface{}{"state": bc.acquirer.State().String()}, nil

	case cmd.CenterLine:
		// toggles, like a key press
		for {
			was := bc.centerLine.Load()
			if bc.centerLine.CompareAndSwap(was, !was) {
				return map[string]interface{}{"center-line": !was}, nil
			}
		}
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func (bc *BoardCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, fmt.Errorf("NextPointCloud not supported")
}

func (bc *BoardCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{}, nil
}

func (bc *BoardCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (bc *BoardCamera) Name() resource.Name {
	return bc.name
}

package viamtictactoe

import (
	"context"
	"errors"
	"image"
	"testing"

	"go.bug.st/serial"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
	"go.viam.com/test"
)

func TestGameConfigValidate(t *testing.T) {
	cfg := &GameConfig{}
	_, _, err := cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &GameConfig{Camera: "cam"}
	deps, _, err := cfg.Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"cam"})
	test.That(t, cfg.computer(), test.ShouldEqual, White)
	test.That(t, cfg.acquireParams(), test.ShouldResemble, DefaultAcquireParams())
	test.That(t, cfg.serialConfig().Port, test.ShouldEqual, "/dev/ttyS0")

	cfg = &GameConfig{Camera: "cam", ComputerSymbol: "x"}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &GameConfig{Camera: "cam", AreaGrowth: 0.5}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &GameConfig{Camera: "cam", ComputerSymbol: "b", SerialPort: "/dev/ttyUSB0", GridSize: 4}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.computer(), test.ShouldEqual, Black)
	test.That(t, cfg.acquireParams().GridSize, test.ShouldEqual, 4)
	test.That(t, cfg.serialConfig().Port, test.ShouldEqual, "/dev/ttyUSB0")
}

func newTestGame(t *testing.T, frames *fakeFrames) resource.Resource {
	t.Helper()
	withOpenPort(t, func(name string, mode *serial.Mode) (serial.Port, error) {
		return nil, errors.New("no arm in tests")
	})

	deps := resource.Dependencies{camera.Named("cam"): &fakeCamera{frames: frames}}
	conf := &GameConfig{Camera: "cam", OpenAttempts: 1, RandomSeed: 1}
	g, err := NewTicTacToe(context.Background(), deps, generic.Named("game"), conf, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestGameDoCommand(t *testing.T) {
	ctx := context.Background()
	frames := &fakeFrames{frames: []image.Image{
		drawScene(t, "B-B/-B-/B-B"),
		drawScene(t, "BB-/-W-/---"),
	}}
	g := newTestGame(t, frames)
	defer func() {
		test.That(t, g.Close(ctx), test.ShouldBeNil)
	}()

	res, err := g.DoCommand(ctx, map[string]interface{}{"calibrate": true})
	test.That(t, err, test.ShouldBeNil)
	region := res["region"].(map[string]interface{})
	test.That(t, near(region["x"].(int), boardX, 6), test.ShouldBeTrue)
	test.That(t, near(region["width"].(int), boardSide, 12), test.ShouldBeTrue)

	res, err = g.DoCommand(ctx, map[string]interface{}{"turn": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res["outcome"], test.ShouldEqual, "played")
	test.That(t, res["board"], test.ShouldEqual, "BB-/-W-/---")
	test.That(t, res["move"], test.ShouldResemble, []int{0, 2})
	test.That(t, res["tactic"], test.ShouldEqual, "blocking")
	test.That(t, res["command"], test.ShouldEqual, "#n00#p02$")
	// no serial port in tests
	test.That(t, res["error"], test.ShouldEqual, ErrTransportUnavailable.Error())

	res, err = g.DoCommand(ctx, map[string]interface{}{"new-game": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res["next-piece"], test.ShouldEqual, 0)

	res, err = g.DoCommand(ctx, map[string]interface{}{"recalibrate": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res["state"], test.ShouldEqual, "uncalibrated")

	_, err = g.DoCommand(ctx, map[string]interface{}{"turn": true})
	test.That(t, errors.Is(err, ErrNotCalibrated), test.ShouldBeTrue)
}

func TestGameDecideCommand(t *testing.T) {
	ctx := context.Background()
	g := newTestGame(t, &fakeFrames{})

	res, err := g.DoCommand(ctx, map[string]interface{}{"decide": "WW-/B-B/---"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res["move"], test.ShouldResemble, []int{0, 2})
	test.That(t, res["tactic"], test.ShouldEqual, "winning")

	_, err = g.DoCommand(ctx, map[string]interface{}{"decide": "WWB/BBW/WWB"})
	test.That(t, errors.Is(err, ErrNoMoveAvailable), test.ShouldBeTrue)

	_, err = g.DoCommand(ctx, map[string]interface{}{"decide": "nope"})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = g.DoCommand(ctx, map[string]interface{}{"send": "#n00#p11$"})
	test.That(t, errors.Is(err, ErrTransportUnavailable), test.ShouldBeTrue)

	_, err = g.DoCommand(ctx, map[string]interface{}{"dance": true})
	test.That(t, err, test.ShouldNotBeNil)

	// calibration fails when the camera has nothing
	_, err = g.DoCommand(ctx, map[string]interface{}{"calibrate": true})
	test.That(t, errors.Is(err, ErrNoFrame), test.ShouldBeTrue)
}

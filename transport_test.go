package viamtictactoe

import (
	"context"
	"errors"
	"image"
	"testing"

	"go.bug.st/serial"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/test"
)

// fakePort only implements what serialTransport uses.
type fakePort struct {
	serial.Port
	written []byte
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Drain() error {
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func withOpenPort(t *testing.T, f func(name string, mode *serial.Mode) (serial.Port, error)) {
	t.Helper()
	old := openPort
	openPort = f
	t.Cleanup(func() { openPort = old })
}

func TestOpenSerialTransportRetries(t *testing.T) {
	port := &fakePort{}
	calls := 0
	withOpenPort(t, func(name string, mode *serial.Mode) (serial.Port, error) {
		calls++
		test.That(t, name, test.ShouldEqual, "/dev/ttyTEST")
		test.That(t, mode.BaudRate, test.ShouldEqual, 9600)
		if calls < 3 {
			return nil, errors.New("busy")
		}
		return port, nil
	})

	cfg := DefaultSerialConfig()
	cfg.Port = "/dev/ttyTEST"
	cfg.RetryDelay = 0

	tr, err := OpenSerialTransport(context.Background(), cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, calls, test.ShouldEqual, 3)
	test.That(t, tr.IsOpen(), test.ShouldBeTrue)

	n, err := tr.Write([]byte("#n00#p11$"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 9)
	test.That(t, string(port.written), test.ShouldEqual, "#n00#p11$")

	test.That(t, tr.Close(), test.ShouldBeNil)
	test.That(t, port.closed, test.ShouldBeTrue)
	test.That(t, tr.IsOpen(), test.ShouldBeFalse)

	_, err = tr.Write([]byte("#n01#p00$"))
	test.That(t, errors.Is(err, ErrTransportUnavailable), test.ShouldBeTrue)
	test.That(t, tr.Close(), test.ShouldBeNil)
}

func TestOpenSerialTransportGivesUp(t *testing.T) {
	calls := 0
	withOpenPort(t, func(name string, mode *serial.Mode) (serial.Port, error) {
		calls++
		return nil, errors.New("no such device")
	})

	cfg := DefaultSerialConfig()
	cfg.RetryDelay = 0

	_, err := OpenSerialTransport(context.Background(), cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no such device")
	test.That(t, calls, test.ShouldEqual, 4)
}

// fakeCamera serves fixed frames; anything else on camera.Camera panics.
type fakeCamera struct {
	camera.Camera
	frames *fakeFrames
}

func (c *fakeCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	img, err := c.frames.Frame(ctx)
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	ni, err := camera.NamedImageFromImage(img, "fake", "", data.Annotations{})
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	return []camera.NamedImage{ni}, resource.ResponseMetadata{}, nil
}

func (c *fakeCamera) Name() resource.Name {
	return camera.Named("fake")
}

func TestCameraFrameSource(t *testing.T) {
	scene := drawScene(t, "---/-B-/---")
	src := NewCameraFrameSource(&fakeCamera{frames: &fakeFrames{frames: []image.Image{scene}}})

	img, err := src.Frame(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, scene.Bounds())

	src = NewCameraFrameSource(&fakeCamera{frames: &fakeFrames{}})
	_, err = src.Frame(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
}

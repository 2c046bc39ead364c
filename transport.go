package viamtictactoe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"go.bug.st/serial"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
)

var ErrTransportUnavailable = errors.New("transport not open")

// Transport is the link to the arm controller.
type Transport interface {
	IsOpen() bool
	Write(p []byte) (int, error)
	Close() error
}

type SerialConfig struct {
	Port         string
	BaudRate     int
	OpenAttempts int
	RetryDelay   time.Duration
}

func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Port:         "/dev/ttyS0",
		BaudRate:     9600,
		OpenAttempts: 4,
		RetryDelay:   500 * time.Millisecond,
	}
}

// openPort is swapped out in tests.
var openPort = serial.Open

type serialTransport struct {
	logger logging.Logger

	mu   sync.Mutex
	port serial.Port
}

// OpenSerialTransport opens the port, trying up to cfg.OpenAttempts times.
func OpenSerialTransport(ctx context.Context, cfg SerialConfig, logger logging.Logger) (Transport, error) {
	attempts := max(cfg.OpenAttempts, 1)
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		port, err := openPort(cfg.Port, mode)
		if err == nil {
			logger.Infof("opened %s at %d baud", cfg.Port, cfg.BaudRate)
			return &serialTransport{logger: logger, port: port}, nil
		}
		lastErr = err
		logger.Warnf("can't open %s (attempt %d of %d): %v", cfg.Port, i, attempts, err)

		if i < attempts && cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("opening %s: %w", cfg.Port, lastErr)
}

func (t *serialTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

func (t *serialTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return 0, ErrTransportUnavailable
	}
	n, err := t.port.Write(p)
	if err != nil {
		return n, err
	}
	if n != len(p) {
		return n, fmt.Errorf("short write: %d of %d bytes", n, len(p))
	}
	return n, t.port.Drain()
}

func (t *serialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// FrameSource hands out the next camera frame.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

type cameraFrameSource struct {
	cam camera.Camera
}

// NewCameraFrameSource reads frames from the first image a camera returns.
func NewCameraFrameSource(cam camera.Camera) FrameSource {
	return &cameraFrameSource{cam: cam}
}

func (s *cameraFrameSource) Frame(ctx context.Context) (image.Image, error) {
	return firstImage(ctx, s.cam, nil)
}

func firstImage(ctx context.Context, cam camera.Camera, extra map[string]interface{}) (image.Image, error) {
	ni, _, err := cam.Images(ctx, nil, extra)
	if err != nil {
		return nil, err
	}
	if len(ni) == 0 {
		return nil, fmt.Errorf("no images returned from camera %v", cam.Name())
	}
	return ni[0].Image(ctx)
}

// Pipeline driver: backend and operator selection per frame
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-edge-processing/internal/backend"
	"realtime-edge-processing/internal/core"
	"realtime-edge-processing/internal/metrics"
	"realtime-edge-processing/internal/operators"
)

// Backend selection tags. Selection is per frame and carries no state
// across frames.
const (
	BackendReference   = "reference"
	BackendAccelerated = "accelerated"
)

// Methods the driver accepts.
const (
	MethodGrayscale = "grayscale"
	MethodGaussian  = "gaussian"
	MethodSobel     = "sobel"
	MethodPrewitt   = "prewitt"
	MethodRoberts   = "roberts"
	MethodLaplacian = "laplacian"
	MethodCanny     = "canny"
)

// referenceOnly lists the methods the accelerated library does not expose.
// The driver routes these to the reference backend regardless of the
// selected tag.
var referenceOnly = map[string]bool{
	MethodPrewitt: true,
	MethodRoberts: true,
}

// Config is the externally supplied parameter set for one frame.
type Config struct {
	Method        string
	Backend       string
	Threshold     float64
	LowThreshold  float64
	HighThreshold float64
	BlurRadius    int
	KernelSize    int
}

// DefaultConfig returns a working configuration: reference-backend Sobel
// with a 3x3 aperture.
func DefaultConfig() Config {
	return Config{
		Method:        MethodSobel,
		Backend:       BackendReference,
		Threshold:     100,
		LowThreshold:  50,
		HighThreshold: 150,
		BlurRadius:    0,
		KernelSize:    3,
	}
}

// Validate checks the configuration invariants. Violations indicate caller
// bugs and are surfaced unmodified, never silently corrected.
func (c Config) Validate() error {
	switch c.Method {
	case MethodGrayscale, MethodGaussian, MethodSobel, MethodPrewitt,
		MethodRoberts, MethodLaplacian, MethodCanny:
	default:
		return fmt.Errorf("%w: %q", core.ErrUnsupportedOperator, c.Method)
	}
	if c.Backend != BackendReference && c.Backend != BackendAccelerated {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Method == MethodCanny && c.HighThreshold <= c.LowThreshold {
		return fmt.Errorf("%w: high %.1f must exceed low %.1f",
			core.ErrInvalidThresholds, c.HighThreshold, c.LowThreshold)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("%w: negative blur radius", core.ErrInvalidKernel)
	}
	// only the derivative methods read the aperture; a zero value on the
	// others is not a caller bug
	switch c.Method {
	case MethodSobel, MethodLaplacian:
		switch c.KernelSize {
		case 3, 5, 7:
		default:
			return fmt.Errorf("%w: kernel size must be 3, 5 or 7", core.ErrInvalidKernel)
		}
	}
	return nil
}

// initializable is implemented by backends with an asynchronous readiness
// handshake.
type initializable interface {
	Init(ctx context.Context)
}

// Driver turns raw frames into processed output buffers. It is stateless
// across frames apart from forwarding backend readiness; every call owns
// its buffers exclusively, so independent frames may be processed
// concurrently.
type Driver struct {
	reference   backend.Backend
	accelerated backend.Backend
	recorder    *metrics.Recorder
	logger      *logrus.Entry
}

// New creates a driver wired to the standard backend pair.
func New(logger *logrus.Logger) *Driver {
	return NewWithBackends(backend.NewReference(), backend.NewAccelerated(logger), logger)
}

// NewWithBackends creates a driver over explicit backends.
func NewWithBackends(ref, acc backend.Backend, logger *logrus.Logger) *Driver {
	return &Driver{
		reference:   ref,
		accelerated: acc,
		recorder:    metrics.NewRecorder(),
		logger:      logger.WithField("component", "pipeline"),
	}
}

// InitAccelerated starts the accelerated backend's readiness handshake.
// It returns immediately; frames route to the reference backend until the
// handshake completes.
func (d *Driver) InitAccelerated(ctx context.Context) {
	if ib, ok := d.accelerated.(initializable); ok {
		ib.Init(ctx)
	}
}

// AcceleratedState reports the accelerated backend's lifecycle state.
func (d *Driver) AcceleratedState() backend.State {
	return d.accelerated.State()
}

// Stats returns a snapshot of per-frame processing statistics.
func (d *Driver) Stats() metrics.FrameStats {
	return d.recorder.Snapshot()
}

// Recycle hands a processed output buffer back to the scratch pool once the
// caller has finished rendering it. The buffer must not be touched after
// the call.
func (d *Driver) Recycle(b *core.Buffer) {
	operators.Recycle(b)
}

// Process runs one frame through the configured operator and backend and
// returns a fresh output buffer of identical dimensions. Ownership of the
// returned buffer transfers to the caller; Recycle hands it back for reuse.
func (d *Driver) Process(frame *core.Buffer, cfg Config) (*core.Buffer, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if frame.Channels != core.ChannelsRGBA {
		return nil, fmt.Errorf("%w: driver input must be RGBA", core.ErrInvalidDimensions)
	}

	out, err := d.dispatch(frame, cfg)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	d.recorder.Observe(elapsed)
	d.logger.WithFields(logrus.Fields{
		"method":  cfg.Method,
		"backend": cfg.Backend,
		"elapsed": elapsed,
		"width":   frame.Width,
		"height":  frame.Height,
	}).Debug("Frame processed")

	return out, nil
}

func (d *Driver) dispatch(frame *core.Buffer, cfg Config) (*core.Buffer, error) {
	// reference-only methods bypass backend selection entirely
	if referenceOnly[cfg.Method] {
		return d.runReferenceOnly(frame, cfg)
	}

	b := d.selectBackend(cfg)
	out, err := d.run(b, frame, cfg)
	if err != nil && b != d.reference && errors.Is(err, core.ErrBackendNotReady) {
		// the state flipped between selection and execution; recover on
		// the reference path
		d.logger.Debug("Accelerated call raced initialization, retrying on reference")
		return d.run(d.reference, frame, cfg)
	}
	return out, err
}

// selectBackend honors the configured tag but falls back to the reference
// backend while the accelerated one is not ready.
func (d *Driver) selectBackend(cfg Config) backend.Backend {
	if cfg.Backend != BackendAccelerated {
		return d.reference
	}
	if s := d.accelerated.State(); s != backend.StateReady {
		d.logger.WithField("state", s.String()).Debug(
			"Accelerated backend not ready, falling back to reference")
		return d.reference
	}
	return d.accelerated
}

func (d *Driver) run(b backend.Backend, frame *core.Buffer, cfg Config) (*core.Buffer, error) {
	switch cfg.Method {
	case MethodGrayscale:
		return b.Grayscale(frame)
	case MethodGaussian:
		return b.GaussianBlur(frame, cfg.BlurRadius)
	case MethodSobel:
		in := frame
		if cfg.BlurRadius > 0 {
			blurred, err := b.GaussianBlur(frame, cfg.BlurRadius)
			if err != nil {
				return nil, err
			}
			in = blurred
		}
		out, err := b.Sobel(in, cfg.KernelSize)
		if in != frame {
			operators.Recycle(in)
		}
		return out, err
	case MethodCanny:
		return b.Canny(frame, cfg.LowThreshold, cfg.HighThreshold)
	case MethodLaplacian:
		return b.Laplacian(frame, cfg.KernelSize)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedOperator, cfg.Method)
	}
}

// runReferenceOnly executes prewitt and roberts through the operator
// registry directly.
func (d *Driver) runReferenceOnly(frame *core.Buffer, cfg Config) (*core.Buffer, error) {
	params := map[string]interface{}{
		operators.ParamThreshold: cfg.Threshold,
	}
	if cfg.Method == MethodPrewitt {
		params[operators.ParamBlurRadius] = float64(cfg.BlurRadius)
	}
	if err := operators.ValidateParameters(cfg.Method, params); err != nil {
		return nil, err
	}
	return operators.Apply(cfg.Method, frame, params)
}

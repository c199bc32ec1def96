// OpenCV-accelerated backend
package backend

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"realtime-edge-processing/internal/core"
)

// Accelerated delegates the capability set to OpenCV through gocv. The
// native library can take non-trivial time to warm up, so readiness is an
// explicit asynchronous handshake: Init kicks off a probe and every call
// fails with ErrBackendNotReady until the probe lands in StateReady. The
// driver falls back to the reference backend in the meantime.
type Accelerated struct {
	logger *logrus.Entry
	state  atomic.Int32
}

// NewAccelerated creates the accelerated backend in StateUninitialized.
func NewAccelerated(logger *logrus.Logger) *Accelerated {
	a := &Accelerated{
		logger: logger.WithField("backend", "accelerated"),
	}
	a.state.Store(int32(StateUninitialized))
	return a
}

func (a *Accelerated) Name() string { return "accelerated" }

func (a *Accelerated) State() State {
	return State(a.state.Load())
}

// Init starts the one-time readiness handshake. It never blocks frame
// processing; repeated calls after the first are no-ops.
func (a *Accelerated) Init(ctx context.Context) {
	if !a.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return
	}
	a.logger.Info("Initializing accelerated backend")
	go a.probe(ctx)
}

// probe exercises a minimal OpenCV conversion to confirm the native
// library is loadable and functional.
func (a *Accelerated) probe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("panic", r).Error("Accelerated backend initialization failed")
			a.state.Store(int32(StateFailed))
		}
	}()

	if ctx.Err() != nil {
		a.state.Store(int32(StateFailed))
		return
	}

	src := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC4)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, gocv.ColorRGBAToGray)

	if dst.Empty() {
		a.logger.Error("Accelerated backend probe produced an empty result")
		a.state.Store(int32(StateFailed))
		return
	}

	a.state.Store(int32(StateReady))
	a.logger.Info("Accelerated backend ready")
}

// checkReady gates every operation on the state machine.
func (a *Accelerated) checkReady() error {
	if s := a.State(); s != StateReady {
		return fmt.Errorf("%w: accelerated backend is %s", core.ErrBackendNotReady, s)
	}
	return nil
}

func (a *Accelerated) Grayscale(in *core.Buffer) (*core.Buffer, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	src, err := rgbaToMat(in)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	return grayMatToRGBA(gray, in.Width, in.Height)
}

func (a *Accelerated) GaussianBlur(in *core.Buffer, radius int) (*core.Buffer, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	gray, err := a.toGrayMat(in)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	if radius <= 0 {
		return grayMatToRGBA(gray, in.Width, in.Height)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	ksize := 2*radius + 1
	// sigma 0 lets OpenCV derive it from the aperture, the same profile
	// the reference kernels use
	gocv.GaussianBlur(gray, &blurred, image.Pt(ksize, ksize), 0, 0, gocv.BorderReplicate)

	return grayMatToRGBA(blurred, in.Width, in.Height)
}

func (a *Accelerated) Sobel(in *core.Buffer, kernelSize int) (*core.Buffer, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	if kernelSize != 3 && kernelSize != 5 && kernelSize != 7 {
		return nil, fmt.Errorf("%w: unsupported aperture %d", core.ErrInvalidKernel, kernelSize)
	}
	gray, err := a.toGrayMat(in)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(gray, &gx, gocv.MatTypeCV16S, 1, 0, kernelSize, 1, 0, gocv.BorderReplicate)
	gocv.Sobel(gray, &gy, gocv.MatTypeCV16S, 0, 1, kernelSize, 1, 0, gocv.BorderReplicate)

	absGx := gocv.NewMat()
	defer absGx.Close()
	absGy := gocv.NewMat()
	defer absGy.Close()
	gocv.ConvertScaleAbs(gx, &absGx, 1, 0)
	gocv.ConvertScaleAbs(gy, &absGy, 1, 0)

	// same weighted-sum magnitude convention as the reference operator
	mag := gocv.NewMat()
	defer mag.Close()
	gocv.AddWeighted(absGx, 0.5, absGy, 0.5, 0, &mag)

	return grayMatToRGBA(mag, in.Width, in.Height)
}

func (a *Accelerated) Canny(in *core.Buffer, low, high float64) (*core.Buffer, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	if high <= low {
		return nil, fmt.Errorf("%w: high %.1f must exceed low %.1f",
			core.ErrInvalidThresholds, high, low)
	}
	gray, err := a.toGrayMat(in)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderReplicate)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(low), float32(high))

	return grayMatToRGBA(edges, in.Width, in.Height)
}

func (a *Accelerated) Laplacian(in *core.Buffer, kernelSize int) (*core.Buffer, error) {
	if err := a.checkReady(); err != nil {
		return nil, err
	}
	gray, err := a.toGrayMat(in)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderReplicate)

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(blurred, &lap, gocv.MatTypeCV16S, kernelSize, 1, 0, gocv.BorderReplicate)

	abs := gocv.NewMat()
	defer abs.Close()
	gocv.ConvertScaleAbs(lap, &abs, 1, 0)

	return grayMatToRGBA(abs, in.Width, in.Height)
}

// toGrayMat converts an RGBA buffer into a single-channel Mat. Error paths
// return a zero Mat so no native header is allocated for the caller to
// forget.
func (a *Accelerated) toGrayMat(in *core.Buffer) (gocv.Mat, error) {
	src, err := rgbaToMat(in)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}

// rgbaToMat wraps a validated RGBA buffer in a CV8UC4 Mat.
func rgbaToMat(in *core.Buffer) (gocv.Mat, error) {
	if err := in.Validate(); err != nil {
		return gocv.Mat{}, err
	}
	if in.Channels != core.ChannelsRGBA {
		return gocv.Mat{}, fmt.Errorf("%w: accelerated backend expects RGBA input",
			core.ErrInvalidDimensions)
	}
	return gocv.NewMatFromBytes(in.Height, in.Width, gocv.MatTypeCV8UC4, in.Pix)
}

// grayMatToRGBA copies a single-channel Mat into a replicated RGBA buffer.
func grayMatToRGBA(m gocv.Mat, width, height int) (*core.Buffer, error) {
	data := m.ToBytes()
	pix := make([]uint8, len(data))
	copy(pix, data)

	gray, err := core.FromPix(width, height, core.ChannelsGray, pix)
	if err != nil {
		return nil, err
	}
	return core.GrayToRGBA(gray)
}

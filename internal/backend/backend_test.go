package backend

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-processing/internal/core"
)

func stepEdgeRGBA(width, height int) *core.Buffer {
	frame := core.NewRGBA(width, height)
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			i := (y*width + x) * 4
			frame.Pix[i] = 255
			frame.Pix[i+1] = 255
			frame.Pix[i+2] = 255
			frame.Pix[i+3] = 255
		}
	}
	return frame
}

func TestReferenceIsAlwaysReady(t *testing.T) {
	ref := NewReference()
	assert.Equal(t, StateReady, ref.State())
	assert.Equal(t, "reference", ref.Name())
}

func TestReferenceCapabilitySet(t *testing.T) {
	ref := NewReference()
	frame := stepEdgeRGBA(8, 8)

	ops := map[string]func() (*core.Buffer, error){
		"grayscale": func() (*core.Buffer, error) { return ref.Grayscale(frame) },
		"blur":      func() (*core.Buffer, error) { return ref.GaussianBlur(frame, 1) },
		"sobel":     func() (*core.Buffer, error) { return ref.Sobel(frame, 3) },
		"canny":     func() (*core.Buffer, error) { return ref.Canny(frame, 50, 150) },
		"laplacian": func() (*core.Buffer, error) { return ref.Laplacian(frame, 3) },
	}
	for name, fn := range ops {
		t.Run(name, func(t *testing.T) {
			out, err := fn()
			require.NoError(t, err)
			assert.Equal(t, frame.Width, out.Width)
			assert.Equal(t, frame.Height, out.Height)
			assert.Equal(t, core.ChannelsRGBA, out.Channels)
		})
	}
}

func TestReferenceCannyRejectsBadThresholds(t *testing.T) {
	ref := NewReference()
	_, err := ref.Canny(stepEdgeRGBA(4, 4), 100, 100)
	assert.ErrorIs(t, err, core.ErrInvalidThresholds)
}

func TestAcceleratedRejectsCallsBeforeInit(t *testing.T) {
	acc := NewAccelerated(logrus.New())
	assert.Equal(t, StateUninitialized, acc.State())

	_, err := acc.Sobel(stepEdgeRGBA(4, 4), 3)
	assert.ErrorIs(t, err, core.ErrBackendNotReady)
	_, err = acc.Canny(stepEdgeRGBA(4, 4), 50, 150)
	assert.ErrorIs(t, err, core.ErrBackendNotReady)
}

func TestMatConversionRejectsBadBuffers(t *testing.T) {
	_, err := rgbaToMat(core.NewGray(2, 2))
	assert.ErrorIs(t, err, core.ErrInvalidDimensions)

	_, err = rgbaToMat(&core.Buffer{Width: 2, Height: 2, Channels: 4, Pix: make([]uint8, 3)})
	assert.ErrorIs(t, err, core.ErrInvalidDimensions)

	acc := NewAccelerated(logrus.New())
	_, err = acc.toGrayMat(core.NewGray(2, 2))
	assert.ErrorIs(t, err, core.ErrInvalidDimensions)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}

// acceleratedOrSkip initializes the accelerated backend and skips the test
// if the native library does not come up.
func acceleratedOrSkip(t *testing.T) *Accelerated {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	acc := NewAccelerated(logger)
	acc.Init(context.Background())

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		switch acc.State() {
		case StateReady:
			return acc
		case StateFailed:
			t.Skip("accelerated backend failed to initialize")
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Skip("accelerated backend did not become ready in time")
	return nil
}

// maxPixelDelta returns the largest per-pixel intensity difference between
// two RGBA buffers, red channel only (outputs are gray-replicated).
func maxPixelDelta(a, b *core.Buffer) int {
	max := 0
	for i := 0; i < len(a.Pix); i += 4 {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func TestBackendEquivalenceSobel(t *testing.T) {
	acc := acceleratedOrSkip(t)
	ref := NewReference()
	frame := stepEdgeRGBA(32, 32)

	refOut, err := ref.Sobel(frame, 3)
	require.NoError(t, err)
	accOut, err := acc.Sobel(frame, 3)
	require.NoError(t, err)

	assert.LessOrEqual(t, maxPixelDelta(refOut, accOut), 2,
		"sobel outputs must agree within 2 intensity levels")
}

func TestBackendEquivalenceGrayscale(t *testing.T) {
	acc := acceleratedOrSkip(t)
	ref := NewReference()

	frame := core.NewRGBA(16, 16)
	for i := range frame.Pix {
		frame.Pix[i] = uint8((i*31 + 7) % 256)
	}
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 255
	}

	refOut, err := ref.Grayscale(frame)
	require.NoError(t, err)
	accOut, err := acc.Grayscale(frame)
	require.NoError(t, err)

	assert.LessOrEqual(t, maxPixelDelta(refOut, accOut), 1,
		"both backends pin BT.601 weights")
}

func TestBackendEquivalenceCanny(t *testing.T) {
	acc := acceleratedOrSkip(t)
	ref := NewReference()
	frame := stepEdgeRGBA(32, 32)

	refOut, err := ref.Canny(frame, 50, 150)
	require.NoError(t, err)
	accOut, err := acc.Canny(frame, 50, 150)
	require.NoError(t, err)

	// binary outputs: compare the fraction of disagreeing pixels instead
	// of per-pixel deltas, edge positions may differ by one pixel
	disagree := 0
	total := len(refOut.Pix) / 4
	for i := 0; i < len(refOut.Pix); i += 4 {
		if refOut.Pix[i] != accOut.Pix[i] {
			disagree++
		}
	}
	assert.LessOrEqual(t, disagree, total/10,
		"canny edge maps must agree on at least 90%% of pixels")
}

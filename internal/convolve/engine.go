// Convolution engine with replicate-edge border handling
package convolve

import (
	"fmt"
	"math"

	"realtime-edge-processing/internal/core"
)

// Apply convolves a single-channel buffer with a kernel and returns the
// float-valued output plane, same size as the input. Pixels whose kernel
// window falls outside the buffer use replicate-edge extension: the nearest
// valid pixel is repeated, so border output depends only on in-bounds data.
// The returned plane comes from the plane pool; callers processing frames in
// a loop should hand it back with ReleasePlane.
func Apply(gray *core.Buffer, k Kernel) ([]float64, error) {
	if err := gray.Validate(); err != nil {
		return nil, err
	}
	if gray.Channels != core.ChannelsGray {
		return nil, fmt.Errorf("%w: convolution requires a single-channel buffer",
			core.ErrInvalidDimensions)
	}
	if k.weights == nil {
		return nil, fmt.Errorf("%w: zero kernel", core.ErrInvalidKernel)
	}

	w, h := gray.Width, gray.Height
	kRows, kCols := k.Size()
	cy, cx := kRows/2, kCols/2

	out := NewPlane(w * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for ky := 0; ky < kRows; ky++ {
				sy := clampIndex(y+ky-cy, h)
				for kx := 0; kx < kCols; kx++ {
					sx := clampIndex(x+kx-cx, w)
					sum += k.At(ky, kx) * float64(gray.Pix[sy*w+sx])
				}
			}
			out[y*w+x] = sum
		}
	}
	return out, nil
}

// ApplySeparable convolves with a separable kernel as two 1-D passes,
// rows first then columns. The intermediate plane stays in float64 so the
// result matches the equivalent 2-D convolution within floating-point
// tolerance.
func ApplySeparable(gray *core.Buffer, row, col []float64) ([]float64, error) {
	if err := gray.Validate(); err != nil {
		return nil, err
	}
	if gray.Channels != core.ChannelsGray {
		return nil, fmt.Errorf("%w: convolution requires a single-channel buffer",
			core.ErrInvalidDimensions)
	}
	if len(row)%2 == 0 || len(col)%2 == 0 || len(row) == 0 || len(col) == 0 {
		return nil, fmt.Errorf("%w: separable vectors must have odd length",
			core.ErrInvalidKernel)
	}

	w, h := gray.Width, gray.Height
	rc, cc := len(row)/2, len(col)/2

	horiz := NewPlane(w * h)
	defer ReleasePlane(horiz)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for i, cv := range row {
				sx := clampIndex(x+i-rc, w)
				sum += cv * float64(gray.Pix[y*w+sx])
			}
			horiz[y*w+x] = sum
		}
	}

	out := NewPlane(w * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for i, cv := range col {
				sy := clampIndex(y+i-cc, h)
				sum += cv * horiz[sy*w+x]
			}
			out[y*w+x] = sum
		}
	}
	return out, nil
}

// ClampPlane rounds a float plane into a fresh 8-bit grayscale buffer,
// clamping to [0, 255].
func ClampPlane(plane []float64, width, height int) *core.Buffer {
	gray := core.NewGray(width, height)
	for i, v := range plane {
		gray.Pix[i] = ClampUint8(v)
	}
	return gray
}

// ClampUint8 rounds and clamps a single sample to [0, 255].
func ClampUint8(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

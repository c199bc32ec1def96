package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-processing/internal/core"
)

// stepEdgeRGBA builds a frame whose left half is black and right half white.
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

func TestAllOperatorsPreserveDimensions(t *testing.T) {
	frame := stepEdgeRGBA(12, 9)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			op, ok := Get(name)
			require.True(t, ok)

			out, err := op.Apply(frame, op.DefaultParams())
			require.NoError(t, err)
			assert.Equal(t, frame.Width, out.Width)
			assert.Equal(t, frame.Height, out.Height)
			assert.Equal(t, core.ChannelsRGBA, out.Channels)
			require.NoError(t, out.Validate())
		})
	}
}

func TestAllOperatorsOnUniformBlackFrame(t *testing.T) {
	frame := core.NewRGBA(4, 4)
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 255
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			out, err := Apply(name, frame, nil)
			require.NoError(t, err)
			for i := 0; i < len(out.Pix); i += 4 {
				assert.Equal(t, uint8(0), out.Pix[i], "no edges in a uniform field")
				assert.Equal(t, uint8(0), out.Pix[i+1])
				assert.Equal(t, uint8(0), out.Pix[i+2])
			}
		})
	}
}

func TestSobelStepEdge(t *testing.T) {
	frame := stepEdgeRGBA(4, 4)
	out, err := Apply("sobel", frame, nil)
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := out.Pix[(y*4+x)*4]
			if x == 1 || x == 2 {
				assert.Equal(t, uint8(255), v, "boundary column (%d,%d)", x, y)
			} else {
				assert.Equal(t, uint8(0), v, "flat region (%d,%d)", x, y)
			}
		}
	}
}

func TestSobelContinuousVsPrewittBinarized(t *testing.T) {
	frame := stepEdgeRGBA(8, 8)

	sobelOut, err := Apply("sobel", frame, nil)
	require.NoError(t, err)
	prewittOut, err := Apply("prewitt", frame, map[string]interface{}{
		ParamThreshold: 100.0,
	})
	require.NoError(t, err)

	// Prewitt output holds only 0 and 255; Sobel may hold anything.
	for i := 0; i < len(prewittOut.Pix); i += 4 {
		v := prewittOut.Pix[i]
		assert.True(t, v == 0 || v == 255, "prewitt must binarize, got %d", v)
	}
	assert.Equal(t, sobelOut.Width, prewittOut.Width)
}

func TestPrewittThresholdBoundary(t *testing.T) {
	frame := stepEdgeRGBA(4, 4)

	// magnitude at the boundary is 0.5*765 = 382.5, clamped comparison is
	// against the raw magnitude: threshold 255 still fires there.
	out, err := Apply("prewitt", frame, map[string]interface{}{ParamThreshold: 255.0})
	require.NoError(t, err)
	assert.Equal(t, uint8(255), out.Pix[(1*4+1)*4])
	assert.Equal(t, uint8(0), out.Pix[0])
}

func TestRobertsDetectsDiagonal(t *testing.T) {
	frame := core.NewRGBA(4, 4)
	// single bright pixel, the cross gradient fires around it
	i := (1*4 + 1) * 4
	frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2], frame.Pix[i+3] = 255, 255, 255, 255

	out, err := Apply("roberts", frame, map[string]interface{}{ParamThreshold: 50.0})
	require.NoError(t, err)

	assert.Equal(t, uint8(255), out.Pix[(0*4+0)*4], "diagonal neighbor above-left")
	assert.Equal(t, uint8(255), out.Pix[(1*4+1)*4], "the pixel itself")
	assert.Equal(t, uint8(0), out.Pix[(3*4+3)*4], "far corner stays dark")
}

func TestGaussianRadiusZeroIsIdentity(t *testing.T) {
	frame := stepEdgeRGBA(6, 6)
	gray, err := core.ToGrayscale(frame)
	require.NoError(t, err)
	want, err := core.GrayToRGBA(gray)
	require.NoError(t, err)

	out, err := Apply("gaussian", frame, map[string]interface{}{ParamBlurRadius: 0.0})
	require.NoError(t, err)
	assert.Equal(t, want.Pix, out.Pix)
}

func TestGaussianBlurSmoothsStep(t *testing.T) {
	frame := stepEdgeRGBA(8, 8)
	out, err := Apply("gaussian", frame, map[string]interface{}{ParamBlurRadius: 2.0})
	require.NoError(t, err)

	// the hard 0/255 boundary must become a ramp
	mid := out.Pix[(4*8+3)*4]
	assert.Greater(t, mid, uint8(0))
	assert.Less(t, mid, uint8(255))
}

func TestLaplacianRespondsToContrast(t *testing.T) {
	frame := stepEdgeRGBA(8, 8)
	out, err := Apply("laplacian", frame, nil)
	require.NoError(t, err)

	boundary := out.Pix[(4*8+3)*4]
	flat := out.Pix[(4*8+0)*4]
	assert.Greater(t, boundary, flat, "second derivative peaks at the boundary")
}

func TestApplyUnknownOperator(t *testing.T) {
	_, err := Apply("scharr", core.NewRGBA(2, 2), nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedOperator)
}

func TestValidateParameters(t *testing.T) {
	assert.NoError(t, ValidateParameters("sobel", map[string]interface{}{
		ParamKernelSize: 5.0,
	}))
	assert.ErrorIs(t, ValidateParameters("sobel", map[string]interface{}{
		ParamKernelSize: 4.0,
	}), core.ErrInvalidKernel)
	assert.Error(t, ValidateParameters("prewitt", map[string]interface{}{
		ParamThreshold: 300.0,
	}))
	assert.ErrorIs(t, ValidateParameters("nope", nil), core.ErrUnsupportedOperator)
}

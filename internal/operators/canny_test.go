package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-processing/internal/core"
)

func TestCannyThresholdValidation(t *testing.T) {
	frame := core.NewRGBA(4, 4)

	cases := []struct {
		name    string
		low     float64
		high    float64
		wantErr bool
	}{
		{"valid", 50, 150, false},
		{"inverted", 150, 50, true},
		{"equal must fail", 100, 100, true},
		// magnitudes are non-negative, so a negative low acts like zero and
		// must not be rejected while high still exceeds it
		{"negative low accepted", -5, 100, false},
		{"both negative inverted", -1, -10, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := map[string]interface{}{
				ParamLowThreshold:  tc.low,
				ParamHighThreshold: tc.high,
			}
			_, err := Apply("canny", frame, params)
			if tc.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidThresholds)
			} else {
				assert.NoError(t, err)
			}
			verr := ValidateParameters("canny", params)
			if tc.wantErr {
				assert.ErrorIs(t, verr, core.ErrInvalidThresholds)
			} else {
				assert.NoError(t, verr)
			}
		})
	}
}

func TestQuantizeDirection(t *testing.T) {
	cases := []struct {
		deg  float64
		want uint8
	}{
		{0, sectorHorizontal},
		{10, sectorHorizontal},
		{-170, sectorHorizontal},
		{45, sectorDiagonal},
		{30, sectorDiagonal},
		{90, sectorVertical},
		{-90, sectorVertical},
		{135, sectorAntiDiagonal},
		{-45, sectorAntiDiagonal},
		{170, sectorHorizontal},
	}
	for _, tc := range cases {
		got := quantizeDirection(tc.deg * 3.14159265358979 / 180)
		assert.Equal(t, tc.want, got, "angle %v", tc.deg)
	}
}

func TestNonMaxSuppressionThinsHorizontalRidge(t *testing.T) {
	// A vertical edge: gradient points horizontally, column 2 holds the
	// ridge. Columns 1 and 3 carry weaker responses that must vanish.
	w, h := 5, 5
	field := &gradientField{
		width:     w,
		height:    h,
		magnitude: make([]float64, w*h),
		sector:    make([]uint8, w*h),
	}
	for y := 0; y < h; y++ {
		field.magnitude[y*w+1] = 50
		field.magnitude[y*w+2] = 100
		field.magnitude[y*w+3] = 50
	}

	out := nonMaxSuppression(field)
	for y := 1; y < h-1; y++ {
		assert.Equal(t, 100.0, out[y*w+2], "ridge survives at row %d", y)
		assert.Equal(t, 0.0, out[y*w+1], "flank suppressed at row %d", y)
		assert.Equal(t, 0.0, out[y*w+3], "flank suppressed at row %d", y)
	}
	// border rows have no valid neighbor pair
	for x := 0; x < w; x++ {
		assert.Equal(t, 0.0, out[x])
		assert.Equal(t, 0.0, out[(h-1)*w+x])
	}
}

func TestHysteresisPromotionAndSuppression(t *testing.T) {
	// 5x5 synthetic magnitude plane, low=40 high=120:
	//   (0,0) strong seed
	//   (1,1) and (2,2) candidates chained diagonally to the seed
	//   (4,4) isolated candidate with no strong connection
	w, h := 5, 5
	mag := make([]float64, w*h)
	mag[0*w+0] = 200 // strong
	mag[1*w+1] = 60  // candidate, touches strong
	mag[2*w+2] = 60  // candidate, reachable only through (1,1)
	mag[4*w+4] = 60  // candidate, isolated
	mag[4*w+0] = 30  // below low, never an edge

	edges := hysteresis(mag, w, h, 40, 120)

	assert.Equal(t, uint8(255), edges.Pix[0*w+0], "strong seed")
	assert.Equal(t, uint8(255), edges.Pix[1*w+1], "directly connected candidate")
	assert.Equal(t, uint8(255), edges.Pix[2*w+2], "transitively connected candidate")
	assert.Equal(t, uint8(0), edges.Pix[4*w+4], "isolated candidate suppressed")
	assert.Equal(t, uint8(0), edges.Pix[4*w+0], "sub-threshold pixel suppressed")

	// nothing else may light up
	lit := 0
	for _, v := range edges.Pix {
		if v == 255 {
			lit++
		}
	}
	assert.Equal(t, 3, lit)
}

func TestHysteresisCandidateAtHighBoundaryIsStrong(t *testing.T) {
	mag := []float64{120, 0, 0, 0}
	edges := hysteresis(mag, 2, 2, 40, 120)
	assert.Equal(t, uint8(255), edges.Pix[0], "magnitude == high counts as strong")
}

func TestCannyStepEdgeEndToEnd(t *testing.T) {
	frame := stepEdgeRGBA(8, 8)
	out, err := Apply("canny", frame, map[string]interface{}{
		ParamLowThreshold:  20.0,
		ParamHighThreshold: 80.0,
	})
	require.NoError(t, err)

	// every interior row carries an edge pixel near the boundary columns
	for y := 1; y < 7; y++ {
		found := false
		for x := 2; x <= 5; x++ {
			if out.Pix[(y*8+x)*4] == 255 {
				found = true
			}
		}
		assert.True(t, found, "row %d has no edge response", y)
	}
	// the flat halves stay dark
	for y := 0; y < 8; y++ {
		assert.Equal(t, uint8(0), out.Pix[(y*8+0)*4], "left flat region row %d", y)
		assert.Equal(t, uint8(0), out.Pix[(y*8+7)*4], "right flat region row %d", y)
	}
}

func TestCannyUniformFrameHasNoEdges(t *testing.T) {
	frame := core.NewRGBA(6, 6)
	for i := range frame.Pix {
		frame.Pix[i] = 128
	}
	out, err := Apply("canny", frame, nil)
	require.NoError(t, err)
	for i := 0; i < len(out.Pix); i += 4 {
		assert.Equal(t, uint8(0), out.Pix[i])
	}
}

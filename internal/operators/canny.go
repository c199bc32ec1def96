// Canny multi-stage edge detector
package operators

import (
	"fmt"
	"math"

	"realtime-edge-processing/internal/convolve"
	"realtime-edge-processing/internal/core"
)

// Canny runs the staged detector: grayscale + fixed 3x3 blur, Sobel
// gradients with Euclidean magnitude and quantized direction, non-maximum
// suppression, then hysteresis thresholding with 8-connected promotion.
// Each stage consumes the previous stage's complete output; this is a batch
// pipeline, not a streaming one.
type Canny struct{}

// NewCanny creates the Canny detector.
func NewCanny() *Canny {
	return &Canny{}
}

// Gradient direction sectors used by non-maximum suppression.
const (
	sectorHorizontal = iota // 0 degrees
	sectorDiagonal          // 45 degrees
	sectorVertical          // 90 degrees
	sectorAntiDiagonal      // 135 degrees
)

// gradientField holds the per-pixel gradient magnitude and its quantized
// direction sector. It never escapes the detector.
type gradientField struct {
	width     int
	height    int
	magnitude []float64
	sector    []uint8
	sectors   *core.Buffer // pooled backing for sector, nil in fixtures
}

// release hands the field's scratch planes back to their pools.
func (f *gradientField) release() {
	convolve.ReleasePlane(f.magnitude)
	scratch.Put(f.sectors)
	f.magnitude, f.sector, f.sectors = nil, nil, nil
}

func (c *Canny) Apply(input *core.Buffer, params map[string]interface{}) (*core.Buffer, error) {
	low := floatParam(params, ParamLowThreshold, 50)
	high := floatParam(params, ParamHighThreshold, 150)
	if err := validateThresholds(low, high); err != nil {
		return nil, err
	}

	// Stage 1: grayscale + fixed 3x3 noise suppression.
	gray, err := grayWithBlur(input, 1)
	if err != nil {
		return nil, err
	}

	// Stage 2: gradient field.
	field, err := computeGradient(gray)
	scratch.Put(gray)
	if err != nil {
		return nil, err
	}

	// Stage 3: thin ridges to local maxima.
	suppressed := nonMaxSuppression(field)
	field.release()

	// Stages 4-5: hysteresis classification and emission.
	edges := hysteresis(suppressed, field.width, field.height, low, high)
	convolve.ReleasePlane(suppressed)
	return emitGray(edges)
}

// validateThresholds rejects threshold pairs where high does not exceed
// low, and nothing else. Magnitudes are non-negative, so a negative low
// simply behaves like zero.
func validateThresholds(low, high float64) error {
	if high <= low {
		return fmt.Errorf("%w: high %.1f must exceed low %.1f",
			core.ErrInvalidThresholds, high, low)
	}
	return nil
}

// computeGradient applies the 3x3 Sobel pair and records the Euclidean
// magnitude sqrt(Gx^2+Gy^2) with the atan2 direction quantized to four
// sectors. Note the simple Sobel operator uses the 0.5|Gx|+0.5|Gy| shortcut
// instead; the detector needs the true norm for direction-aware thinning.
func computeGradient(gray *core.Buffer) (*gradientField, error) {
	kx, err := convolve.SobelX(3)
	if err != nil {
		return nil, err
	}
	ky, err := convolve.SobelY(3)
	if err != nil {
		return nil, err
	}

	gx, err := convolve.Apply(gray, kx)
	if err != nil {
		return nil, err
	}
	gy, err := convolve.Apply(gray, ky)
	if err != nil {
		convolve.ReleasePlane(gx)
		return nil, err
	}

	// the magnitude overwrites gx in place once both derivatives are read
	sectors := scratch.GetGray(gray.Width, gray.Height)
	field := &gradientField{
		width:     gray.Width,
		height:    gray.Height,
		magnitude: gx,
		sector:    sectors.Pix,
		sectors:   sectors,
	}
	for i := range gx {
		field.sector[i] = quantizeDirection(math.Atan2(gy[i], gx[i]))
		field.magnitude[i] = math.Hypot(gx[i], gy[i])
	}
	convolve.ReleasePlane(gy)
	return field, nil
}

// quantizeDirection maps an atan2 angle to the nearest of the four edge
// orientations 0, 45, 90 and 135 degrees.
func quantizeDirection(angle float64) uint8 {
	deg := angle * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return sectorHorizontal
	case deg < 67.5:
		return sectorDiagonal
	case deg < 112.5:
		return sectorVertical
	default:
		return sectorAntiDiagonal
	}
}

// nonMaxSuppression keeps a magnitude only where it is a local maximum
// along its quantized gradient direction. Pixels on the image border have
// no valid neighbor pair and are suppressed outright.
func nonMaxSuppression(field *gradientField) []float64 {
	w, h := field.width, field.height
	out := convolve.NewPlane(w * h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			mag := field.magnitude[i]

			var a, b float64
			switch field.sector[i] {
			case sectorHorizontal:
				a, b = field.magnitude[i-1], field.magnitude[i+1]
			case sectorDiagonal:
				a, b = field.magnitude[i-w-1], field.magnitude[i+w+1]
			case sectorVertical:
				a, b = field.magnitude[i-w], field.magnitude[i+w]
			default: // sectorAntiDiagonal
				a, b = field.magnitude[i-w+1], field.magnitude[i+w-1]
			}

			if mag >= a && mag >= b {
				out[i] = mag
			}
		}
	}
	return out
}

// hysteresis classifies the thinned magnitudes: strong pixels (>= high)
// seed a BFS over 8-connected candidate pixels (>= low, < high); reached
// candidates become edges, the rest are suppressed.
func hysteresis(magnitude []float64, width, height int, low, high float64) *core.Buffer {
	edges := scratch.GetGray(width, height)
	candidate := scratch.GetGray(width, height)
	queue := make([]int, 0, width*height/8)

	for i, mag := range magnitude {
		switch {
		case mag >= high:
			edges.Pix[i] = 255
			queue = append(queue, i)
		case mag >= low:
			candidate.Pix[i] = 1
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if candidate.Pix[n] != 0 && edges.Pix[n] == 0 {
					edges.Pix[n] = 255
					queue = append(queue, n)
				}
			}
		}
	}
	scratch.Put(candidate)
	return edges
}

func (c *Canny) Name() string { return "canny" }

func (c *Canny) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		ParamLowThreshold:  50.0,
		ParamHighThreshold: 150.0,
	}
}

func (c *Canny) Validate(params map[string]interface{}) error {
	low := floatParam(params, ParamLowThreshold, 50)
	high := floatParam(params, ParamHighThreshold, 150)
	return validateThresholds(low, high)
}

func (c *Canny) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        ParamLowThreshold,
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     50.0,
			Description: "Hysteresis lower bound; weaker responses are discarded",
		},
		{
			Name:        ParamHighThreshold,
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     150.0,
			Description: "Hysteresis upper bound; stronger responses seed edges",
		},
	}
}

// Prewitt gradient operator
package operators

import (
	"fmt"
	"math"

	"realtime-edge-processing/internal/convolve"
	"realtime-edge-processing/internal/core"
)

// Prewitt mirrors the Sobel structure with uniform-weight gradient kernels,
// but binarizes: magnitude at or above the threshold emits 255, everything
// else 0. Sobel stays continuous, Prewitt and Roberts are hard-thresholded.
type Prewitt struct{}

// NewPrewitt creates the Prewitt operator.
func NewPrewitt() *Prewitt {
	return &Prewitt{}
}

func (p *Prewitt) Apply(input *core.Buffer, params map[string]interface{}) (*core.Buffer, error) {
	threshold := floatParam(params, ParamThreshold, 100)
	blurRadius := intParam(params, ParamBlurRadius, 0)

	gray, err := grayWithBlur(input, blurRadius)
	if err != nil {
		return nil, err
	}

	gx, err := convolve.Apply(gray, convolve.PrewittX())
	if err != nil {
		scratch.Put(gray)
		return nil, err
	}
	gy, err := convolve.Apply(gray, convolve.PrewittY())
	if err != nil {
		convolve.ReleasePlane(gx)
		scratch.Put(gray)
		return nil, err
	}

	// both gradient planes are complete, so the luma plane can be reused
	// for the binarized output
	for i := range gray.Pix {
		mag := 0.5*math.Abs(gx[i]) + 0.5*math.Abs(gy[i])
		if mag >= threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	convolve.ReleasePlane(gx)
	convolve.ReleasePlane(gy)
	return emitGray(gray)
}

func (p *Prewitt) Name() string { return "prewitt" }

func (p *Prewitt) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		ParamThreshold:  100.0,
		ParamBlurRadius: 0.0,
	}
}

func (p *Prewitt) Validate(params map[string]interface{}) error {
	return validateBinarizationParams(params)
}

// validateBinarizationParams checks threshold/blur for the binarizing
// gradient operators.
func validateBinarizationParams(params map[string]interface{}) error {
	if th := floatParam(params, ParamThreshold, 100); th < 0 || th > 255 {
		return fmt.Errorf("threshold must be between 0 and 255, got %v", th)
	}
	if r := intParam(params, ParamBlurRadius, 0); r < 0 || r > 32 {
		return fmt.Errorf("%w: blur_radius must be between 0 and 32", core.ErrInvalidKernel)
	}
	return nil
}

func (p *Prewitt) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        ParamThreshold,
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     100.0,
			Description: "Binarization cutoff for the gradient magnitude",
		},
		{
			Name:        ParamBlurRadius,
			Type:        "int",
			Min:         0.0,
			Max:         32.0,
			Default:     0.0,
			Description: "Gaussian pre-blur radius (0 disables)",
		},
	}
}

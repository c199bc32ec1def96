// Standalone Gaussian blur operator
package operators

import (
	"fmt"

	"realtime-edge-processing/internal/core"
)

// Gaussian applies a separable normalized Gaussian blur of the given
// radius. Radius 0 is the identity transform over the grayscale-converted
// input.
type Gaussian struct{}

// NewGaussian creates the Gaussian blur operator.
func NewGaussian() *Gaussian {
	return &Gaussian{}
}

func (g *Gaussian) Apply(input *core.Buffer, params map[string]interface{}) (*core.Buffer, error) {
	radius := intParam(params, ParamBlurRadius, 1)

	gray, err := grayWithBlur(input, radius)
	if err != nil {
		return nil, err
	}
	return emitGray(gray)
}

func (g *Gaussian) Name() string { return "gaussian" }

func (g *Gaussian) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		ParamBlurRadius: 1.0,
	}
}

func (g *Gaussian) Validate(params map[string]interface{}) error {
	if r := intParam(params, ParamBlurRadius, 1); r < 0 || r > 32 {
		return fmt.Errorf("%w: blur_radius must be between 0 and 32", core.ErrInvalidKernel)
	}
	return nil
}

func (g *Gaussian) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        ParamBlurRadius,
			Type:        "int",
			Min:         0.0,
			Max:         32.0,
			Default:     1.0,
			Description: "Blur radius; kernel aperture is 2*radius+1",
		},
	}
}

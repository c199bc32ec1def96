// Laplacian second-derivative operator
package operators

import (
	"math"

	"realtime-edge-processing/internal/convolve"
	"realtime-edge-processing/internal/core"
)

// Laplacian applies a fixed 3x3 Gaussian blur followed by the 4-neighbor
// second-derivative kernel, emitting the absolute response.
type Laplacian struct{}

// NewLaplacian creates the Laplacian operator.
func NewLaplacian() *Laplacian {
	return &Laplacian{}
}

func (l *Laplacian) Apply(input *core.Buffer, params map[string]interface{}) (*core.Buffer, error) {
	gray, err := grayWithBlur(input, 1)
	if err != nil {
		return nil, err
	}

	plane, err := convolve.Apply(gray, convolve.Laplacian3())
	if err != nil {
		scratch.Put(gray)
		return nil, err
	}
	for i, v := range plane {
		gray.Pix[i] = convolve.ClampUint8(math.Abs(v))
	}
	convolve.ReleasePlane(plane)
	return emitGray(gray)
}

func (l *Laplacian) Name() string { return "laplacian" }

func (l *Laplacian) DefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (l *Laplacian) Validate(params map[string]interface{}) error {
	return nil
}

func (l *Laplacian) ParameterInfo() []ParameterInfo {
	return nil
}

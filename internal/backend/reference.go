// Pure-Go reference backend
package backend

import (
	"realtime-edge-processing/internal/core"
	"realtime-edge-processing/internal/operators"
)

// Reference executes every operation through the pure-Go operator
// implementations. It is always available and always ready, and serves as
// the fallback while the accelerated backend initializes.
type Reference struct{}

// NewReference creates the reference backend.
func NewReference() *Reference {
	return &Reference{}
}

func (r *Reference) Name() string { return "reference" }

func (r *Reference) State() State { return StateReady }

func (r *Reference) Grayscale(in *core.Buffer) (*core.Buffer, error) {
	return operators.Grayscale(in)
}

func (r *Reference) GaussianBlur(in *core.Buffer, radius int) (*core.Buffer, error) {
	return operators.Apply("gaussian", in, map[string]interface{}{
		operators.ParamBlurRadius: float64(radius),
	})
}

func (r *Reference) Sobel(in *core.Buffer, kernelSize int) (*core.Buffer, error) {
	return operators.Apply("sobel", in, map[string]interface{}{
		operators.ParamKernelSize: float64(kernelSize),
		operators.ParamBlurRadius: 0.0,
	})
}

func (r *Reference) Canny(in *core.Buffer, low, high float64) (*core.Buffer, error) {
	return operators.Apply("canny", in, map[string]interface{}{
		operators.ParamLowThreshold:  low,
		operators.ParamHighThreshold: high,
	})
}

func (r *Reference) Laplacian(in *core.Buffer, kernelSize int) (*core.Buffer, error) {
	return operators.Apply("laplacian", in, nil)
}

// Roberts cross-gradient operator
package operators

import (
	"math"

	"realtime-edge-processing/internal/core"
)

// Roberts computes the 2x2 diagonal-difference cross gradient. The two
// diagonals are taken over adjacent pixel pairs rather than an odd padded
// window, so the kernels bypass the convolution engine and its odd-size
// rule. Thresholding matches Prewitt: at or above emits 255, else 0.
type Roberts struct{}

// NewRoberts creates the Roberts operator.
func NewRoberts() *Roberts {
	return &Roberts{}
}

func (r *Roberts) Apply(input *core.Buffer, params map[string]interface{}) (*core.Buffer, error) {
	threshold := floatParam(params, ParamThreshold, 100)

	gray, err := grayFrom(input)
	if err != nil {
		return nil, err
	}

	w, h := gray.Width, gray.Height
	at := func(x, y int) float64 {
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return float64(gray.Pix[y*w+x])
	}

	// the diagonals read one pixel ahead, so the output needs its own plane
	out := scratch.GetGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d1 := at(x+1, y+1) - at(x, y)
			d2 := at(x+1, y) - at(x, y+1)
			mag := 0.5*math.Abs(d1) + 0.5*math.Abs(d2)
			if mag >= threshold {
				out.Pix[y*w+x] = 255
			}
		}
	}
	scratch.Put(gray)
	return emitGray(out)
}

func (r *Roberts) Name() string { return "roberts" }

func (r *Roberts) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		ParamThreshold: 100.0,
	}
}

func (r *Roberts) Validate(params map[string]interface{}) error {
	return validateBinarizationParams(params)
}

func (r *Roberts) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        ParamThreshold,
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     100.0,
			Description: "Binarization cutoff for the cross-gradient magnitude",
		},
	}
}

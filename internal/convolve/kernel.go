// Convolution kernel construction
package convolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"realtime-edge-processing/internal/core"
)

// Kernel is an immutable convolution weight matrix. Both dimensions must be
// odd so the kernel is symmetric around a center sample.
type Kernel struct {
	weights *mat.Dense
}

// New builds a kernel from row-major coefficients. Even or degenerate
// dimensions fail with ErrInvalidKernel.
func New(coeffs [][]float64) (Kernel, error) {
	rows := len(coeffs)
	if rows <= 1 || rows%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: %d rows", core.ErrInvalidKernel, rows)
	}
	cols := len(coeffs[0])
	if cols <= 1 || cols%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: %d columns", core.ErrInvalidKernel, cols)
	}

	flat := make([]float64, 0, rows*cols)
	for _, row := range coeffs {
		if len(row) != cols {
			return Kernel{}, fmt.Errorf("%w: ragged rows", core.ErrInvalidKernel)
		}
		flat = append(flat, row...)
	}
	return Kernel{weights: mat.NewDense(rows, cols, flat)}, nil
}

// MustNew is New for statically known coefficient tables.
func MustNew(coeffs [][]float64) Kernel {
	k, err := New(coeffs)
	if err != nil {
		panic(err)
	}
	return k
}

// Size returns the kernel dimensions.
func (k Kernel) Size() (rows, cols int) {
	return k.weights.Dims()
}

// At returns the weight at the given row and column.
func (k Kernel) At(row, col int) float64 {
	return k.weights.At(row, col)
}

// pascalRow returns the binomial coefficient row of the given length,
// e.g. length 5 -> [1 4 6 4 1].
func pascalRow(length int) []float64 {
	row := make([]float64, length)
	row[0] = 1
	for i := 1; i < length; i++ {
		row[i] = row[i-1] * float64(length-i) / float64(i)
	}
	return row
}

// conv1d is a full discrete convolution of two coefficient vectors.
func conv1d(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

// sobelVectors returns the smoothing and first-derivative vectors whose
// outer product forms the extended Sobel kernel of the given aperture
// (3 -> [-1 0 1], 5 -> [-1 -2 0 2 1], 7 -> [-1 -4 -5 0 5 4 1]).
func sobelVectors(size int) (smooth, deriv []float64, err error) {
	if size != 3 && size != 5 && size != 7 {
		return nil, nil, fmt.Errorf("%w: unsupported aperture %d", core.ErrInvalidKernel, size)
	}
	smooth = pascalRow(size)
	deriv = conv1d(pascalRow(size-2), []float64{-1, 0, 1})
	return smooth, deriv, nil
}

// SobelX returns the horizontal-gradient Sobel kernel of the given aperture.
func SobelX(size int) (Kernel, error) {
	smooth, deriv, err := sobelVectors(size)
	if err != nil {
		return Kernel{}, err
	}
	return outerProduct(smooth, deriv), nil
}

// SobelY returns the vertical-gradient Sobel kernel of the given aperture.
func SobelY(size int) (Kernel, error) {
	smooth, deriv, err := sobelVectors(size)
	if err != nil {
		return Kernel{}, err
	}
	return outerProduct(deriv, smooth), nil
}

func outerProduct(col, row []float64) Kernel {
	w := mat.NewDense(len(col), len(row), nil)
	w.Outer(1, mat.NewVecDense(len(col), col), mat.NewVecDense(len(row), row))
	return Kernel{weights: w}
}

// PrewittX is the horizontal Prewitt gradient kernel (uniform-weight
// smoothing, unlike Sobel's Gaussian-weighted rows).
func PrewittX() Kernel {
	return MustNew([][]float64{
		{-1, 0, 1},
		{-1, 0, 1},
		{-1, 0, 1},
	})
}

// PrewittY is the vertical Prewitt gradient kernel.
func PrewittY() Kernel {
	return MustNew([][]float64{
		{-1, -1, -1},
		{0, 0, 0},
		{1, 1, 1},
	})
}

// Laplacian3 is the 3x3 second-derivative kernel.
func Laplacian3() Kernel {
	return MustNew([][]float64{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	})
}

// GaussianSigma derives a standard deviation from the kernel aperture using
// the OpenCV convention, keeping both backends on the same blur profile.
func GaussianSigma(size int) float64 {
	return 0.3*(float64(size-1)*0.5-1) + 0.8
}

// Gaussian1D returns the normalized 1-D Gaussian vector for the given
// radius (aperture 2*radius+1, coefficients sum to 1). Radius 0 yields the
// identity vector.
func Gaussian1D(radius int) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	size := 2*radius + 1
	sigma := GaussianSigma(size)

	coeffs := make([]float64, size)
	sum := 0.0
	for i := range coeffs {
		d := float64(i - radius)
		coeffs[i] = gaussian(d, sigma)
		sum += coeffs[i]
	}
	for i := range coeffs {
		coeffs[i] /= sum
	}
	return coeffs
}

// Gaussian2D returns the full 2-D Gaussian kernel for the given radius,
// the outer product of the 1-D vector with itself.
func Gaussian2D(radius int) Kernel {
	v := Gaussian1D(radius)
	return outerProduct(v, v)
}

func gaussian(d, sigma float64) float64 {
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

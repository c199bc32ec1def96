// Float plane recycling for convolution outputs
package convolve

import "sync"

// planePool recycles the float64 scratch planes the convolution passes
// produce. Planes are reused across geometries by capacity, so a session
// mixing frame sizes does not fragment the pool.
var planePool = sync.Pool{
	New: func() interface{} { return new([]float64) },
}

// NewPlane returns a zeroed float plane of length n, reusing a recycled
// plane when one with enough capacity is available.
func NewPlane(n int) []float64 {
	p := planePool.Get().(*[]float64)
	if cap(*p) < n {
		*p = make([]float64, n)
	}
	s := (*p)[:n]
	for i := range s {
		s[i] = 0
	}
	return s
}

// ReleasePlane hands a plane back for reuse. The caller must not touch the
// plane afterwards.
func ReleasePlane(s []float64) {
	if s == nil {
		return
	}
	planePool.Put(&s)
}

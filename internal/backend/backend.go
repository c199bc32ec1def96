// Backend abstraction over the edge-detection capability set
package backend

import "realtime-edge-processing/internal/core"

// State tracks a backend's initialization lifecycle. The accelerated
// backend moves Uninitialized -> Initializing -> Ready or Failed; the
// reference backend is born Ready. The driver queries this synchronously
// instead of relying on exception-driven fallback.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the capability set both execution variants implement. Every
// method consumes one RGBA frame and returns a fresh RGBA buffer of the
// same dimensions. Implementations hold no per-frame state; a call owns its
// buffers exclusively.
//
// The roberts and prewitt operators are deliberately absent: they exist
// only on the reference path and the driver routes them there directly.
type Backend interface {
	Name() string
	State() State

	Grayscale(in *core.Buffer) (*core.Buffer, error)
	GaussianBlur(in *core.Buffer, radius int) (*core.Buffer, error)
	Sobel(in *core.Buffer, kernelSize int) (*core.Buffer, error)
	Canny(in *core.Buffer, low, high float64) (*core.Buffer, error)
	Laplacian(in *core.Buffer, kernelSize int) (*core.Buffer, error)
}

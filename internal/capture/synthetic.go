// Synthetic frame source for camera-less operation
package capture

import (
	"context"
	"sync/atomic"
	"time"

	"realtime-edge-processing/internal/core"
)

// Synthetic generates a deterministic moving test card: a horizontal
// intensity ramp with a bright vertical bar sweeping across it. Every
// operator produces visible structure on it, which makes it useful both for
// demos without a camera and for exercising the full pipeline in tests.
type Synthetic struct {
	width    int
	height   int
	interval time.Duration
	pool     *core.Pool
	frame    atomic.Uint64
	closed   atomic.Bool
}

// NewSynthetic creates a synthetic source with the given geometry and
// frame interval.
func NewSynthetic(width, height int, interval time.Duration) *Synthetic {
	return &Synthetic{
		width:    width,
		height:   height,
		interval: interval,
		pool:     core.NewPool(),
	}
}

func (s *Synthetic) Next(ctx context.Context) (*core.Buffer, error) {
	if s.closed.Load() {
		return nil, ErrSourceClosed
	}
	if s.interval > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.interval):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := s.frame.Add(1)
	barX := int(n) * 3 % s.width

	buf := s.pool.GetRGBA(s.width, s.height)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			v := uint8(x * 255 / s.width)
			if dx := x - barX; dx >= -2 && dx <= 2 {
				v = 255
			}
			i := (y*s.width + x) * 4
			buf.Pix[i] = v
			buf.Pix[i+1] = v
			buf.Pix[i+2] = v
			buf.Pix[i+3] = 255
		}
	}
	return buf, nil
}

func (s *Synthetic) Recycle(b *core.Buffer) {
	s.pool.Put(b)
}

func (s *Synthetic) Size() (int, int) {
	return s.width, s.height
}

func (s *Synthetic) Close() error {
	s.closed.Store(true)
	return nil
}

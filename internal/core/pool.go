// Reusable buffer pool for per-frame scratch allocations
package core

import "sync"

// poolClass identifies one buffer geometry inside a Pool.
type poolClass struct {
	width    int
	height   int
	channels int
}

// Pool recycles Buffers across the geometries it has seen. Each Get hands
// out a buffer owned exclusively by the caller until it is either Put back
// or handed off to the rendering collaborator; handed-off buffers re-enter
// the pool only if the embedding layer returns them.
type Pool struct {
	mu      sync.Mutex
	classes map[poolClass]*sync.Pool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{classes: make(map[poolClass]*sync.Pool)}
}

func (p *Pool) class(c poolClass) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.classes[c]
	if !ok {
		sp = &sync.Pool{
			New: func() interface{} {
				return &Buffer{
					Width:    c.width,
					Height:   c.height,
					Channels: c.channels,
					Pix:      make([]uint8, c.width*c.height*c.channels),
				}
			},
		}
		p.classes[c] = sp
	}
	return sp
}

// Get returns a zeroed buffer of the requested geometry.
func (p *Pool) Get(width, height, channels int) *Buffer {
	b := p.class(poolClass{width, height, channels}).Get().(*Buffer)
	for i := range b.Pix {
		b.Pix[i] = 0
	}
	return b
}

// GetGray returns a zeroed single-channel buffer.
func (p *Pool) GetGray(width, height int) *Buffer {
	return p.Get(width, height, ChannelsGray)
}

// GetRGBA returns a zeroed four-channel buffer.
func (p *Pool) GetRGBA(width, height int) *Buffer {
	return p.Get(width, height, ChannelsRGBA)
}

// Put returns a buffer to the pool for its geometry. Buffers that violate
// their own invariant are dropped rather than recycled.
func (p *Pool) Put(b *Buffer) {
	if b == nil || b.Validate() != nil {
		return
	}
	p.class(poolClass{b.Width, b.Height, b.Channels}).Put(b)
}

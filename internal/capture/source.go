// Frame source boundary
package capture

import (
	"context"
	"errors"

	"realtime-edge-processing/internal/core"
)

// ErrSourceClosed is returned by Next once the source has been closed.
var ErrSourceClosed = errors.New("frame source is closed")

// Source supplies RGBA frames at its own cadence. The returned buffer is
// owned exclusively by the caller; handing it back through Recycle lets the
// source reuse the allocation for a later frame. Sources own camera/device
// access and its errors; the processing core never touches a device.
type Source interface {
	// Next blocks until a frame is available or ctx is done.
	Next(ctx context.Context) (*core.Buffer, error)

	// Recycle returns a frame buffer for reuse. Optional; dropped buffers
	// are simply collected.
	Recycle(b *core.Buffer)

	// Size reports the fixed frame geometry.
	Size() (width, height int)

	Close() error
}

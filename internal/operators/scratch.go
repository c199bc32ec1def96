// Shared scratch buffer pool for the operators
package operators

import "realtime-edge-processing/internal/core"

// scratch recycles the grayscale planes and output frames the operators
// churn through. Every buffer handed out is owned exclusively by one call;
// output buffers leave the pool with the frame and come back only through
// Recycle.
var scratch = core.NewPool()

// Recycle returns an operator output buffer for reuse. Call it once the
// frame has been rendered or discarded; the buffer must not be touched
// afterwards.
func Recycle(b *core.Buffer) {
	scratch.Put(b)
}

// Grayscale converts a frame into a gray-replicated RGBA output drawn from
// the scratch pool. The reference backend serves its grayscale operation
// through it.
func Grayscale(input *core.Buffer) (*core.Buffer, error) {
	gray, err := grayFrom(input)
	if err != nil {
		return nil, err
	}
	return emitGray(gray)
}

// grayFrom converts a frame into a pooled grayscale plane.
func grayFrom(input *core.Buffer) (*core.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	gray := scratch.GetGray(input.Width, input.Height)
	if input.Channels == core.ChannelsGray {
		copy(gray.Pix, input.Pix)
		return gray, nil
	}
	if err := core.GrayscaleInto(input, gray); err != nil {
		scratch.Put(gray)
		return nil, err
	}
	return gray, nil
}

// emitGray replicates a pooled grayscale plane into a pooled RGBA output
// frame and recycles the plane. Ownership of the returned frame transfers
// to the caller.
func emitGray(gray *core.Buffer) (*core.Buffer, error) {
	rgba := scratch.GetRGBA(gray.Width, gray.Height)
	if err := core.ReplicateRGBA(gray, rgba); err != nil {
		scratch.Put(rgba)
		return nil, err
	}
	scratch.Put(gray)
	return rgba, nil
}

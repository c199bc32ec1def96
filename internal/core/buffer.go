// Core pixel buffer data structure shared by all backends
package core

import "fmt"

// Channel counts supported by Buffer.
const (
	ChannelsGray = 1
	ChannelsRGBA = 4
)

// BT.601 luma weights used for grayscale extraction. Pinned here so both
// backends and the tests agree on the exact conversion.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Buffer is a fixed-size rectangular grid of 8-bit samples. Channels is 1
// for grayscale/intensity planes and 4 for RGBA frames. Pix always holds
// exactly Width*Height*Channels samples.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewGray allocates a zeroed single-channel buffer.
func NewGray(width, height int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: ChannelsGray,
		Pix:      make([]uint8, width*height),
	}
}

// NewRGBA allocates a zeroed four-channel buffer.
func NewRGBA(width, height int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: ChannelsRGBA,
		Pix:      make([]uint8, width*height*ChannelsRGBA),
	}
}

// FromPix wraps an existing sample array in a Buffer, validating that its
// length matches the declared geometry.
func FromPix(width, height, channels int, pix []uint8) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if channels != ChannelsGray && channels != ChannelsRGBA {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidDimensions, channels)
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: have %d samples, want %d",
			ErrInvalidDimensions, len(pix), width*height*channels)
	}
	return &Buffer{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

// Validate checks the buffer invariant without allocating.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	if b.Channels != ChannelsGray && b.Channels != ChannelsRGBA {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidDimensions, b.Channels)
	}
	if len(b.Pix) != b.Width*b.Height*b.Channels {
		return fmt.Errorf("%w: have %d samples, want %d",
			ErrInvalidDimensions, len(b.Pix), b.Width*b.Height*b.Channels)
	}
	return nil
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Channels: b.Channels, Pix: pix}
}

// ToGrayscale converts an RGBA buffer to a single-channel intensity buffer
// using the BT.601 weights (0.299 R + 0.587 G + 0.114 B).
func ToGrayscale(rgba *Buffer) (*Buffer, error) {
	if err := rgba.Validate(); err != nil {
		return nil, err
	}
	if rgba.Channels == ChannelsGray {
		return rgba.Clone(), nil
	}

	gray := NewGray(rgba.Width, rgba.Height)
	if err := GrayscaleInto(rgba, gray); err != nil {
		return nil, err
	}
	return gray, nil
}

// GrayscaleInto writes the BT.601 conversion of an RGBA buffer into an
// existing single-channel buffer of the same geometry. Callers recycling
// scratch buffers use this instead of ToGrayscale.
func GrayscaleInto(rgba, dst *Buffer) error {
	if err := rgba.Validate(); err != nil {
		return err
	}
	if rgba.Channels != ChannelsRGBA || dst.Channels != ChannelsGray ||
		dst.Width != rgba.Width || dst.Height != rgba.Height {
		return fmt.Errorf("%w: grayscale conversion needs matching RGBA source and gray destination",
			ErrInvalidDimensions)
	}

	for i, j := 0, 0; i < len(rgba.Pix); i, j = i+4, j+1 {
		y := lumaR*float64(rgba.Pix[i]) +
			lumaG*float64(rgba.Pix[i+1]) +
			lumaB*float64(rgba.Pix[i+2])
		dst.Pix[j] = uint8(y + 0.5)
	}
	return nil
}

// GrayToRGBA replicates a single-channel buffer into an opaque RGBA buffer.
// Every operator's emit stage uses this.
func GrayToRGBA(gray *Buffer) (*Buffer, error) {
	if err := gray.Validate(); err != nil {
		return nil, err
	}
	if gray.Channels != ChannelsGray {
		return nil, fmt.Errorf("%w: expected single-channel input", ErrInvalidDimensions)
	}

	rgba := NewRGBA(gray.Width, gray.Height)
	if err := ReplicateRGBA(gray, rgba); err != nil {
		return nil, err
	}
	return rgba, nil
}

// ReplicateRGBA writes a single-channel buffer into an existing RGBA buffer
// of the same geometry, replicating intensity into R, G and B with an
// opaque alpha.
func ReplicateRGBA(gray, dst *Buffer) error {
	if err := gray.Validate(); err != nil {
		return err
	}
	if gray.Channels != ChannelsGray || dst.Channels != ChannelsRGBA ||
		dst.Width != gray.Width || dst.Height != gray.Height {
		return fmt.Errorf("%w: replication needs matching gray source and RGBA destination",
			ErrInvalidDimensions)
	}

	for j, v := range gray.Pix {
		i := j * 4
		dst.Pix[i] = v
		dst.Pix[i+1] = v
		dst.Pix[i+2] = v
		dst.Pix[i+3] = 255
	}
	return nil
}

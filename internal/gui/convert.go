// Buffer <-> image conversion helpers for display
package gui

import (
	"image"

	"golang.org/x/image/draw"

	"realtime-edge-processing/internal/core"
)

// toImage wraps an RGBA buffer in a Go image without copying. The buffer
// must stay untouched while the image is displayed.
func toImage(b *core.Buffer) *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Downscale resizes a frame so its width does not exceed maxWidth,
// preserving aspect ratio. Frames already small enough pass through
// untouched. Keeping the processing resolution bounded is what keeps the
// pipeline real-time on high-resolution cameras.
func Downscale(frame *core.Buffer, maxWidth int) *core.Buffer {
	if frame.Width <= maxWidth || frame.Channels != core.ChannelsRGBA {
		return frame
	}

	h := frame.Height * maxWidth / frame.Width
	if h < 1 {
		h = 1
	}
	dst := core.NewRGBA(maxWidth, h)
	draw.ApproxBiLinear.Scale(
		toImage(dst), image.Rect(0, 0, maxWidth, h),
		toImage(frame), image.Rect(0, 0, frame.Width, frame.Height),
		draw.Src, nil)
	return dst
}

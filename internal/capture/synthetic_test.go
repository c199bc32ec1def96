package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-processing/internal/core"
)

func TestSyntheticFrameGeometry(t *testing.T) {
	src := NewSynthetic(32, 24, 0)
	defer src.Close()

	w, h := src.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 24, h)

	frame, err := src.Next(context.Background())
	require.NoError(t, err)
	require.NoError(t, frame.Validate())
	assert.Equal(t, core.ChannelsRGBA, frame.Channels)
	assert.Equal(t, 32, frame.Width)
}

func TestSyntheticFramesMove(t *testing.T) {
	src := NewSynthetic(32, 8, 0)
	defer src.Close()

	a, err := src.Next(context.Background())
	require.NoError(t, err)
	aCopy := a.Clone()
	src.Recycle(a)

	b, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, aCopy.Pix, b.Pix, "the bar must sweep between frames")
}

func TestSyntheticHonorsContext(t *testing.T) {
	src := NewSynthetic(8, 8, time.Second)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntheticNextAfterCloseFails(t *testing.T) {
	src := NewSynthetic(8, 8, 0)

	_, err := src.Next(context.Background())
	require.NoError(t, err)

	require.NoError(t, src.Close())
	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestSyntheticFrameIsOpaque(t *testing.T) {
	src := NewSynthetic(8, 8, 0)
	defer src.Close()

	frame, err := src.Next(context.Background())
	require.NoError(t, err)
	for i := 3; i < len(frame.Pix); i += 4 {
		assert.Equal(t, uint8(255), frame.Pix[i])
	}
}

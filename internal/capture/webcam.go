// Webcam frame source backed by OpenCV video capture
package capture

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"realtime-edge-processing/internal/core"
)

// Webcam reads frames from a local capture device and converts them to the
// pipeline's RGBA buffer representation.
type Webcam struct {
	cam    *gocv.VideoCapture
	raw    gocv.Mat
	rgba   gocv.Mat
	width  int
	height int
	pool   *core.Pool
	logger *logrus.Entry
	closed atomic.Bool
}

// OpenWebcam opens the capture device with the given ID.
func OpenWebcam(deviceID int, logger *logrus.Logger) (*Webcam, error) {
	cam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("opening capture device %d: %w", deviceID, err)
	}

	width := int(cam.Get(gocv.VideoCaptureFrameWidth))
	height := int(cam.Get(gocv.VideoCaptureFrameHeight))
	if width <= 0 || height <= 0 {
		cam.Close()
		return nil, fmt.Errorf("capture device %d reports no frame geometry", deviceID)
	}

	logger.WithFields(logrus.Fields{
		"device": deviceID,
		"width":  width,
		"height": height,
	}).Info("Capture device opened")

	return &Webcam{
		cam:    cam,
		raw:    gocv.NewMat(),
		rgba:   gocv.NewMat(),
		width:  width,
		height: height,
		pool:   core.NewPool(),
		logger: logger.WithField("component", "webcam"),
	}, nil
}

func (w *Webcam) Next(ctx context.Context) (*core.Buffer, error) {
	if w.closed.Load() {
		return nil, ErrSourceClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !w.cam.Read(&w.raw) || w.raw.Empty() {
		return nil, fmt.Errorf("capture device returned no frame")
	}

	gocv.CvtColor(w.raw, &w.rgba, gocv.ColorBGRToRGBA)

	buf := w.pool.GetRGBA(w.width, w.height)
	copy(buf.Pix, w.rgba.ToBytes())
	return buf, nil
}

func (w *Webcam) Recycle(b *core.Buffer) {
	w.pool.Put(b)
}

func (w *Webcam) Size() (int, int) {
	return w.width, w.height
}

func (w *Webcam) Close() error {
	w.closed.Store(true)
	w.raw.Close()
	w.rgba.Close()
	return w.cam.Close()
}

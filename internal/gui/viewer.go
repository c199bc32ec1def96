// Live viewer window for the edge-detection pipeline
package gui

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"realtime-edge-processing/internal/capture"
	"realtime-edge-processing/internal/core"
	"realtime-edge-processing/internal/pipeline"
)

// processWidth caps the pipeline resolution; camera frames wider than this
// are downscaled before processing.
const processWidth = 640

// Viewer displays the processed stream and exposes the operator controls.
// It contains no detection logic: it only feeds frames to the driver and
// shows the buffers that come back.
type Viewer struct {
	app    fyne.App
	window fyne.Window
	logger *logrus.Entry

	driver *pipeline.Driver
	source capture.Source

	mu  sync.Mutex
	cfg pipeline.Config

	preview *canvas.Image
	status  *widget.Label

	// shown is the output buffer currently wrapped by the preview image.
	// Touched only on the UI thread.
	shown *core.Buffer
}

// NewViewer builds the viewer window over a driver and a frame source.
func NewViewer(app fyne.App, driver *pipeline.Driver, source capture.Source,
	cfg pipeline.Config, logger *logrus.Logger) *Viewer {

	v := &Viewer{
		app:    app,
		window: app.NewWindow("Edge Detection"),
		logger: logger.WithField("component", "viewer"),
		driver: driver,
		source: source,
		cfg:    cfg,
	}
	v.buildUI()
	return v
}

func (v *Viewer) buildUI() {
	placeholder := image.NewRGBA(image.Rect(0, 0, processWidth, processWidth*3/4))
	v.preview = canvas.NewImageFromImage(placeholder)
	v.preview.FillMode = canvas.ImageFillContain
	v.preview.ScaleMode = canvas.ImageScaleFastest

	v.status = widget.NewLabel("starting...")

	methodSelect := widget.NewSelect([]string{
		pipeline.MethodSobel, pipeline.MethodPrewitt, pipeline.MethodRoberts,
		pipeline.MethodLaplacian, pipeline.MethodCanny, pipeline.MethodGaussian,
		pipeline.MethodGrayscale,
	}, func(method string) {
		v.updateConfig(func(c *pipeline.Config) { c.Method = method })
	})
	methodSelect.SetSelected(v.cfg.Method)

	backendSelect := widget.NewSelect([]string{
		pipeline.BackendReference, pipeline.BackendAccelerated,
	}, func(b string) {
		v.updateConfig(func(c *pipeline.Config) { c.Backend = b })
	})
	backendSelect.SetSelected(v.cfg.Backend)

	threshold := widget.NewSlider(0, 255)
	threshold.Value = v.cfg.Threshold
	threshold.OnChanged = func(val float64) {
		v.updateConfig(func(c *pipeline.Config) { c.Threshold = val })
	}

	low := widget.NewSlider(0, 254)
	low.Value = v.cfg.LowThreshold
	low.OnChanged = func(val float64) {
		v.updateConfig(func(c *pipeline.Config) {
			c.LowThreshold = val
			if c.HighThreshold <= val {
				c.HighThreshold = val + 1
			}
		})
	}

	high := widget.NewSlider(1, 255)
	high.Value = v.cfg.HighThreshold
	high.OnChanged = func(val float64) {
		v.updateConfig(func(c *pipeline.Config) {
			c.HighThreshold = val
			if c.LowThreshold >= val {
				c.LowThreshold = val - 1
			}
		})
	}

	blur := widget.NewSlider(0, 8)
	blur.Step = 1
	blur.Value = float64(v.cfg.BlurRadius)
	blur.OnChanged = func(val float64) {
		v.updateConfig(func(c *pipeline.Config) { c.BlurRadius = int(val) })
	}

	controls := container.NewVBox(
		widget.NewCard("Operator", "", container.NewVBox(
			methodSelect,
			backendSelect,
		)),
		widget.NewCard("Parameters", "", container.NewVBox(
			widget.NewLabel("Threshold"), threshold,
			widget.NewLabel("Canny low"), low,
			widget.NewLabel("Canny high"), high,
			widget.NewLabel("Blur radius"), blur,
		)),
	)

	content := container.NewBorder(
		nil,           // top
		v.status,      // bottom
		controls,      // left
		nil,           // right
		container.NewPadded(v.preview),
	)
	v.window.SetContent(content)
	v.window.Resize(fyne.NewSize(1100, 700))
	v.window.CenterOnScreen()
}

func (v *Viewer) updateConfig(mutate func(*pipeline.Config)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	mutate(&v.cfg)
}

func (v *Viewer) config() pipeline.Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// ShowAndRun starts the frame loop and blocks in the GUI main loop until
// the window closes.
func (v *Viewer) ShowAndRun(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	v.window.SetOnClosed(cancel)

	go v.frameLoop(ctx)
	v.window.ShowAndRun()
}

// frameLoop pulls frames from the source, runs them through the driver and
// pushes the output to the preview. One frame is fully processed before
// the next is requested.
func (v *Viewer) frameLoop(ctx context.Context) {
	for {
		frame, err := v.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			v.logger.WithError(err).Warn("Frame capture failed")
			time.Sleep(250 * time.Millisecond)
			continue
		}

		input := Downscale(frame, processWidth)
		out, err := v.driver.Process(input, v.config())
		v.source.Recycle(frame)
		if input != frame {
			v.driver.Recycle(input)
		}
		if err != nil {
			// caller-bug class errors surface in the status bar; the
			// stream keeps running in degraded mode
			v.logger.WithError(err).Error("Frame processing failed")
			v.setStatus(fmt.Sprintf("error: %v", err))
			continue
		}

		img := toImage(out)
		fyne.Do(func() {
			v.preview.Image = img
			v.preview.Refresh()
			// the previous frame is off screen now and may be reused
			if v.shown != nil {
				v.driver.Recycle(v.shown)
			}
			v.shown = out
		})
		v.refreshStatus()
	}
}

func (v *Viewer) refreshStatus() {
	stats := v.driver.Stats()
	if stats.Frames%10 != 0 {
		return
	}
	v.setStatus(fmt.Sprintf("%.1f fps | avg %.1f ms | accelerated: %s",
		stats.FPS,
		float64(stats.AvgDuration.Microseconds())/1000,
		v.driver.AcceleratedState()))
}

func (v *Viewer) setStatus(text string) {
	fyne.Do(func() {
		v.status.SetText(text)
	})
}

// Live edge-detection viewer
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"realtime-edge-processing/internal/capture"
	"realtime-edge-processing/internal/gui"
	"realtime-edge-processing/internal/pipeline"
)

const appID = "io.edgevision.edgeview"

func main() {
	method := flag.String("method", pipeline.MethodSobel, "operator: sobel, prewitt, roberts, laplacian, canny, gaussian, grayscale")
	backendTag := flag.String("backend", pipeline.BackendAccelerated, "backend: reference or accelerated")
	threshold := flag.Float64("threshold", 100, "binarization threshold for prewitt/roberts")
	low := flag.Float64("low", 50, "canny low threshold")
	high := flag.Float64("high", 150, "canny high threshold")
	blur := flag.Int("blur", 0, "gaussian pre-blur radius")
	aperture := flag.Int("aperture", 3, "sobel aperture: 3, 5 or 7")
	device := flag.Int("device", 0, "capture device ID")
	synthetic := flag.Bool("synthetic", false, "use the synthetic test-card source instead of a camera")
	debugMode := flag.Bool("debug", false, "enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)

	cfg := pipeline.Config{
		Method:        *method,
		Backend:       *backendTag,
		Threshold:     *threshold,
		LowThreshold:  *low,
		HighThreshold: *high,
		BlurRadius:    *blur,
		KernelSize:    *aperture,
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	driver := pipeline.New(logger)
	driver.InitAccelerated(context.Background())

	source, err := openSource(*synthetic, *device, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open frame source")
	}
	defer source.Close()

	logger.WithFields(logrus.Fields{
		"method":  cfg.Method,
		"backend": cfg.Backend,
	}).Info("Starting edge detection viewer")

	viewer := gui.NewViewer(app.NewWithID(appID), driver, source, cfg, logger)
	viewer.ShowAndRun(context.Background())

	logger.Info("Viewer shut down")
}

func openSource(synthetic bool, device int, logger *logrus.Logger) (capture.Source, error) {
	if synthetic {
		return capture.NewSynthetic(640, 480, 33*time.Millisecond), nil
	}
	return capture.OpenWebcam(device, logger)
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

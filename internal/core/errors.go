// Error taxonomy shared by the processing pipeline
package core

import "errors"

var (
	// ErrInvalidDimensions indicates a pixel buffer whose sample array does
	// not match its declared width*height*channels.
	ErrInvalidDimensions = errors.New("invalid buffer dimensions")

	// ErrInvalidKernel indicates a convolution kernel with an even or
	// degenerate size.
	ErrInvalidKernel = errors.New("invalid kernel")

	// ErrInvalidThresholds indicates Canny hysteresis bounds with
	// highThreshold <= lowThreshold.
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrBackendNotReady indicates the accelerated backend was invoked
	// before its initialization handshake completed.
	ErrBackendNotReady = errors.New("backend not ready")

	// ErrUnsupportedOperator indicates a method the selected backend does
	// not implement.
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

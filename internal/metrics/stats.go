// Frame processing statistics
package metrics

import (
	"sync"
	"time"
)

// ewmaAlpha weights the most recent frame in the moving average.
const ewmaAlpha = 0.1

// FrameStats is a point-in-time snapshot of processing performance.
type FrameStats struct {
	Frames       uint64
	LastDuration time.Duration
	AvgDuration  time.Duration
	FPS          float64
}

// Recorder accumulates per-frame processing durations. All methods are
// safe for concurrent use; the driver records while the viewer reads.
type Recorder struct {
	mu     sync.Mutex
	frames uint64
	last   time.Duration
	ewma   float64 // seconds
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe records one frame's processing duration.
func (r *Recorder) Observe(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames++
	r.last = d
	sec := d.Seconds()
	if r.frames == 1 {
		r.ewma = sec
	} else {
		r.ewma = ewmaAlpha*sec + (1-ewmaAlpha)*r.ewma
	}
}

// Snapshot returns the current statistics.
func (r *Recorder) Snapshot() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := FrameStats{
		Frames:       r.frames,
		LastDuration: r.last,
		AvgDuration:  time.Duration(r.ewma * float64(time.Second)),
	}
	if r.ewma > 0 {
		stats.FPS = 1 / r.ewma
	}
	return stats
}

package collab

import "time"

// SystemClock implements engine.Clock over the host monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock whose Now() is seconds since construction.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// SimpleDLL is a reference delay-locked loop: it tracks the running ratio
// of frames ticked to wall-clock time, as a minimal drift estimate. Real
// deployments are expected to supply a proper second-order DLL filter;
// the filter algorithm itself is deliberately out of scope here.
type SimpleDLL struct {
	clock        *SystemClock
	totalFrames  int64
	firstTick    float64
	lastTick     float64
	haveFirst    bool
	framesPerSec float64
}

// NewSimpleDLL returns a DLL driven by the given clock.
func NewSimpleDLL(clock *SystemClock) *SimpleDLL {
	return &SimpleDLL{clock: clock}
}

// Tick records one (framesPerTransfer, now) sample and updates the running
// frames-per-second estimate.
func (d *SimpleDLL) Tick(framesPerTransfer int, now float64) {
	if !d.haveFirst {
		// The first tick only marks the start of the measured interval.
		d.firstTick = now
		d.lastTick = now
		d.haveFirst = true
		return
	}
	d.totalFrames += int64(framesPerTransfer)
	d.lastTick = now
	elapsed := d.lastTick - d.firstTick
	if elapsed > 0 {
		d.framesPerSec = float64(d.totalFrames) / elapsed
	}
}

// EstimatedRate returns the current frames-per-second drift estimate.
func (d *SimpleDLL) EstimatedRate() float64 {
	return d.framesPerSec
}

// Package collab provides reference implementations of the host-side
// collaborator interfaces the engine expects (engine.AudioRing,
// engine.MIDIRing, engine.Clock). The engine names these only by interface
// and never implements them itself; this package exists so cmd/usbridged
// has something to wire the engine to in demo/standalone mode, and so
// tests have a concrete ring to exercise.
//
// No single-producer/single-consumer ring buffer library was available to
// reach for, so this is built directly on sync/atomic rather than an
// ecosystem dependency (see DESIGN.md).
package collab

import "sync/atomic"

// AudioRing is a lock-free SPSC ring buffer of float32 samples.
type AudioRing struct {
	buf        []float32
	mask       uint64
	writeIndex atomic.Uint64
	readIndex  atomic.Uint64
}

// NewAudioRing allocates a ring holding capacity samples. capacity is
// rounded up to the next power of two.
func NewAudioRing(capacity int) *AudioRing {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &AudioRing{buf: make([]float32, size), mask: uint64(size - 1)}
}

// ReadSpace returns the number of samples currently available to read.
func (r *AudioRing) ReadSpace() int {
	return int(r.writeIndex.Load() - r.readIndex.Load())
}

// WriteSpace returns the number of samples currently available to write.
func (r *AudioRing) WriteSpace() int {
	return len(r.buf) - r.ReadSpace()
}

// Read consumes exactly n samples, copying them into dst if non-nil.
func (r *AudioRing) Read(dst []float32, n int) int {
	start := r.readIndex.Load()
	for i := 0; i < n; i++ {
		if dst != nil && i < len(dst) {
			dst[i] = r.buf[(start+uint64(i))&r.mask]
		}
	}
	r.readIndex.Store(start + uint64(n))
	return n
}

// Write produces exactly n samples from src.
func (r *AudioRing) Write(src []float32, n int) int {
	start := r.writeIndex.Load()
	for i := 0; i < n; i++ {
		r.buf[(start+uint64(i))&r.mask] = src[i]
	}
	r.writeIndex.Store(start + uint64(n))
	return n
}

// Package resample adapts github.com/tphakala/go-audio-resampler to the
// engine.Resampler interface, used to cover a transient outbound ring
// underflow without stalling the transfer pump.
//
// The library's own usage code was not available as reference (only its
// go.mod entry, in blitss-sip-tg-bridge and iamprashant-voice-ai); the
// call shape below is a best-effort guess at its public API and is
// flagged as such in DESIGN.md.
package resample

import (
	resampler "github.com/tphakala/go-audio-resampler"
)

// Linear wraps the library's linear resampler for single-channel-agnostic,
// interleaved float32 buffers.
type Linear struct {
	quality int
}

// New returns a Resampler at the given quality level (library-defined;
// higher costs more CPU per underflow event).
func New(quality int) *Linear {
	return &Linear{quality: quality}
}

// Process resamples in (assumed planar-interleaved at the engine's native
// channel count) to outLen samples at the given ratio.
func (l *Linear) Process(in []float32, ratio float64, outLen int) ([]float32, error) {
	r, err := resampler.New(resampler.Config{
		Ratio:   ratio,
		Quality: l.quality,
	})
	if err != nil {
		return nil, err
	}
	out := make([]float32, outLen)
	n, err := r.Resample(in, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

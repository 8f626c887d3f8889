package engine

import (
	"context"
	"log"

	"usbridge/internal/engine/codec"
)

// pumpAudioIn runs one audio-in completion: tick the DLL, decode, and hand
// the result to the o2p ring (or drop it, warm-up or overflow). Returns
// non-nil only on a genuine transport failure, which the caller escalates
// to StatusError.
func (e *Engine) pumpAudioIn(ctx context.Context) error {
	n, ok, err := e.pollRead(ctx, e.transport.ReadAudioIn, e.bufIn)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if n != len(e.bufIn) {
		log.Printf("engine: audio-in short read: got %d bytes, want %d", n, len(e.bufIn))
		return nil
	}

	e.mu.Lock()
	dll := e.dll
	clock := e.io.Clock
	status := e.status
	ring := e.io.O2PAudio
	e.mu.Unlock()

	if dll != nil && clock != nil {
		dll.Tick(e.frames, clock.Now())
	}

	samples, err := codec.DecodeInbound(e.bufIn, e.blocks, e.layoutOut)
	if err != nil {
		return err
	}

	if status < StatusRun {
		return nil // warm-up: discard
	}

	if ring.WriteSpace() >= len(samples) {
		ring.Write(samples, len(samples))
		e.statsMu.Lock()
		e.stats.FramesProcessed += uint64(e.frames)
		e.statsMu.Unlock()
	} else {
		log.Printf("engine: o2p audio overflow, dropping %d samples", len(samples))
		e.statsMu.Lock()
		e.stats.Overruns++
		e.statsMu.Unlock()
	}
	return nil
}

// pumpAudioOut runs one audio-out cycle through a two-state sub-machine
// (waiting to start / running), then encodes and submits the transfer.
func (e *Engine) pumpAudioOut(ctx context.Context) error {
	e.mu.Lock()
	enabled := e.p2oAudioEnabled
	ring := e.io.P2OAudio
	inputs := e.desc.Inputs
	e.mu.Unlock()

	transferSamples := e.frames * inputs
	// Silence unless the running state below fills it from the ring.
	samples := make([]float32, transferSamples)

	if !e.readingAtP2OEnd {
		if enabled && ring.ReadSpace() >= transferSamples {
			e.drainToFrameBoundary(ring, inputs)
			e.readingAtP2OEnd = true
		}
		// else: leave the outbound buffer as-is (silence or last block).
	} else {
		if !enabled {
			if err := codec.InitOutboundBuffer(e.bufOut, e.blocks, e.layoutIn); err != nil {
				return err
			}
			e.readingAtP2OEnd = false
		} else {
			readable := ring.ReadSpace()

			e.mu.Lock()
			e.p2oLatency = readable
			if readable > e.p2oMaxLatency {
				e.p2oMaxLatency = readable
			}
			e.mu.Unlock()

			if readable >= transferSamples {
				samples = make([]float32, transferSamples)
				ring.Read(samples, transferSamples)
			} else {
				e.statsMu.Lock()
				e.stats.Underruns++
				e.statsMu.Unlock()

				availFrames := readable / inputs
				scratch := make([]float32, availFrames*inputs)
				if availFrames > 0 {
					ring.Read(scratch, availFrames*inputs)
				}
				if availFrames == 0 || e.resampler == nil {
					samples = make([]float32, transferSamples)
					copy(samples, scratch)
				} else {
					ratio := float64(e.frames) / float64(availFrames)
					out, err := e.resampler.Process(scratch, ratio, transferSamples)
					if err != nil {
						log.Printf("engine: resample error: %v", err)
						samples = make([]float32, transferSamples)
						copy(samples, scratch)
					} else {
						if len(out) < transferSamples {
							log.Printf("engine: resampler underproduced: got %d samples, want %d", len(out), transferSamples)
						}
						samples = make([]float32, transferSamples)
						copy(samples, out)
					}
				}
			}
		}
	}

	if err := codec.EncodeOutbound(e.bufOut, e.blocks, e.layoutIn, samples, &e.frameCounter); err != nil {
		return err
	}

	ok, err := e.pollWrite(ctx, e.transport.WriteAudioOut, e.bufOut)
	if err != nil {
		return err
	}
	_ = ok
	return nil
}

func (e *Engine) drainToFrameBoundary(ring AudioRing, channels int) {
	if channels == 0 {
		return
	}
	frames := ring.ReadSpace() / channels
	if frames == 0 {
		return
	}
	ring.Read(nil, frames*channels)
}

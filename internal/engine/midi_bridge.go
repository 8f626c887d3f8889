package engine

import (
	"context"
	"log"
	"time"
)

const (
	midiEventSize  = 4
	cableCodeLow   = 0x08
	cableCodeHigh  = 0x0F
)

// pumpMIDIIn runs one midi-in completion: frame 4-byte events, filter by
// cable code, stamp with a single get_time() reading, and hand each to the
// o2p MIDI ring.
func (e *Engine) pumpMIDIIn(ctx context.Context) error {
	e.mu.Lock()
	ring := e.io.O2PMIDI
	clock := e.io.Clock
	status := e.status
	e.mu.Unlock()

	if ring == nil {
		return nil // MIDI collaborator not attached; nothing to pump
	}

	buf := make([]byte, usbBulkMIDISize)
	n, ok, err := e.pollReadOnce(ctx, e.transport.ReadMIDIIn, buf)
	if err != nil {
		return err
	}
	if !ok || n == 0 {
		return nil // timeout is normal and silent
	}
	if status < StatusRun {
		return nil
	}

	now := 0.0
	if clock != nil {
		now = clock.Now()
	}

	for off := 0; off+midiEventSize <= n; off += midiEventSize {
		codeIndex := buf[off]
		if codeIndex < cableCodeLow || codeIndex > cableCodeHigh {
			continue
		}
		ev := MIDIEvent{Timestamp: now}
		copy(ev.Bytes[:], buf[off:off+midiEventSize])
		if ring.WriteSpace() < 1 {
			log.Printf("engine: o2p midi overflow, dropping event")
			e.statsMu.Lock()
			e.stats.MIDIInDropped++
			e.statsMu.Unlock()
			continue
		}
		ring.WriteEvent(ev)
	}
	return nil
}

// runMIDIOutLoop is the dedicated MIDI-out thread: an event-paced burst
// scheduler that sleeps to each event's timestamp and coalesces events
// that land within one burst window.
func (e *Engine) runMIDIOutLoop() {
	defer close(e.doneMIDI)

	ctx := context.Background()
	pos := 0
	var lastTime float64
	var held *MIDIEvent

	for {
		if e.Status() <= StatusStop {
			return
		}

		e.mu.Lock()
		ring := e.io.P2OMIDI
		e.mu.Unlock()
		if ring == nil {
			return
		}

		diff := 0.0
		for ring.ReadSpace() > 0 && pos < usbBulkMIDISize {
			if pos == 0 {
				for i := range e.midiStage {
					e.midiStage[i] = 0
				}
				diff = 0
			}
			if held == nil {
				if ev, ok := ring.ReadEvent(); ok {
					held = &ev
				} else {
					break
				}
			}
			if held.Timestamp > lastTime {
				diff = held.Timestamp - lastTime
				lastTime = held.Timestamp
				break
			}
			copy(e.midiStage[pos:pos+midiEventSize], held.Bytes[:])
			pos += midiEventSize
			held = nil
		}

		if pos > 0 {
			e.midiMu.Lock()
			e.p2oMidiReady = false
			e.midiMu.Unlock()

			burst := e.midiStage[:pos]
			if ok, err := e.pollWrite(ctx, e.transport.WriteMIDIOut, burst); err != nil {
				log.Printf("engine: midi-out submit failed: %v", err)
				e.SetStatus(StatusError)
				return
			} else if !ok {
				return
			}
			// The synchronous write above stands in for the original's
			// completion callback: the burst is fully submitted, so the
			// ready flag is set the moment it returns.
			e.signalMIDIOutReady()
			pos = 0
		}

		sleepFor := diff
		if sleepFor <= 0 {
			sleepFor = e.smallestSleepTime()
		}
		time.Sleep(time.Duration(sleepFor * float64(time.Second)))

		for !e.midiReady() {
			if e.Status() <= StatusStop {
				return
			}
			time.Sleep(time.Duration(e.smallestSleepTime() * float64(time.Second)))
		}

		if e.Status() <= StatusStop {
			return
		}
	}
}

func (e *Engine) midiReady() bool {
	e.midiMu.Lock()
	defer e.midiMu.Unlock()
	return e.p2oMidiReady
}

// smallestSleepTime is half the average wait for a 32-sample buffer at the
// device's nominal frame rate. The sample rate is assumed fixed rather than
// read from the device descriptor, since the descriptor does not carry one.
func (e *Engine) smallestSleepTime() float64 {
	const assumedSampleRate = 48000.0
	sampleTime := 1.0 / assumedSampleRate
	return sampleTime * 32 / 2
}

// signalMIDIOutReady sets p2o_midi_ready = 1, standing in for the original's
// outbound MIDI completion callback. The pacing loop calls it itself once
// its synchronous pollWrite of a burst returns.
func (e *Engine) signalMIDIOutReady() {
	e.midiMu.Lock()
	e.p2oMidiReady = true
	e.midiMu.Unlock()
}

// Package engine implements the USB audio/MIDI bridge core: the transfer
// pump, block codec wiring, audio and MIDI bridges, and the lifecycle
// supervisor that drives them. It never imports gousb directly; it talks to
// hardware only through the Transport interface, and to the host audio
// graph only through the AudioRing/MIDIRing/Clock/DLL collaborator
// interfaces (internal/device and internal/collab supply concrete
// implementations).
//
// Its supervisor loop follows a goroutine-per-thread lifecycle driven by a
// small ordered status enum (ERROR<STOP<READY<BOOT<WAIT<RUN); critical
// sections that a C engine would guard with a spinlock are guarded here
// with sync.Mutex per Go idiom.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"usbridge/internal/device"
	"usbridge/internal/engine/codec"
)

// IOBuffers is the collaborator configuration record passed to Activate.
type IOBuffers struct {
	O2PAudio AudioRing
	P2OAudio AudioRing
	O2PMIDI MIDIRing
	P2OMIDI MIDIRing
	Clock Clock
}

// Engine is one opened, configured bridge between a USB device and a host
// audio graph. Create with Init, start with Activate/ActivateWithDLL, stop
// with Stop+Wait, release with Destroy.
type Engine struct {
	// Immutable after Init.
	transport Transport
	desc device.Descriptor
	blocks int // B
	frames int // F = B * FramesPerBlock
	layoutIn codec.Layout // outbound wire layout, channels = desc.Inputs
	layoutOut codec.Layout // inbound wire layout, channels = desc.Outputs

	// mu guards the O(1) critical sections the USB/audio thread and the
	// outside world both touch.
	mu sync.Mutex
	status Status
	p2oLatency int
	p2oMaxLatency int
	dll DLL
	p2oAudioEnabled bool

	// midiMu guards the single p2oMidiReady bit, which the MIDI-out
	// goroutine clears before each burst and sets once the burst is written.
	midiMu sync.Mutex
	p2oMidiReady bool

	// Single-writer fields, touched only by the audio/USB goroutine.
	bufIn []byte // inbound (audio-in) transfer buffer, B blocks
	bufOut []byte // outbound (audio-out) transfer buffer, B blocks
	frameCounter uint16
	readingAtP2OEnd bool

	// MIDI outbound staging, touched only by the MIDI-out goroutine.
	midiStage []byte

	io IOBuffers
	resampler Resampler

	statsMu sync.Mutex
	stats Stats

	stopAudio chan struct{}
	stopMIDI chan struct{}
	doneAudio chan struct{}
	doneMIDI chan struct{}
}

// Init validates blocksPerTransfer, allocates transfer buffers sized from
// the device descriptor, and returns an engine in READY status. No
// goroutines are started and no collaborator is attached yet.
func Init(transport Transport, desc device.Descriptor, blocksPerTransfer int, resampler Resampler) (*Engine, error) {
	if blocksPerTransfer <= 0 {
		blocksPerTransfer = desc.DefaultBlockCount
	}
	if blocksPerTransfer <= 0 {
		return nil, NewError(ErrCantPrepareTransfer, "blocks_per_transfer must be positive")
	}

	e := &Engine{
		transport: transport,
		desc: desc,
		blocks: blocksPerTransfer,
		frames: blocksPerTransfer * desc.FramesPerBlock,
		layoutIn: codec.Layout{
			FramesPerBlock: desc.FramesPerBlock,
			PaddingSize: desc.PaddingSize,
			Channels: desc.Inputs,
		},
		layoutOut: codec.Layout{
			FramesPerBlock: desc.FramesPerBlock,
			PaddingSize: desc.PaddingSize,
			Channels: desc.Outputs,
		},
		resampler: resampler,
		status: StatusReady,
		p2oMidiReady: true,
	}

	e.bufIn = make([]byte, blocksPerTransfer*e.layoutOut.BlockSize())
	e.bufOut = make([]byte, blocksPerTransfer*e.layoutIn.BlockSize())
	if err := codec.InitOutboundBuffer(e.bufOut, blocksPerTransfer, e.layoutIn); err != nil {
		return nil, fmt.Errorf("engine: init outbound buffer: %w", err)
	}
	e.midiStage = make([]byte, usbBulkMIDISize)

	return e, nil
}

const usbBulkMIDISize = 512

// DeviceDescriptor returns the descriptor this engine was initialised with.
func (e *Engine) DeviceDescriptor() device.Descriptor {
	return e.desc
}

// Status returns the current lifecycle status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// SetStatus forces the lifecycle status, used by the enclosing program to
// raise READY->RUN or request shutdown via STOP/ERROR.
func (e *Engine) SetStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// P2OAudioEnabled reports whether host-to-device audio streaming is armed.
func (e *Engine) P2OAudioEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.p2oAudioEnabled
}

// SetP2OAudioEnabled arms or disarms host-to-device audio streaming.
func (e *Engine) SetP2OAudioEnabled(enabled bool) {
	e.mu.Lock()
	e.p2oAudioEnabled = enabled
	e.mu.Unlock()
}

// Stats returns a point-in-time snapshot of engine counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	s := e.stats
	e.statsMu.Unlock()

	e.mu.Lock()
	s.Status = e.status
	s.P2OLatency = e.p2oLatency
	s.P2OMaxLatency = e.p2oMaxLatency
	s.P2OAudioEnabled = e.p2oAudioEnabled
	e.mu.Unlock()
	return s
}

// validateActivation enforces the activation preconditions: the required
// ring/time hooks, and the MIDI all-or-nothing rule.
func validateActivation(io IOBuffers, dll DLL) error {
	if io.O2PAudio == nil {
		return NewError(ErrMissingO2PAudio)
	}
	if io.P2OAudio == nil {
		return NewError(ErrMissingP2OAudio)
	}
	midiAny := io.Clock != nil || io.O2PMIDI != nil || io.P2OMIDI != nil
	if midiAny {
		if io.Clock == nil {
			return NewError(ErrMissingGetTime, "midi collaborator requires get_time")
		}
		if io.O2PMIDI == nil {
			return NewError(ErrMissingO2PMIDI)
		}
		if io.P2OMIDI == nil {
			return NewError(ErrMissingP2OMIDI)
		}
	}
	if dll != nil && io.Clock == nil {
		return NewError(ErrMissingGetTime, "dll requires get_time")
	}
	return nil
}

// Activate attaches the collaborator buffers and starts the audio/USB and
// MIDI-out goroutines, without a DLL.
func (e *Engine) Activate(io IOBuffers) error {
	return e.activate(io, nil)
}

// ActivateWithDLL is Activate plus a drift-tracking DLL fed one tick per
// inbound audio completion.
func (e *Engine) ActivateWithDLL(io IOBuffers, dll DLL) error {
	return e.activate(io, dll)
}

func (e *Engine) activate(io IOBuffers, dll DLL) error {
	if err := validateActivation(io, dll); err != nil {
		return err
	}

	e.mu.Lock()
	e.io = io
	e.dll = dll
	e.p2oAudioEnabled = false
	e.mu.Unlock()

	e.stopAudio = make(chan struct{})
	e.doneAudio = make(chan struct{})
	go e.runAudioUSBLoop()

	if io.O2PMIDI != nil {
		e.stopMIDI = make(chan struct{})
		e.doneMIDI = make(chan struct{})
		go e.runMIDIOutLoop()
	}

	return nil
}

// Wait blocks until both engine goroutines have exited.
func (e *Engine) Wait() {
	if e.doneAudio != nil {
		<-e.doneAudio
	}
	if e.doneMIDI != nil {
		<-e.doneMIDI
	}
}

// Stop requests shutdown; both goroutines observe STOP at their next check
// and exit. Call Wait afterwards to join them.
func (e *Engine) Stop() {
	e.SetStatus(StatusStop)
}

// Destroy releases the USB transport. Call only after Wait returns.
func (e *Engine) Destroy() error {
	if e.transport == nil {
		return nil
	}
	return e.transport.Close()
}

// runAudioUSBLoop is the audio/USB thread: busy-wait while READY, then cycle
// WAIT -> (transfer pump runs until status drops) -> BOOT -> WAIT, returning
// once status has dropped to STOP or ERROR.
func (e *Engine) runAudioUSBLoop() {
	defer close(e.doneAudio)

	for e.Status() == StatusReady {
		time.Sleep(time.Millisecond)
	}

	for {
		e.mu.Lock()
		e.p2oLatency = 0
		e.p2oMaxLatency = 0
		if e.dll != nil {
			// DLL reset/attach is owned by the collaborator; the engine
			// only guarantees it is not ticked concurrently with a swap.
		}
		e.status = StatusWait
		e.mu.Unlock()

		e.runUSBEventCycle()

		if e.Status() <= StatusStop {
			return
		}
		// Re-entering BOOT: drain p2o ring to a frame boundary and zero
		// the outbound buffer before the next cycle.
		e.drainP2OToFrameBoundary()
		if err := codec.InitOutboundBuffer(e.bufOut, e.blocks, e.layoutIn); err != nil {
			log.Printf("engine: reinit outbound buffer: %v", err)
			e.SetStatus(StatusError)
			return
		}
		e.readingAtP2OEnd = false
		e.SetStatus(StatusBoot)
	}
}

// runUSBEventCycle runs the audio-in, audio-out and MIDI-in pipelines for as
// long as status stays >= WAIT, returning when it drops below. The MIDI-out
// pipeline runs on its own goroutine (runMIDIOutLoop).
func (e *Engine) runUSBEventCycle() {
	ctx := context.Background()

	for e.Status() >= StatusWait {
		if err := e.pumpAudioIn(ctx); err != nil {
			log.Printf("engine: audio-in transfer failed: %v", err)
			e.SetStatus(StatusError)
			return
		}
		if err := e.pumpAudioOut(ctx); err != nil {
			log.Printf("engine: audio-out transfer failed: %v", err)
			e.SetStatus(StatusError)
			return
		}
		if err := e.pumpMIDIIn(ctx); err != nil {
			log.Printf("engine: midi-in transfer failed: %v", err)
			// MIDI-in timeouts are normal and silent; pumpMIDIIn only
			// returns non-nil on a genuine transport error.
			e.SetStatus(StatusError)
			return
		}
	}
}

func (e *Engine) drainP2OToFrameBoundary() {
	e.mu.Lock()
	ring := e.io.P2OAudio
	channels := e.desc.Inputs
	e.mu.Unlock()
	if ring == nil || channels == 0 {
		return
	}
	space := ring.ReadSpace()
	frames := space / channels
	if frames == 0 {
		return
	}
	ring.Read(nil, frames*channels)
}

package device

import (
	"context"
	"fmt"
)

// Transport adapts a claimed Handle to engine.Transport by wrapping each
// endpoint's ReadContext/WriteContext call with the context passed in from
// the transfer pump, so a stalled endpoint cannot wedge the pump goroutines
// forever.
type Transport struct {
	h *Handle
}

// NewTransport wraps an opened Handle for use by the engine's transfer pump.
func NewTransport(h *Handle) *Transport {
	return &Transport{h: h}
}

func (t *Transport) ReadAudioIn(ctx context.Context, buf []byte) (int, error) {
	n, err := t.h.AudioIn.ReadContext(ctx, buf)
	if err != nil {
		return n, fmt.Errorf("device: audio-in read: %w", err)
	}
	return n, nil
}

func (t *Transport) WriteAudioOut(ctx context.Context, buf []byte) (int, error) {
	n, err := t.h.AudioOut.WriteContext(ctx, buf)
	if err != nil {
		return n, fmt.Errorf("device: audio-out write: %w", err)
	}
	return n, nil
}

func (t *Transport) ReadMIDIIn(ctx context.Context, buf []byte) (int, error) {
	n, err := t.h.MIDIIn.ReadContext(ctx, buf)
	if err != nil {
		return n, fmt.Errorf("device: midi-in read: %w", err)
	}
	return n, nil
}

func (t *Transport) WriteMIDIOut(ctx context.Context, buf []byte) (int, error) {
	n, err := t.h.MIDIOut.WriteContext(ctx, buf)
	if err != nil {
		return n, fmt.Errorf("device: midi-out write: %w", err)
	}
	return n, nil
}

func (t *Transport) Close() error {
	return t.h.Close()
}

package engine

import "context"

// Transport abstracts the four USB endpoints the engine drives, so the
// engine package itself never imports gousb directly. internal/device
// supplies the concrete implementation over a claimed Handle; tests supply
// an in-memory fake.
type Transport interface {
	ReadAudioIn(ctx context.Context, buf []byte) (int, error)
	WriteAudioOut(ctx context.Context, buf []byte) (int, error)
	ReadMIDIIn(ctx context.Context, buf []byte) (int, error)
	WriteMIDIOut(ctx context.Context, buf []byte) (int, error)
	Close() error
}

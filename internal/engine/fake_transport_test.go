package engine

import "context"

// fakeTransport is an in-memory Transport for exercising the bridges
// without a real USB device.
type fakeTransport struct {
	audioIn  []byte
	audioOut []byte
	midiIn   []byte
	midiOut  [][]byte
}

func (f *fakeTransport) ReadAudioIn(ctx context.Context, buf []byte) (int, error) {
	n := copy(buf, f.audioIn)
	return n, nil
}

func (f *fakeTransport) WriteAudioOut(ctx context.Context, buf []byte) (int, error) {
	f.audioOut = append([]byte(nil), buf...)
	return len(buf), nil
}

func (f *fakeTransport) ReadMIDIIn(ctx context.Context, buf []byte) (int, error) {
	n := copy(buf, f.midiIn)
	return n, nil
}

func (f *fakeTransport) WriteMIDIOut(ctx context.Context, buf []byte) (int, error) {
	f.midiOut = append(f.midiOut, append([]byte(nil), buf...))
	return len(buf), nil
}

func (f *fakeTransport) Close() error { return nil }

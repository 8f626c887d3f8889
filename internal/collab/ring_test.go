package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"usbridge/internal/engine"
)

func TestAudioRingRoundTrip(t *testing.T) {
	r := NewAudioRing(8)
	assert.Equal(t, 0, r.ReadSpace())

	in := []float32{1, 2, 3, 4}
	r.Write(in, len(in))
	assert.Equal(t, 4, r.ReadSpace())

	out := make([]float32, 4)
	r.Read(out, 4)
	assert.Equal(t, in, out)
	assert.Equal(t, 0, r.ReadSpace())
}

func TestAudioRingDiscardOnNilDst(t *testing.T) {
	r := NewAudioRing(8)
	r.Write([]float32{1, 2, 3}, 3)
	r.Read(nil, 3)
	assert.Equal(t, 0, r.ReadSpace())
}

func TestMIDIRingRoundTrip(t *testing.T) {
	r := NewMIDIRing(4)
	ev := engine.MIDIEvent{Bytes: [4]byte{0x09, 0x90, 0x3C, 0x7F}, Timestamp: 1.5}
	assert.True(t, r.WriteEvent(ev))

	got, ok := r.ReadEvent()
	assert.True(t, ok)
	assert.Equal(t, ev, got)

	_, ok = r.ReadEvent()
	assert.False(t, ok)
}

func TestSimpleDLLTracksRate(t *testing.T) {
	clock := NewSystemClock()
	dll := NewSimpleDLL(clock)
	dll.Tick(256, 0.0)
	dll.Tick(256, 0.5)
	assert.InDelta(t, 512.0, dll.EstimatedRate(), 0.01)
}

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usbridge/internal/collab"
)

func TestPumpMIDIInFiltersCableCode(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	ring := collab.NewMIDIRing(16)
	clock := collab.NewSystemClock()
	e.io = IOBuffers{O2PMIDI: ring, P2OMIDI: collab.NewMIDIRing(16), Clock: clock}
	e.status = StatusRun

	// First event: cable code 0x09 (note-on), accepted.
	// Second event: cable code 0x00 (misc reserved), rejected.
	transport.midiIn = []byte{
		0x09, 0x90, 0x40, 0x7F,
		0x00, 0x00, 0x00, 0x00,
	}

	require.NoError(t, e.pumpMIDIIn(context.Background()))
	assert.Equal(t, 1, ring.ReadSpace())

	ev, ok := ring.ReadEvent()
	require.True(t, ok)
	assert.Equal(t, [4]byte{0x09, 0x90, 0x40, 0x7F}, ev.Bytes)
}

func TestPumpMIDIInDropsBelowRun(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	ring := collab.NewMIDIRing(16)
	e.io = IOBuffers{O2PMIDI: ring, P2OMIDI: collab.NewMIDIRing(16), Clock: collab.NewSystemClock()}
	e.status = StatusWait

	transport.midiIn = []byte{0x09, 0x90, 0x40, 0x7F}
	require.NoError(t, e.pumpMIDIIn(context.Background()))
	assert.Equal(t, 0, ring.ReadSpace())
}

func TestPumpMIDIInNoOpWithoutCollaborator(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	e.status = StatusRun
	require.NoError(t, e.pumpMIDIIn(context.Background()))
}

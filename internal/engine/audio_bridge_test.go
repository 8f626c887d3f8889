package engine

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usbridge/internal/collab"
	"usbridge/internal/device"
	"usbridge/internal/engine/codec"
)

func testDescriptor() device.Descriptor {
	return device.Descriptor{
		Name: "test", VendorID: 1, ProductID: 1,
		Inputs: 2, Outputs: 4, FramesPerBlock: 8, PaddingSize: 8, DefaultBlockCount: 8,
	}
}

func newTestEngine(t *testing.T, transport Transport, blocks int) *Engine {
	t.Helper()
	e, err := Init(transport, testDescriptor(), blocks, nil)
	require.NoError(t, err)
	return e
}

func fillInboundBuffer(e *Engine, sample int32) {
	blockSize := e.layoutOut.BlockSize()
	dataOff := blockSize - e.layoutOut.FramesPerBlock*e.layoutOut.Channels*4
	for b := 0; b < e.blocks; b++ {
		off := b * blockSize
		for i := dataOff; i < blockSize; i += 4 {
			binary.BigEndian.PutUint32(e.bufIn[off+i:], uint32(sample))
		}
	}
}

func TestPumpAudioInNominalDecodesAndWrites(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	fillInboundBuffer(e, 1<<30) // ~0.5 * IntMax

	ring := collab.NewAudioRing(1 << 16)
	e.io = IOBuffers{O2PAudio: ring, P2OAudio: collab.NewAudioRing(1 << 16)}
	e.status = StatusRun
	transport.audioIn = e.bufIn

	require.NoError(t, e.pumpAudioIn(context.Background()))

	expected := e.frames * e.desc.Outputs
	require.Equal(t, expected, ring.ReadSpace())

	out := make([]float32, 1)
	ring.Read(out, 1)
	assert.InDelta(t, 0.5, float64(out[0]), 0.01)
}

func TestPumpAudioInWarmupDropsBelowRun(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	fillInboundBuffer(e, 1<<30)
	transport.audioIn = e.bufIn

	ring := collab.NewAudioRing(1 << 16)
	e.io = IOBuffers{O2PAudio: ring, P2OAudio: collab.NewAudioRing(1 << 16)}
	e.status = StatusWait // < RUN

	require.NoError(t, e.pumpAudioIn(context.Background()))
	assert.Equal(t, 0, ring.ReadSpace())
}

func TestPumpAudioInOverflowDropsAndLogs(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	fillInboundBuffer(e, 1<<30)
	transport.audioIn = e.bufIn

	ring := collab.NewAudioRing(4) // too small for a full transfer
	e.io = IOBuffers{O2PAudio: ring, P2OAudio: collab.NewAudioRing(1 << 16)}
	e.status = StatusRun

	require.NoError(t, e.pumpAudioIn(context.Background()))
	assert.Equal(t, uint64(1), e.Stats().Overruns)
}

func TestPumpAudioOutDisableMidStreamZeroesBuffer(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 8)
	e.io = IOBuffers{O2PAudio: collab.NewAudioRing(1 << 16), P2OAudio: collab.NewAudioRing(1 << 16)}
	e.readingAtP2OEnd = true
	e.p2oAudioEnabled = false

	require.NoError(t, e.pumpAudioOut(context.Background()))

	assert.False(t, e.readingAtP2OEnd)
	for b := 0; b < e.blocks; b++ {
		assert.Equal(t, uint16(codec.OutboundHeader), codec.BlockHeader(e.bufOut, b, e.layoutIn))
	}
}

// recordingResampler records the arguments of its last call and returns
// outLen silent samples.
type recordingResampler struct {
	calls  int
	ratio  float64
	outLen int
}

func (r *recordingResampler) Process(in []float32, ratio float64, outLen int) ([]float32, error) {
	r.calls++
	r.ratio, r.outLen = ratio, outLen
	return make([]float32, outLen), nil
}

func TestPumpAudioOutUnderflowResamples(t *testing.T) {
	transport := &fakeTransport{}
	e := newTestEngine(t, transport, 4) // B=4, F=32
	rs := &recordingResampler{}
	e.resampler = rs
	ring := collab.NewAudioRing(1 << 16)
	e.io = IOBuffers{O2PAudio: collab.NewAudioRing(1 << 16), P2OAudio: ring}
	e.status = StatusRun
	e.p2oAudioEnabled = true
	e.readingAtP2OEnd = true

	half := e.frames / 2
	samples := make([]float32, half*e.desc.Inputs)
	ring.Write(samples, len(samples))

	require.NoError(t, e.pumpAudioOut(context.Background()))
	assert.Equal(t, 1, rs.calls)
	assert.InDelta(t, 2.0, rs.ratio, 1e-9) // F / available frames = 32 / 16
	assert.Equal(t, e.frames*e.desc.Inputs, rs.outLen)
	assert.Len(t, transport.audioOut, len(e.bufOut))
}

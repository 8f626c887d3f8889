package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	return Layout{FramesPerBlock: 8, PaddingSize: 8, Channels: 2}
}

func TestInitOutboundBufferStampsHeader(t *testing.T) {
	layout := testLayout()
	buf := make([]byte, 4*layout.BlockSize())
	require.NoError(t, InitOutboundBuffer(buf, 4, layout))

	for b := 0; b < 4; b++ {
		assert.Equal(t, uint16(OutboundHeader), BlockHeader(buf, b, layout))
	}
}

func TestEncodeOutboundFrameCounterWraps(t *testing.T) {
	layout := testLayout()
	blocks := 4
	buf := make([]byte, blocks*layout.BlockSize())
	require.NoError(t, InitOutboundBuffer(buf, blocks, layout))

	in := make([]float32, layout.FloatsPerTransfer(blocks))
	counter := uint16(0xFFFE)
	require.NoError(t, EncodeOutbound(buf, blocks, layout, in, &counter))

	assert.Equal(t, uint16(0xFFFE), BlockFrames(buf, 0, layout))
	assert.Equal(t, uint16(0x0006), BlockFrames(buf, 1, layout)) // 0xFFFE+8 wraps mod 2^16
	assert.Equal(t, uint16(0x000E), BlockFrames(buf, 2, layout))
	assert.Equal(t, uint16(0x0016), BlockFrames(buf, 3, layout))
}

func TestDecodeInboundSampleCount(t *testing.T) {
	layout := Layout{FramesPerBlock: 8, PaddingSize: 8, Channels: 4}
	blocks := 2
	buf := make([]byte, blocks*layout.BlockSize())

	out, err := DecodeInbound(buf, blocks, layout)
	require.NoError(t, err)
	assert.Len(t, out, layout.FloatsPerTransfer(blocks))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	layout := testLayout()
	blocks := 2
	outBuf := make([]byte, blocks*layout.BlockSize())
	require.NoError(t, InitOutboundBuffer(outBuf, blocks, layout))

	in := []float32{
		0.5, -0.25, 0.999, -1.0, 0.1, 0.2, -0.3, -0.4, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.25, -0.5, 0.75, -0.75, 0.125, -0.125, 0.0625, -0.0625, 0.3, -0.6, 0.9, -0.9, 0.05, -0.05, 0.01, -0.01,
	}
	in = in[:layout.FloatsPerTransfer(blocks)]
	counter := uint16(0)
	require.NoError(t, EncodeOutbound(outBuf, blocks, layout, in, &counter))

	decoded, err := DecodeInbound(outBuf, blocks, layout)
	require.NoError(t, err)
	require.Len(t, decoded, len(in))

	for i := range in {
		assert.InDelta(t, float64(in[i]), float64(decoded[i]), 1.0/float64(IntMax))
	}
}

func TestEncodeOutboundRejectsWrongInputLength(t *testing.T) {
	layout := testLayout()
	buf := make([]byte, 2*layout.BlockSize())
	counter := uint16(0)
	err := EncodeOutbound(buf, 2, layout, make([]float32, 1), &counter)
	assert.Error(t, err)
}

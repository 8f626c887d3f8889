// Package codec converts between the device's big-endian, block-framed,
// 32-bit fixed-point wire format and host-endian normalised float32, by
// hand-rolling binary struct packing over flat byte slices with
// encoding/binary rather than reflection-based (de)serialization.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// OutboundHeader is the fixed sentinel written into every outbound block.
const OutboundHeader = 0x07FF

// IntMax is the scale factor for 32-bit fixed-point <-> float32 conversion.
const IntMax = math.MaxInt32

// Layout describes the fixed geometry of one device's wire blocks.
type Layout struct {
	FramesPerBlock int // frames carried by a single block
	PaddingSize int // device-specific opaque padding bytes
	Channels int // inputs (outbound) or outputs (inbound)
}

const (
	headerOffset = 0
	framesOffset = 2
	headerLen = 2
	framesLen = 2
	sampleLen = 4
)

// BlockSize returns the wire size in bytes of one block under this layout.
func (l Layout) BlockSize() int {
	return headerLen + framesLen + l.PaddingSize + l.FramesPerBlock*l.Channels*sampleLen
}

// dataOffset is the byte offset of the first sample within a block.
func (l Layout) dataOffset() int {
	return headerLen + framesLen + l.PaddingSize
}

// FloatsPerTransfer returns how many float32 samples a transfer of the given
// block count carries (F * channels in spec terms).
func (l Layout) FloatsPerTransfer(blocks int) int {
	return blocks * l.FramesPerBlock * l.Channels
}

// InitOutboundBuffer zeroes a freshly allocated outbound transfer buffer and
// stamps the fixed 0x07FF header into every block. Per spec, header and
// padding are written only once at initialisation; EncodeOutbound never
// touches them again.
func InitOutboundBuffer(buf []byte, blocks int, layout Layout) error {
	want := blocks * layout.BlockSize()
	if len(buf) != want {
		return fmt.Errorf("codec: outbound buffer size %d, want %d", len(buf), want)
	}
	for b := 0; b < blocks; b++ {
		off := b * layout.BlockSize()
		for i := range buf[off : off+layout.BlockSize()] {
			buf[off+i] = 0
		}
		binary.BigEndian.PutUint16(buf[off+headerOffset:], OutboundHeader)
	}
	return nil
}

// EncodeOutbound consumes exactly FloatsPerTransfer(blocks) floats from in,
// writing the running frame counter (big-endian, wrapping mod 2^16,
// post-incremented by FramesPerBlock per block) and the big-endian
// fixed-point samples into buf. It never touches header or padding bytes.
func EncodeOutbound(buf []byte, blocks int, layout Layout, in []float32, frameCounter *uint16) error {
	want := blocks * layout.BlockSize()
	if len(buf) != want {
		return fmt.Errorf("codec: outbound buffer size %d, want %d", len(buf), want)
	}
	samplesPerBlock := layout.FramesPerBlock * layout.Channels
	if len(in) != blocks*samplesPerBlock {
		return fmt.Errorf("codec: got %d input samples, want %d", len(in), blocks*samplesPerBlock)
	}

	dataOff := layout.dataOffset()
	blockSize := layout.BlockSize()
	idx := 0
	for b := 0; b < blocks; b++ {
		off := b * blockSize
		binary.BigEndian.PutUint16(buf[off+framesOffset:], *frameCounter)
		*frameCounter += uint16(layout.FramesPerBlock)

		sampleOff := off + dataOff
		for s := 0; s < samplesPerBlock; s++ {
			fixed := int32(in[idx] * IntMax)
			binary.BigEndian.PutUint32(buf[sampleOff:], uint32(fixed))
			sampleOff += sampleLen
			idx++
		}
	}
	return nil
}

// DecodeInbound reads a transfer buffer of blocks contiguous blocks and
// returns FloatsPerTransfer(blocks) host-endian normalised float32 samples,
// planar-interleaved in wire order. The wire header field is ignored.
func DecodeInbound(buf []byte, blocks int, layout Layout) ([]float32, error) {
	want := blocks * layout.BlockSize()
	if len(buf) != want {
		return nil, fmt.Errorf("codec: inbound buffer size %d, want %d", len(buf), want)
	}
	samplesPerBlock := layout.FramesPerBlock * layout.Channels
	out := make([]float32, blocks*samplesPerBlock)

	dataOff := layout.dataOffset()
	blockSize := layout.BlockSize()
	idx := 0
	for b := 0; b < blocks; b++ {
		sampleOff := b*blockSize + dataOff
		for s := 0; s < samplesPerBlock; s++ {
			fixed := int32(binary.BigEndian.Uint32(buf[sampleOff:]))
			out[idx] = float32(fixed) / IntMax
			sampleOff += sampleLen
			idx++
		}
	}
	return out, nil
}

// BlockFrames reads the frames sequence counter out of a single block at the
// given block index. Exposed for tests and diagnostics.
func BlockFrames(buf []byte, blockIndex int, layout Layout) uint16 {
	off := blockIndex*layout.BlockSize() + framesOffset
	return binary.BigEndian.Uint16(buf[off:])
}

// BlockHeader reads the header field of a single block. Exposed for tests.
func BlockHeader(buf []byte, blockIndex int, layout Layout) uint16 {
	off := blockIndex * layout.BlockSize()
	return binary.BigEndian.Uint16(buf[off:])
}

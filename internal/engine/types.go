package engine

// MIDIEvent is a single USB-MIDI event: the 4 raw wire bytes (cable/code
// index byte plus up to three MIDI data bytes) plus the timestamp (host
// clock seconds) at which it was captured or at which it should be
// emitted.
type MIDIEvent struct {
	Bytes     [4]byte
	Timestamp float64
}

// Stats is a point-in-time snapshot of engine counters, exposed read-only
// through Engine.Stats and the status API.
type Stats struct {
	Status          Status
	P2OLatency      int
	P2OMaxLatency   int
	P2OAudioEnabled bool
	FramesProcessed uint64
	Underruns       uint64
	Overruns        uint64
	MIDIInDropped   uint64
	MIDIOutDropped  uint64
}

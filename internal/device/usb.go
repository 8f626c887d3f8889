package device

import (
	"fmt"

	"github.com/google/gousb"
)

// Endpoint addresses, fixed for this device family.
const (
	EndpointAudioIn = 0x83
	EndpointAudioOut = 0x03
	EndpointMIDIIn = 0x81
	EndpointMIDIOut = 0x01
)

// standard USB CLEAR_FEATURE(ENDPOINT_HALT) control request, used because
// gousb does not expose a dedicated clear-halt call on its Interface type.
const (
	reqTypeEndpointOut = 0x02 // host-to-device | standard | recipient=endpoint
	reqClearFeature = 0x01
	featureEndpointHalt = 0x00
)

// Handle bundles an opened device with its claimed interfaces and
// endpoints, ready for the transfer pump to drive.
type Handle struct {
	ctx *gousb.Context
	Dev *gousb.Device
	cfg *gousb.Config
	ifc0 *gousb.Interface // audio streaming interface, alt 3
	ifc1 *gousb.Interface // unused streaming interface, alt 2
	ifc2 *gousb.Interface // MIDI interface, alt 0

	AudioIn *gousb.InEndpoint
	AudioOut *gousb.OutEndpoint
	MIDIIn *gousb.InEndpoint
	MIDIOut *gousb.OutEndpoint
}

// OpenAt opens the device at the given USB bus/address, looks up its
// descriptor by vendor/product, and runs the fixed interface-claim / alt-
// setting / clear-halt sequence:
//
//	set_configuration(1), claim_interface(1), set_alt_setting(1,3),
//	claim_interface(2), set_alt_setting(2,2), claim_interface(3),
//	set_alt_setting(3,0), then clear_halt on all four endpoints.
//
// Any failure aborts and releases everything already claimed, cascading
// back through whatever was opened so far.
func OpenAt(bus, address int) (*Handle, Descriptor, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Bus == bus && desc.Address == address
	})
	if err != nil {
		ctx.Close()
		return nil, Descriptor{}, fmt.Errorf("device: enumerate: %w", err)
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, Descriptor{}, fmt.Errorf("device: no device at bus %d address %d", bus, address)
	}
	for _, extra := range devs[1:] {
		extra.Close()
	}
	dev := devs[0]

	desc, err := Lookup(uint16(dev.Desc.Vendor), uint16(dev.Desc.Product))
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, Descriptor{}, err
	}

	h := &Handle{ctx: ctx, Dev: dev}
	if err := h.claim(); err != nil {
		h.Close()
		return nil, Descriptor{}, err
	}
	return h, desc, nil
}

func (h *Handle) claim() error {
	cfg, err := h.Dev.Config(1)
	if err != nil {
		return fmt.Errorf("device: set_configuration(1): %w", err)
	}
	h.cfg = cfg

	ifc0, err := cfg.Interface(1, 3)
	if err != nil {
		return fmt.Errorf("device: claim_interface(1)/alt(3): %w", err)
	}
	h.ifc0 = ifc0

	ifc1, err := cfg.Interface(2, 2)
	if err != nil {
		return fmt.Errorf("device: claim_interface(2)/alt(2): %w", err)
	}
	h.ifc1 = ifc1

	ifc2, err := cfg.Interface(3, 0)
	if err != nil {
		return fmt.Errorf("device: claim_interface(3)/alt(0): %w", err)
	}
	h.ifc2 = ifc2

	for _, ep := range []int{EndpointAudioIn, EndpointAudioOut, EndpointMIDIIn, EndpointMIDIOut} {
		if err := h.clearHalt(ep); err != nil {
			return fmt.Errorf("device: clear_halt(0x%02x): %w", ep, err)
		}
	}

	audioIn, err := h.ifc0.InEndpoint(EndpointAudioIn & 0x0f)
	if err != nil {
		return fmt.Errorf("device: open audio-in endpoint: %w", err)
	}
	audioOut, err := h.ifc0.OutEndpoint(EndpointAudioOut & 0x0f)
	if err != nil {
		return fmt.Errorf("device: open audio-out endpoint: %w", err)
	}
	midiIn, err := h.ifc2.InEndpoint(EndpointMIDIIn & 0x0f)
	if err != nil {
		return fmt.Errorf("device: open midi-in endpoint: %w", err)
	}
	midiOut, err := h.ifc2.OutEndpoint(EndpointMIDIOut & 0x0f)
	if err != nil {
		return fmt.Errorf("device: open midi-out endpoint: %w", err)
	}

	h.AudioIn, h.AudioOut, h.MIDIIn, h.MIDIOut = audioIn, audioOut, midiIn, midiOut
	return nil
}

func (h *Handle) clearHalt(endpoint int) error {
	_, err := h.Dev.Control(reqTypeEndpointOut, reqClearFeature, featureEndpointHalt, uint16(endpoint), nil)
	return err
}

// Close tears down interfaces, config, device and context in reverse
// acquisition order, tolerating partially-initialised handles.
func (h *Handle) Close() error {
	if h.ifc2 != nil {
		h.ifc2.Close()
	}
	if h.ifc1 != nil {
		h.ifc1.Close()
	}
	if h.ifc0 != nil {
		h.ifc0.Close()
	}
	if h.cfg != nil {
		h.cfg.Close()
	}
	var err error
	if h.Dev != nil {
		err = h.Dev.Close()
	}
	if h.ctx != nil {
		h.ctx.Close()
	}
	return err
}

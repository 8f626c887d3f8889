// Package device holds the USB vendor/product descriptor table and the
// bus/address device-opening sequence for the bridged hardware family: a
// VID/PID -> Descriptor lookup table, and the three interfaces / alt
// settings the bridged audio+MIDI device exposes.
package device

import "fmt"

// Descriptor is immutable, per-model information looked up from the
// vendor/product pair once a device is opened.
type Descriptor struct {
	Name string
	VendorID uint16
	ProductID uint16
	Inputs int // device-bound (audio-out) channel count
	Outputs int // host-bound (audio-in) channel count
	FramesPerBlock int // frames carried by a single wire block
	PaddingSize int // device-specific opaque padding bytes per block
	DefaultBlockCount int // suggested blocks-per-transfer if caller passes 0
}

// registry is the static table of known vendor/product pairs. Real fleets
// carry many more entries; two representative devices are enough to
// exercise the lookup and the differing input/output channel counts the
// Block Codec must handle.
var registry = map[[2]uint16]Descriptor{
	{0x1235, 0x8211}: {
		Name: "Bridge-II 8x8", VendorID: 0x1235, ProductID: 0x8211,
		Inputs: 8, Outputs: 8, FramesPerBlock: 8, PaddingSize: 8, DefaultBlockCount: 8,
	},
	{0x1235, 0x8213}: {
		Name: "Bridge-II 2x4", VendorID: 0x1235, ProductID: 0x8213,
		Inputs: 2, Outputs: 4, FramesPerBlock: 8, PaddingSize: 8, DefaultBlockCount: 8,
	},
}

// Lookup resolves a vendor/product pair to its descriptor.
func Lookup(vendor, product uint16) (Descriptor, error) {
	d, ok := registry[[2]uint16{vendor, product}]
	if !ok {
		return Descriptor{}, fmt.Errorf("device: no descriptor for vendor 0x%04x product 0x%04x", vendor, product)
	}
	return d, nil
}

// Register adds or replaces a descriptor, used by tests and by operators
// extending the table for hardware not built into the registry.
func Register(d Descriptor) {
	registry[[2]uint16{d.VendorID, d.ProductID}] = d
}

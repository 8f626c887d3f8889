package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownDevice(t *testing.T) {
	d, err := Lookup(0x1235, 0x8211)
	require.NoError(t, err)
	assert.Equal(t, "Bridge-II 8x8", d.Name)
	assert.Equal(t, 8, d.Inputs)
	assert.Equal(t, 8, d.Outputs)
}

func TestLookupUnknownDevice(t *testing.T) {
	_, err := Lookup(0xDEAD, 0xBEEF)
	assert.Error(t, err)
}

func TestRegisterAddsDevice(t *testing.T) {
	Register(Descriptor{
		Name: "Test Device", VendorID: 0x0001, ProductID: 0x0002,
		Inputs: 1, Outputs: 1, FramesPerBlock: 8, PaddingSize: 0, DefaultBlockCount: 4,
	})
	d, err := Lookup(0x0001, 0x0002)
	require.NoError(t, err)
	assert.Equal(t, "Test Device", d.Name)
}

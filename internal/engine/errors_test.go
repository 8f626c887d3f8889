package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeStringIsTotal(t *testing.T) {
	assert.Equal(t, "no error", ErrNone.String())
	assert.Equal(t, "unknown error", ErrorCode(9999).String())
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrCantClaimInterface, "interface 2")
	assert.Contains(t, err.Error(), "cannot claim USB interface")
	assert.Contains(t, err.Error(), "interface 2")
}

func TestNewErrorWithoutDetails(t *testing.T) {
	err := NewError(ErrDeviceNotFound)
	assert.Equal(t, "usbridge: [2] device not found", err.Error())
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOrdering(t *testing.T) {
	assert.True(t, StatusError < StatusStop)
	assert.True(t, StatusStop < StatusReady)
	assert.True(t, StatusReady < StatusBoot)
	assert.True(t, StatusBoot < StatusWait)
	assert.True(t, StatusWait < StatusRun)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "RUN", StatusRun.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "UNKNOWN", Status(99).String())
}

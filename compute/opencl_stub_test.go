//go:build !opencl

package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/cosim/fault"
)

func TestOpenCLDisabled(t *testing.T) {
	_, err := New(BackendOpenCL, 0)
	require.Error(t, err)
	assert.Equal(t, fault.Device, fault.KindOf(err))

	_, err = Devices(BackendOpenCL)
	assert.Equal(t, fault.Device, fault.KindOf(err))
}

package detector

import (
	"testing"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// defaultLimits mirrors the WebGPU spec defaults.
func defaultLimits() Limits {
	return Limits{
		MaxComputeInvocationsPerWorkgroup: 256,
		MaxComputeWorkgroupSizeX:          256,
		MaxComputeWorkgroupSizeY:          256,
		MaxComputeWorkgroupSizeZ:          64,
		MaxComputeWorkgroupsPerDimension:  65535,
		MaxStorageBufferBindingSize:       128 << 20,
		MaxBufferSize:                     256 << 20,
	}
}

func TestCheckGridDefaults(t *testing.T) {
	require.NoError(t, CheckGrid(defaultLimits()))
	g := Evaluate(defaultLimits())
	assert.True(t, g.Supported)
	assert.Empty(t, g.Reason)
	assert.Equal(t, uint64(1)<<32, g.Domain)
	assert.Equal(t, [3]uint32{256, 256, 256}, g.Workgroups)
}

func TestCheckGridRejects(t *testing.T) {
	tests := map[string]func(l *Limits){
		"workgroups per dimension": func(l *Limits) { l.MaxComputeWorkgroupsPerDimension = 128 },
		"invocations":              func(l *Limits) { l.MaxComputeInvocationsPerWorkgroup = 128 },
		"size z":                   func(l *Limits) { l.MaxComputeWorkgroupSizeZ = 8 },
		"storage binding":          func(l *Limits) { l.MaxStorageBufferBindingSize = 16 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			l := defaultLimits()
			mutate(&l)
			assert.Error(t, CheckGrid(l))
			g := Evaluate(l)
			assert.False(t, g.Supported)
			assert.NotEmpty(t, g.Reason)
		})
	}
}

func TestDeviceLimitsRunGrid(t *testing.T) {
	l := DeviceLimits()
	require.NoError(t, CheckGrid(LimitsFrom(wgpu.SupportedLimits{Limits: l})))

	// Nothing above what every adapter must offer.
	assert.Equal(t, defaultLimits(), LimitsFrom(wgpu.SupportedLimits{Limits: l}))
	assert.LessOrEqual(t, l.MaxBindGroups, uint32(4))
	assert.LessOrEqual(t, l.MaxStorageBuffersPerShaderStage, uint32(8))
	assert.LessOrEqual(t, l.MaxComputeWorkgroupStorageSize, uint32(16384))

	// Limits the search does not touch stay with the driver.
	assert.Equal(t, wgpu.LimitU32Undefined, l.MaxTextureDimension2D)
	assert.Equal(t, wgpu.LimitU32Undefined, l.MaxVertexBuffers)
}

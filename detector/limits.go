package detector

import (
	"fmt"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/openfluke/gen4ids/search"
)

// Limits is the subset of adapter limits the search depends on.
type Limits struct {
	MaxComputeInvocationsPerWorkgroup uint32 `json:"max_compute_invocations_per_workgroup"`
	MaxComputeWorkgroupSizeX          uint32 `json:"max_compute_workgroup_size_x"`
	MaxComputeWorkgroupSizeY          uint32 `json:"max_compute_workgroup_size_y"`
	MaxComputeWorkgroupSizeZ          uint32 `json:"max_compute_workgroup_size_z"`
	MaxComputeWorkgroupsPerDimension  uint32 `json:"max_compute_workgroups_per_dimension"`
	MaxStorageBufferBindingSize       uint64 `json:"max_storage_buffer_binding_size"`
	MaxBufferSize                     uint64 `json:"max_buffer_size"`
}

// LimitsFrom copies the relevant fields out of wgpu's supported limits.
func LimitsFrom(l wgpu.SupportedLimits) Limits {
	return Limits{
		MaxComputeInvocationsPerWorkgroup: l.Limits.MaxComputeInvocationsPerWorkgroup,
		MaxComputeWorkgroupSizeX:          l.Limits.MaxComputeWorkgroupSizeX,
		MaxComputeWorkgroupSizeY:          l.Limits.MaxComputeWorkgroupSizeY,
		MaxComputeWorkgroupSizeZ:          l.Limits.MaxComputeWorkgroupSizeZ,
		MaxComputeWorkgroupsPerDimension:  l.Limits.MaxComputeWorkgroupsPerDimension,
		MaxStorageBufferBindingSize:       l.Limits.MaxStorageBufferBindingSize,
		MaxBufferSize:                     l.Limits.MaxBufferSize,
	}
}

// DeviceLimits are the limits a device is requested with: the WebGPU
// baseline for everything the search touches, undefined (driver default)
// for the rest. Every conformant adapter grants them, and CheckGrid passes
// under them, so a device never depends on what one adapter happens to offer.
func DeviceLimits() wgpu.Limits {
	l := wgpu.DefaultLimits()
	l.MaxBindGroups = 4
	l.MaxBindingsPerBindGroup = 1000
	l.MaxStorageBuffersPerShaderStage = 8
	l.MaxStorageBufferBindingSize = 128 << 20
	l.MaxBufferSize = 256 << 20
	l.MinStorageBufferOffsetAlignment = 256
	l.MaxComputeWorkgroupStorageSize = 16384
	l.MaxComputeInvocationsPerWorkgroup = 256
	l.MaxComputeWorkgroupSizeX = 256
	l.MaxComputeWorkgroupSizeY = 256
	l.MaxComputeWorkgroupSizeZ = 64
	l.MaxComputeWorkgroupsPerDimension = 65535
	return l
}

// Grid describes what the fixed dispatch needs from an adapter.
type Grid struct {
	Workgroups  [3]uint32 `json:"workgroups"`
	Size        [3]uint32 `json:"workgroup_size"`
	Invocations uint32    `json:"invocations_per_workgroup"`
	Domain      uint64    `json:"domain"`
	Supported   bool      `json:"supported"`
	Reason      string    `json:"reason,omitempty"`
}

// RequiredGrid returns the dispatch shape without a verdict.
func RequiredGrid() Grid {
	return Grid{
		Workgroups:  [3]uint32{search.GridX, search.GridY, search.GridZ},
		Size:        [3]uint32{search.WorkgroupX, search.WorkgroupY, search.WorkgroupZ},
		Invocations: search.InvocationsPerWorkgroup(),
		Domain:      search.DomainSize(),
	}
}

// CheckGrid reports whether an adapter with l can run the search dispatch.
func CheckGrid(l Limits) error {
	g := RequiredGrid()
	for i, n := range g.Workgroups {
		if n > l.MaxComputeWorkgroupsPerDimension {
			return fmt.Errorf("grid dimension %d needs %d workgroups, adapter allows %d",
				i, n, l.MaxComputeWorkgroupsPerDimension)
		}
	}
	if g.Invocations > l.MaxComputeInvocationsPerWorkgroup {
		return fmt.Errorf("workgroup needs %d invocations, adapter allows %d",
			g.Invocations, l.MaxComputeInvocationsPerWorkgroup)
	}
	maxSize := [3]uint32{l.MaxComputeWorkgroupSizeX, l.MaxComputeWorkgroupSizeY, l.MaxComputeWorkgroupSizeZ}
	for i, n := range g.Size {
		if n > maxSize[i] {
			return fmt.Errorf("workgroup size %d is %d, adapter allows %d", i, n, maxSize[i])
		}
	}
	if l.MaxStorageBufferBindingSize < search.OutputBytes {
		return fmt.Errorf("storage binding limit %d below output size %d",
			l.MaxStorageBufferBindingSize, search.OutputBytes)
	}
	return nil
}

// Evaluate fills the verdict of RequiredGrid for l.
func Evaluate(l Limits) Grid {
	g := RequiredGrid()
	if err := CheckGrid(l); err != nil {
		g.Reason = err.Error()
		return g
	}
	g.Supported = true
	return g
}

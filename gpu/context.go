package gpu

import (
	"fmt"
	"strings"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/openfluke/gen4ids/detector"
	"github.com/openfluke/gen4ids/search"
)

// Context holds one adapter with its device and queue.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	AdapterName string
	VendorName  string
	BackendName string
}

func adapterOptions(powerPreference string) *wgpu.RequestAdapterOptions {
	switch strings.ToLower(powerPreference) {
	case "high":
		return &wgpu.RequestAdapterOptions{PowerPreference: wgpu.PowerPreferenceHighPerformance}
	case "low":
		return &wgpu.RequestAdapterOptions{PowerPreference: wgpu.PowerPreferenceLowPower}
	default:
		return nil
	}
}

// NewContext requests an adapter and a device with no optional features and
// the baseline limits of detector.DeviceLimits. A missing adapter is search.ErrNoAccelerator; a rejected
// device, or an adapter that cannot run the dispatch grid, is
// search.ErrDeviceCreation.
func NewContext(powerPreference string, log *search.Logger) (*Context, error) {
	c := &Context{Instance: wgpu.CreateInstance(nil)}
	if c.Instance == nil {
		return nil, fmt.Errorf("%w: failed to create WebGPU instance", search.ErrNoAccelerator)
	}

	adapter, err := c.Instance.RequestAdapter(adapterOptions(powerPreference))
	if (err != nil || adapter == nil) && powerPreference != "" {
		log.Warn("preferred adapter unavailable, trying default", "preference", powerPreference, "error", err)
		adapter, err = c.Instance.RequestAdapter(nil)
	}
	if err != nil || adapter == nil {
		c.Release()
		return nil, fmt.Errorf("%w: request adapter: %v", search.ErrNoAccelerator, err)
	}
	c.Adapter = adapter

	info := adapter.GetInfo()
	c.AdapterName = strings.TrimSpace(info.Name)
	c.VendorName = strings.TrimSpace(info.VendorName)
	c.BackendName = info.BackendType.String()

	if err := detector.CheckGrid(detector.LimitsFrom(adapter.GetLimits())); err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: adapter %s: %v", search.ErrDeviceCreation, c.AdapterName, err)
	}

	c.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		RequiredFeatures: nil,
		RequiredLimits:   &wgpu.RequiredLimits{Limits: detector.DeviceLimits()},
	})
	if err != nil || c.Device == nil {
		c.Release()
		return nil, fmt.Errorf("%w: request device: %v", search.ErrDeviceCreation, err)
	}
	c.Queue = c.Device.GetQueue()
	if c.Queue == nil {
		c.Release()
		return nil, fmt.Errorf("%w: device has no queue", search.ErrDeviceCreation)
	}

	log.Debug("using GPU adapter",
		"name", c.AdapterName,
		"vendor", c.VendorName,
		"backend", c.BackendName,
	)
	return c, nil
}

// Release drops the queue, device, adapter and instance in that order.
func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
		c.Queue = nil
	}
	if c.Device != nil {
		c.Device.Release()
		c.Device = nil
	}
	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}
	if c.Instance != nil {
		c.Instance.Release()
		c.Instance = nil
	}
}

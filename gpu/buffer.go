package gpu

import (
	"context"
	"fmt"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/openfluke/gen4ids/search"
)

// Buffers are the three device buffers of one search call plus the pipeline
// objects bound to them.
type Buffers struct {
	Staging *wgpu.Buffer
	Input   *wgpu.Buffer
	Output  *wgpu.Buffer

	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
}

// Allocate creates the staging, input and output buffers. The input holds the
// packed key and the output starts as ten zero words.
func (s *Session) Allocate(key uint32) (search.Buffers, error) {
	b := &Buffers{}
	var err error

	b.Staging, err = s.ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "gen4ids_Staging",
		Size:  search.OutputBytes,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: staging: %v", search.ErrBufferAllocation, err)
	}

	b.Input, err = s.ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "gen4ids_In",
		Contents: wgpu.ToBytes([]uint32{key}),
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: input: %v", search.ErrBufferAllocation, err)
	}

	var zero search.Words
	b.Output, err = s.ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "gen4ids_Out",
		Contents: wgpu.ToBytes(zero[:]),
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: output: %v", search.ErrBufferAllocation, err)
	}
	return b, nil
}

// Release destroys the buffers and drops the pipeline objects.
func (b *Buffers) Release() {
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	for _, buf := range []**wgpu.Buffer{&b.Staging, &b.Input, &b.Output} {
		if *buf != nil {
			(*buf).Destroy()
			(*buf).Release()
			*buf = nil
		}
	}
}

// Extract maps the staging buffer, forces the device to finish all submitted
// work and returns the ten output words.
func (s *Session) Extract(ctx context.Context, sb search.Buffers) (search.Words, error) {
	b, ok := sb.(*Buffers)
	if !ok || b.Staging == nil {
		return search.Words{}, fmt.Errorf("%w: not a wgpu buffer set", search.ErrMap)
	}

	done := make(chan wgpu.BufferMapAsyncStatus, 1)
	err := b.Staging.MapAsync(wgpu.MapModeRead, 0, search.OutputBytes, func(status wgpu.BufferMapAsyncStatus) {
		done <- status
	})
	if err != nil {
		return search.Words{}, fmt.Errorf("%w: MapAsync: %v", search.ErrMap, err)
	}

	// The device does not make progress on its own between submissions.
	s.ctx.Device.Poll(true, nil)

	status, err := search.AwaitMap(ctx, done, s.mapTimeout, func() {
		s.ctx.Device.Poll(false, nil)
	})
	if err != nil {
		return search.Words{}, err
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return search.Words{}, fmt.Errorf("%w: map status %v", search.ErrMap, status)
	}

	data := b.Staging.GetMappedRange(0, search.OutputBytes)
	if data == nil {
		b.Staging.Unmap()
		return search.Words{}, fmt.Errorf("%w: mapped range nil", search.ErrMap)
	}
	var words search.Words
	copy(words[:], wgpu.FromBytes[uint32](data))
	b.Staging.Unmap()
	return words, nil
}

package gpu

import (
	"fmt"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/openfluke/gen4ids/search"
)

// compile builds the kernel pipeline and binds input to binding 0 and output
// to binding 1. The layout is inferred from the kernel.
func (s *Session) compile(b *Buffers) error {
	module, err := s.ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "gen4ids_Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.kernel},
	})
	if err != nil {
		return fmt.Errorf("%w: shader module: %v", search.ErrDispatch, err)
	}
	defer module.Release()

	b.pipeline, err = s.ctx.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   "gen4ids_Pipe",
		Compute: wgpu.ProgrammableStageDescriptor{Module: module, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("%w: compute pipeline: %v", search.ErrDispatch, err)
	}

	layout := b.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	b.bindGroup, err = s.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gen4ids_Bind",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.Input, Size: b.Input.GetSize()},
			{Binding: 1, Buffer: b.Output, Size: b.Output.GetSize()},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: bind group: %v", search.ErrDispatch, err)
	}
	return nil
}

// Dispatch records a single compute pass over the whole grid, then the copy
// of the output buffer into staging, and submits both together. The copy is
// ordered after the pass by the encoder.
func (s *Session) Dispatch(sb search.Buffers) error {
	b, ok := sb.(*Buffers)
	if !ok {
		return fmt.Errorf("%w: not a wgpu buffer set", search.ErrDispatch)
	}
	if err := s.compile(b); err != nil {
		return err
	}

	encoder, err := s.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("%w: command encoder: %v", search.ErrDispatch, err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, b.bindGroup, nil)
	pass.DispatchWorkgroups(search.GridX, search.GridY, search.GridZ)
	pass.End()
	pass.Release()

	encoder.CopyBufferToBuffer(b.Output, 0, b.Staging, 0, search.OutputBytes)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("%w: finish: %v", search.ErrDispatch, err)
	}
	defer cmd.Release()

	s.ctx.Queue.Submit(cmd)
	s.log.Debug("search pass submitted",
		"grid", fmt.Sprintf("%dx%dx%d", search.GridX, search.GridY, search.GridZ),
		"kernel", s.kernelName,
	)
	return nil
}

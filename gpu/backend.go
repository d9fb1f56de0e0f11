// Package gpu runs the search on a WebGPU device.
package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openfluke/gen4ids/search"
)

func init() {
	search.Register("wgpu", func(opts search.Options) (search.Backend, error) {
		return NewBackend(opts)
	})
}

// Backend acquires a fresh WebGPU context per session. A mapTimeout <= 0
// leaves the map wait bounded only by the caller's context.
type Backend struct {
	kernel          string
	kernelName      string
	powerPreference string
	mapTimeout      time.Duration
	log             *search.Logger
}

// NewBackend validates opts and returns a wgpu backend.
func NewBackend(opts search.Options) (*Backend, error) {
	if opts.Kernel == "" {
		return nil, fmt.Errorf("%w: empty kernel source", search.ErrKernel)
	}
	b := &Backend{
		kernel:          opts.Kernel,
		kernelName:      opts.KernelName,
		powerPreference: opts.PowerPreference,
		mapTimeout:      opts.MapTimeout,
		log:             opts.Logger,
	}
	if b.log == nil {
		b.log = search.NoopLogger()
	}
	return b, nil
}

func (b *Backend) Name() string { return "wgpu" }

// Acquire creates a Context. The driver negotiation it performs blocks.
func (b *Backend) Acquire(ctx context.Context) (search.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrNoAccelerator, err)
	}
	c, err := NewContext(b.powerPreference, b.log)
	if err != nil {
		return nil, err
	}
	return &Session{
		ctx:        c,
		kernel:     b.kernel,
		kernelName: b.kernelName,
		mapTimeout: b.mapTimeout,
		log:        b.log.With("adapter", c.AdapterName),
	}, nil
}

// Session is a search.Session on one WebGPU device.
type Session struct {
	ctx        *Context
	kernel     string
	kernelName string
	mapTimeout time.Duration
	log        *slog.Logger
}

// Context exposes the underlying device handles.
func (s *Session) Context() *Context { return s.ctx }

// Release drops the device and queue.
func (s *Session) Release() {
	s.ctx.Release()
}

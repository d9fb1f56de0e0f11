package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// KernelFunc stands in for the WGSL kernel on the mock backend. It receives
// the packed key and the zeroed output slots.
type KernelFunc func(key uint32, out []uint32)

// FixedKernel returns a kernel that ignores the key and reports values.
// count is written as given so overflow can be simulated; only the first
// MaxMatches values are stored.
func FixedKernel(count uint32, values ...uint32) KernelFunc {
	return func(_ uint32, out []uint32) {
		out[0] = count
		copy(out[1:], values)
	}
}

// MatchNone is the mock counterpart of the embedded reference kernel.
func MatchNone(uint32, []uint32) {}

// MockBackend is a CPU-backed backend for development and tests. It follows
// the same allocate, dispatch, map-and-poll protocol as the wgpu backend.
type MockBackend struct {
	Kernel KernelFunc

	// Injected failures, checked at the matching stage.
	FailAcquire  bool
	FailDevice   bool
	FailAllocate bool
	FailDispatch bool
	FailMap      bool

	// MapDelay holds back the map callback, like a slow device.
	MapDelay time.Duration
	// MapTimeout bounds the map wait. <= 0 leaves only the context.
	MapTimeout time.Duration

	acquired    atomic.Int64
	liveSession atomic.Int64
	liveBuffers atomic.Int64
	dispatched  atomic.Int64
}

// NewMockBackend returns a mock running k. A nil k matches nothing.
func NewMockBackend(k KernelFunc) *MockBackend {
	if k == nil {
		k = MatchNone
	}
	return &MockBackend{Kernel: k}
}

func init() {
	Register("mock", func(opts Options) (Backend, error) {
		m := NewMockBackend(nil)
		m.MapTimeout = opts.MapTimeout
		return m, nil
	})
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAccelerator, err)
	}
	if m.FailAcquire {
		return nil, fmt.Errorf("%w: mock adapter request rejected", ErrNoAccelerator)
	}
	if m.FailDevice {
		return nil, fmt.Errorf("%w: mock device request rejected", ErrDeviceCreation)
	}
	m.acquired.Add(1)
	m.liveSession.Add(1)
	return &mockSession{backend: m}, nil
}

// Acquired counts successful acquisitions.
func (m *MockBackend) Acquired() int64 { return m.acquired.Load() }

// LiveSessions counts sessions not yet released.
func (m *MockBackend) LiveSessions() int64 { return m.liveSession.Load() }

// LiveBuffers counts buffer sets not yet released.
func (m *MockBackend) LiveBuffers() int64 { return m.liveBuffers.Load() }

// Dispatched counts submitted passes.
func (m *MockBackend) Dispatched() int64 { return m.dispatched.Load() }

type mockSession struct {
	backend  *MockBackend
	released atomic.Bool
}

type mockBuffers struct {
	backend *MockBackend

	mu       sync.Mutex
	input    [1]uint32
	output   [SlotCount]uint32
	staging  [SlotCount]uint32
	mapped   bool
	released bool
}

func (s *mockSession) Allocate(key uint32) (Buffers, error) {
	if s.backend.FailAllocate {
		return nil, fmt.Errorf("%w: mock out of device memory", ErrBufferAllocation)
	}
	s.backend.liveBuffers.Add(1)
	return &mockBuffers{backend: s.backend, input: [1]uint32{key}}, nil
}

func (s *mockSession) Dispatch(b Buffers) error {
	mb, ok := b.(*mockBuffers)
	if !ok {
		return fmt.Errorf("%w: foreign buffers %T", ErrDispatch, b)
	}
	if s.backend.FailDispatch {
		return fmt.Errorf("%w: mock pipeline rejected", ErrDispatch)
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	s.backend.Kernel(mb.input[0], mb.output[:])
	// Copy to staging is part of the same submission.
	mb.staging = mb.output
	s.backend.dispatched.Add(1)
	return nil
}

func (s *mockSession) Extract(ctx context.Context, b Buffers) (Words, error) {
	mb, ok := b.(*mockBuffers)
	if !ok {
		return Words{}, fmt.Errorf("%w: foreign buffers %T", ErrMap, b)
	}

	// Map completion arrives on another goroutine, like a driver callback.
	done := make(chan error, 1)
	go func() {
		if s.backend.MapDelay > 0 {
			time.Sleep(s.backend.MapDelay)
		}
		if s.backend.FailMap {
			done <- fmt.Errorf("%w: mock map status error", ErrMap)
			return
		}
		mb.mu.Lock()
		mb.mapped = true
		mb.mu.Unlock()
		done <- nil
	}()

	status, err := AwaitMap(ctx, done, s.backend.MapTimeout, nil)
	if err != nil {
		return Words{}, err
	}
	if status != nil {
		return Words{}, status
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()
	w := Words(mb.staging)
	mb.mapped = false
	return w, nil
}

func (s *mockSession) Release() {
	if s.released.CompareAndSwap(false, true) {
		s.backend.liveSession.Add(-1)
	}
}

func (b *mockBuffers) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.mapped = false
	b.backend.liveBuffers.Add(-1)
}

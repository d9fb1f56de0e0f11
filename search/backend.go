package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Backend acquires accelerator sessions.
type Backend interface {
	Name() string
	Acquire(ctx context.Context) (Session, error)
}

// Session is a device and its queue. A session may serve several calls in
// sequence or concurrently; the Buffers it hands out belong to one call only.
type Session interface {
	// Allocate creates the staging, input and output buffers for one call.
	// The output buffer starts zeroed.
	Allocate(key uint32) (Buffers, error)
	// Dispatch records one compute pass over the fixed grid followed by the
	// output-to-staging copy, and submits both in a single submission.
	Dispatch(b Buffers) error
	// Extract maps the staging buffer, waits for the device and returns the words.
	Extract(ctx context.Context, b Buffers) (Words, error)
	// Release drops the device and queue.
	Release()
}

// Buffers are the per-call device resources.
type Buffers interface {
	Release()
}

// Options are passed to a Factory when a backend is opened by name.
type Options struct {
	// Kernel is the WGSL source of the search kernel.
	Kernel     string
	KernelName string
	// PowerPreference is "", "low" or "high".
	PowerPreference string
	// MapTimeout bounds the wait for the staging buffer map.
	MapTimeout time.Duration
	Logger     *Logger
}

// Factory builds a backend from Options.
type Factory func(opts Options) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available to Open. Registering nil removes it.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		delete(registry, name)
		return
	}
	registry[name] = f
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open builds the named backend.
func Open(name string, opts Options) (Backend, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownBackend, name, Backends())
	}
	return f(opts)
}
